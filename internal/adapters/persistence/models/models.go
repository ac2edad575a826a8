package models

import (
	"time"
)

// Session represents the sessions table. It is the persisted form of a
// browser session: the upstream token pair, the serialized user record
// and the serialized therapist profile live together so a restart can
// restore authenticated state without an upstream round-trip.
//
// Token and UserJSON are written together on login; ProfileJSON is
// written independently whenever the role-profile changes; the whole row
// is deleted on logout.
type Session struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Token        string    `gorm:"column:token;type:text;not null" json:"-"`
	RefreshToken string    `gorm:"column:refresh_token;type:text;not null" json:"-"`
	UserJSON     string    `gorm:"column:user;type:text;not null" json:"-"`
	ProfileJSON  *string   `gorm:"column:therapist_profile;type:text" json:"-"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	Role         string    `gorm:"size:20;index;not null" json:"role"`
	ExpiresAt    time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Session) TableName() string {
	return "sessions"
}

// IsExpired checks if the session is past its lifetime.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
