package models

import "gorm.io/gorm"

// AutoMigrate creates or updates the gateway's own tables. The practice
// backend owns all domain data; the gateway only persists sessions.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Session{},
	)
}
