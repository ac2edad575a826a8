package handlers

import (
	"errors"

	"physiohub-gateway/internal/adapters/http/middleware"
	"physiohub-gateway/internal/core/domain"
	"physiohub-gateway/internal/core/services"
	"physiohub-gateway/internal/pkg/pagination"
	"physiohub-gateway/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuditHandler serves the audit-log viewer
type AuditHandler struct {
	auditService *services.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List returns one verified page of the audit trail
// @Summary List audit logs
// @Description Proxy one page of the backend audit trail and verify its hash chain
// @Tags Audit
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /audit-logs [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)

	result, err := h.auditService.List(c.Context(), session, params.Page, params.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrSessionInvalid) {
			return response.Unauthorized(c, "Session rejected, please sign in again")
		}
		return response.BadGateway(c, "Could not reach the practice backend")
	}

	return response.Success(c, "Audit logs retrieved", fiber.Map{
		"entries":   result.Entries,
		"integrity": result.Integrity,
		"meta":      pagination.GetMeta(params, result.Total),
	})
}
