package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/crediflow/collections-service/internal/api/dto"
	"github.com/crediflow/collections-service/internal/auth"
	"github.com/crediflow/collections-service/internal/repository"
	"github.com/crediflow/collections-service/internal/service"
	"github.com/crediflow/collections-service/pkg/util"
)

// AuditHandler exposes the audit trail to elevated roles.
type AuditHandler struct {
	service *service.AuditService
}

// NewAuditHandler constructs handler.
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{service: auditService}
}

// List GET /audit.
func (h *AuditHandler) List(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if !auth.Authorize(principal, auth.ActionReadAudit, nil) {
		return util.NewForbidden("supervisor role required")
	}
	logs, err := h.service.List(c.UserContext(), repository.AuditFilter{
		Entity:   queryStrPtr(c, "entity"),
		EntityID: queryStrPtr(c, "entityId"),
		Limit:    queryPageSize(c),
	})
	if err != nil {
		return err
	}
	items := make([]dto.AuditLogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, dto.NewAuditLogResponse(&logs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
