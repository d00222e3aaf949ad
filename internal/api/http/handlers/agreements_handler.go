package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/crediflow/collections-service/internal/api/dto"
	"github.com/crediflow/collections-service/internal/domain"
	"github.com/crediflow/collections-service/internal/repository"
	"github.com/crediflow/collections-service/internal/service"
	"github.com/crediflow/collections-service/pkg/util"
)

// AgreementsHandler manages agreement endpoints.
type AgreementsHandler struct {
	service *service.AgreementService
}

// NewAgreementsHandler constructs handler.
func NewAgreementsHandler(agreementService *service.AgreementService) *AgreementsHandler {
	return &AgreementsHandler{service: agreementService}
}

// Create POST /agreements.
func (h *AgreementsHandler) Create(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateAgreementRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	agreement, err := h.service.Create(c.UserContext(), principal, service.AgreementInput{
		CaseID:       req.CaseID,
		Amount:       req.Amount,
		StartDate:    req.StartDate,
		Installments: req.Installments,
		Terms:        req.Terms,
	})
	if err != nil {
		return err
	}
	setETag(c, util.ETagFromTime(agreement.UpdatedAt))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewAgreementResponse(agreement)})
}

// Get GET /agreements/:id.
func (h *AgreementsHandler) Get(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	agreement, err := h.service.Get(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	setETag(c, util.ETagFromTime(agreement.UpdatedAt))
	return c.JSON(fiber.Map{"data": dto.NewAgreementResponse(agreement)})
}

// List GET /agreements.
func (h *AgreementsHandler) List(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	filter := repository.AgreementFilter{
		CaseID: queryStrPtr(c, "caseId"),
		Limit:  queryPageSize(c),
	}
	if s := c.Query("status"); s != "" {
		status := domain.AgreementStatus(s)
		filter.Status = &status
	}
	agreements, err := h.service.List(c.UserContext(), principal, filter)
	if err != nil {
		return err
	}
	items := make([]dto.AgreementResponse, 0, len(agreements))
	for i := range agreements {
		items = append(items, dto.NewAgreementResponse(&agreements[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Patch PATCH /agreements/:id.
func (h *AgreementsHandler) Patch(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.PatchAgreementRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	agreement, err := h.service.Patch(c.UserContext(), principal, c.Params("id"), c.Get(fiber.HeaderIfMatch), repository.AgreementPatch{
		Status: req.Status,
		Terms:  req.Terms,
	})
	if err != nil {
		return err
	}
	setETag(c, util.ETagFromTime(agreement.UpdatedAt))
	return c.JSON(fiber.Map{"data": dto.NewAgreementResponse(agreement)})
}
