package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/crediflow/collections-service/internal/api/dto"
	"github.com/crediflow/collections-service/internal/service"
	"github.com/crediflow/collections-service/pkg/util"
)

// CasesHandler manages case CRUD endpoints.
type CasesHandler struct {
	service *service.CaseService
}

// NewCasesHandler constructs handler.
func NewCasesHandler(caseService *service.CaseService) *CasesHandler {
	return &CasesHandler{service: caseService}
}

// Create POST /cases.
func (h *CasesHandler) Create(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	kase, err := h.service.Create(c.UserContext(), principal, service.CaseCreateInput{
		DebtorName: req.DebtorName,
		AssignedTo: req.AssignedTo,
		Balance:    req.Balance,
	})
	if err != nil {
		return err
	}
	setETag(c, util.ETagFromTime(kase.UpdatedAt))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewCaseResponse(kase)})
}

// Get GET /cases/:id.
func (h *CasesHandler) Get(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	kase, err := h.service.Get(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	setETag(c, util.ETagFromTime(kase.UpdatedAt))
	return c.JSON(fiber.Map{"data": dto.NewCaseResponse(kase)})
}

// List GET /cases.
func (h *CasesHandler) List(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	cases, err := h.service.List(c.UserContext(), principal, queryPageSize(c))
	if err != nil {
		return err
	}
	items := make([]dto.CaseResponse, 0, len(cases))
	for i := range cases {
		items = append(items, dto.NewCaseResponse(&cases[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Patch PATCH /cases/:id.
func (h *CasesHandler) Patch(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.PatchCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	kase, err := h.service.Patch(c.UserContext(), principal, c.Params("id"), c.Get(fiber.HeaderIfMatch), service.CasePatch{
		DebtorName: req.DebtorName,
		AssignedTo: req.AssignedTo,
		Status:     req.Status,
		State:      req.State,
	})
	if err != nil {
		return err
	}
	setETag(c, util.ETagFromTime(kase.UpdatedAt))
	return c.JSON(fiber.Map{"data": dto.NewCaseResponse(kase)})
}
