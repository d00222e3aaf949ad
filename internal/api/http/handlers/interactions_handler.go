package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/crediflow/collections-service/internal/api/dto"
	"github.com/crediflow/collections-service/internal/service"
	"github.com/crediflow/collections-service/pkg/util"
)

// InteractionsHandler manages workflow submission endpoints.
type InteractionsHandler struct {
	service *service.InteractionService
}

// NewInteractionsHandler constructs handler.
func NewInteractionsHandler(interactionService *service.InteractionService) *InteractionsHandler {
	return &InteractionsHandler{service: interactionService}
}

// Submit POST /interactions.
func (h *InteractionsHandler) Submit(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SubmitInteractionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.Submit(c.UserContext(), principal, service.SubmitInput{
		CaseID:             req.CaseID,
		CurrentState:       req.CurrentState,
		Result:             req.Result,
		Concept:            req.Concept,
		Fields:             req.Fields,
		ChosenNextState:    req.ChosenNextState,
		LastPromiseConcept: req.LastPromiseConcept,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewSubmitInteractionResponse(result)})
}

// List GET /interactions?caseId=.
func (h *InteractionsHandler) List(c *fiber.Ctx) error {
	caseID := c.Query("caseId")
	if caseID == "" {
		return util.NewValidationError("caseId query parameter is required", nil)
	}
	return h.listForCase(c, caseID)
}

// ListByCase GET /cases/:id/interactions.
func (h *InteractionsHandler) ListByCase(c *fiber.Ctx) error {
	return h.listForCase(c, c.Params("id"))
}

func (h *InteractionsHandler) listForCase(c *fiber.Ctx, caseID string) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	interactions, err := h.service.ListByCase(c.UserContext(), principal, caseID, queryPageSize(c))
	if err != nil {
		return err
	}
	items := make([]dto.InteractionResponse, 0, len(interactions))
	for i := range interactions {
		items = append(items, dto.NewInteractionResponse(&interactions[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
