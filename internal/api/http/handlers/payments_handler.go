package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/crediflow/collections-service/internal/api/dto"
	"github.com/crediflow/collections-service/internal/repository"
	"github.com/crediflow/collections-service/internal/service"
	"github.com/crediflow/collections-service/pkg/util"
)

// PaymentsHandler manages the ledger endpoints: payment posting, editing and
// reversal, plus the read side of cancellations.
type PaymentsHandler struct {
	ledger *service.LedgerService
}

// NewPaymentsHandler constructs handler.
func NewPaymentsHandler(ledger *service.LedgerService) *PaymentsHandler {
	return &PaymentsHandler{ledger: ledger}
}

// Post POST /payments.
func (h *PaymentsHandler) Post(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.PostPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}
	result, err := h.ledger.PostPayment(c.UserContext(), principal, service.PaymentInput{
		CaseID:   req.CaseID,
		Amount:   req.Amount,
		Method:   req.Method,
		Date:     date,
		Note:     req.Note,
		Metadata: req.Metadata,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.PostPaymentResponse{
		Payment:    dto.NewPaymentResponse(result.Payment),
		NewBalance: result.NewBalance,
	}})
}

// Get GET /payments/:id.
func (h *PaymentsHandler) Get(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	payment, err := h.ledger.GetPayment(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	setETag(c, util.ETagFromTime(payment.UpdatedAt))
	return c.JSON(fiber.Map{"data": dto.NewPaymentResponse(payment)})
}

// List GET /payments.
func (h *PaymentsHandler) List(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	payments, err := h.ledger.ListPayments(c.UserContext(), principal, repository.PaymentFilter{
		CaseID: queryStrPtr(c, "caseId"),
		Limit:  queryPageSize(c),
	})
	if err != nil {
		return err
	}
	items := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		items = append(items, dto.NewPaymentResponse(&payments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Patch PATCH /payments/:id.
func (h *PaymentsHandler) Patch(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.PatchPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	payment, err := h.ledger.PatchPayment(c.UserContext(), principal, c.Params("id"), c.Get(fiber.HeaderIfMatch), repository.PaymentPatch{
		Method:   req.Method,
		Date:     req.Date,
		Note:     req.Note,
		Metadata: req.Metadata,
	})
	if err != nil {
		return err
	}
	setETag(c, util.ETagFromTime(payment.UpdatedAt))
	return c.JSON(fiber.Map{"data": dto.NewPaymentResponse(payment)})
}

// Cancel POST /cancellations.
func (h *PaymentsHandler) Cancel(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CancelPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.PaymentID == "" {
		return util.NewValidationError("paymentId is required", nil)
	}
	result, err := h.ledger.CancelPayment(c.UserContext(), principal, req.PaymentID, req.Reason)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.CancelPaymentResponse{
		Cancellation: dto.NewCancellationResponse(result.Cancellation),
		NewBalance:   result.NewBalance,
	}})
}

// GetCancellation GET /cancellations/:id.
func (h *PaymentsHandler) GetCancellation(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	cancellation, err := h.ledger.GetCancellation(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCancellationResponse(cancellation)})
}

// ListCancellations GET /cancellations.
func (h *PaymentsHandler) ListCancellations(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	cancellations, err := h.ledger.ListCancellations(c.UserContext(), principal, repository.CancellationFilter{
		CaseID:    queryStrPtr(c, "caseId"),
		PaymentID: queryStrPtr(c, "paymentId"),
		Limit:     queryPageSize(c),
	})
	if err != nil {
		return err
	}
	items := make([]dto.CancellationResponse, 0, len(cancellations))
	for i := range cancellations {
		items = append(items, dto.NewCancellationResponse(&cancellations[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
