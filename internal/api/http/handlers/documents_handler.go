package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/crediflow/collections-service/internal/api/dto"
	"github.com/crediflow/collections-service/internal/docs"
	"github.com/crediflow/collections-service/internal/service"
	"github.com/crediflow/collections-service/pkg/util"
)

// DocumentsHandler serves signed URLs for rendered documents.
type DocumentsHandler struct {
	cases     *service.CaseService
	ledger    *service.LedgerService
	documents *docs.Service
}

// NewDocumentsHandler constructs handler.
func NewDocumentsHandler(cases *service.CaseService, ledger *service.LedgerService, documents *docs.Service) *DocumentsHandler {
	return &DocumentsHandler{cases: cases, ledger: ledger, documents: documents}
}

// CancellationDocument GET /cases/:id/documents/cancellation/:cancellationId.
func (h *DocumentsHandler) CancellationDocument(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	kase, err := h.cases.Get(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	cancellation, err := h.ledger.GetCancellation(c.UserContext(), principal, c.Params("cancellationId"))
	if err != nil {
		return err
	}
	if cancellation.CaseID != kase.ID {
		return util.NewNotFound("cancellation", map[string]any{
			"caseId":         kase.ID,
			"cancellationId": cancellation.ID,
		})
	}
	document, err := h.documents.CancellationDocument(c.UserContext(), kase, cancellation)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDocumentResponse(document)})
}
