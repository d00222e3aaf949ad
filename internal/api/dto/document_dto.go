package dto

import (
	"time"

	"github.com/crediflow/collections-service/internal/docs"
)

// DocumentResponse carries a signed URL for a rendered document.
type DocumentResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewDocumentResponse maps a rendered document descriptor.
func NewDocumentResponse(d *docs.Document) DocumentResponse {
	return DocumentResponse{URL: d.URL, ExpiresAt: d.ExpiresAt}
}
