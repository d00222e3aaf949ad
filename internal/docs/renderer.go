// Package docs defines the document rendering and blob storage collaborators.
// Rendering happens outside this service; the core supplies the structured
// cancellation data and hands back whatever signed URL the renderer returns.
package docs

import (
	"context"
	"fmt"
	"time"

	"github.com/crediflow/collections-service/internal/domain"
)

// Renderer produces a cancellation receipt document and stores it.
type Renderer interface {
	RenderCancellation(ctx context.Context, kase *domain.Case, cancellation *domain.Cancellation) (objectKey string, err error)
}

// Signer issues a time-limited read URL for a stored document.
type Signer interface {
	SignedURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error)
}

// Document is the rendered artifact descriptor returned to API callers.
type Document struct {
	ObjectKey string
	URL       string
	ExpiresAt time.Time
}

// Service glues a Renderer and a Signer.
type Service struct {
	renderer Renderer
	signer   Signer
	ttl      time.Duration
}

// NewService constructs the document service. ttl bounds the signed URL
// lifetime; zero falls back to fifteen minutes.
func NewService(renderer Renderer, signer Signer, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Service{renderer: renderer, signer: signer, ttl: ttl}
}

// CancellationDocument renders the receipt for a cancellation and returns a
// signed URL for it.
func (s *Service) CancellationDocument(ctx context.Context, kase *domain.Case, cancellation *domain.Cancellation) (*Document, error) {
	key, err := s.renderer.RenderCancellation(ctx, kase, cancellation)
	if err != nil {
		return nil, fmt.Errorf("render cancellation document: %w", err)
	}
	url, err := s.signer.SignedURL(ctx, key, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("sign document url: %w", err)
	}
	return &Document{ObjectKey: key, URL: url, ExpiresAt: time.Now().Add(s.ttl)}, nil
}

// NoopRenderer is the placeholder wired until a real rendering backend is
// configured. It never stores anything; the object key identifies the source
// cancellation so a later backfill can regenerate real documents.
type NoopRenderer struct{}

func (NoopRenderer) RenderCancellation(_ context.Context, _ *domain.Case, c *domain.Cancellation) (string, error) {
	return fmt.Sprintf("cancellations/%s.pdf", c.ID), nil
}

// NoopSigner pairs with NoopRenderer; the URL it returns is not fetchable.
type NoopSigner struct{}

func (NoopSigner) SignedURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "about:blank#" + objectKey, nil
}
