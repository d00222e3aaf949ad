package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/crediflow/collections-service/internal/domain"
	"github.com/crediflow/collections-service/internal/repository"
)

// AuditService is the fire-and-forget audit sink. Record never returns an
// error to its caller: failures are logged and swallowed so auditing can
// never abort a primary operation.
type AuditService struct {
	repo   repository.AuditRepository
	logger *zap.Logger
}

// NewAuditService constructs the sink.
func NewAuditService(repo repository.AuditRepository, logger *zap.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

// AuditEntry is the input shape for a best-effort audit write.
type AuditEntry struct {
	Entity   string
	EntityID string
	Action   string
	By       string
	Diff     map[string]any
	Meta     map[string]any
}

// Record persists an audit entry, best effort.
func (s *AuditService) Record(ctx context.Context, entry AuditEntry) {
	if s == nil || s.repo == nil {
		return
	}
	row := &domain.AuditLog{
		Entity: entry.Entity,
		Action: entry.Action,
		Diff:   entry.Diff,
		Meta:   entry.Meta,
	}
	if entry.EntityID != "" {
		row.EntityID = &entry.EntityID
	}
	if entry.By != "" {
		row.By = &entry.By
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Warn("audit write failed",
			zap.String("entity", entry.Entity),
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}

// List returns audit entries for the admin surface, newest first.
func (s *AuditService) List(ctx context.Context, filter repository.AuditFilter) ([]domain.AuditLog, error) {
	logs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].At.After(logs[j].At)
	})
	return logs, nil
}
