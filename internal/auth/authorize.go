package auth

import "github.com/crediflow/collections-service/internal/domain"

// Action enumerates the capabilities guarded by the authorizer.
type Action string

const (
	ActionReadCase        Action = "case:read"
	ActionCreateCase      Action = "case:create"
	ActionUpdateCase      Action = "case:update"
	ActionPostPayment     Action = "payment:post"
	ActionEditPayment     Action = "payment:edit"
	ActionCancelPayment   Action = "payment:cancel"
	ActionCreateAgreement Action = "agreement:create"
	ActionEditAgreement   Action = "agreement:edit"
	ActionSubmitResult    Action = "interaction:submit"
	ActionResolveTicket   Action = "ticket:resolve"
	ActionReadAudit       Action = "audit:read"
)

// elevatedOnly lists capabilities reserved for supervisor/admin regardless of
// case ownership.
var elevatedOnly = map[Action]struct{}{
	ActionCreateCase:    {},
	ActionUpdateCase:    {},
	ActionEditPayment:   {},
	ActionCancelPayment: {},
	ActionEditAgreement: {},
	ActionResolveTicket: {},
	ActionReadAudit:     {},
}

// Authorize is the single capability check consumed by every entry point.
// Elevated roles are unrestricted; a gestor may act only on cases assigned to
// them, and never on the elevated-only capabilities. kase may be nil for
// actions not scoped to a case.
func Authorize(p *Principal, action Action, kase *domain.Case) bool {
	if p == nil {
		return false
	}
	if p.Elevated() {
		return true
	}
	if _, reserved := elevatedOnly[action]; reserved {
		return false
	}
	if kase == nil {
		// Non case-scoped reads (e.g. listing own payments) are allowed; the
		// repository filters restrict the result to the caller's records.
		return true
	}
	return kase.AssignedTo == p.UID
}
