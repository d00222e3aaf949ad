package workflow

// OutcomeKind discriminates how a submission resolved the case-state
// transition.
type OutcomeKind string

const (
	// OutcomeApplied means the resolver's suggestion was legal and applied.
	OutcomeApplied OutcomeKind = "applied"
	// OutcomeChosen means the caller supplied an explicit legal target state.
	OutcomeChosen OutcomeKind = "chosen"
	// OutcomeDeferred means the suggestion is legal but awaits supervisor
	// approval; the case state stays put until the ticket is approved.
	OutcomeDeferred OutcomeKind = "deferred"
	// OutcomeBlocked means the suggestion is not in the state graph; the
	// interaction is still recorded, the state does not change.
	OutcomeBlocked OutcomeKind = "blocked"
	// OutcomeNoOp means nothing suggested a state change.
	OutcomeNoOp OutcomeKind = "noop"
)

// Outcome is the tagged transition result of an interaction submission.
// NextState is always populated; for Deferred/Blocked/NoOp it equals the
// current state.
type Outcome struct {
	Kind      OutcomeKind
	NextState string
	// Proposed is the suggested state awaiting approval (Deferred) or the
	// suggestion that was rejected by the graph (Blocked).
	Proposed string
	// AllowedNext lists legal destinations, populated for Blocked.
	AllowedNext []string
}

// Info renders the outcome in the wire shape recorded on the interaction and
// returned to callers. Nil for NoOp, matching the historical log format.
func (o Outcome) Info() map[string]any {
	switch o.Kind {
	case OutcomeChosen:
		return map[string]any{"chosenByUser": true}
	case OutcomeApplied:
		return map[string]any{"appliedSuggested": true}
	case OutcomeDeferred:
		return map[string]any{"proposed": o.Proposed, "requiresSupervisor": true}
	case OutcomeBlocked:
		return map[string]any{"suggestedButBlocked": o.Proposed, "allowedNext": o.AllowedNext}
	default:
		return nil
	}
}
