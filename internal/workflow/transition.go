package workflow

import "github.com/crediflow/collections-service/internal/rules"

// TransitionCheck reports whether from -> to is present in the state graph,
// along with the legal destinations for error reporting.
type TransitionCheck struct {
	OK      bool
	Allowed []string
}

// CheckTransition authorizes a transition against the configured graph. Used
// both for user-chosen explicit targets and for resolver suggestions.
func CheckTransition(t *rules.Tables, from, to string) TransitionCheck {
	allowed := t.TransitionsFrom(from)
	for _, s := range allowed {
		if s == to {
			return TransitionCheck{OK: true, Allowed: allowed}
		}
	}
	return TransitionCheck{OK: false, Allowed: allowed}
}
