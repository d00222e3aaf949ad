package workflow

import (
	"fmt"
	"strings"

	"github.com/crediflow/collections-service/internal/rules"
)

// ResultCheck is the outcome of validating a submitted result against the
// per-state whitelist.
type ResultCheck struct {
	OK      bool
	Allowed []string
}

// ValidateResultAllowed reports whether result may be submitted while the
// case is in state, along with the full allowed list for error reporting.
func ValidateResultAllowed(t *rules.Tables, state, result string) ResultCheck {
	allowed := t.AllowedResults(state)
	for _, r := range allowed {
		if r == result {
			return ResultCheck{OK: true, Allowed: allowed}
		}
	}
	return ResultCheck{OK: false, Allowed: allowed}
}

// FieldsCheck carries the resolved required-field list, or the reason the
// resolution failed (missing or unrecognized concept for a variant result).
type FieldsCheck struct {
	OK       bool
	Required []string
	Message  string
}

// RequiredFieldsFor resolves the required-field list for a result. Results
// whose spec declares variants need a concept selector; an absent or unknown
// concept fails with a message listing the valid concepts.
func RequiredFieldsFor(t *rules.Tables, result, concept string) FieldsCheck {
	spec := t.FieldSpecFor(result)
	if spec.Variants == nil {
		return FieldsCheck{OK: true, Required: spec.Required}
	}

	valid := strings.Join(t.ConceptsFor(result), " | ")
	if concept == "" {
		return FieldsCheck{
			Message: fmt.Sprintf("%q requiere concepto (%s)", result, valid),
		}
	}
	required, ok := spec.Variants[concept]
	if !ok {
		return FieldsCheck{
			Message: fmt.Sprintf("concepto %q invalido para %q; validos: %s", concept, result, valid),
		}
	}
	return FieldsCheck{OK: true, Required: required}
}

// MissingFields returns the required keys absent from fields. A field counts
// as missing when the key is absent, the value is nil, or its string form is
// empty after trimming.
func MissingFields(fields map[string]any, required []string) []string {
	var missing []string
	for _, key := range required {
		val, ok := fields[key]
		if !ok || val == nil {
			missing = append(missing, key)
			continue
		}
		if strings.TrimSpace(fmt.Sprintf("%v", val)) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}
