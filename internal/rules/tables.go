package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// FieldSpec declares the required fields for a result. Either Required is set
// (flat list) or Variants maps a concept code to its required-field list.
type FieldSpec struct {
	Required []string            `json:"required,omitempty"`
	Variants map[string][]string `json:"variants,omitempty"`
}

// Tables bundles the three read-only rule tables driving the collection
// workflow. Loaded once at process start and never mutated afterwards;
// lookups for unknown states/results return empty values, never an error.
type Tables struct {
	states      map[string]struct{}
	stateList   []string
	transitions map[string][]string
	results     map[string][]string
	fields      map[string]FieldSpec
}

type stateMachineFile struct {
	States      []string            `json:"states"`
	Transitions map[string][]string `json:"transitions"`
}

// Load reads the three seed files from dir: state_machine.json,
// results_by_state.json and fields_matrix.json.
func Load(dir string) (*Tables, error) {
	var sm stateMachineFile
	if err := readJSON(filepath.Join(dir, "state_machine.json"), &sm); err != nil {
		return nil, err
	}

	var results map[string][]string
	if err := readJSON(filepath.Join(dir, "results_by_state.json"), &results); err != nil {
		return nil, err
	}

	var fields map[string]FieldSpec
	if err := readJSON(filepath.Join(dir, "fields_matrix.json"), &fields); err != nil {
		return nil, err
	}

	return New(sm.States, sm.Transitions, results, fields), nil
}

// New builds rule tables from in-memory data. Inputs are copied so later
// mutation of the arguments cannot leak into the tables.
func New(states []string, transitions map[string][]string, results map[string][]string, fields map[string]FieldSpec) *Tables {
	t := &Tables{
		states:      make(map[string]struct{}, len(states)),
		stateList:   append([]string(nil), states...),
		transitions: make(map[string][]string, len(transitions)),
		results:     make(map[string][]string, len(results)),
		fields:      make(map[string]FieldSpec, len(fields)),
	}
	for _, s := range states {
		t.states[s] = struct{}{}
	}
	for from, to := range transitions {
		t.transitions[from] = append([]string(nil), to...)
	}
	for state, allowed := range results {
		t.results[state] = append([]string(nil), allowed...)
	}
	for result, spec := range fields {
		copied := FieldSpec{Required: append([]string(nil), spec.Required...)}
		if spec.Variants != nil {
			copied.Variants = make(map[string][]string, len(spec.Variants))
			for concept, req := range spec.Variants {
				copied.Variants[concept] = append([]string(nil), req...)
			}
		}
		t.fields[result] = copied
	}
	return t
}

// KnownState reports whether the state belongs to the configured state set.
func (t *Tables) KnownState(state string) bool {
	_, ok := t.states[state]
	return ok
}

// States returns the configured state set in declaration order.
func (t *Tables) States() []string {
	return append([]string(nil), t.stateList...)
}

// TransitionsFrom returns the legal destination states from the given state.
// Unknown states yield an empty list.
func (t *Tables) TransitionsFrom(state string) []string {
	return append([]string(nil), t.transitions[state]...)
}

// AllowedResults returns the outcome codes submittable while a case is in the
// given state. Unknown states yield an empty list.
func (t *Tables) AllowedResults(state string) []string {
	return append([]string(nil), t.results[state]...)
}

// FieldSpecFor returns the field requirement spec for a result. Unknown
// results yield an empty spec.
func (t *Tables) FieldSpecFor(result string) FieldSpec {
	spec, ok := t.fields[result]
	if !ok {
		return FieldSpec{}
	}
	copied := FieldSpec{Required: append([]string(nil), spec.Required...)}
	if spec.Variants != nil {
		copied.Variants = make(map[string][]string, len(spec.Variants))
		for concept, req := range spec.Variants {
			copied.Variants[concept] = append([]string(nil), req...)
		}
	}
	return copied
}

// ConceptsFor returns the valid concept codes for a result's variants, sorted
// for stable messages. Empty when the result has no variants.
func (t *Tables) ConceptsFor(result string) []string {
	spec, ok := t.fields[result]
	if !ok || spec.Variants == nil {
		return nil
	}
	concepts := make([]string, 0, len(spec.Variants))
	for c := range spec.Variants {
		concepts = append(concepts, c)
	}
	sort.Strings(concepts)
	return concepts
}

func readJSON(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("rules: read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("rules: parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
