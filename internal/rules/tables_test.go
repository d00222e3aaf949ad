package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func seedTables() *Tables {
	return New(
		[]string{"NUEVO", "PROMESA"},
		map[string][]string{"NUEVO": {"PROMESA"}},
		map[string][]string{"NUEVO": {"SIN_RESPUESTA"}},
		map[string]FieldSpec{
			"PROMESA_DE_PAGO": {Variants: map[string][]string{
				"CONTADO": {"montoPromesa"},
				"ABONO":   {"montoAbono"},
			}},
			"CONTACTO_EFECTIVO": {Required: []string{"telefonoContacto"}},
		},
	)
}

func TestKnownState(t *testing.T) {
	tables := seedTables()
	if !tables.KnownState("NUEVO") {
		t.Fatal("NUEVO not known")
	}
	if tables.KnownState("LIMBO") {
		t.Fatal("LIMBO known")
	}
}

func TestLookupsCopyInternalState(t *testing.T) {
	tables := seedTables()

	states := tables.States()
	states[0] = "mutated"
	if tables.States()[0] != "NUEVO" {
		t.Fatal("States leaked internal slice")
	}

	next := tables.TransitionsFrom("NUEVO")
	next[0] = "mutated"
	if tables.TransitionsFrom("NUEVO")[0] != "PROMESA" {
		t.Fatal("TransitionsFrom leaked internal slice")
	}

	spec := tables.FieldSpecFor("PROMESA_DE_PAGO")
	spec.Variants["CONTADO"][0] = "mutated"
	if tables.FieldSpecFor("PROMESA_DE_PAGO").Variants["CONTADO"][0] != "montoPromesa" {
		t.Fatal("FieldSpecFor leaked internal map")
	}
}

func TestUnknownLookupsAreEmpty(t *testing.T) {
	tables := seedTables()
	if got := tables.TransitionsFrom("LIMBO"); len(got) != 0 {
		t.Fatalf("TransitionsFrom = %v", got)
	}
	if got := tables.AllowedResults("LIMBO"); len(got) != 0 {
		t.Fatalf("AllowedResults = %v", got)
	}
	spec := tables.FieldSpecFor("NO_EXISTE")
	if len(spec.Required) != 0 || spec.Variants != nil {
		t.Fatalf("FieldSpecFor = %+v", spec)
	}
}

func TestConceptsForSorted(t *testing.T) {
	got := seedTables().ConceptsFor("PROMESA_DE_PAGO")
	if len(got) != 2 || got[0] != "ABONO" || got[1] != "CONTADO" {
		t.Fatalf("concepts = %v", got)
	}
	if got := seedTables().ConceptsFor("CONTACTO_EFECTIVO"); len(got) != 0 {
		t.Fatalf("flat result concepts = %v", got)
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	write("state_machine.json", `{
		"states": ["NUEVO", "PROMESA"],
		"transitions": {"NUEVO": ["PROMESA"]}
	}`)
	write("results_by_state.json", `{"NUEVO": ["SIN_RESPUESTA"]}`)
	write("fields_matrix.json", `{
		"CONTACTO_EFECTIVO": {"required": ["telefonoContacto"]},
		"PROMESA_DE_PAGO": {"variants": {"CONTADO": ["montoPromesa", "fechaPromesa"]}}
	}`)

	tables, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !tables.KnownState("PROMESA") {
		t.Fatal("states not loaded")
	}
	if got := tables.AllowedResults("NUEVO"); len(got) != 1 || got[0] != "SIN_RESPUESTA" {
		t.Fatalf("results = %v", got)
	}
	spec := tables.FieldSpecFor("PROMESA_DE_PAGO")
	if len(spec.Variants["CONTADO"]) != 2 {
		t.Fatalf("variants = %v", spec.Variants)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("Load succeeded with no seed files")
	}
}
