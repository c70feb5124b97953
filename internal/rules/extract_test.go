package rules

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/caseworks/reportable/internal/types"
)

// mustCompile compiles a path or fails the test.
func mustCompile(t *testing.T, expr string) *Path {
	t.Helper()
	path, err := CompilePath(expr)
	if err != nil {
		t.Fatalf("CompilePath(%q) error = %v", expr, err)
	}
	return path
}

// decodeRecord builds a Record from JSON so value types match what the
// engine sees in production (float64 numbers, []any lists).
func decodeRecord(t *testing.T, data string) types.Record {
	t.Helper()
	var rec types.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	return rec
}

// Test normal extraction cases
func TestExtract_Normal(t *testing.T) {
	condition := decodeRecord(t, `{
		"resourceType": "Condition",
		"id": "c1",
		"code": {
			"coding": [
				{"system": "http://hl7.org/fhir/sid/icd-10-cm", "code": "U07.1", "display": "COVID-19"}
			],
			"text": "COVID-19"
		},
		"subject": {"reference": "Patient/p1"}
	}`)

	patient := decodeRecord(t, `{
		"resourceType": "Patient",
		"id": "p1",
		"name": [{"use": "official", "family": "Rivera", "given": ["Dana", "J"]}],
		"telecom": [
			{"system": "phone", "value": "555-0142"},
			{"system": "email", "value": "dana@example.com"}
		],
		"address": [{"city": "Portland", "state": "OR"}]
	}`)

	tests := []struct {
		name   string
		record types.Record
		expr   string
		want   any
	}{
		{
			name:   "scalar through nested objects",
			record: condition,
			expr:   "Condition.code.text",
			want:   "COVID-19",
		},
		{
			name:   "single list element collapses to scalar",
			record: condition,
			expr:   "Condition.code.coding.code",
			want:   "U07.1",
		},
		{
			name:   "object result",
			record: condition,
			expr:   "Condition.subject",
			want:   map[string]any{"reference": "Patient/p1"},
		},
		{
			name:   "filter narrows list",
			record: patient,
			expr:   `Patient.telecom.where(system="phone").value`,
			want:   "555-0142",
		},
		{
			name:   "filter narrows to other element",
			record: patient,
			expr:   `Patient.telecom.where(system="email").value`,
			want:   "dana@example.com",
		},
		{
			name:   "multiple values stay a list",
			record: patient,
			expr:   "Patient.telecom.value",
			want:   []any{"555-0142", "dana@example.com"},
		},
		{
			name:   "list of lists flattens one level",
			record: patient,
			expr:   "Patient.name.given",
			want:   []any{"Dana", "J"},
		},
		{
			name:   "root only returns whole record",
			record: patient,
			expr:   "Patient",
			want:   map[string]any(patient),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.record, mustCompile(t, tt.expr))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract(%q) = %#v, want %#v", tt.expr, got, tt.want)
			}
		})
	}
}

// Test missing data yields nil, never an error
func TestExtract_Missing(t *testing.T) {
	record := decodeRecord(t, `{
		"resourceType": "Observation",
		"id": "o1",
		"status": "final",
		"valueQuantity": {"value": 7.2, "unit": "mmol/L"}
	}`)

	tests := []struct {
		name string
		expr string
	}{
		{"absent segment", "Observation.code.coding.code"},
		{"root type mismatch", "Patient.status"},
		{"path through scalar", "Observation.status.code"},
		{"filter matches nothing", `Observation.valueQuantity.where(unit="mg").value`},
		{"absent leaf", "Observation.valueQuantity.system"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(record, mustCompile(t, tt.expr)); got != nil {
				t.Errorf("Extract(%q) = %#v, want nil", tt.expr, got)
			}
		})
	}
}

// Test the filter only keeps elements with exact, case-sensitive equality
func TestExtract_FilterCaseSensitive(t *testing.T) {
	record := decodeRecord(t, `{
		"resourceType": "Patient",
		"telecom": [{"system": "Phone", "value": "555-0142"}]
	}`)

	if got := Extract(record, mustCompile(t, `Patient.telecom.where(system="phone").value`)); got != nil {
		t.Errorf("Extract() = %#v, want nil (filter is case-sensitive)", got)
	}
	if got := Extract(record, mustCompile(t, `Patient.telecom.where(system="Phone").value`)); got != "555-0142" {
		t.Errorf("Extract() = %#v, want %q", got, "555-0142")
	}
}

// Test descendant wildcard traversal in deterministic order
func TestExtract_DescendantWildcard(t *testing.T) {
	record := decodeRecord(t, `{
		"resourceType": "Patient",
		"address": [{"city": "Portland"}],
		"contact": [{"address": {"city": "Salem"}}]
	}`)

	got := Extract(record, mustCompile(t, "Patient.**.city"))
	// Sorted key order: "address" before "contact".
	want := []any{"Portland", "Salem"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract(Patient.**.city) = %#v, want %#v", got, want)
	}
}

// Property-based test: extraction is deterministic (no hidden state)
func TestExtract_PropertyDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	record := decodeRecord(t, `{
		"resourceType": "Patient",
		"z": {"value": 1}, "a": {"value": 2}, "m": {"value": 3},
		"telecom": [{"system": "phone", "value": "555"}, {"system": "email", "value": "x@y"}]
	}`)

	exprs := []string{
		"Patient.**.value",
		"Patient.telecom.value",
		`Patient.telecom.where(system="phone").value`,
		"Patient.a.value",
		"Patient.missing.value",
	}

	properties.Property("extracting twice yields identical results", prop.ForAll(
		func(idx int) bool {
			path := mustCompile(t, exprs[idx%len(exprs)])
			first := Extract(record, path)
			second := Extract(record, path)
			return reflect.DeepEqual(first, second)
		},
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}

// Property-based test: extraction never panics on arbitrary record shapes
func TestExtract_PropertyNeverCrashes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	shapes := []string{
		`{"resourceType": "Patient"}`,
		`{"resourceType": "Patient", "a": null}`,
		`{"resourceType": "Patient", "a": [null, {"b": null}]}`,
		`{"resourceType": "Patient", "a": {"b": [[1, 2], [3]]}}`,
		`{"resourceType": "Patient", "a": "scalar"}`,
		`{}`,
	}

	properties.Property("extraction never panics", prop.ForAll(
		func(shapeIdx int, useFilter bool) bool {
			record := types.Record{}
			if err := json.Unmarshal([]byte(shapes[shapeIdx%len(shapes)]), &record); err != nil {
				return false
			}
			expr := "Patient.a.b"
			if useFilter {
				expr = `Patient.a.where(b="x").c`
			}

			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Extract() panicked: %v", r)
				}
			}()
			_ = Extract(record, mustCompile(t, expr))
			return true
		},
		gen.IntRange(0, 100),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
