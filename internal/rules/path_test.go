package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/caseworks/reportable/internal/types"
)

// Test compilation of well-formed path expressions
func TestCompilePath_Normal(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []Step
	}{
		{
			name: "single segment",
			expr: "Patient",
			want: []Step{{Name: "Patient"}},
		},
		{
			name: "dotted traversal",
			expr: "Condition.code.coding.code",
			want: []Step{{Name: "Condition"}, {Name: "code"}, {Name: "coding"}, {Name: "code"}},
		},
		{
			name: "inline filter",
			expr: `Patient.telecom.where(system="phone").value`,
			want: []Step{
				{Name: "Patient"},
				{Name: "telecom", Filter: &FieldFilter{Field: "system", Value: "phone"}},
				{Name: "value"},
			},
		},
		{
			name: "filter literal with dots",
			expr: `Condition.code.coding.where(code="U07.1").display`,
			want: []Step{
				{Name: "Condition"},
				{Name: "code"},
				{Name: "coding", Filter: &FieldFilter{Field: "code", Value: "U07.1"}},
				{Name: "display"},
			},
		},
		{
			name: "descendant wildcard",
			expr: "Patient.**.city",
			want: []Step{{Name: "Patient"}, {Descendant: true}, {Name: "city"}},
		},
		{
			name: "bare segment named where",
			expr: "Observation.where",
			want: []Step{{Name: "Observation"}, {Name: "where"}},
		},
		{
			name: "underscored identifiers",
			expr: "Patient._meta.version_id",
			want: []Step{{Name: "Patient"}, {Name: "_meta"}, {Name: "version_id"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := CompilePath(tt.expr)
			if err != nil {
				t.Fatalf("CompilePath(%q) error = %v, want nil", tt.expr, err)
			}
			got := path.Steps()
			if len(got) != len(tt.want) {
				t.Fatalf("Steps() len = %d, want %d", len(got), len(tt.want))
			}
			for i, step := range got {
				want := tt.want[i]
				if step.Name != want.Name || step.Descendant != want.Descendant {
					t.Errorf("Steps()[%d] = %+v, want %+v", i, step, want)
				}
				if (step.Filter == nil) != (want.Filter == nil) {
					t.Fatalf("Steps()[%d] filter presence = %v, want %v", i, step.Filter != nil, want.Filter != nil)
				}
				if step.Filter != nil && *step.Filter != *want.Filter {
					t.Errorf("Steps()[%d] filter = %+v, want %+v", i, *step.Filter, *want.Filter)
				}
			}
			if path.String() != tt.expr {
				t.Errorf("String() = %q, want %q", path.String(), tt.expr)
			}
		})
	}
}

// Test rejection of malformed path expressions
func TestCompilePath_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty expression", ""},
		{"whitespace only", "   "},
		{"leading dot", ".code"},
		{"trailing dot", "Patient."},
		{"double dot", "Patient..name"},
		{"single star", "Patient.*.city"},
		{"unterminated filter", `Patient.telecom.where(system="phone"`},
		{"unterminated string", `Patient.telecom.where(system="phone)`},
		{"missing equals", `Patient.telecom.where(system "phone")`},
		{"unquoted literal", `Patient.telecom.where(system=phone)`},
		{"numeric segment start", "Patient.0code"},
		{"bracket syntax", "Patient.name[0]"},
		{"empty filter", "Patient.telecom.where()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompilePath(tt.expr)
			if err == nil {
				t.Fatalf("CompilePath(%q) error = nil, want syntax error", tt.expr)
			}
			if !errors.Is(err, types.ErrInvalidPath) {
				t.Errorf("CompilePath(%q) error = %v, want ErrInvalidPath", tt.expr, err)
			}
		})
	}
}

// Test error messages name the offending position
func TestCompilePath_ErrorDetail(t *testing.T) {
	_, err := CompilePath("Patient.name[0]")
	if err == nil {
		t.Fatal("CompilePath() error = nil, want syntax error")
	}
	if !strings.Contains(err.Error(), "position") {
		t.Errorf("error %q does not name the offending position", err.Error())
	}
}

// Test depth limit enforcement at compile time
func TestCompilePath_DepthLimit(t *testing.T) {
	segments := make([]string, types.MaxPathDepth+1)
	for i := range segments {
		segments[i] = "a"
	}
	expr := strings.Join(segments, ".")

	_, err := CompilePath(expr)
	if !errors.Is(err, types.ErrPathTooDeep) {
		t.Fatalf("CompilePath() error = %v, want ErrPathTooDeep", err)
	}

	// Exactly at the limit compiles.
	if _, err := CompilePath(strings.Join(segments[:types.MaxPathDepth], ".")); err != nil {
		t.Fatalf("CompilePath() at depth limit error = %v, want nil", err)
	}
}

// Property-based test: compilation never crashes on arbitrary input
func TestCompilePath_PropertyNeverCrashes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("compilation never crashes regardless of input", prop.ForAll(
		func(expr string) bool {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("CompilePath(%q) panicked: %v", expr, r)
				}
			}()
			_, _ = CompilePath(expr)
			return true
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

// Property-based test: compilation is deterministic
func TestCompilePath_PropertyDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("same expression compiles identically", prop.ForAll(
		func(depth int, withFilter bool) bool {
			segments := make([]string, 0, depth+1)
			segments = append(segments, "Patient")
			for i := 0; i < depth; i++ {
				segments = append(segments, "seg")
			}
			expr := strings.Join(segments, ".")
			if withFilter {
				expr += `.where(system="phone")`
			}

			p1, err1 := CompilePath(expr)
			p2, err2 := CompilePath(expr)
			if (err1 == nil) != (err2 == nil) {
				return false
			}
			if err1 != nil {
				return true
			}
			if len(p1.Steps()) != len(p2.Steps()) {
				return false
			}
			for i := range p1.Steps() {
				if p1.Steps()[i].Name != p2.Steps()[i].Name {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 10),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
