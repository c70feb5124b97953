// internal/rules/validate.go
package rules

import (
	"fmt"
)

/*
 * Path expression validation.
 *
 * Thin wrapper over CompilePath so the validator and the extractor share
 * one definition of "valid": anything the validator accepts, the
 * extractor accepts, and vice versa.
 *
 * Warnings are advisory only and never block extraction. The one warning
 * today flags the descendant wildcard, which is valid grammar but can
 * visit every node in a large record.
 */

// Validation is the outcome of validating a path expression.
type Validation struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ValidatePath compiles a path expression and reports errors and warnings.
func ValidatePath(expr string) Validation {
	path, err := CompilePath(expr)
	if err != nil {
		return Validation{IsValid: false, Errors: []string{err.Error()}}
	}

	v := Validation{IsValid: true}
	for _, step := range path.Steps() {
		if step.Descendant {
			v.Warnings = append(v.Warnings,
				fmt.Sprintf("descendant wildcard '**' in %q may be expensive to evaluate", expr))
			break
		}
	}
	return v
}
