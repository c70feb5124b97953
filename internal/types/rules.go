// internal/types/rules.go
package types

import "encoding/json"

/*
 * Domain types for rule evaluation.
 *
 * Provides Rule, Condition, LogicOperator, and Diagnostic structures used
 * by internal/rules for validation and execution. These types are
 * wire-format agnostic: JSON tags match the authoring format, but nothing
 * here knows about storage or transport - rule persistence is an external
 * collaborator and only its payload shape crosses this boundary.
 *
 * Key types:
 *   - Condition: one atomic test (resource type + path + operator + value)
 *   - LogicOperator: AND/OR combinator over per-condition results
 *   - Rule: named condition list with a single logic operator
 *   - Diagnostic: structured per-condition failure (kind + message)
 *
 * Dependencies: encoding/json only.
 */

// LogicOperator governs how per-condition booleans combine into one
// rule-level boolean. AND is vacuously true over an empty condition list,
// OR vacuously false, mirroring universal/existential quantification.
type LogicOperator string

const (
	LogicAnd LogicOperator = "AND"
	LogicOr  LogicOperator = "OR"
)

// ParseLogicOperator validates a logic operator token.
func ParseLogicOperator(s string) (LogicOperator, error) {
	switch LogicOperator(s) {
	case LogicAnd, LogicOr:
		return LogicOperator(s), nil
	default:
		return "", ErrInvalidLogicOperator
	}
}

// Condition represents a single condition in a rule.
// ResourceType, Path, and Operator are required; Value is required for all
// operators except the existence-only operator. Conditions are authored
// externally and immutable once constructed.
type Condition struct {
	ResourceType string `json:"resourceType"`
	Path         string `json:"path"`
	Operator     string `json:"operator"`
	Value        any    `json:"value,omitempty"`
}

// Rule is the shape persisted by the external rule-storage collaborator:
// an ordered condition list under one logic operator plus metadata the
// engine itself never produces or depends on.
type Rule struct {
	RuleID     RuleID        `json:"ruleId,omitempty"`
	Name       string        `json:"name,omitempty"`
	Logic      LogicOperator `json:"logicOperator"`
	Conditions []Condition   `json:"conditions"`
}

// DiagnosticKind classifies per-condition failures. Errors are data, not
// control flow: every failure mode is representable in the execution
// result instead of propagating as a thrown error.
type DiagnosticKind int

const (
	// DiagSyntax: the condition's path expression failed to compile.
	// Detected before any record is touched.
	DiagSyntax DiagnosticKind = iota

	// DiagMissingData: no records of the condition's resource type were
	// supplied. A reported outcome, not a failure of the engine.
	DiagMissingData

	// DiagEvaluation: extraction or comparison failed unexpectedly for a
	// record. Caught per-record; sibling conditions keep evaluating.
	DiagEvaluation
)

// Diagnostic is a structured per-condition error. It keeps the failure
// kind for programmatic handling while marshaling as the bare message
// string, preserving the `error?: string` wire shape.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
}

// MarshalJSON emits the message string only.
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Message)
}

// String returns the diagnostic message.
func (d Diagnostic) String() string {
	return d.Message
}
