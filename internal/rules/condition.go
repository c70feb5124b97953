// internal/rules/condition.go
package rules

import (
	"fmt"

	"github.com/caseworks/reportable/internal/types"
)

/*
 * Single-condition evaluation.
 *
 * Runs one condition against a record set: filter records by resource
 * type, then extract and compare per record in input order.
 *
 * Existential semantics: a condition asks "does ANY record of my resource
 * type satisfy this?", not "do ALL?". The scan short-circuits on the
 * first satisfying record (first-match-wins) and reports that record's
 * extracted value. Preserved exactly from the source design; universal
 * semantics would change which rules fire.
 *
 * On a miss, ExtractedValue holds the value from the LAST record
 * examined. Diagnostic convenience only - it shows the author what the
 * data looked like - with no semantic weight.
 *
 * Failure modes are data, not control flow:
 *   - path fails to compile      -> syntax diagnostic, no extraction
 *   - no records of the type     -> missing-data diagnostic
 *   - panic during a record scan -> evaluation diagnostic, scan continues
 * All three leave Result=false and never abort sibling conditions.
 */

// ConditionResult is the outcome of evaluating one condition.
type ConditionResult struct {
	Condition      types.Condition   `json:"condition"`
	Result         bool              `json:"result"`
	ExtractedValue any               `json:"extractedValue"`
	Err            *types.Diagnostic `json:"error,omitempty"`
}

// RunCondition evaluates one condition against the supplied records.
// The compile argument resolves path expressions; the Engine passes its
// caching compiler, tests may pass CompilePath directly.
func RunCondition(cond types.Condition, records []types.Record, compile func(string) (*Path, error)) ConditionResult {
	res := ConditionResult{Condition: cond}

	path, err := compile(cond.Path)
	if err != nil {
		res.Err = &types.Diagnostic{Kind: types.DiagSyntax, Message: err.Error()}
		return res
	}

	matching := types.FilterByType(records, cond.ResourceType)
	if len(matching) == 0 {
		res.Err = &types.Diagnostic{
			Kind:    types.DiagMissingData,
			Message: fmt.Sprintf("No %s resources found", cond.ResourceType),
		}
		return res
	}

	op := ParseOperator(cond.Operator)

	for _, rec := range matching {
		value, err := extractGuarded(rec, path)
		if err != nil {
			res.Err = &types.Diagnostic{
				Kind:    types.DiagEvaluation,
				Message: fmt.Sprintf("Execution error: %v", err),
			}
			continue
		}

		res.ExtractedValue = value
		if EvaluateOperator(value, op, cond.Value) {
			// First match wins: stop scanning further records.
			res.Result = true
			res.Err = nil
			return res
		}
	}

	return res
}

// extractGuarded wraps extraction with a recover so a malformed record
// shape surfaces as a per-record diagnostic instead of unwinding the
// whole rule. Extraction is pure over decoded JSON and should not panic;
// the guard enforces the never-throws contract regardless.
func extractGuarded(rec types.Record, path *Path) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("%v", r)
		}
	}()
	return Extract(rec, path), nil
}
