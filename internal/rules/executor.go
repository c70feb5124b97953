// internal/rules/executor.go
package rules

import (
	"fmt"
	"time"

	"github.com/caseworks/reportable/internal/types"
)

/*
 * Rule execution orchestration.
 *
 * Runs an ordered condition list against a record set under one logic
 * operator and aggregates per-condition booleans into the rule outcome.
 *
 * Every condition is evaluated independently and in input order: there is
 * no cross-condition short circuit at this level (unlike the per-record
 * short circuit inside RunCondition), so the result always carries full
 * diagnostics for every condition the author wrote.
 *
 * Vacuous aggregation: AND over an empty condition list is true, OR is
 * false - universal/existential quantification over zero conditions.
 *
 * Never throws: each condition runs under a recover guard, so one
 * malformed condition degrades to a failed ConditionResult instead of
 * aborting the rest of the rule.
 */

// ExecutionResult is the full outcome of one rule evaluation.
// ConditionMet and OverallResult are defined identically; the duplicate
// field is a documented redundancy inherited from the source design.
type ExecutionResult struct {
	ConditionMet       bool                `json:"conditionMet"`
	ExecutedConditions []ConditionResult   `json:"executedConditions"`
	OverallResult      bool                `json:"overallResult"`
	LogicOperator      types.LogicOperator `json:"logicOperator"`
	ExecutionTimeMs    int64               `json:"executionTimeMs"`
}

// execute runs all conditions and aggregates. Engine.Execute is the
// public entry; it injects the caching path compiler.
func execute(conditions []types.Condition, records []types.Record, logic types.LogicOperator, compile func(string) (*Path, error)) ExecutionResult {
	start := time.Now()

	executed := make([]ConditionResult, 0, len(conditions))
	for _, cond := range conditions {
		executed = append(executed, runGuarded(cond, records, compile))
	}

	overall := aggregate(executed, logic)

	return ExecutionResult{
		ConditionMet:       overall,
		ExecutedConditions: executed,
		OverallResult:      overall,
		LogicOperator:      logic,
		ExecutionTimeMs:    time.Since(start).Milliseconds(),
	}
}

// runGuarded evaluates one condition under a recover guard so an
// unexpected internal error surfaces as a failed condition result.
func runGuarded(cond types.Condition, records []types.Record, compile func(string) (*Path, error)) (res ConditionResult) {
	defer func() {
		if r := recover(); r != nil {
			res = ConditionResult{
				Condition: cond,
				Err: &types.Diagnostic{
					Kind:    types.DiagEvaluation,
					Message: fmt.Sprintf("Execution error: %v", r),
				},
			}
		}
	}()
	return RunCondition(cond, records, compile)
}

// aggregate folds per-condition results under the logic operator.
// AND is vacuously true over an empty list, OR vacuously false.
func aggregate(executed []ConditionResult, logic types.LogicOperator) bool {
	if logic == types.LogicOr {
		for _, c := range executed {
			if c.Result {
				return true
			}
		}
		return false
	}

	// AND, and the fail-closed default for anything unrecognized.
	for _, c := range executed {
		if !c.Result {
			return false
		}
	}
	return true
}
