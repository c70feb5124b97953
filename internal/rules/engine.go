// internal/rules/engine.go
package rules

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/caseworks/reportable/internal/types"
)

/*
 * Engine: the public entry point for rule evaluation.
 *
 * Stateless with respect to evaluation - every call computes a fresh
 * result from its inputs - but carries an LRU cache of compiled path
 * expressions so hot loops evaluating many rules against many record
 * sets do not re-parse the same path strings. Compiled paths are
 * immutable, so cache hits are safe under concurrent callers; the LRU
 * itself is thread-safe.
 *
 * ValidateRule mirrors compile-time validation in spirit: required
 * fields, condition-count limits, and path validity are checked when a
 * rule definition enters the system, not on every evaluation.
 */

// DefaultPathCacheSize bounds the compiled-path cache. 512 distinct path
// expressions exceeds any realistic rule corpus per process.
const DefaultPathCacheSize = 512

// Engine evaluates rules against record sets.
type Engine struct {
	paths *lru.Cache[string, *Path]
}

// NewEngine creates an engine with the default path cache size.
func NewEngine() *Engine {
	e, err := NewEngineWithCacheSize(DefaultPathCacheSize)
	if err != nil {
		// Unreachable: the default size is a positive constant.
		panic(err)
	}
	return e
}

// NewEngineWithCacheSize creates an engine with an explicit compiled-path
// cache size. Size must be positive.
func NewEngineWithCacheSize(size int) (*Engine, error) {
	cache, err := lru.New[string, *Path](size)
	if err != nil {
		return nil, fmt.Errorf("path cache: %w", err)
	}
	return &Engine{paths: cache}, nil
}

// Execute runs the conditions against the records under the logic
// operator and returns full diagnostics. Never returns an error: all
// domain-level failures are represented inside the ExecutionResult.
func (e *Engine) Execute(conditions []types.Condition, records []types.Record, logic types.LogicOperator) ExecutionResult {
	return execute(conditions, records, logic, e.compile)
}

// ExecuteRule is a convenience wrapper over Execute for a whole rule
// definition.
func (e *Engine) ExecuteRule(rule *types.Rule, records []types.Record) ExecutionResult {
	return e.Execute(rule.Conditions, records, rule.Logic)
}

// compile returns a compiled path, consulting the cache first.
func (e *Engine) compile(expr string) (*Path, error) {
	if path, ok := e.paths.Get(expr); ok {
		return path, nil
	}
	path, err := CompilePath(expr)
	if err != nil {
		return nil, err
	}
	e.paths.Add(expr, path)
	return path, nil
}

// ValidateRule checks a rule definition before it is accepted: logic
// operator, condition count, required condition fields, value presence
// for value-bearing operators, and path validity. Unknown operator names
// pass validation deliberately - they evaluate to false rather than
// blocking the rule (fail-closed leniency the callers depend on).
func (e *Engine) ValidateRule(rule *types.Rule) error {
	if _, err := types.ParseLogicOperator(string(rule.Logic)); err != nil {
		return err
	}
	if len(rule.Conditions) > types.MaxConditionsPerRule {
		return fmt.Errorf("%w: %d conditions exceeds limit of %d",
			types.ErrTooManyConditions, len(rule.Conditions), types.MaxConditionsPerRule)
	}

	for i, cond := range rule.Conditions {
		if err := validateCondition(cond); err != nil {
			return fmt.Errorf("condition %d: %w", i, err)
		}
		if _, err := e.compile(cond.Path); err != nil {
			return fmt.Errorf("condition %d: %w", i, err)
		}
	}
	return nil
}

// validateCondition enforces required fields on one condition.
func validateCondition(cond types.Condition) error {
	if cond.ResourceType == "" {
		return types.ErrMissingResourceType
	}
	if cond.Path == "" {
		return types.ErrMissingPath
	}
	if cond.Operator == "" {
		return types.ErrMissingOperator
	}
	if op := ParseOperator(cond.Operator); op.RequiresValue() && op != OpUnknown && cond.Value == nil {
		return types.ErrMissingValue
	}
	if list, ok := cond.Value.([]any); ok && len(list) > types.MaxInValues {
		return fmt.Errorf("value list has %d entries, limit is %d", len(list), types.MaxInValues)
	}
	return nil
}
