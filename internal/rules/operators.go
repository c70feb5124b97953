// internal/rules/operators.go
package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

/*
 * Operator comparison logic.
 *
 * Implements the 8 condition operators as a pure dispatch table over an
 * enumerated Operator type. Misspelling an operator in authored rule
 * JSON parses to OpUnknown and evaluates to false - fail closed, never
 * throw. This leniency is load-bearing: downstream callers depend on
 * rules continuing to evaluate rather than crashing on a typo, so an
 * unknown operator is not escalated to an error.
 *
 * Nil policy: a nil extracted value fails every operator closed except
 * exists (which is the nil check itself) and not_equals against nil
 * (strict inequality is defined for absent values). Absent data must
 * never spuriously satisfy a rule.
 *
 * Numeric equality tolerates float64/int/int64 mixing for JSON
 * compatibility, but never crosses into strings: "5" does not equal 5.
 *
 * Why function-based: 8 operators via switch statement is cleaner than
 * 8 interface implementations with minimal behavior variation.
 */

// Operator enumerates the condition comparison operators.
type Operator int

const (
	OpUnknown Operator = iota
	OpEquals
	OpNotEquals
	OpContains
	OpIn
	OpGreater
	OpLess
	OpExists
	OpMatches
)

// operatorNames maps authored operator tokens to the enum.
var operatorNames = map[string]Operator{
	"equals":     OpEquals,
	"not_equals": OpNotEquals,
	"contains":   OpContains,
	"in":         OpIn,
	"greater":    OpGreater,
	"less":       OpLess,
	"exists":     OpExists,
	"matches":    OpMatches,
}

// ParseOperator maps an operator name to its enum value.
// Unrecognized names map to OpUnknown, which evaluates to false.
func ParseOperator(name string) Operator {
	if op, ok := operatorNames[name]; ok {
		return op
	}
	return OpUnknown
}

// RequiresValue reports whether the operator needs a comparison value.
// Only the existence check ignores the expected value entirely.
func (op Operator) RequiresValue() bool {
	return op != OpExists
}

// String returns the authored token for the operator.
func (op Operator) String() string {
	for name, o := range operatorNames {
		if o == op {
			return name
		}
	}
	return "unknown"
}

// EvaluateOperator applies the operator to an extracted value and an
// expected value. Total over all operators; never panics.
func EvaluateOperator(value any, op Operator, expected any) bool {
	if value == nil {
		switch op {
		case OpExists:
			return false
		case OpNotEquals:
			// Strict inequality is defined for absent values:
			// nil not_equals "x" holds, nil not_equals nil does not.
			return expected != nil
		default:
			// Fail closed: absent data satisfies nothing else.
			return false
		}
	}

	switch op {
	case OpEquals:
		return strictEqual(value, expected)
	case OpNotEquals:
		return !strictEqual(value, expected)
	case OpContains:
		return compareContains(value, expected)
	case OpIn:
		return compareIn(value, expected)
	case OpGreater:
		return compareNumeric(value, expected) > 0
	case OpLess:
		return compareNumeric(value, expected) < 0
	case OpExists:
		return true
	case OpMatches:
		return compareMatches(value, expected)
	default:
		return false
	}
}

// strictEqual performs strict equality with numeric width tolerance.
// float64/int/int64 mix freely (JSON numbers are one type); everything
// else requires identical comparable types. Non-comparable values
// (objects, lists) never compare equal.
func strictEqual(a, b any) bool {
	if na, nb, ok := asNumbers(a, b); ok {
		return na == nb
	}
	if !isComparable(a) || !isComparable(b) {
		return false
	}
	return a == b
}

// isComparable reports whether == is safe on the value.
// Guards against panics on map/slice operands.
func isComparable(v any) bool {
	switch v.(type) {
	case nil, bool, string, float64, float32, int, int8, int16, int32, int64:
		return true
	default:
		return false
	}
}

// compareContains performs a case-insensitive substring test.
// Both sides are stringified, lower-cased, then substring-checked.
func compareContains(value, expected any) bool {
	return strings.Contains(
		strings.ToLower(stringify(value)),
		strings.ToLower(stringify(expected)),
	)
}

// compareIn tests membership. A list expected value uses equality
// semantics per element; a scalar expected value is split on commas with
// each token trimmed and compared against the stringified value.
func compareIn(value, expected any) bool {
	if list, ok := expected.([]any); ok {
		for _, elem := range list {
			if strictEqual(value, elem) {
				return true
			}
		}
		return false
	}

	needle := stringify(value)
	for _, tok := range strings.Split(stringify(expected), ",") {
		if strings.TrimSpace(tok) == needle {
			return true
		}
	}
	return false
}

// compareNumeric performs three-way numeric comparison (-1/0/1) after
// coercing both sides. Returns 0 for incomparable operands so both
// greater and less fail closed.
func compareNumeric(a, b any) int {
	na, oka := toNumber(a)
	nb, okb := toNumber(b)
	if !oka || !okb {
		return 0
	}
	switch {
	case na < nb:
		return -1
	case na > nb:
		return 1
	default:
		return 0
	}
}

// compareMatches treats the expected value as a case-insensitive regular
// expression against the stringified extracted value. A malformed
// pattern returns false, never an error.
func compareMatches(value, expected any) bool {
	re, err := regexp.Compile("(?i)" + stringify(expected))
	if err != nil {
		return false
	}
	return re.MatchString(stringify(value))
}

// asNumbers attempts to convert both values to float64.
// Returns converted values and a success flag.
func asNumbers(a, b any) (float64, float64, bool) {
	na, oka := asFloat64(a)
	nb, okb := asFloat64(b)
	return na, nb, oka && okb
}

// asFloat64 converts numeric types to float64 without crossing from
// strings. Used for strict equality, where "5" must not equal 5.
func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// toNumber coerces a value to float64 for ordering comparisons.
// Unlike asFloat64 it accepts numeric strings ("5" greater "3" holds);
// whitespace-only strings are not valid numbers.
func toNumber(v any) (float64, bool) {
	if f, ok := asFloat64(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// stringify renders a value for substring, membership, and regex
// comparisons. Numbers format without a trailing ".0" so 5.0 renders
// as "5", matching how authored rule values read.
func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		if s {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}
