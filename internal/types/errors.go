package types

import "errors"

// Sentinel errors for reportable engine operations.
var (
	// ErrInvalidPath indicates a path expression failed to compile.
	ErrInvalidPath = errors.New("invalid path syntax")

	// ErrPathTooDeep indicates a path expression exceeds MaxPathDepth segments.
	ErrPathTooDeep = errors.New("path exceeds maximum depth")

	// ErrEmptyPath indicates an empty path expression.
	ErrEmptyPath = errors.New("path expression is empty")

	// ErrMissingResourceType indicates a condition without a resource type.
	ErrMissingResourceType = errors.New("condition resource type is required")

	// ErrMissingPath indicates a condition without a path expression.
	ErrMissingPath = errors.New("condition path is required")

	// ErrMissingOperator indicates a condition without an operator name.
	ErrMissingOperator = errors.New("condition operator is required")

	// ErrMissingValue indicates a condition whose operator requires a
	// comparison value but none was supplied.
	ErrMissingValue = errors.New("condition value is required for this operator")

	// ErrTooManyConditions indicates a rule exceeds MaxConditionsPerRule.
	ErrTooManyConditions = errors.New("rule has too many conditions")

	// ErrInvalidLogicOperator indicates a logic operator other than AND/OR.
	ErrInvalidLogicOperator = errors.New("logic operator must be AND or OR")

	// ErrUnknownResourceType indicates a resource type absent from the
	// synthetic record catalog.
	ErrUnknownResourceType = errors.New("unknown resource type")
)
