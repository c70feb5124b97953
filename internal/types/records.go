// Package types provides domain models shared across reportable components.
//
// Zero-dependency design: records.go, rules.go, and errors.go use only the
// standard library so the engine packages stay free of transitive weight.
// ID utilities in ids.go import uuid but are isolated for selective use.
package types

// Record is one structured clinical record: a typed, deeply nested tree of
// scalar values, objects (map[string]any), and ordered lists ([]any).
// Records are schema-agnostic inputs decoded from JSON; the engine never
// mutates them and holds no reference beyond a single evaluation call.
type Record map[string]any

// ResourceType returns the record's schema discriminant (e.g. "Patient",
// "Condition", "Observation", "Encounter"). Empty string when untagged.
func (r Record) ResourceType() string {
	rt, _ := r["resourceType"].(string)
	return rt
}

// ID returns the record's stable identifier. Empty string when absent.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// FilterByType returns the records whose resourceType equals rt, preserving
// input order. Returns an empty (non-nil) slice when none match so callers
// can distinguish "no matches" from "no input" by length alone.
func FilterByType(records []Record, rt string) []Record {
	matched := make([]Record, 0, len(records))
	for _, rec := range records {
		if rec.ResourceType() == rt {
			matched = append(matched, rec)
		}
	}
	return matched
}

// Resource limits enforced by the rule engine to keep evaluation bounded.
const (
	// MaxPathDepth prevents runaway traversal on pathological path
	// expressions. 16 segments covers the deepest FHIR field paths in use.
	MaxPathDepth = 16

	// MaxConditionsPerRule bounds per-rule evaluation work. 64 conditions
	// is far beyond any authored reportability rule observed in practice.
	MaxConditionsPerRule = 64

	// MaxInValues bounds IN membership lists to avoid quadratic scans.
	MaxInValues = 64
)
