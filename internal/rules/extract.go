// internal/rules/extract.go
package rules

import (
	"sort"

	"github.com/caseworks/reportable/internal/types"
)

/*
 * Path extraction over structured records.
 *
 * Walks a compiled Path against one record tree. Pure function of its
 * inputs: no side effects, no I/O, records are never mutated.
 *
 * Traversal model: a flat working set of context values. Each step maps
 * the set to a new set; list values flatten one level as they enter the
 * set, so a segment applied to a list applies to every element. An inline
 * .where(field="literal") filter narrows list elements by case-sensitive
 * string equality on the named sub-field before descent continues.
 *
 * Result collapsing: exactly one final value is returned bare, several as
 * a flat list, none as nil. This is a deliberate usability simplification
 * inherited from the source design - rule authors write
 * "Condition.code.coding.code" and compare against a scalar without
 * caring whether the record carried one coding or three.
 *
 * Missing data is not an error: a syntactically valid path that traverses
 * a segment absent on this record's shape yields nil. Only compilation
 * can fail, and that happens before extraction starts.
 *
 * Descendant wildcard "**" expands the working set to every descendant
 * value in sorted-key order (stable evaluation order invariant: identical
 * inputs must yield identical results, so map iteration is never exposed).
 */

// Extract evaluates a compiled path against one record.
// Returns a bare value for exactly one result, a flat []any for several,
// nil for none.
func Extract(record types.Record, path *Path) any {
	steps := path.Steps()
	if len(steps) == 0 {
		return nil
	}

	// Root segment gates on resourceType: a path rooted at a different
	// type naturally yields no result rather than an error.
	root := steps[0]
	if root.Descendant || record.ResourceType() != root.Name {
		return nil
	}
	contexts := []any{map[string]any(record)}
	if root.Filter != nil {
		contexts = applyFilter(contexts, root.Filter)
	}

	for _, step := range steps[1:] {
		contexts = applyStep(contexts, step)
		if len(contexts) == 0 {
			return nil
		}
	}

	switch len(contexts) {
	case 0:
		return nil
	case 1:
		return contexts[0]
	default:
		return contexts
	}
}

// applyStep maps the working set through one traversal step.
func applyStep(contexts []any, step Step) []any {
	if step.Descendant {
		var out []any
		for _, ctx := range contexts {
			collectDescendants(ctx, &out)
		}
		if step.Filter != nil {
			out = applyFilter(out, step.Filter)
		}
		return out
	}

	var out []any
	for _, ctx := range contexts {
		switch v := ctx.(type) {
		case map[string]any:
			if val, ok := v[step.Name]; ok {
				appendFlat(&out, val)
			}
		case []any:
			// Lists flatten one level: the segment applies to each element.
			for _, elem := range v {
				if m, ok := elem.(map[string]any); ok {
					if val, ok := m[step.Name]; ok {
						appendFlat(&out, val)
					}
				}
			}
		}
	}

	if step.Filter != nil {
		out = applyFilter(out, step.Filter)
	}
	return out
}

// appendFlat appends a traversal result, flattening lists one level so
// arrays of results collapse into a single flat working set.
func appendFlat(out *[]any, val any) {
	if list, ok := val.([]any); ok {
		*out = append(*out, list...)
		return
	}
	*out = append(*out, val)
}

// applyFilter keeps object values whose named sub-field string-equals the
// filter literal. Non-object values cannot match a field filter.
func applyFilter(contexts []any, f *FieldFilter) []any {
	var kept []any
	for _, ctx := range contexts {
		m, ok := ctx.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := m[f.Field].(string); ok && s == f.Value {
			kept = append(kept, m)
		}
	}
	return kept
}

// collectDescendants appends every value nested under ctx, depth-first.
// Lists are transparent: their elements join the working set but the
// container itself does not, so a later segment never visits the same
// element twice (once via the list, once directly). Object keys iterate
// in sorted order (stable evaluation order invariant).
func collectDescendants(ctx any, out *[]any) {
	switch v := ctx.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectValue(v[k], out)
		}
	case []any:
		for _, elem := range v {
			collectValue(elem, out)
		}
	}
}

// collectValue appends one descendant value and recurses into it.
func collectValue(val any, out *[]any) {
	if list, ok := val.([]any); ok {
		collectDescendants(list, out)
		return
	}
	*out = append(*out, val)
	collectDescendants(val, out)
}
