// Package source provides file-backed stand-ins for the engine's external
// collaborators: a record fetcher and a rule store. The engine itself
// never performs I/O; these loaders exist for the CLI harness and
// sandbox evaluation, and only the data shapes defined in internal/types
// cross the boundary.
package source

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/caseworks/reportable/internal/types"
)

// RecordSource fetches records of a resource type, optionally narrowed by
// a subject reference (e.g. "Patient/123"). Mirrors the shape of the
// remote record-fetch collaborator.
type RecordSource interface {
	Fetch(resourceType, subjectRef string) ([]types.Record, error)
}

// FileSource is a RecordSource over a JSON file loaded once up front.
type FileSource struct {
	records []types.Record
}

// NewFileSource loads records from path. Accepts either a bare JSON array
// of records or a bundle of the form {"entry": [{"resource": {...}}]}.
func NewFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	records, err := DecodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &FileSource{records: records}, nil
}

// Records returns every loaded record.
func (s *FileSource) Records() []types.Record {
	return s.records
}

// Fetch returns records of the given type, optionally filtered by the
// subject reference under subject.reference or patient.reference.
func (s *FileSource) Fetch(resourceType, subjectRef string) ([]types.Record, error) {
	matched := types.FilterByType(s.records, resourceType)
	if subjectRef == "" {
		return matched, nil
	}

	var filtered []types.Record
	for _, rec := range matched {
		if recordSubject(rec) == subjectRef {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

// recordSubject pulls the subject or patient reference off a record.
func recordSubject(rec types.Record) string {
	for _, field := range []string{"subject", "patient"} {
		if m, ok := rec[field].(map[string]any); ok {
			if ref, ok := m["reference"].(string); ok {
				return ref
			}
		}
	}
	return ""
}

// DecodeRecords parses record JSON in either supported layout.
func DecodeRecords(data []byte) ([]types.Record, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var records []types.Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode record array: %w", err)
		}
		return records, nil
	}

	var bundle struct {
		Entry []struct {
			Resource types.Record `json:"resource"`
		} `json:"entry"`
	}
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("decode record bundle: %w", err)
	}
	records := make([]types.Record, 0, len(bundle.Entry))
	for _, e := range bundle.Entry {
		if e.Resource != nil {
			records = append(records, e.Resource)
		}
	}
	return records, nil
}

// LoadRule reads a rule definition from a JSON file. Structural checks
// only; semantic validation (paths, operators, limits) belongs to
// Engine.ValidateRule.
func LoadRule(path string) (*types.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule: %w", err)
	}
	var rule types.Rule
	if err := json.Unmarshal(data, &rule); err != nil {
		return nil, fmt.Errorf("%s: decode rule: %w", path, err)
	}
	return &rule, nil
}
