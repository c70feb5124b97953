package types

import (
	"github.com/google/uuid"
)

// RuleID identifies a stored rule definition.
// String alias enables type safety while keeping JSON string serialization.
type RuleID string

// RecordID identifies a clinical record within a supplied record set.
type RecordID string

// NewRuleID generates a UUIDv7 rule identifier.
// Time-ordered IDs keep rule listings in creation order without a sort.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRuleID() RuleID {
	return RuleID(uuid.Must(uuid.NewV7()).String())
}

// NewRecordID generates a UUIDv7 record identifier for synthetic records
// that carry no caller-assigned id.
func NewRecordID() RecordID {
	return RecordID(uuid.Must(uuid.NewV7()).String())
}

// ParseRuleID validates and converts a string to RuleID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the system.
func ParseRuleID(s string) (RuleID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return RuleID(s), nil
}
