package recommend

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidProfile matches any *ValidationError via errors.Is.
var ErrInvalidProfile = errors.New("invalid user profile")

// ValidationFault describes one malformed or out-of-domain profile field.
type ValidationFault struct {
	Field  string `json:"field"`
	Value  string `json:"value,omitempty"`
	Reason string `json:"reason"`
}

func (f ValidationFault) String() string {
	if f.Value == "" {
		return fmt.Sprintf("%s: %s", f.Field, f.Reason)
	}
	return fmt.Sprintf("%s: %s (got %s)", f.Field, f.Reason, f.Value)
}

// ValidationError aborts a whole recommendation request. It carries every
// fault found in the profile, not just the first.
type ValidationError struct {
	Faults []ValidationFault
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Faults))
	for i, f := range e.Faults {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidProfile, strings.Join(parts, "; "))
}

// Is lets callers test with errors.Is(err, ErrInvalidProfile).
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidProfile
}

// DataQualityFault reports a catalog record that was excluded from a
// filtering pass because a field needed for comparison is missing or invalid.
type DataQualityFault struct {
	CardID   string `json:"card_id"`
	CardName string `json:"card_name,omitempty"`
	Field    string `json:"field"`
	Reason   string `json:"reason"`
}

func (f DataQualityFault) String() string {
	return fmt.Sprintf("card %s (%s): %s %s", f.CardID, f.CardName, f.Field, f.Reason)
}
