package types

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// FlexDate is a time.Time that can be unmarshaled from either a bare date
// (2006-01-02) or a full RFC 3339 timestamp. Due dates are dates, but some
// client versions send midnight timestamps.
type FlexDate time.Time

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("FlexDate: expected string, got %s", data)
	}
	if s == "" {
		*f = FlexDate(time.Time{})
		return nil
	}

	if t, err := time.Parse(dateLayout, s); err == nil {
		*f = FlexDate(t)
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("FlexDate: invalid date %q: %w", s, err)
	}
	*f = FlexDate(t)
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(f).Format(dateLayout))
}

// Time converts FlexDate back to time.Time.
func (f FlexDate) Time() time.Time {
	return time.Time(f)
}

// IsZero reports whether the date is unset.
func (f FlexDate) IsZero() bool {
	return time.Time(f).IsZero()
}
