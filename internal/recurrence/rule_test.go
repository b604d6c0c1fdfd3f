// rule_test.go
//
// Custodia - self-hosted personal asset and deadline tracking service
// Copyright (c) 2026 Custodia Authors
//
// This file is part of custodia.
// custodia is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// custodia is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with custodia.
// If not, see <https://www.gnu.org/licenses/>.

package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		freq     Frequency
		interval int
	}{
		{"daily", "FREQ=DAILY", Daily, 1},
		{"weekly with interval", "FREQ=WEEKLY;INTERVAL=2", Weekly, 2},
		{"lowercase and spaces", " freq = monthly ; interval = 3 ", Monthly, 3},
		{"unknown tokens ignored", "FREQ=YEARLY;BYMONTH=3;COUNT=5", Yearly, 1},
		{"zero interval falls back", "FREQ=DAILY;INTERVAL=0", Daily, 1},
		{"garbage interval falls back", "FREQ=DAILY;INTERVAL=soon", Daily, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.freq, rule.Freq)
			assert.Equal(t, tt.interval, rule.Interval)
		})
	}
}

func TestParseNoFreq(t *testing.T) {
	for _, raw := range []string{"", "INTERVAL=2", "FREQ=FORTNIGHTLY", "every two weeks"} {
		_, err := Parse(raw)
		assert.ErrorIs(t, err, ErrNoFreq, "raw=%q", raw)
	}
}

func TestString(t *testing.T) {
	rule, err := Parse("freq=monthly;interval=3;byday=MO")
	require.NoError(t, err)
	assert.Equal(t, "FREQ=MONTHLY;INTERVAL=3", rule.String())

	rule, err = Parse("FREQ=DAILY;INTERVAL=1")
	require.NoError(t, err)
	assert.Equal(t, "FREQ=DAILY", rule.String())
}

func TestNext(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		from time.Time
		want time.Time
	}{
		{"daily", Rule{Daily, 1}, date(2026, time.March, 15), date(2026, time.March, 16)},
		{"every 10 days", Rule{Daily, 10}, date(2026, time.March, 25), date(2026, time.April, 4)},
		{"weekly", Rule{Weekly, 1}, date(2026, time.March, 15), date(2026, time.March, 22)},
		{"biweekly", Rule{Weekly, 2}, date(2026, time.December, 25), date(2027, time.January, 8)},
		{"monthly", Rule{Monthly, 1}, date(2026, time.April, 10), date(2026, time.May, 10)},
		{"monthly clamps to short month", Rule{Monthly, 1}, date(2026, time.January, 31), date(2026, time.February, 28)},
		{"quarterly clamps", Rule{Monthly, 3}, date(2025, time.January, 31), date(2025, time.April, 30)},
		{"monthly across year end", Rule{Monthly, 2}, date(2026, time.December, 15), date(2027, time.February, 15)},
		{"yearly", Rule{Yearly, 1}, date(2026, time.March, 15), date(2027, time.March, 15)},
		{"yearly from leap day", Rule{Yearly, 1}, date(2024, time.February, 29), date(2025, time.February, 28)},
		{"every 2 years", Rule{Yearly, 2}, date(2026, time.March, 15), date(2028, time.March, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Next(tt.from))
		})
	}
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		base time.Time
		k    int
		want time.Time
	}{
		{"daily third", Rule{Daily, 1}, date(2026, time.March, 15), 3, date(2026, time.March, 18)},
		{"every 10 days twice", Rule{Daily, 10}, date(2026, time.March, 25), 2, date(2026, time.April, 14)},
		{"weekly fourth", Rule{Weekly, 1}, date(2026, time.March, 1), 4, date(2026, time.March, 29)},
		{"monthly keeps anchor day past a short month", Rule{Monthly, 1}, date(2025, time.January, 31), 2, date(2025, time.March, 31)},
		{"monthly clamps only in short months", Rule{Monthly, 1}, date(2025, time.January, 31), 3, date(2025, time.April, 30)},
		{"yearly from leap day clamps off years", Rule{Yearly, 1}, date(2024, time.February, 29), 3, date(2027, time.February, 28)},
		{"yearly from leap day recovers on leap years", Rule{Yearly, 1}, date(2024, time.February, 29), 4, date(2028, time.February, 29)},
		{"k below one returns base", Rule{Monthly, 1}, date(2026, time.March, 15), 0, date(2026, time.March, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Advance(tt.base, tt.k))
		})
	}
}

// Stepping occurrence by occurrence from a clamped date loses the anchor day;
// Advance must not.
func TestAdvanceDoesNotCompound(t *testing.T) {
	rule := Rule{Monthly, 1}
	base := date(2025, time.January, 31)

	stepped := rule.Next(rule.Next(rule.Next(base)))
	assert.Equal(t, date(2025, time.April, 28), stepped)

	assert.Equal(t, date(2025, time.April, 30), rule.Advance(base, 3))
}

func TestNextPreservesTimeOfDay(t *testing.T) {
	from := time.Date(2026, time.January, 31, 14, 30, 45, 0, time.UTC)
	next := (&Rule{Monthly, 1}).Next(from)
	assert.Equal(t, 14, next.Hour())
	assert.Equal(t, 30, next.Minute())
	assert.Equal(t, 45, next.Second())
	assert.Equal(t, 28, next.Day())
}
