// rule.go
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

// Package recurrence implements the restricted RRULE-like grammar persisted
// on deadline rows:
//
//	FREQ=<DAILY|WEEKLY|MONTHLY|YEARLY>[;INTERVAL=<positive integer>]
//
// Rule strings were written free-form by mobile clients, so parsing is
// best-effort and advancing a due date is a pure function: nothing in this
// package touches storage.
package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Frequency is the period unit of a recurrence rule.
type Frequency string

const (
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
	Yearly  Frequency = "YEARLY"
)

// ErrNoFreq is returned by Parse when the rule has no recognizable FREQ
// token. Callers treat it as "not recurring", never as a request failure.
var ErrNoFreq = errors.New("recurrence: missing or unrecognized FREQ")

// Rule is a parsed recurrence specification.
type Rule struct {
	Freq     Frequency
	Interval int
}

// Parse decodes a persisted rule string. Unknown tokens are ignored and an
// INTERVAL below 1 (or unparsable) falls back to 1. Only a missing or
// unrecognized FREQ is an error.
func Parse(raw string) (*Rule, error) {
	rule := &Rule{Interval: 1}
	found := false

	for _, part := range strings.Split(raw, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "FREQ":
			switch f := Frequency(strings.ToUpper(strings.TrimSpace(value))); f {
			case Daily, Weekly, Monthly, Yearly:
				rule.Freq = f
				found = true
			}
		case "INTERVAL":
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n >= 1 {
				rule.Interval = n
			}
		}
	}

	if !found {
		return nil, ErrNoFreq
	}
	return rule, nil
}

// String re-encodes the rule in canonical form.
func (r *Rule) String() string {
	if r.Interval > 1 {
		return fmt.Sprintf("FREQ=%s;INTERVAL=%d", r.Freq, r.Interval)
	}
	return fmt.Sprintf("FREQ=%s", r.Freq)
}

// Next returns the occurrence one period after from. Month and year steps
// clamp the day-of-month at the end of the target month, so a Jan 31 anchor
// advanced by three months lands on Apr 30, not May 1.
func (r *Rule) Next(from time.Time) time.Time {
	return r.Advance(from, 1)
}

// Advance returns the k-th occurrence after base. Every occurrence is
// computed from the anchor, never from a previous occurrence, so a clamped
// month cannot lose the anchor's day: Jan 31 monthly yields Feb 28, Mar 31,
// Apr 30 rather than drifting to the 28th.
func (r *Rule) Advance(base time.Time, k int) time.Time {
	if k < 1 {
		return base
	}
	n := r.Interval
	if n < 1 {
		n = 1
	}
	switch r.Freq {
	case Daily:
		return base.AddDate(0, 0, n*k)
	case Weekly:
		return base.AddDate(0, 0, 7*n*k)
	case Monthly:
		return addMonthsClamped(base, n*k)
	case Yearly:
		return addMonthsClamped(base, 12*n*k)
	}
	return base
}

func addMonthsClamped(t time.Time, months int) time.Time {
	// time.Date normalizes month overflow, so anchor on the first of the
	// target month and clamp the day afterwards.
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	day := t.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
