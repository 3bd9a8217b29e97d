// Package engine holds the pure decision functions of the dunning run:
// day classification, status promotion, and template rendering. Nothing
// here touches the database or the wall clock.
package engine

import (
	"time"

	"github.com/reguahq/regua/internal/dunning/domain"
)

// DiffDays returns the number of whole calendar days from due to now.
// Positive means now is after the due date. Both instants are reduced
// to UTC calendar dates first, so DST or timezone-boundary skew cannot
// shift the result by a day.
func DiffDays(now, due time.Time) int {
	return int(dateOnly(now).Sub(dateOnly(due)).Hours() / 24)
}

func dateOnly(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

// ShouldFire reports whether a step fires on the calendar day of now,
// relative to the charge's due date. The match is exact-day: a step
// fires on exactly one day per charge, and a day skipped by downtime
// is never caught up.
func ShouldFire(now, due time.Time, trigger domain.TriggerKind, offsetDays int) bool {
	diff := DiffDays(now, due)
	switch trigger {
	case domain.TriggerBeforeDue:
		return diff == -offsetDays
	case domain.TriggerOnDue:
		return diff == 0
	case domain.TriggerAfterDue:
		return diff == offsetDays
	default:
		return false
	}
}
