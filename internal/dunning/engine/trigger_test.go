package engine

import (
	"testing"
	"time"

	chargedomain "github.com/reguahq/regua/internal/charge/domain"
	"github.com/reguahq/regua/internal/dunning/domain"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDiffDays(t *testing.T) {
	due := date(2026, time.January, 10)

	cases := []struct {
		name string
		now  time.Time
		want int
	}{
		{"five days before", date(2026, time.January, 5), -5},
		{"one day before", date(2026, time.January, 9), -1},
		{"due day", date(2026, time.January, 10), 0},
		{"three days after", date(2026, time.January, 13), 3},
		{"seven days after", date(2026, time.January, 17), 7},
		{"across month boundary", date(2026, time.February, 1), 22},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DiffDays(tc.now, due))
		})
	}
}

func TestDiffDays_IgnoresTimeOfDay(t *testing.T) {
	due := time.Date(2026, time.January, 10, 23, 59, 0, 0, time.UTC)
	now := time.Date(2026, time.January, 13, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, 3, DiffDays(now, due))
}

func TestDiffDays_NormalizesTimezones(t *testing.T) {
	sp := time.FixedZone("America/Sao_Paulo", -3*60*60)

	// 2026-01-13 22:00 in Sao Paulo is already 2026-01-14 01:00 UTC.
	due := time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.January, 13, 22, 0, 0, 0, sp)

	assert.Equal(t, 4, DiffDays(now, due))
}

func TestShouldFire_ExactDayOnly(t *testing.T) {
	due := date(2026, time.January, 10)

	cases := []struct {
		name    string
		now     time.Time
		trigger domain.TriggerKind
		offset  int
		want    bool
	}{
		{"before due fires on the exact day", date(2026, time.January, 5), domain.TriggerBeforeDue, 5, true},
		{"before due one day late", date(2026, time.January, 6), domain.TriggerBeforeDue, 5, false},
		{"before due one day early", date(2026, time.January, 4), domain.TriggerBeforeDue, 5, false},
		{"on due fires on due date", date(2026, time.January, 10), domain.TriggerOnDue, 0, true},
		{"on due ignores offset", date(2026, time.January, 10), domain.TriggerOnDue, 3, true},
		{"on due does not fire after", date(2026, time.January, 11), domain.TriggerOnDue, 0, false},
		{"after due fires on the exact day", date(2026, time.January, 13), domain.TriggerAfterDue, 3, true},
		{"after due missed day is never caught up", date(2026, time.January, 14), domain.TriggerAfterDue, 3, false},
		{"after due before due date", date(2026, time.January, 9), domain.TriggerAfterDue, 3, false},
		{"unknown trigger never fires", date(2026, time.January, 10), domain.TriggerKind("SOMEDAY"), 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ShouldFire(tc.now, due, tc.trigger, tc.offset))
		})
	}
}

func TestNextStatus(t *testing.T) {
	due := date(2026, time.January, 10)

	t.Run("pending past due is promoted", func(t *testing.T) {
		status, changed := NextStatus(chargedomain.ChargeStatusPending, date(2026, time.January, 11), due)
		assert.True(t, changed)
		assert.Equal(t, chargedomain.ChargeStatusOverdue, status)
	})

	t.Run("pending on due date stays pending", func(t *testing.T) {
		status, changed := NextStatus(chargedomain.ChargeStatusPending, date(2026, time.January, 10), due)
		assert.False(t, changed)
		assert.Equal(t, chargedomain.ChargeStatusPending, status)
	})

	t.Run("paid past due is untouched", func(t *testing.T) {
		status, changed := NextStatus(chargedomain.ChargeStatusPaid, date(2026, time.February, 1), due)
		assert.False(t, changed)
		assert.Equal(t, chargedomain.ChargeStatusPaid, status)
	})

	t.Run("overdue is not promoted twice", func(t *testing.T) {
		status, changed := NextStatus(chargedomain.ChargeStatusOverdue, date(2026, time.January, 12), due)
		assert.False(t, changed)
		assert.Equal(t, chargedomain.ChargeStatusOverdue, status)
	})
}
