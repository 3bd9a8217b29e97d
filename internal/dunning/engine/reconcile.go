package engine

import (
	"time"

	chargedomain "github.com/reguahq/regua/internal/charge/domain"
)

// NextStatus returns the status a charge should hold at now, and
// whether that is a change. The only transition this subsystem owns is
// PENDING to OVERDUE once the due date has passed; every other status
// is left untouched.
func NextStatus(status chargedomain.ChargeStatus, now, due time.Time) (chargedomain.ChargeStatus, bool) {
	if status == chargedomain.ChargeStatusPending && DiffDays(now, due) > 0 {
		return chargedomain.ChargeStatusOverdue, true
	}
	return status, false
}
