package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to ChargeStatus
		want     bool
	}{
		{ChargeStatusPending, ChargeStatusOverdue, true},
		{ChargeStatusPending, ChargeStatusPaid, true},
		{ChargeStatusPending, ChargeStatusCanceled, true},
		{ChargeStatusPending, ChargeStatusPartial, true},
		{ChargeStatusOverdue, ChargeStatusPaid, true},
		{ChargeStatusOverdue, ChargeStatusCanceled, true},
		{ChargeStatusOverdue, ChargeStatusPartial, true},
		{ChargeStatusOverdue, ChargeStatusPending, false},
		{ChargeStatusPartial, ChargeStatusPaid, true},
		{ChargeStatusPartial, ChargeStatusCanceled, true},
		{ChargeStatusPartial, ChargeStatusOverdue, false},
		{ChargeStatusPaid, ChargeStatusPending, false},
		{ChargeStatusPaid, ChargeStatusCanceled, false},
		{ChargeStatusCanceled, ChargeStatusPaid, false},
		{ChargeStatusPending, ChargeStatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestOpen(t *testing.T) {
	assert.True(t, Charge{Status: ChargeStatusPending}.Open())
	assert.True(t, Charge{Status: ChargeStatusOverdue}.Open())
	assert.False(t, Charge{Status: ChargeStatusPaid}.Open())
	assert.False(t, Charge{Status: ChargeStatusCanceled}.Open())
	assert.False(t, Charge{Status: ChargeStatusPartial}.Open())
}
