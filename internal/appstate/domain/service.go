package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CurrentState struct {
	Now         time.Time `json:"date"`
	IsSimulated bool      `json:"is_simulated"`
}

type AdvanceResult struct {
	PreviousDate time.Time `json:"previous_date"`
	NewDate      time.Time `json:"new_date"`
	DaysAdvanced int       `json:"days_advanced"`
}

// Service resolves "now" for a tenant, preferring the operator-set
// simulated clock over wall-clock time.
type Service interface {
	Current(ctx context.Context) (CurrentState, error)
	Advance(ctx context.Context, days int) (AdvanceResult, error)
	Reset(ctx context.Context) (time.Time, error)

	// NowFor resolves the effective time for an explicit org, outside
	// of a request context. Used by the dunning scheduler.
	NowFor(ctx context.Context, orgID snowflake.ID) (time.Time, bool, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidDays         = errors.New("invalid_days")
)
