package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/reguahq/regua/internal/appstate/domain"
	"github.com/reguahq/regua/internal/appstate/repository"
	"github.com/reguahq/regua/internal/clock"
	"github.com/reguahq/regua/internal/orgcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, start time.Time) (domain.Service, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.AppState{}))

	fakeClock := clock.NewFakeClock(start)
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fakeClock,
		Repo:  repository.Provide(),
	})
	return svc, fakeClock
}

func orgCtx(orgID int64) context.Context {
	return orgcontext.WithOrgID(context.Background(), orgID)
}

func TestCurrent_DefaultsToWallClock(t *testing.T) {
	start := time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, start)

	state, err := svc.Current(orgCtx(7))
	require.NoError(t, err)

	assert.Equal(t, start, state.Now)
	assert.False(t, state.IsSimulated)
}

func TestCurrent_RequiresOrganization(t *testing.T) {
	svc, _ := newTestService(t, time.Now())

	_, err := svc.Current(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestAdvance_MovesSimulatedClock(t *testing.T) {
	start := time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, start)
	ctx := orgCtx(7)

	result, err := svc.Advance(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, start, result.PreviousDate)
	assert.Equal(t, start.AddDate(0, 0, 3), result.NewDate)
	assert.Equal(t, 3, result.DaysAdvanced)

	state, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.True(t, state.IsSimulated)
	assert.Equal(t, start.AddDate(0, 0, 3), state.Now)

	// Further advances compound on the simulated date.
	result, err = svc.Advance(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, start.AddDate(0, 0, 5), result.NewDate)
}

func TestAdvance_RejectsNonPositiveDays(t *testing.T) {
	svc, _ := newTestService(t, time.Now())

	_, err := svc.Advance(orgCtx(7), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidDays)

	_, err = svc.Advance(orgCtx(7), -1)
	assert.ErrorIs(t, err, domain.ErrInvalidDays)
}

func TestReset_ReturnsToWallClock(t *testing.T) {
	start := time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC)
	svc, fakeClock := newTestService(t, start)
	ctx := orgCtx(7)

	_, err := svc.Advance(ctx, 10)
	require.NoError(t, err)

	fakeClock.Advance(time.Hour)
	now, err := svc.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, fakeClock.Now(), now)

	state, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.False(t, state.IsSimulated)
	assert.Equal(t, fakeClock.Now(), state.Now)
}

func TestNowFor_IsolatedPerOrganization(t *testing.T) {
	start := time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, start)

	_, err := svc.Advance(orgCtx(7), 4)
	require.NoError(t, err)

	now, simulated, err := svc.NowFor(context.Background(), snowflake.ID(7))
	require.NoError(t, err)
	assert.True(t, simulated)
	assert.Equal(t, start.AddDate(0, 0, 4), now)

	now, simulated, err = svc.NowFor(context.Background(), snowflake.ID(8))
	require.NoError(t, err)
	assert.False(t, simulated)
	assert.Equal(t, start, now)
}
