package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/reguahq/regua/internal/notification/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.NotificationLog{}))
	return db
}

func TestInsert_DuplicateChargeStepIsNotAnError(t *testing.T) {
	db := newTestDB(t)
	repo := Provide()
	ctx := context.Background()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	now := time.Date(2026, time.January, 13, 0, 0, 0, 0, time.UTC)
	orgID := snowflake.ID(42)
	chargeID := node.Generate()
	stepID := node.Generate()

	entry := func() *domain.NotificationLog {
		return &domain.NotificationLog{
			ID:              node.Generate(),
			OrgID:           orgID,
			ChargeID:        chargeID,
			StepID:          stepID,
			Channel:         "EMAIL",
			Status:          domain.NotificationStatusSent,
			ScheduledFor:    now,
			SentAt:          now,
			RenderedMessage: "hello",
			CreatedAt:       now,
		}
	}

	created, err := repo.Insert(ctx, db, entry())
	require.NoError(t, err)
	assert.True(t, created)

	// Same (charge, step) pair loses the race and reports not-created.
	created, err = repo.Insert(ctx, db, entry())
	require.NoError(t, err)
	assert.False(t, created)

	exists, err := repo.Exists(ctx, db, orgID, chargeID, stepID)
	require.NoError(t, err)
	assert.True(t, exists)

	var count int64
	require.NoError(t, db.Model(&domain.NotificationLog{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestInsert_DifferentStepsForSameCharge(t *testing.T) {
	db := newTestDB(t)
	repo := Provide()
	ctx := context.Background()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	now := time.Date(2026, time.January, 13, 0, 0, 0, 0, time.UTC)
	chargeID := node.Generate()

	for i := 0; i < 2; i++ {
		created, err := repo.Insert(ctx, db, &domain.NotificationLog{
			ID:              node.Generate(),
			OrgID:           42,
			ChargeID:        chargeID,
			StepID:          node.Generate(),
			Channel:         "SMS",
			Status:          domain.NotificationStatusSent,
			ScheduledFor:    now,
			SentAt:          now,
			RenderedMessage: "hello",
			CreatedAt:       now,
		})
		require.NoError(t, err)
		assert.True(t, created)
	}

	var count int64
	require.NoError(t, db.Model(&domain.NotificationLog{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}
