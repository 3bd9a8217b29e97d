package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/reguahq/regua/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListNotificationFilter struct {
	ChargeID snowflake.ID
	StepID   snowflake.ID
}

type Repository interface {
	// Exists is a cheap pre-check; Insert remains the source of truth
	// for deduplication.
	Exists(ctx context.Context, db *gorm.DB, orgID, chargeID, stepID snowflake.ID) (bool, error)

	// Insert appends a ledger entry if none exists for the (charge,
	// step) pair. A duplicate-key failure is reported as created=false
	// with a nil error.
	Insert(ctx context.Context, db *gorm.DB, entry *NotificationLog) (created bool, err error)

	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListNotificationFilter, page pagination.Pagination) ([]*NotificationLog, error)
}
