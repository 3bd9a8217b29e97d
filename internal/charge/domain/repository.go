package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/reguahq/regua/pkg/db/pagination"
	"gorm.io/gorm"
)

// ChargeStats aggregates charge counts and amounts for the dashboard.
type ChargeStats struct {
	Total            int64 `json:"total"`
	Pending          int64 `json:"pending"`
	Overdue          int64 `json:"overdue"`
	Paid             int64 `json:"paid"`
	TotalAmountCents int64 `json:"total_amount"`
	PaidAmountCents  int64 `json:"paid_amount"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, charge *Charge) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Charge, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListChargeFilter, page pagination.Pagination) ([]*Charge, error)

	// ListOpen returns charges with status PENDING or OVERDUE, with the
	// owning customer preloaded. Used by the dunning scheduler.
	ListOpen(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit int) ([]*Charge, error)

	UpdateStatus(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, status ChargeStatus) error
	Stats(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (ChargeStats, error)
}
