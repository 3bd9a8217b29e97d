package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Find(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (*AppState, error)
	Upsert(ctx context.Context, db *gorm.DB, state *AppState) error
}
