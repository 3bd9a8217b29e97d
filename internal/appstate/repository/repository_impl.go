package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/reguahq/regua/internal/appstate/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (*domain.AppState, error) {
	var state domain.AppState
	err := db.WithContext(ctx).Raw(
		`SELECT org_id, simulated_now, updated_at FROM app_states WHERE org_id = ?`,
		orgID,
	).Scan(&state).Error
	if err != nil {
		return nil, err
	}
	if state.OrgID == 0 {
		return nil, nil
	}
	return &state, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, state *domain.AppState) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "org_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"simulated_now", "updated_at"}),
	}).Create(state).Error
}
