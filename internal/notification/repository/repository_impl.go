package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/reguahq/regua/internal/notification/domain"
	"github.com/reguahq/regua/pkg/db"
	"github.com/reguahq/regua/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Exists(ctx context.Context, dbConn *gorm.DB, orgID, chargeID, stepID snowflake.ID) (bool, error) {
	var count int64
	err := dbConn.WithContext(ctx).
		Model(&domain.NotificationLog{}).
		Where("org_id = ? AND charge_id = ? AND step_id = ?", orgID, chargeID, stepID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) Insert(ctx context.Context, dbConn *gorm.DB, entry *domain.NotificationLog) (bool, error) {
	err := dbConn.WithContext(ctx).Create(entry).Error
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repo) List(ctx context.Context, dbConn *gorm.DB, orgID snowflake.ID, filter domain.ListNotificationFilter, page pagination.Pagination) ([]*domain.NotificationLog, error) {
	var entries []*domain.NotificationLog
	stmt := dbConn.WithContext(ctx).
		Model(&domain.NotificationLog{}).
		Where("org_id = ?", orgID)
	if filter.ChargeID != 0 {
		stmt = stmt.Where("charge_id = ?", filter.ChargeID)
	}
	if filter.StepID != 0 {
		stmt = stmt.Where("step_id = ?", filter.StepID)
	}
	if page.PageSize > 0 {
		stmt = stmt.Limit(page.PageSize + 1)
	}
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	err := stmt.
		Order("created_at desc, id desc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
