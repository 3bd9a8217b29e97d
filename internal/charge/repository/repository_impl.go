package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/reguahq/regua/internal/charge/domain"
	"github.com/reguahq/regua/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, charge *domain.Charge) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO charges (id, org_id, customer_id, description, amount_cents, due_date, status, payment_link_url, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		charge.ID,
		charge.OrgID,
		charge.CustomerID,
		charge.Description,
		charge.AmountCents,
		charge.DueDate,
		charge.Status,
		charge.PaymentLinkURL,
		charge.Metadata,
		charge.CreatedAt,
		charge.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Charge, error) {
	var charge domain.Charge
	err := db.WithContext(ctx).
		Preload("Customer").
		Where("org_id = ? AND id = ?", orgID, id).
		Limit(1).
		Find(&charge).Error
	if err != nil {
		return nil, err
	}
	if charge.ID == 0 {
		return nil, nil
	}
	return &charge, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListChargeFilter, page pagination.Pagination) ([]*domain.Charge, error) {
	var charges []*domain.Charge
	stmt := db.WithContext(ctx).
		Model(&domain.Charge{}).
		Preload("Customer").
		Where("org_id = ?", orgID)
	if filter.CustomerID != "" {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.DueFrom != nil {
		stmt = stmt.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		stmt = stmt.Where("due_date <= ?", *filter.DueTo)
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
		Find(&charges).Error
	if err != nil {
		return nil, err
	}
	return charges, nil
}

func (r *repo) ListOpen(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit int) ([]*domain.Charge, error) {
	var charges []*domain.Charge
	stmt := db.WithContext(ctx).
		Model(&domain.Charge{}).
		Preload("Customer").
		Where("org_id = ? AND status IN ?", orgID, []domain.ChargeStatus{
			domain.ChargeStatusPending,
			domain.ChargeStatusOverdue,
		})
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	err := stmt.
		Order("due_date asc, id asc").
		Find(&charges).Error
	if err != nil {
		return nil, err
	}
	return charges, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, status domain.ChargeStatus) error {
	return db.WithContext(ctx).Exec(
		`UPDATE charges SET status = ?, updated_at = ? WHERE org_id = ? AND id = ?`,
		status,
		time.Now().UTC(),
		orgID,
		id,
	).Error
}

func (r *repo) Stats(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (domain.ChargeStats, error) {
	var stats domain.ChargeStats
	err := db.WithContext(ctx).Raw(
		`SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = 'PENDING' THEN 1 ELSE 0 END), 0) AS pending,
			COALESCE(SUM(CASE WHEN status = 'OVERDUE' THEN 1 ELSE 0 END), 0) AS overdue,
			COALESCE(SUM(CASE WHEN status = 'PAID' THEN 1 ELSE 0 END), 0) AS paid,
			COALESCE(SUM(amount_cents), 0) AS total_amount_cents,
			COALESCE(SUM(CASE WHEN status = 'PAID' THEN amount_cents ELSE 0 END), 0) AS paid_amount_cents
		 FROM charges WHERE org_id = ?`,
		orgID,
	).Scan(&stats).Error
	if err != nil {
		return domain.ChargeStats{}, err
	}
	return stats, nil
}
