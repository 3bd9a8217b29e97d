package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/reguahq/regua/internal/dunning/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertRule(ctx context.Context, db *gorm.DB, rule *domain.DunningRule) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO dunning_rules (id, org_id, name, active, timezone, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rule.ID,
		rule.OrgID,
		rule.Name,
		rule.Active,
		rule.Timezone,
		rule.CreatedAt,
		rule.UpdatedAt,
	).Error
}

func (r *repo) FindRuleByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.DunningRule, error) {
	var rule domain.DunningRule
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, name, active, timezone, created_at, updated_at
		 FROM dunning_rules WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&rule).Error
	if err != nil {
		return nil, err
	}
	if rule.ID == 0 {
		return nil, nil
	}
	return &rule, nil
}

func (r *repo) ListRules(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]*domain.DunningRule, error) {
	var rules []*domain.DunningRule
	err := db.WithContext(ctx).
		Model(&domain.DunningRule{}).
		Where("org_id = ?", orgID).
		Order("created_at asc, id asc").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repo) UpdateRule(ctx context.Context, db *gorm.DB, rule *domain.DunningRule) error {
	return db.WithContext(ctx).Exec(
		`UPDATE dunning_rules SET name = ?, active = ?, timezone = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		rule.Name,
		rule.Active,
		rule.Timezone,
		rule.UpdatedAt,
		rule.OrgID,
		rule.ID,
	).Error
}

func (r *repo) InsertStep(ctx context.Context, db *gorm.DB, step *domain.DunningStep) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO dunning_steps (id, org_id, rule_id, trigger_kind, offset_days, channel, template, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		step.ID,
		step.OrgID,
		step.RuleID,
		step.Trigger,
		step.OffsetDays,
		step.Channel,
		step.Template,
		step.Enabled,
		step.CreatedAt,
		step.UpdatedAt,
	).Error
}

func (r *repo) FindStepByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.DunningStep, error) {
	var step domain.DunningStep
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, rule_id, trigger_kind, offset_days, channel, template, enabled, created_at, updated_at
		 FROM dunning_steps WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&step).Error
	if err != nil {
		return nil, err
	}
	if step.ID == 0 {
		return nil, nil
	}
	return &step, nil
}

func (r *repo) ListSteps(ctx context.Context, db *gorm.DB, orgID, ruleID snowflake.ID) ([]*domain.DunningStep, error) {
	var steps []*domain.DunningStep
	stmt := db.WithContext(ctx).
		Model(&domain.DunningStep{}).
		Where("org_id = ?", orgID)
	if ruleID != 0 {
		stmt = stmt.Where("rule_id = ?", ruleID)
	}
	err := stmt.
		Order("created_at asc, id asc").
		Find(&steps).Error
	if err != nil {
		return nil, err
	}
	return steps, nil
}

func (r *repo) UpdateStep(ctx context.Context, db *gorm.DB, step *domain.DunningStep) error {
	return db.WithContext(ctx).Exec(
		`UPDATE dunning_steps SET trigger_kind = ?, offset_days = ?, channel = ?, template = ?, enabled = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		step.Trigger,
		step.OffsetDays,
		step.Channel,
		step.Template,
		step.Enabled,
		step.UpdatedAt,
		step.OrgID,
		step.ID,
	).Error
}

func (r *repo) ActiveSteps(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]*domain.DunningStep, error) {
	var steps []*domain.DunningStep
	err := db.WithContext(ctx).Raw(
		`SELECT s.id, s.org_id, s.rule_id, s.trigger_kind, s.offset_days, s.channel, s.template, s.enabled, s.created_at, s.updated_at
		 FROM dunning_steps s
		 JOIN dunning_rules r ON r.id = s.rule_id
		 WHERE s.org_id = ? AND s.enabled AND r.active
		 ORDER BY s.created_at ASC, s.id ASC`,
		orgID,
	).Scan(&steps).Error
	if err != nil {
		return nil, err
	}
	return steps, nil
}

func (r *repo) OrgIDsWithActiveRules(ctx context.Context, db *gorm.DB) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT org_id FROM dunning_rules WHERE active ORDER BY org_id ASC`,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
