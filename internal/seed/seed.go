// Package seed bootstraps the default organization so a fresh install
// is usable without any manual setup: one org, its app state row and
// the default reminder ladder.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	appstatedomain "github.com/reguahq/regua/internal/appstate/domain"
	"github.com/reguahq/regua/internal/config"
	dunningdomain "github.com/reguahq/regua/internal/dunning/domain"
	organizationdomain "github.com/reguahq/regua/internal/organization/domain"
)

const defaultOrgName = "Principal"

// EnsureDefaultOrg seeds the default organization, its app state and
// the default dunning ladder. Idempotent: existing rows are left alone.
func EnsureDefaultOrg(db *gorm.DB, cfg config.Config, dunningCfg *config.DunningConfigHolder) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if dunningCfg == nil {
		return errors.New("seed dunning config is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := ensureOrgTx(ctx, tx, node, cfg.DefaultOrgID)
		if err != nil {
			return err
		}
		if err := ensureAppStateTx(ctx, tx, org.ID); err != nil {
			return err
		}
		return ensureDunningLadderTx(ctx, tx, node, org.ID, dunningCfg.Get())
	})
}

func ensureOrgTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, fixedID int64) (organizationdomain.Organization, error) {
	orgSlug := slug.Make(defaultOrgName)

	var org organizationdomain.Organization
	err := tx.WithContext(ctx).Where("slug = ?", orgSlug).First(&org).Error
	if err == nil {
		return org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return org, err
	}

	id := node.Generate()
	if fixedID != 0 {
		id = snowflake.ID(fixedID)
	}

	now := time.Now().UTC()
	org = organizationdomain.Organization{
		ID:        id,
		Name:      defaultOrgName,
		Slug:      orgSlug,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&org).Error; err != nil {
		return org, err
	}
	return org, nil
}

func ensureAppStateTx(ctx context.Context, tx *gorm.DB, orgID snowflake.ID) error {
	var state appstatedomain.AppState
	err := tx.WithContext(ctx).Where("org_id = ?", orgID).First(&state).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	state = appstatedomain.AppState{
		OrgID:     orgID,
		UpdatedAt: time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&state).Error
}

func ensureDunningLadderTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID, cfg config.DunningConfig) error {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&dunningdomain.DunningRule{}).
		Where("org_id = ?", orgID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	rule := dunningdomain.DunningRule{
		ID:        node.Generate(),
		OrgID:     orgID,
		Name:      cfg.RuleName,
		Active:    true,
		Timezone:  cfg.Timezone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&rule).Error; err != nil {
		return err
	}

	for _, s := range cfg.Steps {
		step := dunningdomain.DunningStep{
			ID:         node.Generate(),
			OrgID:      orgID,
			RuleID:     rule.ID,
			Trigger:    dunningdomain.TriggerKind(s.Trigger),
			OffsetDays: s.OffsetDays,
			Channel:    dunningdomain.Channel(s.Channel),
			Template:   s.Template,
			Enabled:    true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.WithContext(ctx).Create(&step).Error; err != nil {
			return err
		}
	}

	return nil
}
