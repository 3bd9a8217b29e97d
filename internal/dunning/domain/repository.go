package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertRule(ctx context.Context, db *gorm.DB, rule *DunningRule) error
	FindRuleByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*DunningRule, error)
	ListRules(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]*DunningRule, error)
	UpdateRule(ctx context.Context, db *gorm.DB, rule *DunningRule) error

	InsertStep(ctx context.Context, db *gorm.DB, step *DunningStep) error
	FindStepByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*DunningStep, error)
	ListSteps(ctx context.Context, db *gorm.DB, orgID, ruleID snowflake.ID) ([]*DunningStep, error)
	UpdateStep(ctx context.Context, db *gorm.DB, step *DunningStep) error

	// ActiveSteps returns enabled steps whose owning rule is active,
	// in a deterministic order.
	ActiveSteps(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]*DunningStep, error)

	// OrgIDsWithActiveRules lists tenants the scheduler should visit.
	OrgIDsWithActiveRules(ctx context.Context, db *gorm.DB) ([]snowflake.ID, error)
}
