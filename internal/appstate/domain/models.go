package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// AppState keeps per-organization operator state, currently the
// simulated clock used by demos and tests.
type AppState struct {
	OrgID        snowflake.ID `gorm:"primaryKey" json:"organization_id"`
	SimulatedNow *time.Time   `gorm:"" json:"simulated_now,omitempty"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (AppState) TableName() string { return "app_states" }
