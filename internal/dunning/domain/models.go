// Package domain contains persistence models for dunning rules and steps.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TriggerKind classifies a step's timing relative to the due date.
type TriggerKind string

const (
	TriggerBeforeDue TriggerKind = "BEFORE_DUE"
	TriggerOnDue     TriggerKind = "ON_DUE"
	TriggerAfterDue  TriggerKind = "AFTER_DUE"
)

// Channel is the outbound delivery channel of a step.
type Channel string

const (
	ChannelEmail    Channel = "EMAIL"
	ChannelSMS      Channel = "SMS"
	ChannelWhatsApp Channel = "WHATSAPP"
)

// DunningRule groups the reminder steps of one tenant's ladder.
type DunningRule struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index" json:"organization_id"`
	Name      string       `gorm:"not null" json:"name"`
	Active    bool         `gorm:"not null;default:true" json:"active"`
	Timezone  string       `gorm:"not null;default:'UTC'" json:"timezone"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (DunningRule) TableName() string { return "dunning_rules" }

// DunningStep is one rung of a reminder ladder. OffsetDays is read in
// the direction of the trigger kind; ON_DUE ignores it.
type DunningStep struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID `gorm:"not null;index" json:"organization_id"`
	RuleID     snowflake.ID `gorm:"not null;index" json:"rule_id"`
	Trigger    TriggerKind  `gorm:"column:trigger_kind;type:text;not null" json:"trigger"`
	OffsetDays int          `gorm:"not null;default:0" json:"offset_days"`
	Channel    Channel      `gorm:"type:text;not null" json:"channel"`
	Template   string       `gorm:"type:text;not null" json:"template"`
	Enabled    bool         `gorm:"not null;default:true" json:"enabled"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (DunningStep) TableName() string { return "dunning_steps" }
