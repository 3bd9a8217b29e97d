// Package domain contains the notification ledger model. Entries are
// append-only and deduplicated: at most one row per (charge, step).
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	dunningdomain "github.com/reguahq/regua/internal/dunning/domain"
	"gorm.io/datatypes"
)

type NotificationStatus string

const (
	NotificationStatusSent NotificationStatus = "SENT"
)

// NotificationLog is the durable record that a dunning step fired for a
// charge. The unique index on (charge_id, step_id) is the idempotence
// contract: concurrent runs may both attempt the insert, exactly one
// wins.
type NotificationLog struct {
	ID              snowflake.ID          `gorm:"primaryKey" json:"id"`
	OrgID           snowflake.ID          `gorm:"not null;index" json:"organization_id"`
	ChargeID        snowflake.ID          `gorm:"not null;uniqueIndex:ux_notification_charge_step" json:"charge_id"`
	StepID          snowflake.ID          `gorm:"not null;uniqueIndex:ux_notification_charge_step" json:"step_id"`
	Channel         dunningdomain.Channel `gorm:"type:text;not null" json:"channel"`
	Status          NotificationStatus    `gorm:"type:text;not null;default:'SENT'" json:"status"`
	ScheduledFor    time.Time             `gorm:"not null" json:"scheduled_for"`
	SentAt          time.Time             `gorm:"not null" json:"sent_at"`
	RenderedMessage string                `gorm:"type:text;not null" json:"rendered_message"`
	Metadata        datatypes.JSONMap     `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt       time.Time             `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (NotificationLog) TableName() string { return "notification_logs" }
