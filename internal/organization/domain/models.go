package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Organization is the tenant boundary. Every query and write in the
// collections core is scoped by its ID.
type Organization struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null" json:"name"`
	Slug      string       `gorm:"not null;uniqueIndex" json:"slug"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }
