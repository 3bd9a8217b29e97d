// Package domain contains persistence models for billing charges.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/reguahq/regua/internal/customer/domain"
	"gorm.io/datatypes"
)

// ChargeStatus represents charge lifecycle states.
type ChargeStatus string

const (
	ChargeStatusPending  ChargeStatus = "PENDING"
	ChargeStatusOverdue  ChargeStatus = "OVERDUE"
	ChargeStatusPaid     ChargeStatus = "PAID"
	ChargeStatusCanceled ChargeStatus = "CANCELED"
	ChargeStatusPartial  ChargeStatus = "PARTIAL"
)

// Charge represents one billable obligation owned by a customer.
type Charge struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID          snowflake.ID      `gorm:"not null;index" json:"organization_id"`
	CustomerID     snowflake.ID      `gorm:"not null;index" json:"customer_id"`
	Description    string            `gorm:"type:text;not null" json:"description"`
	AmountCents    int64             `gorm:"not null" json:"amount_cents"`
	DueDate        time.Time         `gorm:"not null;index" json:"due_date"`
	Status         ChargeStatus      `gorm:"type:text;not null;default:'PENDING';index" json:"status"`
	PaymentLinkURL string            `gorm:"type:text" json:"payment_link_url,omitempty"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Customer *customerdomain.Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// TableName sets the database table name.
func (Charge) TableName() string { return "charges" }

// Open reports whether the charge is still eligible for dunning.
func (c Charge) Open() bool {
	return c.Status == ChargeStatusPending || c.Status == ChargeStatusOverdue
}

// CanTransition reports whether a status change is allowed. OVERDUE is
// never reverted to PENDING, and PAID/CANCELED are terminal.
func CanTransition(from, to ChargeStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case ChargeStatusPending:
		return to == ChargeStatusOverdue || to == ChargeStatusPaid || to == ChargeStatusCanceled || to == ChargeStatusPartial
	case ChargeStatusOverdue:
		return to == ChargeStatusPaid || to == ChargeStatusCanceled || to == ChargeStatusPartial
	case ChargeStatusPartial:
		return to == ChargeStatusPaid || to == ChargeStatusCanceled
	default:
		return false
	}
}
