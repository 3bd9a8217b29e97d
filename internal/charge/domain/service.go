package domain

import (
	"context"
	"errors"
	"time"

	"github.com/reguahq/regua/pkg/db/pagination"
)

type CreateChargeRequest struct {
	CustomerID     string
	Description    string
	AmountCents    int64
	DueDate        time.Time
	PaymentLinkURL string
}

type ListChargeRequest struct {
	PageToken  string
	PageSize   int32
	CustomerID string
	Status     string
	DueFrom    *time.Time
	DueTo      *time.Time
}

type ListChargeFilter struct {
	CustomerID string
	Status     ChargeStatus
	DueFrom    *time.Time
	DueTo      *time.Time
}

type ListChargeResponse struct {
	pagination.PageInfo
	Charges []Charge `json:"charges"`
}

type GetChargeRequest struct {
	ID string
}

type UpdateChargeStatusRequest struct {
	ID     string
	Status string
}

type Service interface {
	Create(context.Context, CreateChargeRequest) (Charge, error)
	List(context.Context, ListChargeRequest) (ListChargeResponse, error)
	GetByID(context.Context, GetChargeRequest) (Charge, error)

	// UpdateStatus applies the external payment/cancellation flows
	// (PAID, CANCELED, PARTIAL). The PENDING to OVERDUE promotion
	// belongs to the dunning scheduler, not this entry point.
	UpdateStatus(context.Context, UpdateChargeStatusRequest) (Charge, error)

	Stats(context.Context) (ChargeStats, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidCustomer     = errors.New("invalid_customer")
	ErrInvalidDescription  = errors.New("invalid_description")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidDueDate      = errors.New("invalid_due_date")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidTransition   = errors.New("invalid_status_transition")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
