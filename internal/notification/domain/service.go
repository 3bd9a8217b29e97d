package domain

import (
	"context"
	"errors"

	"github.com/reguahq/regua/pkg/db/pagination"
)

type ListNotificationRequest struct {
	PageToken string
	PageSize  int32
	ChargeID  string
	StepID    string
}

type ListNotificationResponse struct {
	pagination.PageInfo
	Notifications []NotificationLog `json:"notifications"`
}

type Service interface {
	List(context.Context, ListNotificationRequest) (ListNotificationResponse, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
)
