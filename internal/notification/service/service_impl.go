package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/reguahq/regua/internal/notification/domain"
	"github.com/reguahq/regua/internal/orgcontext"
	"github.com/reguahq/regua/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("notification.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListNotificationRequest) (domain.ListNotificationResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListNotificationResponse{}, domain.ErrInvalidOrganization
	}

	var filter domain.ListNotificationFilter
	if value := strings.TrimSpace(req.ChargeID); value != "" {
		id, err := snowflake.ParseString(value)
		if err != nil || id == 0 {
			return domain.ListNotificationResponse{}, domain.ErrInvalidID
		}
		filter.ChargeID = id
	}
	if value := strings.TrimSpace(req.StepID); value != "" {
		id, err := snowflake.ParseString(value)
		if err != nil || id == 0 {
			return domain.ListNotificationResponse{}, domain.ErrInvalidID
		}
		filter.StepID = id
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, orgID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListNotificationResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(entry *domain.NotificationLog) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        entry.ID.String(),
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	notifications := make([]domain.NotificationLog, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		notifications = append(notifications, *item)
	}

	resp := domain.ListNotificationResponse{Notifications: notifications}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}
