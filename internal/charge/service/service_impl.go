package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/reguahq/regua/internal/charge/domain"
	customerdomain "github.com/reguahq/regua/internal/customer/domain"
	"github.com/reguahq/regua/internal/orgcontext"
	"github.com/reguahq/regua/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         domain.Repository
	CustomerRepo customerdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	customerRepo customerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("charge.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateChargeRequest) (domain.Charge, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Charge{}, domain.ErrInvalidOrganization
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.Charge{}, domain.ErrInvalidCustomer
	}
	owner, err := s.customerRepo.FindByID(ctx, s.db, orgID, customerID)
	if err != nil {
		return domain.Charge{}, err
	}
	if owner == nil {
		return domain.Charge{}, domain.ErrInvalidCustomer
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.Charge{}, domain.ErrInvalidDescription
	}
	if req.AmountCents <= 0 {
		return domain.Charge{}, domain.ErrInvalidAmount
	}
	if req.DueDate.IsZero() {
		return domain.Charge{}, domain.ErrInvalidDueDate
	}

	now := time.Now().UTC()
	charge := domain.Charge{
		ID:             s.genID.Generate(),
		OrgID:          orgID,
		CustomerID:     customerID,
		Description:    description,
		AmountCents:    req.AmountCents,
		DueDate:        req.DueDate.UTC(),
		Status:         domain.ChargeStatusPending,
		PaymentLinkURL: strings.TrimSpace(req.PaymentLinkURL),
		Metadata:       datatypes.JSONMap{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, &charge); err != nil {
		return domain.Charge{}, err
	}

	charge.Customer = owner
	return charge, nil
}

func (s *Service) List(ctx context.Context, req domain.ListChargeRequest) (domain.ListChargeResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListChargeResponse{}, domain.ErrInvalidOrganization
	}

	filter := domain.ListChargeFilter{
		CustomerID: strings.TrimSpace(req.CustomerID),
		DueFrom:    req.DueFrom,
		DueTo:      req.DueTo,
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		parsed, err := parseStatus(status)
		if err != nil {
			return domain.ListChargeResponse{}, err
		}
		filter.Status = parsed
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
		return domain.ListChargeResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(charge *domain.Charge) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        charge.ID.String(),
			CreatedAt: charge.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	charges := make([]domain.Charge, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		charges = append(charges, *item)
	}

	resp := domain.ListChargeResponse{Charges: charges}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetChargeRequest) (domain.Charge, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Charge{}, domain.ErrInvalidOrganization
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Charge{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Charge{}, err
	}
	if item == nil {
		return domain.Charge{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateChargeStatusRequest) (domain.Charge, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Charge{}, domain.ErrInvalidOrganization
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Charge{}, err
	}

	status, err := parseStatus(req.Status)
	if err != nil {
		return domain.Charge{}, err
	}
	// The scheduler owns the PENDING -> OVERDUE promotion.
	if status == domain.ChargeStatusOverdue || status == domain.ChargeStatusPending {
		return domain.Charge{}, domain.ErrInvalidTransition
	}

	charge, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Charge{}, err
	}
	if charge == nil {
		return domain.Charge{}, domain.ErrNotFound
	}

	if !domain.CanTransition(charge.Status, status) {
		return domain.Charge{}, domain.ErrInvalidTransition
	}

	if err := s.repo.UpdateStatus(ctx, s.db, orgID, id, status); err != nil {
		return domain.Charge{}, err
	}

	s.log.Info("charge status updated",
		zap.String("org_id", orgID.String()),
		zap.String("charge_id", id.String()),
		zap.String("from", string(charge.Status)),
		zap.String("to", string(status)),
	)

	charge.Status = status
	return *charge, nil
}

func (s *Service) Stats(ctx context.Context) (domain.ChargeStats, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ChargeStats{}, domain.ErrInvalidOrganization
	}
	return s.repo.Stats(ctx, s.db, orgID)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func parseStatus(value string) (domain.ChargeStatus, error) {
	switch domain.ChargeStatus(strings.ToUpper(strings.TrimSpace(value))) {
	case domain.ChargeStatusPending:
		return domain.ChargeStatusPending, nil
	case domain.ChargeStatusOverdue:
		return domain.ChargeStatusOverdue, nil
	case domain.ChargeStatusPaid:
		return domain.ChargeStatusPaid, nil
	case domain.ChargeStatusCanceled:
		return domain.ChargeStatusCanceled, nil
	case domain.ChargeStatusPartial:
		return domain.ChargeStatusPartial, nil
	default:
		return "", domain.ErrInvalidStatus
	}
}
