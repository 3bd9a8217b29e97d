package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/reguahq/regua/internal/appstate/domain"
	"github.com/reguahq/regua/internal/clock"
	"github.com/reguahq/regua/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("appstate.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Current(ctx context.Context) (domain.CurrentState, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.CurrentState{}, domain.ErrInvalidOrganization
	}

	now, simulated, err := s.NowFor(ctx, orgID)
	if err != nil {
		return domain.CurrentState{}, err
	}
	return domain.CurrentState{Now: now, IsSimulated: simulated}, nil
}

func (s *Service) Advance(ctx context.Context, days int) (domain.AdvanceResult, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.AdvanceResult{}, domain.ErrInvalidOrganization
	}
	if days <= 0 {
		return domain.AdvanceResult{}, domain.ErrInvalidDays
	}

	previous, _, err := s.NowFor(ctx, orgID)
	if err != nil {
		return domain.AdvanceResult{}, err
	}

	next := previous.AddDate(0, 0, days)
	state := &domain.AppState{
		OrgID:        orgID,
		SimulatedNow: &next,
		UpdatedAt:    s.clock.Now(),
	}
	if err := s.repo.Upsert(ctx, s.db, state); err != nil {
		return domain.AdvanceResult{}, err
	}

	s.log.Info("simulated clock advanced",
		zap.String("org_id", orgID.String()),
		zap.Int("days", days),
		zap.Time("new_date", next),
	)

	return domain.AdvanceResult{
		PreviousDate: previous,
		NewDate:      next,
		DaysAdvanced: days,
	}, nil
}

func (s *Service) Reset(ctx context.Context) (time.Time, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return time.Time{}, domain.ErrInvalidOrganization
	}

	state := &domain.AppState{
		OrgID:        orgID,
		SimulatedNow: nil,
		UpdatedAt:    s.clock.Now(),
	}
	if err := s.repo.Upsert(ctx, s.db, state); err != nil {
		return time.Time{}, err
	}
	return s.clock.Now(), nil
}

func (s *Service) NowFor(ctx context.Context, orgID snowflake.ID) (time.Time, bool, error) {
	if orgID == 0 {
		return time.Time{}, false, domain.ErrInvalidOrganization
	}

	state, err := s.repo.Find(ctx, s.db, orgID)
	if err != nil {
		return time.Time{}, false, err
	}
	if state != nil && state.SimulatedNow != nil {
		return state.SimulatedNow.UTC(), true, nil
	}
	return s.clock.Now(), false, nil
}
