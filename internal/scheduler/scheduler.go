// Package scheduler runs the dunning ladder: it walks open charges,
// promotes overdue ones, and appends deduplicated notification ledger
// entries for every step that fires on the current calendar day.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	appstatedomain "github.com/reguahq/regua/internal/appstate/domain"
	chargedomain "github.com/reguahq/regua/internal/charge/domain"
	"github.com/reguahq/regua/internal/clock"
	dunningdomain "github.com/reguahq/regua/internal/dunning/domain"
	"github.com/reguahq/regua/internal/dunning/engine"
	notificationdomain "github.com/reguahq/regua/internal/notification/domain"
	obsmetrics "github.com/reguahq/regua/internal/observability/metrics"
	"github.com/reguahq/regua/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrInvalidConfig   = errors.New("scheduler: missing dependency")
	ErrRunInProgress   = errors.New("scheduler: run already in progress")
	errMissingCustomer = errors.New("scheduler: charge has no customer loaded")
)

type Params struct {
	fx.In

	DB               *gorm.DB
	Log              *zap.Logger
	GenID            *snowflake.Node
	Clock            clock.Clock
	AppStateSvc      appstatedomain.Service
	ChargeRepo       chargedomain.Repository
	DunningRepo      dunningdomain.Repository
	NotificationRepo notificationdomain.Repository
	Locker           *ratelimit.Locker `optional:"true"`
	Config           Config            `optional:"true"`
}

type Scheduler struct {
	db               *gorm.DB
	log              *zap.Logger
	cfg              Config
	genID            *snowflake.Node
	clock            clock.Clock
	appStateSvc      appstatedomain.Service
	chargeRepo       chargedomain.Repository
	dunningRepo      dunningdomain.Repository
	notificationRepo notificationdomain.Repository
	locker           *ratelimit.Locker
}

// RunSummary aggregates the outcome of one dunning run.
type RunSummary struct {
	NotificationsCreated int `json:"notifications_created"`
	ChargesProcessed     int `json:"charges_processed"`
	Errors               int `json:"errors"`
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.GenID == nil || p.Clock == nil ||
		p.AppStateSvc == nil || p.ChargeRepo == nil || p.DunningRepo == nil || p.NotificationRepo == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:               p.DB,
		log:              p.Log.Named("scheduler").With(zap.String("component", "dunning_scheduler")),
		cfg:              p.Config.withDefaults(),
		genID:            p.GenID,
		clock:            p.Clock,
		appStateSvc:      p.AppStateSvc,
		chargeRepo:       p.ChargeRepo,
		dunningRepo:      p.DunningRepo,
		notificationRepo: p.NotificationRepo,
		locker:           p.Locker,
	}, nil
}

// RunOnce executes one dunning run for a single organization. The run
// is not transactional across charges: entries written before a
// failure stay written, and the per-(charge, step) ledger uniqueness
// makes a wholesale retry safe.
func (s *Scheduler) RunOnce(parent context.Context, orgID snowflake.ID) (RunSummary, error) {
	if orgID == 0 {
		return RunSummary{}, appstatedomain.ErrInvalidOrganization
	}

	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	if s.locker != nil {
		key := "dunning:run:" + orgID.String()
		token, ok, err := s.locker.TryLock(ctx, key, s.cfg.JobTimeout)
		if err != nil {
			s.log.Warn("run lock unavailable, proceeding unlocked", zap.Error(err))
		} else if !ok {
			return RunSummary{}, ErrRunInProgress
		} else {
			defer func() {
				_ = s.locker.Release(ctx, key, token)
			}()
		}
	}

	start := time.Now()
	summary, err := s.run(ctx, orgID)

	metrics := obsmetrics.Dunning()
	result := obsmetrics.RunResultOK
	if err != nil {
		result = obsmetrics.RunResultError
	}
	metrics.IncRun(result)
	metrics.ObserveRunDuration(result, time.Since(start))

	log := s.log.With(zap.String("org_id", orgID.String()))
	if err != nil {
		log.Error("dunning run failed", zap.Error(err))
		return summary, fmt.Errorf("dunning run: %w", err)
	}
	log.Info("dunning run finished",
		zap.Int("charges_processed", summary.ChargesProcessed),
		zap.Int("notifications_created", summary.NotificationsCreated),
		zap.Int("errors", summary.Errors),
	)
	return summary, nil
}

func (s *Scheduler) run(ctx context.Context, orgID snowflake.ID) (RunSummary, error) {
	var summary RunSummary

	now, simulated, err := s.appStateSvc.NowFor(ctx, orgID)
	if err != nil {
		return summary, err
	}

	steps, err := s.dunningRepo.ActiveSteps(ctx, s.db, orgID)
	if err != nil {
		return summary, err
	}

	charges, err := s.chargeRepo.ListOpen(ctx, s.db, orgID, s.cfg.BatchSize)
	if err != nil {
		return summary, err
	}

	log := s.log.With(
		zap.String("org_id", orgID.String()),
		zap.Time("now", now),
		zap.Bool("simulated", simulated),
	)
	log.Debug("dunning run started",
		zap.Int("active_steps", len(steps)),
		zap.Int("open_charges", len(charges)),
	)

	metrics := obsmetrics.Dunning()
	for _, charge := range charges {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		if charge == nil {
			continue
		}
		summary.ChargesProcessed++

		created, err := s.processCharge(ctx, orgID, now, *charge, steps)
		summary.NotificationsCreated += created
		if err != nil {
			// Per-charge isolation: log and keep going so one bad
			// charge cannot starve the rest of the tenant.
			summary.Errors++
			metrics.IncChargeError("db")
			log.Error("charge processing failed",
				zap.String("charge_id", charge.ID.String()),
				zap.Error(err),
			)
		}
	}

	return summary, nil
}

// processCharge reconciles one charge's status and evaluates every
// active step against it. The loaded record is treated as an immutable
// snapshot; the promoted status lives in a local copy.
func (s *Scheduler) processCharge(
	ctx context.Context,
	orgID snowflake.ID,
	now time.Time,
	charge chargedomain.Charge,
	steps []*dunningdomain.DunningStep,
) (int, error) {
	status, changed := engine.NextStatus(charge.Status, now, charge.DueDate)
	if changed {
		if err := s.chargeRepo.UpdateStatus(ctx, s.db, orgID, charge.ID, status); err != nil {
			return 0, err
		}
		s.log.Info("charge marked overdue",
			zap.String("org_id", orgID.String()),
			zap.String("charge_id", charge.ID.String()),
		)
	}

	created := 0
	for _, step := range steps {
		if step == nil {
			continue
		}
		if !engine.ShouldFire(now, charge.DueDate, step.Trigger, step.OffsetDays) {
			continue
		}

		exists, err := s.notificationRepo.Exists(ctx, s.db, orgID, charge.ID, step.ID)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		if charge.Customer == nil {
			return created, errMissingCustomer
		}
		rendered := engine.Render(step.Template, engine.RenderData{
			CustomerName:   charge.Customer.Name,
			AmountCents:    charge.AmountCents,
			DueDate:        charge.DueDate,
			Description:    charge.Description,
			PaymentLinkURL: charge.PaymentLinkURL,
		})

		entry := &notificationdomain.NotificationLog{
			ID:              s.genID.Generate(),
			OrgID:           orgID,
			ChargeID:        charge.ID,
			StepID:          step.ID,
			Channel:         step.Channel,
			Status:          notificationdomain.NotificationStatusSent,
			ScheduledFor:    now,
			SentAt:          now,
			RenderedMessage: rendered,
			Metadata: datatypes.JSONMap{
				"trigger":     string(step.Trigger),
				"offset_days": step.OffsetDays,
			},
			CreatedAt: now,
		}

		// Insert-if-absent is the source of truth: a concurrent run
		// losing the race sees created=false and does not count it.
		inserted, err := s.notificationRepo.Insert(ctx, s.db, entry)
		if err != nil {
			return created, err
		}
		if !inserted {
			continue
		}

		created++
		obsmetrics.Dunning().IncNotificationsCreated(string(step.Channel))
		s.log.Info("notification recorded",
			zap.String("org_id", orgID.String()),
			zap.String("charge_id", charge.ID.String()),
			zap.String("step_id", step.ID.String()),
			zap.String("channel", string(step.Channel)),
		)
	}

	return created, nil
}

// RunAll visits every organization with an active dunning rule.
func (s *Scheduler) RunAll(ctx context.Context) error {
	orgIDs, err := s.dunningRepo.OrgIDsWithActiveRules(ctx, s.db)
	if err != nil {
		return err
	}

	var runErr error
	for _, orgID := range orgIDs {
		if ctx.Err() != nil {
			return errors.Join(runErr, ctx.Err())
		}
		if _, err := s.RunOnce(ctx, orgID); err != nil {
			if errors.Is(err, ErrRunInProgress) {
				s.log.Warn("skipping org, run already in progress",
					zap.String("org_id", orgID.String()))
				continue
			}
			runErr = errors.Join(runErr, err)
		}
	}
	return runErr
}

// RunForever drives RunAll on the configured interval until ctx ends.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunAll(ctx); err != nil {
			s.log.Warn("dunning sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
