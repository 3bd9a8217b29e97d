package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/reguahq/regua/internal/dunning/domain"
	"github.com/reguahq/regua/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("dunning.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) CreateRule(ctx context.Context, req domain.CreateRuleRequest) (domain.DunningRule, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.DunningRule{}, domain.ErrInvalidOrganization
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.DunningRule{}, domain.ErrInvalidName
	}
	timezone := strings.TrimSpace(req.Timezone)
	if timezone == "" {
		timezone = "UTC"
	}

	now := time.Now().UTC()
	rule := domain.DunningRule{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Name:      name,
		Active:    true,
		Timezone:  timezone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertRule(ctx, s.db, &rule); err != nil {
		return domain.DunningRule{}, err
	}
	return rule, nil
}

func (s *Service) ListRules(ctx context.Context) ([]domain.DunningRule, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	items, err := s.repo.ListRules(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}
	rules := make([]domain.DunningRule, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		rules = append(rules, *item)
	}
	return rules, nil
}

func (s *Service) UpdateRule(ctx context.Context, req domain.UpdateRuleRequest) (domain.DunningRule, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.DunningRule{}, domain.ErrInvalidOrganization
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.DunningRule{}, err
	}

	rule, err := s.repo.FindRuleByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.DunningRule{}, err
	}
	if rule == nil {
		return domain.DunningRule{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.DunningRule{}, domain.ErrInvalidName
		}
		rule.Name = name
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}
	rule.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateRule(ctx, s.db, rule); err != nil {
		return domain.DunningRule{}, err
	}
	return *rule, nil
}

func (s *Service) CreateStep(ctx context.Context, req domain.CreateStepRequest) (domain.DunningStep, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.DunningStep{}, domain.ErrInvalidOrganization
	}

	ruleID, err := s.parseID(req.RuleID)
	if err != nil {
		return domain.DunningStep{}, domain.ErrInvalidRule
	}
	rule, err := s.repo.FindRuleByID(ctx, s.db, orgID, ruleID)
	if err != nil {
		return domain.DunningStep{}, err
	}
	if rule == nil {
		return domain.DunningStep{}, domain.ErrInvalidRule
	}

	trigger, err := parseTrigger(req.Trigger)
	if err != nil {
		return domain.DunningStep{}, err
	}
	if req.OffsetDays < 0 {
		return domain.DunningStep{}, domain.ErrInvalidOffset
	}
	channel, err := parseChannel(req.Channel)
	if err != nil {
		return domain.DunningStep{}, err
	}
	template := strings.TrimSpace(req.Template)
	if template == "" {
		return domain.DunningStep{}, domain.ErrInvalidTemplate
	}

	offsetDays := req.OffsetDays
	if trigger == domain.TriggerOnDue {
		offsetDays = 0
	}

	now := time.Now().UTC()
	step := domain.DunningStep{
		ID:         s.genID.Generate(),
		OrgID:      orgID,
		RuleID:     ruleID,
		Trigger:    trigger,
		OffsetDays: offsetDays,
		Channel:    channel,
		Template:   template,
		Enabled:    true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.InsertStep(ctx, s.db, &step); err != nil {
		return domain.DunningStep{}, err
	}
	return step, nil
}

func (s *Service) ListSteps(ctx context.Context, req domain.ListStepsRequest) ([]domain.DunningStep, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	var ruleID snowflake.ID
	if strings.TrimSpace(req.RuleID) != "" {
		parsed, err := s.parseID(req.RuleID)
		if err != nil {
			return nil, domain.ErrInvalidRule
		}
		ruleID = parsed
	}

	items, err := s.repo.ListSteps(ctx, s.db, orgID, ruleID)
	if err != nil {
		return nil, err
	}
	steps := make([]domain.DunningStep, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		steps = append(steps, *item)
	}
	return steps, nil
}

func (s *Service) UpdateStep(ctx context.Context, req domain.UpdateStepRequest) (domain.DunningStep, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.DunningStep{}, domain.ErrInvalidOrganization
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.DunningStep{}, err
	}

	step, err := s.repo.FindStepByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.DunningStep{}, err
	}
	if step == nil {
		return domain.DunningStep{}, domain.ErrNotFound
	}

	if req.Trigger != nil {
		trigger, err := parseTrigger(*req.Trigger)
		if err != nil {
			return domain.DunningStep{}, err
		}
		step.Trigger = trigger
	}
	if req.OffsetDays != nil {
		if *req.OffsetDays < 0 {
			return domain.DunningStep{}, domain.ErrInvalidOffset
		}
		step.OffsetDays = *req.OffsetDays
	}
	if req.Channel != nil {
		channel, err := parseChannel(*req.Channel)
		if err != nil {
			return domain.DunningStep{}, err
		}
		step.Channel = channel
	}
	if req.Template != nil {
		template := strings.TrimSpace(*req.Template)
		if template == "" {
			return domain.DunningStep{}, domain.ErrInvalidTemplate
		}
		step.Template = template
	}
	if req.Enabled != nil {
		step.Enabled = *req.Enabled
	}
	if step.Trigger == domain.TriggerOnDue {
		step.OffsetDays = 0
	}
	step.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateStep(ctx, s.db, step); err != nil {
		return domain.DunningStep{}, err
	}
	return *step, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func parseTrigger(value string) (domain.TriggerKind, error) {
	switch domain.TriggerKind(strings.ToUpper(strings.TrimSpace(value))) {
	case domain.TriggerBeforeDue:
		return domain.TriggerBeforeDue, nil
	case domain.TriggerOnDue:
		return domain.TriggerOnDue, nil
	case domain.TriggerAfterDue:
		return domain.TriggerAfterDue, nil
	default:
		return "", domain.ErrInvalidTrigger
	}
}

func parseChannel(value string) (domain.Channel, error) {
	switch domain.Channel(strings.ToUpper(strings.TrimSpace(value))) {
	case domain.ChannelEmail:
		return domain.ChannelEmail, nil
	case domain.ChannelSMS:
		return domain.ChannelSMS, nil
	case domain.ChannelWhatsApp:
		return domain.ChannelWhatsApp, nil
	default:
		return "", domain.ErrInvalidChannel
	}
}
