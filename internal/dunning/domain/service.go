package domain

import (
	"context"
	"errors"
)

type CreateRuleRequest struct {
	Name     string
	Timezone string
}

type UpdateRuleRequest struct {
	ID     string
	Name   *string
	Active *bool
}

type CreateStepRequest struct {
	RuleID     string
	Trigger    string
	OffsetDays int
	Channel    string
	Template   string
}

type UpdateStepRequest struct {
	ID         string
	Trigger    *string
	OffsetDays *int
	Channel    *string
	Template   *string
	Enabled    *bool
}

type ListStepsRequest struct {
	RuleID string
}

type Service interface {
	CreateRule(context.Context, CreateRuleRequest) (DunningRule, error)
	ListRules(context.Context) ([]DunningRule, error)
	UpdateRule(context.Context, UpdateRuleRequest) (DunningRule, error)

	CreateStep(context.Context, CreateStepRequest) (DunningStep, error)
	ListSteps(context.Context, ListStepsRequest) ([]DunningStep, error)
	UpdateStep(context.Context, UpdateStepRequest) (DunningStep, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidRule         = errors.New("invalid_rule")
	ErrInvalidTrigger      = errors.New("invalid_trigger")
	ErrInvalidOffset       = errors.New("invalid_offset")
	ErrInvalidChannel      = errors.New("invalid_channel")
	ErrInvalidTemplate     = errors.New("invalid_template")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
