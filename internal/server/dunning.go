package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	dunningdomain "github.com/reguahq/regua/internal/dunning/domain"
)

type createDunningRuleRequest struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

func (s *Server) CreateDunningRule(c *gin.Context) {
	var req createDunningRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.dunningSvc.CreateRule(c.Request.Context(), dunningdomain.CreateRuleRequest{
		Name:     strings.TrimSpace(req.Name),
		Timezone: strings.TrimSpace(req.Timezone),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDunningRules(c *gin.Context) {
	resp, err := s.dunningSvc.ListRules(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateDunningRuleRequest struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

func (s *Server) UpdateDunningRule(c *gin.Context) {
	var req updateDunningRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.dunningSvc.UpdateRule(c.Request.Context(), dunningdomain.UpdateRuleRequest{
		ID:     strings.TrimSpace(c.Param("id")),
		Name:   req.Name,
		Active: req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type createDunningStepRequest struct {
	Trigger    string `json:"trigger"`
	OffsetDays int    `json:"offset_days"`
	Channel    string `json:"channel"`
	Template   string `json:"template"`
}

func (s *Server) CreateDunningStep(c *gin.Context) {
	var req createDunningStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.dunningSvc.CreateStep(c.Request.Context(), dunningdomain.CreateStepRequest{
		RuleID:     strings.TrimSpace(c.Param("id")),
		Trigger:    strings.TrimSpace(req.Trigger),
		OffsetDays: req.OffsetDays,
		Channel:    strings.TrimSpace(req.Channel),
		Template:   req.Template,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDunningSteps(c *gin.Context) {
	resp, err := s.dunningSvc.ListSteps(c.Request.Context(), dunningdomain.ListStepsRequest{
		RuleID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateDunningStepRequest struct {
	Trigger    *string `json:"trigger"`
	OffsetDays *int    `json:"offset_days"`
	Channel    *string `json:"channel"`
	Template   *string `json:"template"`
	Enabled    *bool   `json:"enabled"`
}

func (s *Server) UpdateDunningStep(c *gin.Context) {
	var req updateDunningStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.dunningSvc.UpdateStep(c.Request.Context(), dunningdomain.UpdateStepRequest{
		ID:         strings.TrimSpace(c.Param("id")),
		Trigger:    req.Trigger,
		OffsetDays: req.OffsetDays,
		Channel:    req.Channel,
		Template:   req.Template,
		Enabled:    req.Enabled,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isDunningValidationError(err error) bool {
	switch err {
	case dunningdomain.ErrInvalidOrganization,
		dunningdomain.ErrInvalidName,
		dunningdomain.ErrInvalidRule,
		dunningdomain.ErrInvalidTrigger,
		dunningdomain.ErrInvalidOffset,
		dunningdomain.ErrInvalidChannel,
		dunningdomain.ErrInvalidTemplate,
		dunningdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
