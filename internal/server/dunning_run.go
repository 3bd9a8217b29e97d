package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	appstatedomain "github.com/reguahq/regua/internal/appstate/domain"
	"github.com/reguahq/regua/internal/orgcontext"
)

// defaultAdvanceDays matches the demo control's one-week jump.
const defaultAdvanceDays = 7

// RunDunning triggers one synchronous dunning run for the caller's
// organization. The periodic sweep calls the same code path, so a run
// fired here is safe to repeat.
func (s *Server) RunDunning(c *gin.Context) {
	orgID, ok := orgcontext.OrgIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, appstatedomain.ErrInvalidOrganization)
		return
	}

	summary, err := s.scheduler.RunOnce(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func (s *Server) GetAppState(c *gin.Context) {
	state, err := s.appStateSvc.Current(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	stats, err := s.chargeSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"date":         state.Now,
		"is_simulated": state.IsSimulated,
		"stats":        stats,
	}})
}

type advanceAppStateRequest struct {
	Days int `json:"days"`
}

// AdvanceAppState moves the organization's simulated clock forward and
// immediately re-runs dunning so the UI reflects the new day.
func (s *Server) AdvanceAppState(c *gin.Context) {
	var req advanceAppStateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Days == 0 {
		req.Days = defaultAdvanceDays
	}

	result, err := s.appStateSvc.Advance(c.Request.Context(), req.Days)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	orgID, _ := orgcontext.OrgIDFromContext(c.Request.Context())
	summary, err := s.scheduler.RunOnce(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"previous_date": result.PreviousDate,
		"new_date":      result.NewDate,
		"days_advanced": result.DaysAdvanced,
		"run":           summary,
	}})
}

func (s *Server) ResetAppState(c *gin.Context) {
	now, err := s.appStateSvc.Reset(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"date":         now,
		"is_simulated": false,
	}})
}
