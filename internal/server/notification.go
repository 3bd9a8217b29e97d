package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	notificationdomain "github.com/reguahq/regua/internal/notification/domain"
	"github.com/reguahq/regua/pkg/db/pagination"
)

func (s *Server) ListNotifications(c *gin.Context) {
	var query struct {
		pagination.Pagination
		ChargeID string `form:"charge_id"`
		StepID   string `form:"step_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.notificationSvc.List(c.Request.Context(), notificationdomain.ListNotificationRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		ChargeID:  strings.TrimSpace(query.ChargeID),
		StepID:    strings.TrimSpace(query.StepID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
