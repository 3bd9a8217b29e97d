package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	chargedomain "github.com/reguahq/regua/internal/charge/domain"
	"github.com/reguahq/regua/pkg/db/pagination"
)

type createChargeRequest struct {
	CustomerID     string `json:"customer_id"`
	Description    string `json:"description"`
	AmountCents    int64  `json:"amount_cents"`
	DueDate        string `json:"due_date"`
	PaymentLinkURL string `json:"payment_link_url"`
}

func (s *Server) CreateCharge(c *gin.Context) {
	var req createChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	dueDate, err := parseOptionalTime(req.DueDate, false)
	if err != nil || dueDate == nil {
		AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
		return
	}

	resp, err := s.chargeSvc.Create(c.Request.Context(), chargedomain.CreateChargeRequest{
		CustomerID:     strings.TrimSpace(req.CustomerID),
		Description:    strings.TrimSpace(req.Description),
		AmountCents:    req.AmountCents,
		DueDate:        *dueDate,
		PaymentLinkURL: strings.TrimSpace(req.PaymentLinkURL),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCharges(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CustomerID string `form:"customer_id"`
		Status     string `form:"status"`
		DueFrom    string `form:"due_from"`
		DueTo      string `form:"due_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	dueFrom, err := parseOptionalTime(query.DueFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("due_from", "invalid_due_from", "invalid due_from"))
		return
	}

	dueTo, err := parseOptionalTime(query.DueTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("due_to", "invalid_due_to", "invalid due_to"))
		return
	}

	resp, err := s.chargeSvc.List(c.Request.Context(), chargedomain.ListChargeRequest{
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
		CustomerID: strings.TrimSpace(query.CustomerID),
		Status:     strings.TrimSpace(query.Status),
		DueFrom:    dueFrom,
		DueTo:      dueTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetChargeByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.chargeSvc.GetByID(c.Request.Context(), chargedomain.GetChargeRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateChargeStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateChargeStatus(c *gin.Context) {
	var req updateChargeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.chargeSvc.UpdateStatus(c.Request.Context(), chargedomain.UpdateChargeStatusRequest{
		ID:     strings.TrimSpace(c.Param("id")),
		Status: strings.TrimSpace(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetChargeStats(c *gin.Context) {
	resp, err := s.chargeSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isChargeValidationError(err error) bool {
	switch err {
	case chargedomain.ErrInvalidOrganization,
		chargedomain.ErrInvalidCustomer,
		chargedomain.ErrInvalidDescription,
		chargedomain.ErrInvalidAmount,
		chargedomain.ErrInvalidDueDate,
		chargedomain.ErrInvalidStatus,
		chargedomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
