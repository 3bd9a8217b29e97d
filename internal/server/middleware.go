package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/reguahq/regua/internal/orgcontext"
)

const HeaderOrg = "X-Org-ID"

// OrgContext resolves the active organization for the request, from
// the X-Org-ID header or the configured default, and injects it into
// the request context for the service layer.
func (s *Server) OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := s.cfg.DefaultOrgID

		if raw := strings.TrimSpace(c.GetHeader(HeaderOrg)); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || parsed <= 0 {
				AbortWithError(c, newValidationError("org_id", "invalid_org_id", "invalid org id"))
				return
			}
			orgID = parsed
		}

		if orgID <= 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := orgcontext.WithOrgID(c.Request.Context(), orgID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
