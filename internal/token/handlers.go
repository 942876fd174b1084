package token

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler provides HTTP endpoints for access token validation.
type Handler struct {
	issuer *Issuer
}

// NewHandler creates a new token handler.
func NewHandler(issuer *Issuer) *Handler {
	return &Handler{issuer: issuer}
}

// RegisterRoutes sets up token routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/tokens/:token", h.ValidateToken)
}

// ValidateToken handles GET /v1/tokens/:token. Validation is read-only and
// never consumes a use.
func (h *Handler) ValidateToken(c *gin.Context) {
	v, err := h.issuer.Validate(c.Request.Context(), c.Param("token"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "validation failed"})
		return
	}

	resp := gin.H{"valid": v.Valid, "reason": v.Reason}
	if v.Token != nil {
		resp["userId"] = v.Token.UserID
		resp["contentId"] = v.Token.ContentID
		resp["level"] = v.Token.Level
		resp["expiresAt"] = v.Token.ExpiresAt
		resp["usageCount"] = v.Token.UsageCount
		if v.Token.MaxUses > 0 {
			resp["maxUses"] = v.Token.MaxUses
		}
	}
	c.JSON(http.StatusOK, resp)
}
