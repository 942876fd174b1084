package grant

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbd888/pressgate/internal/payments"
)

// Handler provides HTTP endpoints for pay-per-view grants.
type Handler struct {
	mgr *Manager
}

// NewHandler creates a new grant handler.
func NewHandler(mgr *Manager) *Handler {
	return &Handler{mgr: mgr}
}

// RegisterRoutes sets up grant routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/grants", h.PurchaseGrant)
	r.GET("/grants/:grantId", h.GetGrant)
}

// PurchaseGrant handles POST /v1/grants.
func (h *Handler) PurchaseGrant(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" || req.ContentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "userId and contentId required"})
		return
	}

	g, tok, err := h.mgr.Grant(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDuration):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_duration", "message": err.Error()})
		case errors.Is(err, payments.ErrInvalidToken), errors.Is(err, payments.ErrInvalidAmount):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "payment_invalid", "message": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to create grant"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"grant":       g,
		"accessToken": tok.Token,
		"expiresAt":   tok.ExpiresAt,
	})
}

// GetGrant handles GET /v1/grants/:grantId.
func (h *Handler) GetGrant(c *gin.Context) {
	g, err := h.mgr.Get(c.Request.Context(), c.Param("grantId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "no such grant"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to load grant"})
		return
	}
	c.JSON(http.StatusOK, g)
}
