package access

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbd888/pressgate/internal/catalog"
)

// Handler provides HTTP endpoints for access verification and statistics.
type Handler struct {
	mgr *Manager
}

// NewHandler creates a new access handler.
func NewHandler(mgr *Manager) *Handler {
	return &Handler{mgr: mgr}
}

// RegisterRoutes sets up access routes on the given router group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/access/verify", h.VerifyAccess)
	r.GET("/stats", h.GlobalStats)
	r.GET("/users/:userId/stats", h.UserStats)
}

// VerifyAccess handles POST /v1/access/verify.
func (h *Handler) VerifyAccess(c *gin.Context) {
	var req struct {
		UserID      string `json:"userId" binding:"required"`
		ContentID   string `json:"contentId" binding:"required"`
		Level       string `json:"level"`
		AccessToken string `json:"accessToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "user_id and content_id required"})
		return
	}

	level := catalog.LevelPremium
	if req.Level != "" {
		var err error
		level, err = catalog.ParseLevel(req.Level)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_level", "message": err.Error()})
			return
		}
	}

	decision, err := h.mgr.Verify(c.Request.Context(), Request{
		UserID:      req.UserID,
		ContentID:   req.ContentID,
		Level:       level,
		AccessToken: req.AccessToken,
	})
	if err != nil {
		if errors.Is(err, ErrMissingUserID) || errors.Is(err, ErrMissingContentID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "verification failed"})
		return
	}

	c.JSON(http.StatusOK, decision)
}

// UserStats handles GET /v1/users/:userId/stats.
func (h *Handler) UserStats(c *gin.Context) {
	userID := c.Param("userId")
	stats, err := h.mgr.UserStats(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to compute statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GlobalStats handles GET /v1/stats.
func (h *Handler) GlobalStats(c *gin.Context) {
	stats, err := h.mgr.GlobalStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to compute statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
