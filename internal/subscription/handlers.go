package subscription

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbd888/pressgate/internal/catalog"
)

// Handler provides HTTP endpoints for subscription management.
type Handler struct {
	svc *Service
}

// NewHandler creates a new subscription handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes sets up subscription and plan routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/subscriptions", h.CreateSubscription)
	r.GET("/subscriptions/:userId", h.GetSubscription)
	r.DELETE("/subscriptions/:userId", h.CancelSubscription)
	r.GET("/plans", h.ListPlans)
}

// CreateSubscription handles POST /v1/subscriptions.
func (h *Handler) CreateSubscription(c *gin.Context) {
	var req struct {
		UserID        string `json:"userId" binding:"required"`
		PlanID        string `json:"planId" binding:"required"`
		PaymentMethod string `json:"paymentMethod"`
		BillingPeriod string `json:"billingPeriod"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "userId and planId required"})
		return
	}

	period := BillingMonthly
	if req.BillingPeriod != "" {
		period = BillingPeriod(req.BillingPeriod)
		if period != BillingMonthly && period != BillingAnnual {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_period", "message": "billingPeriod must be monthly or annual"})
			return
		}
	}

	sub, err := h.svc.Create(c.Request.Context(), req.UserID, req.PlanID, req.PaymentMethod, period)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrPlanNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_plan", "message": "no such plan: " + req.PlanID})
		case errors.Is(err, ErrAlreadySubscribed):
			c.JSON(http.StatusConflict, gin.H{"error": "already_subscribed", "message": "user already has an active subscription"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to create subscription"})
		}
		return
	}

	c.JSON(http.StatusCreated, sub)
}

// GetSubscription handles GET /v1/subscriptions/:userId.
func (h *Handler) GetSubscription(c *gin.Context) {
	sub, err := h.svc.Get(c.Request.Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "no subscription for user"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to load subscription"})
		return
	}
	c.JSON(http.StatusOK, sub)
}

// CancelSubscription handles DELETE /v1/subscriptions/:userId.
func (h *Handler) CancelSubscription(c *gin.Context) {
	err := h.svc.Cancel(c.Request.Context(), c.Param("userId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "no subscription for user"})
		case errors.Is(err, ErrAlreadyCancelled):
			c.JSON(http.StatusConflict, gin.H{"error": "already_cancelled", "message": "subscription is already cancelled"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to cancel subscription"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// ListPlans handles GET /v1/plans.
func (h *Handler) ListPlans(c *gin.Context) {
	plans := catalog.ListPlans(true)
	c.JSON(http.StatusOK, gin.H{"plans": plans, "count": len(plans)})
}
