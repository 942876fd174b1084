package assess

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler provides HTTP endpoints for content valuation.
type Handler struct {
	assessor *Assessor
}

// NewHandler creates a new assessment handler.
func NewHandler(assessor *Assessor) *Handler {
	return &Handler{assessor: assessor}
}

// RegisterRoutes sets up assessment routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/assessments", h.AssessContent)
	r.GET("/assessments/:contentId", h.GetAssessment)
}

// AssessContent handles POST /v1/assessments.
func (h *Handler) AssessContent(c *gin.Context) {
	var req struct {
		Content             Content  `json:"content"`
		PublisherTrustScore *float64 `json:"publisherTrustScore"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Content.ContentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "content.contentId required"})
		return
	}

	trust := 5.0
	if req.PublisherTrustScore != nil {
		trust = *req.PublisherTrustScore
	}
	if trust < 0 || trust > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_trust_score", "message": "publisherTrustScore must be between 0 and 10"})
		return
	}

	assessment, err := h.assessor.Assess(c.Request.Context(), &req.Content, trust)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "assessment failed"})
		return
	}
	c.JSON(http.StatusOK, assessment)
}

// GetAssessment handles GET /v1/assessments/:contentId.
func (h *Handler) GetAssessment(c *gin.Context) {
	assessment, err := h.assessor.Cached(c.Request.Context(), c.Param("contentId"))
	if err != nil {
		if errors.Is(err, ErrNotAssessed) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_assessed", "message": "content has not been assessed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to load assessment"})
		return
	}
	c.JSON(http.StatusOK, assessment)
}
