package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/card-recommender/internal/middleware"
	"github.com/ajharbinger/card-recommender/internal/models"
	"github.com/ajharbinger/card-recommender/internal/services"
)

// RecommendationHandler serves card recommendations
type RecommendationHandler struct {
	recommendationService services.RecommendationService
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(recommendationService services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		recommendationService: recommendationService,
	}
}

// Recommend ranks the eligible cards for the submitted profile
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	var req models.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.recommendationService.Recommend(c.Request.Context(), req.ToProfile())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewRecommendationResponse(middleware.GetRequestID(c), result))
}
