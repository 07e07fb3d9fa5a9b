package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/card-recommender/internal/models"
	"github.com/ajharbinger/card-recommender/internal/services"
)

// CatalogHandler handles card catalog reads and administration
type CatalogHandler struct {
	catalogService services.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// ListCards returns the catalog, optionally narrowed by ?reward_type=
func (h *CatalogHandler) ListCards(c *gin.Context) {
	cards, err := h.catalogService.Search(c.Request.Context(), c.Query("reward_type"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cards": models.NewCardViews(cards),
		"total": len(cards),
	})
}

// GetCard returns a single card
func (h *CatalogHandler) GetCard(c *gin.Context) {
	card, err := h.catalogService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"card": models.NewCardView(*card)})
}

// CreateCard adds a card to the catalog
func (h *CatalogHandler) CreateCard(c *gin.Context) {
	var req models.CardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	card := req.ToCard("")
	if err := h.catalogService.Create(c.Request.Context(), &card); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Card created successfully",
		"card":    models.NewCardView(card),
	})
}

// UpdateCard replaces a card's attributes
func (h *CatalogHandler) UpdateCard(c *gin.Context) {
	var req models.CardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	card := req.ToCard(c.Param("id"))
	if err := h.catalogService.Update(c.Request.Context(), &card); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Card updated successfully",
		"card":    models.NewCardView(card),
	})
}

// DeleteCard removes a card from the catalog
func (h *CatalogHandler) DeleteCard(c *gin.Context) {
	id := c.Param("id")
	if err := h.catalogService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Card deleted successfully",
		"id":      id,
	})
}
