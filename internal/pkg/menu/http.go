package menu

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type createItemRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	PriceReal   float64 `json:"priceReal" binding:"required,gt=0"`
	Category    string  `json:"category" binding:"required"`
	Image       *string `json:"image"`
	Available   *bool   `json:"available"`
}

type updateItemRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	PriceReal   *float64 `json:"priceReal"`
	Category    *string  `json:"category"`
	Image       *string  `json:"image"`
	Available   *bool    `json:"available"`
}

// RegisterRoutes mounts menu endpoints under the given group.
// "/menu/categories" must register before "/menu/:id".
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool) {
	repo := NewPgMenuRepository(pool)

	g.POST("/menu", func(c *gin.Context) {
		var req createItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		item, err := repo.Create(c.Request.Context(), CreateInput{
			Name:        req.Name,
			Description: req.Description,
			PriceReal:   req.PriceReal,
			Category:    req.Category,
			Image:       req.Image,
			Available:   req.Available,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create menu item"})
			return
		}
		c.JSON(http.StatusCreated, item)
	})

	g.GET("/menu/categories", func(c *gin.Context) {
		categories, err := repo.Categories(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
			return
		}
		if categories == nil {
			categories = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"categories": categories})
	})

	g.GET("/menu", func(c *gin.Context) {
		items, err := repo.FindAll(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list menu items"})
			return
		}
		c.JSON(http.StatusOK, items)
	})

	g.GET("/menu/:id", func(c *gin.Context) {
		item, err := repo.FindByID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item do cardápio não encontrado"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load menu item"})
			return
		}
		c.JSON(http.StatusOK, item)
	})

	g.PUT("/menu/:id", func(c *gin.Context) {
		var req updateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		item, err := repo.Update(c.Request.Context(), c.Param("id"), UpdateInput{
			Name:        req.Name,
			Description: req.Description,
			PriceReal:   req.PriceReal,
			Category:    req.Category,
			Image:       req.Image,
			Available:   req.Available,
		})
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item do cardápio não encontrado"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update menu item"})
			return
		}
		c.JSON(http.StatusOK, item)
	})

	g.DELETE("/menu/:id", func(c *gin.Context) {
		err := repo.Delete(c.Request.Context(), c.Param("id"))
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item do cardápio não encontrado"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete menu item"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "item removido com sucesso"})
	})
}
