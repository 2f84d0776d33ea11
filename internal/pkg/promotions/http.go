package promotions

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type createPromotionRequest struct {
	MenuItemID   string  `json:"menuItemId" binding:"required"`
	PriceCurrent float64 `json:"priceCurrent"`
	ValidFrom    string  `json:"validFrom" binding:"required"`
	ValidUntil   string  `json:"validUntil" binding:"required"`
}

type updatePromotionRequest struct {
	MenuItemID   *string  `json:"menuItemId"`
	PriceCurrent *float64 `json:"priceCurrent"`
	ValidFrom    *string  `json:"validFrom"`
	ValidUntil   *string  `json:"validUntil"`
}

// RegisterRoutes mounts promotion endpoints under the given group.
// "/promotions/active" and "/promotions/menu-item/:id" register before
// "/promotions/:id".
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool) {
	repo := NewPgPromotionRepository(pool)

	g.POST("/promotions", func(c *gin.Context) {
		var req createPromotionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		from, err := time.Parse(time.RFC3339, req.ValidFrom)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validFrom inválido"})
			return
		}
		until, err := time.Parse(time.RFC3339, req.ValidUntil)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validUntil inválido"})
			return
		}

		promotion, err := repo.Create(c.Request.Context(), CreateInput{
			MenuItemID:   req.MenuItemID,
			PriceCurrent: req.PriceCurrent,
			ValidFrom:    from,
			ValidUntil:   until,
		})
		if err != nil {
			respondPromotionError(c, err)
			return
		}
		c.JSON(http.StatusCreated, promotion)
	})

	g.GET("/promotions", func(c *gin.Context) {
		all, err := repo.FindAll(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list promotions"})
			return
		}
		c.JSON(http.StatusOK, all)
	})

	g.GET("/promotions/active", func(c *gin.Context) {
		active, err := repo.FindActive(c.Request.Context(), time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list promotions"})
			return
		}
		c.JSON(http.StatusOK, active)
	})

	g.GET("/promotions/menu-item/:id", func(c *gin.Context) {
		promotion, err := repo.FindByMenuItem(c.Request.Context(), c.Param("id"))
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusOK, nil)
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load promotion"})
			return
		}
		c.JSON(http.StatusOK, promotion)
	})

	g.GET("/promotions/:id", func(c *gin.Context) {
		promotion, err := repo.FindByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondPromotionError(c, err)
			return
		}
		c.JSON(http.StatusOK, promotion)
	})

	g.PATCH("/promotions/:id", func(c *gin.Context) {
		var req updatePromotionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		in := UpdateInput{MenuItemID: req.MenuItemID, PriceCurrent: req.PriceCurrent}
		if req.ValidFrom != nil {
			from, err := time.Parse(time.RFC3339, *req.ValidFrom)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "validFrom inválido"})
				return
			}
			in.ValidFrom = &from
		}
		if req.ValidUntil != nil {
			until, err := time.Parse(time.RFC3339, *req.ValidUntil)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "validUntil inválido"})
				return
			}
			in.ValidUntil = &until
		}

		promotion, err := repo.Update(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			respondPromotionError(c, err)
			return
		}
		c.JSON(http.StatusOK, promotion)
	})

	g.DELETE("/promotions/:id", func(c *gin.Context) {
		if err := repo.Remove(c.Request.Context(), c.Param("id")); err != nil {
			respondPromotionError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "promoção removida com sucesso"})
	})
}

func respondPromotionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "promoção não encontrada"})
	case errors.Is(err, ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "item do cardápio não encontrado"})
	case errors.Is(err, ErrDatesOutOfOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": "data de início deve ser anterior à data de término"})
	case errors.Is(err, ErrNegativePrice):
		c.JSON(http.StatusBadRequest, gin.H{"error": "o preço não pode ser negativo"})
	case errors.Is(err, ErrPriceNotBelow):
		c.JSON(http.StatusBadRequest, gin.H{"error": "o preço com desconto deve ser menor que o preço original"})
	case errors.Is(err, ErrAlreadyActive):
		c.JSON(http.StatusBadRequest, gin.H{"error": "já existe uma promoção ativa para este item"})
	case errors.Is(err, ErrItemTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "já existe uma promoção para este item"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
