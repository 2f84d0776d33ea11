package customers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	conversations "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/domain"
)

type createCustomerRequest struct {
	Name              string  `json:"name" binding:"required"`
	Phone             string  `json:"phone" binding:"required"`
	AcceptsPromotions bool    `json:"acceptsPromotions"`
	Address           *string `json:"address"`
}

// RegisterRoutes mounts customer endpoints under the given group.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool) {
	repo := NewPgCustomerRepository(pool)

	g.POST("/customers", func(c *gin.Context) {
		var req createCustomerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		phone := conversations.NormalizePhone(req.Phone)
		if err := ValidatePhone(phone); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "telefone deve conter 10 ou 11 dígitos"})
			return
		}

		customer, err := repo.Create(c.Request.Context(), CreateInput{
			Name:              req.Name,
			Phone:             phone,
			AcceptsPromotions: req.AcceptsPromotions,
			Address:           req.Address,
		})
		if errors.Is(err, ErrPhoneTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "telefone já cadastrado"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create customer"})
			return
		}
		c.JSON(http.StatusCreated, customer)
	})

	g.GET("/customers", func(c *gin.Context) {
		all, err := repo.FindAll(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list customers"})
			return
		}
		c.JSON(http.StatusOK, all)
	})

	g.GET("/customers/phone/:phone", func(c *gin.Context) {
		phone := conversations.NormalizePhone(c.Param("phone"))
		customer, err := repo.FindByPhone(c.Request.Context(), phone)
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "cliente não encontrado"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load customer"})
			return
		}
		c.JSON(http.StatusOK, customer)
	})

	g.GET("/customers/address/:phone", func(c *gin.Context) {
		phone := conversations.NormalizePhone(c.Param("phone"))
		customer, err := repo.FindByPhone(c.Request.Context(), phone)
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "cliente não encontrado"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load customer"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"phone": customer.Phone, "address": customer.Address})
	})

	g.GET("/customers/last-order/:phone", func(c *gin.Context) {
		phone := conversations.NormalizePhone(c.Param("phone"))
		order, err := repo.LastOrderByPhone(c.Request.Context(), phone)
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "nenhum pedido encontrado"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load last order"})
			return
		}
		c.JSON(http.StatusOK, order)
	})

	g.GET("/customers/:id", func(c *gin.Context) {
		customer, err := repo.FindByID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "cliente não encontrado"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load customer"})
			return
		}
		c.JSON(http.StatusOK, customer)
	})
}
