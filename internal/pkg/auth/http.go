package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type registerRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=6"`
	Phone    *string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRoutes mounts the register and login endpoints. When
// JWT_SECRET is not configured the auth routes are left unmounted.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, logger *slog.Logger) {
	svc, err := NewService(NewPgRestaurantRepository(pool))
	if err != nil {
		logger.Warn("auth: routes disabled", "error", err)
		return
	}

	g.POST("/auth/register", func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		resp, err := svc.Register(c.Request.Context(), RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Phone:    req.Phone,
		})
		if errors.Is(err, ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "e-mail já está em uso"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
			return
		}
		c.JSON(http.StatusCreated, resp)
	})

	g.POST("/auth/login", func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		resp, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "credenciais inválidas"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to login"})
			return
		}
		c.JSON(http.StatusOK, resp)
	})
}
