// Package auth handles restaurant account registration and login,
// issuing bearer tokens for the back-office frontend.
package auth

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

var (
	ErrNotFound           = errors.New("auth: restaurant not found")
	ErrEmailTaken         = errors.New("auth: e-mail already in use")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrMissingSecret      = errors.New("auth: JWT_SECRET is not set")
)

type Restaurant struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	Phone        *string   `db:"phone" json:"phone"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    *string
}

type Response struct {
	AccessToken string     `json:"accessToken"`
	TokenType   string     `json:"tokenType"`
	ExpiresIn   string     `json:"expiresIn"`
	Restaurant  Restaurant `json:"restaurant"`
}

type Repository interface {
	Create(ctx context.Context, name, email, passwordHash string, phone *string) (*Restaurant, error)
	FindByEmail(ctx context.Context, email string) (*Restaurant, error)
}

type Service struct {
	repo      Repository
	secret    []byte
	expiresIn string
}

func NewService(repo Repository) (*Service, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, ErrMissingSecret
	}
	expiresIn := os.Getenv("JWT_EXPIRES_IN")
	if expiresIn == "" {
		expiresIn = "1d"
	}
	return &Service{repo: repo, secret: []byte(secret), expiresIn: expiresIn}, nil
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Response, error) {
	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	restaurant, err := s.repo.Create(ctx, in.Name, in.Email, string(hash), in.Phone)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(restaurant)
}

func (s *Service) Login(ctx context.Context, email, password string) (*Response, error) {
	restaurant, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(restaurant.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.buildResponse(restaurant)
}

func (s *Service) buildResponse(restaurant *Restaurant) (*Response, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":          restaurant.ID,
		"restaurantId": restaurant.ID,
		"email":        restaurant.Email,
		"iat":          now.Unix(),
		"exp":          now.Add(parseExpiry(s.expiresIn)).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &Response{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   s.expiresIn,
		Restaurant:  *restaurant,
	}, nil
}

// parseExpiry accepts Go durations plus the "Nd" day shorthand common
// in JWT configs. Unparseable values fall back to 24 hours.
func parseExpiry(raw string) time.Duration {
	if strings.HasSuffix(raw, "d") {
		if days, err := strconv.Atoi(strings.TrimSuffix(raw, "d")); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	return 24 * time.Hour
}
