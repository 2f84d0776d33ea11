package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type fakeRestaurantRepo struct {
	byEmail map[string]*Restaurant
}

func newFakeRestaurantRepo() *fakeRestaurantRepo {
	return &fakeRestaurantRepo{byEmail: make(map[string]*Restaurant)}
}

var _ Repository = (*fakeRestaurantRepo)(nil)

func (r *fakeRestaurantRepo) Create(ctx context.Context, name, email, passwordHash string, phone *string) (*Restaurant, error) {
	if _, ok := r.byEmail[email]; ok {
		return nil, ErrEmailTaken
	}
	rst := &Restaurant{
		ID:           "rest-1",
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Phone:        phone,
		CreatedAt:    time.Now(),
	}
	r.byEmail[email] = rst
	return rst, nil
}

func (r *fakeRestaurantRepo) FindByEmail(ctx context.Context, email string) (*Restaurant, error) {
	if rst, ok := r.byEmail[email]; ok {
		return rst, nil
	}
	return nil, ErrNotFound
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_EXPIRES_IN", "1d")
	svc, err := NewService(repo)
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestRegister_IssuesBearerToken(t *testing.T) {
	repo := newFakeRestaurantRepo()
	svc := newTestService(t, repo)

	resp, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Pizzaria Bela Napoli",
		Email:    "contato@belanapoli.com",
		Password: "segredo123",
	})
	if err != nil {
		t.Fatal(err)
	}

	if resp.TokenType != "Bearer" {
		t.Errorf("tokenType = %q", resp.TokenType)
	}
	if resp.ExpiresIn != "1d" {
		t.Errorf("expiresIn = %q", resp.ExpiresIn)
	}
	if resp.Restaurant.Email != "contato@belanapoli.com" {
		t.Errorf("restaurant email = %q", resp.Restaurant.Email)
	}

	// The stored hash must verify against the raw password.
	stored := repo.byEmail["contato@belanapoli.com"]
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("segredo123")); err != nil {
		t.Error("stored password is not a bcrypt hash of the input")
	}

	token, err := jwt.Parse(resp.AccessToken, func(tk *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token did not verify: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["restaurantId"] != "rest-1" {
		t.Errorf("restaurantId claim = %v", claims["restaurantId"])
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newTestService(t, newFakeRestaurantRepo())

	in := RegisterInput{Name: "A", Email: "dup@example.com", Password: "secret1"}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService(t, newFakeRestaurantRepo())

	if _, err := svc.Register(context.Background(), RegisterInput{
		Name: "A", Email: "a@example.com", Password: "correta",
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login(context.Background(), "a@example.com", "errada"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(context.Background(), "naoexiste@example.com", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
	if resp, err := svc.Login(context.Background(), "a@example.com", "correta"); err != nil || resp.AccessToken == "" {
		t.Errorf("valid login failed: %v", err)
	}
}

func TestNewService_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := NewService(newFakeRestaurantRepo()); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("err = %v, want ErrMissingSecret", err)
	}
}

func TestParseExpiry(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"1d", 24 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"12h", 12 * time.Hour},
		{"30m", 30 * time.Minute},
		{"garbage", 24 * time.Hour},
		{"", 24 * time.Hour},
	}
	for _, tc := range cases {
		if got := parseExpiry(tc.in); got != tc.want {
			t.Errorf("parseExpiry(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
