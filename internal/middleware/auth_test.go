package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/novaera/caprail/internal/config"
	"github.com/novaera/caprail/internal/domain"
	"github.com/novaera/caprail/internal/domain/user"
	"github.com/novaera/caprail/internal/middleware"
	"github.com/novaera/caprail/internal/port/database"
	"github.com/novaera/caprail/internal/service"
)

// userStore implements just enough of database.Store for registration and
// login; everything else panics via the embedded nil interface.
type userStore struct {
	database.Store
	users []user.User
}

func (s *userStore) CreateUser(_ context.Context, u *user.User) error {
	u.ID = int64(len(s.users) + 1)
	s.users = append(s.users, *u)
	return nil
}

func (s *userStore) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	for i := range s.users {
		if s.users[i].Email == email {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func newAuthService(store database.Store) *service.AuthService {
	return service.NewAuthService(store, &config.Auth{
		TokenSecret: "test-secret",
		TokenTTL:    time.Hour,
		BcryptCost:  bcrypt.MinCost,
	})
}

// echoUser writes the authenticated user's email, or 204 when absent.
func echoUser(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	if u == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Write([]byte(u.Email))
}

func TestAuth_PublicPath(t *testing.T) {
	handler := middleware.Auth(newAuthService(&userStore{}))(http.HandlerFunc(echoUser))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want pass-through without a user", rec.Code)
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	handler := middleware.Auth(newAuthService(&userStore{}))(http.HandlerFunc(echoUser))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_MalformedHeader(t *testing.T) {
	handler := middleware.Auth(newAuthService(&userStore{}))(http.HandlerFunc(echoUser))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_ValidToken(t *testing.T) {
	store := &userStore{}
	authSvc := newAuthService(store)
	ctx := context.Background()

	if _, err := authSvc.Register(ctx, &user.CreateRequest{
		Email: "alice@test.com", Name: "Alice", Password: "password123", Role: user.RoleEmployee,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	resp, err := authSvc.Login(ctx, user.LoginRequest{Email: "alice@test.com", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	handler := middleware.Auth(authSvc)(http.HandlerFunc(echoUser))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "alice@test.com" {
		t.Errorf("user email = %q", rec.Body.String())
	}

	// The same token in the websocket query parameter also authenticates.
	req = httptest.NewRequest(http.MethodGet, "/ws?token="+resp.AccessToken, nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("ws query token status = %d, want 200", rec.Code)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	handler := middleware.Auth(newAuthService(&userStore{}))(http.HandlerFunc(echoUser))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
