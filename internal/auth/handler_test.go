package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrspaquetes/paqueteria-api/internal/auth"
	"github.com/mrspaquetes/paqueteria-api/internal/shared"
	_ "github.com/mrspaquetes/paqueteria-api/testing"
)

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || !strings.EqualFold(s.user.Email, email) {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	return nil
}

func newAuthRouter(t *testing.T, repo auth.Repository) (chi.Router, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(client, time.Hour)
	handler := auth.NewHandler(nil, auth.NewService(repo), sessions)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if token := shared.TokenFromRequest(req); token != "" {
				if sess, err := sessions.Load(req.Context(), token); err == nil {
					req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
				}
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/auth", handler.MountRoutes)
	return r, sessions
}

func activeUser(t *testing.T, password string) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &auth.User{
		ID:           1,
		Email:        "admin@mrspaquetes.local",
		Name:         "Admin",
		Role:         auth.RoleAdmin,
		PasswordHash: string(hashed),
		IsActive:     true,
	}
}

func TestLoginSuccess(t *testing.T) {
	router, _ := newAuthRouter(t, &stubRepo{user: activeUser(t, "secreto123")})

	body := `{"email":"admin@mrspaquetes.local","password":"secreto123"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	var payload struct {
		Token string     `json:"token"`
		User  *auth.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.NotEmpty(t, payload.Token)
	assert.Equal(t, int64(1), payload.User.ID)
}

func TestLoginInvalidCredentials(t *testing.T) {
	router, _ := newAuthRouter(t, &stubRepo{user: activeUser(t, "secreto123")})

	body := `{"email":"admin@mrspaquetes.local","password":"incorrecta"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Contains(t, res.Body.String(), "Credenciales incorrectas")
}

func TestShowWithInvalidToken(t *testing.T) {
	router, _ := newAuthRouter(t, &stubRepo{user: activeUser(t, "secreto123")})

	req := httptest.NewRequest(http.MethodGet, "/auth/show/1", nil)
	req.Header.Set("Authorization", "Bearer expirado")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Contains(t, res.Body.String(), "Token is Invalid")
}

func TestShowReturnsSessionUser(t *testing.T) {
	user := activeUser(t, "secreto123")
	router, sessions := newAuthRouter(t, &stubRepo{user: user})

	sess, err := sessions.Create(context.Background(), user.ID, user.Email, user.Name, user.Role)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/show/1", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "admin@mrspaquetes.local")
}
