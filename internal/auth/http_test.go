package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"Astrape/pkg/kit"
)

func newTestHandler(t *testing.T) (http.Handler, *Server) {
	t.Helper()

	s := &Server{
		Log:    zap.NewNop(),
		Store:  NewMemStore(),
		Tokens: NewTokenMaker("test-secret", 15*time.Minute),
	}
	return NewHandler(s, kit.HTTPDeps{Log: zap.NewNop(), Service: "auth"}), s
}

func do(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRegisterLoginWhoAmI(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/auth/register", map[string]any{
		"username": "alice",
		"email":    "Alice@Example.com ",
		"password": "password123",
		"number":   "5550001",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var reg sessionResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.Equal(t, "alice@example.com", reg.User.Email)
	assert.Equal(t, RoleUser, reg.User.Role)
	assert.NotEmpty(t, reg.AccessToken)

	rec = do(t, h, http.MethodPost, "/auth/login", map[string]any{
		"email":    "alice@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login sessionResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.AccessToken)

	rec = do(t, h, http.MethodGet, "/auth/whoami", nil, login.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var who map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &who))
	assert.Equal(t, reg.User.ID, who["user_id"])
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{
			name: "missing number",
			body: map[string]any{"username": "bob", "email": "bob@example.com", "password": "password123"},
			want: "missing fields",
		},
		{
			name: "short password",
			body: map[string]any{"username": "bob", "email": "bob@example.com", "password": "short", "number": "1"},
			want: "invalid fields",
		},
		{
			name: "unknown field",
			body: map[string]any{"username": "bob", "admin": true},
			want: "bad json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, _ := newTestHandler(t)
			rec := do(t, h, http.MethodPost, "/auth/register", tt.body, "")
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var er kit.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
			assert.Equal(t, tt.want, er.Error)
		})
	}
}

func TestRegister_DuplicateEmailOrNumber(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	body := map[string]any{
		"username": "carol",
		"email":    "carol@example.com",
		"password": "password123",
		"number":   "5550002",
	}
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/auth/register", body, "").Code)

	body["email"] = "other@example.com"
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/auth/register", body, "").Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	h, s := newTestHandler(t)
	_, err := s.Store.Create(context.Background(), User{ID: "u_1", Email: "dan@example.com", Role: RoleUser}, "password123")
	require.NoError(t, err)

	rec := do(t, h, http.MethodPost, "/auth/login", map[string]any{
		"email":    "dan@example.com",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	t.Parallel()

	store := NewMemStore()
	ctx := context.Background()

	require.NoError(t, EnsureAdmin(ctx, store, "u_admin", "admin@example.com", "admin-password"))
	require.NoError(t, EnsureAdmin(ctx, store, "u_admin2", "admin@example.com", "admin-password"))

	u, err := store.Verify(ctx, "admin@example.com", "admin-password")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, u.Role)
	assert.Equal(t, "u_admin", u.ID)
}
