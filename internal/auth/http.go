package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"Astrape/pkg/kit"
)

type Server struct {
	Log    *zap.Logger
	Store  UserStore
	Tokens *TokenMaker
}

type registerReq struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Number   string `json:"number" validate:"required"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResp struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)
	req.Password = normalizePassword(req.Password)
	req.Number = strings.TrimSpace(req.Number)

	if !validRequest(w, r, req) {
		return
	}

	u, err := s.Store.Create(r.Context(), User{
		ID:       "u_" + uuid.NewString(),
		Username: req.Username,
		Email:    req.Email,
		Number:   req.Number,
		Role:     RoleUser,
	}, req.Password)
	if errors.Is(err, ErrUserExists) {
		kit.WriteError(w, r, http.StatusConflict, err.Error(), nil)
		return
	}
	if err != nil {
		s.Log.Error("create user failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	s.writeSession(w, r, http.StatusCreated, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	req.Email = normalizeEmail(req.Email)
	req.Password = normalizePassword(req.Password)

	if !validRequest(w, r, req) {
		return
	}

	u, err := s.Store.Verify(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	if err != nil {
		s.Log.Error("verify user failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	s.writeSession(w, r, http.StatusOK, u)
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"user_id": id.UserID,
		"email":   id.Email,
		"role":    id.Role,
	})
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, status int, u User) {
	tok, err := s.Tokens.New(u)
	if err != nil {
		s.Log.Error("token issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, status, sessionResp{User: u, AccessToken: tok})
}

func validRequest(w http.ResponseWriter, r *http.Request, req any) bool {
	err := kit.Validate(req)
	if err == nil {
		return true
	}

	var ve *kit.ValidationError
	if !errors.As(err, &ve) {
		kit.WriteError(w, r, http.StatusBadRequest, "bad request", nil)
		return false
	}
	if missing := ve.Missing(); len(missing) > 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "missing fields", map[string]any{"fields": missing})
		return false
	}
	kit.WriteError(w, r, http.StatusBadRequest, "invalid fields", ve.Problems)
	return false
}
