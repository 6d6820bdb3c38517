package cart

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Astrape/internal/auth"
	"Astrape/pkg/kit"
)

type Server struct {
	Cart *Service
	Log  *zap.Logger
}

// Quantity stays untyped so ParseQuantity can accept strings. A missing
// productId is left to the service, which reports it as an unknown product.
type addReq struct {
	ProductID string `json:"productId"`
	Quantity  any    `json:"quantity"`
}

type updateReq struct {
	Quantity any `json:"quantity"`
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	c, err := s.Cart.Get(r.Context(), id.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, c)
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req addReq
	if !decode(w, r, &req) {
		return
	}
	qty, err := ParseQuantity(req.Quantity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.Cart.Add(r.Context(), id.UserID, strings.TrimSpace(req.ProductID), qty)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, c)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req updateReq
	if !decode(w, r, &req) {
		return
	}
	qty, err := ParseQuantity(req.Quantity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.Cart.UpdateQuantity(r.Context(), id.UserID, chi.URLParam(r, "productId"), qty)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, c)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	c, err := s.Cart.Remove(r.Context(), id.UserID, chi.URLParam(r, "productId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, c)
}

func identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok || id.UserID == "" {
		kit.WriteError(w, r, http.StatusUnauthorized, "unauthorized", nil)
		return auth.Identity{}, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := kit.DecodeJSON(w, r, dst); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		kit.WriteError(w, r, http.StatusBadRequest, "invalid quantity", nil)
	case errors.Is(err, ErrProductNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "product not found", nil)
	case errors.Is(err, ErrCartNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "cart not found", nil)
	case errors.Is(err, ErrItemNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "item not found in cart", nil)
	case errors.Is(err, ErrConflict):
		kit.WriteError(w, r, http.StatusConflict, "cart modified concurrently, retry", nil)
	case errors.Is(err, ErrCatalogUnavailable):
		s.logError(r, "catalog unavailable", err)
		kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog unavailable", nil)
	case errors.Is(err, ErrCatalogUpstream):
		s.logError(r, "catalog error", err)
		kit.WriteError(w, r, http.StatusBadGateway, "catalog error", nil)
	default:
		s.logError(r, "cart storage failure", err)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func (s *Server) logError(r *http.Request, msg string, err error) {
	if s.Log == nil {
		return
	}
	fields := []zap.Field{zap.Error(err), zap.String("path", r.URL.Path)}
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		fields = append(fields, zap.String("user_id", id.UserID))
	}
	s.Log.Error(msg, fields...)
}
