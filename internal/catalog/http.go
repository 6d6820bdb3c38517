package catalog

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"Astrape/pkg/kit"
)

type Server struct {
	Store   Store
	Log     *zap.Logger
	Filters FilterConfig
	Now     func() time.Time
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid filter", map[string]any{"cause": err.Error()})
		return
	}

	products, err := s.Store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, Apply(products, f, s.Filters))
}

func (s *Server) filters(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Filters)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	p, err := s.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req NewProduct
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := kit.Validate(req); err != nil {
		s.writeValidationError(w, r, err)
		return
	}

	p := req.Product("p_"+uuid.NewString(), s.now())
	if err := s.Store.Create(r.Context(), p); err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var patch Patch
	if err := kit.DecodeJSON(w, r, &patch); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if err := kit.Validate(patch); err != nil {
		s.writeValidationError(w, r, err)
		return
	}

	p, err := s.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p = patch.Apply(p, s.now())
	if err := s.Store.Update(r.Context(), p); err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]string{"message": "product removed"})
}

func (s *Server) writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *kit.ValidationError
	if !errors.As(err, &ve) {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid fields", nil)
		return
	}
	if missing := ve.Missing(); len(missing) > 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "missing required fields", map[string]any{"fields": missing})
		return
	}
	kit.WriteError(w, r, http.StatusBadRequest, "invalid fields", ve.Problems)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "product not found", map[string]any{"id": chi.URLParam(r, "id")})
	default:
		if s.Log != nil {
			s.Log.Error("catalog request failed", zap.Error(err), zap.String("path", r.URL.Path))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
