package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Astrape/internal/auth"
	"Astrape/pkg/kit"
)

// NewHandler mounts the catalog API. Reads are public; writes need an admin
// token issued by tokens.
func NewHandler(s *Server, tokens *auth.TokenMaker, deps kit.HTTPDeps) http.Handler {
	r := chi.NewRouter()

	kit.Common(r, deps.Log)
	kit.SetupMetrics(r, deps)

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", kit.Readyz(s.Store.Ping, deps.Log))

	r.Route("/products", func(pr chi.Router) {
		pr.Get("/", s.list)
		pr.Get("/filters", s.filters)
		pr.Get("/{id}", s.get)

		pr.Group(func(ar chi.Router) {
			ar.Use(auth.RequireUser(tokens), auth.RequireRole(auth.RoleAdmin))
			ar.Post("/", s.create)
			ar.Put("/{id}", s.update)
			ar.Delete("/{id}", s.delete)
		})
	})

	return r
}
