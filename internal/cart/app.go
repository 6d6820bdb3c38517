package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Astrape/internal/auth"
	"Astrape/pkg/kit"
)

// NewHandler mounts the cart API. Every cart route needs a token issued by
// tokens; the caller's user id comes from it.
func NewHandler(s *Server, tokens *auth.TokenMaker, deps kit.HTTPDeps) http.Handler {
	r := chi.NewRouter()

	kit.Common(r, deps.Log)
	kit.SetupMetrics(r, deps)

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", kit.Readyz(s.Cart.Store.Ping, deps.Log))

	r.Route("/cart", func(cr chi.Router) {
		cr.Use(auth.RequireUser(tokens))

		cr.Get("/", s.get)
		cr.Post("/items", s.add)
		cr.Put("/items/{productId}", s.update)
		cr.Delete("/items/{productId}", s.remove)

		cr.Post("/add", s.add)
		cr.Put("/update/{productId}", s.update)
		cr.Delete("/remove/{productId}", s.remove)
	})

	return r
}
