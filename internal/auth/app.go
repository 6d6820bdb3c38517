package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"Astrape/pkg/kit"
)

const (
	loginLimitPerMin    = 5
	registerLimitPerMin = 3
	limitWindow         = 60 * time.Second
)

func NewHandler(s *Server, deps kit.HTTPDeps) http.Handler {
	r := chi.NewRouter()

	kit.Common(r, deps.Log)
	kit.SetupMetrics(r, deps)

	loginLimiter := kit.NewIPRateLimiter(loginLimitPerMin, limitWindow)
	registerLimiter := kit.NewIPRateLimiter(registerLimitPerMin, limitWindow)

	r.Route("/auth", func(rr chi.Router) {
		rr.With(loginLimiter.Middleware).Post("/login", s.handleLogin)
		rr.With(registerLimiter.Middleware).Post("/register", s.handleRegister)
		rr.With(RequireUser(s.Tokens)).Get("/whoami", s.handleWhoAmI)
	})

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", kit.Readyz(s.Store.Ping, deps.Log))

	return r
}
