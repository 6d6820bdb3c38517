package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"Astrape/internal/auth"
	"Astrape/pkg/kit"
)

type Deps struct {
	AuthURL     string
	CatalogURL  string
	CartURL     string
	Tokens      *auth.TokenMaker
	CORSOrigins []string
}

const (
	readyTimeout      = 2 * time.Second
	readyProbeTimeout = 700 * time.Millisecond
)

var readyClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
	},
}

// NewHandler is the public entrypoint. Cart routes and product writes are
// checked here before they are proxied; the services check the token again.
func NewHandler(deps Deps, httpDeps kit.HTTPDeps) (http.Handler, error) {
	authProxy, err := NewReverseProxy(deps.AuthURL, httpDeps.Log)
	if err != nil {
		return nil, fmt.Errorf("auth upstream: %w", err)
	}
	catalogProxy, err := NewReverseProxy(deps.CatalogURL, httpDeps.Log)
	if err != nil {
		return nil, fmt.Errorf("catalog upstream: %w", err)
	}
	cartProxy, err := NewReverseProxy(deps.CartURL, httpDeps.Log)
	if err != nil {
		return nil, fmt.Errorf("cart upstream: %w", err)
	}

	r := chi.NewRouter()

	kit.Common(r, httpDeps.Log)
	r.Use(corsHandler(deps.CORSOrigins))
	kit.SetupMetrics(r, httpDeps)

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", readyz(deps, httpDeps.Log))

	r.Handle("/auth", authProxy)
	r.Handle("/auth/*", authProxy)

	r.Get("/products", catalogProxy.ServeHTTP)
	r.Get("/products/*", catalogProxy.ServeHTTP)
	r.Group(func(ar chi.Router) {
		ar.Use(auth.RequireUser(deps.Tokens), auth.RequireRole(auth.RoleAdmin))
		ar.Post("/products", catalogProxy.ServeHTTP)
		ar.Put("/products/*", catalogProxy.ServeHTTP)
		ar.Delete("/products/*", catalogProxy.ServeHTTP)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireUser(deps.Tokens))
		pr.Handle("/cart", cartProxy)
		pr.Handle("/cart/*", cartProxy)
	})

	return r, nil
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

type upstream struct {
	name string
	url  string
}

func readyz(deps Deps, log *zap.Logger) http.HandlerFunc {
	upstreams := []upstream{
		{name: "auth", url: deps.AuthURL},
		{name: "catalog", url: deps.CatalogURL},
		{name: "cart", url: deps.CartURL},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		for _, u := range upstreams {
			if err := checkReady(ctx, u.url+"/readyz"); err != nil {
				if log != nil {
					log.Warn("readyz failed", zap.String("upstream", u.name), zap.Error(err))
				}
				kit.WriteError(w, r, http.StatusServiceUnavailable, u.name+" not ready", nil)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
	}
}

func checkReady(ctx context.Context, url string) error {
	cctx, cancel := context.WithTimeout(ctx, readyProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := readyClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status=%d", resp.StatusCode)
	}

	return nil
}
