package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"Astrape/internal/auth"
	"Astrape/internal/gateway"
	"Astrape/pkg/kit"
)

type config struct {
	Web struct {
		Port string `conf:"default:8080"`
	}
	Log struct {
		Level string `conf:"default:info"`
	}
	JWT struct {
		Secret string `conf:"required,mask"`
	}
	AuthURL    string `conf:"default:http://auth:8081"`
	CatalogURL string `conf:"default:http://catalog:8082"`
	CartURL    string `conf:"default:http://cart:8083"`
	CORS       struct {
		Origins string `conf:"help:comma separated; empty allows any origin"`
	}
	Metrics struct {
		Enabled bool   `conf:"default:true"`
		Token   string `conf:"mask"`
	}
}

func main() {
	if err := run(); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			return
		}
		fmt.Fprintln(os.Stderr, "gateway:", err)
		os.Exit(1)
	}
}

func run() error {
	const service = "gateway"

	var cfg config
	if err := kit.LoadConfig("ASTRAPE", &cfg); err != nil {
		return err
	}
	if len(cfg.JWT.Secret) < 32 {
		return errors.New("JWT secret must be at least 32 chars")
	}

	log := kit.NewLogger(service, cfg.Log.Level)
	defer func() { _ = log.Sync() }()
	log.Info("config loaded", zap.String("config", kit.ConfigString(&cfg)))

	h, err := gateway.NewHandler(
		gateway.Deps{
			AuthURL:     cfg.AuthURL,
			CatalogURL:  cfg.CatalogURL,
			CartURL:     cfg.CartURL,
			Tokens:      auth.NewTokenMaker(cfg.JWT.Secret, time.Hour),
			CORSOrigins: kit.CSV(cfg.CORS.Origins),
		},
		kit.HTTPDeps{
			Log:            log,
			Service:        service,
			Registry:       prometheus.NewRegistry(),
			MetricsEnabled: cfg.Metrics.Enabled,
			MetricsToken:   cfg.Metrics.Token,
		},
	)
	if err != nil {
		return fmt.Errorf("init gateway handler: %w", err)
	}

	return kit.RunHTTPServer(":"+cfg.Web.Port, h, log)
}
