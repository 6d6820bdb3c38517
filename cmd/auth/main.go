package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"Astrape/internal/auth"
	"Astrape/pkg/kit"
)

type config struct {
	Web struct {
		Port string `conf:"default:8081"`
	}
	Log struct {
		Level string `conf:"default:info"`
	}
	Store struct {
		Driver      string `conf:"default:memory,help:memory or postgres"`
		PostgresDSN string `conf:"mask"`
	}
	JWT struct {
		Secret string        `conf:"required,mask"`
		TTL    time.Duration `conf:"default:24h"`
	}
	Admin struct {
		Email    string
		Password string `conf:"mask"`
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
		fmt.Fprintln(os.Stderr, "auth:", err)
		os.Exit(1)
	}
}

func run() error {
	const service = "auth"

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

	ctx := context.Background()

	store, closers, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	if cfg.Admin.Email != "" {
		if err := auth.EnsureAdmin(ctx, store, "u_"+uuid.NewString(), cfg.Admin.Email, cfg.Admin.Password); err != nil {
			return fmt.Errorf("seeding admin: %w", err)
		}
		log.Info("admin account ready", zap.String("email", cfg.Admin.Email))
	}

	s := &auth.Server{
		Log:    log,
		Store:  store,
		Tokens: auth.NewTokenMaker(cfg.JWT.Secret, cfg.JWT.TTL),
	}

	h := auth.NewHandler(s, kit.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})

	return kit.RunHTTPServer(":"+cfg.Web.Port, h, log, closers...)
}

func openStore(ctx context.Context, cfg config, log *zap.Logger) (auth.UserStore, []io.Closer, error) {
	switch cfg.Store.Driver {
	case "memory":
		log.Warn("using in-memory user store; accounts are lost on restart")
		return auth.NewMemStore(), nil, nil

	case "postgres":
		if err := kit.MigratePostgres(cfg.Store.PostgresDSN, auth.Migrations, "migrations", auth.MigrationsTable); err != nil {
			return nil, nil, err
		}
		db, err := kit.OpenPostgres(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return auth.NewPostgresStore(db), []io.Closer{db}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
