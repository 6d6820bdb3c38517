package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"Astrape/internal/auth"
	"Astrape/internal/catalog"
	"Astrape/pkg/kit"
)

type config struct {
	Web struct {
		Port string `conf:"default:8082"`
	}
	Log struct {
		Level string `conf:"default:info"`
	}
	Store struct {
		Driver        string `conf:"default:memory,help:memory, postgres or mongo"`
		PostgresDSN   string `conf:"mask"`
		MongoURI      string `conf:"mask"`
		MongoDatabase string `conf:"default:astrape"`
		Seed          bool   `conf:"default:true,help:seed the memory store with sample products"`
	}
	JWT struct {
		Secret string `conf:"required,mask"`
	}
	Filters struct {
		Categories []string `conf:"help:semicolon separated; empty keeps the built-in list"`
		Brands     []string `conf:"help:semicolon separated; empty keeps the built-in list"`
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
		fmt.Fprintln(os.Stderr, "catalog:", err)
		os.Exit(1)
	}
}

func run() error {
	const service = "catalog"

	var cfg config
	if err := kit.LoadConfig("ASTRAPE", &cfg); err != nil {
		return err
	}

	log := kit.NewLogger(service, cfg.Log.Level)
	defer func() { _ = log.Sync() }()
	log.Info("config loaded", zap.String("config", kit.ConfigString(&cfg)))

	store, closers, err := openStore(context.Background(), cfg, log)
	if err != nil {
		return err
	}

	filters := catalog.DefaultFilterConfig()
	if len(cfg.Filters.Categories) > 0 {
		filters.Categories = cfg.Filters.Categories
	}
	if len(cfg.Filters.Brands) > 0 {
		filters.Brands = cfg.Filters.Brands
	}

	s := &catalog.Server{
		Store:   store,
		Log:     log,
		Filters: filters,
	}

	// Token lifetime is only enforced by the issuer.
	tokens := auth.NewTokenMaker(cfg.JWT.Secret, time.Hour)

	h := catalog.NewHandler(s, tokens, kit.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})

	return kit.RunHTTPServer(":"+cfg.Web.Port, h, log, closers...)
}

func openStore(ctx context.Context, cfg config, log *zap.Logger) (catalog.Store, []io.Closer, error) {
	switch cfg.Store.Driver {
	case "memory":
		if cfg.Store.Seed {
			return catalog.NewMemStore(catalog.DevSeed()...), nil, nil
		}
		return catalog.NewMemStore(), nil, nil

	case "postgres":
		if err := kit.MigratePostgres(cfg.Store.PostgresDSN, catalog.Migrations, "migrations", catalog.MigrationsTable); err != nil {
			return nil, nil, err
		}
		db, err := kit.OpenPostgres(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return catalog.NewPostgresStore(db), []io.Closer{db}, nil

	case "mongo":
		client, err := kit.OpenMongo(ctx, cfg.Store.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		closer := kit.CloserFunc(func() error { return client.Disconnect(context.Background()) })

		store := catalog.NewMongoStore(client.Database(cfg.Store.MongoDatabase))
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = closer.Close()
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		log.Info("using mongo product store", zap.String("database", cfg.Store.MongoDatabase))
		return store, []io.Closer{closer}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
