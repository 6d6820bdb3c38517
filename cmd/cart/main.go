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
	"Astrape/internal/cart"
	"Astrape/pkg/kit"
)

type config struct {
	Web struct {
		Port string `conf:"default:8083"`
	}
	Log struct {
		Level string `conf:"default:info"`
	}
	Store struct {
		Driver        string `conf:"default:memory,help:memory, postgres or mongo"`
		PostgresDSN   string `conf:"mask"`
		MongoURI      string `conf:"mask"`
		MongoDatabase string `conf:"default:astrape"`
	}
	JWT struct {
		Secret string `conf:"required,mask"`
	}
	CatalogURL string `conf:"default:http://catalog:8082"`
	Kafka      struct {
		Brokers string `conf:"help:comma separated; empty disables events"`
		Topic   string `conf:"default:cart-events"`
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
		fmt.Fprintln(os.Stderr, "cart:", err)
		os.Exit(1)
	}
}

func run() error {
	const service = "cart"

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

	var events cart.Publisher = cart.NopPublisher{}
	if brokers := kit.CSV(cfg.Kafka.Brokers); len(brokers) > 0 {
		kp := cart.NewKafkaPublisher(brokers, cfg.Kafka.Topic)
		closers = append(closers, kp)
		events = kp
		log.Info("publishing cart events", zap.Strings("brokers", brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	reg := prometheus.NewRegistry()

	svc := &cart.Service{
		Store:   store,
		Catalog: cart.NewCatalogClient(cfg.CatalogURL),
		Events:  events,
		Log:     log,
		Metrics: cart.NewMetrics(reg),
	}

	tokens := auth.NewTokenMaker(cfg.JWT.Secret, time.Hour)

	h := cart.NewHandler(&cart.Server{Cart: svc, Log: log}, tokens, kit.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})

	return kit.RunHTTPServer(":"+cfg.Web.Port, h, log, closers...)
}

func openStore(ctx context.Context, cfg config, log *zap.Logger) (cart.Store, []io.Closer, error) {
	switch cfg.Store.Driver {
	case "memory":
		log.Warn("using in-memory cart store; carts are lost on restart")
		return cart.NewMemStore(), nil, nil

	case "postgres":
		if err := kit.MigratePostgres(cfg.Store.PostgresDSN, cart.Migrations, "migrations", cart.MigrationsTable); err != nil {
			return nil, nil, err
		}
		db, err := kit.OpenPostgres(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return cart.NewPostgresStore(db), []io.Closer{db}, nil

	case "mongo":
		client, err := kit.OpenMongo(ctx, cfg.Store.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		closer := kit.CloserFunc(func() error { return client.Disconnect(context.Background()) })
		return cart.NewMongoStore(client.Database(cfg.Store.MongoDatabase)), []io.Closer{closer}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
