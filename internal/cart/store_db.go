package cart

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"time"
)

const (
	pingTimeout     = 1 * time.Second
	queryTimeout    = 3 * time.Second
	MigrationsTable = "cart_schema_migrations"
)

//go:embed migrations/*.sql
var Migrations embed.FS

// PostgresStore keeps each cart as one row with its line items in a JSONB
// column, mirroring the single-document shape.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (Cart, bool, error) {
	var (
		c   = Cart{UserID: userID}
		raw []byte
	)

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT items, version, created_at, updated_at
			FROM carts
			WHERE user_id = $1
		`, userID).Scan(&raw, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Cart{}, false, nil
	}
	if err != nil {
		return Cart{}, false, err
	}

	if err := json.Unmarshal(raw, &c.Items); err != nil {
		return Cart{}, false, err
	}
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	return c, true, nil
}

func (s *PostgresStore) Save(ctx context.Context, c Cart, expectedVersion int64) error {
	items, err := json.Marshal(c.Items)
	if err != nil {
		return err
	}

	var n int64
	err = withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var (
			res sql.Result
			err error
		)
		if expectedVersion == 0 {
			res, err = s.db.ExecContext(ctx, `
				INSERT INTO carts (user_id, items, version, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (user_id) DO NOTHING
			`, c.UserID, string(items), c.Version, c.CreatedAt, c.UpdatedAt)
		} else {
			res, err = s.db.ExecContext(ctx, `
				UPDATE carts
				SET items = $2, version = $3, updated_at = $4
				WHERE user_id = $1 AND version = $5
			`, c.UserID, string(items), c.Version, c.UpdatedAt, expectedVersion)
		}
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
