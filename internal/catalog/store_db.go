package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"
)

const (
	pingTimeout     = 1 * time.Second
	queryTimeout    = 3 * time.Second
	MigrationsTable = "catalog_schema_migrations"

	productColumns = `id, name, description, price, original_price, category, brand,
		quantity, rating, reviews, image_url, created_at, updated_at`
)

//go:embed migrations/*.sql
var Migrations embed.FS

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

func (s *PostgresStore) List(ctx context.Context) ([]Product, error) {
	var out []Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT `+productColumns+`
			FROM products
			ORDER BY created_at ASC, id ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Product, 0, 16)
		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, storageErr("list products", err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Product, error) {
	var p Product
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var err error
		p, err = scanProduct(s.db.QueryRowContext(ctx, `
			SELECT `+productColumns+`
			FROM products
			WHERE id = $1
		`, id))
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, storageErr("get product", err)
	}
	return p, nil
}

func (s *PostgresStore) Create(ctx context.Context, p Product) error {
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO products (`+productColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, p.ID, p.Name, p.Description, p.Price, nullFloat(p.OriginalPrice), p.Category, p.Brand,
			p.Quantity, p.Rating, p.Reviews, p.ImageURL, p.CreatedAt, p.UpdatedAt)
		return err
	})
	if err != nil {
		return storageErr("create product", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, p Product) error {
	var n int64
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, `
			UPDATE products
			SET name = $2, description = $3, price = $4, original_price = $5, category = $6,
				brand = $7, quantity = $8, rating = $9, reviews = $10, image_url = $11, updated_at = $12
			WHERE id = $1
		`, p.ID, p.Name, p.Description, p.Price, nullFloat(p.OriginalPrice), p.Category,
			p.Brand, p.Quantity, p.Rating, p.Reviews, p.ImageURL, p.UpdatedAt)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return storageErr("update product", err)
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	var n int64
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return storageErr("delete product", err)
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var (
		p    Product
		orig sql.NullFloat64
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &orig, &p.Category, &p.Brand,
		&p.Quantity, &p.Rating, &p.Reviews, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	if orig.Valid {
		p.OriginalPrice = &orig.Float64
	}
	return p, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
