// Package product holds the catalog: the Product model, input validation,
// the sparse update patch, and the Repository implementations over Postgres
// (pgx) and GORM.
package product

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const defaultQueryTimeout = 5 * time.Second

const selectColumns = `id, name, description, price::text, unit, category, emoji, stock_quantity, created_at, updated_at`

// Query filters List. An empty Category lists every category.
type Query struct {
	Category string
}

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, q Query) ([]Product, error)
	Update(ctx context.Context, id int64, patch Patch) (*Product, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Related(ctx context.Context, p *Product, limit int) ([]Product, error)
	Ping(ctx context.Context) error
}

// Seeder is what Seed needs from a store.
type Seeder interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, p *Product) error
}

type PGRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPGRepo(db *pgxpool.Pool, timeout time.Duration) *PGRepo {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &PGRepo{db: db, timeout: timeout}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var (
		p     Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Unit, &p.Category,
		&p.Emoji, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	p.Price = d
	return &p, nil
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		INSERT INTO products (name, description, price, unit, category, emoji, stock_quantity)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+selectColumns,
		p.Name, p.Description, p.Price.String(), p.Unit, p.Category, p.Emoji, p.StockQuantity)
	created, err := scanProduct(row)
	if err != nil {
		return storageErr("create product", err)
	}
	*p = *created
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM products WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("get product", err)
	}
	return p, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+selectColumns+`
		FROM products
		WHERE stock_quantity > 0 AND ($1 = '' OR category = $1)
		ORDER BY category, name
	`, q.Category)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	return collect(rows, "list products")
}

func (r *PGRepo) Related(ctx context.Context, p *Product, limit int) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+selectColumns+`
		FROM products
		WHERE category = $1 AND id <> $2 AND stock_quantity > 0
		ORDER BY name
		LIMIT $3
	`, p.Category, p.ID, limit)
	if err != nil {
		return nil, storageErr("related products", err)
	}
	return collect(rows, "related products")
}

func collect(rows pgx.Rows, op string) ([]Product, error) {
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return out, nil
}

func (r *PGRepo) Update(ctx context.Context, id int64, patch Patch) (*Product, error) {
	if patch.Empty() {
		return nil, invalid("No fields to update")
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	q, args := patch.UpdateSQL(id, time.Now().UTC())
	p, err := scanProduct(r.db.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("update product", err)
	}
	return p, nil
}

func (r *PGRepo) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return false, storageErr("delete product", err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, storageErr("count products", err)
	}
	return n, nil
}

func (r *PGRepo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.db.Ping(ctx)
}
