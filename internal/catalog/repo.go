package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates the requested product does not exist or is inactive.
var ErrNotFound = errors.New("product not found")

// Product is a printed card design offered by the storefront. BasePrice is
// the per-card price before option multipliers and surcharges.
type Product struct {
	ID          string          `json:"id"`
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ListFilter captures product list filters.
type ListFilter struct {
	Query    string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
	Page     int
	Limit    int
}

// Repo reads products from Postgres.
type Repo struct {
	Pool *pgxpool.Pool
}

const productColumns = `id, slug, name, description, category, base_price::text, active, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p     Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.Category, &price, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Product{}, err
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return Product{}, fmt.Errorf("parse base price %q: %w", price, err)
	}
	p.BasePrice = parsed
	return p, nil
}

// List returns active products matching the filter plus the total count.
func (r *Repo) List(ctx context.Context, f ListFilter) ([]Product, int64, error) {
	if r == nil || r.Pool == nil {
		return nil, 0, errors.New("catalog repo not configured")
	}
	where := []string{"active = TRUE"}
	args := []any{}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+strings.ToLower(q)+"%")
		where = append(where, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(description) LIKE $%d)", len(args), len(args)))
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		args = append(args, c)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.MinPrice != nil {
		args = append(args, f.MinPrice.String())
		where = append(where, fmt.Sprintf("base_price >= $%d::numeric", len(args)))
	}
	if f.MaxPrice != nil {
		args = append(args, f.MaxPrice.String())
		where = append(where, fmt.Sprintf("base_price <= $%d::numeric", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM products WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	order := "created_at DESC"
	switch f.Sort {
	case "price_asc":
		order = "base_price ASC, created_at DESC"
	case "price_desc":
		order = "base_price DESC, created_at DESC"
	case "name":
		order = "name ASC"
	}
	limit := f.Limit
	if limit < 1 {
		limit = 20
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf("SELECT %s FROM products WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d",
		productColumns, cond, order, len(args)-1, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	items := make([]Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate products: %w", err)
	}
	return items, total, nil
}

// GetBySlug loads one active product by slug.
func (r *Repo) GetBySlug(ctx context.Context, slug string) (Product, error) {
	if r == nil || r.Pool == nil {
		return Product{}, errors.New("catalog repo not configured")
	}
	row := r.Pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE slug = $1 AND active = TRUE", slug)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product %s: %w", slug, err)
	}
	return p, nil
}

// GetByID loads one active product by id. A malformed id is treated as not
// found rather than surfacing a cast error from Postgres.
func (r *Repo) GetByID(ctx context.Context, id string) (Product, error) {
	if r == nil || r.Pool == nil {
		return Product{}, errors.New("catalog repo not configured")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Product{}, ErrNotFound
	}
	row := r.Pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1 AND active = TRUE", id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}
