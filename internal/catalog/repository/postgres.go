package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"thryft-club/internal/catalog"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const healthCheckTimeout = 2 * time.Second

// PostgresRepository reads a catalog snapshot from Postgres. Rows are returned
// in their stored position order so the filter sees the same ordering as the
// seed it was loaded from.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *PostgresRepository) Snapshot(ctx context.Context) (catalog.Seed, error) {
	return snapshot(ctx, r.db)
}

// Load reads a snapshot and the product row count in one read-only
// transaction and fails when they disagree, so the service never starts on a
// partial catalog.
func (r *PostgresRepository) Load(ctx context.Context) (catalog.Seed, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return catalog.Seed{}, fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	seed, err := snapshot(ctx, tx)
	if err != nil {
		return catalog.Seed{}, err
	}
	total, err := count(ctx, tx)
	if err != nil {
		return catalog.Seed{}, err
	}
	if err := checkComplete(seed, total); err != nil {
		return catalog.Seed{}, err
	}

	if err := tx.Commit(); err != nil {
		return catalog.Seed{}, fmt.Errorf("commit snapshot tx: %w", err)
	}
	return seed, nil
}

func checkComplete(seed catalog.Seed, total int64) error {
	if int64(len(seed.Products)) != total {
		return fmt.Errorf("%w: snapshot has %d products, table has %d",
			catalog.ErrInvalidCatalog, len(seed.Products), total)
	}
	return nil
}

func snapshot(ctx context.Context, q queryer) (catalog.Seed, error) {
	products, err := queryProducts(ctx, q)
	if err != nil {
		return catalog.Seed{}, err
	}
	categories, err := queryCategories(ctx, q)
	if err != nil {
		return catalog.Seed{}, err
	}
	return catalog.Seed{Products: products, Categories: categories}, nil
}

func queryProducts(ctx context.Context, q queryer) ([]catalog.Product, error) {
	query := `
		SELECT id, title, price, original_price, image, category, condition, location,
		       description, seller_name, seller_avatar, seller_rating, images, created_at, is_favorite
		FROM products
		ORDER BY position
	`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	list := make([]catalog.Product, 0)
	for rows.Next() {
		var (
			p             catalog.Product
			originalPrice decimal.NullDecimal
			description   sql.NullString
			images        pq.StringArray
		)
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Price, &originalPrice, &p.Image, &p.Category, &p.Condition, &p.Location,
			&description, &p.Seller.Name, &p.Seller.Avatar, &p.Seller.Rating, &images, &p.CreatedAt, &p.IsFavorite,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if originalPrice.Valid {
			op := originalPrice.Decimal
			p.OriginalPrice = &op
		}
		p.Description = description.String
		p.Images = []string(images)
		list = append(list, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return list, nil
}

func queryCategories(ctx context.Context, q queryer) ([]catalog.Category, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, icon, count FROM categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	list := make([]catalog.Category, 0)
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return list, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.db)
}

func count(ctx context.Context, q queryer) (int64, error) {
	var total int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

func (r *PostgresRepository) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	return r.db.PingContext(ctx)
}
