package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/apperr"
)

const uniqueViolation = "23505"

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, c Category) error
	UpdateCategory(ctx context.Context, currentID string, c Category) error
	DeleteCategory(ctx context.Context, id string) error

	ListProducts(ctx context.Context, categoryID string) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	CreateProduct(ctx context.Context, p *Product) error
	SetStock(ctx context.Context, id string, stock int) error
	LowStock(ctx context.Context, threshold int) ([]Product, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, c.description, c.image, COUNT(p.id)::int
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id, c.name, c.description, c.image, c.created_at
		ORDER BY c.created_at, c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Image, &c.ProductCount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, c Category) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO categories (id, name, description, image)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, c.ID, c.Name, c.Description, c.Image)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("Slug must be unique.")
	}
	return nil
}

// UpdateCategory rewrites a category and, when its slug changes, moves its products along with it.
func (r *PostgresRepository) UpdateCategory(ctx context.Context, currentID string, c Category) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE categories
		SET id=$2, name=$3, description=$4, image=$5
		WHERE id=$1
	`, currentID, c.ID, c.Name, c.Description, c.Image)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperr.Conflict("Slug must be unique.")
		}
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}

	if c.ID != currentID {
		if _, err := tx.Exec(ctx, `UPDATE products SET category_id=$2, updated_at=now() WHERE category_id=$1`, currentID, c.ID); err != nil {
			return fmt.Errorf("move products: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteCategory(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

const productColumns = `id, name, highlights, description, size_guide, size, price, stock,
		category_id, image, gallery, created_by, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Highlights, &p.Description, &p.SizeGuide, &p.Size, &p.Price, &p.Stock,
		&p.CategoryID, &p.Image, &p.Gallery, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PostgresRepository) ListProducts(ctx context.Context, categoryID string) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE ($1 = '' OR category_id = $1)
		ORDER BY created_at DESC, id
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	return collectProducts(rows)
}

func (r *PostgresRepository) GetProduct(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, apperr.ErrNotFound
		}
		return Product{}, fmt.Errorf("select product: %w", err)
	}
	return p, nil
}

// CreateProduct inserts p and reads back the stored price and timestamps.
func (r *PostgresRepository) CreateProduct(ctx context.Context, p *Product) error {
	if p.Gallery == nil {
		p.Gallery = []string{}
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (id, name, highlights, description, size_guide, size, price, stock,
			category_id, image, gallery, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING price, created_at, updated_at
	`, p.ID, p.Name, p.Highlights, p.Description, p.SizeGuide, p.Size, p.Price, p.Stock,
		p.CategoryID, p.Image, p.Gallery, p.CreatedBy).Scan(&p.Price, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetStock(ctx context.Context, id string, stock int) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET stock=$2, updated_at=now() WHERE id=$1`, id, stock)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) LowStock(ctx context.Context, threshold int) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE stock <= $1
		ORDER BY stock, name
	`, threshold)
	if err != nil {
		return nil, fmt.Errorf("select low stock: %w", err)
	}
	return collectProducts(rows)
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
