package shipping

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/apperr"
)

type Rule struct {
	ID       string `json:"id"`
	District string `json:"district"`
	Charge   int    `json:"charge"`
}

type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	List(ctx context.Context) ([]Rule, error)
	Create(ctx context.Context, r Rule) error
	Update(ctx context.Context, r Rule) error
	Delete(ctx context.Context, id string) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Rule, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, district, charge FROM shipping_rules ORDER BY district`)
	if err != nil {
		return nil, fmt.Errorf("select shipping rules: %w", err)
	}
	defer rows.Close()

	rules := []Rule{}
	for rows.Next() {
		var rule Rule
		if err := rows.Scan(&rule.ID, &rule.District, &rule.Charge); err != nil {
			return nil, fmt.Errorf("scan shipping rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return rules, nil
}

func (r *PostgresRepository) Create(ctx context.Context, rule Rule) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO shipping_rules (id, district, charge)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, rule.ID, rule.District, rule.Charge)
	if err != nil {
		return fmt.Errorf("insert shipping rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict(fmt.Sprintf("A shipping rule for %q already exists.", rule.District))
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, rule Rule) error {
	tag, err := r.pool.Exec(ctx, `UPDATE shipping_rules SET district=$2, charge=$3 WHERE id=$1`, rule.ID, rule.District, rule.Charge)
	if err != nil {
		return fmt.Errorf("update shipping rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM shipping_rules WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete shipping rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
