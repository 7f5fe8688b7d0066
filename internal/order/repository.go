package order

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/apperr"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type Repository interface {
	List(ctx context.Context, f ListFilter) (Page, error)
	All(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id string) (Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Status, error)
	Delete(ctx context.Context, id string) error
	Place(ctx context.Context, o *Order) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const orderColumns = `id, customer, phone, address, district, status, subtotal, shipping, amount, created_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.Customer, &o.Phone, &o.Address, &o.District, &o.Status,
		&o.Subtotal, &o.Shipping, &o.Amount, &o.Date)
	return o, err
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) (Page, error) {
	f = f.normalized()
	page := Page{Page: f.Page, PageSize: f.PageSize}

	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*)::int FROM orders WHERE ($1 = '' OR status = $1)`, string(f.Status),
	).Scan(&page.Total); err != nil {
		return Page{}, fmt.Errorf("count orders: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, string(f.Status), f.PageSize, (f.Page-1)*f.PageSize)
	if err != nil {
		return Page{}, fmt.Errorf("select orders: %w", err)
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return Page{}, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return Page{}, err
	}
	page.Orders = orders
	return page, nil
}

// All returns every order, newest first, for the derived customer and dashboard views.
func (r *PostgresRepository) All(ctx context.Context) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, apperr.ErrNotFound
		}
		return Order{}, fmt.Errorf("select order: %w", err)
	}
	orders := []Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

// UpdateStatus sets the status and returns the one it replaced.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) (Status, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var previous Status
	if err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&previous); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.ErrNotFound
		}
		return "", fmt.Errorf("lock order: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, id, string(status)); err != nil {
		return "", fmt.Errorf("update status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return previous, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Place reserves stock for every item and stores the order in one transaction:
// - each product row is locked (SELECT ... FOR UPDATE)
// - if any line is short, nothing is written and a *StockError is returned
// - otherwise stock is decremented and the order and its items are inserted
func (r *PostgresRepository) Place(ctx context.Context, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := reserveWithTx(ctx, tx, o.Items); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders (id, customer, phone, address, district, status, subtotal, shipping, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, o.ID, o.Customer, o.Phone, o.Address, o.District, string(o.Status), o.Subtotal, o.Shipping, o.Amount, o.Date); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, line_no, product_id, name, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.NewString(), o.ID, i, it.ProductID, it.Name, it.Quantity, it.Price); err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// reserveWithTx locks product rows in id order so concurrent checkouts over the
// same products cannot deadlock. Depleted lines are reported in cart order.
func reserveWithTx(ctx context.Context, tx pgx.Tx, items []Item) error {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	sort.Strings(ids)

	available := make(map[string]int, len(ids))
	for _, id := range ids {
		if _, locked := available[id]; locked {
			continue
		}
		var stock int
		err := tx.QueryRow(ctx, `
			SELECT stock
			FROM products
			WHERE id=$1
			FOR UPDATE
		`, id).Scan(&stock)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("lock product %s: %w", id, err)
			}
			stock = 0
		}
		available[id] = stock
	}

	var depleted []DepletedLine
	for _, it := range items {
		if available[it.ProductID] < it.Quantity {
			depleted = append(depleted, DepletedLine{
				ProductID: it.ProductID,
				Name:      it.Name,
				Requested: it.Quantity,
				Available: available[it.ProductID],
			})
		}
	}
	if len(depleted) > 0 {
		return &StockError{Depleted: depleted}
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			UPDATE products
			SET stock = stock - $2, updated_at=now()
			WHERE id=$1
		`, it.ProductID, it.Quantity); err != nil {
			return fmt.Errorf("decrement stock %s: %w", it.ProductID, err)
		}
	}
	return nil
}

func (r *PostgresRepository) attachItems(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	byID := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = i
	}

	rows, err := r.pool.Query(ctx, `
		SELECT order_id, product_id, name, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, line_no
	`, ids)
	if err != nil {
		return fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var it Item
		if err := rows.Scan(&orderID, &it.ProductID, &it.Name, &it.Quantity, &it.Price); err != nil {
			return fmt.Errorf("scan order_item: %w", err)
		}
		if i, ok := byID[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows: %w", err)
	}
	return nil
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return orders, nil
}
