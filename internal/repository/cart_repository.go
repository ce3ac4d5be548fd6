package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stay-fcsd/ecommerce-api/internal/domain"
)

// CartRepository defines persistence access for shopping cart items.
type CartRepository interface {
	Upsert(ctx context.Context, item *domain.CartItem) error
	UpdateQuantity(ctx context.Context, id, userID string, quantity int) error
	Delete(ctx context.Context, id, userID string) error
	GetByIDAndUser(ctx context.Context, id, userID string) (*domain.CartItem, error)
	ListByUser(ctx context.Context, userID string) ([]domain.CartLine, error)
	ClearByUser(ctx context.Context, userID string) error
}

type cartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a Postgres-backed implementation.
func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return &cartRepository{pool: pool}
}

// Upsert inserts a cart row or, when the user already has the product in the
// cart, adds the requested quantity to the existing row.
func (r *cartRepository) Upsert(ctx context.Context, item *domain.CartItem) error {
	const query = `
        INSERT INTO cart_items (user_id, product_id, quantity)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, product_id)
        DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
        RETURNING id, quantity, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		item.UserID,
		item.ProductID,
		item.Quantity,
	).Scan(&item.ID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, id, userID string, quantity int) error {
	const query = `
        UPDATE cart_items SET quantity=$1, updated_at=NOW()
        WHERE id=$2 AND user_id=$3`

	cmd, err := r.pool.Exec(ctx, query, quantity, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, id, userID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *cartRepository) GetByIDAndUser(ctx context.Context, id, userID string) (*domain.CartItem, error) {
	const query = `
        SELECT id, user_id, product_id, quantity, created_at, updated_at
        FROM cart_items WHERE id=$1 AND user_id=$2`

	var item domain.CartItem
	if err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByUser returns cart lines joined with their products, newest first.
func (r *cartRepository) ListByUser(ctx context.Context, userID string) ([]domain.CartLine, error) {
	const query = `
        SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
               p.id, p.name, p.description, p.price_cents, p.stock, p.created_at, p.updated_at
        FROM cart_items ci
        JOIN products p ON p.id = ci.product_id
        WHERE ci.user_id=$1
        ORDER BY ci.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]domain.CartLine, 0)
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(
			&line.Item.ID,
			&line.Item.UserID,
			&line.Item.ProductID,
			&line.Item.Quantity,
			&line.Item.CreatedAt,
			&line.Item.UpdatedAt,
			&line.Product.ID,
			&line.Product.Name,
			&line.Product.Description,
			&line.Product.PriceCents,
			&line.Product.Stock,
			&line.Product.CreatedAt,
			&line.Product.UpdatedAt,
		); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *cartRepository) ClearByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
	return err
}
