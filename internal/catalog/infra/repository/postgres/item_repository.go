package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cristianortiz/sneakerbid/internal/catalog/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ItemRepository reads the sneakers table
type ItemRepository struct {
	db *pgxpool.Pool
}

func NewItemRepository(db *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	query := `SELECT id, title, price, condition, is_approved FROM sneakers WHERE id = $1`

	item := &domain.Item{}
	err := r.db.QueryRow(ctx, query, id).Scan(&item.ID, &item.Title, &item.Price, &item.Condition, &item.IsApproved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("item repository: get %s: %w", id, err)
	}
	return item, nil
}
