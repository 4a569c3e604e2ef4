package memory

import (
	"context"
	"sync"

	"github.com/cristianortiz/sneakerbid/internal/catalog/domain"
	"github.com/google/uuid"
)

type ItemRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]domain.Item
}

func NewItemRepository(items ...domain.Item) *ItemRepository {
	r := &ItemRepository{items: make(map[uuid.UUID]domain.Item, len(items))}
	for _, i := range items {
		r.Put(i)
	}
	return r
}

func (r *ItemRepository) Put(item domain.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
}

func (r *ItemRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return &item, nil
}
