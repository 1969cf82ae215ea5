package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"herbar/client/internal/kv"
)

// DefaultKey is the key holding the JSON array of favorite ids.
const DefaultKey = "herbar:favorites"

// Repository persists favorite ids as one JSON array under one key.
type Repository struct {
	store  kv.Store
	key    string
	logger *slog.Logger
}

func NewRepository(store kv.Store, key string, logger *slog.Logger) *Repository {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{store: store, key: key, logger: logger}
}

// Load returns the stored ids. Content that is not a JSON array of integers
// is discarded: the key is deleted and an empty list returned.
func (r *Repository) Load(ctx context.Context) ([]int, error) {
	raw, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("read favorites: %w", err)
	}
	if !ok {
		return []int{}, nil
	}
	var ids []int
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		r.logger.Warn("discarding corrupt favorites", "key", r.key, "err", err)
		if delErr := r.store.Delete(ctx, r.key); delErr != nil {
			return nil, fmt.Errorf("discard corrupt favorites: %w", delErr)
		}
		return []int{}, nil
	}
	return Normalize(ids), nil
}

// Save replaces the stored ids.
func (r *Repository) Save(ctx context.Context, ids []int) error {
	data, err := json.Marshal(Normalize(ids))
	if err != nil {
		return fmt.Errorf("marshal favorites: %w", err)
	}
	if err := r.store.Set(ctx, r.key, string(data)); err != nil {
		return fmt.Errorf("write favorites: %w", err)
	}
	return nil
}

// Add stores id once and returns the resulting ids.
func (r *Repository) Add(ctx context.Context, id int) ([]int, error) {
	ids, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	ids = Normalize(append(ids, id))
	if err := r.Save(ctx, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Remove drops id and returns the resulting ids.
func (r *Repository) Remove(ctx context.Context, id int) ([]int, error) {
	ids, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	kept := ids[:0]
	for _, existing := range ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	if err := r.Save(ctx, kept); err != nil {
		return nil, err
	}
	return kept, nil
}
