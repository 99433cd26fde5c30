package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/homebound/internal/models"
)

// HomeKey is the store key of the saved home place.
const HomeKey = "@home_location"

// ErrPersistenceFailure wraps every failure to save or load the home place.
var ErrPersistenceFailure = errors.New("failed to persist home location")

// HomeRepository stores the single saved home place as JSON.
type HomeRepository struct {
	store Store
	log   *slog.Logger
}

// NewHomeRepository creates a HomeRepository backed by store.
func NewHomeRepository(store Store, log *slog.Logger) *HomeRepository {
	return &HomeRepository{store: store, log: log}
}

// Save replaces the saved home with place.
func (r *HomeRepository) Save(ctx context.Context, place models.Place) error {
	data, err := json.Marshal(place)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrPersistenceFailure, err)
	}

	if err = r.store.Set(ctx, HomeKey, data); err != nil {
		r.log.ErrorContext(ctx, "Failed to save home location", "error", err)
		return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}

	r.log.InfoContext(ctx, "Home location saved", "name", place.Name)
	return nil
}

// Load returns the saved home, or nil when none was saved.
func (r *HomeRepository) Load(ctx context.Context) (*models.Place, error) {
	data, err := r.store.Get(ctx, HomeKey)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to load home location", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	if data == nil {
		return nil, nil
	}

	var place models.Place
	if err = json.Unmarshal(data, &place); err != nil {
		r.log.ErrorContext(ctx, "Saved home location is corrupted", "error", err)
		return nil, fmt.Errorf("%w: decode: %w", ErrPersistenceFailure, err)
	}

	return &place, nil
}
