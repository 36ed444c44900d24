package services

import (
	"context"

	"github.com/yeremiapane/queueapp/models"
)

// ArchivePartReader queries the sharded archive collection by restaurant.
type ArchivePartReader interface {
	ArchiveParts(ctx context.Context, restaurantID string) ([]models.ArchivePart, error)
}

// RestaurantStore is the transactional document store behind every service.
// UpdateRestaurant must run fn and persist the restaurant plus any returned
// archive parts atomically, serialized against other updates of the same
// restaurant; conflict retries belong to the implementation.
type RestaurantStore interface {
	ArchivePartReader
	CreateRestaurant(ctx context.Context, r *models.Restaurant) error
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	UpdateRestaurant(ctx context.Context, id string, fn models.UpdateFunc) (*models.Restaurant, error)
}

// MirrorStore is a secondary store that can also accept a committed snapshot
// from the primary.
type MirrorStore interface {
	RestaurantStore
	PutSnapshot(ctx context.Context, r *models.Restaurant, parts []models.ArchivePart) error
}
