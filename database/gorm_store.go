package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/queueapp/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps restaurants and sharded archive parts in a SQL database.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) CreateRestaurant(ctx context.Context, r *models.Restaurant) error {
	if err := s.DB.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("failed to create restaurant: %w", err)
	}
	return nil
}

func (s *GormStore) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := s.DB.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch restaurant: %w", err)
	}
	return &r, nil
}

func (s *GormStore) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	if err := s.DB.WithContext(ctx).Order("created_at ASC").Find(&restaurants).Error; err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	return restaurants, nil
}

func (s *GormStore) ArchiveParts(ctx context.Context, restaurantID string) ([]models.ArchivePart, error) {
	var parts []models.ArchivePart
	err := s.DB.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("date ASC, part_number ASC").
		Find(&parts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch archive parts: %w", err)
	}
	return parts, nil
}

// UpdateRestaurant locks the restaurant row, applies fn and saves the row and
// the staged parts in one transaction. Any error rolls everything back.
func (s *GormStore) UpdateRestaurant(ctx context.Context, id string, fn models.UpdateFunc) (*models.Restaurant, error) {
	tx := s.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	var r models.Restaurant
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&r, "id = ?", id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock restaurant: %w", err)
	}

	parts, err := fn(&r)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if len(parts) > 0 {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&parts).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to write archive parts: %w", err)
		}
	}

	if err := tx.Save(&r).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to save restaurant: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &r, nil
}

// PutSnapshot upserts a state committed elsewhere.
func (s *GormStore) PutSnapshot(ctx context.Context, r *models.Restaurant, parts []models.ArchivePart) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(parts) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&parts).Error; err != nil {
				return fmt.Errorf("failed to write archive parts: %w", err)
			}
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(r).Error; err != nil {
			return fmt.Errorf("failed to save restaurant: %w", err)
		}
		return nil
	})
}
