package services

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/queueapp/models"
	"github.com/yeremiapane/queueapp/utils"
)

// ReplicatedStore writes through a primary store and copies every committed
// state to a mirror. When the primary itself fails, operations are served by
// the mirror so joins keep working while the database is unreachable.
// Restaurants written to the mirror during an outage are copied back to the
// primary before the primary serves them again.
type ReplicatedStore struct {
	primary MirrorStore
	mirror  MirrorStore

	mu sync.Mutex
	// diverged counts mirror-only writes per restaurant since the last restore.
	diverged map[string]uint64
}

func NewReplicatedStore(primary, mirror MirrorStore) *ReplicatedStore {
	return &ReplicatedStore{
		primary:  primary,
		mirror:   mirror,
		diverged: make(map[string]uint64),
	}
}

func (s *ReplicatedStore) CreateRestaurant(ctx context.Context, r *models.Restaurant) error {
	if err := s.primary.CreateRestaurant(ctx, r); err != nil {
		s.logFallback("create", r.ID, err)
		if err := s.mirror.CreateRestaurant(ctx, r); err != nil {
			return err
		}
		s.markDiverged(r.ID)
		return nil
	}
	s.replicate(ctx, r, nil)
	return nil
}

func (s *ReplicatedStore) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	if err := s.restore(ctx, id); err != nil {
		s.logFallback("restore", id, err)
		return s.mirror.GetRestaurant(ctx, id)
	}
	r, err := s.primary.GetRestaurant(ctx, id)
	if err == nil || errors.Is(err, models.ErrNotFound) {
		return r, err
	}
	s.logFallback("get", id, err)
	return s.mirror.GetRestaurant(ctx, id)
}

func (s *ReplicatedStore) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	for _, id := range s.divergedIDs() {
		if err := s.restore(ctx, id); err != nil {
			s.logFallback("restore", id, err)
			return s.mirror.ListRestaurants(ctx)
		}
	}
	list, err := s.primary.ListRestaurants(ctx)
	if err == nil {
		return list, nil
	}
	s.logFallback("list", "", err)
	return s.mirror.ListRestaurants(ctx)
}

func (s *ReplicatedStore) ArchiveParts(ctx context.Context, restaurantID string) ([]models.ArchivePart, error) {
	if err := s.restore(ctx, restaurantID); err != nil {
		s.logFallback("restore", restaurantID, err)
		return s.mirror.ArchiveParts(ctx, restaurantID)
	}
	parts, err := s.primary.ArchiveParts(ctx, restaurantID)
	if err == nil {
		return parts, nil
	}
	s.logFallback("archive parts", restaurantID, err)
	return s.mirror.ArchiveParts(ctx, restaurantID)
}

// UpdateRestaurant only falls back when the primary store failed. Errors
// returned by fn are domain outcomes and are passed through.
func (s *ReplicatedStore) UpdateRestaurant(ctx context.Context, id string, fn models.UpdateFunc) (*models.Restaurant, error) {
	if err := s.restore(ctx, id); err != nil {
		s.logFallback("restore", id, err)
		return s.updateMirror(ctx, id, fn)
	}

	var fnErr error
	var staged []models.ArchivePart
	r, err := s.primary.UpdateRestaurant(ctx, id, func(r *models.Restaurant) ([]models.ArchivePart, error) {
		parts, err := fn(r)
		fnErr = err
		staged = parts
		return parts, err
	})
	if err == nil {
		s.replicate(ctx, r, staged)
		return r, nil
	}
	if fnErr != nil || errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	s.logFallback("update", id, err)
	return s.updateMirror(ctx, id, fn)
}

func (s *ReplicatedStore) updateMirror(ctx context.Context, id string, fn models.UpdateFunc) (*models.Restaurant, error) {
	r, err := s.mirror.UpdateRestaurant(ctx, id, fn)
	if err != nil {
		return nil, err
	}
	s.markDiverged(id)
	return r, nil
}

// restore copies the mirror's state of a diverged restaurant, parts
// included, back to the primary. It is a no-op for restaurants the mirror
// never served alone.
func (s *ReplicatedStore) restore(ctx context.Context, id string) error {
	gen, ok := s.divergedGen(id)
	if !ok {
		return nil
	}
	r, err := s.mirror.GetRestaurant(ctx, id)
	if err != nil {
		return err
	}
	parts, err := s.mirror.ArchiveParts(ctx, id)
	if err != nil {
		return err
	}
	if err := s.primary.PutSnapshot(ctx, r, parts); err != nil {
		return err
	}

	s.mu.Lock()
	if s.diverged[id] == gen {
		delete(s.diverged, id)
	}
	s.mu.Unlock()
	utils.InfoLogger.WithField("restaurant_id", id).Infof("restored %d archive parts from mirror", len(parts))
	return nil
}

func (s *ReplicatedStore) replicate(ctx context.Context, r *models.Restaurant, parts []models.ArchivePart) {
	if current, err := s.mirror.GetRestaurant(ctx, r.ID); err == nil && current.UpdatedAt.After(r.UpdatedAt) {
		utils.ErrorLogger.WithField("restaurant_id", r.ID).Warn("mirror holds a newer state, not overwriting")
		return
	}
	if err := s.mirror.PutSnapshot(ctx, r, parts); err != nil {
		utils.ErrorLogger.WithField("restaurant_id", r.ID).Warnf("mirror write failed: %v", err)
	}
}

func (s *ReplicatedStore) markDiverged(id string) {
	s.mu.Lock()
	s.diverged[id]++
	s.mu.Unlock()
}

func (s *ReplicatedStore) divergedGen(id string) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen, ok := s.diverged[id]
	return gen, ok
}

func (s *ReplicatedStore) divergedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.diverged))
	for id := range s.diverged {
		ids = append(ids, id)
	}
	return ids
}

func (s *ReplicatedStore) logFallback(op, id string, err error) {
	utils.ErrorLogger.WithFields(logrus.Fields{
		"op":            op,
		"restaurant_id": id,
	}).Warnf("primary store failed, using mirror: %v", err)
}
