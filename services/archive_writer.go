package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/queueapp/models"
	"github.com/yeremiapane/queueapp/utils"
)

// ArchiveResult describes a committed cleanup.
type ArchiveResult struct {
	RestaurantID string                `json:"restaurant_id"`
	Date         string                `json:"date"`
	Scheme       Scheme                `json:"scheme"`
	CleanupType  models.CleanupType    `json:"cleanup_type"`
	Summary      models.ArchiveSummary `json:"summary"`
	Parts        int                   `json:"parts"`
}

// SchemeWriter moves a restaurant's live queue into the archive and resets
// it in one store transaction. Failures leave the live queue untouched.
type SchemeWriter interface {
	Scheme() Scheme
	ArchiveAndReset(ctx context.Context, restaurantID, date string, cleanupType models.CleanupType, isManualOverride bool) (*ArchiveResult, error)
}

// stageFunc records entry in r or returns the parts to write alongside it.
type stageFunc func(r *models.Restaurant, entry models.ArchiveEntry) []models.ArchivePart

type writerBase struct {
	store RestaurantStore
	clock Clock
}

func (w writerBase) archiveAndReset(ctx context.Context, scheme Scheme, restaurantID, date string, cleanupType models.CleanupType, isManualOverride bool, stage stageFunc) (*ArchiveResult, error) {
	var result *ArchiveResult

	_, err := w.store.UpdateRestaurant(ctx, restaurantID, func(r *models.Restaurant) ([]models.ArchivePart, error) {
		// guards run on the state read inside the transaction
		if r.LastCleanupDate == date {
			return nil, models.ErrAlreadyCleaned
		}
		if r.Plan == models.PlanFree && !isManualOverride {
			return nil, models.ErrManualRequired
		}

		now := w.clock.Now()
		entry := BuildArchiveEntry(r.Queue, date, cleanupType, now)
		parts := stage(r, entry)

		r.ResetQueue()
		r.LastCleanupDate = date
		r.LastCleanupAt = &now

		result = &ArchiveResult{
			RestaurantID: restaurantID,
			Date:         date,
			Scheme:       scheme,
			CleanupType:  cleanupType,
			Summary:      entry.Summary,
			Parts:        len(parts),
		}
		if scheme == SchemeLegacy {
			result.Parts = 1
		}
		return parts, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// LegacyWriter stores the entry inline in the restaurant's archive map.
// Re-archiving a date replaces the previous entry.
type LegacyWriter struct {
	writerBase
}

func NewLegacyWriter(store RestaurantStore, clock Clock) *LegacyWriter {
	return &LegacyWriter{writerBase{store: store, clock: clock}}
}

func (w *LegacyWriter) Scheme() Scheme { return SchemeLegacy }

func (w *LegacyWriter) ArchiveAndReset(ctx context.Context, restaurantID, date string, cleanupType models.CleanupType, isManualOverride bool) (*ArchiveResult, error) {
	return w.archiveAndReset(ctx, SchemeLegacy, restaurantID, date, cleanupType, isManualOverride,
		func(r *models.Restaurant, entry models.ArchiveEntry) []models.ArchivePart {
			entries := r.ArchiveEntries()
			entries[entry.Date] = entry
			r.SetArchiveEntries(entries)
			return nil
		})
}

// ShardedWriter stores the entry as one or more documents in the archive
// collection, split by the Splitter.
type ShardedWriter struct {
	writerBase
	splitter Splitter
}

func NewShardedWriter(store RestaurantStore, splitter Splitter, clock Clock) *ShardedWriter {
	return &ShardedWriter{writerBase: writerBase{store: store, clock: clock}, splitter: splitter}
}

func (w *ShardedWriter) Scheme() Scheme { return SchemeSharded }

func (w *ShardedWriter) ArchiveAndReset(ctx context.Context, restaurantID, date string, cleanupType models.CleanupType, isManualOverride bool) (*ArchiveResult, error) {
	return w.archiveAndReset(ctx, SchemeSharded, restaurantID, date, cleanupType, isManualOverride,
		func(r *models.Restaurant, entry models.ArchiveEntry) []models.ArchivePart {
			return w.splitter.Plan(r.ID, r.Name, entry)
		})
}

// Archiver dispatches a cleanup to the writer of the date's scheme.
type Archiver struct {
	selector SchemeSelector
	writers  map[Scheme]SchemeWriter
	clock    Clock
	notifier Notifier
}

func NewArchiver(store RestaurantStore, selector SchemeSelector, splitter Splitter, clock Clock, notifier Notifier) *Archiver {
	return &Archiver{
		selector: selector,
		writers: map[Scheme]SchemeWriter{
			SchemeLegacy:  NewLegacyWriter(store, clock),
			SchemeSharded: NewShardedWriter(store, splitter, clock),
		},
		clock:    clock,
		notifier: orNoop(notifier),
	}
}

func (a *Archiver) Writer(date string) SchemeWriter {
	return a.writers[a.selector.Select(date)]
}

func (a *Archiver) ArchiveAndReset(ctx context.Context, restaurantID, date string, cleanupType models.CleanupType, isManualOverride bool) (*ArchiveResult, error) {
	writer := a.Writer(date)
	fields := logrus.Fields{
		"restaurant_id": restaurantID,
		"date":          date,
		"scheme":        writer.Scheme(),
		"cleanup_type":  cleanupType,
	}

	result, err := writer.ArchiveAndReset(ctx, restaurantID, date, cleanupType, isManualOverride)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrAlreadyCleaned), errors.Is(err, models.ErrManualRequired):
		utils.InfoLogger.WithFields(fields).Debugf("cleanup skipped: %v", err)
		return nil, err
	case errors.Is(err, models.ErrNotFound):
		return nil, err
	default:
		utils.ErrorLogger.WithFields(fields).Errorf("cleanup failed: %v", err)
		return nil, fmt.Errorf("failed to archive queue: %w", err)
	}

	utils.InfoLogger.WithFields(fields).Infof("archived %d customers in %d part(s)", result.Summary.TotalCustomers, result.Parts)
	a.notifier.Notify(restaurantID, EventQueueArchived, result)
	return result, nil
}

// CleanupToday archives under the clock's current calendar day.
func (a *Archiver) CleanupToday(ctx context.Context, restaurantID string, cleanupType models.CleanupType, isManualOverride bool) (*ArchiveResult, error) {
	return a.ArchiveAndReset(ctx, restaurantID, Today(a.clock), cleanupType, isManualOverride)
}
