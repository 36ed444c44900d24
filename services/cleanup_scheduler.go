package services

import (
	"context"
	"errors"
	"time"

	"github.com/yeremiapane/queueapp/models"
	"github.com/yeremiapane/queueapp/utils"
)

// CleanupScheduler archives the queues of premium restaurants once per day.
// Free restaurants are left to their owners.
type CleanupScheduler struct {
	Store    RestaurantStore
	Archiver *Archiver
	Clock    Clock
	Interval time.Duration
	StopChan chan struct{}
}

// CleanupRun counts what one pass did.
type CleanupRun struct {
	Checked  int `json:"checked"`
	Archived int `json:"archived"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

func NewCleanupScheduler(store RestaurantStore, archiver *Archiver, clock Clock, interval time.Duration) *CleanupScheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &CleanupScheduler{
		Store:    store,
		Archiver: archiver,
		Clock:    clock,
		Interval: interval,
		StopChan: make(chan struct{}),
	}
}

func (cs *CleanupScheduler) Start() {
	go func() {
		ticker := time.NewTicker(cs.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				run, err := cs.RunOnce(context.Background())
				if err != nil {
					utils.ErrorLogger.Printf("Auto cleanup pass failed: %v", err)
					continue
				}
				if run.Archived > 0 || run.Failed > 0 {
					utils.InfoLogger.Printf("Auto cleanup: %d archived, %d failed of %d checked", run.Archived, run.Failed, run.Checked)
				}
			case <-cs.StopChan:
				return
			}
		}
	}()
}

func (cs *CleanupScheduler) Stop() {
	close(cs.StopChan)
}

// RunOnce auto-cleans every premium-active restaurant not yet cleaned today.
// A failure on one restaurant does not stop the pass.
func (cs *CleanupScheduler) RunOnce(ctx context.Context) (CleanupRun, error) {
	var run CleanupRun

	restaurants, err := cs.Store.ListRestaurants(ctx)
	if err != nil {
		return run, err
	}

	now := cs.Clock.Now()
	today := now.Format(DateLayout)
	for i := range restaurants {
		r := &restaurants[i]
		run.Checked++
		if !r.IsPremiumActive(now) || r.LastCleanupDate == today {
			run.Skipped++
			continue
		}

		_, err := cs.Archiver.ArchiveAndReset(ctx, r.ID, today, models.CleanupAuto, false)
		switch {
		case err == nil:
			run.Archived++
		case errors.Is(err, models.ErrAlreadyCleaned), errors.Is(err, models.ErrManualRequired):
			run.Skipped++
		default:
			run.Failed++
			utils.ErrorLogger.Printf("Auto cleanup failed for restaurant %s: %v", r.ID, err)
		}
	}
	return run, nil
}
