package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queueapp/models"
)

// Several business days straddling the scheme cutover: every customer must
// come back exactly once, with the source of the day they were archived in.
func TestContinuity_AcrossCutover(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	// registration marks its own day as cleaned
	clock := newTestClock("2025-12-29T10:00:00Z")
	queue := newTestQueueService(store, clock, nil, 0)
	archiver := newTestArchiver(store, clock, nil)
	reader := NewArchiveReader(store, NewSchemeSelector("2026-01"))
	analytics := NewAnalyticsService(store, reader, NewAggregator(clock.Now().Location()))

	r, err := queue.RegisterRestaurant(ctx, RegisterRequest{Name: "Spice Garden"})
	require.NoError(t, err)

	days := []struct {
		date    string
		guests  []string
		seat    bool
		cleanup bool
	}{
		{"2025-12-30", []string{"Asha", "Bilal"}, true, true},
		{"2025-12-31", []string{"Chen"}, false, true},
		{"2026-01-01", []string{"Dev", "Esha"}, true, true},
		{"2026-01-02", []string{"Farid"}, false, false},
	}
	for _, day := range days {
		clock.Set(day.date + "T12:00:00Z")
		var first string
		for i, name := range day.guests {
			res, err := queue.Join(ctx, r.ID, joinReq(name, "90"+name, 2))
			require.NoError(t, err)
			if i == 0 {
				first = res.Customer.QueueNumber
			}
		}
		if day.seat {
			clock.Set(day.date + "T12:15:00Z")
			_, err := queue.Allocate(ctx, r.ID, first, "T1")
			require.NoError(t, err)
		}
		if day.cleanup {
			clock.Set(day.date + "T23:30:00Z")
			_, err := archiver.CleanupToday(ctx, r.ID, models.CleanupManual, true)
			require.NoError(t, err)
		}
	}

	_, records, partial, err := analytics.History(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, partial)

	var names []string
	sources := map[string]Source{}
	for _, rec := range records {
		names = append(names, rec.Name)
		sources[rec.Name] = rec.Source
	}
	assert.Equal(t, []string{"Asha", "Bilal", "Chen", "Dev", "Esha", "Farid"}, names)
	assert.Equal(t, map[string]Source{
		"Asha":  SourceLegacy,
		"Bilal": SourceLegacy,
		"Chen":  SourceLegacy,
		"Dev":   SourceSharded,
		"Esha":  SourceSharded,
		"Farid": SourceLive,
	}, sources)

	report, err := analytics.Report(ctx, r.ID, Filter{DateFrom: "2025-12-30", DateTo: "2026-01-01"})
	require.NoError(t, err)
	assert.Equal(t, 5, report.Stats.TotalCustomers)
	assert.Equal(t, models.Some(15), report.Stats.AvgWaitMinutes)
	assert.Equal(t, "12-13PM", report.Stats.PeakHourWindow)

	got, err := store.GetRestaurant(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, got.MonthlyHistory, 1)
	assert.Equal(t, 3, got.MonthlyHistory[0].TotalCustomers)
	assert.Equal(t, 3, got.UsageData().CustomersThisMonth)
}

func TestContinuity_ConcurrentJoins(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewQueueService(store, newTestClock("2026-02-10T12:00:00Z"), nil, 0)
	r := seedRestaurant(t, store, models.PlanFree, "2026-02-10")

	const joins = 20
	var wg sync.WaitGroup
	errs := make(chan error, joins)
	for i := 0; i < joins; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Join(ctx, r.ID, joinReq("Guest", "900", 1))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := store.GetRestaurant(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, got.Queue, joins)
	seen := map[string]bool{}
	for _, c := range got.Queue {
		assert.False(t, seen[c.QueueNumber], "duplicate %s", c.QueueNumber)
		seen[c.QueueNumber] = true
	}
	assert.Equal(t, joins, got.UsageData().CustomersThisMonth)
}
