package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queueapp/models"
)

func live(records ...models.CustomerRecord) []HistoryRecord {
	out := make([]HistoryRecord, len(records))
	for i, c := range records {
		out[i] = HistoryRecord{CustomerRecord: c, Source: SourceLive}
	}
	return out
}

func scenarioCustomers() []models.CustomerRecord {
	return []models.CustomerRecord{
		waiting("A-101", "Asha", "9000000001", 2, at("2026-02-10T09:00:00Z")),
		seated("A-102", "Bilal", "9000000002", 4, at("2026-02-10T13:00:00Z"), at("2026-02-10T13:20:00Z"), "T3"),
		waiting("A-103", "Chen", "9000000003", 3, at("2026-02-10T19:00:00Z")),
	}
}

func TestAggregator_LunchScenario(t *testing.T) {
	agg := NewAggregator(time.UTC)
	records := live(scenarioCustomers()...)

	filtered := agg.Filter(records, Filter{TimeSlots: []TimeSlot{SlotLunch}})
	stats := agg.Stats(filtered)

	assert.Equal(t, 1, stats.TotalCustomers)
	assert.Equal(t, 4, stats.TotalGuests)
	assert.Equal(t, models.Some(20), stats.AvgWaitMinutes)
	assert.Equal(t, "13-14PM", stats.PeakHourWindow)
	assert.Equal(t, 1, stats.PeakHourCustomers)
}

func TestScenario_CleanupThenReadAll(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	clock := newTestClock("2026-02-10T23:00:00Z")
	archiver := newTestArchiver(store, clock, nil)
	reader := NewArchiveReader(store, NewSchemeSelector("2026-01"))

	r := seedRestaurant(t, store, models.PlanFree, "2026-02-09", scenarioCustomers()...)

	_, err := archiver.CleanupToday(ctx, r.ID, models.CleanupManual, true)
	require.NoError(t, err)

	got, err := store.GetRestaurant(ctx, r.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Queue)

	records, partial := reader.ReadAll(ctx, got)
	assert.False(t, partial)
	assert.Equal(t, []string{"A-101", "A-102", "A-103"}, queueNumbers(records))
	for _, rec := range records {
		assert.Equal(t, SourceSharded, rec.Source)
		assert.Equal(t, "2026-02-10", rec.ArchiveDate)
	}
}

func TestTimeSlot_Contains(t *testing.T) {
	tests := []struct {
		slot  TimeSlot
		in    []int
		notIn []int
	}{
		{SlotMorning, []int{6, 11}, []int{5, 12}},
		{SlotLunch, []int{12, 15}, []int{11, 16}},
		{SlotEvening, []int{16, 17}, []int{15, 18}},
		{SlotDinner, []int{18, 22}, []int{17, 23}},
		{SlotLate, []int{23, 0, 5}, []int{6, 22}},
	}
	for _, tt := range tests {
		t.Run(string(tt.slot), func(t *testing.T) {
			for _, h := range tt.in {
				assert.True(t, tt.slot.Contains(h), "hour %d", h)
			}
			for _, h := range tt.notIn {
				assert.False(t, tt.slot.Contains(h), "hour %d", h)
			}
		})
	}
}

func TestParseTimeSlot(t *testing.T) {
	slot, err := ParseTimeSlot(" Dinner ")
	require.NoError(t, err)
	assert.Equal(t, SlotDinner, slot)

	_, err = ParseTimeSlot("brunch")
	assert.Error(t, err)
}

func TestAggregator_Filter(t *testing.T) {
	agg := NewAggregator(time.UTC)
	records := live(
		waiting("A-1", "Asha", "111", 2, at("2026-02-09T08:00:00Z")),
		waiting("A-2", "Bilal", "222", 2, at("2026-02-10T12:30:00Z")),
		waiting("A-3", "Chen", "333", 2, at("2026-02-10T23:30:00Z")),
		waiting("B-4", "Dev", "444", 2, at("2026-02-11T19:00:00Z")),
	)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"A-1", "A-2", "A-3", "B-4"}},
		{"single day", Filter{DateFrom: "2026-02-10"}, []string{"A-2", "A-3"}},
		{"inclusive range", Filter{DateFrom: "2026-02-09", DateTo: "2026-02-10"}, []string{"A-1", "A-2", "A-3"}},
		{"slots are OR'd", Filter{TimeSlots: []TimeSlot{SlotMorning, SlotLate}}, []string{"A-1", "A-3"}},
		{"search name", Filter{Search: "chen"}, []string{"A-3"}},
		{"search phone", Filter{Search: "44"}, []string{"B-4"}},
		{"search queue number", Filter{Search: "b-"}, []string{"B-4"}},
		{"combined", Filter{DateFrom: "2026-02-10", DateTo: "2026-02-11", TimeSlots: []TimeSlot{SlotDinner}}, []string{"B-4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, queueNumbers(agg.Filter(records, tt.filter)))
		})
	}
}

func TestAggregator_FilterUsesLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	agg := NewAggregator(ist)
	// 20:00 UTC is 01:30 the next day in IST
	records := live(waiting("A-1", "Asha", "111", 2, at("2026-02-10T20:00:00Z")))

	assert.Len(t, agg.Filter(records, Filter{DateFrom: "2026-02-11", TimeSlots: []TimeSlot{SlotLate}}), 1)
	assert.Empty(t, agg.Filter(records, Filter{DateFrom: "2026-02-10"}))
}

func TestWaitMinutes(t *testing.T) {
	joined := at("2026-02-10T12:00:00Z")
	tests := []struct {
		name string
		c    models.CustomerRecord
		want models.Optional[int]
	}{
		{"not seated", waiting("A-1", "a", "1", 1, joined), models.None[int]()},
		{"rounded", seated("A-1", "a", "1", 1, joined, joined.Add(12*time.Minute+31*time.Second), "T1"), models.Some(13)},
		{"zero", seated("A-1", "a", "1", 1, joined, joined, "T1"), models.Some(0)},
		{"negative", seated("A-1", "a", "1", 1, joined, joined.Add(-5*time.Minute), "T1"), models.None[int]()},
		{"just under limit", seated("A-1", "a", "1", 1, joined, joined.Add(299*time.Minute), "T1"), models.Some(299)},
		{"at limit", seated("A-1", "a", "1", 1, joined, joined.Add(300*time.Minute), "T1"), models.None[int]()},
		{"slightly negative", seated("A-1", "a", "1", 1, joined, joined.Add(-20*time.Second), "T1"), models.None[int]()},
		{"rounds up to limit", seated("A-1", "a", "1", 1, joined, joined.Add(299*time.Minute+40*time.Second), "T1"), models.Some(300)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WaitMinutes(tt.c))
		})
	}
}

func TestAggregator_OutliersStayInRecords(t *testing.T) {
	agg := NewAggregator(time.UTC)
	joined := at("2026-02-10T12:00:00Z")
	records := live(
		seated("A-1", "a", "1", 2, joined, joined.Add(10*time.Minute), "T1"),
		seated("A-2", "b", "2", 2, joined, joined.Add(-3*time.Minute), "T2"),
		seated("A-3", "c", "3", 2, joined, joined.Add(400*time.Minute), "T3"),
		seated("A-4", "d", "4", 2, joined, joined.Add(30*time.Minute), "T4"),
	)

	filtered := agg.Filter(records, Filter{DateFrom: "2026-02-10"})
	require.Len(t, filtered, 4)

	stats := agg.Stats(filtered)
	assert.Equal(t, 4, stats.TotalCustomers)
	assert.Equal(t, models.Some(20), stats.AvgWaitMinutes)

	rows := agg.ExportRows(filtered)
	assert.Equal(t, "10", rows[0].WaitDisplay())
	assert.Equal(t, "-", rows[1].WaitDisplay())
	assert.Equal(t, "-", rows[2].WaitDisplay())
}

func TestAggregator_StatsEmpty(t *testing.T) {
	stats := NewAggregator(time.UTC).Stats(nil)
	assert.Equal(t, 0, stats.TotalCustomers)
	assert.False(t, stats.AvgWaitMinutes.IsSome())
	assert.Equal(t, "N/A", stats.PeakHourWindow)
}

func TestAggregator_PeakHourTieGoesToEarliest(t *testing.T) {
	agg := NewAggregator(time.UTC)
	records := live(
		waiting("A-1", "a", "1", 1, at("2026-02-10T19:10:00Z")),
		waiting("A-2", "b", "2", 1, at("2026-02-10T19:40:00Z")),
		waiting("A-3", "c", "3", 1, at("2026-02-10T08:05:00Z")),
		waiting("A-4", "d", "4", 1, at("2026-02-10T08:55:00Z")),
	)
	stats := agg.Stats(records)
	assert.Equal(t, "8-9AM", stats.PeakHourWindow)
	assert.Equal(t, 2, stats.PeakHourCustomers)
}

func TestPeakHourLabel(t *testing.T) {
	assert.Equal(t, "0-1AM", PeakHourLabel(0))
	assert.Equal(t, "11-12AM", PeakHourLabel(11))
	assert.Equal(t, "12-13PM", PeakHourLabel(12))
	assert.Equal(t, "23-24PM", PeakHourLabel(23))
}

func TestAggregator_RepeatCustomers(t *testing.T) {
	agg := NewAggregator(time.UTC)
	records := live(
		waiting("A-1", "Asha", "111", 2, at("2026-02-01T10:00:00Z")),
		waiting("A-2", "Bilal", "222", 4, at("2026-02-02T10:00:00Z")),
		waiting("A-3", "Asha K", "111", 3, at("2026-02-03T10:00:00Z")),
		waiting("A-4", "Chen", "333", 1, at("2026-02-04T10:00:00Z")),
		waiting("A-5", "Bilal", "222", 2, at("2026-02-05T10:00:00Z")),
		waiting("A-6", "Bilal", "222", 2, at("2026-02-06T10:00:00Z")),
		waiting("A-7", "Dev", "444", 2, at("2026-02-07T10:00:00Z")),
		waiting("A-8", "Dev", "444", 2, at("2026-02-08T10:00:00Z")),
	)

	repeat := agg.RepeatCustomers(records)
	require.Len(t, repeat, 3)

	assert.Equal(t, "222", repeat[0].Phone)
	assert.Equal(t, 3, repeat[0].Visits)
	assert.Equal(t, 8, repeat[0].TotalGuests)
	assert.Equal(t, 3, repeat[0].AvgGuests)
	assert.Equal(t, at("2026-02-06T10:00:00Z"), repeat[0].LastVisit)

	// equal visit counts keep first-seen order
	assert.Equal(t, "111", repeat[1].Phone)
	assert.Equal(t, "Asha", repeat[1].Name)
	assert.Equal(t, 3, repeat[1].AvgGuests)
	assert.Equal(t, "444", repeat[2].Phone)
}

func TestAggregator_ExportRows(t *testing.T) {
	agg := NewAggregator(time.UTC)
	c := seated("A-102", "Bilal", "222", 4, at("2026-02-10T13:00:00Z"), at("2026-02-10T13:20:00Z"), "T3")
	rows := agg.ExportRows([]HistoryRecord{{CustomerRecord: c, Source: SourceSharded, ArchiveDate: "2026-02-10", PartNumber: 1}})

	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "A-102", row.QueueNumber)
	assert.Equal(t, "Bilal", row.CustomerName)
	assert.Equal(t, "T3", row.TableNo)
	assert.Equal(t, "allocated", row.Status)
	assert.Equal(t, "20", row.WaitDisplay())
	assert.Equal(t, SourceSharded, row.Source)
	require.NotNil(t, row.AllocatedAt)
}
