package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queueapp/models"
)

func entryOf(customers []models.CustomerRecord) models.ArchiveEntry {
	return BuildArchiveEntry(customers, "2026-02-10", models.CleanupAuto, at("2026-02-10T23:59:00Z"))
}

func flatten(parts []models.ArchivePart) []models.CustomerRecord {
	var out []models.CustomerRecord
	for _, p := range parts {
		out = append(out, p.Customers...)
	}
	return out
}

func assertChain(t *testing.T, parts []models.ArchivePart, restaurantID string) {
	t.Helper()
	total := 0
	for _, p := range parts {
		total += len(p.Customers)
	}
	for i, p := range parts {
		n := i + 1
		assert.Equal(t, n, p.PartNumber)
		assert.Equal(t, len(parts), p.TotalParts)
		assert.Equal(t, PartID(restaurantID, "2026-02-10", n), p.ID)
		assert.Equal(t, total, p.Summary.TotalInAllParts)
		assert.Equal(t, len(p.Customers), p.Summary.TotalCustomers)
		if n < len(parts) {
			assert.True(t, p.HasMoreParts)
			require.NotNil(t, p.NextPart)
			assert.Equal(t, PartID(restaurantID, "2026-02-10", n+1), *p.NextPart)
		} else {
			assert.False(t, p.HasMoreParts)
			assert.Nil(t, p.NextPart)
		}
	}
}

func TestSplitter_Defaults(t *testing.T) {
	s := NewSplitter()
	assert.Equal(t, 1024*1024-100*1024, s.SafeBudget())
	assert.Equal(t, 4608, s.MaxRecordsPerPart())
}

func TestPartID(t *testing.T) {
	assert.Equal(t, "r1-2026-02-10", PartID("r1", "2026-02-10", 1))
	assert.Equal(t, "r1-2026-02-10-part2", PartID("r1", "2026-02-10", 2))
}

func TestSplitter_SmallEntryIsOnePart(t *testing.T) {
	entry := entryOf(syntheticCustomers(3, at("2026-02-10T09:00:00Z")))
	parts := NewSplitter().Plan("r1", "Spice Garden", entry)

	require.Len(t, parts, 1)
	assert.Equal(t, "r1-2026-02-10", parts[0].ID)
	assert.Equal(t, "Spice Garden", parts[0].RestaurantName)
	assert.Equal(t, entry.Customers, []models.CustomerRecord(parts[0].Customers))
	assertChain(t, parts, "r1")
}

func TestSplitter_EmptyEntryIsOneEmptyPart(t *testing.T) {
	parts := NewSplitter().Plan("r1", "Spice Garden", entryOf(nil))

	require.Len(t, parts, 1)
	assert.Empty(t, parts[0].Customers)
	assert.Equal(t, 1, parts[0].TotalParts)
	assert.False(t, parts[0].HasMoreParts)
}

func TestSplitter_RoundTrip(t *testing.T) {
	customers := syntheticCustomers(257, at("2026-02-10T09:00:00Z"))
	budgets := []int{1, 500, 2_000, 10_000, 60_000, 1024 * 1024}

	for _, budget := range budgets {
		s := Splitter{MaxBytes: budget, SafetyBuffer: 0, RecordBytes: RecordBytesEstimate}
		parts := s.Plan("r1", "Spice Garden", entryOf(customers))

		require.NotEmpty(t, parts)
		assert.Equal(t, customers, flatten(parts), "budget %d", budget)
		assertChain(t, parts, "r1")
	}
}

func TestSplitter_ShrinksWhenEstimateIsTooLow(t *testing.T) {
	customers := syntheticCustomers(400, at("2026-02-10T09:00:00Z"))
	// a 10 byte estimate would put 2000 records in a 20 KB part
	s := Splitter{MaxBytes: 20_000, SafetyBuffer: 0, RecordBytes: 10}
	parts := s.Plan("r1", "Spice Garden", entryOf(customers))

	require.Greater(t, len(parts), 1)
	for _, p := range parts {
		assert.LessOrEqual(t, serializedSize(p), s.SafeBudget(), "part %d", p.PartNumber)
	}
	assert.Equal(t, customers, flatten(parts))
	assertChain(t, parts, "r1")
}

func TestSplitter_TenThousandRecords(t *testing.T) {
	customers := syntheticCustomers(10_000, at("2026-02-10T09:00:00Z"))

	t.Run("thousand per part", func(t *testing.T) {
		s := Splitter{MaxBytes: 200 * 1000, SafetyBuffer: 0, RecordBytes: 200}
		require.Equal(t, 1000, s.MaxRecordsPerPart())

		parts := s.Plan("r1", "Spice Garden", entryOf(customers))
		require.Len(t, parts, 10)
		assertChain(t, parts, "r1")
		assert.Equal(t, customers, flatten(parts))
	})

	t.Run("one byte budget", func(t *testing.T) {
		s := Splitter{MaxBytes: 1, SafetyBuffer: 0, RecordBytes: 200}
		require.Equal(t, 1, s.MaxRecordsPerPart())

		parts := s.Plan("r1", "Spice Garden", entryOf(customers))
		require.Len(t, parts, 10_000)
		assert.True(t, parts[0].HasMoreParts)
		assert.False(t, parts[len(parts)-1].HasMoreParts)
		for _, p := range parts {
			assert.Equal(t, 10_000, p.TotalParts)
		}
		assert.Equal(t, customers, flatten(parts))
	})

	t.Run("default policy fits the budget", func(t *testing.T) {
		s := NewSplitter()
		parts := s.Plan("r1", "Spice Garden", entryOf(customers))
		require.Greater(t, len(parts), 1)
		for _, p := range parts {
			assert.LessOrEqual(t, serializedSize(p), s.SafeBudget())
		}
		assert.Equal(t, customers, flatten(parts))
	})
}
