package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queueapp/models"
)

func TestBuildArchiveEntry(t *testing.T) {
	now := at("2026-02-10T23:59:00Z")
	table := "T4"
	inconsistent := waiting("A-103", "Ravi", "900", 3, at("2026-02-10T12:00:00Z"))
	inconsistent.TableNo = &table // no allocation time, so not seated

	queue := []models.CustomerRecord{
		waiting("A-101", "Asha", "901", 2, at("2026-02-10T10:00:00Z")),
		seated("A-102", "Bilal", "902", 4, at("2026-02-10T11:00:00Z"), at("2026-02-10T11:15:00Z"), "T1"),
		inconsistent,
	}

	entry := BuildArchiveEntry(queue, "2026-02-10", models.CleanupManual, now)

	assert.Equal(t, "2026-02-10", entry.Date)
	assert.Equal(t, models.CleanupManual, entry.CleanupType)
	assert.Equal(t, now, entry.ArchivedAt)
	assert.Equal(t, models.ArchiveSummary{TotalCustomers: 3, Served: 1, Waiting: 2}, entry.Summary)

	require.Len(t, entry.Customers, 3)
	assert.Equal(t, []string{"A-101", "A-102", "A-103"}, []string{
		entry.Customers[0].QueueNumber, entry.Customers[1].QueueNumber, entry.Customers[2].QueueNumber,
	})
	assert.True(t, entry.Customers[1].IsAllocated())
	assert.Nil(t, entry.Customers[2].TableNo)
	assert.Equal(t, models.StatusWaiting, entry.Customers[2].Status)
}

func TestBuildArchiveEntry_CopiesRecords(t *testing.T) {
	queue := []models.CustomerRecord{
		seated("A-200", "Chen", "903", 2, at("2026-02-10T18:00:00Z"), at("2026-02-10T18:05:00Z"), "T2"),
	}
	entry := BuildArchiveEntry(queue, "2026-02-10", models.CleanupAuto, at("2026-02-11T00:00:00Z"))

	*queue[0].TableNo = "changed"
	assert.Equal(t, "T2", *entry.Customers[0].TableNo)
}

func TestBuildArchiveEntry_SameInputSameContent(t *testing.T) {
	queue := syntheticCustomers(25, at("2026-02-10T09:00:00Z"))
	now := at("2026-02-10T23:00:00Z")

	first := BuildArchiveEntry(queue, "2026-02-10", models.CleanupManual, now)
	second := BuildArchiveEntry(queue, "2026-02-10", models.CleanupManual, now)
	assert.Equal(t, first, second)
}

func TestBuildArchiveEntry_EmptyQueue(t *testing.T) {
	entry := BuildArchiveEntry(nil, "2026-02-10", models.CleanupManual, at("2026-02-10T23:00:00Z"))
	assert.NotNil(t, entry.Customers)
	assert.Empty(t, entry.Customers)
	assert.Equal(t, 0, entry.Summary.TotalCustomers)
}
