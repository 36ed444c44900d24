package services

import (
	"time"

	"github.com/yeremiapane/queueapp/models"
)

// BuildArchiveEntry turns a live queue snapshot into an archive entry. Only
// persisted customer fields are copied and queue order is kept.
func BuildArchiveEntry(queue []models.CustomerRecord, date string, cleanupType models.CleanupType, now time.Time) models.ArchiveEntry {
	customers := make([]models.CustomerRecord, 0, len(queue))
	for _, c := range queue {
		customers = append(customers, c.Normalized())
	}

	return models.ArchiveEntry{
		Date:        date,
		Summary:     summarize(customers),
		Customers:   customers,
		ArchivedAt:  now,
		CleanupType: cleanupType,
	}
}

func summarize(customers []models.CustomerRecord) models.ArchiveSummary {
	summary := models.ArchiveSummary{TotalCustomers: len(customers)}
	for _, c := range customers {
		switch c.Status {
		case models.StatusAllocated:
			summary.Served++
		case models.StatusWaiting:
			summary.Waiting++
		}
	}
	return summary
}
