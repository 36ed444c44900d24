package services

import (
	"encoding/json"
	"fmt"

	"github.com/yeremiapane/queueapp/models"
)

// Size policy for sharded archive documents.
const (
	MaxDocumentBytes    = 1024 * 1024
	SafetyBufferBytes   = 100 * 1024
	RecordBytesEstimate = 200
)

// Splitter plans the documents one archive entry is stored as. Chunking is
// positional: concatenating the parts in part order gives back the entry's
// customer list unchanged.
type Splitter struct {
	MaxBytes     int
	SafetyBuffer int
	RecordBytes  int
}

func NewSplitter() Splitter {
	return Splitter{
		MaxBytes:     MaxDocumentBytes,
		SafetyBuffer: SafetyBufferBytes,
		RecordBytes:  RecordBytesEstimate,
	}
}

// SafeBudget is the largest serialized part size the splitter aims for.
func (s Splitter) SafeBudget() int {
	budget := s.MaxBytes - s.SafetyBuffer
	if budget < 1 {
		return 1
	}
	return budget
}

// MaxRecordsPerPart is the window derived from the per-record estimate.
func (s Splitter) MaxRecordsPerPart() int {
	recordBytes := s.RecordBytes
	if recordBytes < 1 {
		recordBytes = RecordBytesEstimate
	}
	n := s.SafeBudget() / recordBytes
	if n < 1 {
		return 1
	}
	return n
}

// PartID addresses a sharded document: part 1 uses the bare composite key.
func PartID(restaurantID, date string, partNumber int) string {
	if partNumber <= 1 {
		return fmt.Sprintf("%s-%s", restaurantID, date)
	}
	return fmt.Sprintf("%s-%s-part%d", restaurantID, date, partNumber)
}

// Plan returns one part when the serialized entry fits the safe budget, and a
// chained sequence of parts otherwise. It never returns zero parts.
func (s Splitter) Plan(restaurantID, restaurantName string, entry models.ArchiveEntry) []models.ArchivePart {
	customers := entry.Customers
	if len(customers) == 0 || serializedSize(entry) <= s.SafeBudget() {
		return s.chunk(restaurantID, restaurantName, entry, len(customers))
	}

	window := s.MaxRecordsPerPart()
	for {
		parts := s.chunk(restaurantID, restaurantName, entry, window)
		largest := 0
		for _, p := range parts {
			if size := serializedSize(p); size > largest {
				largest = size
			}
		}
		if largest <= s.SafeBudget() || window == 1 {
			return parts
		}

		// the estimate was too optimistic; shrink proportionally and re-plan
		next := window * s.SafeBudget() / largest
		if next >= window {
			next = window - 1
		}
		if next < 1 {
			next = 1
		}
		window = next
	}
}

func (s Splitter) chunk(restaurantID, restaurantName string, entry models.ArchiveEntry, window int) []models.ArchivePart {
	customers := entry.Customers
	total := len(customers)
	if window < 1 {
		window = 1
	}

	totalParts := (total + window - 1) / window
	if totalParts == 0 {
		totalParts = 1
	}

	parts := make([]models.ArchivePart, 0, totalParts)
	for n := 1; n <= totalParts; n++ {
		start := (n - 1) * window
		end := start + window
		if end > total {
			end = total
		}
		chunk := make([]models.CustomerRecord, end-start)
		copy(chunk, customers[start:end])

		hasMore := n < totalParts
		var next *string
		if hasMore {
			id := PartID(restaurantID, entry.Date, n+1)
			next = &id
		}

		summary := summarize(chunk)
		parts = append(parts, models.ArchivePart{
			ID:             PartID(restaurantID, entry.Date, n),
			RestaurantID:   restaurantID,
			RestaurantName: restaurantName,
			Date:           entry.Date,
			PartNumber:     n,
			TotalParts:     totalParts,
			Summary: models.PartSummary{
				TotalCustomers:  summary.TotalCustomers,
				TotalInAllParts: total,
				Served:          summary.Served,
				Waiting:         summary.Waiting,
			},
			Customers:    chunk,
			HasMoreParts: hasMore,
			NextPart:     next,
			CleanupType:  entry.CleanupType,
			ArchivedAt:   entry.ArchivedAt,
		})
	}
	return parts
}

func serializedSize(v interface{}) int {
	data, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return len(data)
}
