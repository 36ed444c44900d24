package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/queueapp/models"
	"github.com/yeremiapane/queueapp/utils"
)

type Source string

const (
	SourceLive    Source = "live"
	SourceLegacy  Source = "legacy"
	SourceSharded Source = "sharded"
)

// HistoryRecord is a customer record tagged with where it was read from.
type HistoryRecord struct {
	models.CustomerRecord
	Source      Source `json:"source"`
	ArchiveDate string `json:"archive_date,omitempty"`
	PartNumber  int    `json:"part_number,omitempty"`
}

// ArchiveReadError reports that the sharded collection could not be read.
// The reader logs it and carries on with what it has.
type ArchiveReadError struct {
	RestaurantID string
	Err          error
}

func (e *ArchiveReadError) Error() string {
	return fmt.Sprintf("partial archive read for restaurant %s: %v", e.RestaurantID, e.Err)
}

func (e *ArchiveReadError) Unwrap() error { return e.Err }

// ArchiveReader rebuilds a restaurant's full customer history from the inline
// archive, the sharded collection and the live queue.
type ArchiveReader struct {
	parts    ArchivePartReader
	selector SchemeSelector
}

func NewArchiveReader(parts ArchivePartReader, selector SchemeSelector) *ArchiveReader {
	return &ArchiveReader{parts: parts, selector: selector}
}

// ReadAll returns legacy records, then sharded records, then the live queue.
// Records are not sorted. partial is true when the sharded collection was
// unreachable and only legacy and live data were returned.
func (ar *ArchiveReader) ReadAll(ctx context.Context, r *models.Restaurant) (records []HistoryRecord, partial bool) {
	shardedByDate := map[string][]models.ArchivePart{}
	parts, err := ar.parts.ArchiveParts(ctx, r.ID)
	if err != nil {
		readErr := &ArchiveReadError{RestaurantID: r.ID, Err: err}
		utils.ErrorLogger.WithField("restaurant_id", r.ID).Warn(readErr.Error())
		partial = true
	} else {
		for _, p := range parts {
			if p.RestaurantID != r.ID {
				continue
			}
			shardedByDate[p.Date] = append(shardedByDate[p.Date], p)
		}
	}

	legacy := r.ArchiveEntries()
	for _, date := range sortedKeys(map[string]models.ArchiveEntry(legacy)) {
		if _, dup := shardedByDate[date]; dup {
			// the same day exists in both layouts; the selector decides which one is authoritative
			if ar.selector.Select(date) == SchemeSharded {
				utils.InfoLogger.WithFields(logrus.Fields{"restaurant_id": r.ID, "date": date}).
					Warn("inline archive entry shadowed by sharded archive")
				continue
			}
			utils.InfoLogger.WithFields(logrus.Fields{"restaurant_id": r.ID, "date": date}).
				Warn("sharded archive shadowed by inline archive entry")
			delete(shardedByDate, date)
		}
		for _, c := range legacy[date].Customers {
			records = append(records, HistoryRecord{
				CustomerRecord: c,
				Source:         SourceLegacy,
				ArchiveDate:    date,
			})
		}
	}

	for _, date := range sortedKeys(shardedByDate) {
		for _, p := range currentParts(shardedByDate[date]) {
			for _, c := range p.Customers {
				records = append(records, HistoryRecord{
					CustomerRecord: c,
					Source:         SourceSharded,
					ArchiveDate:    p.Date,
					PartNumber:     p.PartNumber,
				})
			}
		}
	}

	for _, c := range r.Queue {
		records = append(records, HistoryRecord{CustomerRecord: c, Source: SourceLive})
	}
	return records, partial
}

// currentParts orders the parts of one date and drops parts numbered beyond
// what part 1 declares. Gaps in the chain are tolerated.
func currentParts(parts []models.ArchivePart) []models.ArchivePart {
	sorted := make([]models.ArchivePart, len(parts))
	copy(sorted, parts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PartNumber < sorted[j].PartNumber
	})

	limit := 0
	for _, p := range sorted {
		if p.PartNumber <= 1 {
			limit = p.TotalParts
			break
		}
	}

	out := sorted[:0]
	seen := map[int]bool{}
	for _, p := range sorted {
		if limit > 0 && p.PartNumber > limit {
			continue
		}
		if seen[p.PartNumber] {
			continue
		}
		seen[p.PartNumber] = true
		out = append(out, p)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MaxCleanupHistory is how many archived days CleanupHistory lists.
const MaxCleanupHistory = 30

// CleanupHistoryEntry describes one archived day.
type CleanupHistoryEntry struct {
	Date        string                `json:"date"`
	Source      Source                `json:"source"`
	CleanupType models.CleanupType    `json:"cleanup_type"`
	Summary     models.ArchiveSummary `json:"summary"`
	Parts       int                   `json:"parts,omitempty"`
	ArchivedAt  time.Time             `json:"archived_at"`
}

// CleanupHistory lists archived days from both layouts, newest first, at
// most limit of them. Sharded days are summarized from their part headers
// without reading the customers back.
func (ar *ArchiveReader) CleanupHistory(ctx context.Context, r *models.Restaurant, limit int) (entries []CleanupHistoryEntry, partial bool) {
	byDate := map[string]CleanupHistoryEntry{}

	shardedByDate := map[string][]models.ArchivePart{}
	parts, err := ar.parts.ArchiveParts(ctx, r.ID)
	if err != nil {
		readErr := &ArchiveReadError{RestaurantID: r.ID, Err: err}
		utils.ErrorLogger.WithField("restaurant_id", r.ID).Warn(readErr.Error())
		partial = true
	}
	for _, p := range parts {
		if p.RestaurantID == r.ID {
			shardedByDate[p.Date] = append(shardedByDate[p.Date], p)
		}
	}
	for date, dayParts := range shardedByDate {
		current := currentParts(dayParts)
		entry := CleanupHistoryEntry{Date: date, Source: SourceSharded, Parts: len(current)}
		for _, p := range current {
			if p.PartNumber == 1 {
				entry.Summary.TotalCustomers = p.Summary.TotalInAllParts
				entry.Parts = p.TotalParts
			}
			if entry.ArchivedAt.IsZero() {
				entry.CleanupType = p.CleanupType
				entry.ArchivedAt = p.ArchivedAt
			}
			entry.Summary.Served += p.Summary.Served
			entry.Summary.Waiting += p.Summary.Waiting
		}
		if entry.Summary.TotalCustomers == 0 {
			entry.Summary.TotalCustomers = entry.Summary.Served + entry.Summary.Waiting
		}
		byDate[date] = entry
	}

	for date, e := range r.ArchiveEntries() {
		if _, dup := byDate[date]; dup && ar.selector.Select(date) == SchemeSharded {
			continue
		}
		byDate[date] = CleanupHistoryEntry{
			Date:        date,
			Source:      SourceLegacy,
			CleanupType: e.CleanupType,
			Summary:     e.Summary,
			ArchivedAt:  e.ArchivedAt,
		}
	}

	dates := sortedKeys(byDate)
	for i := len(dates) - 1; i >= 0; i-- {
		if limit > 0 && len(entries) == limit {
			break
		}
		entries = append(entries, byDate[dates[i]])
	}
	return entries, partial
}
