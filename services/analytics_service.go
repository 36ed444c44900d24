package services

import (
	"context"

	"github.com/yeremiapane/queueapp/models"
)

type AnalyticsReport struct {
	Filter          Filter           `json:"filter"`
	Stats           Stats            `json:"stats"`
	Records         []HistoryRecord  `json:"records"`
	RepeatCustomers []RepeatCustomer `json:"repeat_customers"`
	Partial         bool             `json:"partial"`
}

// AnalyticsService answers dashboard and export queries over the merged
// history of one restaurant.
type AnalyticsService struct {
	store      RestaurantStore
	reader     *ArchiveReader
	aggregator Aggregator
}

func NewAnalyticsService(store RestaurantStore, reader *ArchiveReader, aggregator Aggregator) *AnalyticsService {
	return &AnalyticsService{store: store, reader: reader, aggregator: aggregator}
}

func (s *AnalyticsService) History(ctx context.Context, restaurantID string) (*models.Restaurant, []HistoryRecord, bool, error) {
	r, err := s.store.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, nil, false, err
	}
	records, partial := s.reader.ReadAll(ctx, r)
	return r, records, partial, nil
}

type CleanupHistoryReport struct {
	Entries []CleanupHistoryEntry `json:"entries"`
	Partial bool                  `json:"partial"`
}

// CleanupHistory lists the most recent archived days of a restaurant.
func (s *AnalyticsService) CleanupHistory(ctx context.Context, restaurantID string) (*CleanupHistoryReport, error) {
	r, err := s.store.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	entries, partial := s.reader.CleanupHistory(ctx, r, MaxCleanupHistory)
	if entries == nil {
		entries = []CleanupHistoryEntry{}
	}
	return &CleanupHistoryReport{Entries: entries, Partial: partial}, nil
}

// Report filters the history, computes stats on the filtered view and finds
// repeat customers over the whole history.
func (s *AnalyticsService) Report(ctx context.Context, restaurantID string, f Filter) (*AnalyticsReport, error) {
	_, records, partial, err := s.History(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	filtered := s.aggregator.Filter(records, f)
	return &AnalyticsReport{
		Filter:          f,
		Stats:           s.aggregator.Stats(filtered),
		Records:         filtered,
		RepeatCustomers: s.aggregator.RepeatCustomers(records),
		Partial:         partial,
	}, nil
}

func (s *AnalyticsService) Export(ctx context.Context, restaurantID string, f Filter) ([]ExportRow, Stats, error) {
	_, records, _, err := s.History(ctx, restaurantID)
	if err != nil {
		return nil, Stats{}, err
	}
	filtered := s.aggregator.Filter(records, f)
	return s.aggregator.ExportRows(filtered), s.aggregator.Stats(filtered), nil
}

func (s *AnalyticsService) Aggregator() Aggregator {
	return s.aggregator
}
