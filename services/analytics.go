package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/yeremiapane/queueapp/models"
)

type TimeSlot string

const (
	SlotMorning TimeSlot = "morning"
	SlotLunch   TimeSlot = "lunch"
	SlotEvening TimeSlot = "evening"
	SlotDinner  TimeSlot = "dinner"
	SlotLate    TimeSlot = "late"
)

// MaxValidWaitMinutes bounds the waits that count toward averages.
const MaxValidWaitMinutes = 300

// ParseTimeSlot validates a slot name.
func ParseTimeSlot(name string) (TimeSlot, error) {
	switch slot := TimeSlot(strings.ToLower(strings.TrimSpace(name))); slot {
	case SlotMorning, SlotLunch, SlotEvening, SlotDinner, SlotLate:
		return slot, nil
	}
	return "", fmt.Errorf("unknown time slot %q", name)
}

// Contains reports whether hour (0-23) falls inside the slot.
func (s TimeSlot) Contains(hour int) bool {
	switch s {
	case SlotMorning:
		return hour >= 6 && hour < 12
	case SlotLunch:
		return hour >= 12 && hour < 16
	case SlotEvening:
		return hour >= 16 && hour < 18
	case SlotDinner:
		return hour >= 18 && hour < 23
	case SlotLate:
		return hour >= 23 || hour < 6
	}
	return false
}

// Filter selects records for analytics. An empty DateTo means DateFrom's day
// only; an empty DateFrom disables date filtering.
type Filter struct {
	DateFrom  string     `json:"date_from"`
	DateTo    string     `json:"date_to"`
	TimeSlots []TimeSlot `json:"time_slots"`
	Search    string     `json:"search"`
}

type Stats struct {
	TotalCustomers    int                  `json:"total_customers"`
	TotalGuests       int                  `json:"total_guests"`
	AvgWaitMinutes    models.Optional[int] `json:"avg_wait_minutes"`
	PeakHourWindow    string               `json:"peak_hour_window"`
	PeakHourCustomers int                  `json:"peak_hour_customers"`
}

type RepeatCustomer struct {
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Visits      int       `json:"visits"`
	TotalGuests int       `json:"total_guests"`
	AvgGuests   int       `json:"avg_guests"`
	LastVisit   time.Time `json:"last_visit"`
}

// ExportRow is one flat row handed to export consumers.
type ExportRow struct {
	QueueNumber  string               `json:"queue_number"`
	CustomerName string               `json:"customer_name"`
	Phone        string               `json:"phone"`
	Guests       int                  `json:"guests"`
	JoinedAt     time.Time            `json:"joined_at"`
	AllocatedAt  *time.Time           `json:"allocated_at"`
	WaitMinutes  models.Optional[int] `json:"wait_minutes"`
	TableNo      string               `json:"table_no"`
	Status       string               `json:"status"`
	Source       Source               `json:"source"`
	ArchiveDate  string               `json:"archive_date"`
}

// WaitDisplay renders the wait for tables, "-" when unknown or out of range.
func (r ExportRow) WaitDisplay() string {
	if w, ok := r.WaitMinutes.Get(); ok {
		return fmt.Sprintf("%d", w)
	}
	return "-"
}

// Aggregator computes analytics over history records. Hours and calendar days
// are taken in Location.
type Aggregator struct {
	Location *time.Location
}

func NewAggregator(loc *time.Location) Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return Aggregator{Location: loc}
}

func (a Aggregator) local(t time.Time) time.Time {
	if a.Location == nil {
		return t
	}
	return t.In(a.Location)
}

func (a Aggregator) Filter(records []HistoryRecord, f Filter) []HistoryRecord {
	dateTo := f.DateTo
	if dateTo == "" {
		dateTo = f.DateFrom
	}
	query := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]HistoryRecord, 0, len(records))
	for _, rec := range records {
		joined := a.local(rec.JoinedAt)
		day := joined.Format(DateLayout)
		if f.DateFrom != "" && day < f.DateFrom {
			continue
		}
		if dateTo != "" && day > dateTo {
			continue
		}
		if len(f.TimeSlots) > 0 && !inAnySlot(f.TimeSlots, joined.Hour()) {
			continue
		}
		if query != "" && !matchesSearch(rec.CustomerRecord, query) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func inAnySlot(slots []TimeSlot, hour int) bool {
	for _, s := range slots {
		if s.Contains(hour) {
			return true
		}
	}
	return false
}

func matchesSearch(c models.CustomerRecord, query string) bool {
	return strings.Contains(strings.ToLower(c.Name), query) ||
		strings.Contains(strings.ToLower(c.Phone), query) ||
		strings.Contains(strings.ToLower(c.QueueNumber), query)
}

// WaitMinutes is the rounded seat wait, None when the customer was never
// seated or the unrounded wait lies outside [0, MaxValidWaitMinutes).
func WaitMinutes(c models.CustomerRecord) models.Optional[int] {
	if c.AllocatedAt == nil {
		return models.None[int]()
	}
	d := c.AllocatedAt.Sub(c.JoinedAt)
	if d < 0 || d >= MaxValidWaitMinutes*time.Minute {
		return models.None[int]()
	}
	return models.Some(int(math.Round(d.Minutes())))
}

func (a Aggregator) Stats(records []HistoryRecord) Stats {
	stats := Stats{TotalCustomers: len(records), PeakHourWindow: "N/A"}

	var hourCounts [24]int
	waitSum, waitCount := 0, 0
	for _, rec := range records {
		stats.TotalGuests += rec.Guests
		if w, ok := WaitMinutes(rec.CustomerRecord).Get(); ok {
			waitSum += w
			waitCount++
		}
		hourCounts[a.local(rec.JoinedAt).Hour()]++
	}

	if waitCount > 0 {
		stats.AvgWaitMinutes = models.Some(int(math.Round(float64(waitSum) / float64(waitCount))))
	}

	// strict comparison keeps the earliest hour on ties
	peak := -1
	for hour, count := range hourCounts {
		if count > 0 && (peak < 0 || count > hourCounts[peak]) {
			peak = hour
		}
	}
	if peak >= 0 {
		stats.PeakHourWindow = PeakHourLabel(peak)
		stats.PeakHourCustomers = hourCounts[peak]
	}
	return stats
}

// PeakHourLabel renders an hour window, e.g. 13 -> "13-14PM".
func PeakHourLabel(hour int) string {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	return fmt.Sprintf("%d-%d%s", hour, hour+1, suffix)
}

// RepeatCustomers groups records by phone and keeps phones with two or more
// visits, most visits first. Equal counts keep first-seen order.
func (a Aggregator) RepeatCustomers(records []HistoryRecord) []RepeatCustomer {
	byPhone := map[string]*RepeatCustomer{}
	order := make([]string, 0)
	for _, rec := range records {
		rc, ok := byPhone[rec.Phone]
		if !ok {
			rc = &RepeatCustomer{Name: rec.Name, Phone: rec.Phone, LastVisit: rec.JoinedAt}
			byPhone[rec.Phone] = rc
			order = append(order, rec.Phone)
		}
		rc.Visits++
		rc.TotalGuests += rec.Guests
		if rec.JoinedAt.After(rc.LastVisit) {
			rc.LastVisit = rec.JoinedAt
		}
	}

	repeat := make([]RepeatCustomer, 0)
	for _, phone := range order {
		rc := byPhone[phone]
		if rc.Visits < 2 {
			continue
		}
		rc.AvgGuests = int(math.Round(float64(rc.TotalGuests) / float64(rc.Visits)))
		repeat = append(repeat, *rc)
	}
	sort.SliceStable(repeat, func(i, j int) bool {
		return repeat[i].Visits > repeat[j].Visits
	})
	return repeat
}

func (a Aggregator) ExportRows(records []HistoryRecord) []ExportRow {
	rows := make([]ExportRow, 0, len(records))
	for _, rec := range records {
		row := ExportRow{
			QueueNumber:  rec.QueueNumber,
			CustomerName: rec.Name,
			Phone:        rec.Phone,
			Guests:       rec.Guests,
			JoinedAt:     a.local(rec.JoinedAt),
			WaitMinutes:  WaitMinutes(rec.CustomerRecord),
			Status:       string(rec.Status),
			Source:       rec.Source,
			ArchiveDate:  rec.ArchiveDate,
		}
		if rec.AllocatedAt != nil {
			at := a.local(*rec.AllocatedAt)
			row.AllocatedAt = &at
		}
		if rec.TableNo != nil {
			row.TableNo = *rec.TableNo
		}
		rows = append(rows, row)
	}
	return rows
}
