package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	PlanFree    = "free"
	PlanPremium = "premium"

	PlanStatusActive   = "active"
	PlanStatusPending  = "pending"
	PlanStatusRejected = "rejected"
)

// UsageAnalytics tracks the monthly join counter behind the plan limits.
type UsageAnalytics struct {
	CurrentMonth       string              `json:"current_month"`
	CustomersThisMonth int                 `json:"customers_this_month"`
	LastResetDate      string              `json:"last_reset_date"`
	DailyStats         map[string]int      `json:"daily_stats"`
	CustomersAtExpiry  Optional[int]       `json:"customers_at_expiry"`
	ExpiredAt          Optional[time.Time] `json:"expired_at"`
}

// MonthlySnapshot is pushed to the history when a new month starts.
type MonthlySnapshot struct {
	Month             string              `json:"month"`
	TotalCustomers    int                 `json:"total_customers"`
	DailyStats        map[string]int      `json:"daily_stats"`
	CustomersAtExpiry Optional[int]       `json:"customers_at_expiry"`
	ExpiredAt         Optional[time.Time] `json:"expired_at"`
	ArchivedAt        time.Time           `json:"archived_at"`
}

// Restaurant is the aggregate every live-state transaction reads and writes:
// the live queue, the inline (legacy) archive and the cleanup marker.
type Restaurant struct {
	ID              string                               `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name            string                               `json:"name" gorm:"type:varchar(255);not null"`
	OwnerName       string                               `json:"owner_name" gorm:"type:varchar(255)"`
	Phone           string                               `json:"phone" gorm:"type:varchar(32)"`
	Plan            string                               `json:"plan" gorm:"type:varchar(20);not null;default:'free'"`
	PlanStatus      string                               `json:"plan_status" gorm:"type:varchar(20);not null;default:'active'"`
	PlanType        string                               `json:"plan_type" gorm:"type:varchar(64)"`
	PlanDuration    int                                  `json:"plan_duration"`
	PlanPrice       int                                  `json:"plan_price"`
	PlanStartDate   *time.Time                           `json:"plan_start_date"`
	PlanExpiryDate  *time.Time                           `json:"plan_expiry_date"`
	PaymentProof    *PaymentProof                        `json:"payment_proof" gorm:"serializer:json;type:text"`
	Queue           datatypes.JSONSlice[CustomerRecord]  `json:"queue"`
	QueueArchive    datatypes.JSONType[ArchiveMap]       `json:"queue_archive"`
	Usage           datatypes.JSONType[UsageAnalytics]   `json:"usage"`
	MonthlyHistory  datatypes.JSONSlice[MonthlySnapshot] `json:"monthly_history"`
	LastCleanupDate string                               `json:"last_cleanup_date" gorm:"type:varchar(10)"`
	LastCleanupAt   *time.Time                           `json:"last_cleanup_at"`
	CreatedAt       time.Time                            `json:"created_at"`
	UpdatedAt       time.Time                            `json:"updated_at"`
}

// UpdateFunc mutates r in place inside a store transaction. Returned archive
// parts are persisted in that same transaction.
type UpdateFunc func(r *Restaurant) ([]ArchivePart, error)

// ArchiveEntries returns the inline archive map, never nil.
func (r *Restaurant) ArchiveEntries() ArchiveMap {
	entries := r.QueueArchive.Data()
	if entries == nil {
		entries = ArchiveMap{}
	}
	return entries
}

func (r *Restaurant) SetArchiveEntries(entries ArchiveMap) {
	r.QueueArchive = datatypes.NewJSONType(entries)
}

func (r *Restaurant) UsageData() UsageAnalytics {
	usage := r.Usage.Data()
	if usage.DailyStats == nil {
		usage.DailyStats = map[string]int{}
	}
	return usage
}

func (r *Restaurant) SetUsage(usage UsageAnalytics) {
	r.Usage = datatypes.NewJSONType(usage)
}

// ResetQueue empties the live queue.
func (r *Restaurant) ResetQueue() {
	r.Queue = datatypes.JSONSlice[CustomerRecord]{}
}

// FindQueueEntry returns the index of queueNumber in the live queue or -1.
func (r *Restaurant) FindQueueEntry(queueNumber string) int {
	for i, c := range r.Queue {
		if c.QueueNumber == queueNumber {
			return i
		}
	}
	return -1
}

func (r *Restaurant) IsPremiumActive(now time.Time) bool {
	return r.Plan == PlanPremium &&
		r.PlanStatus == PlanStatusActive &&
		(r.PlanExpiryDate == nil || r.PlanExpiryDate.After(now))
}
