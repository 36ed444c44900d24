package models

import (
	"time"

	"gorm.io/datatypes"
)

type CleanupType string

const (
	CleanupManual CleanupType = "manual"
	CleanupAuto   CleanupType = "auto"
)

type ArchiveSummary struct {
	TotalCustomers int `json:"total_customers"`
	Served         int `json:"served"`
	Waiting        int `json:"waiting"`
}

// ArchiveEntry is the immutable snapshot of one day's queue.
type ArchiveEntry struct {
	Date        string           `json:"date"`
	Summary     ArchiveSummary   `json:"summary"`
	Customers   []CustomerRecord `json:"customers"`
	ArchivedAt  time.Time        `json:"archived_at"`
	CleanupType CleanupType      `json:"cleanup_type"`
}

// ArchiveMap is the inline per-restaurant archive, keyed by calendar day.
type ArchiveMap map[string]ArchiveEntry

type PartSummary struct {
	TotalCustomers  int `json:"total_customers"`
	TotalInAllParts int `json:"total_in_all_parts"`
	Served          int `json:"served"`
	Waiting         int `json:"waiting"`
}

// ArchivePart is one document of the sharded archive collection. Parts of the
// same (restaurant, date) are chained through NextPart; part 1 carries the
// canonical TotalParts.
type ArchivePart struct {
	ID             string                              `json:"id" gorm:"primaryKey;type:varchar(191)"`
	RestaurantID   string                              `json:"restaurant_id" gorm:"type:varchar(64);not null;index"`
	RestaurantName string                              `json:"restaurant_name" gorm:"type:varchar(255)"`
	Date           string                              `json:"date" gorm:"type:varchar(10);not null"`
	PartNumber     int                                 `json:"part_number" gorm:"not null"`
	TotalParts     int                                 `json:"total_parts" gorm:"not null"`
	Summary        PartSummary                         `json:"summary" gorm:"embedded;embeddedPrefix:summary_"`
	Customers      datatypes.JSONSlice[CustomerRecord] `json:"customers"`
	HasMoreParts   bool                                `json:"has_more_parts"`
	NextPart       *string                             `json:"next_part" gorm:"type:varchar(191)"`
	CleanupType    CleanupType                         `json:"cleanup_type" gorm:"type:varchar(10)"`
	ArchivedAt     time.Time                           `json:"archived_at"`
	CreatedAt      time.Time                           `json:"created_at"`
}

func (ArchivePart) TableName() string { return "archive_parts" }
