package database

import (
	"fmt"

	"github.com/yeremiapane/queueapp/models"
	"github.com/yeremiapane/queueapp/utils"
	"gorm.io/gorm"
)

// Migrate creates or updates the restaurants and archive_parts tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Restaurant{}, &models.ArchivePart{}); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	// readers query parts by restaurant only
	if !db.Migrator().HasIndex(&models.ArchivePart{}, "RestaurantID") {
		if err := db.Migrator().CreateIndex(&models.ArchivePart{}, "RestaurantID"); err != nil {
			return fmt.Errorf("failed to create archive_parts index: %w", err)
		}
	}

	for _, table := range []string{"restaurants", "archive_parts"} {
		if !db.Migrator().HasTable(table) {
			return fmt.Errorf("table %s missing after migration", table)
		}
		utils.InfoLogger.Printf("Table verified: %s", table)
	}
	return nil
}
