package database

import (
	"fmt"

	"github.com/yeremiapane/revision-history/models"
	"github.com/yeremiapane/revision-history/revisionable"
	"github.com/yeremiapane/revision-history/utils"
	"gorm.io/gorm"
)

// Migrate creates the revisions table and the tables of every revisionable model.
func Migrate(db *gorm.DB) error {
	tables := append([]any{&revisionable.Revision{}}, models.AllModels()...)
	if err := db.AutoMigrate(tables...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// Verify indexes
	for _, index := range []string{"idx_revisionable"} {
		if !db.Migrator().HasIndex(&revisionable.Revision{}, index) {
			return fmt.Errorf("index %s missing on revisions", index)
		}
		if utils.InfoLogger != nil {
			utils.InfoLogger.Printf("Index verified: %s on revisions", index)
		}
	}
	return nil
}
