package database

import (
	"fmt"
	"log"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hok11/hok-rank/internal/models"
)

// Initialize opens (or creates) the local history database and keeps its
// schema current. Pure-Go sqlite: no server, no cgo, just a file next to
// data.json.
func Initialize(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.AutoMigrate(&models.ScoreEvent{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}

	log.Println("History database initialized")
	return db, nil
}
