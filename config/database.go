package config

import (
	"os"

	"github.com/deckforge/deckforge-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var Database *gorm.DB

func Connect() error {
	var err error
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		// Local development fallback
		Database, err = gorm.Open(sqlite.Open("deckforge.db"), &gorm.Config{})
	} else {
		Database, err = gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	}
	if err != nil {
		panic("failed to connect database")
	}

	err = Database.AutoMigrate(
		&models.User{},
		&models.Topic{},
		&models.Card{},
		&models.Explanation{},
		&models.Block{},
		&models.Deck{},
	)
	if err != nil {
		panic("failed to auto migrate database")
	}

	return nil
}
