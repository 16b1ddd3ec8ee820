package repository

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"collecthub-backend/internal/config"
	"collecthub-backend/internal/models"
)

var DB *gorm.DB

func Connect(cfg *config.Config) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	var err error
	for i := 0; i < 10; i++ {
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		fmt.Println("Waiting for database to be ready...")
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		panic("could not connect to the database")
	}

	DB.AutoMigrate(
		&models.User{},
		&models.Collection{},
		&models.Item{},
		&models.Tag{},
		&models.Comment{},
		&models.Like{},
		&models.Topic{},
		&models.ResetToken{},
	)

	createTextIndexes()
}

// createTextIndexes backs the ranked search: one GIN index per searched
// entity. Item indexing covers the dynamic attributes through attrs::text.
func createTextIndexes() {
	DB.Exec(`CREATE INDEX IF NOT EXISTS idx_collections_fts ON collections
		USING GIN (to_tsvector('simple', coalesce(name,'') || ' ' || coalesce(description,'')))`)
	DB.Exec(`CREATE INDEX IF NOT EXISTS idx_items_fts ON items
		USING GIN (to_tsvector('simple', coalesce(name,'') || ' ' || coalesce(attrs::text,'')))`)
	DB.Exec(`CREATE INDEX IF NOT EXISTS idx_comments_fts ON comments
		USING GIN (to_tsvector('simple', coalesce(text,'')))`)
}
