package database

import (
	"fmt"
	"log"
	"log/slog"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDatabase opens a connection pool for the given URL and brings the schema
// up to date. Postgres and MySQL URLs are recognized by their scheme; anything
// else is treated as a SQLite path, which is used for local development and
// tests.
func NewDatabase(databaseURL string) (*gorm.DB, error) {
	log.Println("Connecting to database...")

	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		dialector = postgres.Open(databaseURL)
	case strings.HasPrefix(databaseURL, "mysql://"):
		dialector = mysql.Open(strings.TrimPrefix(databaseURL, "mysql://"))
	default:
		dialector = sqlite.Open(databaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	if db.Dialector.Name() == "sqlite" || db.Dialector.Name() == "sqlite3" {
		// Sqlite does not enforce foreign key constraints by default; the
		// cascade delete from conversations to messages depends on them.
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			slog.Error("error enabling foreign keys for SQLite", "error", err)
		}
	}

	if err := GetMigrator(db).Migrate(); err != nil {
		return nil, fmt.Errorf("error migrating database: %w", err)
	}

	log.Println("Database connection established.")
	return db, nil
}
