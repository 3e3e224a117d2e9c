package database

import (
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported relational backends.
const (
	TypePostgres = "postgres"
	TypeMySQL    = "mysql"
	TypeSQLite   = "sqlite"
)

type Config struct {
	Type string
	DSN  string
}

// Connect opens a gorm connection for the configured backend.
func Connect(config Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch config.Type {
	case TypePostgres:
		dialector = postgres.Open(config.DSN)
	case TypeMySQL:
		dialector = mysql.Open(config.DSN)
	case TypeSQLite:
		dialector = sqlite.Open(config.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", config.Type, err)
	}

	log.Printf("✨ Connected to %s database successfully", config.Type)
	return db, nil
}
