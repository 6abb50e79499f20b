// Package db opens, migrates and seeds the SQL backends of the dispatch
// store.
package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN builds a MySQL DSN. parseTime is required so timestamp columns scan
// into time.Time.
func DSN(user, host string, port int, database string) string {
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?parseTime=true", user, host, port, database)
}

// ConnectMySQL opens a GORM connection to a MySQL database.
func ConnectMySQL(user, host string, port int, database string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(DSN(user, host, port, database)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("db: connect to %s:%d/%s: %w", host, port, database, err)
	}
	return db, nil
}

// ConnectSQLite opens a GORM connection to a SQLite database file.
// ":memory:" gives a throwaway in-memory database.
func ConnectSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("db: open sqlite %s: %w", path, err)
	}
	return db, nil
}
