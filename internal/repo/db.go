// Package repo persists load history and idempotency keys with GORM on a
// pure-Go SQLite driver. Functions are thin: they compose queries, take a
// context and a *gorm.DB, and hold no business rules.
package repo

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-console-navigator/internal/domain"
)

// pragmas run on every pooled connection, not just the first one.
var pragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// sqliteDSN appends the connection pragmas to path.
func sqliteDSN(path string) string {
	q := url.Values{"_pragma": pragmas}
	return path + "?" + q.Encode()
}

// OpenSQLite opens or creates the database at path. The parent directory
// must exist. Queries are traced as children of the caller's span.
func OpenSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(sqliteDSN(path)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(8)
	sqlDB.SetMaxIdleConns(8)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// AutoMigrate creates or updates the loads and idempotency_keys tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.LoadRecord{}, &domain.IdempotencyKey{})
}
