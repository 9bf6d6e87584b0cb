package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// pragmas applied to every connection of the modernc driver
const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// OpenSQL opens the sqlite file at path (modernc driver name: "sqlite").
// A single connection keeps writers serialised; transactions travel in the
// context so nothing queues behind itself.
func OpenSQL(path string) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite", "file:"+path+"?"+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return sqlDB, nil
}

// Gorm wraps an already opened *sql.DB.
func Gorm(sqlDB *sql.DB) (*gorm.DB, error) {
	d, err := gorm.Open(&sqlite.Dialector{Conn: sqlDB}, &gorm.Config{
		Logger: logger.New(log.New(os.Stderr, "", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	return d, nil
}

// Open opens, migrates and wraps the database at path.
func Open(path string) (*sql.DB, *gorm.DB, error) {
	sqlDB, err := OpenSQL(path)
	if err != nil {
		return nil, nil, err
	}
	if err := Migrate(sqlDB); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	gdb, err := Gorm(sqlDB)
	if err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	return sqlDB, gdb, nil
}
