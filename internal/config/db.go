package config

import (
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func ConnectDB(dbFile string) (*gorm.DB, error) {
	// busy_timeout waits 5s on a locked database, WAL allows readers during writes
	dsn := dbFile + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// a single writer keeps sqlite free of SQLITE_BUSY under load
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}
