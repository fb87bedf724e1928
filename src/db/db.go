package db

import (
	"log"
	"time"

	"rbs/src/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

// GetDb returns the shared connection, dialing on first use. Transient
// connect failures are retried a bounded number of times here at startup
// only; per-request storage errors surface to callers unretried.
func GetDb() *gorm.DB {
	if db != nil {
		return db
	}
	var _db *gorm.DB
	var err error
	for attempt := 1; attempt <= 5; attempt++ {
		_db, err = gorm.Open(postgres.Open(config.GetDSN()))
		if err == nil {
			break
		}
		log.Printf("Error connecting to database (attempt %d): %s\n", attempt, err.Error())
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	if err != nil {
		log.Fatalf("Could not establish database connection: %s\n", err.Error())
	}
	sqlDB, err := _db.DB()
	if err != nil {
		log.Fatalf("Error establishing connection to database: %s\n", err.Error())
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	db = _db
	return _db
}

// NewDB replaces the shared instance, used by tests to inject a mock.
func NewDB(newdb *gorm.DB) {
	db = newdb
}
