package gormClient

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Maximum number of connection attempts
const maxAttempts = 10

// NewClient creates a new MySQL client using GORM.
// It keeps attempting to connect to the database until successful, or until maxAttempts has been reached.
// In case of a failure, it returns an error.
// TranslateError is on so duplicate-key conflicts surface as gorm.ErrDuplicatedKey.
func NewClient() (*gorm.DB, error) {
	dsn := os.Getenv("MYSQL_DSN")

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
		if err != nil {
			log.Printf("Attempt %d: MySQL not ready, backing off for two seconds...", attempt)
			time.Sleep(2 * time.Second)
		} else {
			log.Println("Connected to database!")
			return db, nil
		}
	}

	return nil, fmt.Errorf("connection attempts exceeded: could not connect to MySQL")
}
