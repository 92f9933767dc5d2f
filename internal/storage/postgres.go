package storage

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry is one row of the kv_entries table.
type KVEntry struct {
	Key       string `gorm:"primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (KVEntry) TableName() string {
	return "kv_entries"
}

type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("database connected")

	return NewGormStore(db)
}

// NewGormStore wraps an open gorm connection and migrates kv_entries.
func NewGormStore(db *gorm.DB) (*PostgresStore, error) {
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (ps *PostgresStore) Get(key string) (string, bool, error) {
	var entry KVEntry
	err := ps.db.Where("key = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return entry.Value, true, nil
}

func (ps *PostgresStore) Set(key, value string) error {
	entry := KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return ps.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (ps *PostgresStore) Delete(key string) error {
	return ps.db.Where("key = ?", key).Delete(&KVEntry{}).Error
}
