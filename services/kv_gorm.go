package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"examination_app_go/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormKV stores values in the key_value_entries table through gorm
type GormKV struct {
	db *gorm.DB
}

// NewGormKV migrates the entry table and returns the store
func NewGormKV(database *gorm.DB) (*GormKV, error) {
	if database == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if err := database.AutoMigrate(&models.KeyValueEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate key_value_entries: %w", err)
	}
	return &GormKV{db: database}, nil
}

func (g *GormKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry models.KeyValueEntry
	err := g.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(entry.Payload), true, nil
}

func (g *GormKV) Set(ctx context.Context, key string, value []byte) error {
	entry := models.KeyValueEntry{
		Key:       key,
		Payload:   datatypes.JSON(value),
		UpdatedAt: time.Now().UTC(),
	}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&entry).Error
}

func (g *GormKV) Remove(ctx context.Context, key string) error {
	return g.db.WithContext(ctx).Delete(&models.KeyValueEntry{}, "key = ?", key).Error
}

func (g *GormKV) Name() string { return "gorm (" + g.db.Dialector.Name() + ")" }

// Close is a no-op; the connection belongs to the db package
func (g *GormKV) Close() error { return nil }
