package models

import (
	"time"

	"gorm.io/datatypes"
)

// KeyValueEntry stores one collection (a JSON array) under a fixed key
type KeyValueEntry struct {
	Key       string         `gorm:"primarykey;size:191" json:"key"`
	Payload   datatypes.JSON `gorm:"not null" json:"payload"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName specifies the table name for KeyValueEntry model
func (KeyValueEntry) TableName() string {
	return "key_value_entries"
}
