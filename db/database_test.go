package db

import (
	"path/filepath"
	"testing"

	"examination_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.db")

	require.NoError(t, Initialize("sqlite", path, "test"))
	t.Cleanup(func() {
		assert.NoError(t, Close())
		DB = nil
	})

	require.NoError(t, AutoMigrate(&models.KeyValueEntry{}))
	assert.True(t, DB.Migrator().HasTable("key_value_entries"))
}

func TestOpenRejectsUnknownDialect(t *testing.T) {
	_, err := Open("oracle", "x", "test")
	assert.Error(t, err)

	_, err = Open("postgres", "", "test")
	assert.Error(t, err)
}

func TestAutoMigrateRequiresConnection(t *testing.T) {
	DB = nil
	assert.Error(t, AutoMigrate(&models.KeyValueEntry{}))
	assert.NoError(t, Close())
}
