package services

import (
	"fmt"
	"log"

	"examination_app_go/config"
	"examination_app_go/db"
)

// NewKeyValueStore builds the backend named by cfg.StorageBackend
func NewKeyValueStore(cfg *config.Config) (KeyValueStore, error) {
	return NewKeyValueStoreFor(cfg.StorageBackend, cfg)
}

// NewKeyValueStoreFor builds a named backend using the connection settings in cfg
func NewKeyValueStoreFor(backend string, cfg *config.Config) (KeyValueStore, error) {
	var (
		store KeyValueStore
		err   error
	)

	switch backend {
	case config.BackendMemory:
		store = NewMemoryKV()
	case config.BackendFile:
		store, err = NewFileKV(cfg.DataDir)
	case config.BackendGorm, "":
		dsn := cfg.DBPath
		if cfg.DBDialect == "postgres" {
			dsn = cfg.DatabaseURL
		}
		if err = db.Initialize(cfg.DBDialect, dsn, cfg.Environment); err != nil {
			return nil, err
		}
		store, err = NewGormKV(db.DB)
	case config.BackendSQLite:
		store, err = NewSQLiteKV(cfg.DBPath)
	case config.BackendPostgres:
		store, err = NewPostgresKV(cfg.DatabaseURL)
	case config.BackendLibSQL:
		store, err = NewLibSQLKV(cfg.TursoDatabaseURL, cfg.TursoAuthToken)
	case config.BackendRedis:
		store, err = NewRedisKV(cfg.RedisURL, cfg.RedisPrefix)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", backend, err)
	}

	log.Printf("[INFO] Key-value store ready: %s", store.Name())
	return store, nil
}
