package services

import (
	"context"
	"errors"

	"examination_app_go/config"
	"examination_app_go/db"
	"examination_app_go/models"
)

// Stores bundles the persisted collections with the option catalog
type Stores struct {
	KV        KeyValueStore
	Templates *TemplateStore
	Papers    *PaperStore
	Catalog   models.Catalog
}

// OpenStores opens the configured backend, loads the catalog and seeds the
// example records when enabled
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	catalog, err := LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	kv, err := NewKeyValueStore(cfg)
	if err != nil {
		return nil, err
	}

	s := &Stores{
		KV:        kv,
		Templates: NewTemplateStore(kv),
		Papers:    NewPaperStore(kv),
		Catalog:   catalog,
	}
	if cfg.SeedExamples {
		if err := SeedExamples(ctx, s.Templates, s.Papers); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close releases the backend and the shared database handle
func (s *Stores) Close() error {
	return errors.Join(s.KV.Close(), db.Close())
}
