package services

import (
	"context"

	"examination_app_go/models"
)

// TemplatesKey is the storage key of the template collection
const TemplatesKey = "examination_app_templates"

// TemplateStore persists templates as one JSON array
type TemplateStore struct {
	*JSONCollection[models.Template]
}

var _ Repository[models.Template] = (*TemplateStore)(nil)

// NewTemplateStore creates a template repository over kv
func NewTemplateStore(kv KeyValueStore) *TemplateStore {
	return &TemplateStore{
		JSONCollection: NewJSONCollection(kv, TemplatesKey, func(t models.Template) string { return t.ID }, ErrTemplateNotFound),
	}
}

// Search lists templates whose name contains query, ignoring case
func (s *TemplateStore) Search(ctx context.Context, query string) ([]models.Template, error) {
	templates, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filterByName(templates, query, func(t models.Template) string { return t.TemplateName }), nil
}

// Seed stores the example template when the collection is empty
func (s *TemplateStore) Seed(ctx context.Context) (bool, error) {
	return s.seed(ctx, ExampleTemplate())
}
