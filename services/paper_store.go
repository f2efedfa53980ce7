package services

import (
	"context"

	"examination_app_go/models"
)

// PapersKey is the storage key of the question paper collection
const PapersKey = "examination_app_question_papers"

// PaperStore persists question papers as one JSON array
type PaperStore struct {
	*JSONCollection[models.Paper]
}

var _ Repository[models.Paper] = (*PaperStore)(nil)

// NewPaperStore creates a paper repository over kv
func NewPaperStore(kv KeyValueStore) *PaperStore {
	return &PaperStore{
		JSONCollection: NewJSONCollection(kv, PapersKey, func(p models.Paper) string { return p.ID }, ErrPaperNotFound),
	}
}

// Search lists papers whose name contains query, ignoring case
func (s *PaperStore) Search(ctx context.Context, query string) ([]models.Paper, error) {
	papers, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filterByName(papers, query, func(p models.Paper) string { return p.PaperName }), nil
}

// Seed stores the example paper when the collection is empty
func (s *PaperStore) Seed(ctx context.Context) (bool, error) {
	return s.seed(ctx, ExamplePaper())
}
