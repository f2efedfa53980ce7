package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"examination_app_go/models"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
)

// DocumentRenderer produces the standalone HTML document of a preview
type DocumentRenderer func(ctx context.Context, preview PaperPreview) (string, error)

// ExportService runs paper exports in the background and tracks their jobs.
// Exports only read the paper they are given.
type ExportService struct {
	renderer  PDFRenderer
	document  DocumentRenderer
	artifacts ArtifactStore
	timeout   time.Duration
	options   PDFOptions

	mu   sync.RWMutex
	jobs map[string]*models.ExportJob
	wg   sync.WaitGroup
}

// NewExportService wires the renderers and artifact store
func NewExportService(renderer PDFRenderer, document DocumentRenderer, artifacts ArtifactStore, timeout time.Duration) *ExportService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ExportService{
		renderer:  renderer,
		document:  document,
		artifacts: artifacts,
		timeout:   timeout,
		options:   DefaultPDFOptions(),
		jobs:      make(map[string]*models.ExportJob),
	}
}

// StartPDFExport registers a pending job and renders it in its own goroutine.
// The work is detached from ctx cancellation and bounded by the export timeout.
func (s *ExportService) StartPDFExport(ctx context.Context, paper models.Paper) models.ExportJob {
	job := &models.ExportJob{
		ID:        uuid.New().String(),
		PaperID:   paper.ID,
		PaperName: paper.PaperName,
		Format:    models.ExportFormatPDF,
		Status:    models.ExportStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	snapshot := *job
	s.mu.Unlock()

	snap := paper.Clone()
	runCtx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(runCtx, job.ID, snap)
	}()

	log.Printf("[EXPORT] Queued %s export %s for paper %s", job.Format, job.ID, paper.ID)
	return snapshot
}

func (s *ExportService) run(parent context.Context, jobID string, paper models.Paper) {
	started := time.Now()
	s.update(jobID, func(j *models.ExportJob) { j.Status = models.ExportStatusRunning })

	var (
		stored *StoredArtifact
		pages  int
		err    error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("unexpected failure: %v", r)
			}
		}()
		ctx, cancel := context.WithTimeout(parent, s.timeout)
		defer cancel()
		stored, pages, err = s.export(ctx, paper)
	}()

	exportDuration.Observe(time.Since(started).Seconds())
	finished := time.Now().UTC()

	if err != nil {
		exportErr := &ExportError{PaperID: paper.ID, Err: err}
		log.Printf("[EXPORT] Job %s failed: %v", jobID, exportErr)
		exportJobsFinished.WithLabelValues(models.ExportFormatPDF, models.ExportStatusFailed).Inc()
		s.update(jobID, func(j *models.ExportJob) {
			j.Status = models.ExportStatusFailed
			j.Error = exportErr.Error()
			j.FinishedAt = &finished
		})
		return
	}

	log.Printf("[EXPORT] Job %s stored %s (%d pages)", jobID, stored.Key, pages)
	exportJobsFinished.WithLabelValues(models.ExportFormatPDF, models.ExportStatusSucceeded).Inc()
	s.update(jobID, func(j *models.ExportJob) {
		j.Status = models.ExportStatusSucceeded
		j.StorageKey = stored.Key
		j.URL = stored.URL
		j.FileSize = stored.FileSize
		j.PageCount = pages
		j.FinishedAt = &finished
	})
}

func (s *ExportService) export(ctx context.Context, paper models.Paper) (*StoredArtifact, int, error) {
	html, err := s.document(ctx, BuildPaperPreview(paper))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to render document: %w", err)
	}
	if !strings.Contains(html, `id="print-content"`) {
		return nil, 0, fmt.Errorf("%s: %w", PrintRootSelector, ErrPrintRootMissing)
	}

	data, err := s.renderer.RenderPDF(ctx, html, PrintRootSelector, s.options)
	if err != nil {
		return nil, 0, err
	}

	pages, err := CountPDFPages(data)
	if err != nil {
		log.Printf("[WARNING] Could not count pages of export for paper %s: %v", paper.ID, err)
	}

	key := GenerateExportKey(paper.ID, ExportBaseName(paper.PaperName), ".pdf")
	stored, err := s.artifacts.Put(ctx, bytes.NewReader(data), key, "application/pdf", int64(len(data)))
	if err != nil {
		return nil, 0, err
	}
	if stored.URL == "" {
		if url, err := s.artifacts.GetSignedURL(ctx, key, time.Hour); err == nil {
			stored.URL = url
		}
	}
	return stored, pages, nil
}

func (s *ExportService) update(jobID string, fn func(j *models.ExportJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[jobID]; ok {
		fn(j)
	}
}

// Job returns a snapshot of the job
func (s *ExportService) Job(id string) (models.ExportJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return models.ExportJob{}, false
	}
	return *j, true
}

// JobsForPaper returns the paper's jobs, newest first
func (s *ExportService) JobsForPaper(paperID string) []models.ExportJob {
	s.mu.RLock()
	var out []models.ExportJob
	for _, j := range s.jobs {
		if j.PaperID == paperID {
			out = append(out, *j)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out
}

// ForgetFinishedBefore drops finished jobs older than cutoff and returns how many
func (s *ExportService) ForgetFinishedBefore(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, j := range s.jobs {
		if j.IsFinished() && j.FinishedAt != nil && j.FinishedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// PurgeExpired deletes stored exports last modified before cutoff and forgets
// finished jobs of the same age. It returns how many artifacts were deleted.
func (s *ExportService) PurgeExpired(ctx context.Context, cutoff time.Time) (int, error) {
	artifacts, err := s.artifacts.List(ctx, ExportKeyPrefix)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, a := range artifacts {
		if !a.LastModified.Before(cutoff) {
			continue
		}
		if err := s.artifacts.Delete(ctx, a.Key); err != nil {
			log.Printf("[WARNING] Failed to delete expired export %s: %v", a.Key, err)
			continue
		}
		deleted++
	}
	exportArtifactsPurged.Add(float64(deleted))

	forgotten := s.ForgetFinishedBefore(cutoff)
	log.Printf("[EXPORT] Retention removed %d artifacts and %d finished jobs", deleted, forgotten)
	return deleted, nil
}

// Wait blocks until every started export has finished
func (s *ExportService) Wait() {
	s.wg.Wait()
}

// Artifacts returns the store exports are written to
func (s *ExportService) Artifacts() ArtifactStore {
	return s.artifacts
}

// CountPDFPages reads the page count of a PDF document
func CountPDFPages(data []byte) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("failed to read PDF: %v", r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF: %w", err)
	}
	return reader.NumPage(), nil
}
