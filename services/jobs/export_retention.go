package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"examination_app_go/config"
	"examination_app_go/services"

	"github.com/robfig/cron/v3"
)

// StartScheduler schedules the export retention job and starts the cron.
// The caller stops it on shutdown.
func StartScheduler(cfg *config.Config, exports *services.ExportService) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(cfg.ExportCleanupSchedule, func() {
		log.Println("[CRON] Running export retention...")
		PurgeExpiredExports(exports, cfg.ExportRetention, time.Now())
	})
	if err != nil {
		return nil, fmt.Errorf("invalid EXPORT_CLEANUP_SCHEDULE %q: %w", cfg.ExportCleanupSchedule, err)
	}

	c.Start()
	log.Printf("[CRON] Scheduler started (export retention %s, schedule %q)", cfg.ExportRetention, cfg.ExportCleanupSchedule)
	return c, nil
}

// PurgeExpiredExports removes exports older than retention relative to now
func PurgeExpiredExports(exports *services.ExportService, retention time.Duration, now time.Time) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	deleted, err := exports.PurgeExpired(ctx, now.Add(-retention))
	if err != nil {
		log.Printf("[JOB] Error purging expired exports: %v", err)
		return 0
	}
	return deleted
}
