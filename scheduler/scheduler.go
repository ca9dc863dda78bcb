// Package scheduler provides automated catalog auditing for the pharma
// assistant API. The medication catalog is immutable once loaded, so the
// scheduler does not refresh it: it re-audits the in-memory records on a
// cron schedule and watches the source file for drift that would require
// a restart to pick up.
package scheduler

import (
	"fmt"
	"os"
	"time"

	"github.com/giygas/pharma-assistant-api/interfaces"
	"github.com/giygas/pharma-assistant-api/logging"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles catalog audits and file drift monitoring using dependency injection
type Scheduler struct {
	catalog   interfaces.CatalogStore
	validator interfaces.DataValidator
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(catalog interfaces.CatalogStore, validator interfaces.DataValidator) *Scheduler {
	return &Scheduler{
		catalog:   catalog,
		validator: validator,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start initializes the scheduler with catalog audits and drift monitoring
func (s *Scheduler) Start() error {
	// Schedule audits at 06:00 and 18:00 daily
	_, err := s.scheduler.Every(1).Days().At("06:00;18:00").Do(func() {
		s.auditCatalog()
	})

	if err != nil {
		logging.Error("Failed to schedule catalog audits", "error", err)
		return fmt.Errorf("failed to schedule catalog audits: %w", err)
	}

	s.scheduler.StartAsync()

	// Start file drift monitoring
	s.startDriftMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// auditCatalog re-runs the quality checks against the in-memory records.
// The catalog never changes after load, so findings only repeat what the
// startup audit saw, but the scheduled run keeps them visible in logs that
// rotate weekly.
func (s *Scheduler) auditCatalog() {
	logging.Info(fmt.Sprintf("Starting catalog audit at: %s", time.Now().Format(time.RFC3339)))
	start := time.Now()

	report := s.validator.ReportCatalogQuality(s.catalog.Records())

	if report.RecordsWithoutWarning > 0 {
		logging.Warn("Records without warning text",
			"count", report.RecordsWithoutWarning,
		)
	}

	if report.UnknownInteractionTargets > 0 {
		logging.Warn("Interaction targets not present in catalog",
			"count", report.UnknownInteractionTargets,
		)
	}

	if report.AsymmetricInteractions > 0 {
		logging.Warn("Asymmetric interaction declarations",
			"count", report.AsymmetricInteractions,
		)
	}

	if report.SelfInteractions > 0 {
		logging.Warn("Self-referencing interaction declarations",
			"count", report.SelfInteractions,
		)
	}

	elapsed := time.Since(start)
	logging.Info("Catalog audit completed",
		"duration", elapsed.String(),
		"medication_count", s.catalog.Count(),
	)
}

// startDriftMonitoring watches the catalog source file for changes
func (s *Scheduler) startDriftMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			info, err := os.Stat(s.catalog.Path())
			if err != nil {
				logging.Warn("Catalog file missing on disk, in-memory data still serving",
					"path", s.catalog.Path(),
					"error", err,
				)
				continue
			}

			if info.ModTime().After(s.catalog.LoadedAt()) {
				logging.Warn("Catalog file changed on disk, restart required to pick up changes",
					"path", s.catalog.Path(),
					"modified_at", info.ModTime().Format(time.RFC3339),
					"loaded_at", s.catalog.LoadedAt().Format(time.RFC3339),
				)
			}
		}
	}()
}
