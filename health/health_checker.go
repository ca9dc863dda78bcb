// Package health provides health checking functionality for the pharma assistant API.
package health

import (
	"math"
	"net/http"
	"os"
	"time"

	"github.com/giygas/pharma-assistant-api/interfaces"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	catalog  interfaces.CatalogStore
	provider string
}

// NewHealthChecker creates a new health checker with injected dependencies.
// provider names the configured generative backend; empty means the service
// runs on the rules-based renderer alone.
func NewHealthChecker(catalog interfaces.CatalogStore, provider string) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		catalog:  catalog,
		provider: provider,
	}
}

// HealthCheck returns HTTP-specific health data.
// Used by /health HTTP endpoint.
//
// The catalog is loaded once at startup and is expected to stay static, so
// its age alone never degrades health. What does is the source file
// drifting away from memory: edited after load, or missing entirely.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	count := h.catalog.Count()
	loadedAt := h.catalog.LoadedAt()
	catalogAge := time.Since(loadedAt)

	fileState := "in_sync"
	if info, err := os.Stat(h.catalog.Path()); err != nil {
		fileState = "missing"
	} else if info.ModTime().After(loadedAt) {
		fileState = "changed_on_disk"
	}

	switch {
	case count == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case fileState != "in_sync":
		// Memory still serves the loaded records, flag for a restart
		status = "degraded"
		httpStatus = http.StatusOK

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	quality := h.catalog.QualityReport()

	provider := h.provider
	if provider == "" {
		provider = "disabled"
	}

	data = map[string]any{
		"catalog_loaded_at":       loadedAt.Format(time.RFC3339),
		"catalog_age_hours":       math.Round(catalogAge.Hours()*10) / 10,
		"catalog_file":            fileState,
		"medications":             count,
		"asymmetric_interactions": quality.AsymmetricInteractions,
		"generative_provider":     provider,
		"next_audit":              h.CalculateNextAudit().Format(time.RFC3339),
	}

	return status, data, httpStatus
}

// CalculateNextAudit returns the next scheduled catalog audit time
func (h *HealthCheckerImpl) CalculateNextAudit() time.Time {
	now := time.Now()

	// Get today's 6:00 AM and 6:00 PM times
	sixAM := time.Date(now.Year(), now.Month(), now.Day(), 6, 0, 0, 0, now.Location())
	sixPM := time.Date(now.Year(), now.Month(), now.Day(), 18, 0, 0, 0, now.Location())

	// If current time is before 6:00 AM, next audit is 6:00 AM today
	if now.Before(sixAM) {
		return sixAM
	}

	// If current time is between 6:00 AM and 6:00 PM, next audit is 6:00 PM today
	if now.Before(sixPM) {
		return sixPM
	}

	// If current time is after 6:00 PM, next audit is 6:00 AM tomorrow
	return sixAM.AddDate(0, 0, 1)
}
