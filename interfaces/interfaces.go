// Package interfaces defines core abstractions for the pharma assistant
// API to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/pharma-assistant-api/analysis"
	"github.com/giygas/pharma-assistant-api/catalog/entities"
	"github.com/giygas/pharma-assistant-api/report"
)

// CatalogQualityReport provides a summary of catalog data quality issues
type CatalogQualityReport struct {
	DuplicateNames             []string // Normalized names declared more than once
	RecordsWithoutWarning      int
	RecordsWithoutInteractions int
	UnknownInteractionTargets  int // Declared partners that are not catalog entries
	AsymmetricInteractions     int // A lists B but B does not list A back
	SelfInteractions           int // Records listing themselves as a partner
}

// CatalogStore defines the contract for the medication reference catalog.
// The catalog is loaded once at startup and is read-only for the lifetime
// of the process, so implementations need no locking.
type CatalogStore interface {
	// Lookup resolves a medication by name, normalizing it first
	Lookup(name string) (entities.MedicationRecord, bool)

	// Records returns all catalog entries sorted by name
	Records() []entities.MedicationRecord

	// Names returns all medication display names sorted alphabetically
	Names() []string

	Count() int
	LoadedAt() time.Time
	Path() string

	// QualityReport returns the data quality summary computed at load time
	QualityReport() *CatalogQualityReport
}

// Analyzer defines the contract for the analysis pipeline. Analyze runs
// detection and report generation for one validated request. The only
// error it returns is *analysis.ClientInputError; every downstream
// failure is absorbed by the rules-based fallback.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*report.Document, error)
}

// Scheduler defines the contract for job scheduling and health monitoring.
// It manages the periodic catalog audits and system health checks.
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
// It provides a consistent interface for all API endpoints.
type HTTPHandler interface {
	// ServeHTTP implements the http.Handler interface
	ServeHTTP(w http.ResponseWriter, r *http.Request)

	// Specific endpoint handlers
	Analyze(w http.ResponseWriter, r *http.Request)
	ServeMedications(w http.ResponseWriter, r *http.Request)
	FindMedication(w http.ResponseWriter, r *http.Request)
	ServeAllergyOptions(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
// It provides system health monitoring and reporting.
type HealthChecker interface {
	// HealthCheck returns current system health status and the HTTP code
	// the /health endpoint should answer with
	HealthCheck() (status string, details map[string]any, httpStatus int)

	// CalculateNextAudit returns the next scheduled catalog audit time
	CalculateNextAudit() time.Time
}

// DataValidator defines the contract for data validation operations.
// It ensures catalog integrity and user input safety.
type DataValidator interface {
	// ValidateRecord checks if a single catalog record is usable
	ValidateRecord(r *entities.MedicationRecord) error

	// ValidateCatalogIntegrity performs comprehensive catalog validation
	ValidateCatalogIntegrity(records []entities.MedicationRecord) error

	// ReportCatalogQuality generates a quality report with all issues found
	ReportCatalogQuality(records []entities.MedicationRecord) *CatalogQualityReport

	// ValidateInput validates user input strings
	ValidateInput(input string) error
}
