package scheduler

import (
	"testing"
	"time"

	"github.com/giygas/pharma-assistant-api/catalog/entities"
	"github.com/giygas/pharma-assistant-api/interfaces"
)

// MockCatalogStore for testing scheduler
type mockSchedulerCatalog struct {
	records      []entities.MedicationRecord
	path         string
	loadedAt     time.Time
	quality      *interfaces.CatalogQualityReport
	recordsCalls int
	countCalls   int
}

func (m *mockSchedulerCatalog) Lookup(name string) (entities.MedicationRecord, bool) {
	normalized := entities.NormalizeName(name)
	for _, r := range m.records {
		if r.NameNormalized == normalized {
			return r, true
		}
	}
	return entities.MedicationRecord{}, false
}

func (m *mockSchedulerCatalog) Records() []entities.MedicationRecord {
	m.recordsCalls++
	return m.records
}

func (m *mockSchedulerCatalog) Names() []string {
	names := make([]string, 0, len(m.records))
	for _, r := range m.records {
		names = append(names, r.Name)
	}
	return names
}

func (m *mockSchedulerCatalog) Count() int {
	m.countCalls++
	return len(m.records)
}

func (m *mockSchedulerCatalog) LoadedAt() time.Time {
	return m.loadedAt
}

func (m *mockSchedulerCatalog) Path() string {
	return m.path
}

func (m *mockSchedulerCatalog) QualityReport() *interfaces.CatalogQualityReport {
	return m.quality
}

// MockDataValidator for testing scheduler
type mockSchedulerValidator struct {
	report       *interfaces.CatalogQualityReport
	qualityCalls int
	lastRecords  []entities.MedicationRecord
}

func (m *mockSchedulerValidator) ValidateRecord(r *entities.MedicationRecord) error {
	return nil
}

func (m *mockSchedulerValidator) ValidateCatalogIntegrity(records []entities.MedicationRecord) error {
	return nil
}

func (m *mockSchedulerValidator) ReportCatalogQuality(records []entities.MedicationRecord) *interfaces.CatalogQualityReport {
	m.qualityCalls++
	m.lastRecords = records
	if m.report != nil {
		return m.report
	}
	return &interfaces.CatalogQualityReport{DuplicateNames: []string{}}
}

func (m *mockSchedulerValidator) ValidateInput(input string) error {
	return nil
}

func schedulerTestRecords() []entities.MedicationRecord {
	return []entities.MedicationRecord{
		{
			Name:           "Aspirin",
			NameNormalized: "aspirin",
			Warning:        "May increase bleeding risk.",
			Interactions:   []string{"Warfarin"},
		},
		{
			Name:           "Warfarin",
			NameNormalized: "warfarin",
			Warning:        "Narrow therapeutic index anticoagulant.",
			Interactions:   []string{"Aspirin"},
		},
	}
}

func TestNewScheduler(t *testing.T) {
	mockCatalog := &mockSchedulerCatalog{records: schedulerTestRecords()}
	mockValidator := &mockSchedulerValidator{}

	scheduler := NewScheduler(mockCatalog, mockValidator)

	if scheduler == nil {
		t.Fatal("NewScheduler returned nil")
	}
	if scheduler.catalog != mockCatalog {
		t.Error("Scheduler catalog not wired to provided store")
	}
	if scheduler.validator != mockValidator {
		t.Error("Scheduler validator not wired to provided validator")
	}
	if scheduler.scheduler == nil {
		t.Error("Scheduler should create an internal gocron scheduler")
	}
}

func TestScheduler_StartAndStop(t *testing.T) {
	// Create mock dependencies
	mockCatalog := &mockSchedulerCatalog{
		records:  schedulerTestRecords(),
		path:     "drugs.json",
		loadedAt: time.Now(),
	}
	mockValidator := &mockSchedulerValidator{}

	scheduler := NewScheduler(mockCatalog, mockValidator)

	// Starting should register the audit jobs without error
	err := scheduler.Start()
	if err != nil {
		t.Errorf("Unexpected error during start: %v", err)
	}

	// Audits run at 06:00 and 18:00, so nothing fires during the test
	if mockValidator.qualityCalls != 0 {
		t.Errorf("Expected no audit runs immediately after start, got %d", mockValidator.qualityCalls)
	}

	// Clean up
	scheduler.Stop()
}

func TestScheduler_AuditRunsQualityChecks(t *testing.T) {
	// Create mock dependencies with a report that trips every advisory branch
	mockCatalog := &mockSchedulerCatalog{records: schedulerTestRecords()}
	mockValidator := &mockSchedulerValidator{
		report: &interfaces.CatalogQualityReport{
			DuplicateNames:             []string{"aspirin"},
			RecordsWithoutWarning:      3,
			RecordsWithoutInteractions: 2,
			UnknownInteractionTargets:  5,
			AsymmetricInteractions:     1,
			SelfInteractions:           1,
		},
	}

	scheduler := NewScheduler(mockCatalog, mockValidator)

	// Run the audit directly instead of waiting for the cron trigger
	scheduler.auditCatalog()

	if mockValidator.qualityCalls != 1 {
		t.Errorf("Expected 1 quality report call, got %d", mockValidator.qualityCalls)
	}

	// The audit must inspect the catalog's current records
	if len(mockValidator.lastRecords) != 2 {
		t.Errorf("Expected audit to pass 2 records to the validator, got %d", len(mockValidator.lastRecords))
	}
	if mockCatalog.recordsCalls != 1 {
		t.Errorf("Expected 1 Records call, got %d", mockCatalog.recordsCalls)
	}

	// Completion logging reads the medication count
	if mockCatalog.countCalls != 1 {
		t.Errorf("Expected 1 Count call, got %d", mockCatalog.countCalls)
	}
}

func TestScheduler_AuditWithCleanCatalog(t *testing.T) {
	// A clean report should not trip any advisory branch or panic
	mockCatalog := &mockSchedulerCatalog{records: schedulerTestRecords()}
	mockValidator := &mockSchedulerValidator{
		report: &interfaces.CatalogQualityReport{DuplicateNames: []string{}},
	}

	scheduler := NewScheduler(mockCatalog, mockValidator)

	scheduler.auditCatalog()

	if mockValidator.qualityCalls != 1 {
		t.Errorf("Expected 1 quality report call, got %d", mockValidator.qualityCalls)
	}
}

func TestScheduler_RepeatedAudits(t *testing.T) {
	// Audits are read-only over an immutable catalog, so repeated runs
	// must see the same records every time
	mockCatalog := &mockSchedulerCatalog{records: schedulerTestRecords()}
	mockValidator := &mockSchedulerValidator{}

	scheduler := NewScheduler(mockCatalog, mockValidator)

	scheduler.auditCatalog()
	scheduler.auditCatalog()
	scheduler.auditCatalog()

	if mockValidator.qualityCalls != 3 {
		t.Errorf("Expected 3 quality report calls, got %d", mockValidator.qualityCalls)
	}
	if len(mockValidator.lastRecords) != 2 {
		t.Errorf("Expected 2 records on every audit, got %d", len(mockValidator.lastRecords))
	}
}

// This test demonstrates how interfaces make testing much easier
// compared to a scheduler wired directly to the file loader
func TestScheduler_DependencyInjectionBenefits(t *testing.T) {
	// We can easily test with different implementations
	var catalog interfaces.CatalogStore = &mockSchedulerCatalog{records: schedulerTestRecords()}
	var validator interfaces.DataValidator = &mockSchedulerValidator{}

	// The scheduler works with any implementation of the interfaces
	scheduler := NewScheduler(catalog, validator)

	// We can verify behavior without needing real data files or timers
	err := scheduler.Start()
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	// Clean up
	scheduler.Stop()
}
