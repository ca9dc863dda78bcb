package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/pharma-assistant-api/analysis"
	"github.com/giygas/pharma-assistant-api/catalog/entities"
	"github.com/giygas/pharma-assistant-api/interfaces"
	"github.com/giygas/pharma-assistant-api/report"
)

// ============================================================================
// TEST DATA FACTORY
// ============================================================================

// TestDataFactory creates consistent test data across all tests
type TestDataFactory struct{}

func NewTestDataFactory() *TestDataFactory {
	return &TestDataFactory{}
}

// CreateRecord creates a single catalog record with realistic fields
func (f *TestDataFactory) CreateRecord(name, warning string, interactions ...string) entities.MedicationRecord {
	if interactions == nil {
		interactions = []string{}
	}
	return entities.MedicationRecord{
		Name:           name,
		NameNormalized: entities.NormalizeName(name),
		Warning:        warning,
		Interactions:   interactions,
	}
}

// CreateRecords creates count distinct catalog records
func (f *TestDataFactory) CreateRecords(count int) []entities.MedicationRecord {
	records := make([]entities.MedicationRecord, count)
	for i := 0; i < count; i++ {
		records[i] = f.CreateRecord(
			fmt.Sprintf("Medication %d", i+1),
			fmt.Sprintf("Warning text for medication %d.", i+1),
		)
	}
	return records
}

// CreateDocument creates a complete analysis document
func (f *TestDataFactory) CreateDocument() *report.Document {
	return &report.Document{
		AppName:     report.AppName,
		ReportID:    "11111111-2222-3333-4444-555555555555",
		PatientID:   "PT-1042",
		PatientName: "Jane Doe",
		GeneratedAt: "2026-03-14T09:26:53Z",
		Report:      "Safety Notice:\n" + report.Disclaimer,
		Source:      report.SourceRules,
	}
}

// ============================================================================
// MOCK BUILDERS
// ============================================================================

// MockCatalogBuilder provides a fluent interface for building mock catalogs
type MockCatalogBuilder struct {
	mock *MockCatalog
}

func NewMockCatalogBuilder() *MockCatalogBuilder {
	return &MockCatalogBuilder{
		mock: &MockCatalog{
			records:  []entities.MedicationRecord{},
			path:     "drugs.json",
			loadedAt: time.Now(),
		},
	}
}

func (b *MockCatalogBuilder) WithRecords(records []entities.MedicationRecord) *MockCatalogBuilder {
	b.mock.records = records
	return b
}

func (b *MockCatalogBuilder) WithPath(path string) *MockCatalogBuilder {
	b.mock.path = path
	return b
}

func (b *MockCatalogBuilder) WithLoadedAt(loadedAt time.Time) *MockCatalogBuilder {
	b.mock.loadedAt = loadedAt
	return b
}

func (b *MockCatalogBuilder) Build() *MockCatalog {
	return b.mock
}

// MockDataValidatorBuilder provides a fluent interface for building mock validators
type MockDataValidatorBuilder struct {
	mock *MockDataValidator
}

func NewMockDataValidatorBuilder() *MockDataValidatorBuilder {
	return &MockDataValidatorBuilder{mock: &MockDataValidator{}}
}

func (b *MockDataValidatorBuilder) WithInputError(err error) *MockDataValidatorBuilder {
	b.mock.validateInputError = err
	return b
}

func (b *MockDataValidatorBuilder) Build() *MockDataValidator {
	return b.mock
}

// MockAnalyzerBuilder provides a fluent interface for building mock analyzers
type MockAnalyzerBuilder struct {
	mock *MockAnalyzer
}

func NewMockAnalyzerBuilder() *MockAnalyzerBuilder {
	return &MockAnalyzerBuilder{mock: &MockAnalyzer{}}
}

func (b *MockAnalyzerBuilder) WithDocument(doc *report.Document) *MockAnalyzerBuilder {
	b.mock.document = doc
	return b
}

func (b *MockAnalyzerBuilder) WithError(err error) *MockAnalyzerBuilder {
	b.mock.err = err
	return b
}

func (b *MockAnalyzerBuilder) Build() *MockAnalyzer {
	return b.mock
}

// ============================================================================
// HTTP TEST UTILITIES
// ============================================================================

// HTTPTestHelper provides utilities for HTTP handler testing
type HTTPTestHelper struct {
	t *testing.T
}

func NewHTTPTestHelper(t *testing.T) *HTTPTestHelper {
	return &HTTPTestHelper{t: t}
}

// ExecuteRequest executes an HTTP handler with given parameters
func (h *HTTPTestHelper) ExecuteRequest(handler http.HandlerFunc, method, path string, urlParams map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)

	if len(urlParams) > 0 {
		rctx := chi.NewRouteContext()
		for key, value := range urlParams {
			rctx.URLParams.Add(key, value)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// ExecuteJSONRequest executes an HTTP handler with a JSON request body
func (h *HTTPTestHelper) ExecuteJSONRequest(handler http.HandlerFunc, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// AssertJSONResponse asserts that response contains valid JSON with expected status
func (h *HTTPTestHelper) AssertJSONResponse(resp *httptest.ResponseRecorder, expectedStatus int, target any) {
	if resp.Code != expectedStatus {
		h.t.Errorf("Expected status %d, got %d", expectedStatus, resp.Code)
	}

	bodyStr := resp.Body.String()
	if bodyStr == "" {
		h.t.Error("Response body should not be empty")
	}

	err := json.Unmarshal([]byte(bodyStr), target)
	if err != nil {
		h.t.Errorf("Response should be valid JSON, got error: %v", err)
	}
}

// AssertErrorResponse asserts that response contains an error with expected status
func (h *HTTPTestHelper) AssertErrorResponse(resp *httptest.ResponseRecorder, expectedStatus int) {
	if resp.Code != expectedStatus {
		h.t.Errorf("Expected status %d, got %d", expectedStatus, resp.Code)
	}

	var errorResp map[string]any
	err := json.Unmarshal(resp.Body.Bytes(), &errorResp)
	if err != nil {
		h.t.Errorf("Error response should be valid JSON, got error: %v", err)
	}

	// Check that it has error fields
	if _, ok := errorResp["message"]; !ok {
		h.t.Error("Error response should have message field")
	}
	if _, ok := errorResp["code"]; !ok {
		h.t.Error("Error response should have code field")
	}
}

// AssertErrorMessage asserts the error status and the exact message text
func (h *HTTPTestHelper) AssertErrorMessage(resp *httptest.ResponseRecorder, expectedStatus int, expectedMessage string) {
	h.AssertErrorResponse(resp, expectedStatus)

	var errorResp map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &errorResp); err != nil {
		return
	}
	if errorResp["message"] != expectedMessage {
		h.t.Errorf("Expected message %q, got %v", expectedMessage, errorResp["message"])
	}
}

// ============================================================================
// MOCK IMPLEMENTATIONS
// ============================================================================

// MockCatalog implements interfaces.CatalogStore for testing
type MockCatalog struct {
	records  []entities.MedicationRecord
	path     string
	loadedAt time.Time

	// Method call tracking
	lookupCalled   bool
	lastLookupName string
	namesCalled    bool
	recordsCalled  bool
}

func (m *MockCatalog) Lookup(name string) (entities.MedicationRecord, bool) {
	m.lookupCalled = true
	m.lastLookupName = name

	key := entities.NormalizeName(name)
	for _, rec := range m.records {
		if entities.NormalizeName(rec.Name) == key {
			return rec, true
		}
	}
	return entities.MedicationRecord{}, false
}

func (m *MockCatalog) Records() []entities.MedicationRecord {
	m.recordsCalled = true
	return m.records
}

func (m *MockCatalog) Names() []string {
	m.namesCalled = true
	names := make([]string, 0, len(m.records))
	for _, rec := range m.records {
		names = append(names, rec.Name)
	}
	return names
}

func (m *MockCatalog) Count() int          { return len(m.records) }
func (m *MockCatalog) LoadedAt() time.Time { return m.loadedAt }
func (m *MockCatalog) Path() string        { return m.path }

func (m *MockCatalog) QualityReport() *interfaces.CatalogQualityReport {
	return &interfaces.CatalogQualityReport{DuplicateNames: []string{}}
}

// MockAnalyzer implements interfaces.Analyzer for testing
type MockAnalyzer struct {
	document *report.Document
	err      error

	analyzeCalled bool
	lastRequest   analysis.Request
}

func (m *MockAnalyzer) Analyze(ctx context.Context, req analysis.Request) (*report.Document, error) {
	m.analyzeCalled = true
	m.lastRequest = req
	if m.err != nil {
		return nil, m.err
	}
	return m.document, nil
}

// MockDataValidator implements interfaces.DataValidator for testing
type MockDataValidator struct {
	validateInputError error

	validateInputCalled bool
	lastValidatedInput  string
}

func (m *MockDataValidator) ValidateRecord(r *entities.MedicationRecord) error {
	return nil
}

func (m *MockDataValidator) ValidateCatalogIntegrity(records []entities.MedicationRecord) error {
	return nil
}

func (m *MockDataValidator) ReportCatalogQuality(records []entities.MedicationRecord) *interfaces.CatalogQualityReport {
	return &interfaces.CatalogQualityReport{DuplicateNames: []string{}}
}

func (m *MockDataValidator) ValidateInput(input string) error {
	m.validateInputCalled = true
	m.lastValidatedInput = input
	return m.validateInputError
}

// MockHealthChecker implements interfaces.HealthChecker for testing
type MockHealthChecker struct {
	status     string
	details    map[string]any
	httpStatus int
}

func (m *MockHealthChecker) HealthCheck() (string, map[string]any, int) {
	return m.status, m.details, m.httpStatus
}

func (m *MockHealthChecker) CalculateNextAudit() time.Time {
	return time.Date(2026, time.March, 14, 18, 0, 0, 0, time.Local)
}
