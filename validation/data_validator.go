// Package validation provides data validation functionality for the pharma assistant API.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/giygas/pharma-assistant-api/catalog/entities"
	"github.com/giygas/pharma-assistant-api/interfaces"
	"github.com/giygas/pharma-assistant-api/logging"
)

// Record size limits. Warnings are quoted verbatim in reports, so the
// warning cap also bounds the rendered report size.
const (
	MaxNameLength    = 100
	MaxWarningLength = 600
)

// Pre-compiled regex patterns for performance optimization
// Compiled once at package initialization and reused for all validations
var (
	// Input validation: alphanumeric + accented letters + safe punctuation
	inputRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.\+'àâäéèêëïîôöùûüÿç]+$`)

	// Dangerous patterns as strings (faster than regex for simple substring matching)
	// strings.Contains is 5-10x faster than regex for these patterns
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "onfocus=", "onblur=", "onchange=", "onsubmit=",
		"eval(", "expression(", "url(", "import ", "@import", "binding(", "behavior(",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"update set", "--", "/*", "*/", "xp_", "sp_", "exec(", "execute(",
		// Command injection patterns
		"; ", "| ", "& ", "`", "$(", "${", // Command injection
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://", // Path traversal
		// LDAP injection patterns
		"*)(", "*|(", "*)%", // LDAP injection
		// NoSQL injection patterns
		"{$ne:", "{$gt:", "{$where:", "{$or:", "{$regex:", "{$expr:", // NoSQL injection
	}
)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateRecord checks if a catalog record is usable
func (v *DataValidatorImpl) ValidateRecord(r *entities.MedicationRecord) error {
	if r == nil {
		return fmt.Errorf("record is nil")
	}

	// Validate name
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("empty medication name")
	}

	if len(r.Name) > MaxNameLength {
		return fmt.Errorf("name too long for %q: %d characters", r.Name[:MaxNameLength], len(r.Name))
	}

	// Validate warning text
	if len(r.Warning) > MaxWarningLength {
		return fmt.Errorf("warning too long for %s: %d characters", r.Name, len(r.Warning))
	}

	// Validate interaction targets
	for _, partner := range r.Interactions {
		if strings.TrimSpace(partner) == "" {
			return fmt.Errorf("empty interaction target for %s", r.Name)
		}
		if len(partner) > MaxNameLength {
			return fmt.Errorf("interaction target too long for %s: %d characters", r.Name, len(partner))
		}
	}

	return nil
}

// ValidateCatalogIntegrity performs comprehensive catalog validation
func (v *DataValidatorImpl) ValidateCatalogIntegrity(records []entities.MedicationRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("no medication records found")
	}

	// Check for duplicate normalized names
	nameMap := make(map[string]bool, len(records))
	for i := range records {
		rec := &records[i]
		if err := v.ValidateRecord(rec); err != nil {
			return fmt.Errorf("invalid record %q: %w", rec.Name, err)
		}

		key := entities.NormalizeName(rec.Name)
		if nameMap[key] {
			return fmt.Errorf("duplicate medication name found: %s", rec.Name)
		}
		nameMap[key] = true
	}

	return nil
}

// ReportCatalogQuality generates a data quality report with all issues found.
// Quality issues are advisory: an asymmetric or dangling interaction
// declaration still contributes to detection, it is just worth fixing in
// the source file.
func (v *DataValidatorImpl) ReportCatalogQuality(records []entities.MedicationRecord) *interfaces.CatalogQualityReport {
	report := &interfaces.CatalogQualityReport{
		DuplicateNames:             []string{},
		RecordsWithoutWarning:      0,
		RecordsWithoutInteractions: 0,
		UnknownInteractionTargets:  0,
		AsymmetricInteractions:     0,
		SelfInteractions:           0,
	}

	// Check 1: Find all duplicate normalized names
	byName := make(map[string]*entities.MedicationRecord, len(records))
	for i := range records {
		key := entities.NormalizeName(records[i].Name)
		if _, exists := byName[key]; exists {
			report.DuplicateNames = append(report.DuplicateNames, records[i].Name)
			continue
		}
		byName[key] = &records[i]
	}

	// Check 2: Count records without warning text or interaction targets
	for i := range records {
		if strings.TrimSpace(records[i].Warning) == "" {
			report.RecordsWithoutWarning++
		}
		if len(records[i].Interactions) == 0 {
			report.RecordsWithoutInteractions++
		}
	}

	// Check 3: Classify every declared interaction target
	for i := range records {
		selfKey := entities.NormalizeName(records[i].Name)
		for _, partner := range records[i].Interactions {
			partnerKey := entities.NormalizeName(partner)

			if partnerKey == selfKey {
				report.SelfInteractions++
				continue
			}

			target, exists := byName[partnerKey]
			if !exists {
				report.UnknownInteractionTargets++
				continue
			}

			// The detector matches both directions, so this only flags
			// the source data for cleanup
			if !declaresBack(target, selfKey) {
				report.AsymmetricInteractions++
			}
		}
	}

	// Log duplicates as errors, they mean one record shadowed another at load
	if len(report.DuplicateNames) > 0 {
		logging.Error("Duplicate medication names detected",
			"count", len(report.DuplicateNames),
			"duplicates", report.DuplicateNames,
		)
	}

	return report
}

// declaresBack reports whether rec lists the given normalized name among
// its interaction targets
func declaresBack(rec *entities.MedicationRecord, key string) bool {
	for _, partner := range rec.Interactions {
		if entities.NormalizeName(partner) == key {
			return true
		}
	}
	return false
}

// ValidateInput validates user input strings with enhanced security
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) < 3 {
		return fmt.Errorf("input too short: minimum 3 characters")
	}

	if len(input) > 50 {
		return fmt.Errorf("input too long: maximum 50 characters")
	}

	// Word count validation to prevent DoS attacks with many short words
	words := strings.Fields(input)
	if len(words) > 6 {
		return fmt.Errorf("search query too complex: maximum 6 words allowed")
	}

	// Check for potentially dangerous patterns using string matching (5-10x faster than regex)
	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	// Allow only alphanumeric characters, spaces, and safe punctuation
	// More restrictive pattern: letters, numbers, spaces, hyphens, apostrophes, periods, and plus sign
	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces, hyphens, apostrophes, periods, plus sign, and common accented characters are allowed")
	}

	// Additional checks for repeated characters (potential DoS)
	if v.hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// hasExcessiveRepetition checks for potential DoS patterns with excessive character repetition
func (v *DataValidatorImpl) hasExcessiveRepetition(input string) bool {
	// Check for the same character repeated more than 10 times consecutively
	for i := 0; i < len(input)-10; i++ {
		allSame := true
		for j := 1; j <= 10; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}
