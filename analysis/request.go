// Package analysis implements the deterministic core of the interaction
// pipeline: request validation, interaction detection and the finding
// types every report is built from. Everything in this package is pure.
// No I/O, no clock, no failures beyond client-input rejection.
package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/giygas/pharma-assistant-api/catalog/entities"
)

// Request input bounds. MinMedications is the clinical floor for a pairwise
// analysis; the upper bounds keep the rules-based report within the
// formatter's size contract for any input.
const (
	MinMedications = 2
	MaxMedications = 20
	MaxAllergies   = 10
)

// DosingMention matches an explicit numeric dosing instruction such as
// "200 mg" or "2.5ml". It is shared by the formatter (output contract) and
// request validation (names must not smuggle dosing into a report).
// "kg" is deliberately absent: body weight is not a dose.
var DosingMention = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(mg|mcg|µg|g|ml|l|iu|units?|tablets?|capsules?|drops?)\b`)

// ClientInputError is a request the caller must fix. It is the only error
// the analysis pipeline ever surfaces; everything downstream recovers
// internally.
type ClientInputError struct {
	Message string
}

func (e *ClientInputError) Error() string {
	return e.Message
}

// Request is the validated payload an analysis runs on.
type Request struct {
	PatientID   string   `json:"patient_id"`
	PatientName string   `json:"patient_name"`
	Age         int      `json:"age"`
	Weight      float64  `json:"weight"`
	Allergies   []string `json:"allergies"`
	Medications []string `json:"medications"`
}

// Normalize trims identifiers, drops empty entries and deduplicates the
// medication list case-insensitively while preserving submission order.
// The first spelling of a duplicated medication wins for display.
func (r *Request) Normalize() {
	r.PatientID = strings.TrimSpace(r.PatientID)
	r.PatientName = strings.TrimSpace(r.PatientName)

	seen := make(map[string]bool, len(r.Medications))
	meds := make([]string, 0, len(r.Medications))
	for _, med := range r.Medications {
		med = strings.TrimSpace(med)
		if med == "" {
			continue
		}
		key := entities.NormalizeName(med)
		if seen[key] {
			continue
		}
		seen[key] = true
		meds = append(meds, med)
	}
	r.Medications = meds

	allergies := make([]string, 0, len(r.Allergies))
	for _, allergy := range r.Allergies {
		allergy = strings.TrimSpace(allergy)
		if allergy != "" {
			allergies = append(allergies, allergy)
		}
	}
	r.Allergies = allergies
}

// Validate enforces the client-input contract. Callers must Normalize
// first. A nil return means the request can be analyzed.
func (r *Request) Validate() error {
	if r.PatientID == "" || r.PatientName == "" {
		return &ClientInputError{Message: "Please provide patient ID and patient name."}
	}
	if r.Age < 0 {
		return &ClientInputError{Message: "Age must be zero or greater."}
	}
	if r.Weight < 0 {
		return &ClientInputError{Message: "Weight must be zero or greater."}
	}
	if len(r.Medications) < MinMedications {
		return &ClientInputError{Message: "Please select at least two medications."}
	}
	if len(r.Medications) > MaxMedications {
		return &ClientInputError{Message: fmt.Sprintf("Too many medications: maximum %d per analysis.", MaxMedications)}
	}
	if len(r.Allergies) > MaxAllergies {
		return &ClientInputError{Message: fmt.Sprintf("Too many allergies: maximum %d per analysis.", MaxAllergies)}
	}
	if DosingMention.MatchString(r.PatientID) || DosingMention.MatchString(r.PatientName) {
		return &ClientInputError{Message: "Patient identifiers must not include dosing information."}
	}
	for _, med := range r.Medications {
		if DosingMention.MatchString(med) {
			return &ClientInputError{Message: fmt.Sprintf("Medication name %q must not include dosing information.", med)}
		}
	}
	for _, allergy := range r.Allergies {
		if DosingMention.MatchString(allergy) {
			return &ClientInputError{Message: fmt.Sprintf("Allergy %q must not include dosing information.", allergy)}
		}
	}
	return nil
}
