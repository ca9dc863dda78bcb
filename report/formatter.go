package report

import (
	"fmt"
	"strings"

	"github.com/giygas/pharma-assistant-api/analysis"
)

// MaxReportBytes bounds the report body. Anything larger is rejected
// before it reaches a client.
const MaxReportBytes = 512 << 10

// RejectionReason classifies why a report body failed validation.
type RejectionReason string

const (
	RejectMissingDisclaimer  RejectionReason = "MissingDisclaimer"
	RejectUnauthorizedDosing RejectionReason = "UnauthorizedDosing"
	RejectEmptyOrOversized   RejectionReason = "EmptyOrOversized"
)

// FormatViolation is returned when a report body breaks the output
// contract. It carries the first failed check only.
type FormatViolation struct {
	Reason RejectionReason
	Detail string
}

func (e *FormatViolation) Error() string {
	return fmt.Sprintf("report rejected (%s): %s", e.Reason, e.Detail)
}

// Formatter validates report bodies against the output contract: not
// empty, within MaxReportBytes, disclaimer present verbatim, and no
// numeric dosing beyond what the catalog warnings for this analysis
// already state.
type Formatter struct{}

// Validate returns nil when body satisfies the contract, otherwise a
// *FormatViolation for the first failed check. The facts are the catalog
// context of the current analysis and define the authorized dosing
// numbers.
func (Formatter) Validate(body string, facts []analysis.MedicationFact) error {
	if strings.TrimSpace(body) == "" {
		return &FormatViolation{Reason: RejectEmptyOrOversized, Detail: "report body is empty"}
	}
	if len(body) > MaxReportBytes {
		return &FormatViolation{
			Reason: RejectEmptyOrOversized,
			Detail: fmt.Sprintf("report body is %d bytes, limit is %d", len(body), MaxReportBytes),
		}
	}
	if !strings.Contains(strings.ToLower(body), strings.ToLower(Disclaimer)) {
		return &FormatViolation{Reason: RejectMissingDisclaimer, Detail: "mandatory disclaimer is missing"}
	}
	allowed := AllowedDosingNumbers(facts)
	for _, m := range analysis.DosingMention.FindAllStringSubmatch(body, -1) {
		if !allowed[normalizeNumber(m[1])] {
			return &FormatViolation{
				Reason: RejectUnauthorizedDosing,
				Detail: fmt.Sprintf("dosing mention %q is not backed by the catalog warnings", strings.TrimSpace(m[0])),
			}
		}
	}
	return nil
}

// AllowedDosingNumbers collects every numeric dosing value present in the
// catalog warnings of the analyzed medications. Values are compared
// numerically, so "2,5", "2.5" and "2.50" authorize each other.
func AllowedDosingNumbers(facts []analysis.MedicationFact) map[string]bool {
	allowed := make(map[string]bool)
	for _, fact := range facts {
		for _, m := range analysis.DosingMention.FindAllStringSubmatch(fact.Warning, -1) {
			allowed[normalizeNumber(m[1])] = true
		}
	}
	return allowed
}

func normalizeNumber(s string) string {
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}
