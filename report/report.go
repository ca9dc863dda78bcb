// Package report holds the clinical report contract: the document
// envelope, the output formatter every report body must satisfy, the
// deterministic rules-based renderer and the prompt for the generative
// path. The wording of the constants below is load-bearing; downstream
// consumers match on it.
package report

import "github.com/giygas/pharma-assistant-api/analysis"

const (
	// AppName labels every report envelope.
	AppName = "Pharma Assistant"

	// Disclaimer must appear verbatim in every report body, whatever
	// produced it.
	Disclaimer = "Clinical decision-support tool only. Final prescribing authority rests with a licensed healthcare professional."

	// InsufficientData is the exact phrase used when no conflict signal
	// exists to summarize.
	InsufficientData = "Insufficient clinical data available."
)

// Severity labels, from the clinical triage ladder. SeverityHigh is an
// exact marker string reviewers scan for.
const (
	SeverityHigh        = "HIGH RISK - URGENT CLINICAL REVIEW REQUIRED."
	SeverityModerate    = "Moderate"
	SeverityLowModerate = "Low to Moderate"
)

// Section headers, in required order.
const (
	SectionSeverity       = "Interaction Severity"
	SectionRiskSummary    = "Clinical Risk Summary"
	SectionRecommendation = "Recommendation"
	SectionSafetyNotice   = "Safety Notice"
)

// ClassifySeverity maps a detection result onto the severity ladder: any
// allergy conflict or two or more interactions is high risk, a clean
// result is low to moderate, a single interaction sits in between.
func ClassifySeverity(res analysis.Result) string {
	interactions := 0
	for _, f := range res.Findings {
		if f.Kind == analysis.KindInteraction {
			interactions++
		}
	}
	switch {
	case interactions >= 2 || res.AllergyConflictCount() > 0:
		return SeverityHigh
	case interactions == 0:
		return SeverityLowModerate
	default:
		return SeverityModerate
	}
}
