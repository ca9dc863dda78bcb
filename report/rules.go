package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/giygas/pharma-assistant-api/analysis"
)

// RulesGenerator renders the deterministic fallback report. It never
// fails and its output always satisfies the formatter contract: the
// disclaimer is written verbatim, every numeric dosing value comes from
// the catalog warnings it quotes, and the body stays far below the size
// limit for any accepted request.
type RulesGenerator struct{}

// Render produces the full report body for a detection result. The same
// request, result and timestamp always yield the same bytes.
func (RulesGenerator) Render(req analysis.Request, res analysis.Result, generatedAt time.Time) string {
	var lines []string

	lines = append(lines,
		AppName+" - Medication Interaction Report",
		fmt.Sprintf("Patient: %s (ID: %s)", req.PatientName, req.PatientID),
		"Generated: "+generatedAt.UTC().Format(time.RFC3339),
		"",
		SectionSeverity+":",
		ClassifySeverity(res),
		"",
		SectionRiskSummary+":",
	)

	var interactions, allergyHits []analysis.Finding
	for _, f := range res.Findings {
		switch f.Kind {
		case analysis.KindInteraction:
			interactions = append(interactions, f)
		case analysis.KindAllergyConflict:
			allergyHits = append(allergyHits, f)
		}
	}

	if len(interactions) > 0 {
		lines = append(lines, "Potential interaction signals detected among selected medications:")
		for _, f := range interactions {
			lines = append(lines, fmt.Sprintf("- %s with %s: %s", f.DrugA, f.DrugB, f.Description))
		}
	} else {
		lines = append(lines, "No direct pairwise interaction match detected in the local medication database.")
	}

	if len(allergyHits) > 0 {
		lines = append(lines, "Potential allergy-related caution detected in warnings for:")
		for _, f := range allergyHits {
			lines = append(lines, fmt.Sprintf("- %s (%s): %s", f.Drug, f.Allergen, f.Description))
		}
	} else if len(interactions) == 0 {
		lines = append(lines, InsufficientData)
	}

	if len(res.UnknownMedications) > 0 {
		lines = append(lines,
			"",
			"Unrecognized medications (no reference data): "+strings.Join(res.UnknownMedications, ", ")+".",
		)
	}

	lines = append(lines,
		"",
		SectionRecommendation+":",
		"",
		"- Verify this report with a licensed pharmacist/physician before final prescribing decisions.",
		"- Review full interaction resources and patient labs where applicable.",
		"- This report is generated from local structured data and may not capture all contraindications.",
		"",
		SectionSafetyNotice+":",
		Disclaimer,
	)

	return strings.Join(lines, "\n")
}
