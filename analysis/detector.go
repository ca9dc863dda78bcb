package analysis

import (
	"fmt"
	"strings"

	"github.com/giygas/pharma-assistant-api/catalog/entities"
)

// Catalog is the read view the detector needs. Lookup must normalize the
// name before resolving it.
type Catalog interface {
	Lookup(name string) (entities.MedicationRecord, bool)
}

// Detect runs the pairwise interaction and allergy checks for the given
// medication list against the catalog. The same inputs always produce the
// same Result: interaction findings come first, ordered by submission
// position and then by the declaring record's partner order, followed by
// allergy findings in submission order.
//
// A medication absent from the catalog never contributes declarations of
// its own, but it still appears in a finding when a known medication
// declares it as a partner. Unknown medications are reported separately
// and never fail the analysis.
func Detect(medications []string, allergies []string, cat Catalog) Result {
	res := Result{
		Findings:           []Finding{},
		UnknownMedications: []string{},
		Facts:              []MedicationFact{},
	}

	records := make([]*entities.MedicationRecord, len(medications))
	keys := make([]string, len(medications))
	for i, med := range medications {
		keys[i] = entities.NormalizeName(med)
		if rec, ok := cat.Lookup(med); ok {
			r := rec
			records[i] = &r
			res.Facts = append(res.Facts, MedicationFact{Name: med, Warning: rec.Warning})
		} else {
			res.UnknownMedications = append(res.UnknownMedications, med)
		}
	}

	type pair struct{ i, j int }
	seen := make(map[pair]bool)
	emit := func(i, j int) {
		p := pair{i, j}
		if seen[p] {
			return
		}
		seen[p] = true
		res.Findings = append(res.Findings, Finding{
			Kind:        KindInteraction,
			DrugA:       medications[i],
			DrugB:       medications[j],
			Description: interactionDescription(medications[i], medications[j], records[i], records[j]),
		})
	}

	for i := range medications {
		if records[i] != nil {
			// Partners this record declares, in declaration order.
			for _, partner := range records[i].Interactions {
				pk := entities.NormalizeName(partner)
				for j := i + 1; j < len(medications); j++ {
					if keys[j] == pk {
						emit(i, j)
					}
				}
			}
		}
		// One-directional declarations pointing back at this medication.
		for j := i + 1; j < len(medications); j++ {
			if records[j] != nil && declares(records[j], keys[i]) {
				emit(i, j)
			}
		}
	}

	for i, med := range medications {
		for _, allergy := range allergies {
			if f, ok := allergyConflict(med, keys[i], records[i], allergy); ok {
				res.Findings = append(res.Findings, f)
			}
		}
	}

	return res
}

func declares(rec *entities.MedicationRecord, key string) bool {
	for _, partner := range rec.Interactions {
		if entities.NormalizeName(partner) == key {
			return true
		}
	}
	return false
}

// interactionDescription merges the warning text of both sides, skipping
// blanks and an identical duplicate. Both sides blank still yields a
// readable sentence.
func interactionDescription(nameA, nameB string, recA, recB *entities.MedicationRecord) string {
	var parts []string
	if recA != nil && recA.Warning != "" {
		parts = append(parts, recA.Warning)
	}
	if recB != nil && recB.Warning != "" && (len(parts) == 0 || parts[0] != recB.Warning) {
		parts = append(parts, recB.Warning)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Combined use of %s and %s is flagged in the medication interaction data.", nameA, nameB)
	}
	return strings.Join(parts, " ")
}

// allergyConflict checks one medication against one reported allergy:
// either the names match outright or the catalog warning mentions the
// allergy. At most one finding per medication and allergy pair, with the
// name match taking precedence.
func allergyConflict(med, medKey string, rec *entities.MedicationRecord, allergy string) (Finding, bool) {
	if entities.NormalizeName(allergy) == medKey {
		return Finding{
			Kind:        KindAllergyConflict,
			Drug:        med,
			Allergen:    allergy,
			Description: fmt.Sprintf("Medication %s matches the patient's reported allergy to %s.", med, allergy),
		}, true
	}
	if rec != nil && rec.Warning != "" &&
		strings.Contains(strings.ToLower(rec.Warning), strings.ToLower(allergy)) {
		return Finding{
			Kind:        KindAllergyConflict,
			Drug:        med,
			Allergen:    allergy,
			Description: rec.Warning,
		}, true
	}
	return Finding{}, false
}
