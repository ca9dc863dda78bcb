package analysis

// FindingKind discriminates the two conflict classes the detector emits.
type FindingKind string

const (
	KindInteraction     FindingKind = "pairwise_interaction"
	KindAllergyConflict FindingKind = "allergy_conflict"
)

// Finding is one detected conflict. Interaction findings carry DrugA and
// DrugB; allergy findings carry Drug and Allergen. Names keep the exact
// spelling the caller submitted.
type Finding struct {
	Kind        FindingKind `json:"kind"`
	DrugA       string      `json:"drug_a,omitempty"`
	DrugB       string      `json:"drug_b,omitempty"`
	Drug        string      `json:"drug,omitempty"`
	Allergen    string      `json:"allergen,omitempty"`
	Description string      `json:"description"`
}

// MedicationFact is the catalog context attached to a result for one
// recognized medication: the submitted spelling plus the catalog warning.
// Facts are the only source of numeric dosing a report may repeat.
type MedicationFact struct {
	Name    string `json:"name"`
	Warning string `json:"warning"`
}

// Result is the full outcome of a detection pass.
type Result struct {
	Findings           []Finding        `json:"findings"`
	UnknownMedications []string         `json:"unknown_medications"`
	Facts              []MedicationFact `json:"facts"`
}

// HasConflicts reports whether any finding was detected.
func (r Result) HasConflicts() bool {
	return len(r.Findings) > 0
}

// AllergyConflictCount counts findings of kind allergy_conflict.
func (r Result) AllergyConflictCount() int {
	n := 0
	for _, f := range r.Findings {
		if f.Kind == KindAllergyConflict {
			n++
		}
	}
	return n
}
