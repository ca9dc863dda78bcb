package entities

import "strings"

// MedicationRecord is a single entry of the medication reference database.
// Records are immutable after load; lookups go through the pre-computed
// normalized name.
type MedicationRecord struct {
	Name           string   `json:"name"`
	NameNormalized string   `json:"-"` // Pre-computed: NormalizeName(Name)
	Warning        string   `json:"warning"`
	Interactions   []string `json:"interactions"`
}

// NormalizeName lowercases, trims and collapses internal whitespace so that
// " Aspirin " and "aspirin" resolve to the same catalog key.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
