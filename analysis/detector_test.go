package analysis

import (
	"reflect"
	"testing"

	"github.com/giygas/pharma-assistant-api/catalog/entities"
)

// fakeCatalog is a map-backed Catalog keyed by normalized name
type fakeCatalog map[string]entities.MedicationRecord

func (c fakeCatalog) Lookup(name string) (entities.MedicationRecord, bool) {
	rec, ok := c[entities.NormalizeName(name)]
	return rec, ok
}

func buildCatalog(records ...entities.MedicationRecord) fakeCatalog {
	cat := make(fakeCatalog, len(records))
	for _, rec := range records {
		rec.NameNormalized = entities.NormalizeName(rec.Name)
		cat[rec.NameNormalized] = rec
	}
	return cat
}

func record(name, warning string, interactions ...string) entities.MedicationRecord {
	return entities.MedicationRecord{
		Name:         name,
		Warning:      warning,
		Interactions: interactions,
	}
}

func interactionFindings(res Result) []Finding {
	var out []Finding
	for _, f := range res.Findings {
		if f.Kind == KindInteraction {
			out = append(out, f)
		}
	}
	return out
}

func allergyFindings(res Result) []Finding {
	var out []Finding
	for _, f := range res.Findings {
		if f.Kind == KindAllergyConflict {
			out = append(out, f)
		}
	}
	return out
}

func TestDetect_PairwiseInteraction(t *testing.T) {
	cat := buildCatalog(
		record("Aspirin", "Aspirin bleeding warning.", "Warfarin"),
		record("Warfarin", "Warfarin INR warning.", "Aspirin"),
	)

	res := Detect([]string{"Aspirin", "Warfarin"}, nil, cat)

	findings := interactionFindings(res)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 interaction finding, got %d", len(findings))
	}

	f := findings[0]
	if f.DrugA != "Aspirin" || f.DrugB != "Warfarin" {
		t.Errorf("Expected pair Aspirin/Warfarin, got %s/%s", f.DrugA, f.DrugB)
	}
	expectedDescription := "Aspirin bleeding warning. Warfarin INR warning."
	if f.Description != expectedDescription {
		t.Errorf("Expected description '%s', got '%s'", expectedDescription, f.Description)
	}
}

func TestDetect_SymmetricPairReportedOnce(t *testing.T) {
	cat := buildCatalog(
		record("Aspirin", "Aspirin warning.", "Warfarin"),
		record("Warfarin", "Warfarin warning.", "Aspirin"),
	)

	// Both records declare each other; the pair must not duplicate
	res := Detect([]string{"Warfarin", "Aspirin"}, nil, cat)

	if got := len(interactionFindings(res)); got != 1 {
		t.Errorf("Expected 1 interaction finding for a symmetric pair, got %d", got)
	}
}

func TestDetect_ReverseOnlyDeclaration(t *testing.T) {
	cat := buildCatalog(
		record("Fluconazole", "Azole antifungal warning.", "Simvastatin"),
		record("Simvastatin", "Statin warning."),
	)

	// Simvastatin never declares Fluconazole, the reverse edge must still match
	res := Detect([]string{"Simvastatin", "Fluconazole"}, nil, cat)

	findings := interactionFindings(res)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 interaction finding, got %d", len(findings))
	}

	f := findings[0]
	if f.DrugA != "Simvastatin" || f.DrugB != "Fluconazole" {
		t.Errorf("Expected pair ordered by submission Simvastatin/Fluconazole, got %s/%s", f.DrugA, f.DrugB)
	}
}

func TestDetect_CaseInsensitiveLookup(t *testing.T) {
	cat := buildCatalog(
		record("Aspirin", "Aspirin warning.", "Warfarin"),
		record("Warfarin", "Warfarin warning.", "Aspirin"),
	)

	res := Detect([]string{"aspirin", "WARFARIN"}, nil, cat)

	if len(res.UnknownMedications) != 0 {
		t.Errorf("Expected no unknown medications, got %v", res.UnknownMedications)
	}
	if got := len(interactionFindings(res)); got != 1 {
		t.Fatalf("Expected 1 interaction finding, got %d", got)
	}

	// Findings and facts keep the submitted spelling
	f := interactionFindings(res)[0]
	if f.DrugA != "aspirin" || f.DrugB != "WARFARIN" {
		t.Errorf("Expected submitted spellings aspirin/WARFARIN, got %s/%s", f.DrugA, f.DrugB)
	}
	if len(res.Facts) != 2 || res.Facts[0].Name != "aspirin" {
		t.Errorf("Expected facts to keep submitted spelling, got %+v", res.Facts)
	}
}

func TestDetect_UnknownMedication(t *testing.T) {
	cat := buildCatalog(
		record("Aspirin", "Aspirin warning.", "Mysterion"),
		record("Warfarin", "Warfarin warning."),
	)

	res := Detect([]string{"Aspirin", "Mysterion"}, nil, cat)

	if !reflect.DeepEqual(res.UnknownMedications, []string{"Mysterion"}) {
		t.Errorf("Expected unknown medications [Mysterion], got %v", res.UnknownMedications)
	}

	// The known side declares the unknown one, so the pair still surfaces
	findings := interactionFindings(res)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 interaction finding, got %d", len(findings))
	}
	if findings[0].Description != "Aspirin warning." {
		t.Errorf("Expected the known side's warning only, got '%s'", findings[0].Description)
	}

	// Facts only cover recognized medications
	if len(res.Facts) != 1 || res.Facts[0].Name != "Aspirin" {
		t.Errorf("Expected facts for Aspirin only, got %+v", res.Facts)
	}
}

func TestDetect_AllUnknownMedications(t *testing.T) {
	cat := buildCatalog(record("Aspirin", "Aspirin warning."))

	res := Detect([]string{"Unobtainium", "Mysterion"}, []string{"Penicillin"}, cat)

	if len(res.Findings) != 0 {
		t.Errorf("Expected no findings, got %d", len(res.Findings))
	}
	if len(res.UnknownMedications) != 2 {
		t.Errorf("Expected 2 unknown medications, got %v", res.UnknownMedications)
	}
	if res.HasConflicts() {
		t.Error("Expected HasConflicts to be false")
	}
}

func TestDetect_NoInteractions(t *testing.T) {
	cat := buildCatalog(
		record("Metformin", "Metformin warning."),
		record("Lisinopril", "Lisinopril warning."),
	)

	res := Detect([]string{"Metformin", "Lisinopril"}, nil, cat)

	if len(res.Findings) != 0 {
		t.Errorf("Expected no findings, got %+v", res.Findings)
	}
	if len(res.Facts) != 2 {
		t.Errorf("Expected 2 facts, got %d", len(res.Facts))
	}
}

func TestDetect_BothWarningsBlank(t *testing.T) {
	cat := buildCatalog(
		record("DrugA", "", "DrugB"),
		record("DrugB", ""),
	)

	res := Detect([]string{"DrugA", "DrugB"}, nil, cat)

	findings := interactionFindings(res)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 interaction finding, got %d", len(findings))
	}

	expected := "Combined use of DrugA and DrugB is flagged in the medication interaction data."
	if findings[0].Description != expected {
		t.Errorf("Expected placeholder description '%s', got '%s'", expected, findings[0].Description)
	}
}

func TestDetect_IdenticalWarningsNotRepeated(t *testing.T) {
	shared := "Shared class warning."
	cat := buildCatalog(
		record("DrugA", shared, "DrugB"),
		record("DrugB", shared, "DrugA"),
	)

	res := Detect([]string{"DrugA", "DrugB"}, nil, cat)

	findings := interactionFindings(res)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 interaction finding, got %d", len(findings))
	}
	if findings[0].Description != shared {
		t.Errorf("Expected deduplicated description '%s', got '%s'", shared, findings[0].Description)
	}
}

func TestDetect_AllergyNameMatch(t *testing.T) {
	cat := buildCatalog(
		record("Penicillin", "Beta-lactam antibiotic."),
		record("Metformin", "Metformin warning."),
	)

	res := Detect([]string{"Penicillin", "Metformin"}, []string{"penicillin"}, cat)

	findings := allergyFindings(res)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 allergy finding, got %d", len(findings))
	}

	f := findings[0]
	if f.Drug != "Penicillin" || f.Allergen != "penicillin" {
		t.Errorf("Expected Penicillin/penicillin, got %s/%s", f.Drug, f.Allergen)
	}
	expected := "Medication Penicillin matches the patient's reported allergy to penicillin."
	if f.Description != expected {
		t.Errorf("Expected description '%s', got '%s'", expected, f.Description)
	}
}

func TestDetect_AllergyWarningMatch(t *testing.T) {
	warning := "Penicillin-class antibiotic. Contraindicated in patients with documented penicillin allergy."
	cat := buildCatalog(
		record("Amoxicillin", warning),
		record("Metformin", "Metformin warning."),
	)

	res := Detect([]string{"Amoxicillin", "Metformin"}, []string{"Penicillin"}, cat)

	findings := allergyFindings(res)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 allergy finding, got %d", len(findings))
	}
	if findings[0].Description != warning {
		t.Errorf("Expected the catalog warning verbatim, got '%s'", findings[0].Description)
	}
}

func TestDetect_AllergyNameMatchTakesPrecedence(t *testing.T) {
	cat := buildCatalog(
		record("Penicillin", "Penicillin allergy is a contraindication."),
		record("Metformin", "Metformin warning."),
	)

	res := Detect([]string{"Penicillin", "Metformin"}, []string{"Penicillin"}, cat)

	findings := allergyFindings(res)
	if len(findings) != 1 {
		t.Fatalf("Expected exactly 1 allergy finding, got %d", len(findings))
	}
	expected := "Medication Penicillin matches the patient's reported allergy to Penicillin."
	if findings[0].Description != expected {
		t.Errorf("Expected the name match to win, got '%s'", findings[0].Description)
	}
}

func TestDetect_AllergyUnknownMedicationNameMatch(t *testing.T) {
	cat := buildCatalog(record("Metformin", "Metformin warning."))

	// A medication absent from the catalog can still name-match an allergy
	res := Detect([]string{"Penicillin", "Metformin"}, []string{"Penicillin"}, cat)

	findings := allergyFindings(res)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 allergy finding, got %d", len(findings))
	}
	if findings[0].Drug != "Penicillin" {
		t.Errorf("Expected finding for Penicillin, got %s", findings[0].Drug)
	}
}

func TestDetect_FindingOrder(t *testing.T) {
	cat := buildCatalog(
		record("DrugA", "A warning.", "DrugB", "DrugC"),
		record("DrugB", "B warning.", "DrugA"),
		record("DrugC", "C warning.", "DrugA"),
	)

	res := Detect([]string{"DrugC", "DrugA", "DrugB"}, nil, cat)

	findings := interactionFindings(res)
	if len(findings) != 2 {
		t.Fatalf("Expected 2 interaction findings, got %d", len(findings))
	}

	// First submitted medication pairs first, then declaration order
	if findings[0].DrugA != "DrugC" || findings[0].DrugB != "DrugA" {
		t.Errorf("Expected first finding DrugC/DrugA, got %s/%s", findings[0].DrugA, findings[0].DrugB)
	}
	if findings[1].DrugA != "DrugA" || findings[1].DrugB != "DrugB" {
		t.Errorf("Expected second finding DrugA/DrugB, got %s/%s", findings[1].DrugA, findings[1].DrugB)
	}
}

func TestDetect_InteractionsBeforeAllergies(t *testing.T) {
	cat := buildCatalog(
		record("Aspirin", "NSAIDs caution.", "Warfarin"),
		record("Warfarin", "Bleeding risk.", "Aspirin"),
	)

	res := Detect([]string{"Aspirin", "Warfarin"}, []string{"NSAIDs"}, cat)

	if len(res.Findings) != 2 {
		t.Fatalf("Expected 2 findings, got %d", len(res.Findings))
	}
	if res.Findings[0].Kind != KindInteraction {
		t.Errorf("Expected interaction finding first, got %s", res.Findings[0].Kind)
	}
	if res.Findings[1].Kind != KindAllergyConflict {
		t.Errorf("Expected allergy finding second, got %s", res.Findings[1].Kind)
	}
}

func TestDetect_Deterministic(t *testing.T) {
	cat := buildCatalog(
		record("Aspirin", "Aspirin warning.", "Warfarin", "Ibuprofen"),
		record("Warfarin", "Warfarin warning.", "Aspirin"),
		record("Ibuprofen", "NSAIDs class warning.", "Warfarin", "Aspirin"),
	)
	meds := []string{"Ibuprofen", "Aspirin", "Warfarin"}
	allergies := []string{"NSAIDs", "Penicillin"}

	first := Detect(meds, allergies, cat)
	for i := 0; i < 10; i++ {
		if next := Detect(meds, allergies, cat); !reflect.DeepEqual(first, next) {
			t.Fatalf("Detection is not deterministic: run %d differs", i)
		}
	}
}

func TestResultAllergyConflictCount(t *testing.T) {
	res := Result{Findings: []Finding{
		{Kind: KindInteraction},
		{Kind: KindAllergyConflict},
		{Kind: KindAllergyConflict},
	}}

	if got := res.AllergyConflictCount(); got != 2 {
		t.Errorf("Expected 2 allergy conflicts, got %d", got)
	}
	if !res.HasConflicts() {
		t.Error("Expected HasConflicts to be true")
	}
}
