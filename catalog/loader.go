package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/giygas/pharma-assistant-api/catalog/entities"
	"github.com/giygas/pharma-assistant-api/interfaces"
	"github.com/giygas/pharma-assistant-api/logging"
)

// recordPayload is the on-disk shape of one catalog entry. The file is a
// JSON object keyed by medication name:
//
//	{"Aspirin": {"warning": "...", "interactions": ["Warfarin"]}, ...}
type recordPayload struct {
	Warning      string   `json:"warning"`
	Interactions []string `json:"interactions"`
}

// Load reads and validates the medication reference file. Records that
// fail validation or duplicate an earlier name are skipped with a warning;
// an unreadable or empty file is an error and the caller is expected to
// treat it as fatal.
func Load(path string, validator interfaces.DataValidator) (*Catalog, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	// Some reference exports arrive in ISO-8859-1, decode when not UTF-8
	if !utf8.Valid(raw) {
		decoded, decodeErr := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if decodeErr != nil {
			return nil, fmt.Errorf("failed to decode catalog file %s: %w", path, decodeErr)
		}
		raw = decoded
	}

	var payload map[string]recordPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}

	// JSON object keys are unordered, sort for a deterministic catalog
	keys := make([]string, 0, len(payload))
	for name := range payload {
		keys = append(keys, name)
	}
	sort.Strings(keys)

	records := make([]entities.MedicationRecord, 0, len(payload))
	byName := make(map[string]entities.MedicationRecord, len(payload))
	names := make([]string, 0, len(payload))
	skipped := 0

	for _, name := range keys {
		entry := payload[name]
		rec := entities.MedicationRecord{
			Name:           name,
			NameNormalized: entities.NormalizeName(name),
			Warning:        entry.Warning,
			Interactions:   entry.Interactions,
		}

		if err := validator.ValidateRecord(&rec); err != nil {
			logging.Warn("Skipping invalid catalog record", "name", name, "error", err)
			skipped++
			continue
		}

		if _, exists := byName[rec.NameNormalized]; exists {
			logging.Warn("Skipping duplicate catalog record", "name", name)
			skipped++
			continue
		}

		byName[rec.NameNormalized] = rec
		records = append(records, rec)
		names = append(names, name)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("catalog file %s contains no usable records", path)
	}

	if err := validator.ValidateCatalogIntegrity(records); err != nil {
		return nil, fmt.Errorf("catalog integrity check failed for %s: %w", path, err)
	}

	quality := validator.ReportCatalogQuality(records)

	logging.Info("Medication catalog loaded",
		"path", path,
		"records", len(records),
		"skipped", skipped,
		"asymmetric_interactions", quality.AsymmetricInteractions,
		"unknown_interaction_targets", quality.UnknownInteractionTargets,
	)

	return &Catalog{
		path:     path,
		loadedAt: time.Now(),
		records:  records,
		byName:   byName,
		names:    names,
		quality:  quality,
	}, nil
}
