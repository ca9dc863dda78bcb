// Package catalog loads and serves the medication reference data. The
// catalog is read from a local JSON file once at startup and never
// mutated afterwards, so every accessor is safe for concurrent use
// without locking.
package catalog

import (
	"time"

	"github.com/giygas/pharma-assistant-api/catalog/entities"
	"github.com/giygas/pharma-assistant-api/interfaces"
)

// Compile-time check that Catalog satisfies the store contract
var _ interfaces.CatalogStore = (*Catalog)(nil)

// Catalog is the immutable in-memory medication store.
type Catalog struct {
	path     string
	loadedAt time.Time
	records  []entities.MedicationRecord
	byName   map[string]entities.MedicationRecord
	names    []string
	quality  *interfaces.CatalogQualityReport
}

// Lookup resolves a medication by name. The name is normalized before the
// lookup, so spelling differences in case and spacing do not matter.
func (c *Catalog) Lookup(name string) (entities.MedicationRecord, bool) {
	rec, ok := c.byName[entities.NormalizeName(name)]
	return rec, ok
}

// Records returns all catalog entries sorted by name. Callers must treat
// the slice as read-only.
func (c *Catalog) Records() []entities.MedicationRecord {
	return c.records
}

// Names returns all medication display names sorted alphabetically.
// Callers must treat the slice as read-only.
func (c *Catalog) Names() []string {
	return c.names
}

// Count returns the number of loaded records
func (c *Catalog) Count() int {
	return len(c.records)
}

// LoadedAt returns the time the catalog file was loaded
func (c *Catalog) LoadedAt() time.Time {
	return c.loadedAt
}

// Path returns the catalog file path the records were loaded from
func (c *Catalog) Path() string {
	return c.path
}

// QualityReport returns the data quality summary computed at load time
func (c *Catalog) QualityReport() *interfaces.CatalogQualityReport {
	return c.quality
}
