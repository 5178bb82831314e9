package device

import (
	"github.com/kailas-cloud/daefinder/internal/db"
	domdev "github.com/kailas-cloud/daefinder/internal/domain/device"
)

// buildIndex declares the filterable device fields.
// Status and city are exact, case-sensitive tags; postal code is numeric.
func buildIndex(name, prefix string) (*db.IndexDefinition, error) {
	return db.NewIndex(name).
		Prefix(prefix).
		TagExact(domdev.FieldStatus).
		TagExact(domdev.FieldCity).
		Numeric(domdev.FieldPostalCode).
		Build()
}
