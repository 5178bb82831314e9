package query

import (
	"strconv"

	"github.com/kailas-cloud/daefinder/internal/domain/device"
)

type buildOptions struct {
	status    device.Status
	anyStatus bool
}

// Option customizes BuildFilter.
type Option func(*buildOptions)

// WithStatus replaces the implicit operational status predicate value.
func WithStatus(s device.Status) Option {
	return func(o *buildOptions) { o.status = s }
}

// AnyStatus drops the implicit status predicate.
func AnyStatus() Option {
	return func(o *buildOptions) { o.anyStatus = true }
}

// BuildFilter turns raw search text into a descriptor.
//
// The status predicate always comes first. Empty input selects every active
// device. Input that parses entirely as an integer filters on postal code;
// anything else is matched as an exact, case-sensitive city name.
func BuildFilter(raw string, opts ...Option) Descriptor {
	o := buildOptions{status: device.StatusOperational}
	for _, opt := range opts {
		opt(&o)
	}

	preds := make([]Predicate, 0, 2)
	if !o.anyStatus {
		preds = append(preds, Eq(FieldStatus, String(string(o.status))))
	}

	if raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			preds = append(preds, Eq(FieldPostalCode, Int(n)))
		} else {
			preds = append(preds, Eq(FieldCity, String(raw)))
		}
	}

	return Descriptor{predicates: preds}
}

// Active returns the descriptor for the full active set used by proximity search.
func Active() Descriptor {
	return BuildFilter("")
}
