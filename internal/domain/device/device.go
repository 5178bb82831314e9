package device

import "github.com/kailas-cloud/daefinder/internal/domain/geo"

// Address is the postal address of a device.
type Address struct {
	Number     string
	Street     string
	PostalCode int
	City       string
}

// Record is a normalized device record (immutable value object).
type Record struct {
	id           string
	gid          string
	name         string
	status       Status
	location     *geo.Point
	address      Address
	availability Availability
	distanceKm   *int
}

// New creates a Record. location may be nil when the document carries no coordinates.
func New(
	id, gid, name string, status Status, location *geo.Point,
	address Address, availability Availability,
) Record {
	var loc *geo.Point
	if location != nil {
		p := *location
		loc = &p
	}
	return Record{
		id: id, gid: gid, name: name, status: status, location: loc,
		address: address, availability: availability,
	}
}

// ID returns the store-assigned identifier.
func (r *Record) ID() string { return r.id }

// GID returns the public registry identifier (c_gid).
func (r *Record) GID() string { return r.gid }

// Name returns the place name where the device is installed.
func (r *Record) Name() string { return r.name }

// Status returns the operational status.
func (r *Record) Status() Status { return r.status }

// Location returns the device position and whether it is known.
func (r *Record) Location() (geo.Point, bool) {
	if r.location == nil {
		return geo.Point{}, false
	}
	return *r.location, true
}

// Address returns the postal address.
func (r *Record) Address() Address { return r.address }

// Availability returns the opening schedule descriptor.
func (r *Record) Availability() Availability { return r.availability }

// DistanceKm returns the rounded distance to the search origin. Only geo-ranked records carry one.
func (r *Record) DistanceKm() (int, bool) {
	if r.distanceKm == nil {
		return 0, false
	}
	return *r.distanceKm, true
}

// WithDistance returns a copy annotated with the given distance.
func (r *Record) WithDistance(km int) Record {
	c := *r
	c.distanceKm = &km
	return c
}
