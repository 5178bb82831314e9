package device

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kailas-cloud/daefinder/internal/domain"
	"github.com/kailas-cloud/daefinder/internal/domain/geo"
)

// MalformedError reports a raw document that failed normalization on one field.
type MalformedError struct {
	ID    string
	Field string
	Err   error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s %q: field %s: %v", domain.ErrMalformedRecord, e.ID, e.Field, e.Err)
}

// Unwrap exposes both the sentinel and the field-level cause.
func (e *MalformedError) Unwrap() []error { return []error{domain.ErrMalformedRecord, e.Err} }

// checked holds the scalar fields subject to struct validation.
type checked struct {
	ID         string `wire:"id" validate:"required,max=256"`
	Status     Status `wire:"c_etat_fonct" validate:"required,oneof=operational out_of_service unknown"`
	PostalCode int    `wire:"c_com_cp" validate:"gte=0,lte=99999"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("wire")
	})
	return v
}

// Normalize converts a raw document into a Record.
// Missing coordinates yield a Record without location; non-numeric or partial
// coordinates, a non-integer postal code, or a missing id are malformed.
// Coordinates outside the valid range are kept as-is: ranking excludes them.
func Normalize(raw RawDocument) (Record, error) {
	malformed := func(field string, err error) (Record, error) {
		return Record{}, &MalformedError{ID: raw.ID, Field: field, Err: err}
	}

	loc, field, err := parseLocation(raw)
	if err != nil {
		return malformed(field, err)
	}

	postal, err := parsePostalCode(raw.Get(FieldPostalCode))
	if err != nil {
		return malformed(FieldPostalCode, err)
	}

	c := checked{
		ID:         raw.ID,
		Status:     StatusFromWire(raw.Get(FieldStatus)),
		PostalCode: postal,
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return malformed(fe.Field(), fmt.Errorf("failed %q constraint", fe.Tag()))
		}
		return malformed("", err)
	}

	addr := Address{
		Number:     raw.Get(FieldStreetNumber),
		Street:     raw.Get(FieldStreet),
		PostalCode: postal,
		City:       raw.Get(FieldCity),
	}
	avail := ParseAvailability(raw.Get(FieldDays), raw.Get(FieldHours))

	return New(raw.ID, raw.Get(FieldGID), raw.Get(FieldName), c.Status, loc, addr, avail), nil
}

// NormalizeAll normalizes a batch, dropping malformed documents individually.
// The returned records keep the input order.
func NormalizeAll(raws []RawDocument) ([]Record, []error) {
	records := make([]Record, 0, len(raws))
	var rejected []error
	for _, raw := range raws {
		rec, err := Normalize(raw)
		if err != nil {
			rejected = append(rejected, err)
			continue
		}
		records = append(records, rec)
	}
	return records, rejected
}

func parseLocation(raw RawDocument) (*geo.Point, string, error) {
	latStr := strings.TrimSpace(raw.Get(FieldLatitude))
	lonStr := strings.TrimSpace(raw.Get(FieldLongitude))

	switch {
	case latStr == "" && lonStr == "":
		return nil, "", nil
	case latStr == "":
		return nil, FieldLatitude, errors.New("missing while longitude is set")
	case lonStr == "":
		return nil, FieldLongitude, errors.New("missing while latitude is set")
	}

	lat, err := parseCoordinate(latStr)
	if err != nil {
		return nil, FieldLatitude, err
	}
	lon, err := parseCoordinate(lonStr)
	if err != nil {
		return nil, FieldLongitude, err
	}
	return &geo.Point{Latitude: lat, Longitude: lon}, "", nil
}

func parseCoordinate(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return f, nil
}

func parsePostalCode(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return n, nil
}
