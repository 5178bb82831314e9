package device

// Wire field names of a stored device document.
const (
	FieldGID          = "c_gid"
	FieldName         = "c_nom"
	FieldStatus       = "c_etat_fonct"
	FieldLatitude     = "c_lat_coor1"
	FieldLongitude    = "c_long_coor1"
	FieldStreetNumber = "c_adr_num"
	FieldStreet       = "c_adr_voie"
	FieldPostalCode   = "c_com_cp"
	FieldCity         = "c_com_nom"
	FieldDays         = "c_disp_j"
	FieldHours        = "c_disp_h"
)

// WireFields lists every field read back from the store, in display order.
var WireFields = []string{
	FieldGID, FieldName, FieldStatus, FieldLatitude, FieldLongitude,
	FieldStreetNumber, FieldStreet, FieldPostalCode, FieldCity, FieldDays, FieldHours,
}

// RawDocument is a loosely-typed document as returned by the store.
// Every value is a string; absent fields are missing from the map.
type RawDocument struct {
	ID     string
	Fields map[string]string
}

// Get returns the field value, or "" when absent.
func (d RawDocument) Get(field string) string {
	return d.Fields[field]
}
