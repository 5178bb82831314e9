package device

// Status is the operational state of a device.
type Status string

const (
	// StatusOperational means the device is in working order ("En fonctionnement").
	StatusOperational Status = "operational"
	// StatusOutOfService means the device is reported broken ("Hors service").
	StatusOutOfService Status = "out_of_service"
	// StatusUnknown covers every other wire value, including an absent one.
	StatusUnknown Status = "unknown"
)

// Wire values of the c_etat_fonct field.
const (
	WireOperational  = "En fonctionnement"
	WireOutOfService = "Hors service"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusOperational, StatusOutOfService, StatusUnknown:
		return true
	}
	return false
}

// StatusFromWire maps a stored c_etat_fonct value to a Status.
func StatusFromWire(v string) Status {
	switch v {
	case WireOperational:
		return StatusOperational
	case WireOutOfService:
		return StatusOutOfService
	default:
		return StatusUnknown
	}
}

// Wire returns the stored value for s. StatusUnknown has no single wire value and maps to "".
func (s Status) Wire() string {
	switch s {
	case StatusOperational:
		return WireOperational
	case StatusOutOfService:
		return WireOutOfService
	default:
		return ""
	}
}

func (s Status) String() string { return string(s) }
