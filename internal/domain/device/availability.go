package device

import "strings"

// NotProvided is the registry placeholder for a missing availability value.
const NotProvided = "non renseigné"

// Availability is the weekly schedule descriptor of a device.
// Days and Hours hold the parsed list entries of c_disp_j and c_disp_h.
type Availability struct {
	Days  []string
	Hours []string
	raw   string
}

// ParseAvailability parses the brace-delimited list encoding used by the registry,
// e.g. `{lundi,mardi}` or `{"7j/7"}`. Hours may be empty.
func ParseAvailability(days, hours string) Availability {
	return Availability{
		Days:  parseList(days),
		Hours: parseList(hours),
		raw:   days,
	}
}

// Raw returns the unparsed days value as stored.
func (a Availability) Raw() string { return a.raw }

// Known reports whether the registry provided day information.
func (a Availability) Known() bool {
	return len(a.Days) > 0
}

// String renders the schedule with list punctuation stripped, e.g. "lundi, mardi 8h-18h".
func (a Availability) String() string {
	if !a.Known() {
		return ""
	}
	s := strings.Join(a.Days, ", ")
	if len(a.Hours) > 0 {
		s += " " + strings.Join(a.Hours, ", ")
	}
	return s
}

var listStripper = strings.NewReplacer("{", "", "}", "", `"`, "")

func parseList(v string) []string {
	v = strings.TrimSpace(listStripper.Replace(v))
	if v == "" || v == NotProvided {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || p == NotProvided {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
