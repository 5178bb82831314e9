package presenter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kailas-cloud/daefinder/internal/domain/device"
	"github.com/kailas-cloud/daefinder/internal/usecase/fetch"
)

// EmptyMessage is shown for a successful search without matches.
const EmptyMessage = "no device matches your search"

const (
	colorCyan    = "#8BE9FD"
	colorGreen   = "#50FA7B"
	colorOrange  = "#FFB86C"
	colorPurple  = "#BD93F9"
	colorRed     = "#FF5555"
	colorComment = "#6272A4"
)

type styles struct {
	header, title, label, ok, ko, muted, errText, card lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color(colorCyan)),
		title:   r.NewStyle().Bold(true),
		label:   r.NewStyle().Foreground(lipgloss.Color(colorComment)),
		ok:      r.NewStyle().Foreground(lipgloss.Color(colorGreen)),
		ko:      r.NewStyle().Foreground(lipgloss.Color(colorOrange)),
		muted:   r.NewStyle().Foreground(lipgloss.Color(colorComment)).Italic(true),
		errText: r.NewStyle().Foreground(lipgloss.Color(colorRed)).Bold(true),
		card: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorPurple)).
			Padding(0, 1),
	}
}

// Presenter renders fetch state snapshots to a terminal.
type Presenter struct {
	w io.Writer
	s styles
}

// New creates a Presenter writing to w. Colors follow w's terminal capabilities.
func New(w io.Writer) *Presenter {
	return &Presenter{w: w, s: newStyles(lipgloss.NewRenderer(w))}
}

// Render writes one snapshot.
func (p *Presenter) Render(st fetch.State) error {
	_, err := io.WriteString(p.w, p.Format(st)+"\n")
	return err
}

// Format returns the rendering of a snapshot without writing it.
func (p *Presenter) Format(st fetch.State) string {
	switch st.Status {
	case fetch.StatusIdle:
		return p.s.muted.Render("type a postal code or a city name")
	case fetch.StatusLoading:
		return p.s.muted.Render("searching…")
	case fetch.StatusFailure:
		return p.s.errText.Render("❌ " + st.Message())
	}

	if len(st.Data) == 0 {
		return p.s.muted.Render(EmptyMessage)
	}

	var b strings.Builder
	b.WriteString(p.s.header.Render(p.headline(st)))
	for i := range st.Data {
		b.WriteString("\n")
		b.WriteString(p.s.card.Render(p.card(&st.Data[i])))
	}
	return b.String()
}

func (p *Presenter) headline(st fetch.State) string {
	noun := "devices"
	if len(st.Data) == 1 {
		noun = "device"
	}
	line := fmt.Sprintf("%d %s", len(st.Data), noun)
	if st.Kind == fetch.KindProximity && st.Origin != nil {
		line += " near " + st.Origin.String()
	}
	if st.Rejected > 0 {
		line += fmt.Sprintf(" (%d malformed skipped)", st.Rejected)
	}
	return line
}

func (p *Presenter) card(r *device.Record) string {
	lines := []string{p.s.title.Render(r.Name())}

	top := p.s.label.Render("id ") + r.GID() + "  " + p.status(r.Status())
	if km, ok := r.DistanceKm(); ok {
		top += "  " + p.s.label.Render("distance ") + strconv.Itoa(km) + " km"
	}
	lines = append(lines, top)

	addr := r.Address()
	street := strings.TrimSpace(addr.Number + " " + addr.Street)
	if street != "" {
		lines = append(lines, street)
	}
	city := strings.TrimSpace(postal(addr.PostalCode) + " " + addr.City)
	if city != "" {
		lines = append(lines, city)
	}

	if av := r.Availability(); av.Known() {
		lines = append(lines, p.s.label.Render("open ")+av.String())
	}
	return strings.Join(lines, "\n")
}

func (p *Presenter) status(s device.Status) string {
	switch s {
	case device.StatusOperational:
		return p.s.ok.Render("✔ " + device.WireOperational)
	case device.StatusOutOfService:
		return p.s.ko.Render("✖ " + device.WireOutOfService)
	default:
		return p.s.muted.Render("status unknown")
	}
}

// postal renders a French postal code with its leading zero; 0 means absent.
func postal(cp int) string {
	if cp <= 0 {
		return ""
	}
	return fmt.Sprintf("%05d", cp)
}
