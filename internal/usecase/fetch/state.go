package fetch

import (
	"slices"

	"github.com/kailas-cloud/daefinder/internal/domain/device"
	"github.com/kailas-cloud/daefinder/internal/domain/geo"
)

// Status is the lifecycle phase of the latest request.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusDone    Status = "done"
	StatusFailure Status = "failure"
)

// Kind tells attribute searches from proximity searches.
type Kind string

const (
	KindAttribute Kind = "attribute"
	KindProximity Kind = "proximity"
)

// Token identifies an issued request. Tokens grow strictly; 0 is never issued.
type Token uint64

// State is a snapshot of the controller.
//
// Token and Kind describe the latest issued request. Data, Rejected and
// Origin describe the last committed result and survive a new loading phase.
type State struct {
	Status   Status
	Data     []device.Record
	Err      error
	Token    Token
	Kind     Kind
	Rejected int
	Origin   *geo.Point
}

// Message returns the error text, or "" when there is none.
func (s State) Message() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

func (s State) clone() State {
	out := s
	if s.Data != nil {
		out.Data = slices.Clone(s.Data)
	}
	if s.Origin != nil {
		o := *s.Origin
		out.Origin = &o
	}
	return out
}
