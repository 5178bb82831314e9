package proximity

import (
	"fmt"
	"math"
	"slices"

	"github.com/kailas-cloud/daefinder/internal/domain/device"
	"github.com/kailas-cloud/daefinder/internal/domain/geo"
)

type scored struct {
	rec  device.Record
	dist float64
}

// Rank orders candidates by great-circle distance from origin, nearest first.
//
// Candidates without a valid location are left out. Ties keep their input
// order. Each returned record carries its distance rounded to whole kilometres.
func Rank(origin geo.Point, candidates []device.Record) ([]device.Record, error) {
	if !origin.Valid() {
		return nil, fmt.Errorf("origin %s: %w", origin, geo.ErrInvalidCoordinates)
	}

	ranked := make([]scored, 0, len(candidates))
	for i := range candidates {
		loc, ok := candidates[i].Location()
		if !ok || !loc.Valid() {
			continue
		}
		ranked = append(ranked, scored{rec: candidates[i], dist: geo.DistanceKm(origin, loc)})
	}

	slices.SortStableFunc(ranked, func(a, b scored) int {
		switch {
		case a.dist < b.dist:
			return -1
		case a.dist > b.dist:
			return 1
		}
		return 0
	})

	out := make([]device.Record, len(ranked))
	for i := range ranked {
		out[i] = ranked[i].rec.WithDistance(int(math.Round(ranked[i].dist)))
	}
	return out, nil
}
