package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Registry is a station collection ordered and uniquely keyed by code.
// Once constructed it is safe for concurrent reads; Add requires external
// synchronization against concurrent readers.
type Registry struct {
	points []ObservationPoint
}

// NewRegistry builds a registry from an arbitrary-order station slice.
// The input is copied, sorted by code, and rejected outright on the first
// invalid record or duplicate code.
func NewRegistry(points []ObservationPoint) (*Registry, error) {
	pts := slices.Clone(points)
	slices.SortFunc(pts, func(a, b ObservationPoint) int {
		return strings.Compare(a.Code, b.Code)
	})
	for i := range pts {
		if err := pts[i].Validate(); err != nil {
			return nil, err
		}
		if i > 0 && pts[i].Code == pts[i-1].Code {
			return nil, fmt.Errorf("duplicate station code %s", pts[i].Code)
		}
	}
	return &Registry{points: pts}, nil
}

// Len returns the number of stations.
func (r *Registry) Len() int {
	return len(r.points)
}

// Points returns the stations in code order. The returned slice is the
// registry's backing storage; callers treat it as read-only.
func (r *Registry) Points() []ObservationPoint {
	return r.points
}

// Find looks up a station by code. The returned pointer aliases registry
// storage and stays valid until the next Add.
func (r *Registry) Find(code string) (*ObservationPoint, bool) {
	i, ok := slices.BinarySearchFunc(r.points, code, func(p ObservationPoint, code string) int {
		return strings.Compare(p.Code, code)
	})
	if !ok {
		return nil, false
	}
	return &r.points[i], true
}

// Add inserts a station at its sorted position, rejecting invalid records
// and duplicate codes.
func (r *Registry) Add(p ObservationPoint) error {
	if err := p.Validate(); err != nil {
		return err
	}
	i, ok := slices.BinarySearchFunc(r.points, p.Code, func(q ObservationPoint, code string) int {
		return strings.Compare(q.Code, code)
	})
	if ok {
		return fmt.Errorf("duplicate station code %s", p.Code)
	}
	r.points = slices.Insert(r.points, i, p)
	return nil
}
