package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DataKind selects which rendered map layer a frame shows.
type DataKind string

const (
	KindRealtimeIntensity DataKind = "jma"   // realtime seismic intensity
	KindPeakAcceleration  DataKind = "acmap" // peak ground acceleration
	KindPeakVelocity      DataKind = "vcmap" // peak ground velocity
	KindPeakDisplacement  DataKind = "dcmap" // peak ground displacement
)

// ParseDataKind validates a configured layer name.
func ParseDataKind(s string) (DataKind, error) {
	switch k := DataKind(s); k {
	case KindRealtimeIntensity, KindPeakAcceleration, KindPeakVelocity, KindPeakDisplacement:
		return k, nil
	default:
		return "", fmt.Errorf("unknown data kind %q", s)
	}
}

// ErrFrameNotReady reports that the monitor has not yet published the
// frame for the requested second. Callers wait for the next cycle rather
// than backing off.
var ErrFrameNotReady = errors.New("frame not yet published")

// Frame is one fully materialized intensity map image: the decoded pixel
// grid the analysis pass samples, plus the raw bytes for archival.
type Frame struct {
	Time     time.Time
	Kind     DataKind
	Borehole bool
	Grid     PixelGrid
	Raw      []byte
}

// FrameFetcher retrieves rendered map frames. Fetching is the pipeline's
// only blocking boundary; the returned frame is complete before any
// classification starts.
type FrameFetcher interface {
	FetchFrame(ctx context.Context, t time.Time, kind DataKind, borehole bool) (Frame, error)
}
