package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// NetworkType identifies the strong-motion network a station belongs to.
type NetworkType uint8

const (
	NetworkUnknown NetworkType = iota
	NetworkKNET                // K-NET: surface sensors
	NetworkKiKNET              // KiK-net: borehole sensors
)

// String returns the canonical textual form used by the delimited codec.
func (n NetworkType) String() string {
	switch n {
	case NetworkKNET:
		return "K-NET"
	case NetworkKiKNET:
		return "KiK-net"
	default:
		return "Unknown"
	}
}

// ParseNetworkType reads a network name as it appears in station files.
// Legacy underscore spellings ("K_NET", "KiK_net") are accepted; a blank
// field maps to NetworkUnknown.
func ParseNetworkType(s string) (NetworkType, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-")) {
	case "k-net", "knet":
		return NetworkKNET, nil
	case "kik-net", "kiknet":
		return NetworkKiKNET, nil
	case "unknown", "":
		return NetworkUnknown, nil
	default:
		return NetworkUnknown, fmt.Errorf("unknown network type %q", s)
	}
}

// GeoLocation is a WGS-84 latitude/longitude coordinate pair.
type GeoLocation struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// PixelCoordinate locates a station on the rendered map image.
// Components are non-negative; absence of a placement is expressed as a
// nil *PixelCoordinate on the owning record, never as a sentinel value.
type PixelCoordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ObservationPoint is one station record of the registry. Field order
// mirrors the delimited file layout (see package doc).
type ObservationPoint struct {
	Network   NetworkType
	Code      string
	Suspended bool
	Name      string
	Region    string
	Location  GeoLocation
	Pixel     *PixelCoordinate

	// Optional administrative linkage, independent of all other fields.
	ClassificationID           *int
	PrefectureClassificationID *int
}

// Validate reports whether the record satisfies the registry invariants:
// a non-empty code, finite coordinates, and a non-negative pixel placement
// when one is present. Codecs call it on every decoded record.
func (p ObservationPoint) Validate() error {
	if p.Code == "" {
		return errors.New("station code is empty")
	}
	if !isFinite(p.Location.Latitude) || !isFinite(p.Location.Longitude) {
		return fmt.Errorf("station %s: non-finite location (%v, %v)", p.Code, p.Location.Latitude, p.Location.Longitude)
	}
	if p.Pixel != nil && (p.Pixel.X < 0 || p.Pixel.Y < 0) {
		return fmt.Errorf("station %s: negative pixel coordinate (%d, %d)", p.Code, p.Pixel.X, p.Pixel.Y)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
