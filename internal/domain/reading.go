package domain

import "time"

// Reading is the serialized per-station measurement destined for the sink
// topic. Intensity is null for every non-classified status so consumers
// can distinguish "no data" from intensity zero.
type Reading struct {
	Code        string      `json:"code"`
	Network     string      `json:"network"`
	Name        string      `json:"name,omitempty"`
	Region      string      `json:"region,omitempty"`
	Location    GeoLocation `json:"location"`
	Intensity   *float64    `json:"intensity"`
	Scale       string      `json:"scale,omitempty"`
	Color       string      `json:"color,omitempty"`
	Status      string      `json:"status"`
	FrameTime   time.Time   `json:"frame_time"`
	DataKind    string      `json:"data_kind"`
	Borehole    bool        `json:"borehole,omitempty"`
	ProcessedAt time.Time   `json:"processed_at"`
}

// BuildReading projects one analysis result onto the wire shape for the
// frame it was sampled from. ProcessedAt comes from the package clock so
// tests can freeze it.
func BuildReading(result AnalysisResult, frame Frame) Reading {
	reading := Reading{
		Code:        result.Point.Code,
		Network:     result.Point.Network.String(),
		Name:        result.Point.Name,
		Region:      result.Point.Region,
		Location:    result.Point.Location,
		Intensity:   result.Intensity,
		Status:      result.Status.String(),
		FrameTime:   frame.Time,
		DataKind:    string(frame.Kind),
		Borehole:    frame.Borehole,
		ProcessedAt: clock.Now(),
	}
	if result.Intensity != nil {
		reading.Scale = ScaleFromValue(*result.Intensity).String()
	}
	if result.Color != nil {
		reading.Color = result.Color.Hex()
	}
	return reading
}
