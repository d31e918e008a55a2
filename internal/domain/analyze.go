package domain

import "log/slog"

// ResultStatus is the terminal state of one station's analysis. Every
// result lands in exactly one of the four states.
type ResultStatus uint8

const (
	// StatusSkipped: suspended or placement-less station, never sampled.
	StatusSkipped ResultStatus = iota
	// StatusClassified: sampled and matched to an intensity value.
	StatusClassified
	// StatusUnclassifiable: sampled, but the color lies outside ramp coverage.
	StatusUnclassifiable
	// StatusSampleFailed: pixel coordinate outside the grid.
	StatusSampleFailed
)

func (s ResultStatus) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusClassified:
		return "classified"
	case StatusUnclassifiable:
		return "unclassifiable"
	case StatusSampleFailed:
		return "sample_failed"
	default:
		return "unknown"
	}
}

// AnalysisResult couples a station with the outcome of one analysis pass.
// The Point reference is a read-only view into the caller's collection,
// not a copy. Color and Intensity are nil unless the status says otherwise.
type AnalysisResult struct {
	Point     *ObservationPoint
	Color     *RGB
	Intensity *float64
	Status    ResultStatus
}

// Analyze samples and classifies every station against the grid. The
// output has one result per input station, in input order: suspended and
// placement-less stations are skipped without touching the grid, and an
// out-of-bounds coordinate fails only its own station, never the batch.
func Analyze(points []ObservationPoint, grid PixelGrid, logger *slog.Logger) []AnalysisResult {
	results := make([]AnalysisResult, len(points))
	for i := range points {
		results[i] = analyzePoint(&points[i], grid, logger)
	}
	return results
}

// AnalyzeResults re-runs the pass over previously wrapped results, e.g.
// to sample a newer frame for the same stations. Point references are
// reused; prior colors and intensities are discarded.
func AnalyzeResults(results []AnalysisResult, grid PixelGrid, logger *slog.Logger) []AnalysisResult {
	out := make([]AnalysisResult, len(results))
	for i := range results {
		out[i] = analyzePoint(results[i].Point, grid, logger)
	}
	return out
}

func analyzePoint(p *ObservationPoint, grid PixelGrid, logger *slog.Logger) AnalysisResult {
	result := AnalysisResult{Point: p, Status: StatusSkipped}
	if p.Suspended || p.Pixel == nil {
		return result
	}

	width, height := grid.Bounds()
	x, y := p.Pixel.X, p.Pixel.Y
	if x < 0 || y < 0 || x >= width || y >= height {
		logger.Warn("station pixel outside grid",
			"code", p.Code,
			"x", x,
			"y", y,
			"width", width,
			"height", height,
		)
		result.Status = StatusSampleFailed
		return result
	}

	color := grid.ColorAt(x, y)
	result.Color = &color
	if value, ok := Classify(color); ok {
		result.Intensity = &value
		result.Status = StatusClassified
	} else {
		result.Status = StatusUnclassifiable
	}
	return result
}
