// Command validate performs integrity checks on an observation station
// file before it is shipped to the service: tolerant decode, registry
// invariants, geographic plausibility, binary round-trip stability, and
// map canvas coverage.
//
// Usage:
//
//	go run ./cmd/validate -stations stations.csv
//	go run ./cmd/validate -stations stations.pb -canvas-width 352 -canvas-height 400
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
)

// Monitor map bounds in degrees. Stations outside this window cannot be
// drawn on the intensity map and indicate bad coordinate data.
const (
	minLatitude  = 20.0
	maxLatitude  = 50.0
	minLongitude = 120.0
	maxLongitude = 155.0
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	stations := flag.String("stations", "", "path to the station file (.csv or .pb)")
	encoding := flag.String("encoding", "utf8", "text encoding for CSV input: utf8 or sjis")
	canvasWidth := flag.Int("canvas-width", 352, "monitor map canvas width in pixels")
	canvasHeight := flag.Int("canvas-height", 400, "monitor map canvas height in pixels")
	flag.Parse()

	if *stations == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*stations, *encoding, *canvasWidth, *canvasHeight); code != 0 {
		os.Exit(code)
	}
}

func run(path, encoding string, canvasWidth, canvasHeight int) int {
	fmt.Println("=== Station File Integrity Validation ===")
	fmt.Println()

	points, decodePhase, failedLines, err := loadStations(path, encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load stations: %v\n", err)
		return 1
	}

	phases := []*phase{
		decodePhase,
		validateRegistry(points),
		validateGeography(points),
		validateRoundTrip(points),
		validateCanvas(points, canvasWidth, canvasHeight),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	mapped, unmapped := countPlacements(points)
	fmt.Println()
	fmt.Printf("Stations: %d parsed, %d failed lines, %d mapped, %d unmapped\n",
		len(points), failedLines, mapped, unmapped)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

// loadStations decodes the station file and folds per-line CSV failures
// into the decode phase. Only an unreadable file is fatal.
func loadStations(path, encoding string) ([]domain.ObservationPoint, *phase, int, error) {
	p := &phase{name: "Phase 1: Decode"}

	if strings.EqualFold(filepath.Ext(path), ".pb") || strings.EqualFold(filepath.Ext(path), ".bin") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, 0, err
		}
		points, err := domain.DecodeBinary(data)
		if err != nil {
			p.errorf("binary decode: %v", err)
			return nil, p, 0, nil
		}
		return points, p, 0, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, 0, err
	}
	defer f.Close()

	var r io.Reader = f
	switch encoding {
	case "utf8":
	case "sjis":
		r = transform.NewReader(f, japanese.ShiftJIS.NewDecoder())
	default:
		return nil, nil, 0, fmt.Errorf("unknown encoding %q (want utf8 or sjis)", encoding)
	}

	result, err := domain.DecodeCSV(r)
	if err != nil {
		return nil, nil, 0, err
	}
	for _, lineErr := range result.Errors {
		p.errorf("%v", lineErr)
	}
	return result.Points, p, result.Failed, nil
}

// ── Phase 2: Registry invariants ──
// Every code unique and non-empty, coordinates finite, pixels non-negative.

func validateRegistry(points []domain.ObservationPoint) *phase {
	p := &phase{name: "Phase 2: Registry invariants"}

	seen := map[string]int{}
	for i := range points {
		pt := &points[i]
		if pt.Code == "" {
			p.errorf("station %d: empty code", i)
			continue
		}
		if first, dup := seen[pt.Code]; dup {
			p.errorf("station %d: duplicate code %q (first seen at %d)", i, pt.Code, first)
		} else {
			seen[pt.Code] = i
		}
		if err := pt.Validate(); err != nil {
			p.errorf("station %s: %v", pt.Code, err)
		}
	}
	return p
}

// ── Phase 3: Geographic plausibility ──
// Coordinates must fall inside the monitor map window.

func validateGeography(points []domain.ObservationPoint) *phase {
	p := &phase{name: "Phase 3: Geographic plausibility"}

	for i := range points {
		pt := &points[i]
		lat, lon := pt.Location.Latitude, pt.Location.Longitude
		if lat < minLatitude || lat > maxLatitude {
			p.errorf("station %s: latitude %g outside [%g, %g]", pt.Code, lat, minLatitude, maxLatitude)
		}
		if lon < minLongitude || lon > maxLongitude {
			p.errorf("station %s: longitude %g outside [%g, %g]", pt.Code, lon, minLongitude, maxLongitude)
		}
	}
	return p
}

// ── Phase 4: Binary round-trip ──
// Encoding, decoding, and re-encoding must reproduce identical bytes.

func validateRoundTrip(points []domain.ObservationPoint) *phase {
	p := &phase{name: "Phase 4: Binary round-trip"}

	encoded, err := domain.EncodeBinary(points)
	if err != nil {
		p.errorf("encode: %v", err)
		return p
	}
	decoded, err := domain.DecodeBinary(encoded)
	if err != nil {
		p.errorf("decode: %v", err)
		return p
	}
	if len(decoded) != len(points) {
		p.errorf("count changed: encoded %d stations, decoded %d", len(points), len(decoded))
		return p
	}
	reencoded, err := domain.EncodeBinary(decoded)
	if err != nil {
		p.errorf("re-encode: %v", err)
		return p
	}
	if !bytes.Equal(encoded, reencoded) {
		p.errorf("unstable encoding: re-encoded bytes differ (%d vs %d bytes)", len(encoded), len(reencoded))
	}
	return p
}

// ── Phase 5: Canvas coverage ──
// Every placed pixel must land on the monitor map canvas.

func validateCanvas(points []domain.ObservationPoint, width, height int) *phase {
	p := &phase{name: fmt.Sprintf("Phase 5: Canvas coverage (%dx%d)", width, height)}

	for i := range points {
		pt := &points[i]
		if pt.Pixel == nil {
			continue
		}
		if pt.Pixel.X >= width || pt.Pixel.Y >= height {
			p.errorf("station %s: pixel (%d, %d) outside canvas", pt.Code, pt.Pixel.X, pt.Pixel.Y)
		}
	}
	return p
}

// ── Helpers ──

func countPlacements(points []domain.ObservationPoint) (mapped, unmapped int) {
	for i := range points {
		if points[i].Pixel != nil {
			mapped++
		} else {
			unmapped++
		}
	}
	return mapped, unmapped
}
