// Command stations converts observation station files between the CSV and
// binary registry formats. It decodes with the same tolerant reader the
// service uses at startup, so a conversion doubles as a parse check: bad
// lines are reported and dropped, never carried forward silently.
//
// Usage:
//
//	go run ./cmd/stations -in stations_sjis.csv -encoding sjis -out stations.pb
//	go run ./cmd/stations -in stations.pb -out stations.csv
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "input station file")
	out := flag.String("out", "", "output station file")
	inFormat := flag.String("in-format", "", "input format: csv or pb (default: inferred from extension)")
	outFormat := flag.String("out-format", "", "output format: csv or pb (default: inferred from extension)")
	encoding := flag.String("encoding", "utf8", "input text encoding: utf8 or sjis")
	flag.Parse()

	if *in == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -in, -out")
	}

	inFmt, err := resolveFormat(*inFormat, *in)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	outFmt, err := resolveFormat(*outFormat, *out)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}

	points, failed, err := readStations(*in, inFmt, *encoding)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *in, err)
	}
	log.Printf("read %d stations from %s", len(points), *in)

	if err := writeStations(*out, outFmt, points); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	log.Printf("wrote %s", *out)

	printSummary(points, failed)
	return nil
}

func resolveFormat(explicit, path string) (string, error) {
	if explicit != "" {
		switch explicit {
		case "csv", "pb":
			return explicit, nil
		}
		return "", fmt.Errorf("unknown format %q (want csv or pb)", explicit)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv", nil
	case ".pb", ".bin":
		return "pb", nil
	}
	return "", fmt.Errorf("cannot infer format from %q, pass -in-format/-out-format", path)
}

// readStations decodes the input file. The returned count is the number of
// CSV lines that failed to parse and were dropped.
func readStations(path, format, encoding string) ([]domain.ObservationPoint, int, error) {
	if format == "pb" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, 0, fmt.Errorf("read: %w", err)
		}
		points, err := domain.DecodeBinary(data)
		if err != nil {
			return nil, 0, err
		}
		return points, 0, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	switch encoding {
	case "utf8":
	case "sjis":
		r = transform.NewReader(f, japanese.ShiftJIS.NewDecoder())
	default:
		return nil, 0, fmt.Errorf("unknown encoding %q (want utf8 or sjis)", encoding)
	}

	result, err := domain.DecodeCSV(r)
	if err != nil {
		return nil, 0, err
	}
	for _, lineErr := range result.Errors {
		log.Printf("skipped %v", lineErr)
	}
	return result.Points, result.Failed, nil
}

// writeStations normalizes the points through a registry so the output is
// sorted by code and rejects duplicates the service would refuse to load.
func writeStations(path, format string, points []domain.ObservationPoint) error {
	registry, err := domain.NewRegistry(points)
	if err != nil {
		return fmt.Errorf("registry invariants: %w", err)
	}
	sorted := registry.Points()

	if format == "pb" {
		data, err := domain.EncodeBinary(sorted)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o600)
	}

	var buf bytes.Buffer
	if err := domain.EncodeCSV(&buf, sorted); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

func printSummary(points []domain.ObservationPoint, failed int) {
	byNetwork := map[string]int{}
	regions := map[string]bool{}
	var suspended, unmapped int
	for i := range points {
		p := &points[i]
		byNetwork[p.Network.String()]++
		if p.Region != "" {
			regions[p.Region] = true
		}
		if p.Suspended {
			suspended++
		}
		if p.Pixel == nil {
			unmapped++
		}
	}

	fmt.Println("\n=== Station summary ===")
	fmt.Printf("Total: %d (parse failures dropped: %d)\n", len(points), failed)

	networks := make([]string, 0, len(byNetwork))
	for name := range byNetwork {
		networks = append(networks, name)
	}
	sort.Strings(networks)
	for _, name := range networks {
		fmt.Printf("  %s: %d\n", name, byNetwork[name])
	}

	fmt.Printf("Suspended: %d\n", suspended)
	fmt.Printf("Unmapped (no pixel): %d\n", unmapped)
	fmt.Printf("Regions: %d\n", len(regions))
}
