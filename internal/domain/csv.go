package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Station files carry at least the nine positional fields; the two
// classification ID columns are optional per record.
const (
	csvMinFields = 9
	csvMaxFields = 11
)

// LineError records one rejected station file line.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e LineError) Unwrap() error {
	return e.Err
}

// CSVDecodeResult is the outcome of a delimited decode: the stations that
// parsed, counts of both outcomes, and one LineError per rejected line.
type CSVDecodeResult struct {
	Points []ObservationPoint
	Parsed int
	Failed int
	Errors []LineError
}

// DecodeCSV reads station records from a delimited text stream, one record
// per line. Decoding is line-granular: a malformed line is tallied and
// skipped, never fatal. Only a failure to read the underlying stream
// returns a non-nil error, and the result then still holds everything
// decoded up to that point.
func DecodeCSV(r io.Reader) (CSVDecodeResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var res CSVDecodeResult
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				res.Failed++
				res.Errors = append(res.Errors, LineError{Line: pe.Line, Err: pe.Err})
				continue
			}
			return res, fmt.Errorf("read station file: %w", err)
		}

		line, _ := cr.FieldPos(0)
		point, err := parseStationRecord(record)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, LineError{Line: line, Err: err})
			continue
		}
		res.Points = append(res.Points, point)
		res.Parsed++
	}
}

// parseStationRecord converts one line's fields into an ObservationPoint.
// Field order: network, code, suspended, name, region, latitude, longitude,
// pixelX, pixelY, classificationId, prefectureClassificationId.
func parseStationRecord(fields []string) (ObservationPoint, error) {
	if len(fields) < csvMinFields {
		return ObservationPoint{}, fmt.Errorf("want at least %d fields, got %d", csvMinFields, len(fields))
	}
	if len(fields) > csvMaxFields {
		return ObservationPoint{}, fmt.Errorf("want at most %d fields, got %d", csvMaxFields, len(fields))
	}

	network, err := ParseNetworkType(fields[0])
	if err != nil {
		return ObservationPoint{}, err
	}
	suspended, err := strconv.ParseBool(strings.TrimSpace(fields[2]))
	if err != nil {
		return ObservationPoint{}, fmt.Errorf("suspended flag: %w", err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(fields[5]), 64)
	if err != nil {
		return ObservationPoint{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(fields[6]), 64)
	if err != nil {
		return ObservationPoint{}, fmt.Errorf("longitude: %w", err)
	}
	pixel, err := parsePixelFields(fields[7], fields[8])
	if err != nil {
		return ObservationPoint{}, err
	}

	point := ObservationPoint{
		Network:   network,
		Code:      strings.TrimSpace(fields[1]),
		Suspended: suspended,
		Name:      fields[3],
		Region:    fields[4],
		Location:  GeoLocation{Latitude: lat, Longitude: lon},
		Pixel:     pixel,
	}
	if len(fields) > 9 {
		point.ClassificationID, err = parseOptionalInt(fields[9])
		if err != nil {
			return ObservationPoint{}, fmt.Errorf("classification id: %w", err)
		}
	}
	if len(fields) > 10 {
		point.PrefectureClassificationID, err = parseOptionalInt(fields[10])
		if err != nil {
			return ObservationPoint{}, fmt.Errorf("prefecture classification id: %w", err)
		}
	}
	if err := point.Validate(); err != nil {
		return ObservationPoint{}, err
	}
	return point, nil
}

// parsePixelFields interprets the pixel column pair. Both blank means the
// station has no map placement; one blank or one bad integer rejects the
// record.
func parsePixelFields(xs, ys string) (*PixelCoordinate, error) {
	xs, ys = strings.TrimSpace(xs), strings.TrimSpace(ys)
	if xs == "" && ys == "" {
		return nil, nil
	}
	if xs == "" || ys == "" {
		return nil, errors.New("pixel fields must be both set or both blank")
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return nil, fmt.Errorf("pixel x: %w", err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return nil, fmt.Errorf("pixel y: %w", err)
	}
	return &PixelCoordinate{X: x, Y: y}, nil
}

func parseOptionalInt(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// EncodeCSV writes stations in iteration order, one line per record, in
// the field order parseStationRecord reads. Absent optionals serialize as
// empty fields so decode(encode(x)) restores x exactly.
func EncodeCSV(w io.Writer, points []ObservationPoint) error {
	cw := csv.NewWriter(w)
	for i := range points {
		if err := points[i].Validate(); err != nil {
			return err
		}
		if err := cw.Write(encodeStationRecord(points[i])); err != nil {
			return fmt.Errorf("write station %s: %w", points[i].Code, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush station file: %w", err)
	}
	return nil
}

func encodeStationRecord(p ObservationPoint) []string {
	record := make([]string, 0, csvMaxFields)
	record = append(record,
		p.Network.String(),
		p.Code,
		strconv.FormatBool(p.Suspended),
		p.Name,
		p.Region,
		strconv.FormatFloat(p.Location.Latitude, 'f', -1, 64),
		strconv.FormatFloat(p.Location.Longitude, 'f', -1, 64),
	)
	if p.Pixel != nil {
		record = append(record, strconv.Itoa(p.Pixel.X), strconv.Itoa(p.Pixel.Y))
	} else {
		record = append(record, "", "")
	}
	return append(record, formatOptionalInt(p.ClassificationID), formatOptionalInt(p.PrefectureClassificationID))
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
