package domain

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Binary station files are a protobuf wire stream: each station is a
// length-delimited message under tag 1, and the field numbers below are
// frozen. New optional fields get the next free tag; decoders skip tags
// they do not know, so old readers keep working on new files.
const (
	wireFieldStation = 1

	stationFieldNetwork     = 1
	stationFieldCode        = 2
	stationFieldSuspended   = 3
	stationFieldName        = 4
	stationFieldRegion      = 5
	stationFieldLatitude    = 6
	stationFieldLongitude   = 7
	stationFieldPixelX      = 8
	stationFieldPixelY      = 9
	stationFieldClassID     = 10
	stationFieldPrefClassID = 11
)

// EncodeBinary serializes stations as a single framed value. Unlike the
// delimited codec there is no per-record tolerance: one invalid station
// fails the whole call.
func EncodeBinary(points []ObservationPoint) ([]byte, error) {
	var buf []byte
	for i := range points {
		if err := points[i].Validate(); err != nil {
			return nil, err
		}
		msg := appendStation(nil, &points[i])
		buf = protowire.AppendTag(buf, wireFieldStation, protowire.BytesType)
		buf = protowire.AppendBytes(buf, msg)
	}
	return buf, nil
}

func appendStation(b []byte, p *ObservationPoint) []byte {
	b = protowire.AppendTag(b, stationFieldNetwork, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.Network))
	b = protowire.AppendTag(b, stationFieldCode, protowire.BytesType)
	b = protowire.AppendString(b, p.Code)
	b = protowire.AppendTag(b, stationFieldSuspended, protowire.VarintType)
	b = protowire.AppendVarint(b, boolToVarint(p.Suspended))
	b = protowire.AppendTag(b, stationFieldName, protowire.BytesType)
	b = protowire.AppendString(b, p.Name)
	b = protowire.AppendTag(b, stationFieldRegion, protowire.BytesType)
	b = protowire.AppendString(b, p.Region)
	b = protowire.AppendTag(b, stationFieldLatitude, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(p.Location.Latitude))
	b = protowire.AppendTag(b, stationFieldLongitude, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(p.Location.Longitude))
	if p.Pixel != nil {
		b = protowire.AppendTag(b, stationFieldPixelX, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(p.Pixel.X))
		b = protowire.AppendTag(b, stationFieldPixelY, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(p.Pixel.Y))
	}
	if p.ClassificationID != nil {
		b = protowire.AppendTag(b, stationFieldClassID, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(*p.ClassificationID))
	}
	if p.PrefectureClassificationID != nil {
		b = protowire.AppendTag(b, stationFieldPrefClassID, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(*p.PrefectureClassificationID))
	}
	return b
}

func boolToVarint(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

// DecodeBinary reads a framed station stream. Any malformed frame is fatal
// for the whole call; there is no partial recovery. Unknown fields, both in
// station messages and at the top level, are skipped.
func DecodeBinary(data []byte) ([]ObservationPoint, error) {
	var points []ObservationPoint
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("read frame tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		if num != wireFieldStation || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("skip frame field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
			continue
		}

		msg, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, fmt.Errorf("read station frame: %w", protowire.ParseError(n))
		}
		data = data[n:]

		point, err := decodeStation(msg)
		if err != nil {
			return nil, fmt.Errorf("station %d: %w", len(points), err)
		}
		points = append(points, point)
	}
	return points, nil
}

func decodeStation(msg []byte) (ObservationPoint, error) {
	var p ObservationPoint
	var pixelX, pixelY *int
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if n < 0 {
			return p, fmt.Errorf("read tag: %w", protowire.ParseError(n))
		}
		msg = msg[n:]

		var err error
		switch num {
		case stationFieldNetwork:
			var v uint64
			v, msg, err = takeVarint(num, typ, msg)
			if err == nil && v > uint64(NetworkKiKNET) {
				err = fmt.Errorf("field %d: network type %d out of range", num, v)
			}
			p.Network = NetworkType(v)
		case stationFieldCode:
			p.Code, msg, err = takeString(num, typ, msg)
		case stationFieldSuspended:
			var v uint64
			v, msg, err = takeVarint(num, typ, msg)
			p.Suspended = v != 0
		case stationFieldName:
			p.Name, msg, err = takeString(num, typ, msg)
		case stationFieldRegion:
			p.Region, msg, err = takeString(num, typ, msg)
		case stationFieldLatitude:
			p.Location.Latitude, msg, err = takeDouble(num, typ, msg)
		case stationFieldLongitude:
			p.Location.Longitude, msg, err = takeDouble(num, typ, msg)
		case stationFieldPixelX:
			pixelX, msg, err = takeInt(num, typ, msg)
		case stationFieldPixelY:
			pixelY, msg, err = takeInt(num, typ, msg)
		case stationFieldClassID:
			p.ClassificationID, msg, err = takeInt(num, typ, msg)
		case stationFieldPrefClassID:
			p.PrefectureClassificationID, msg, err = takeInt(num, typ, msg)
		default:
			n = protowire.ConsumeFieldValue(num, typ, msg)
			if n < 0 {
				err = fmt.Errorf("skip field %d: %w", num, protowire.ParseError(n))
			} else {
				msg = msg[n:]
			}
		}
		if err != nil {
			return p, err
		}
	}

	if (pixelX == nil) != (pixelY == nil) {
		return p, errors.New("pixel fields must be encoded together")
	}
	if pixelX != nil {
		p.Pixel = &PixelCoordinate{X: *pixelX, Y: *pixelY}
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func takeVarint(num protowire.Number, typ protowire.Type, msg []byte) (uint64, []byte, error) {
	if typ != protowire.VarintType {
		return 0, msg, fmt.Errorf("field %d: unexpected wire type %d", num, typ)
	}
	v, n := protowire.ConsumeVarint(msg)
	if n < 0 {
		return 0, msg, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
	}
	return v, msg[n:], nil
}

func takeInt(num protowire.Number, typ protowire.Type, msg []byte) (*int, []byte, error) {
	v, rest, err := takeVarint(num, typ, msg)
	if err != nil {
		return nil, msg, err
	}
	// Negative values arrive as sign-extended 64-bit varints, the same
	// widening the encoder applies.
	iv := int64(v)
	if iv < math.MinInt32 || iv > math.MaxInt32 {
		return nil, msg, fmt.Errorf("field %d: value %d out of range", num, iv)
	}
	i := int(iv)
	return &i, rest, nil
}

func takeString(num protowire.Number, typ protowire.Type, msg []byte) (string, []byte, error) {
	if typ != protowire.BytesType {
		return "", msg, fmt.Errorf("field %d: unexpected wire type %d", num, typ)
	}
	v, n := protowire.ConsumeString(msg)
	if n < 0 {
		return "", msg, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
	}
	return v, msg[n:], nil
}

func takeDouble(num protowire.Number, typ protowire.Type, msg []byte) (float64, []byte, error) {
	if typ != protowire.Fixed64Type {
		return 0, msg, fmt.Errorf("field %d: unexpected wire type %d", num, typ)
	}
	v, n := protowire.ConsumeFixed64(msg)
	if n < 0 {
		return 0, msg, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
	}
	return math.Float64frombits(v), msg[n:], nil
}
