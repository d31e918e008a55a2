package domain

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStationLine = "K-NET,AIC001,false,Nagoya,Aichi,35.1699,136.9076,245,261,23,2301"

func TestDecodeCSV(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		res, err := DecodeCSV(strings.NewReader(testStationLine + "\n"))

		require.NoError(t, err)
		assert.Equal(t, 1, res.Parsed)
		assert.Equal(t, 0, res.Failed)
		require.Len(t, res.Points, 1)

		p := res.Points[0]
		assert.Equal(t, NetworkKNET, p.Network)
		assert.Equal(t, "AIC001", p.Code)
		assert.False(t, p.Suspended)
		assert.Equal(t, "Nagoya", p.Name)
		assert.Equal(t, "Aichi", p.Region)
		assert.Equal(t, 35.1699, p.Location.Latitude)
		assert.Equal(t, 136.9076, p.Location.Longitude)
		require.NotNil(t, p.Pixel)
		assert.Equal(t, 245, p.Pixel.X)
		assert.Equal(t, 261, p.Pixel.Y)
		require.NotNil(t, p.ClassificationID)
		assert.Equal(t, 23, *p.ClassificationID)
		require.NotNil(t, p.PrefectureClassificationID)
		assert.Equal(t, 2301, *p.PrefectureClassificationID)
	})

	t.Run("nine fields without optional IDs", func(t *testing.T) {
		res, err := DecodeCSV(strings.NewReader("KiK-net,IWTH01,true,Kuji,Iwate,40.19,141.75,310,95\n"))

		require.NoError(t, err)
		require.Len(t, res.Points, 1)
		p := res.Points[0]
		assert.Equal(t, NetworkKiKNET, p.Network)
		assert.True(t, p.Suspended)
		assert.Nil(t, p.ClassificationID)
		assert.Nil(t, p.PrefectureClassificationID)
	})

	t.Run("ten fields with one optional ID", func(t *testing.T) {
		res, err := DecodeCSV(strings.NewReader("K-NET,MYG004,false,Tsukidate,Miyagi,38.73,141.02,287,148,4\n"))

		require.NoError(t, err)
		require.Len(t, res.Points, 1)
		require.NotNil(t, res.Points[0].ClassificationID)
		assert.Equal(t, 4, *res.Points[0].ClassificationID)
		assert.Nil(t, res.Points[0].PrefectureClassificationID)
	})

	t.Run("blank pixel pair means no placement", func(t *testing.T) {
		res, err := DecodeCSV(strings.NewReader("K-NET,OKNH10,false,Yonaguni,Okinawa,24.45,123.01,,,,\n"))

		require.NoError(t, err)
		assert.Equal(t, 1, res.Parsed)
		require.Len(t, res.Points, 1)
		assert.Nil(t, res.Points[0].Pixel)
	})

	t.Run("half-blank pixel pair rejects the record", func(t *testing.T) {
		res, err := DecodeCSV(strings.NewReader("K-NET,OKNH10,false,Yonaguni,Okinawa,24.45,123.01,17,\n"))

		require.NoError(t, err)
		assert.Equal(t, 0, res.Parsed)
		assert.Equal(t, 1, res.Failed)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0].Error(), "both set or both blank")
	})

	t.Run("non-integer pixel rejects the record", func(t *testing.T) {
		res, err := DecodeCSV(strings.NewReader("K-NET,OKNH10,false,Yonaguni,Okinawa,24.45,123.01,17,abc\n"))

		require.NoError(t, err)
		assert.Equal(t, 1, res.Failed)
		assert.Empty(t, res.Points)
	})

	t.Run("one bad line among good ones", func(t *testing.T) {
		input := strings.Join([]string{
			"K-NET,AIC001,false,Nagoya,Aichi,35.16,136.90,245,261",
			"K-NET,broken,false,Nowhere",
			"KiK-net,IWTH01,false,Kuji,Iwate,40.19,141.75,310,95",
		}, "\n") + "\n"

		res, err := DecodeCSV(strings.NewReader(input))

		require.NoError(t, err)
		assert.Equal(t, 2, res.Parsed)
		assert.Equal(t, 1, res.Failed)
		require.Len(t, res.Points, 2)
		assert.Equal(t, "AIC001", res.Points[0].Code)
		assert.Equal(t, "IWTH01", res.Points[1].Code)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, 2, res.Errors[0].Line)
	})

	t.Run("unknown network rejects the record", func(t *testing.T) {
		res, err := DecodeCSV(strings.NewReader("F-net,AIC001,false,Nagoya,Aichi,35.16,136.90,245,261\n"))

		require.NoError(t, err)
		assert.Equal(t, 1, res.Failed)
	})

	t.Run("bad suspended flag rejects the record", func(t *testing.T) {
		res, err := DecodeCSV(strings.NewReader("K-NET,AIC001,maybe,Nagoya,Aichi,35.16,136.90,245,261\n"))

		require.NoError(t, err)
		assert.Equal(t, 1, res.Failed)
		assert.Contains(t, res.Errors[0].Error(), "suspended")
	})

	t.Run("bad latitude rejects the record", func(t *testing.T) {
		res, err := DecodeCSV(strings.NewReader("K-NET,AIC001,false,Nagoya,Aichi,north,136.90,245,261\n"))

		require.NoError(t, err)
		assert.Equal(t, 1, res.Failed)
	})

	t.Run("negative pixel rejects the record", func(t *testing.T) {
		res, err := DecodeCSV(strings.NewReader("K-NET,AIC001,false,Nagoya,Aichi,35.16,136.90,-4,261\n"))

		require.NoError(t, err)
		assert.Equal(t, 1, res.Failed)
	})

	t.Run("quoted name containing the delimiter", func(t *testing.T) {
		res, err := DecodeCSV(strings.NewReader(`K-NET,AIC001,false,"Nagoya, Naka","Aichi",35.16,136.90,245,261` + "\n"))

		require.NoError(t, err)
		require.Len(t, res.Points, 1)
		assert.Equal(t, "Nagoya, Naka", res.Points[0].Name)
	})

	t.Run("empty input", func(t *testing.T) {
		res, err := DecodeCSV(strings.NewReader(""))

		require.NoError(t, err)
		assert.Equal(t, 0, res.Parsed)
		assert.Equal(t, 0, res.Failed)
	})

	t.Run("unreadable source is fatal", func(t *testing.T) {
		_, err := DecodeCSV(&failReader{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "read station file")
	})
}

type failReader struct{}

func (*failReader) Read([]byte) (int, error) {
	return 0, errors.New("disk gone")
}

func TestEncodeCSV(t *testing.T) {
	classID, prefID := 23, 2301
	full := ObservationPoint{
		Network:                    NetworkKNET,
		Code:                       "AIC001",
		Name:                       "Nagoya",
		Region:                     "Aichi",
		Location:                   GeoLocation{Latitude: 35.1699, Longitude: 136.9076},
		Pixel:                      &PixelCoordinate{X: 245, Y: 261},
		ClassificationID:           &classID,
		PrefectureClassificationID: &prefID,
	}

	t.Run("full record layout", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, EncodeCSV(&buf, []ObservationPoint{full}))
		assert.Equal(t, testStationLine+"\n", buf.String())
	})

	t.Run("absent optionals serialize as empty fields", func(t *testing.T) {
		p := full
		p.Pixel = nil
		p.ClassificationID = nil
		p.PrefectureClassificationID = nil

		var buf bytes.Buffer
		require.NoError(t, EncodeCSV(&buf, []ObservationPoint{p}))
		assert.Equal(t, "K-NET,AIC001,false,Nagoya,Aichi,35.1699,136.9076,,,,\n", buf.String())
	})

	t.Run("invalid record is fatal", func(t *testing.T) {
		p := full
		p.Code = ""
		var buf bytes.Buffer
		require.Error(t, EncodeCSV(&buf, []ObservationPoint{p}))
	})
}

func TestCSVRoundTrip(t *testing.T) {
	classID := 7
	points := []ObservationPoint{
		{
			Network:          NetworkKNET,
			Code:             "AIC001",
			Name:             "Nagoya, Naka",
			Region:           "Aichi",
			Location:         GeoLocation{Latitude: 35.1699, Longitude: 136.9076},
			Pixel:            &PixelCoordinate{X: 245, Y: 261},
			ClassificationID: &classID,
		},
		{
			Network:   NetworkKiKNET,
			Code:      "IWTH01",
			Suspended: true,
			Name:      "Kuji",
			Region:    "Iwate",
			Location:  GeoLocation{Latitude: 40.1875, Longitude: 141.7543},
		},
		{
			Network:  NetworkUnknown,
			Code:     "X0001",
			Location: GeoLocation{Latitude: -12.5, Longitude: 0},
			Pixel:    &PixelCoordinate{X: 0, Y: 0},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, points))

	res, err := DecodeCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, len(points), res.Parsed)
	assert.Equal(t, 0, res.Failed)
	if diff := cmp.Diff(points, res.Points); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
