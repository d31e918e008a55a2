package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNetworkType(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected NetworkType
		wantErr  bool
	}{
		{"canonical K-NET", "K-NET", NetworkKNET, false},
		{"canonical KiK-net", "KiK-net", NetworkKiKNET, false},
		{"legacy underscore K_NET", "K_NET", NetworkKNET, false},
		{"legacy underscore KiK_net", "KiK_net", NetworkKiKNET, false},
		{"lowercase", "knet", NetworkKNET, false},
		{"surrounding spaces", "  KiK-net  ", NetworkKiKNET, false},
		{"unknown keyword", "Unknown", NetworkUnknown, false},
		{"blank field", "", NetworkUnknown, false},
		{"unrecognized network", "F-net", NetworkUnknown, true},
		{"garbage", "12", NetworkUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseNetworkType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNetworkTypeString(t *testing.T) {
	assert.Equal(t, "K-NET", NetworkKNET.String())
	assert.Equal(t, "KiK-net", NetworkKiKNET.String())
	assert.Equal(t, "Unknown", NetworkUnknown.String())
	assert.Equal(t, "Unknown", NetworkType(200).String())
}

func TestObservationPointValidate(t *testing.T) {
	valid := ObservationPoint{
		Network:  NetworkKNET,
		Code:     "AIC001",
		Name:     "Nagoya",
		Region:   "Aichi",
		Location: GeoLocation{Latitude: 35.1699, Longitude: 136.9076},
		Pixel:    &PixelCoordinate{X: 245, Y: 261},
	}

	t.Run("valid record", func(t *testing.T) {
		require.NoError(t, valid.Validate())
	})

	t.Run("valid without pixel", func(t *testing.T) {
		p := valid
		p.Pixel = nil
		require.NoError(t, p.Validate())
	})

	t.Run("empty code", func(t *testing.T) {
		p := valid
		p.Code = ""
		err := p.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "code is empty")
	})

	t.Run("negative pixel x", func(t *testing.T) {
		p := valid
		p.Pixel = &PixelCoordinate{X: -1, Y: 10}
		err := p.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "negative pixel")
	})

	t.Run("negative pixel y", func(t *testing.T) {
		p := valid
		p.Pixel = &PixelCoordinate{X: 10, Y: -1}
		require.Error(t, p.Validate())
	})

	t.Run("zero pixel is allowed", func(t *testing.T) {
		p := valid
		p.Pixel = &PixelCoordinate{X: 0, Y: 0}
		require.NoError(t, p.Validate())
	})

	t.Run("NaN latitude", func(t *testing.T) {
		p := valid
		p.Location.Latitude = math.NaN()
		err := p.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "non-finite")
	})

	t.Run("infinite longitude", func(t *testing.T) {
		p := valid
		p.Location.Longitude = math.Inf(1)
		require.Error(t, p.Validate())
	})
}
