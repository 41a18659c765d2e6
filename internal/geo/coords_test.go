package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"origin", 0, 0, false},
		{"delhi", 28.6139, 77.2090, false},
		{"lat lower bound", -90, 0, false},
		{"lat upper bound", 90, 0, false},
		{"lng lower bound", 0, -180, false},
		{"lng upper bound", 0, 180, false},
		{"lat too low", -90.0001, 0, true},
		{"lat too high", 90.0001, 0, true},
		{"lng too low", 0, -180.0001, true},
		{"lng too high", 0, 180.0001, true},
		{"lat NaN", math.NaN(), 0, true},
		{"lng NaN", 0, math.NaN(), true},
		{"lat Inf", math.Inf(1), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lng)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRadius(t *testing.T) {
	assert.NoError(t, ValidateRadius(0.1))
	assert.NoError(t, ValidateRadius(5))
	assert.NoError(t, ValidateRadius(50))

	assert.Error(t, ValidateRadius(0))
	assert.Error(t, ValidateRadius(-1))
	assert.Error(t, ValidateRadius(50.01))
	assert.Error(t, ValidateRadius(math.NaN()))
}

func TestBoxAround(t *testing.T) {
	box := BoxAround(28.6139, 77.2090, 11.1)

	require.InDelta(t, 28.5139, box.MinLat, 1e-9)
	require.InDelta(t, 28.7139, box.MaxLat, 1e-9)
	require.InDelta(t, 77.1090, box.MinLng, 1e-9)
	require.InDelta(t, 77.3090, box.MaxLng, 1e-9)

	// box is symmetric around the center
	assert.InDelta(t, box.MaxLat-28.6139, 28.6139-box.MinLat, 1e-9)
	assert.InDelta(t, box.MaxLng-77.2090, 77.2090-box.MinLng, 1e-9)
}
