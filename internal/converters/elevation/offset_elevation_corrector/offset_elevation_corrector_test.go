package offset_elevation_corrector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrectElevation(t *testing.T) {
	corrector := NewOffsetElevationCorrector(36.7)
	assert.InDelta(t, 46.7, corrector.CorrectElevation(139.7, 35.6, 10), 1e-9)
	assert.InDelta(t, 36.7, corrector.CorrectElevation(0, 0, 0), 1e-9)

	assert.Equal(t, 5.0, NewOffsetElevationCorrector(0).CorrectElevation(1, 2, 5))
}
