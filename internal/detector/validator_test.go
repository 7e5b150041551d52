package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchScore(t *testing.T) {
	tests := []struct {
		name string
		log  []Phase
		want float64
	}{
		{"empty", nil, 0},
		{"full template", []Phase{Compression, Takeoff, Flight, Landing, Ground}, 1.0},
		{"missing compression", []Phase{Takeoff, Flight, Landing, Ground}, 0.8},
		{"ground only", []Phase{Ground}, 0.2},
		{"longer log is right aligned", []Phase{Ground, Compression, Takeoff, Flight, Landing, Ground}, 1.0},
		{"shifted", []Phase{Takeoff, Flight, Landing, Ground, Compression}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MatchScore(tt.log), 1e-12)
		})
	}
}

func TestValidatorEvaluate(t *testing.T) {
	v := NewValidator(DefaultParameters())

	score, ok := v.Evaluate([]Phase{Takeoff, Flight, Landing, Ground})
	assert.InDelta(t, 0.8, score, 1e-12)
	assert.True(t, ok)

	score, ok = v.Evaluate([]Phase{Ground})
	assert.InDelta(t, 0.2, score, 1e-12)
	assert.False(t, ok)

	score, ok = v.Evaluate(nil)
	assert.Zero(t, score)
	assert.False(t, ok)

	// low score, but takeoff + flight + non-empty is three criteria
	score, ok = v.Evaluate([]Phase{Takeoff, Flight, Ground, Landing})
	assert.Less(t, score, 0.75)
	assert.True(t, ok)

	assert.Zero(t, v.Valid(), "Evaluate does not count")
}

func TestValidatorQuality(t *testing.T) {
	v := NewValidator(DefaultParameters())
	assert.Equal(t, QualityUnknown, v.Quality())

	v.RecordValid()
	assert.Equal(t, QualityExcellent, v.Quality())

	v.RecordFalsePositive() // 1/2
	assert.Equal(t, QualityPoor, v.Quality())

	v.RecordValid()
	v.RecordValid() // 3/4
	assert.Equal(t, QualityGood, v.Quality())

	v.RecordFalsePositive() // 3/5
	assert.Equal(t, QualityFair, v.Quality())

	v.Reset()
	assert.Equal(t, QualityUnknown, v.Quality())
}

func TestValidatorCharacteristics(t *testing.T) {
	v := NewValidator(DefaultParameters())
	v.RecordValid()

	c := v.Characteristics(Template, []float64{0.1, 2.0, 0.5})
	assert.Equal(t, 2.0, c.PeakAcceleration)
	assert.InDelta(t, 0.01, c.AirTime, 1e-12)
	assert.InDelta(t, JumpHeight(2.0), c.JumpHeight, 1e-12)
	assert.Equal(t, QualityExcellent, c.Quality)

	assert.Equal(t, QualityUnknown, v.Characteristics(Template, nil).Quality)
}

func TestJumpHeight(t *testing.T) {
	// (2·9.8·0.1)² / (2·9.8) · 100
	assert.InDelta(t, 19.6, JumpHeight(2.0), 1e-9)
	assert.Zero(t, JumpHeight(0))
}

func TestPhaseText(t *testing.T) {
	for _, p := range []Phase{Ground, Compression, Takeoff, Flight, Landing} {
		b, err := p.MarshalText()
		assert.NoError(t, err)
		var back Phase
		assert.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, p, back)
	}
	_, err := ParsePhase("hover")
	assert.Error(t, err)
}

func TestExpectedAcceleration(t *testing.T) {
	lo, hi := Takeoff.ExpectedAcceleration()
	assert.Equal(t, 1.5, lo)
	assert.Equal(t, 4.0, hi)
	assert.True(t, Compression.InExpectedRange(-0.3))
	assert.False(t, Ground.InExpectedRange(0.5))
}
