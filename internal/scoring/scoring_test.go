package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/weighted"
)

func TestWeightsSumToOne(t *testing.T) {
	for _, track := range domain.AllTrackTypes {
		w, err := WeightsFor(track)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, w.Speed+w.Acceleration+w.Handling+w.Boost, 1e-9, string(track))
	}
}

func TestScore(t *testing.T) {
	challenger := domain.CarStats{Speed: 80, Acceleration: 75, Handling: 70, Boost: 60}
	opponent := domain.CarStats{Speed: 60, Acceleration: 60, Handling: 90, Boost: 50}

	c, err := Score(challenger, domain.TrackCircuit)
	require.NoError(t, err)
	o, err := Score(opponent, domain.TrackCircuit)
	require.NoError(t, err)

	assert.InDelta(t, 71.75, c, 1e-9)
	assert.InDelta(t, 72.0, o, 1e-9)
	assert.Greater(t, o, c, "circuit rewards handling")
}

func TestScore_ClampsNegativeStats(t *testing.T) {
	s, err := Score(domain.CarStats{Speed: -50, Acceleration: 10, Handling: 10, Boost: 10}, domain.TrackStreet)
	require.NoError(t, err)
	assert.InDelta(t, 7.0, s, 1e-9)
}

func TestScore_UnknownTrack(t *testing.T) {
	_, err := Score(domain.CarStats{}, domain.TrackType("moon"))
	assert.ErrorIs(t, err, domain.ErrUnknownTrackType)
}

func TestFinishTime(t *testing.T) {
	assert.InDelta(t, 52.0, FinishTime(80), 1e-9)
	assert.Less(t, FinishTime(90), FinishTime(80))
}

func TestMultiplicative_Bounds(t *testing.T) {
	p := Multiplicative{Variance: 0.2}
	assert.InDelta(t, 90.0, p.Apply(100, func() float64 { return 0 }), 1e-9)
	assert.InDelta(t, 100.0, p.Apply(100, func() float64 { return 0.5 }), 1e-9)

	rnd := weighted.Seeded(8)
	for i := 0; i < 1000; i++ {
		v := p.Apply(50, rnd)
		assert.GreaterOrEqual(t, v, 45.0)
		assert.Less(t, v, 55.0)
	}
}

func TestAdditive_Bounds(t *testing.T) {
	p := Additive{Min: -5, Max: 20}
	assert.InDelta(t, 45.0, p.Apply(50, func() float64 { return 0 }), 1e-9)

	rnd := weighted.Seeded(9)
	for i := 0; i < 1000; i++ {
		v := p.Apply(50, rnd)
		assert.GreaterOrEqual(t, v, 45.0)
		assert.Less(t, v, 70.0)
	}
}

func TestNone(t *testing.T) {
	called := false
	v := None{}.Apply(42, func() float64 { called = true; return 0.3 })
	assert.Equal(t, 42.0, v)
	assert.False(t, called)
}

func TestRate(t *testing.T) {
	tests := []struct {
		stats domain.CarStats
		value int
		label string
	}{
		{domain.CarStats{}, 1, "Terrible"},
		{domain.CarStats{Speed: 50, Acceleration: 50, Handling: 50, Boost: 50}, 5, "Average"},
		{domain.CarStats{Speed: 100, Acceleration: 100, Handling: 100, Boost: 100}, 10, "Perfect"},
		{domain.CarStats{Speed: 90, Acceleration: 90, Handling: 90, Boost: 90}, 9, "Excellent"},
	}
	for _, tt := range tests {
		r, err := Rate(tt.stats, domain.TrackDrift)
		require.NoError(t, err)
		assert.Equal(t, tt.value, r.Value)
		assert.Equal(t, tt.label, r.Label)
	}
}
