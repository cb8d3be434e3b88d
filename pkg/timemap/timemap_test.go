package timemap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveDuration(t *testing.T) {
	tests := []struct {
		name   string
		mapper Mapper
		want   float64
	}{
		{"untrimmed 1x", New(20, nil, nil, 1), 20},
		{"untrimmed 2x", New(20, nil, nil, 2), 10},
		{"trimmed 2x", New(20, Float(2), Float(12), 2), 5},
		{"start only", New(20, Float(5), nil, 1), 15},
		{"end only half speed", New(20, nil, Float(10), 0.5), 20},
		{"zero rate treated as 1x", New(20, nil, nil, 0), 20},
		{"unknown duration", New(0, nil, nil, 1), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, tc.mapper.EffectiveDuration(), 1e-9)
		})
	}
}

func TestRoundTripWithinTolerance(t *testing.T) {
	bounds := []struct {
		start, end float64
	}{
		{0, 20}, {2, 12}, {0.5, 0.75}, {7.25, 19.9},
	}

	for _, b := range bounds {
		for _, rate := range Rates {
			m := New(20, Float(b.start), Float(b.end), rate)
			name := fmt.Sprintf("%.2f-%.2f@%.2fx", b.start, b.end, rate)
			t.Run(name, func(t *testing.T) {
				for i := 0; i <= 50; i++ {
					raw := b.start + (b.end-b.start)*float64(i)/50
					assert.InDelta(t, raw, m.EffectiveToRaw(m.RawToEffective(raw)), Tolerance)

					eff := m.EffectiveDuration() * float64(i) / 50
					assert.InDelta(t, eff, m.RawToEffective(m.EffectiveToRaw(eff)), Tolerance)
				}
			})
		}
	}
}

func TestEffectiveDurationDecreasesWithRate(t *testing.T) {
	prev := -1.0
	for i := len(Rates) - 1; i >= 0; i-- {
		d := New(30, Float(3), Float(27), Rates[i]).EffectiveDuration()
		if prev >= 0 {
			assert.Greater(t, d, prev, "rate %.2f", Rates[i])
		}
		prev = d
	}
}

func TestRawToEffectiveSaturatesAtTrimEnd(t *testing.T) {
	m := New(20, Float(2), Float(12), 2)

	assert.Equal(t, 5.0, m.RawToEffective(12))
	assert.Equal(t, 5.0, m.RawToEffective(12.05))
	assert.Equal(t, 5.0, m.RawToEffective(19))
	assert.Equal(t, 0.0, m.RawToEffective(1))
	assert.InDelta(t, 2.5, m.RawToEffective(7), 1e-9)
}

func TestEffectiveToRawClampsToActiveRegion(t *testing.T) {
	m := New(20, Float(2), Float(12), 2)

	assert.Equal(t, 12.0, m.EffectiveToRaw(5))
	assert.Equal(t, 12.0, m.EffectiveToRaw(15))
	assert.Equal(t, 2.0, m.EffectiveToRaw(-3))
	assert.InDelta(t, 4.0, m.EffectiveToRaw(1), 1e-9)
}

func TestRawToEffectiveWithUnknownDuration(t *testing.T) {
	// nothing is playable until the duration is known
	m := New(0, nil, nil, 1)
	assert.Equal(t, 0.0, m.RawToEffective(3))
	assert.Equal(t, m.ClampEffective(3), m.RawToEffective(3))

	// a trim end still bounds the range
	m = New(0, Float(2), Float(6), 2)
	assert.Equal(t, 2.0, m.RawToEffective(9))
	assert.InDelta(t, 1.0, m.RawToEffective(4), 1e-9)
}

func TestNextRate(t *testing.T) {
	tests := []struct {
		current float64
		want    float64
	}{
		{0.5, 0.75},
		{1.0, 1.25},
		{2.0, 0.5},
		{1.1, 0.5},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%g", tc.current), func(t *testing.T) {
			assert.Equal(t, tc.want, NextRate(tc.current))
		})
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1.0, Clamp(-1, 1, 5))
	assert.Equal(t, 5.0, Clamp(9, 1, 5))
	assert.Equal(t, 3.0, Clamp(3, 1, 5))
	assert.Equal(t, 2.0, Clamp(3, 2, 1))
}
