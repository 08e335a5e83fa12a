package xrefresh

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdditive(t *testing.T) {
	b := Additive()
	base := time.Minute

	interval := base
	var got []time.Duration
	for range 4 {
		got = append(got, interval)
		interval = b(base, interval)
	}
	assert.Equal(t, []time.Duration{time.Minute, 2 * time.Minute, 3 * time.Minute, 4 * time.Minute}, got)
}

func TestAdditive_Saturates(t *testing.T) {
	b := Additive()
	maxDuration := time.Duration(math.MaxInt64)
	assert.Equal(t, maxDuration, b(time.Hour, maxDuration-time.Minute))
	assert.Equal(t, maxDuration, b(time.Hour, maxDuration))
}

func TestConstant(t *testing.T) {
	b := Constant()
	assert.Equal(t, 4*time.Minute, b(4*time.Minute, 4*time.Minute))
	assert.Equal(t, 4*time.Minute, b(4*time.Minute, time.Hour))
}

func TestCapped(t *testing.T) {
	tests := []struct {
		name string
		b    Backoff
		max  time.Duration
		prev time.Duration
		want time.Duration
	}{
		{name: "BelowCap", b: Additive(), max: 5 * time.Minute, prev: 2 * time.Minute, want: 3 * time.Minute},
		{name: "AtCap", b: Additive(), max: 5 * time.Minute, prev: 5 * time.Minute, want: 5 * time.Minute},
		{name: "NilUsesAdditive", b: nil, max: 5 * time.Minute, prev: time.Minute, want: 2 * time.Minute},
		{name: "ZeroMaxDisablesCap", b: Additive(), max: 0, prev: time.Hour, want: time.Hour + time.Minute},
		{name: "CapBelowBase", b: Constant(), max: time.Second, prev: time.Minute, want: time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Capped(tt.b, tt.max)(time.Minute, tt.prev)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCache_NonPositiveBackoffFallsBackToBase(t *testing.T) {
	c := &Cache[string, int]{base: time.Minute, backoff: func(time.Duration, time.Duration) time.Duration { return 0 }}
	assert.Equal(t, time.Minute, c.next(time.Hour))
}
