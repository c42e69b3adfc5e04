package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayKey_UTC(t *testing.T) {
	noon := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-14", DayKey(noon, 0))
}

func TestDayKey_OffsetCrossesMidnight(t *testing.T) {
	// 23:30 UTC is already the next day at UTC+2
	late := time.Date(2025, 3, 14, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-15", DayKey(late, 120))

	// 01:30 UTC is still the previous day at UTC-5
	early := time.Date(2025, 3, 15, 1, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-14", DayKey(early, -300))
}

func TestLocalHour(t *testing.T) {
	tests := []struct {
		name   string
		utc    time.Time
		offset int
		want   int
	}{
		{"no offset", time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), 0, 9},
		{"positive offset", time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC), 180, 2},
		{"negative offset", time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC), -300, 21},
		{"half-hour zone", time.Date(2025, 6, 1, 12, 45, 0, 0, time.UTC), 330, 18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LocalHour(tt.utc, tt.offset))
		})
	}
}

func TestSystem_NowIsUTC(t *testing.T) {
	now := System{}.Now()
	_, offset := now.Zone()
	assert.Equal(t, 0, offset)
}

func TestFixed(t *testing.T) {
	instant := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, instant, Fixed{T: instant}.Now())
}
