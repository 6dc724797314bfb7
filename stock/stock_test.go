package stock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStock_Last(t *testing.T) {
	s := &Stock{
		DayLine: []Candle{
			{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
			{Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		},
	}
	last, ok := s.Last(DayLine)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), last)

	_, ok = s.Last(HourLine)
	assert.False(t, ok)
	_, ok = s.Last(AdjustFactor)
	assert.False(t, ok)
}

func TestDate(t *testing.T) {
	assert.Equal(t,
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Date(time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)),
	)
}
