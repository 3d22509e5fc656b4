package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayKeepsCalendarDate(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	late := time.Date(2024, 3, 8, 22, 30, 0, 0, ny)

	assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), Day(late))
	assert.Equal(t, "2024-03-08", FormatDay(late))
	assert.Equal(t, "2024-03-09", FormatDay(late.UTC()))
}

func TestDayRange(t *testing.T) {
	from := time.Date(2024, 2, 27, 13, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01"}, DayRange(from, to))
	assert.Equal(t, []string{"2024-03-01"}, DayRange(to, to))
	assert.Empty(t, DayRange(to, from))
}
