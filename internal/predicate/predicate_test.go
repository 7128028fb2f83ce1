package predicate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDateRangeContains(t *testing.T) {
	r := NewDateRange(date(2024, 1, 1), date(2024, 1, 3), time.UTC)

	assert.True(t, r.Contains(date(2024, 1, 1)))
	assert.True(t, r.Contains(time.Date(2024, 1, 3, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(date(2024, 1, 4)))
	assert.False(t, r.Contains(time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, 3, r.Days())
	assert.Equal(t, date(2024, 1, 4), r.End())
}

func TestDateRangeUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	r := NewDateRange(time.Date(2024, 3, 1, 0, 0, 0, 0, loc), time.Date(2024, 3, 1, 0, 0, 0, 0, loc), loc)

	// 2024-02-29 20:00 UTC is 2024-03-01 06:00 at UTC+10.
	assert.True(t, r.Contains(time.Date(2024, 2, 29, 20, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)))
}

func TestCalendarDateKeepsDateFields(t *testing.T) {
	west := time.FixedZone("UTC-5", -5*3600)

	got := CalendarDate(date(2024, 1, 2), west)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, west), got)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, west), Midnight(date(2024, 1, 2), west))
}

func TestIDSet(t *testing.T) {
	var empty IDSet
	assert.True(t, empty.Contains(42))
	assert.True(t, empty.ContainsPtr(nil))

	s := NewIDSet(3, 1, 3)
	assert.Equal(t, []uint{1, 3}, s.Values())
	assert.True(t, s.Contains(1))
	assert.False(t, s.Contains(2))
	assert.False(t, s.ContainsPtr(nil))

	one := uint(1)
	assert.True(t, s.ContainsPtr(&one))
}

func TestStringSet(t *testing.T) {
	s := NewStringSet(" US ", "", "ca")
	assert.Equal(t, []string{"ca", "us"}, s.Values())
	assert.True(t, s.Contains("us"))
	assert.True(t, s.Contains("CA"))
	assert.False(t, s.Contains("GB"))

	assert.Nil(t, NewStringSet("", "  "))
	assert.True(t, NewStringSet().Contains("anything"))
}

func TestExactSet(t *testing.T) {
	s := NewExactSet("Completed", "pending")
	assert.True(t, s.Contains("Completed"))
	assert.False(t, s.Contains("completed"))
	assert.False(t, s.Contains("Failed"))
	assert.Equal(t, []string{"Completed", "pending"}, s.Values())
}

func TestContainsPatternEscapesWildcards(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{"smith", `%smith%`},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
		{`c:\temp`, `%c:\\temp%`},
		{"", `%%`},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsPattern(tt.term))
		})
	}
}

func TestAny(t *testing.T) {
	even := func(n int) bool { return n%2 == 0 }

	assert.True(t, Any([]int{1, 3, 4}, even))
	assert.False(t, Any([]int{1, 3}, even))
	assert.False(t, Any(nil, even))
}
