package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-bazi/internal/calendar"
	"github.com/tartampluch/go-bazi/internal/ganzhi"
)

// termCalendar answers NearestSolarTerm with a fixed term; other methods are
// not expected to be called.
type termCalendar struct {
	Calendar
	term    calendar.SolarTerm
	err     error
	forward *bool
}

func (c *termCalendar) NearestSolarTerm(_ time.Time, forward bool) (calendar.SolarTerm, error) {
	c.forward = &forward
	return c.term, c.err
}

func TestStartAge(t *testing.T) {
	tests := []struct {
		days     float64
		expected int
	}{
		{0, 0},
		{1.4, 0},
		{1.5, 1},
		{3, 1},
		{4.4, 1},
		{4.5, 2},
		{7.5, 3},
		{21.13, 7},
		{30, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, StartAge(tt.days), "days=%v", tt.days)
	}
}

func TestLuckDirection(t *testing.T) {
	assert.Equal(t, Forward, LuckDirection(ganzhi.Geng, Male))
	assert.Equal(t, Backward, LuckDirection(ganzhi.Geng, Female))
	assert.Equal(t, Backward, LuckDirection(ganzhi.Xin, Male))
	assert.Equal(t, Forward, LuckDirection(ganzhi.Xin, Female))
}

func TestLuckPeriods(t *testing.T) {
	fwd := LuckPeriods(ganzhi.MustPair("辛巳"), Forward, 0, 1990)
	require.Len(t, fwd, 10)
	assert.Equal(t, LuckPeriod{
		Index: 1, StartAge: 0, EndAge: 9, StartYear: 1990, EndYear: 1999,
		Pair: ganzhi.MustPair("壬午"), Element: ganzhi.Water,
	}, fwd[0])
	assert.Equal(t, "辛卯", fwd[9].Pair.String())
	assert.Equal(t, 99, fwd[9].EndAge)

	// Stepping back wraps the cycle.
	back := LuckPeriods(ganzhi.MustPair("甲子"), Backward, 3, 2000)
	assert.Equal(t, "癸亥", back[0].Pair.String())
	assert.Equal(t, "壬戌", back[1].Pair.String())
	assert.Equal(t, 2003, back[0].StartYear)
	assert.Equal(t, 13, back[1].StartAge)

	for i := 1; i < len(back); i++ {
		assert.Equal(t, back[i-1].EndAge+1, back[i].StartAge)
		assert.Equal(t, back[i-1].EndYear+1, back[i].StartYear)
	}
}

func TestBuildLuckCycle(t *testing.T) {
	fp := testPillars(t, reference, ganzhi.Si)
	fp.Corrected = time.Date(1990, 5, 15, 14, 15, 0, 0, calendar.CST)

	cal := &termCalendar{term: calendar.SolarTerm{Name: "芒种", Time: fp.Corrected.Add(3 * 24 * time.Hour), Sectional: true}}
	c, err := BuildLuckCycle(cal, fp, Male, 1990)
	require.NoError(t, err)

	require.NotNil(t, cal.forward)
	assert.True(t, *cal.forward)
	assert.Equal(t, Forward, c.Direction)
	assert.InDelta(t, 3, c.DaysToTerm, 1e-9)
	assert.Equal(t, 1, c.StartAge)
	assert.Equal(t, fp.Corrected.Add(360*24*time.Hour), c.StartInstant)
	assert.Equal(t, 1991, c.Periods[0].StartYear)

	p, ok := c.PeriodAt(25)
	require.True(t, ok)
	assert.Equal(t, 3, p.Index)
	_, ok = c.PeriodAt(0)
	assert.False(t, ok, "no period before the start age")
}

func TestBuildLuckCycle_BornOnTerm(t *testing.T) {
	fp := testPillars(t, reference, ganzhi.Si)
	fp.Corrected = time.Date(1990, 5, 5, 22, 0, 0, 0, calendar.CST)

	cal := &termCalendar{term: calendar.SolarTerm{Name: "立夏", Time: fp.Corrected}}
	c, err := BuildLuckCycle(cal, fp, Female, 1990)
	require.NoError(t, err)
	assert.False(t, *cal.forward)
	assert.Equal(t, 0, c.StartAge)
	assert.Equal(t, fp.Corrected, c.StartInstant)
	assert.Equal(t, 0, c.Periods[0].StartAge)
}

func TestBuildLuckCycle_CalendarError(t *testing.T) {
	fp := testPillars(t, reference, ganzhi.Si)
	cause := errors.New("out of range")
	_, err := BuildLuckCycle(&termCalendar{err: cause}, fp, Male, 1990)
	assert.ErrorIs(t, err, ErrCalendarUnavailable)
	assert.ErrorIs(t, err, cause)
}
