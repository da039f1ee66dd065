package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-bazi/internal/calendar"
	"github.com/tartampluch/go-bazi/internal/config"
	"github.com/tartampluch/go-bazi/internal/ganzhi"
)

func TestYearPair(t *testing.T) {
	tests := map[int]string{
		4:    "甲子",
		1984: "甲子",
		1990: "庚午",
		2024: "甲辰",
		2043: "癸亥",
	}
	for year, expected := range tests {
		assert.Equal(t, expected, YearPair(year).String(), "year %d", year)
	}
}

func TestAspectScores_Clamp(t *testing.T) {
	s := AspectScores{Overall: 0, Career: 11, Wealth: -3, Relationship: 5, Health: 10}
	s.clamp()
	assert.Equal(t, AspectScores{Overall: 1, Career: 10, Wealth: 1, Relationship: 5, Health: 10}, s)
}

func TestPeachBlossom(t *testing.T) {
	assert.Equal(t, ganzhi.You, peachBlossom[ganzhi.Chen])
	assert.Equal(t, ganzhi.Mao, peachBlossom[ganzhi.Xu])
	assert.Equal(t, ganzhi.Zi, peachBlossom[ganzhi.Wei])
	assert.Equal(t, ganzhi.Horse, peachBlossom[ganzhi.Chou])
}

func TestScoreYear_Bounds(t *testing.T) {
	fp := testPillars(t, reference, ganzhi.Si)
	c := Chart{
		Born:    time.Date(1990, 5, 15, 14, 30, 0, 0, calendar.CST),
		Pillars: fp,
		Luck:    LuckCycle{Periods: LuckPeriods(fp.Month.Pair, Forward, 7, 1990)},
	}

	f, err := ScoreYear(c, 1990)
	require.NoError(t, err)
	assert.Equal(t, 0, f.Age)
	assert.Equal(t, []string{config.TagSameElement}, f.Highlights)
	assert.Equal(t, []string{config.TagReturnYear}, f.Warnings)

	// Years before birth are scored too; only the age turns negative.
	f, err = ScoreYear(c, 1988)
	require.NoError(t, err)
	assert.Equal(t, -2, f.Age)
	assert.Equal(t, "戊辰", f.Pair.String())
	assert.Equal(t, []string{config.TagStemSupport}, f.Highlights)
	assert.Equal(t, AspectScores{Overall: 7, Career: 7, Wealth: 7, Relationship: 6, Health: 6}, f.Scores)

	_, err = ScoreYear(c, config.MaxYear+101)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ScoreYear(c, config.MaxYear+100)
	assert.NoError(t, err)
}

func TestScoreYears_StopsEarly(t *testing.T) {
	fp := testPillars(t, reference, ganzhi.Si)
	c := Chart{Born: time.Date(1990, 5, 15, 0, 0, 0, 0, calendar.CST), Pillars: fp}

	seq, err := ScoreYears(c, 2000, 2099)
	require.NoError(t, err)
	n := 0
	for f := range seq {
		n++
		if f.Year == 2004 {
			break
		}
	}
	assert.Equal(t, 5, n)

	_, err = ScoreYears(c, 2000, 2201)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
