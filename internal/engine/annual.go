package engine

import (
	"fmt"
	"iter"

	"github.com/tartampluch/go-bazi/internal/config"
	"github.com/tartampluch/go-bazi/internal/ganzhi"
)

const (
	annualBaseline = 6
	annualMin      = 1
	annualMax      = 10
)

// AspectScores rates one year per life aspect on a 1..10 scale.
type AspectScores struct {
	Overall      int `json:"overall"`
	Career       int `json:"career"`
	Wealth       int `json:"wealth"`
	Relationship int `json:"relationship"`
	Health       int `json:"health"`
}

func (s *AspectScores) clamp() {
	for _, v := range []*int{&s.Overall, &s.Career, &s.Wealth, &s.Relationship, &s.Health} {
		*v = min(annualMax, max(annualMin, *v))
	}
}

// AnnualFortune scores a calendar year (liunian) against a chart. Highlights
// and Warnings hold message IDs from config.
type AnnualFortune struct {
	Year       int            `json:"year"`
	Age        int            `json:"age"`
	Pair       ganzhi.Pair    `json:"pair"`
	Element    ganzhi.Element `json:"element"`
	Scores     AspectScores   `json:"scores"`
	Highlights []string       `json:"highlights"`
	Warnings   []string       `json:"warnings"`
}

// YearPair is the sexagenary pair of a calendar year; 4 CE is 甲子.
func YearPair(year int) ganzhi.Pair {
	return ganzhi.Pair{Stem: ganzhi.Jia.Offset(year - 4), Branch: ganzhi.Zi.Offset(year - 4)}
}

// peachBlossom maps each branch to the peach-blossom branch of its triad.
var peachBlossom = func() [ganzhi.BranchCount]ganzhi.Branch {
	var out [ganzhi.BranchCount]ganzhi.Branch
	for _, g := range []struct {
		triad [3]ganzhi.Branch
		peach ganzhi.Branch
	}{
		{[3]ganzhi.Branch{ganzhi.Shen, ganzhi.Zi, ganzhi.Chen}, ganzhi.You},
		{[3]ganzhi.Branch{ganzhi.Yin, ganzhi.Horse, ganzhi.Xu}, ganzhi.Mao},
		{[3]ganzhi.Branch{ganzhi.Hai, ganzhi.Mao, ganzhi.Wei}, ganzhi.Zi},
		{[3]ganzhi.Branch{ganzhi.Si, ganzhi.You, ganzhi.Chou}, ganzhi.Horse},
	} {
		for _, b := range g.triad {
			out[b] = g.peach
		}
	}
	return out
}()

// ScoreYear rates year against the chart's day pillar. The chart must have
// been produced by Compute. Any year up to the end of the last luck period
// of the latest supported birth is accepted; Age is negative before birth.
func ScoreYear(c Chart, year int) (AnnualFortune, error) {
	birth := c.Born.Year()
	if year > config.MaxYear+config.LuckPeriodCount*config.LuckPeriodYears {
		return AnnualFortune{}, invalid("year", year, fmt.Sprintf("<= %d", config.MaxYear+config.LuckPeriodCount*config.LuckPeriodYears))
	}

	fp := c.Pillars
	pair := YearPair(year)
	ye := pair.Stem.Element()
	dm := fp.DayMasterElement
	dayBranch := fp.Day.Branch

	f := AnnualFortune{
		Year:       year,
		Age:        year - birth,
		Pair:       pair,
		Element:    ye,
		Highlights: []string{},
		Warnings:   []string{},
	}
	s := AspectScores{annualBaseline, annualBaseline, annualBaseline, annualBaseline, annualBaseline}

	switch {
	case ye.Generates() == dm:
		s.Overall++
		s.Career++
		s.Wealth++
		f.Highlights = append(f.Highlights, config.TagStemSupport)
	case ye.Controls() == dm:
		s.Overall--
		s.Health--
		f.Warnings = append(f.Warnings, config.TagStemPressure)
	case ye == dm:
		f.Highlights = append(f.Highlights, config.TagSameElement)
	case dm.Generates() == ye:
		f.Highlights = append(f.Highlights, config.TagOutputFlow)
	case dm.Controls() == ye:
		f.Highlights = append(f.Highlights, config.TagWealthStar)
	}

	if pair.Branch == dayBranch.Combines() {
		s.Overall++
		s.Relationship += 2
		f.Highlights = append(f.Highlights, config.TagCombination)
	}
	if pair.Branch == dayBranch.Clash() {
		s.Overall--
		s.Relationship--
		s.Health--
		f.Warnings = append(f.Warnings, config.TagClash)
	}
	if pair.Branch == fp.Year.Branch {
		s.Overall--
		s.Health--
		f.Warnings = append(f.Warnings, config.TagReturnYear)
	}
	if pair.Branch == peachBlossom[dayBranch] {
		f.Highlights = append(f.Highlights, config.TagPeachBlossom)
	}
	for _, p := range c.Luck.Periods {
		if p.StartYear == year {
			f.Highlights = append(f.Highlights, config.TagLuckTransition)
			break
		}
	}

	s.clamp()
	f.Scores = s
	return f, nil
}

// ScoreYears validates the range and returns a sequence that scores each
// year only when the consumer asks for it.
func ScoreYears(c Chart, from, to int) (iter.Seq[AnnualFortune], error) {
	if to < from {
		return nil, invalid("to", to, fmt.Sprintf(">= %d", from))
	}
	if _, err := ScoreYear(c, from); err != nil {
		return nil, err
	}
	if _, err := ScoreYear(c, to); err != nil {
		return nil, err
	}
	return func(yield func(AnnualFortune) bool) {
		for y := from; y <= to; y++ {
			f, err := ScoreYear(c, y)
			if err != nil || !yield(f) {
				return
			}
		}
	}, nil
}
