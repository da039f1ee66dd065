package engine

import (
	"math"
	"time"

	"github.com/tartampluch/go-bazi/internal/calendar"
	"github.com/tartampluch/go-bazi/internal/config"
	"github.com/tartampluch/go-bazi/internal/ganzhi"
)

// Direction is the way luck periods walk the sexagenary cycle.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// step is +1 forward and -1 backward.
func (d Direction) step() int {
	if d == Backward {
		return -1
	}
	return 1
}

// LuckDirection is forward for a yang year with a male or a yin year with a
// female, backward otherwise.
func LuckDirection(yearStem ganzhi.Stem, g Gender) Direction {
	if yearStem.Yang() == (g == Male) {
		return Forward
	}
	return Backward
}

// LuckPeriod is one ten-year period (dayun).
type LuckPeriod struct {
	Index     int            `json:"index"`
	StartAge  int            `json:"start_age"`
	EndAge    int            `json:"end_age"`
	StartYear int            `json:"start_year"`
	EndYear   int            `json:"end_year"`
	Pair      ganzhi.Pair    `json:"pair"`
	Element   ganzhi.Element `json:"element"`
}

// LuckCycle is the full decade sequence with its anchoring term.
type LuckCycle struct {
	Direction    Direction          `json:"direction"`
	StartAge     int                `json:"start_age"`
	DaysToTerm   float64            `json:"days_to_term"`
	Term         calendar.SolarTerm `json:"term"`
	StartInstant time.Time          `json:"start_instant"`
	Periods      []LuckPeriod       `json:"periods"`
}

// PeriodAt returns the period covering age, if any.
func (c LuckCycle) PeriodAt(age int) (LuckPeriod, bool) {
	for _, p := range c.Periods {
		if age >= p.StartAge && age <= p.EndAge {
			return p, true
		}
	}
	return LuckPeriod{}, false
}

const luckDayFactor = 120

// StartAge converts the distance to the anchoring term with the three days
// per year rule. Halves round up.
func StartAge(days float64) int {
	return int(math.Floor(days/config.DaysPerLuckYear + 0.5))
}

// BuildLuckCycle anchors the decades on the sectional term nearest to the
// corrected birth instant in the direction of travel. Period years count
// from the civil birth year.
func BuildLuckCycle(cal Calendar, fp FourPillars, g Gender, birthYear int) (LuckCycle, error) {
	dir := LuckDirection(fp.Year.Stem, g)
	term, err := cal.NearestSolarTerm(fp.Corrected, dir == Forward)
	if err != nil {
		return LuckCycle{}, calendarError("nearest solar term", err)
	}

	days := math.Abs(term.Time.Sub(fp.Corrected).Hours()) / 24
	start := StartAge(days)
	// Each day to the term stands for 120 days of life.
	offset := time.Duration(days * luckDayFactor * float64(24*time.Hour))

	c := LuckCycle{
		Direction:    dir,
		StartAge:     start,
		DaysToTerm:   days,
		Term:         term,
		StartInstant: fp.Corrected.Add(offset.Round(time.Second)),
		Periods:      LuckPeriods(fp.Month.Pair, dir, start, birthYear),
	}
	return c, nil
}

// LuckPeriods steps from the month pair through config.LuckPeriodCount
// contiguous decades.
func LuckPeriods(month ganzhi.Pair, dir Direction, startAge, birthYear int) []LuckPeriod {
	out := make([]LuckPeriod, config.LuckPeriodCount)
	for i := range out {
		n := (i + 1) * dir.step()
		pair := ganzhi.Pair{Stem: month.Stem.Offset(n), Branch: month.Branch.Offset(n)}
		age := startAge + i*config.LuckPeriodYears
		out[i] = LuckPeriod{
			Index:     i + 1,
			StartAge:  age,
			EndAge:    age + config.LuckPeriodYears - 1,
			StartYear: birthYear + age,
			EndYear:   birthYear + age + config.LuckPeriodYears - 1,
			Pair:      pair,
			Element:   pair.Stem.Element(),
		}
	}
	return out
}
