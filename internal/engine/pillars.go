package engine

import (
	"fmt"
	"time"

	"github.com/tartampluch/go-bazi/internal/calendar"
	"github.com/tartampluch/go-bazi/internal/ganzhi"
)

// Calendar is the calendar adapter the engine consults. Implementations must
// be safe for concurrent use and return identical results for identical
// instants. *calendar.Astronomical satisfies it.
type Calendar interface {
	SolarToLunar(t time.Time) (calendar.LunarDate, error)
	LunarToSolar(d calendar.LunarDate) (time.Time, error)
	StemBranchFor(t time.Time) (calendar.Pillars, error)
	NearestSolarTerm(t time.Time, forward bool) (calendar.SolarTerm, error)
	SolarTermsForYear(year int) ([]calendar.SolarTerm, error)
	EffectiveMonthBranch(t time.Time) (ganzhi.Branch, error)
}

var _ Calendar = (*calendar.Astronomical)(nil)

// Pillar is one stem-branch pair with its dominant element and nayin.
type Pillar struct {
	ganzhi.Pair
	Element ganzhi.Element `json:"element"`
	Nayin   ganzhi.Nayin   `json:"nayin"`
}

// FourPillars is the normalized chart of a birth instant.
type FourPillars struct {
	Year  Pillar `json:"year"`
	Month Pillar `json:"month"`
	Day   Pillar `json:"day"`
	Hour  Pillar `json:"hour"`

	DayMaster        ganzhi.Stem    `json:"day_master"`
	DayMasterElement ganzhi.Element `json:"day_master_element"`

	// MonthOrder is the month branch in force per the solar terms.
	MonthOrder ganzhi.Branch `json:"month_order"`

	// Corrected is the true solar time the pillars were derived from.
	Corrected time.Time          `json:"corrected"`
	Lunar     calendar.LunarDate `json:"lunar"`
}

// Pillars returns year, month, day and hour in that order.
func (fp FourPillars) Pillars() [4]Pillar {
	return [4]Pillar{fp.Year, fp.Month, fp.Day, fp.Hour}
}

// Stems returns the four visible stems.
func (fp FourPillars) Stems() [4]ganzhi.Stem {
	return [4]ganzhi.Stem{fp.Year.Stem, fp.Month.Stem, fp.Day.Stem, fp.Hour.Stem}
}

// Branches returns the four branches.
func (fp FourPillars) Branches() [4]ganzhi.Branch {
	return [4]ganzhi.Branch{fp.Year.Branch, fp.Month.Branch, fp.Day.Branch, fp.Hour.Branch}
}

var pillarNames = [4]string{"year", "month", "day", "hour"}

// Validate checks every stem and branch against the 10 and 12 symbol sets.
func (fp FourPillars) Validate() error {
	for i, p := range fp.Pillars() {
		if !p.Stem.Valid() {
			return &StructuralError{Field: pillarNames[i] + ".stem", Value: int(p.Stem)}
		}
		if !p.Branch.Valid() {
			return &StructuralError{Field: pillarNames[i] + ".branch", Value: int(p.Branch)}
		}
		if !p.Pair.Valid() {
			return &StructuralError{Field: pillarNames[i], Value: p.Pair.String()}
		}
	}
	if !fp.MonthOrder.Valid() {
		return &StructuralError{Field: "month_order", Value: int(fp.MonthOrder)}
	}
	return nil
}

// newPillar attaches the dominant element and nayin to a raw pair.
func newPillar(field string, p ganzhi.Pair) (Pillar, error) {
	n, err := ganzhi.NayinOf(p)
	if err != nil {
		return Pillar{}, &StructuralError{Field: field, Value: p.String()}
	}
	return Pillar{Pair: p, Element: p.Stem.Element(), Nayin: n}, nil
}

// buildPillars asks the calendar for the pillars of the corrected instant.
// A non-nil lunar date is echoed instead of converting corrected back.
func buildPillars(cal Calendar, corrected time.Time, lunar *calendar.LunarDate) (FourPillars, error) {
	raw, err := cal.StemBranchFor(corrected)
	if err != nil {
		return FourPillars{}, calendarError("stem-branch lookup", err)
	}
	order, err := cal.EffectiveMonthBranch(corrected)
	if err != nil {
		return FourPillars{}, calendarError("month order lookup", err)
	}

	var ld calendar.LunarDate
	if lunar != nil {
		ld = *lunar
	} else if ld, err = cal.SolarToLunar(corrected); err != nil {
		return FourPillars{}, calendarError("lunar conversion", err)
	}

	fp := FourPillars{MonthOrder: order, Corrected: corrected, Lunar: ld}
	pairs := [4]ganzhi.Pair{raw.Year, raw.Month, raw.Day, raw.Hour}
	for i, slot := range []*Pillar{&fp.Year, &fp.Month, &fp.Day, &fp.Hour} {
		pair := pairs[i]
		if !pair.Stem.Valid() || !pair.Branch.Valid() {
			return FourPillars{}, &StructuralError{Field: pillarNames[i], Value: fmt.Sprintf("stem %d branch %d", int(pair.Stem), int(pair.Branch))}
		}
		p, err := newPillar(pillarNames[i], pair)
		if err != nil {
			return FourPillars{}, err
		}
		*slot = p
	}
	fp.DayMaster = fp.Day.Stem
	fp.DayMasterElement = fp.Day.Stem.Element()

	if err := fp.Validate(); err != nil {
		return FourPillars{}, err
	}
	return fp, nil
}
