// Package calendar is an offline Chinese calendar: solar terms, the lunisolar
// (nongli) month structure, and the sexagenary pillars of an instant.
//
// Astronomical implements every lookup the chart engine needs. Results are
// memoized per year, so a single instance should be shared.
package calendar

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tartampluch/go-bazi/internal/config"
	"github.com/tartampluch/go-bazi/internal/ganzhi"
)

var (
	// ErrUnsupportedYear is returned for instants or lunar years outside
	// config.MinYear..config.MaxYear.
	ErrUnsupportedYear = errors.New("calendar: year outside supported range")

	// ErrInvalidLunarDate is returned when a lunar month or day does not exist.
	ErrInvalidLunarDate = errors.New("calendar: lunar date does not exist")
)

const cstOffset = config.CSTOffsetSeconds

// CST is China Standard Time, the reference zone of the Chinese calendar.
var CST = time.FixedZone(config.CSTZoneName, cstOffset)

// -----------------------------------------------------------------------------
// Types
// -----------------------------------------------------------------------------

// LunarDate is a date of the Chinese lunisolar calendar.
type LunarDate struct {
	Year  int  `json:"year"`
	Month int  `json:"month"`
	Day   int  `json:"day"`
	Leap  bool `json:"is_leap_month"`
}

func (d LunarDate) String() string {
	leap := ""
	if d.Leap {
		leap = "L"
	}
	return fmt.Sprintf("%04d-%s%02d-%02d", d.Year, leap, d.Month, d.Day)
}

// SolarTerm is one of the 24 jieqi of a Gregorian year.
type SolarTerm struct {
	// Index counts from 小寒 (0) to 冬至 (23) within the Gregorian year.
	Index int    `json:"index"`
	Name  string `json:"name"`

	// Longitude is the Sun's apparent ecliptic longitude in degrees.
	Longitude float64 `json:"longitude"`

	// Time is the instant of the term, in CST.
	Time time.Time `json:"time"`

	// Sectional terms (jie) open a month; the others are principal terms (zhongqi).
	Sectional bool `json:"sectional"`
}

// MonthBranch returns the month branch a sectional term opens. For principal
// terms it returns the branch of the month they fall in.
func (s SolarTerm) MonthBranch() ganzhi.Branch {
	return ganzhi.Chou.Offset(s.Index / 2)
}

// Pillars are the four raw stem-branch pairs of an instant.
type Pillars struct {
	Year  ganzhi.Pair `json:"year"`
	Month ganzhi.Pair `json:"month"`
	Day   ganzhi.Pair `json:"day"`
	Hour  ganzhi.Pair `json:"hour"`
}

// TermNames lists the 24 solar terms from 小寒 to 冬至.
var TermNames = [24]string{
	"小寒", "大寒", "立春", "雨水", "惊蛰", "春分",
	"清明", "谷雨", "立夏", "小满", "芒种", "夏至",
	"小暑", "大暑", "立秋", "处暑", "白露", "秋分",
	"寒露", "霜降", "立冬", "小雪", "大雪", "冬至",
}

const (
	termLiChun      = 2
	termWinterSolst = 23
)

// lunarMonth is one month of a lunar span. Start is a CST day number.
type lunarMonth struct {
	Year  int
	Month int
	Leap  bool
	Start int
	Days  int
}

// -----------------------------------------------------------------------------
// Astronomical calendar
// -----------------------------------------------------------------------------

// Astronomical computes the calendar from low-precision ephemerides.
// It is safe for concurrent use.
type Astronomical struct {
	mu    sync.RWMutex
	terms map[int][]SolarTerm
	spans map[int][]lunarMonth
}

// NewAstronomical returns an empty calendar; years are computed on first use.
func NewAstronomical() *Astronomical {
	return &Astronomical{
		terms: make(map[int][]SolarTerm),
		spans: make(map[int][]lunarMonth),
	}
}

func checkYear(y int) error {
	if y < config.MinYear || y > config.MaxYear {
		return fmt.Errorf("%w: %d not in %d..%d", ErrUnsupportedYear, y, config.MinYear, config.MaxYear)
	}
	return nil
}

// SolarTermsForYear returns the 24 terms of a Gregorian year in order.
func (a *Astronomical) SolarTermsForYear(year int) ([]SolarTerm, error) {
	if err := checkYear(year); err != nil {
		return nil, err
	}
	terms := a.yearTerms(year)
	out := make([]SolarTerm, len(terms))
	copy(out, terms)
	return out, nil
}

// yearTerms returns the memoized terms of any year, including the neighbours
// of the supported range.
func (a *Astronomical) yearTerms(year int) []SolarTerm {
	a.mu.RLock()
	terms, ok := a.terms[year]
	a.mu.RUnlock()
	if ok {
		return terms
	}

	terms = computeTerms(year)

	a.mu.Lock()
	if cached, ok := a.terms[year]; ok {
		terms = cached
	} else {
		a.terms[year] = terms
		slog.Debug(config.MsgTermCached,
			config.LogKeyComponent, config.CompCalendar,
			config.LogKeyYear, year,
		)
	}
	a.mu.Unlock()
	return terms
}

func computeTerms(year int) []SolarTerm {
	base := float64(dayNumber(year, time.January, 6)) - 0.5
	terms := make([]SolarTerm, len(TermNames))
	for i := range terms {
		lon := normDeg(285 + 15*float64(i))
		jd := solveSunLongitude(lon, base+float64(i)*tropicalYr/24)
		terms[i] = SolarTerm{
			Index:     i,
			Name:      TermNames[i],
			Longitude: lon,
			Time:      timeOfJD(jd).In(CST),
			Sectional: i%2 == 0,
		}
	}
	return terms
}

// sectionalAround returns the sectional terms of year-1..year+1 in order.
func (a *Astronomical) sectionalAround(year int) []SolarTerm {
	var out []SolarTerm
	for y := year - 1; y <= year+1; y++ {
		for _, s := range a.yearTerms(y) {
			if s.Sectional {
				out = append(out, s)
			}
		}
	}
	return out
}

// NearestSolarTerm returns the first sectional term strictly after t when
// forward is true, otherwise the last sectional term at or before t.
func (a *Astronomical) NearestSolarTerm(t time.Time, forward bool) (SolarTerm, error) {
	if err := checkYear(t.Year()); err != nil {
		return SolarTerm{}, err
	}
	terms := a.sectionalAround(t.Year())
	if forward {
		for _, s := range terms {
			if s.Time.After(t) {
				return s, nil
			}
		}
	} else {
		for i := len(terms) - 1; i >= 0; i-- {
			if !terms[i].Time.After(t) {
				return terms[i], nil
			}
		}
	}
	// Unreachable: three years of terms always bracket t.
	return SolarTerm{}, fmt.Errorf("%w: no solar term around %s", ErrUnsupportedYear, t.Format(time.RFC3339))
}

// EffectiveMonthBranch returns the month branch in force at t, i.e. the
// branch opened by the last sectional term at or before t.
func (a *Astronomical) EffectiveMonthBranch(t time.Time) (ganzhi.Branch, error) {
	s, err := a.NearestSolarTerm(t, false)
	if err != nil {
		return 0, err
	}
	return s.MonthBranch(), nil
}

// StemBranchFor returns the four pillars of t. Year and month change at the
// solar terms (the year at 立春). Day and hour follow t's wall clock; the
// day rolls over at 23:00 because the 子 hour opens the next day.
func (a *Astronomical) StemBranchFor(t time.Time) (Pillars, error) {
	if err := checkYear(t.Year()); err != nil {
		return Pillars{}, err
	}

	solarYear := t.Year()
	if t.Before(a.yearTerms(solarYear)[termLiChun].Time) {
		solarYear--
	}
	year := ganzhi.PairAt(solarYear - 4)

	monthBranch, err := a.EffectiveMonthBranch(t)
	if err != nil {
		return Pillars{}, err
	}
	// Five tigers: the 寅 month stem follows from the year stem.
	tiger := ganzhi.Stem((int(year.Stem)%5*2 + 2) % ganzhi.StemCount)
	month := ganzhi.Pair{
		Stem:   tiger.Offset(int(monthBranch.Offset(-int(ganzhi.Yin)))),
		Branch: monthBranch,
	}

	y, m, d := t.Date()
	n := dayNumber(y, m, d)
	if t.Hour() >= 23 {
		n++
	}
	day := ganzhi.PairAt(n + 49)

	// Five rats: the 子 hour stem follows from the day stem.
	hourBranch := ganzhi.HourBranch(t.Hour())
	hour := ganzhi.Pair{
		Stem:   ganzhi.Stem((int(day.Stem)%5*2 + int(hourBranch)) % ganzhi.StemCount),
		Branch: hourBranch,
	}

	return Pillars{Year: year, Month: month, Day: day, Hour: hour}, nil
}

// -----------------------------------------------------------------------------
// Lunisolar months
// -----------------------------------------------------------------------------

// SolarToLunar converts the wall-clock date of t to a lunar date.
func (a *Astronomical) SolarToLunar(t time.Time) (LunarDate, error) {
	y, m, d := t.Date()
	if err := checkYear(y); err != nil {
		return LunarDate{}, err
	}
	n := dayNumber(y, m, d)
	for _, sy := range []int{y, y + 1} {
		for _, mo := range a.lunarSpan(sy) {
			if n >= mo.Start && n < mo.Start+mo.Days {
				return LunarDate{Year: mo.Year, Month: mo.Month, Day: n - mo.Start + 1, Leap: mo.Leap}, nil
			}
		}
	}
	return LunarDate{}, fmt.Errorf("%w: %s", ErrUnsupportedYear, t.Format(config.DateLayout))
}

// LunarToSolar returns the Gregorian date (midnight CST) of a lunar date.
func (a *Astronomical) LunarToSolar(ld LunarDate) (time.Time, error) {
	if err := checkYear(ld.Year); err != nil {
		return time.Time{}, err
	}
	if ld.Month < 1 || ld.Month > 12 || ld.Day < 1 || ld.Day > 30 {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidLunarDate, ld)
	}
	for _, sy := range []int{ld.Year, ld.Year + 1} {
		for _, mo := range a.lunarSpan(sy) {
			if mo.Year != ld.Year || mo.Month != ld.Month || mo.Leap != ld.Leap {
				continue
			}
			if ld.Day > mo.Days {
				return time.Time{}, fmt.Errorf("%w: %s has only %d days", ErrInvalidLunarDate, ld, mo.Days)
			}
			y, m, d := dateOfDayNumber(mo.Start + ld.Day - 1)
			return time.Date(y, m, d, 0, 0, 0, 0, CST), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidLunarDate, ld)
}

// lunarSpan returns the months from the 11th month of year-1 (the one holding
// the winter solstice) up to, excluding, the 11th month of year.
func (a *Astronomical) lunarSpan(year int) []lunarMonth {
	a.mu.RLock()
	span, ok := a.spans[year]
	a.mu.RUnlock()
	if ok {
		return span
	}

	span = a.computeSpan(year)

	a.mu.Lock()
	if cached, ok := a.spans[year]; ok {
		span = cached
	} else {
		a.spans[year] = span
	}
	a.mu.Unlock()
	return span
}

func (a *Astronomical) computeSpan(year int) []lunarMonth {
	k1 := a.solsticeMoon(year - 1)
	k2 := a.solsticeMoon(year)

	starts := make([]int, 0, 14)
	for k := k1; k <= k2; k++ {
		starts = append(starts, cstDayNumber(newMoon(k)))
	}

	var principal []int
	for y := year - 1; y <= year; y++ {
		for _, s := range a.yearTerms(y) {
			if !s.Sectional {
				principal = append(principal, cstDayNumber(julianDay(s.Time)))
			}
		}
	}

	// In a 13-month span the first month without a principal term is leap.
	count := len(starts) - 1
	leap := -1
	if count == 13 {
		for i := 1; i < count; i++ {
			if !containsDay(principal, starts[i], starts[i+1]) {
				leap = i
				break
			}
		}
	}

	months := make([]lunarMonth, 0, count)
	num, label := 10, year-1
	for i := 0; i < count; i++ {
		mo := lunarMonth{Start: starts[i], Days: starts[i+1] - starts[i]}
		if i == leap {
			mo.Leap = true
		} else {
			num = num%12 + 1
			if num == 1 {
				label = year
			}
		}
		mo.Year, mo.Month = label, num
		months = append(months, mo)
	}
	return months
}

// solsticeMoon returns the lunation number of the month holding the winter
// solstice of year, compared by CST calendar day.
func (a *Astronomical) solsticeMoon(year int) float64 {
	ws := julianDay(a.yearTerms(year)[termWinterSolst].Time)
	wsDay := cstDayNumber(ws)
	k := newMoonIndex(ws)
	for cstDayNumber(newMoon(k)) > wsDay {
		k--
	}
	for cstDayNumber(newMoon(k+1)) <= wsDay {
		k++
	}
	return k
}

func containsDay(days []int, from, to int) bool {
	for _, d := range days {
		if d >= from && d < to {
			return true
		}
	}
	return false
}
