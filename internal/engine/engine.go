package engine

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/tartampluch/go-bazi/internal/calendar"
	"github.com/tartampluch/go-bazi/internal/config"
	"github.com/tartampluch/go-bazi/internal/solartime"
)

// Engine computes BaZi charts. It holds no mutable state after New and is
// safe for concurrent use; engines with different weights can coexist.
type Engine struct {
	cal      Calendar
	weights  config.Weights
	log      *slog.Logger
	batchLog *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithWeights replaces the default scoring weights.
func WithWeights(w config.Weights) Option {
	return func(e *Engine) { e.weights = w }
}

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New builds an engine over cal. The weights are validated once here.
func New(cal Calendar, opts ...Option) (*Engine, error) {
	if cal == nil {
		return nil, errors.New(config.ErrCalendarMissing)
	}
	e := &Engine{cal: cal, weights: config.DefaultWeights(), log: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.weights.Validate(); err != nil {
		return nil, err
	}
	e.batchLog = e.log.With(config.LogKeyComponent, config.CompBatch)
	e.log = e.log.With(config.LogKeyComponent, config.CompEngine)
	return e, nil
}

// Weights returns a copy of the engine's weights.
func (e *Engine) Weights() config.Weights { return e.weights }

// Chart is the full analysis of one birth input.
type Chart struct {
	Input BirthInput `json:"input"`

	// Born is the civil birth instant (a lunar input resolved to solar).
	Born       time.Time            `json:"born"`
	Correction solartime.Correction `json:"correction"`

	Pillars      FourPillars         `json:"pillars"`
	Distribution ElementDistribution `json:"distribution"`
	Verdict      DayMasterVerdict    `json:"verdict"`
	Yongshen     YongshenResult      `json:"yongshen"`
	Luck         LuckCycle           `json:"luck"`
	Patterns     PatternReport       `json:"patterns"`
}

// Compute runs the whole pipeline for in. It either returns a complete chart
// or an error matching exactly one of ErrInvalidInput,
// ErrCalendarUnavailable and ErrStructuralInvalidity (or ctx's error).
func (e *Engine) Compute(ctx context.Context, in BirthInput) (Chart, error) {
	if err := ctx.Err(); err != nil {
		return Chart{}, err
	}
	if err := in.Validate(); err != nil {
		return Chart{}, err
	}

	born, lunar, err := e.resolveCivil(in)
	if err != nil {
		return Chart{}, err
	}

	corrected, corr := solartime.Correct(born, in.Longitude)

	fp, err := buildPillars(e.cal, corrected, lunar)
	if err != nil {
		return Chart{}, err
	}

	dist, err := ScoreElements(fp, e.weights)
	if err != nil {
		return Chart{}, err
	}
	verdict := ClassifyDayMaster(fp, dist, e.weights)

	ys := YongshenInput{Pillars: fp, Distribution: dist, Verdict: verdict, Weights: e.weights}
	yongshen := SelectYongshen(ys)

	luck, err := BuildLuckCycle(e.cal, fp, in.Gender, born.Year())
	if err != nil {
		return Chart{}, err
	}

	c := Chart{
		Input:        in,
		Born:         born,
		Correction:   corr,
		Pillars:      fp,
		Distribution: dist,
		Verdict:      verdict,
		Yongshen:     yongshen,
		Luck:         luck,
		Patterns:     DetectPatterns(ys),
	}

	e.log.DebugContext(ctx, config.MsgChartComputed,
		config.LogKeyDOB, born.Format(config.DateTimeLayout),
		config.LogKeyCorrected, corrected.Format(config.DateTimeLayout),
		config.LogKeyPillars, fmt.Sprintf("%s %s %s %s", fp.Year.Pair, fp.Month.Pair, fp.Day.Pair, fp.Hour.Pair),
		config.LogKeyVerdict, verdict.Classification.String(),
		config.LogKeyMethod, string(yongshen.Method),
	)
	return c, nil
}

// resolveCivil turns the input into a civil instant in its location. For a
// lunar input the resolved lunar date is returned for echoing.
func (e *Engine) resolveCivil(in BirthInput) (time.Time, *calendar.LunarDate, error) {
	loc := in.location()
	if in.Calendar == Solar {
		born, err := wallClock(in.Year, time.Month(in.Month), in.Day, in.Hour, in.Minute, loc)
		return born, nil, err
	}

	ld := calendar.LunarDate{Year: in.Year, Month: in.Month, Day: in.Day, Leap: in.LeapMonth}
	day, err := e.cal.LunarToSolar(ld)
	switch {
	case errors.Is(err, calendar.ErrInvalidLunarDate):
		return time.Time{}, nil, invalid("lunar_date", ld.String(), "an existing lunar date")
	case err != nil:
		return time.Time{}, nil, calendarError("lunar conversion", err)
	}
	y, m, d := day.Date()
	born, err := wallClock(y, m, d, in.Hour, in.Minute, loc)
	if err != nil {
		return time.Time{}, nil, err
	}
	return born, &ld, nil
}

// Annual scores one calendar year against a computed chart.
func (e *Engine) Annual(c Chart, year int) (AnnualFortune, error) {
	return ScoreYear(c, year)
}

// AnnualRange scores the years from..to lazily.
func (e *Engine) AnnualRange(c Chart, from, to int) (iter.Seq[AnnualFortune], error) {
	return ScoreYears(c, from, to)
}

// YearStart returns the instant of 立春, where the year pillar changes.
func (e *Engine) YearStart(year int) (time.Time, error) {
	terms, err := e.cal.SolarTermsForYear(year)
	if err != nil {
		return time.Time{}, calendarError("solar terms", err)
	}
	for _, t := range terms {
		if t.Index == startOfSpring {
			return t.Time, nil
		}
	}
	return time.Time{}, &StructuralError{Field: "solar_terms", Value: fmt.Sprintf("no term %d in %d", startOfSpring, year)}
}

// startOfSpring is the index of 立春 among the terms of a Gregorian year.
const startOfSpring = 2
