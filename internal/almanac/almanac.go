package almanac

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-vcard"

	"github.com/tartampluch/go-bazi/internal/calendar"
	"github.com/tartampluch/go-bazi/internal/config"
	"github.com/tartampluch/go-bazi/internal/engine"
	"github.com/tartampluch/go-bazi/internal/ganzhi"
)

// ChartEngine is the part of *engine.Engine the almanac needs.
type ChartEngine interface {
	ComputeBatch(ctx context.Context, inputs []engine.BirthInput) []engine.BatchResult
	Annual(c engine.Chart, year int) (engine.AnnualFortune, error)
	YearStart(year int) (time.Time, error)
}

var _ ChartEngine = (*engine.Engine)(nil)

// Config contains all parameters required to generate an almanac.
type Config struct {
	LocalPath string // Path to the .vcf file

	// Longitude and Gender are used for cards without GEO or GENDER.
	Longitude float64
	Gender    engine.Gender

	// Location is the zone of BDAY values without an offset. Nil means CST.
	Location *time.Location

	ReminderTrigger string // ISO8601 duration string (e.g., "-P1D")
}

// Generator turns a vCard file into an iCalendar almanac of luck periods and
// the current year's fortune.
type Generator struct {
	Clock  Clock       // Interface for time mocking.
	Engine ChartEngine // Chart computation, usually *engine.Engine.

	// FormatSummary lets the caller inject localized event titles. kind is
	// config.UIDKindLuck or config.UIDKindAnnual.
	FormatSummary func(kind, name string, pair ganzhi.Pair, age int) string
}

// contact is one usable vCard.
type contact struct {
	name      string
	uid       string
	birth     time.Time
	timeKnown bool
	input     engine.BirthInput
}

type runStats struct{ processed, withBday, charts, events, year int }

// Run reads cfg.LocalPath and returns the encoded calendar and one Entry per
// contact whose chart could be computed.
func (g *Generator) Run(ctx context.Context, cfg Config) ([]byte, []Entry, error) {
	start := time.Now()
	log := slog.With(config.LogKeyComponent, config.CompAlmanac, config.LogKeyFile, cfg.LocalPath)
	log.InfoContext(ctx, config.MsgAlmanacStart)

	if g.Engine == nil {
		return nil, nil, errors.New(config.ErrEngineMissing)
	}
	if cfg.LocalPath == "" {
		return nil, nil, errors.New(config.ErrLocalPathEmpty)
	}

	// 1. Acquire Data Stream
	f, err := os.Open(cfg.LocalPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = f.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// 2. Parse Contacts
	var stats runStats
	contacts, err := readContacts(ctx, f, cfg, &stats)
	if err != nil {
		return nil, nil, err
	}

	// 3. Compute Charts
	inputs := make([]engine.BirthInput, len(contacts))
	for i, c := range contacts {
		inputs[i] = c.input
	}
	results := g.Engine.ComputeBatch(ctx, inputs)
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// 4. Build Calendar
	ics, entries, err := g.buildCalendar(ctx, contacts, results, cfg.ReminderTrigger, &stats)
	if err == nil {
		logSuccess(log, stats, time.Since(start))
	}
	return ics, entries, err
}

// readContacts decodes the vCard stream, keeping cards with a usable BDAY.
func readContacts(ctx context.Context, r io.Reader, cfg Config, stats *runStats) ([]contact, error) {
	loc := cfg.Location
	if loc == nil {
		loc = calendar.CST
	}
	decoder := vcard.NewDecoder(r)
	var out []contact

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Log error but continue to next card to maximize data recovery
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompAlmanac,
				config.LogKeyError, err)
			continue
		}

		stats.processed++
		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		birth, timeKnown, err := parseDate(bday.Value, loc)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompAlmanac,
				config.LogKeyValue, bday.Value)
			continue
		}
		stats.withBday++

		// Name Strategy: FN (Formatted) > N (Structured) > Fallback
		name := config.FallbackName
		if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
			name = fn.Value
		} else if n := card.Get(config.VCardN); n != nil && n.Value != "" {
			name = n.Value
		}

		out = append(out, contact{
			name:      name,
			uid:       contactUID(name, birth),
			birth:     birth,
			timeKnown: timeKnown,
			input: engine.BirthInput{
				Year:      birth.Year(),
				Month:     int(birth.Month()),
				Day:       birth.Day(),
				Hour:      birth.Hour(),
				Minute:    birth.Minute(),
				Longitude: cardLongitude(card, cfg.Longitude),
				Gender:    cardGender(card, cfg.Gender),
				Calendar:  engine.Solar,
				Location:  birth.Location(),
			},
		})
	}
	return out, nil
}

// buildCalendar emits the events of every successful chart.
func (g *Generator) buildCalendar(ctx context.Context, contacts []contact, results []engine.BatchResult, trigger string, stats *runStats) ([]byte, []Entry, error) {
	cal := ical.NewCalendar()

	// Set standard iCalendar headers
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986: Suggest a refresh interval
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	now := g.Clock.Now()
	stats.year = now.Year()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	entries := []Entry{}
	for i, res := range results {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		c := contacts[i]
		if res.Err != nil {
			slog.Warn(config.MsgSkippedChart,
				config.LogKeyComponent, config.CompAlmanac,
				config.LogKeyName, c.name,
				config.LogKeyError, res.Err)
			continue
		}
		stats.charts++

		events, entry := g.contactEvents(c, res.Chart, now.Year(), trigger)
		for _, e := range events {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
		stats.events += len(events)
		entries = append(entries, entry)
	}

	// Handle case where no events are found.
	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), entries, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), entries, nil
}

// contactEvents creates one event per luck-period start and one for the
// current year's fortune. No event predates the birth.
func (g *Generator) contactEvents(c contact, chart engine.Chart, year int, trigger string) ([]*ical.Event, Entry) {
	entry := Entry{
		UID:         c.uid,
		Name:        c.name,
		DateOfBirth: c.birth,
		TimeKnown:   c.timeKnown,
		Pillars: strings.Join([]string{
			chart.Pillars.Year.Pair.String(), chart.Pillars.Month.Pair.String(),
			chart.Pillars.Day.Pair.String(), chart.Pillars.Hour.Pair.String(),
		}, " "),
	}
	var events []*ical.Event
	loc := c.birth.Location()

	for _, p := range chart.Luck.Periods {
		at := luckDate(chart.Luck.StartInstant.In(loc), p.StartYear, chart.Born.In(loc))
		summary := g.summary(config.UIDKindLuck, c.name, p.Pair, p.StartAge)
		desc := fmt.Sprintf("%s %d-%d (%d-%d)", p.Pair, p.StartAge, p.EndAge, p.StartYear, p.EndYear)
		events = append(events, newEvent(fmt.Sprintf(config.FormatUID, c.uid, config.UIDKindLuck, p.Index, config.ICalDomain),
			summary, desc, config.CategoryLuck, at, trigger))
	}

	age := year - chart.Born.Year()
	if p, ok := chart.Luck.PeriodAt(age); ok {
		entry.Current = &p
	}
	for _, p := range chart.Luck.Periods {
		if p.StartYear > year {
			entry.Next = &p
			break
		}
	}

	if year < chart.Born.Year() {
		return events, entry
	}
	fortune, err := g.Engine.Annual(chart, year)
	if err != nil {
		slog.Warn(config.MsgSkippedChart,
			config.LogKeyComponent, config.CompAlmanac,
			config.LogKeyName, c.name,
			config.LogKeyYear, year,
			config.LogKeyError, err)
		return events, entry
	}
	entry.Year = &fortune

	springStart, err := g.Engine.YearStart(year)
	if err != nil {
		slog.Warn(config.MsgSkippedChart,
			config.LogKeyComponent, config.CompAlmanac,
			config.LogKeyYear, year,
			config.LogKeyError, err)
		return events, entry
	}
	s := fortune.Scores
	desc := fmt.Sprintf("overall %d, career %d, wealth %d, relationship %d, health %d",
		s.Overall, s.Career, s.Wealth, s.Relationship, s.Health)
	events = append(events, newEvent(fmt.Sprintf(config.FormatUID, c.uid, config.UIDKindAnnual, year, config.ICalDomain),
		g.summary(config.UIDKindAnnual, c.name, fortune.Pair, fortune.Age), desc, config.CategoryAnnual, springStart.In(loc), trigger))
	return events, entry
}

// luckDate places the month and day of the luck start instant in the
// period's start year, never before the birth.
func luckDate(start time.Time, year int, born time.Time) time.Time {
	at := time.Date(year, start.Month(), start.Day(), start.Hour(), start.Minute(), 0, 0, start.Location())
	if at.Before(born) {
		return born
	}
	return at
}

func (g *Generator) summary(kind, name string, pair ganzhi.Pair, age int) string {
	if g.FormatSummary != nil {
		return g.FormatSummary(kind, name, pair, age)
	}
	return fmt.Sprintf(config.FallbackSummary, name, pair)
}

// newEvent builds an all-day event on the date of at.
func newEvent(uid, summary, desc, category string, at time.Time, trigger string) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, uid)
	event.Props.SetText(config.PropSummary, summary)
	event.Props.SetText(config.PropDescription, desc)
	event.Props.SetText(config.PropCategories, category)

	y, m, d := at.Date()
	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDate(time.Date(y, m, d, 0, 0, 0, 0, at.Location()))
	event.Props.Set(dtStartProp)

	if trigger != "" {
		addAlarm(event, trigger, summary)
	}
	return event
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

// logSuccess logs the final statistics of the generation process.
func logSuccess(log *slog.Logger, stats runStats, elapsed time.Duration) {
	log.Info(config.MsgGenSuccess,
		config.LogKeyDuration, elapsed.Milliseconds(),
		config.LogKeyToday, stats.year,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.processed),
			slog.Int(config.LogKeyCount, stats.withBday),
			slog.Int(config.LogKeyFound, stats.charts),
			slog.Int(config.LogKeyEvents, stats.events),
		),
	)
}

// contactUID is a deterministic identifier, stable across refreshes.
func contactUID(name string, birth time.Time) string {
	input := fmt.Sprintf(config.FormatHashInput, name, birth.Format(time.RFC3339), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}

// parseDate handles the vCard date and date-time forms that carry a year.
// Date-only values get config.DefaultBirthHour and timeKnown false; values
// without an offset are read in loc.
func parseDate(value string, loc *time.Location) (time.Time, bool, error) {
	// Absolute instants
	for _, f := range []string{config.DateFormatRFC3339, config.DateFormatFullT} {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}

	// Floating local times
	for _, f := range []string{config.DateFormatLocalT, config.DateFormatBasicT, config.DateFormatBasicTM} {
		if t, err := time.ParseInLocation(f, value, loc); err == nil {
			return t, true, nil
		}
	}

	// Dates only
	for _, f := range []string{config.DateFormatFullDash, config.DateFormatFullBasic} {
		if t, err := time.ParseInLocation(f, value, loc); err == nil {
			return t.Add(config.DefaultBirthHour * time.Hour), false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}

// cardGender reads GENDER (vCard 4), falling back to def for absent or
// non-binary values.
func cardGender(card vcard.Card, def engine.Gender) engine.Gender {
	switch sex, _ := card.Gender(); sex {
	case vcard.SexMale:
		return engine.Male
	case vcard.SexFemale:
		return engine.Female
	}
	return def
}

// cardLongitude reads the longitude from GEO, accepting both the vCard 4
// "geo:lat,lon" URI and the vCard 3 "lat;lon" pair.
func cardLongitude(card vcard.Card, def float64) float64 {
	geo := card.Get(config.VCardGeo)
	if geo == nil {
		return def
	}
	v := strings.TrimPrefix(strings.TrimSpace(geo.Value), config.GeoScheme)
	parts := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ';' })
	if len(parts) < 2 {
		return def
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return def
	}
	return lon
}
