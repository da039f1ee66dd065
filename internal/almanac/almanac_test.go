package almanac_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-bazi/internal/almanac"
	"github.com/tartampluch/go-bazi/internal/calendar"
	"github.com/tartampluch/go-bazi/internal/config"
	"github.com/tartampluch/go-bazi/internal/engine"
	"github.com/tartampluch/go-bazi/internal/ganzhi"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// MockEngine simulates the chart engine using `testify/mock`.
type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) ComputeBatch(ctx context.Context, inputs []engine.BirthInput) []engine.BatchResult {
	args := m.Called(ctx, inputs)
	return args.Get(0).([]engine.BatchResult)
}

func (m *MockEngine) Annual(c engine.Chart, year int) (engine.AnnualFortune, error) {
	args := m.Called(c, year)
	return args.Get(0).(engine.AnnualFortune), args.Error(1)
}

func (m *MockEngine) YearStart(year int) (time.Time, error) {
	args := m.Called(year)
	return args.Get(0).(time.Time), args.Error(1)
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func writeVCF(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.vcf")
	require.NoError(t, os.WriteFile(path, []byte(content), config.FilePermUserRW))
	return path
}

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e, err := engine.New(calendar.NewAstronomical())
	require.NoError(t, err)
	return e
}

// -----------------------------------------------------------------------------
// Test Cases
// -----------------------------------------------------------------------------

func TestRun_Success(t *testing.T) {
	// Scenario: one contact with a full birth date-time, gender and position.
	path := writeVCF(t, `BEGIN:VCARD
VERSION:4.0
FN:Li Wei
BDAY:19900515T1430
GENDER:M
GEO:geo:39.9042,116.4074
END:VCARD`)

	gen := &almanac.Generator{
		Clock:  MockClock{CurrentTime: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
		Engine: newEngine(t),
	}

	ics, entries, err := gen.Run(context.Background(), almanac.Config{LocalPath: path, Longitude: 120})
	require.NoError(t, err)

	icsStr := string(ics)
	assert.Contains(t, icsStr, "BEGIN:VCALENDAR")
	assert.Contains(t, icsStr, "PRODID:"+config.ICalProdid)
	assert.Equal(t, config.LuckPeriodCount+1, strings.Count(icsStr, "BEGIN:VEVENT"), "ten luck periods plus the current year")
	assert.Contains(t, icsStr, "CATEGORIES:"+config.CategoryLuck)
	assert.Contains(t, icsStr, "CATEGORIES:"+config.CategoryAnnual)
	assert.Contains(t, icsStr, "SUMMARY:Li Wei: 壬午", "first forward period after 辛巳")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:1997", "first period dated in its start year")

	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "Li Wei", e.Name)
	assert.True(t, e.TimeKnown)
	assert.Equal(t, "庚午 辛巳 庚辰 癸未", e.Pillars)
	require.NotNil(t, e.Year)
	assert.Equal(t, 2025, e.Year.Year)
	assert.Equal(t, 35, e.Year.Age)
	require.NotNil(t, e.Current)
	assert.True(t, e.Current.StartAge <= 35 && 35 <= e.Current.EndAge)
	require.NotNil(t, e.Next)
	assert.Greater(t, e.Next.StartYear, 2025)
}

func TestRun_DeterministicUIDs(t *testing.T) {
	content := "BEGIN:VCARD\nVERSION:3.0\nFN:Stable\nBDAY:1985-03-02\nEND:VCARD"
	path := writeVCF(t, content)
	gen := &almanac.Generator{
		Clock:  MockClock{CurrentTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		Engine: newEngine(t),
	}

	_, first, err := gen.Run(context.Background(), almanac.Config{LocalPath: path, Longitude: 120, Gender: engine.Female})
	require.NoError(t, err)
	_, second, err := gen.Run(context.Background(), almanac.Config{LocalPath: path, Longitude: 120, Gender: engine.Female})
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].UID, second[0].UID)
	assert.Len(t, first[0].UID, config.UIDHashLength*2)
	assert.False(t, first[0].TimeKnown, "date-only BDAY assumes noon")
	assert.Equal(t, config.DefaultBirthHour, first[0].DateOfBirth.Hour())
}

func TestRun_WithReminders(t *testing.T) {
	path := writeVCF(t, "BEGIN:VCARD\nVERSION:3.0\nFN:Alarm Test\nBDAY:1990-01-01\nEND:VCARD")
	gen := &almanac.Generator{
		Clock:  MockClock{CurrentTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		Engine: newEngine(t),
	}

	ics, _, err := gen.Run(context.Background(), almanac.Config{
		LocalPath:       path,
		Longitude:       120,
		Gender:          engine.Male,
		ReminderTrigger: "-P1D",
	})
	require.NoError(t, err)

	icsStr := string(ics)
	assert.Contains(t, icsStr, "BEGIN:VALARM", "ICS should contain an alarm component")
	assert.Contains(t, icsStr, "TRIGGER:-P1D", "Alarm trigger should match configuration")
	assert.Contains(t, icsStr, "ACTION:DISPLAY", "Alarm action should be DISPLAY")
}

func TestRun_FormatSummaryInjected(t *testing.T) {
	path := writeVCF(t, "BEGIN:VCARD\nVERSION:3.0\nFN:Localized\nBDAY:1990-01-01\nEND:VCARD")
	var kinds []string
	gen := &almanac.Generator{
		Clock:  MockClock{CurrentTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		Engine: newEngine(t),
		FormatSummary: func(kind, name string, pair ganzhi.Pair, age int) string {
			kinds = append(kinds, kind)
			return "Custom " + name
		},
	}

	ics, _, err := gen.Run(context.Background(), almanac.Config{LocalPath: path, Longitude: 120, Gender: engine.Male})
	require.NoError(t, err)
	assert.Contains(t, string(ics), "SUMMARY:Custom Localized")
	assert.Contains(t, kinds, config.UIDKindLuck)
	assert.Contains(t, kinds, config.UIDKindAnnual)
}

func TestRun_BornAfterCurrentYear(t *testing.T) {
	// Scenario: a due date in the future still gets its luck periods but no
	// annual fortune.
	path := writeVCF(t, "BEGIN:VCARD\nVERSION:3.0\nFN:Future Baby\nBDAY:2027-01-01\nEND:VCARD")
	gen := &almanac.Generator{
		Clock:  MockClock{CurrentTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		Engine: newEngine(t),
	}

	ics, entries, err := gen.Run(context.Background(), almanac.Config{LocalPath: path, Longitude: 120, Gender: engine.Male})
	require.NoError(t, err)
	assert.Equal(t, config.LuckPeriodCount, strings.Count(string(ics), "BEGIN:VEVENT"))
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Year)
	assert.Nil(t, entries[0].Current)
}

func TestRun_DateFormats_TableDriven(t *testing.T) {
	tests := []struct {
		name      string
		bdayValue string
		expectEvt bool
	}{
		{"ISO8601 Standard", "1990-10-25", true},
		{"Basic Format", "19901025", true},
		{"RFC3339", "1990-10-25T08:30:00+08:00", true},
		{"UTC Date-Time", "1990-10-25T00:30:00Z", true},
		{"Basic Date-Time", "19901025T083000", true},
		{"Truncated (Month-Day)", "--10-25", false},
		{"Garbage Data", "not-a-date", false},
		{"Out of Range Year", "1850-01-01", false},
		{"Empty Date", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeVCF(t, "BEGIN:VCARD\nVERSION:3.0\nFN:Test\nBDAY:"+tt.bdayValue+"\nEND:VCARD")
			gen := &almanac.Generator{
				Clock:  MockClock{CurrentTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
				Engine: newEngine(t),
			}

			ics, _, err := gen.Run(context.Background(), almanac.Config{LocalPath: path, Longitude: 120, Gender: engine.Male})
			require.NoError(t, err)

			icsStr := string(ics)
			if tt.expectEvt {
				assert.Contains(t, icsStr, "BEGIN:VEVENT", "Valid date should produce events")
			} else {
				assert.NotContains(t, icsStr, "BEGIN:VEVENT", "Unusable date should be skipped")
				assert.Equal(t, config.StubVCalendar, icsStr)
			}
		})
	}
}

func TestRun_SkipsFailedCharts(t *testing.T) {
	// Scenario: the engine fails one of two contacts; the other still
	// produces events.
	path := writeVCF(t, `BEGIN:VCARD
VERSION:3.0
FN:Good
BDAY:1990-05-15
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:Bad
BDAY:1991-05-15
END:VCARD`)

	eng := newEngine(t)
	good, err := eng.Compute(context.Background(), engine.BirthInput{
		Year: 1990, Month: 5, Day: 15, Hour: 12, Longitude: 120, Gender: engine.Male,
	})
	require.NoError(t, err)

	m := new(MockEngine)
	m.On("ComputeBatch", mock.Anything, mock.MatchedBy(func(in []engine.BirthInput) bool { return len(in) == 2 })).
		Return([]engine.BatchResult{
			{Index: 0, Chart: good},
			{Index: 1, Err: engine.ErrCalendarUnavailable},
		})
	m.On("Annual", mock.Anything, 2025).Return(engine.AnnualFortune{Year: 2025, Age: 35, Pair: engine.YearPair(2025)}, nil)
	m.On("YearStart", 2025).Return(time.Date(2025, 2, 3, 22, 10, 0, 0, calendar.CST), nil)

	gen := &almanac.Generator{
		Clock:  MockClock{CurrentTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		Engine: m,
	}
	ics, entries, err := gen.Run(context.Background(), almanac.Config{LocalPath: path, Longitude: 120, Gender: engine.Male})
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "Good", entries[0].Name)
	assert.Contains(t, string(ics), "DTSTART;VALUE=DATE:20250203")
	assert.NotContains(t, string(ics), "Bad")
	m.AssertExpectations(t)
}

func TestRun_AnnualFailureKeepsLuckEvents(t *testing.T) {
	path := writeVCF(t, "BEGIN:VCARD\nVERSION:3.0\nFN:Partial\nBDAY:1990-05-15\nEND:VCARD")

	good, err := newEngine(t).Compute(context.Background(), engine.BirthInput{
		Year: 1990, Month: 5, Day: 15, Hour: 12, Longitude: 120, Gender: engine.Male,
	})
	require.NoError(t, err)

	m := new(MockEngine)
	m.On("ComputeBatch", mock.Anything, mock.Anything).Return([]engine.BatchResult{{Chart: good}})
	m.On("Annual", mock.Anything, 2025).Return(engine.AnnualFortune{}, errors.New("boom"))

	gen := &almanac.Generator{
		Clock:  MockClock{CurrentTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		Engine: m,
	}
	ics, entries, err := gen.Run(context.Background(), almanac.Config{LocalPath: path, Longitude: 120, Gender: engine.Male})
	require.NoError(t, err)
	assert.Equal(t, config.LuckPeriodCount, strings.Count(string(ics), "BEGIN:VEVENT"))
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Year)
	m.AssertNotCalled(t, "YearStart", mock.Anything)
}

func TestRun_ConfigErrors(t *testing.T) {
	gen := &almanac.Generator{Clock: MockClock{CurrentTime: time.Now()}}
	_, _, err := gen.Run(context.Background(), almanac.Config{LocalPath: "x.vcf"})
	assert.EqualError(t, err, config.ErrEngineMissing)

	gen.Engine = new(MockEngine)
	_, _, err = gen.Run(context.Background(), almanac.Config{})
	assert.EqualError(t, err, config.ErrLocalPathEmpty)

	_, _, err = gen.Run(context.Background(), almanac.Config{LocalPath: filepath.Join(t.TempDir(), "missing.vcf")})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	path := writeVCF(t, "")
	cancel() // Cancel immediately before processing starts

	gen := &almanac.Generator{
		Clock:  MockClock{CurrentTime: time.Now()},
		Engine: new(MockEngine),
	}

	_, _, err := gen.Run(ctx, almanac.Config{LocalPath: path})
	assert.Equal(t, context.Canceled, err, "Should return context canceled error")
}
