package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tartampluch/go-bazi/internal/calendar"
	"github.com/tartampluch/go-bazi/internal/config"
)

// Gender selects the luck-period direction.
type Gender int

const (
	Male Gender = iota + 1
	Female
)

func (g Gender) String() string {
	switch g {
	case Male:
		return "male"
	case Female:
		return "female"
	default:
		return fmt.Sprintf("gender(%d)", int(g))
	}
}

// MarshalText encodes the gender as "male" or "female".
func (g Gender) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

// ParseGender accepts m/male and f/female in any case.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male":
		return Male, nil
	case "f", "female":
		return Female, nil
	}
	return 0, invalid("gender", s, "m or f")
}

// CalendarKind tells how BirthInput's date fields are to be read.
type CalendarKind int

const (
	Solar CalendarKind = iota
	Lunar
)

func (k CalendarKind) String() string {
	if k == Lunar {
		return "lunar"
	}
	return "solar"
}

// MarshalText encodes the kind as "solar" or "lunar".
func (k CalendarKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// BirthInput is a civil birth moment. With Calendar == Lunar, Year/Month/Day
// is a lunar date and LeapMonth selects the leap month of that number.
type BirthInput struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`

	// Longitude in degrees, east positive.
	Longitude float64 `json:"longitude"`

	Gender    Gender       `json:"gender"`
	Calendar  CalendarKind `json:"calendar"`
	LeapMonth bool         `json:"leap_month,omitempty"`

	// Location is the time zone of the clock reading. Nil means China
	// Standard Time.
	Location *time.Location `json:"-"`
}

// Validate rejects out-of-range fields. It never adjusts a value.
func (in BirthInput) Validate() error {
	if in.Year < config.MinYear || in.Year > config.MaxYear {
		return invalid("year", in.Year, fmt.Sprintf("%d..%d", config.MinYear, config.MaxYear))
	}
	if in.Month < 1 || in.Month > 12 {
		return invalid("month", in.Month, "1..12")
	}

	switch in.Calendar {
	case Solar:
		if in.LeapMonth {
			return invalid("leap_month", true, "false for solar dates")
		}
		if last := daysIn(in.Year, time.Month(in.Month)); in.Day < 1 || in.Day > last {
			return invalid("day", in.Day, fmt.Sprintf("1..%d", last))
		}
	case Lunar:
		if in.Day < 1 || in.Day > 30 {
			return invalid("day", in.Day, "1..30")
		}
	default:
		return invalid("calendar", int(in.Calendar), "solar or lunar")
	}

	if in.Hour < 0 || in.Hour > 23 {
		return invalid("hour", in.Hour, "0..23")
	}
	if in.Minute < 0 || in.Minute > 59 {
		return invalid("minute", in.Minute, "0..59")
	}
	if in.Calendar == Solar {
		if _, err := wallClock(in.Year, time.Month(in.Month), in.Day, in.Hour, in.Minute, in.location()); err != nil {
			return err
		}
	}
	if math.IsNaN(in.Longitude) || in.Longitude < config.MinLongitude || in.Longitude > config.MaxLongitude {
		return invalid("longitude", in.Longitude, fmt.Sprintf("%v..%v", config.MinLongitude, config.MaxLongitude))
	}
	if in.Gender != Male && in.Gender != Female {
		return invalid("gender", int(in.Gender), "male or female")
	}
	return nil
}

// wallClock returns the instant a clock in loc shows at the given reading.
// Readings skipped by a daylight-saving change do not exist and are
// rejected instead of being shifted by time.Date.
func wallClock(y int, m time.Month, d, h, minute int, loc *time.Location) (time.Time, error) {
	t := time.Date(y, m, d, h, minute, 0, 0, loc)
	if t.Day() != d || t.Hour() != h || t.Minute() != minute {
		return time.Time{}, invalid("hour", fmt.Sprintf("%02d:%02d", h, minute), "an existing local time in "+loc.String())
	}
	return t, nil
}

func (in BirthInput) location() *time.Location {
	if in.Location == nil {
		return calendar.CST
	}
	return in.Location
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
