package almanac

import (
	"time"

	"github.com/tartampluch/go-bazi/internal/engine"
)

// Entry is a lightweight per-contact summary of the almanac, convenient for
// listing without walking the iCalendar output.
type Entry struct {
	// UID is a unique identifier (hash) used for stability across runs.
	UID string `json:"uid"`

	// Name is the display name (Formatted Name or Structured Name).
	Name string `json:"name"`

	// DateOfBirth is the parsed BDAY in the zone it was read in.
	DateOfBirth time.Time `json:"date_of_birth"`

	// TimeKnown is false when BDAY carried a date only and noon was assumed.
	TimeKnown bool `json:"time_known"`

	// Pillars is the chart's four pillars as "年 月 日 时".
	Pillars string `json:"pillars"`

	// Current is the luck period covering the current year, if any.
	Current *engine.LuckPeriod `json:"current_period,omitempty"`

	// Next is the first luck period starting after the current year.
	Next *engine.LuckPeriod `json:"next_period,omitempty"`

	// Year is the annual fortune of the current year. Nil before birth.
	Year *engine.AnnualFortune `json:"year,omitempty"`
}
