// Package solartime converts civil clock time into apparent (true) solar time
// for a given longitude.
package solartime

import (
	"math"
	"time"

	"github.com/tartampluch/go-bazi/internal/config"
)

// MaxEquationMinutes bounds the equation of time.
const MaxEquationMinutes = 20.0

// Correction describes how a civil time was shifted to true solar time.
type Correction struct {
	// StandardMeridian is the meridian of the civil time zone, in degrees.
	StandardMeridian float64 `json:"standard_meridian"`

	// LongitudeMinutes is the local-mean-time offset: 4 min per degree east
	// of the standard meridian.
	LongitudeMinutes float64 `json:"longitude_minutes"`

	// EquationMinutes is the equation of time for the day.
	EquationMinutes float64 `json:"equation_minutes"`

	// Total is the full shift, rounded to the second.
	Total time.Duration `json:"total"`
}

// StandardMeridian returns the meridian implied by t's UTC offset
// (15 degrees per hour). Daylight saving time is part of the offset, so the
// longitude correction undoes it.
func StandardMeridian(t time.Time) float64 {
	_, offset := t.Zone()
	return float64(offset) / 3600 * 15
}

// LongitudeMinutes returns the local-mean-time correction in minutes.
func LongitudeMinutes(longitude, meridian float64) float64 {
	return config.MinutesPerDegree * (longitude - meridian)
}

// EquationOfTime returns apparent minus mean solar time in minutes for the
// wall-clock moment t, using the NOAA fractional-year Fourier series. The
// year length (365 or 366 days) is the leap-year term.
func EquationOfTime(t time.Time) float64 {
	days := 365.0
	if isLeap(t.Year()) {
		days = 366
	}
	hour := float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
	gamma := 2 * math.Pi / days * (float64(t.YearDay()-1) + (hour-12)/24)

	eot := 229.18 * (0.000075 +
		0.001868*math.Cos(gamma) -
		0.032077*math.Sin(gamma) -
		0.014615*math.Cos(2*gamma) -
		0.040849*math.Sin(2*gamma))

	return math.Max(-MaxEquationMinutes, math.Min(MaxEquationMinutes, eot))
}

// Correct returns the true solar time of the civil time civil observed at
// longitude (degrees, east positive). The result keeps civil's location: its
// wall clock reads the apparent solar time. Longitude must already be
// validated by the caller.
func Correct(civil time.Time, longitude float64) (time.Time, Correction) {
	c := Correction{
		StandardMeridian: StandardMeridian(civil),
		EquationMinutes:  EquationOfTime(civil),
	}
	c.LongitudeMinutes = LongitudeMinutes(longitude, c.StandardMeridian)
	c.Total = time.Duration(math.Round((c.LongitudeMinutes+c.EquationMinutes)*60)) * time.Second

	return civil.Add(c.Total), c
}

func isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}
