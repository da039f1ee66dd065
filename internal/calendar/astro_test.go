package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayNumber_RoundTrip(t *testing.T) {
	assert.Equal(t, 2451545, dayNumber(2000, time.January, 1))
	assert.Equal(t, 2415021, dayNumber(1900, time.January, 1))

	for n := 2415021; n < 2488070; n += 97 {
		y, m, d := dateOfDayNumber(n)
		assert.Equal(t, n, dayNumber(y, m, d))
	}
}

func TestDeltaT_Plausible(t *testing.T) {
	// Observed values, seconds.
	assert.InDelta(t, -2.8, deltaT(1900), 1)
	assert.InDelta(t, 29.1, deltaT(1950), 1)
	assert.InDelta(t, 63.8, deltaT(2000), 1)
	assert.InDelta(t, 69.4, deltaT(2020), 3)
}

func TestSunLongitude_Equinox2000(t *testing.T) {
	// March equinox 2000: 07:35 UT on 20 March.
	jd := julianDay(time.Date(2000, 3, 20, 7, 35, 0, 0, time.UTC))
	assert.InDelta(t, 0, normDiff(sunLongitude(jd)), 0.001)
}

func TestEarthPosition_Meeus32a(t *testing.T) {
	// Meeus example 32.a: 1992 October 13.0 TD.
	l, r := earthPosition(2448908.5)
	assert.InDelta(t, -43.63484796, l, 1e-7)
	assert.InDelta(t, 0.99760775, r, 1e-7)
}

func TestSunLongitude_Meeus25b(t *testing.T) {
	// Meeus example 25.b: apparent longitude 199°54'21.818" on 1992 October
	// 13.0 TD. The nutation series here is the short one, good to 0.5".
	jd := 2448908.5 - deltaT(1992.78)/secondsDay
	assert.InDelta(t, 199+54.0/60+21.818/3600, sunLongitude(jd), 1.0/3600)
}

func TestNewMoon_Reference(t *testing.T) {
	// Meeus example 49.a: new moon of 1977 February 18, 03:37:42 TD.
	jd := newMoon(-283)
	want := julianDay(time.Date(1977, 2, 18, 3, 37, 40, 0, time.UTC)) - deltaT(1977.13)/secondsDay
	assert.InDelta(t, want, jd, 5.0/(24*60))
}

func TestNormDiff(t *testing.T) {
	assert.Equal(t, 10.0, normDiff(370))
	assert.Equal(t, -10.0, normDiff(350))
	assert.Equal(t, 180.0, normDiff(-180))
}
