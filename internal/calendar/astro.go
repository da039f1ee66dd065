package calendar

import (
	"math"
	"time"
)

// Solar and lunar ephemerides (Meeus, Astronomical Algorithms, chapters 7,
// 10, 22, 25, 32 and 49). Solar terms are good to about a minute over
// 1900-2100; new moons to a few minutes.

const (
	jdUnixEpoch = 2440587.5
	jdJ2000     = 2451545.0
	secondsDay  = 86400.0
	tropicalYr  = 365.242189
	synodicMo   = 29.530588861
	deg         = math.Pi / 180
)

// julianDay returns the Julian Day (UT) of an instant.
func julianDay(t time.Time) float64 {
	return jdUnixEpoch + float64(t.UnixNano())/1e9/secondsDay
}

// timeOfJD converts a Julian Day (UT) back to an instant, rounded to the second.
func timeOfJD(jd float64) time.Time {
	sec := math.Round((jd - jdUnixEpoch) * secondsDay)
	return time.Unix(int64(sec), 0).UTC()
}

// deltaT returns TT - UT in seconds (Espenak & Meeus polynomials).
func deltaT(year float64) float64 {
	switch {
	case year < 1900:
		t := year - 1860
		return 7.62 + 0.5737*t - 0.251754*t*t + 0.01680668*t*t*t -
			0.0004473624*t*t*t*t + t*t*t*t*t/233174
	case year < 1920:
		t := year - 1900
		return -2.79 + 1.494119*t - 0.0598939*t*t + 0.0061966*t*t*t - 0.000197*t*t*t*t
	case year < 1941:
		t := year - 1920
		return 21.20 + 0.84493*t - 0.076100*t*t + 0.0020936*t*t*t
	case year < 1961:
		t := year - 1950
		return 29.07 + 0.407*t - t*t/233 + t*t*t/2547
	case year < 1986:
		t := year - 1975
		return 45.45 + 1.067*t - t*t/260 - t*t*t/718
	case year < 2005:
		t := year - 2000
		return 63.86 + 0.3345*t - 0.060374*t*t + 0.0017275*t*t*t +
			0.000651814*t*t*t*t + 0.00002373599*t*t*t*t*t
	case year < 2050:
		t := year - 2000
		return 62.92 + 0.32217*t + 0.005589*t*t
	case year < 2150:
		u := (year - 1820) / 100
		return -20 + 32*u*u - 0.5628*(2150-year)
	default:
		u := (year - 1820) / 100
		return -20 + 32*u*u
	}
}

// decimalYear approximates the calendar year of a Julian Day for deltaT.
func decimalYear(jd float64) float64 {
	return 2000 + (jd-jdJ2000)/365.25
}

// sunLongitude returns the apparent geocentric ecliptic longitude of the Sun
// in degrees [0, 360) at Julian Day jd (UT).
func sunLongitude(jd float64) float64 {
	jde := jd + deltaT(decimalYear(jd))/secondsDay
	t := (jde - jdJ2000) / 36525

	l, r := earthPosition(jde)
	lon := l/deg + 180

	// FK5 frame, nutation in longitude, then annual aberration (arcseconds).
	lon += (-0.09033 + nutationLongitude(t) - 20.4898/r) / 3600
	return normDeg(lon)
}

// nutationLongitude returns the nutation in longitude in arcseconds
// (Meeus chapter 22, to 0.5").
func nutationLongitude(t float64) float64 {
	omega := (125.04452 - 1934.136261*t) * deg
	sun := (280.4665 + 36000.7698*t) * deg
	moon := (218.3165 + 481267.8813*t) * deg
	return -17.20*math.Sin(omega) - 1.32*math.Sin(2*sun) -
		0.23*math.Sin(2*moon) + 0.21*math.Sin(2*omega)
}

// solveSunLongitude returns the Julian Day (UT) near guess at which the Sun
// reaches target degrees.
func solveSunLongitude(target, guess float64) float64 {
	jd := guess
	for i := 0; i < 30; i++ {
		diff := normDiff(target - sunLongitude(jd))
		step := diff * tropicalYr / 360
		jd += step
		if math.Abs(step) < 1e-6 {
			break
		}
	}
	return jd
}

// newMoon returns the Julian Day (UT) of true new moon number k, counted
// from the new moon of 2000-01-06.
func newMoon(k float64) float64 {
	t := k / 1236.85
	t2, t3, t4 := t*t, t*t*t, t*t*t*t

	jde := 2451550.09766 + synodicMo*k + 0.00015437*t2 - 0.000000150*t3 + 0.00000000073*t4
	e := 1 - 0.002516*t - 0.0000074*t2
	m := (2.5534 + 29.10535670*k - 0.0000014*t2 - 0.00000011*t3) * deg
	mp := (201.5643 + 385.81693528*k + 0.0107582*t2 + 0.00001238*t3 - 0.000000058*t4) * deg
	f := (160.7108 + 390.67050284*k - 0.0016118*t2 - 0.00000227*t3 + 0.000000011*t4) * deg
	om := (124.7746 - 1.56375588*k + 0.0020672*t2 + 0.00000215*t3) * deg

	corr := -0.40720*math.Sin(mp) +
		0.17241*e*math.Sin(m) +
		0.01608*math.Sin(2*mp) +
		0.01039*math.Sin(2*f) +
		0.00739*e*math.Sin(mp-m) -
		0.00514*e*math.Sin(mp+m) +
		0.00208*e*e*math.Sin(2*m) -
		0.00111*math.Sin(mp-2*f) -
		0.00057*math.Sin(mp+2*f) +
		0.00056*e*math.Sin(2*mp+m) -
		0.00042*math.Sin(3*mp) +
		0.00042*e*math.Sin(m+2*f) +
		0.00038*e*math.Sin(m-2*f) -
		0.00024*e*math.Sin(2*mp-m) -
		0.00017*math.Sin(om) -
		0.00007*math.Sin(mp+2*m) +
		0.00004*math.Sin(2*mp-2*f) +
		0.00004*math.Sin(3*m) +
		0.00003*math.Sin(mp+m-2*f) +
		0.00003*math.Sin(2*mp+2*f) -
		0.00003*math.Sin(mp+m+2*f) +
		0.00003*math.Sin(mp-m+2*f) -
		0.00002*math.Sin(mp-m-2*f) -
		0.00002*math.Sin(3*mp+m) +
		0.00002*math.Sin(4*mp)

	jde += corr
	return jde - deltaT(decimalYear(jde))/secondsDay
}

// newMoonIndex returns the lunation number whose new moon is closest to jd.
func newMoonIndex(jd float64) float64 {
	return math.Round((jd - 2451550.09766) / synodicMo)
}

// -----------------------------------------------------------------------------
// Civil day numbers
// -----------------------------------------------------------------------------

// dayNumber returns the Julian Day Number of a proleptic Gregorian date.
func dayNumber(y int, m time.Month, d int) int {
	a := (14 - int(m)) / 12
	yy := y + 4800 - a
	mm := int(m) + 12*a - 3
	return d + (153*mm+2)/5 + 365*yy + yy/4 - yy/100 + yy/400 - 32045
}

// dateOfDayNumber inverts dayNumber.
func dateOfDayNumber(n int) (int, time.Month, int) {
	a := n + 32044
	b := (4*a + 3) / 146097
	c := a - 146097*b/4
	d := (4*c + 3) / 1461
	e := c - 1461*d/4
	m := (5*e + 2) / 153
	day := e - (153*m+2)/5 + 1
	month := m + 3 - 12*(m/10)
	year := 100*b + d - 4800 + m/10
	return year, time.Month(month), day
}

// cstDayNumber returns the day number of the China Standard Time date on
// which the instant jd (UT) falls.
func cstDayNumber(jd float64) int {
	return int(math.Floor(jd + 0.5 + float64(cstOffset)/secondsDay))
}

func normDeg(x float64) float64 {
	x = math.Mod(x, 360)
	if x < 0 {
		x += 360
	}
	return x
}

// normDiff folds an angle difference into (-180, 180].
func normDiff(x float64) float64 {
	x = normDeg(x)
	if x > 180 {
		x -= 360
	}
	return x
}
