package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName     = "Go BaZi"
	AppID       = "com.github.tartampluch.go-bazi"
	LogFileName = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeUsage   = 2
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs and generated calendars, which contain birth data.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion = "version"
	FlagDebug   = "debug"
	FlagDate    = "date"
	FlagTime    = "time"
	FlagLon     = "lon"
	FlagGender  = "gender"
	FlagLunar   = "lunar"
	FlagLeap    = "leap"
	FlagTZ      = "tz"
	FlagYear    = "year"
	FlagLang    = "lang"
	FlagWeights = "weights"
	FlagPreset  = "preset"
	FlagVCF     = "vcf"
	FlagICS     = "ics"

	FlagDescVersion = "Show application version and exit"
	FlagDescDebug   = "Enable debug logging to stdout"
	FlagDescDate    = "Birth date as YYYY-MM-DD (lunar date when -lunar is set)"
	FlagDescTime    = "Birth clock time as HH:MM"
	FlagDescLon     = "Birth place longitude in degrees, east positive"
	FlagDescGender  = "Gender: m or f"
	FlagDescLunar   = "Interpret -date as a lunar calendar date"
	FlagDescLeap    = "The lunar month given in -date is a leap month"
	FlagDescTZ      = "IANA time zone of the birth clock time"
	FlagDescYear    = "Also score the annual fortune of this year"
	FlagDescLang    = "Language of free-text output (en, zh)"
	FlagDescWeights = "YAML file with scoring weight presets"
	FlagDescPreset  = "Preset name inside the -weights file"
	FlagDescVCF     = "Almanac mode: read birth data from this vCard file"
	FlagDescICS     = "Almanac mode: write the iCalendar output to this file"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
	MsgUsageError    = "usage error: %v\n"
)

// -----------------------------------------------------------------------------
// Birth Input & Calendar Range
// -----------------------------------------------------------------------------

const (
	MinYear = 1900
	MaxYear = 2100

	MinLongitude = -180.0
	MaxLongitude = 180.0

	// StandardMeridianCST is the meridian of China Standard Time (UTC+8),
	// used when a birth input carries no location.
	StandardMeridianCST = 120.0
	CSTOffsetSeconds    = 8 * 3600
	CSTZoneName         = "CST"

	// MinutesPerDegree is the longitude time correction (24h / 360°).
	MinutesPerDegree = 4.0

	// DaysPerLuckYear is the "three days equal one year" rule.
	DaysPerLuckYear = 3.0

	// LuckPeriodYears is the span of one luck period.
	LuckPeriodYears = 10

	// LuckPeriodCount is the number of generated luck periods (100 years).
	LuckPeriodCount = 10

	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// -----------------------------------------------------------------------------
// Localization
// -----------------------------------------------------------------------------

const (
	DefaultLanguage = "en"
	LocalesDir      = "locales"
	LocalePrefix    = "active."
	LocaleExt       = ".json"
)

// SupportedLanguages defines the list of available output languages (ISO 639-1).
var SupportedLanguages = []string{"en", "zh"}

// -----------------------------------------------------------------------------
// Almanac (vCard -> iCalendar)
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion = "2.0"
	ICalProdid  = "-//Go BaZi//Almanac//EN"
	ICalCalName = "Luck Periods"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "gobazi"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDescription = "DESCRIPTION"
	PropCategories  = "CATEGORIES"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"
	PropAction      = "ACTION"
	PropTrigger     = "TRIGGER"

	// Alarm
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"

	CategoryLuck   = "LUCK-PERIOD"
	CategoryAnnual = "ANNUAL-FORTUNE"

	VCardBDAY   = "BDAY"
	VCardFN     = "FN"
	VCardN      = "N"
	VCardGender = "GENDER"
	VCardGeo    = "GEO"
	GeoScheme   = "geo:"

	DefaultICalRefresh = 24 * time.Hour

	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatLocalT    = "2006-01-02T15:04:05"
	DateFormatBasicT    = "20060102T150405"
	DateFormatBasicTM   = "20060102T1504"

	UIDSalt         = "go-bazi-v1-"
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%s-%d@%s"

	FallbackName    = "Unknown"
	FallbackSummary = "%s: %s"

	// UIDKindLuck and UIDKindAnnual separate the event families of a contact.
	UIDKindLuck   = "luck"
	UIDKindAnnual = "year"

	// DefaultBirthHour is assumed for a BDAY without a time of day.
	DefaultBirthHour = 12

	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrInvalidInput    = "invalid birth input"
	ErrCalendarUnavail = "calendar data unavailable"
	ErrStructural      = "structurally invalid chart"
	ErrCalendarMissing = "internal error: calendar adapter is not initialized"
	ErrUnknownMonth    = "month branch has no seasonal state"
	ErrBadWeights      = "invalid scoring weights"
	ErrPresetUnknown   = "unknown weight preset"
	ErrWeightsRead     = "failed to read weights file"
	ErrWeightsParse    = "failed to parse weights file"
	ErrVCardParse      = "failed to parse vCard stream"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrDateParse       = "unable to parse date"
	ErrLocalPathEmpty  = "configuration error: local path is empty"
	ErrEngineMissing   = "internal error: chart engine is not initialized"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrAppFailed       = "application failed unexpectedly"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrWriteOutput     = "failed to write output"
	ErrFlagDate        = "-date must be YYYY-MM-DD"
	ErrFlagTime        = "-time must be HH:MM"
	ErrFlagTZ          = "unknown -tz time zone"
	ErrFlagDateMissing = "-date is required unless -vcf is set"
	ErrFlagICSMissing  = "-ics is required with -vcf"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting   = "Starting application"
	MsgAppStop       = "Application stopped gracefully"
	MsgChartComputed = "Chart computed"
	MsgChartFailed   = "Chart computation failed"
	MsgBatchStarted  = "Batch computation started"
	MsgBatchFinished = "Batch computation finished"
	MsgAlmanacStart  = "Almanac generation started"
	MsgGenSuccess    = "Almanac generation successful"
	MsgSkippedCard   = "Skipping malformed vCard"
	MsgSkippedDate   = "Skipping invalid date format"
	MsgSkippedChart  = "Skipping contact whose chart failed"
	MsgTermCached    = "Solar terms computed"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgPresetLoaded  = "Weight preset loaded"
	MsgAlmanacSaved  = "Almanac written"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyValue     = "value"
	LogKeyName      = "name"
	LogKeyDOB       = "date_of_birth"
	LogKeyYear      = "year"
	LogKeyPreset    = "preset"
	LogKeyPillars   = "pillars"
	LogKeyMethod    = "yongshen_method"
	LogKeyVerdict   = "day_master"
	LogKeyCount     = "count"
	LogKeyFailed    = "failed"
	LogKeyWorkers   = "workers"
	LogKeyIndex     = "index"
	LogKeyStats     = "stats"
	LogKeyTotal     = "total_cards"
	LogKeyFound     = "charts_built"
	LogKeyEvents    = "events"
	LogKeyDuration  = "duration_ms"
	LogKeyCorrected = "true_solar_time"
	LogKeyToday     = "current_year"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain     = "main"
	CompEngine   = "engine"
	CompBatch    = "batch"
	CompCalendar = "calendar"
	CompAlmanac  = "almanac"
	CompI18n     = "i18n"
	CompConfig   = "config"
)
