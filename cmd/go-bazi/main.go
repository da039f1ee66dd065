package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/tartampluch/go-bazi/internal/almanac"
	"github.com/tartampluch/go-bazi/internal/calendar"
	"github.com/tartampluch/go-bazi/internal/config"
	"github.com/tartampluch/go-bazi/internal/engine"
	"github.com/tartampluch/go-bazi/internal/locale"
)

// main is the application entry point.
// It delegates execution to runMain to ensure that deferred function calls
// (like closing log files) are executed before the process terminates.
// os.Exit() does not run defers, so we must return an integer code first.
func main() {
	os.Exit(runMain(os.Args[1:], os.Stdout, os.Stderr))
}

// options holds the parsed command line.
type options struct {
	version bool
	debug   bool

	date, clock string
	lon         float64
	gender      string
	lunar, leap bool
	tz          string
	year        int
	lang        string

	weights, preset string
	vcf, ics        string
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain(args []string, stdout, stderr io.Writer) int {
	// -------------------------------------------------------------------------
	// 1. CLI Argument Parsing
	// -------------------------------------------------------------------------
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return config.ExitCodeSuccess
		}
		fmt.Fprintf(stderr, config.MsgUsageError, err)
		return config.ExitCodeUsage
	}

	if opts.version {
		printVersion(stdout)
		return config.ExitCodeSuccess
	}

	// -------------------------------------------------------------------------
	// 2. Logging Initialization
	// -------------------------------------------------------------------------
	// Stdout carries the JSON result, so logs go to stderr and the log file.
	logCloser := setupLogging(stderr, opts.debug)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close() // Best effort close
		}()
	}

	// -------------------------------------------------------------------------
	// 3. Context & Signal Handling
	// -------------------------------------------------------------------------
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	// -------------------------------------------------------------------------
	// 4. Application Logic
	// -------------------------------------------------------------------------
	if err := run(ctx, opts, stdout); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		if errors.Is(err, engine.ErrInvalidInput) {
			return config.ExitCodeUsage
		}
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.BoolVar(&o.version, config.FlagVersion, false, config.FlagDescVersion)
	fs.BoolVar(&o.debug, config.FlagDebug, false, config.FlagDescDebug)
	fs.StringVar(&o.date, config.FlagDate, "", config.FlagDescDate)
	fs.StringVar(&o.clock, config.FlagTime, "12:00", config.FlagDescTime)
	fs.Float64Var(&o.lon, config.FlagLon, config.StandardMeridianCST, config.FlagDescLon)
	fs.StringVar(&o.gender, config.FlagGender, "m", config.FlagDescGender)
	fs.BoolVar(&o.lunar, config.FlagLunar, false, config.FlagDescLunar)
	fs.BoolVar(&o.leap, config.FlagLeap, false, config.FlagDescLeap)
	fs.StringVar(&o.tz, config.FlagTZ, "", config.FlagDescTZ)
	fs.IntVar(&o.year, config.FlagYear, 0, config.FlagDescYear)
	fs.StringVar(&o.lang, config.FlagLang, config.DefaultLanguage, config.FlagDescLang)
	fs.StringVar(&o.weights, config.FlagWeights, "", config.FlagDescWeights)
	fs.StringVar(&o.preset, config.FlagPreset, config.DefaultPresetName, config.FlagDescPreset)
	fs.StringVar(&o.vcf, config.FlagVCF, "", config.FlagDescVCF)
	fs.StringVar(&o.ics, config.FlagICS, "", config.FlagDescICS)

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	switch {
	case o.version:
	case o.vcf != "" && o.ics == "":
		return o, errors.New(config.ErrFlagICSMissing)
	case o.vcf == "" && o.date == "":
		return o, errors.New(config.ErrFlagDateMissing)
	}
	return o, nil
}

// birthInput turns the flags into an engine input. Range checks are left to
// the engine.
func (o options) birthInput() (engine.BirthInput, error) {
	in := engine.BirthInput{Longitude: o.lon, LeapMonth: o.leap}

	if _, err := fmt.Sscanf(o.date, "%d-%d-%d", &in.Year, &in.Month, &in.Day); err != nil {
		return in, fmt.Errorf("%s: %w", config.ErrFlagDate, err)
	}
	clock, err := time.Parse(config.TimeLayout, o.clock)
	if err != nil {
		return in, fmt.Errorf("%s: %w", config.ErrFlagTime, err)
	}
	in.Hour, in.Minute = clock.Hour(), clock.Minute()
	if o.lunar {
		in.Calendar = engine.Lunar
	}

	g, err := engine.ParseGender(o.gender)
	if err != nil {
		return in, err
	}
	in.Gender = g

	loc, err := o.location()
	if err != nil {
		return in, err
	}
	in.Location = loc
	return in, nil
}

// location resolves -tz; empty means China Standard Time.
func (o options) location() (*time.Location, error) {
	if o.tz == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(o.tz)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFlagTZ, err)
	}
	return loc, nil
}

// report is the JSON document printed for a single chart.
type report struct {
	Chart   engine.Chart     `json:"chart"`
	Text    locale.ChartText `json:"text"`
	Fortune *fortune         `json:"fortune,omitempty"`
}

type fortune struct {
	engine.AnnualFortune
	Text locale.FortuneText `json:"text"`
}

// almanacReport is printed in almanac mode.
type almanacReport struct {
	Output  string          `json:"output"`
	Entries []almanac.Entry `json:"entries"`
}

// run wires the calendar, engine and translator, then executes one mode.
func run(ctx context.Context, o options, stdout io.Writer) error {
	weights, err := config.LoadPreset(o.weights, o.preset)
	if err != nil {
		return err
	}
	eng, err := engine.New(calendar.NewAstronomical(),
		engine.WithWeights(weights),
		engine.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	catalog, err := locale.Load(slog.Default())
	if err != nil {
		return err
	}
	tr := catalog.For(o.lang)

	if o.vcf != "" {
		return runAlmanac(ctx, o, eng, tr, stdout)
	}

	in, err := o.birthInput()
	if err != nil {
		return err
	}
	chart, err := eng.Compute(ctx, in)
	if err != nil {
		return err
	}

	out := report{Chart: chart, Text: tr.Chart(chart)}
	if o.year != 0 {
		f, err := eng.Annual(chart, o.year)
		if err != nil {
			return err
		}
		out.Fortune = &fortune{AnnualFortune: f, Text: tr.Fortune(f)}
	}
	return writeJSON(stdout, out)
}

func runAlmanac(ctx context.Context, o options, eng *engine.Engine, tr *locale.Translator, stdout io.Writer) error {
	g, err := engine.ParseGender(o.gender)
	if err != nil {
		return err
	}
	loc, err := o.location()
	if err != nil {
		return err
	}

	gen := &almanac.Generator{
		Clock:         almanac.RealClock{},
		Engine:        eng,
		FormatSummary: tr.Summary,
	}
	data, entries, err := gen.Run(ctx, almanac.Config{
		LocalPath: o.vcf,
		Longitude: o.lon,
		Gender:    g,
		Location:  loc,
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(o.ics, data, config.FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
	}
	slog.Info(config.MsgAlmanacSaved,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyFile, o.ics,
		config.LogKeyCount, len(entries),
	)
	return writeJSON(stdout, almanacReport{Output: o.ics, Entries: entries})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
	}
	return nil
}

// printVersion outputs the build information.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger to write to console and
// to the log file in the user's cache directory.
func setupLogging(console io.Writer, debugMode bool) io.Closer {
	writers := []io.Writer{console}
	var logFile *os.File

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(console, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)

	// Ensure the directory exists with restricted permissions (700).
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
