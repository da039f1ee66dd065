package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-bazi/internal/config"
)

// TestConstants_Integrity ensures critical constants are not empty or malformed.
// This prevents accidental deletion of keys required for runtime or output logic.
func TestConstants_Integrity(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"AppName", config.AppName},
		{"AppID", config.AppID},
		{"Version", config.Version},
		{"ICalVersion", config.ICalVersion},
		{"ICalProdid", config.ICalProdid},
		{"DefaultLanguage", config.DefaultLanguage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.value, "Critical constant %s should not be empty", tt.name)
		})
	}

	assert.True(t, strings.Contains(config.StubVCalendar, config.ICalProdid), "stub calendar must carry the product id")
}

// TestRanges_Sanity checks that calendar and luck constants make sense logically.
func TestRanges_Sanity(t *testing.T) {
	assert.Less(t, config.MinYear, config.MaxYear)
	assert.Equal(t, 120.0, config.StandardMeridianCST)
	assert.Equal(t, config.CSTOffsetSeconds, int(config.StandardMeridianCST/15*3600), "CST offset and meridian must agree")
	assert.Equal(t, 100, config.LuckPeriodCount*config.LuckPeriodYears, "luck periods cover a century")
	assert.Contains(t, config.SupportedLanguages, config.DefaultLanguage)
}

func TestDefaultWeights_Valid(t *testing.T) {
	w := config.DefaultWeights()
	require.NoError(t, w.Validate())

	assert.Equal(t, 10.0, w.StemBase)
	assert.Equal(t, 1.5, w.Seasonal.Prosperous)
	assert.Equal(t, 0.5, w.Seasonal.Dead)
	assert.True(t, w.Normalize)
}

func TestWeights_ValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Weights)
	}{
		{"zero stem base", func(w *config.Weights) { w.StemBase = 0 }},
		{"negative reveal", func(w *config.Weights) { w.Reveal.Primary = -1 }},
		{"inverted ratios", func(w *config.Weights) { w.WeakRatio, w.StrongRatio = 0.6, 0.4 }},
		{"follow above balanced", func(w *config.Weights) { w.FollowMax = 50 }},
		{"dominant count", func(w *config.Weights) { w.DominantCount = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := config.DefaultWeights()
			tt.mutate(&w)
			err := w.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), config.ErrBadWeights)
		})
	}
}

func TestParsePresets_OverridesOnTopOfDefaults(t *testing.T) {
	doc := []byte(`
presets:
  soft-season:
    seasonal:
      prosperous: 1.3
      dead: 0.7
  raw:
    normalize: false
`)
	presets, err := config.ParsePresets(doc)
	require.NoError(t, err)
	require.Contains(t, presets, config.DefaultPresetName)
	require.Contains(t, presets, "soft-season")

	soft := presets["soft-season"]
	assert.Equal(t, 1.3, soft.Seasonal.Prosperous)
	assert.Equal(t, 0.7, soft.Seasonal.Dead)
	assert.Equal(t, 1.2, soft.Seasonal.Supported, "unlisted keys keep their defaults")
	assert.Equal(t, 10.0, soft.StemBase)

	assert.False(t, presets["raw"].Normalize)
}

func TestParsePresets_Errors(t *testing.T) {
	_, err := config.ParsePresets([]byte("presets: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrWeightsParse)

	_, err = config.ParsePresets([]byte("presets:\n  broken:\n    stem_base: 0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestLoadPreset(t *testing.T) {
	w, err := config.LoadPreset("", "")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultWeights(), w)

	_, err = config.LoadPreset("", "missing")
	assert.ErrorContains(t, err, config.ErrPresetUnknown)

	path := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("presets:\n  flat:\n    day_root_multiplier: 1.0\n"), config.FilePermUserRW))

	w, err = config.LoadPreset(path, "flat")
	require.NoError(t, err)
	assert.Equal(t, 1.0, w.DayRootMultiplier)

	_, err = config.LoadPreset(path, "other")
	assert.ErrorContains(t, err, config.ErrPresetUnknown)

	_, err = config.LoadPreset(filepath.Join(t.TempDir(), "nope.yaml"), "flat")
	assert.ErrorContains(t, err, config.ErrWeightsRead)
}
