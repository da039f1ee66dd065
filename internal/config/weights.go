package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Scoring Weights
// -----------------------------------------------------------------------------

// DefaultPresetName is the name under which DefaultWeights is always available.
const DefaultPresetName = "classic"

// RoleWeights assigns a value per hidden-stem role.
type RoleWeights struct {
	Primary   float64 `yaml:"primary" json:"primary"`
	Secondary float64 `yaml:"secondary" json:"secondary"`
	Residual  float64 `yaml:"residual" json:"residual"`
}

// SeasonalCoefficients are the multipliers of the five seasonal states.
type SeasonalCoefficients struct {
	Prosperous float64 `yaml:"prosperous" json:"prosperous"`
	Supported  float64 `yaml:"supported" json:"supported"`
	Resting    float64 `yaml:"resting" json:"resting"`
	Imprisoned float64 `yaml:"imprisoned" json:"imprisoned"`
	Dead       float64 `yaml:"dead" json:"dead"`
}

// Weights holds every tunable constant of the chart engine. Two engines built
// with different Weights never share state.
type Weights struct {
	// Five-element scoring.
	StemBase          float64              `yaml:"stem_base" json:"stem_base"`
	HiddenScale       float64              `yaml:"hidden_scale" json:"hidden_scale"`
	Seasonal          SeasonalCoefficients `yaml:"seasonal" json:"seasonal"`
	RootRole          RoleWeights          `yaml:"root_role" json:"root_role"`
	RootScale         float64              `yaml:"root_scale" json:"root_scale"`
	DayRootMultiplier float64              `yaml:"day_root_multiplier" json:"day_root_multiplier"`
	Reveal            RoleWeights          `yaml:"reveal" json:"reveal"`
	GenerateFactor    float64              `yaml:"generate_factor" json:"generate_factor"`
	ControlFactor     float64              `yaml:"control_factor" json:"control_factor"`
	Normalize         bool                 `yaml:"normalize" json:"normalize"`

	// Day-master classification (ratios in 0..1).
	StrongRatio float64 `yaml:"strong_ratio" json:"strong_ratio"`
	WeakRatio   float64 `yaml:"weak_ratio" json:"weak_ratio"`

	// Explanatory factor thresholds (element scores in 0..100).
	SelfFactorMin      float64 `yaml:"self_factor_min" json:"self_factor_min"`
	GeneratorFactorMin float64 `yaml:"generator_factor_min" json:"generator_factor_min"`

	// Favorable-element and pattern thresholds (day-master score in 0..100).
	FollowMax        float64 `yaml:"follow_max" json:"follow_max"`
	ThrivingMin      float64 `yaml:"thriving_min" json:"thriving_min"`
	BalancedLow      float64 `yaml:"balanced_low" json:"balanced_low"`
	BalancedHigh     float64 `yaml:"balanced_high" json:"balanced_high"`
	ConspicuousMin   float64 `yaml:"conspicuous_min" json:"conspicuous_min"`
	FollowElementMin float64 `yaml:"follow_element_min" json:"follow_element_min"`
	DominantCount    int     `yaml:"dominant_count" json:"dominant_count"`
}

// DefaultWeights returns the classic weight preset.
func DefaultWeights() Weights {
	return Weights{
		StemBase:    10,
		HiddenScale: 10,
		Seasonal: SeasonalCoefficients{
			Prosperous: 1.5,
			Supported:  1.2,
			Resting:    1.0,
			Imprisoned: 0.7,
			Dead:       0.5,
		},
		RootRole:          RoleWeights{Primary: 1.0, Secondary: 0.6, Residual: 0.3},
		RootScale:         10,
		DayRootMultiplier: 1.5,
		Reveal:            RoleWeights{Primary: 8, Secondary: 5, Residual: 3},
		GenerateFactor:    0.15,
		ControlFactor:     0.15,
		Normalize:         true,

		StrongRatio: 0.55,
		WeakRatio:   0.45,

		SelfFactorMin:      20,
		GeneratorFactorMin: 15,

		FollowMax:        20,
		ThrivingMin:      80,
		BalancedLow:      45,
		BalancedHigh:     55,
		ConspicuousMin:   5,
		FollowElementMin: 55,
		DominantCount:    5,
	}
}

// Validate rejects weight sets that would make the scorer degenerate.
func (w Weights) Validate() error {
	positive := map[string]float64{
		"stem_base":           w.StemBase,
		"hidden_scale":        w.HiddenScale,
		"seasonal.prosperous": w.Seasonal.Prosperous,
		"seasonal.supported":  w.Seasonal.Supported,
		"seasonal.resting":    w.Seasonal.Resting,
		"seasonal.imprisoned": w.Seasonal.Imprisoned,
		"seasonal.dead":       w.Seasonal.Dead,
	}
	nonNegative := map[string]float64{
		"root_role.primary":   w.RootRole.Primary,
		"root_role.secondary": w.RootRole.Secondary,
		"root_role.residual":  w.RootRole.Residual,
		"root_scale":          w.RootScale,
		"day_root_multiplier": w.DayRootMultiplier,
		"reveal.primary":      w.Reveal.Primary,
		"reveal.secondary":    w.Reveal.Secondary,
		"reveal.residual":     w.Reveal.Residual,
		"generate_factor":     w.GenerateFactor,
		"control_factor":      w.ControlFactor,
		"conspicuous_min":     w.ConspicuousMin,
	}

	var errs []error
	for _, k := range sortedKeys(positive) {
		if v := positive[k]; !(v > 0) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", k, v))
		}
	}
	for _, k := range sortedKeys(nonNegative) {
		if v := nonNegative[k]; !(v >= 0) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %v", k, v))
		}
	}
	if !(w.WeakRatio > 0 && w.WeakRatio <= w.StrongRatio && w.StrongRatio < 1) {
		errs = append(errs, fmt.Errorf("ratios must satisfy 0 < weak_ratio (%v) <= strong_ratio (%v) < 1", w.WeakRatio, w.StrongRatio))
	}
	if !(w.FollowMax >= 0 && w.FollowMax <= w.BalancedLow && w.BalancedLow <= w.BalancedHigh && w.BalancedHigh <= w.ThrivingMin && w.ThrivingMin <= 100) {
		errs = append(errs, errors.New("thresholds must satisfy 0 <= follow_max <= balanced_low <= balanced_high <= thriving_min <= 100"))
	}
	if w.DominantCount < 1 {
		errs = append(errs, fmt.Errorf("dominant_count must be at least 1, got %d", w.DominantCount))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", ErrBadWeights, errors.Join(errs...))
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// presetFile is the on-disk layout of a weights file:
//
//	presets:
//	  soft-season:
//	    seasonal: {prosperous: 1.3, dead: 0.7}
//
// Every preset starts from DefaultWeights; only the listed keys override it.
type presetFile struct {
	Presets map[string]yaml.Node `yaml:"presets"`
}

// ParsePresets decodes a weights document. The classic preset is always
// present unless the document redefines it.
func ParsePresets(data []byte) (map[string]Weights, error) {
	var doc presetFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrWeightsParse, err)
	}

	out := map[string]Weights{DefaultPresetName: DefaultWeights()}
	for name, node := range doc.Presets {
		w := DefaultWeights()
		if err := node.Decode(&w); err != nil {
			return nil, fmt.Errorf("%s: preset %q: %w", ErrWeightsParse, name, err)
		}
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		out[name] = w
	}
	return out, nil
}

// LoadPreset reads path and returns the named preset. An empty path yields the
// default weights; an empty name selects the classic preset.
func LoadPreset(path, name string) (Weights, error) {
	if name == "" {
		name = DefaultPresetName
	}
	if path == "" {
		if name != DefaultPresetName {
			return Weights{}, fmt.Errorf("%s: %q", ErrPresetUnknown, name)
		}
		return DefaultWeights(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, fmt.Errorf("%s: %w", ErrWeightsRead, err)
	}
	presets, err := ParsePresets(data)
	if err != nil {
		return Weights{}, err
	}
	w, ok := presets[name]
	if !ok {
		return Weights{}, fmt.Errorf("%s: %q", ErrPresetUnknown, name)
	}

	slog.Debug(MsgPresetLoaded,
		LogKeyComponent, CompConfig,
		LogKeyFile, path,
		LogKeyPreset, name,
	)
	return w, nil
}
