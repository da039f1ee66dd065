package engine

import (
	"math"

	"github.com/tartampluch/go-bazi/internal/config"
	"github.com/tartampluch/go-bazi/internal/ganzhi"
)

// Classification is the day master's balance.
type Classification int

const (
	Balanced Classification = iota
	Strong
	Weak
)

func (c Classification) String() string {
	switch c {
	case Strong:
		return "strong"
	case Weak:
		return "weak"
	default:
		return "balanced"
	}
}

// MarshalText encodes the classification by name.
func (c Classification) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Factor is an explanatory observation about the day master. Factors never
// change the classification.
type Factor string

const (
	FactorRooted          Factor = "rooted"
	FactorStrongSelf      Factor = "strong_self"
	FactorStrongGenerator Factor = "strong_generator"
)

// DayMasterVerdict reduces a distribution to the day master's balance.
// Score is the support ratio on a 0..100 scale.
type DayMasterVerdict struct {
	Element        ganzhi.Element `json:"element"`
	Classification Classification `json:"classification"`
	Score          float64        `json:"score"`
	Ratio          float64        `json:"support_ratio"`
	Factors        []Factor       `json:"factors"`
}

// ClassifyDayMaster computes the support ratio (own element plus its
// generator over the distribution total) and classifies it against the
// weights' strong and weak thresholds.
func ClassifyDayMaster(fp FourPillars, d ElementDistribution, w config.Weights) DayMasterVerdict {
	dm := fp.DayMasterElement
	own := d.Scores[dm]
	gen := d.Scores[dm.GeneratedBy()]

	ratio := 0.0
	if d.Total > 0 {
		ratio = (own + gen) / d.Total
	}
	v := DayMasterVerdict{
		Element: dm,
		Ratio:   ratio,
		Score:   math.Min(100, math.Max(0, ratio*100)),
		Factors: []Factor{},
	}

	switch {
	case ratio > w.StrongRatio:
		v.Classification = Strong
	case ratio < w.WeakRatio:
		v.Classification = Weak
	default:
		v.Classification = Balanced
	}

	// Factors compare against the 0..100 scale regardless of normalization.
	scale := 1.0
	if d.Total > 0 {
		scale = 100 / d.Total
	}
	b := fp.Branches()
	if ganzhi.HasRoot(fp.DayMaster, b[:]...) {
		v.Factors = append(v.Factors, FactorRooted)
	}
	if own*scale > w.SelfFactorMin {
		v.Factors = append(v.Factors, FactorStrongSelf)
	}
	if gen*scale > w.GeneratorFactorMin {
		v.Factors = append(v.Factors, FactorStrongGenerator)
	}
	return v
}
