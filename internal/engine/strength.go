package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"sort"

	"github.com/tartampluch/go-bazi/internal/config"
	"github.com/tartampluch/go-bazi/internal/ganzhi"
)

// ElementScores holds one value per element, indexed by ganzhi.Element.
type ElementScores [ganzhi.ElementCount]float64

// Sum adds the five values.
func (s ElementScores) Sum() float64 {
	total := 0.0
	for _, v := range s {
		total += v
	}
	return total
}

// MarshalJSON encodes the scores as an object keyed by element name, in
// stable element order.
func (s ElementScores) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(ganzhi.Element(i).String())
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// StrengthDetails keeps each scoring step's contribution for explanation.
type StrengthDetails struct {
	Stems       ElementScores `json:"stems"`
	Hidden      ElementScores `json:"hidden"`
	Seasonal    ElementScores `json:"seasonal_coefficients"`
	Rooting     ElementScores `json:"rooting"`
	Revealing   ElementScores `json:"revealing"`
	Interaction ElementScores `json:"interaction"`
	Raw         ElementScores `json:"raw"`
}

// ElementDistribution is the per-element strength of a chart. When
// Normalized, Scores are integers summing to exactly 100; otherwise they are
// the raw accumulators and sum to Total.
type ElementDistribution struct {
	Scores     ElementScores   `json:"scores"`
	Total      float64         `json:"total"`
	Normalized bool            `json:"normalized"`
	Details    StrengthDetails `json:"details"`
}

// Score returns the score of e.
func (d ElementDistribution) Score(e ganzhi.Element) float64 { return d.Scores[e] }

// Ranked returns the elements from strongest to weakest; equal scores keep
// the stable element order.
func (d ElementDistribution) Ranked() []ganzhi.Element {
	out := ganzhi.Elements[:]
	out = append([]ganzhi.Element(nil), out...)
	sort.SliceStable(out, func(i, j int) bool { return d.Scores[out[i]] > d.Scores[out[j]] })
	return out
}

// Strongest returns the highest-scoring element.
func (d ElementDistribution) Strongest() ganzhi.Element { return d.Ranked()[0] }

// Weakest returns the lowest-scoring element, the later one on ties.
func (d ElementDistribution) Weakest() ganzhi.Element {
	r := d.Ranked()
	return r[len(r)-1]
}

var errEmptyDistribution = errors.New("element scores sum to zero")

// ScoreElements computes the five-element distribution of fp. Steps run in
// order and each reads the accumulator left by the previous one:
// stems, hidden stems, seasonal rescale, rooting, revealing, one pass of
// generating/controlling interaction, then normalization.
func ScoreElements(fp FourPillars, w config.Weights) (ElementDistribution, error) {
	var det StrengthDetails
	var acc ElementScores

	coef, err := seasonalCoefficients(fp.MonthOrder, w.Seasonal)
	if err != nil {
		return ElementDistribution{}, err
	}
	det.Seasonal = coef

	stems := fp.Stems()
	branches := fp.Branches()

	hidden := make([][]ganzhi.HiddenStem, len(branches))
	for i, b := range branches {
		hs, err := ganzhi.HiddenStems(b)
		if err != nil {
			return ElementDistribution{}, &StructuralError{Field: pillarNames[i] + ".branch", Value: int(b)}
		}
		hidden[i] = hs
	}

	// 1. Visible stems.
	for _, s := range stems {
		det.Stems[s.Element()] += w.StemBase
	}

	// 2. Hidden stems.
	for _, hs := range hidden {
		for _, h := range hs {
			det.Hidden[h.Element] += h.Weight * w.HiddenScale
		}
	}

	// 3. Seasonal rescale.
	for e := range acc {
		acc[e] = (det.Stems[e] + det.Hidden[e]) * coef[e]
	}

	// 4. Rooting: a visible stem whose element is hidden in any branch.
	for i, s := range stems {
		el := s.Element()
		mult := 1.0
		if i == 2 {
			mult = w.DayRootMultiplier
		}
		for _, hs := range hidden {
			for _, h := range hs {
				if h.Element != el {
					continue
				}
				det.Rooting[el] += h.Weight * coef[el] * roleValue(w.RootRole, h.Role) * w.RootScale * mult
			}
		}
	}

	// 5. Revealing: a hidden stem that also stands among the visible stems.
	for _, hs := range hidden {
		for _, h := range hs {
			if containsStem(stems[:], h.Stem) {
				det.Revealing[h.Element] += roleValue(w.Reveal, h.Role)
			}
		}
	}

	for e := range acc {
		acc[e] += det.Rooting[e] + det.Revealing[e]
	}

	// 6. Interaction, read from the accumulator before this step.
	before := acc
	for _, e := range ganzhi.Elements {
		det.Interaction[e] = before[e.GeneratedBy()]*w.GenerateFactor - before[e.ControlledBy()]*w.ControlFactor
		acc[e] = math.Max(0, before[e]+det.Interaction[e])
	}
	det.Raw = acc

	total := acc.Sum()
	if !(total > 0) {
		return ElementDistribution{}, &StructuralError{Field: "element_scores", Value: errEmptyDistribution.Error()}
	}

	dist := ElementDistribution{Scores: acc, Total: total, Details: det}
	if w.Normalize {
		dist.Scores = normalize(acc, total)
		dist.Total = 100
		dist.Normalized = true
	}
	return dist, nil
}

// normalize rescales to integers summing to exactly 100 by largest remainder.
// Remainder ties go to the earlier element.
func normalize(raw ElementScores, total float64) ElementScores {
	var out ElementScores
	var frac [ganzhi.ElementCount]float64
	assigned := 0
	for e, v := range raw {
		scaled := v / total * 100
		out[e] = math.Floor(scaled)
		frac[e] = scaled - out[e]
		assigned += int(out[e])
	}

	order := append([]ganzhi.Element(nil), ganzhi.Elements[:]...)
	sort.SliceStable(order, func(i, j int) bool { return frac[order[i]] > frac[order[j]] })
	for i := 0; assigned < 100; i++ {
		out[order[i%len(order)]]++
		assigned++
	}
	return out
}

func roleValue(w config.RoleWeights, r ganzhi.Role) float64 {
	switch r {
	case ganzhi.Primary:
		return w.Primary
	case ganzhi.Secondary:
		return w.Secondary
	default:
		return w.Residual
	}
}

func containsStem(stems []ganzhi.Stem, s ganzhi.Stem) bool {
	for _, v := range stems {
		if v == s {
			return true
		}
	}
	return false
}
