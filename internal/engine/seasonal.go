package engine

import (
	"fmt"

	"github.com/tartampluch/go-bazi/internal/config"
	"github.com/tartampluch/go-bazi/internal/ganzhi"
)

// SeasonalState is an element's vigor in the birth month (wang xiang xiu qiu si).
type SeasonalState int

const (
	Prosperous SeasonalState = iota
	Supported
	Resting
	Imprisoned
	Dead
)

var seasonalNames = [...]string{"prosperous", "supported", "resting", "imprisoned", "dead"}

func (s SeasonalState) String() string {
	if s < Prosperous || s > Dead {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return seasonalNames[s]
}

// MarshalText encodes the state by its English name.
func (s SeasonalState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Coefficient returns the multiplier of s under w.
func (s SeasonalState) Coefficient(w config.SeasonalCoefficients) float64 {
	switch s {
	case Prosperous:
		return w.Prosperous
	case Supported:
		return w.Supported
	case Resting:
		return w.Resting
	case Imprisoned:
		return w.Imprisoned
	default:
		return w.Dead
	}
}

// SeasonalStates classifies the five elements against a month branch: the
// month's own element prospers, the one generating it is supported, the one
// it generates rests, the one controlling it is imprisoned and the one it
// controls is dead. An invalid month branch is a structural error.
func SeasonalStates(month ganzhi.Branch) ([ganzhi.ElementCount]SeasonalState, error) {
	var out [ganzhi.ElementCount]SeasonalState
	if !month.Valid() {
		return out, &StructuralError{Field: "month_branch", Value: fmt.Sprintf("%s (%d)", config.ErrUnknownMonth, int(month))}
	}
	own := month.Element()
	out[own] = Prosperous
	out[own.GeneratedBy()] = Supported
	out[own.Generates()] = Resting
	out[own.ControlledBy()] = Imprisoned
	out[own.Controls()] = Dead
	return out, nil
}

// seasonalCoefficients maps SeasonalStates through the configured multipliers.
func seasonalCoefficients(month ganzhi.Branch, w config.SeasonalCoefficients) (ElementScores, error) {
	states, err := SeasonalStates(month)
	if err != nil {
		return ElementScores{}, err
	}
	var out ElementScores
	for e, s := range states {
		out[e] = s.Coefficient(w)
	}
	return out, nil
}
