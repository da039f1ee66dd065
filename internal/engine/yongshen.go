package engine

import (
	"github.com/tartampluch/go-bazi/internal/config"
	"github.com/tartampluch/go-bazi/internal/ganzhi"
)

// Method names a favorable-element selection method.
type Method string

const (
	MethodDominant      Method = "dominant"
	MethodSeasonal      Method = "seasonal"
	MethodMediation     Method = "mediation"
	MethodDiseaseRemedy Method = "disease_remedy"
	MethodSupport       Method = "support_suppress"
)

// Subtype refines a method where it has variants.
type Subtype string

const (
	SubtypeNone     Subtype = ""
	SubtypeFollow   Subtype = "follow"
	SubtypeThriving Subtype = "thriving"
	SubtypeWeak     Subtype = "weak"
	SubtypeStrong   Subtype = "strong"
	SubtypeBalanced Subtype = "balanced"
)

// YongshenResult is the favorable-element selection of one chart.
// RationaleID and RationaleData let a localizer re-render Rationale.
type YongshenResult struct {
	Method        Method            `json:"method"`
	Subtype       Subtype           `json:"subtype,omitempty"`
	Primary       []ganzhi.Element  `json:"primary"`
	Secondary     []ganzhi.Element  `json:"secondary"`
	Avoid         []ganzhi.Element  `json:"avoid"`
	Rationale     string            `json:"rationale"`
	RationaleID   string            `json:"rationale_id"`
	RationaleData map[string]string `json:"rationale_data,omitempty"`
}

// YongshenInput is what every selection rule reads.
type YongshenInput struct {
	Pillars      FourPillars
	Distribution ElementDistribution
	Verdict      DayMasterVerdict
	Weights      config.Weights
}

// YongshenRule is one row of the selection table. Select reports false when
// the rule does not apply.
type YongshenRule struct {
	Method Method
	Select func(YongshenInput) (YongshenResult, bool)
}

// YongshenRules is the selection table in precedence order; the first rule
// that applies wins. The last rule always applies.
var YongshenRules = []YongshenRule{
	{MethodDominant, selectDominant},
	{MethodSeasonal, selectSeasonal},
	{MethodMediation, selectMediation},
	{MethodDiseaseRemedy, selectDiseaseRemedy},
	{MethodSupport, selectSupport},
}

// SelectYongshen runs the selection table.
func SelectYongshen(in YongshenInput) YongshenResult {
	for _, rule := range YongshenRules {
		if r, ok := rule.Select(in); ok {
			r.Method = rule.Method
			return r
		}
	}
	// Unreachable while the last rule is unconditional.
	r, _ := selectSupport(in)
	r.Method = MethodSupport
	return r
}

func selectDominant(in YongshenInput) (YongshenResult, bool) {
	dm := in.Verdict.Element
	strongest := in.Distribution.Strongest()
	score := in.Verdict.Score

	switch {
	case score < in.Weights.FollowMax && strongest != dm:
		return newResult(SubtypeFollow, config.RationaleFollow,
			[]ganzhi.Element{strongest},
			[]ganzhi.Element{strongest.Generates()},
			[]ganzhi.Element{dm},
			map[string]string{"Dominant": strongest.String(), "DayMaster": dm.String()}), true
	case score >= in.Weights.ThrivingMin && strongest == dm:
		return newResult(SubtypeThriving, config.RationaleThriving,
			[]ganzhi.Element{dm, dm.GeneratedBy()},
			nil, nil,
			map[string]string{"DayMaster": dm.String()}), true
	}
	return YongshenResult{}, false
}

func selectSeasonal(in YongshenInput) (YongshenResult, bool) {
	score := in.Verdict.Score
	if score < in.Weights.BalancedLow || score > in.Weights.BalancedHigh {
		return YongshenResult{}, false
	}
	dm := in.Verdict.Element
	season := in.Pillars.MonthOrder.Season()

	var primary, secondary []ganzhi.Element
	id := ""
	switch season {
	case ganzhi.Summer:
		primary, id = []ganzhi.Element{ganzhi.Water}, config.RationaleSummer
		if dm == ganzhi.Fire {
			secondary = []ganzhi.Element{ganzhi.Earth}
		}
	case ganzhi.Winter:
		primary, id = []ganzhi.Element{ganzhi.Fire}, config.RationaleWinter
		if dm == ganzhi.Water {
			secondary = []ganzhi.Element{ganzhi.Wood}
		}
	case ganzhi.Spring:
		id = config.RationaleSpring
		if dm == ganzhi.Wood {
			primary = []ganzhi.Element{ganzhi.Fire}
		} else {
			primary = []ganzhi.Element{ganzhi.Wood}
		}
	default:
		id = config.RationaleAutumn
		if dm == ganzhi.Metal {
			primary = []ganzhi.Element{ganzhi.Water}
		} else {
			primary = []ganzhi.Element{ganzhi.Metal}
		}
	}
	return newResult(SubtypeNone, id, primary, secondary, nil,
		map[string]string{"Season": season.String(), "DayMaster": dm.String(), "Favored": primary[0].String()}), true
}

func selectMediation(in YongshenInput) (YongshenResult, bool) {
	ranked := in.Distribution.Ranked()
	a, b := ranked[0], ranked[1]

	var mediator ganzhi.Element
	switch {
	case a.Controls() == b:
		mediator = a.Generates()
	case b.Controls() == a:
		mediator = b.Generates()
	default:
		return YongshenResult{}, false
	}
	return newResult(SubtypeNone, config.RationaleMediation,
		[]ganzhi.Element{mediator}, nil, nil,
		map[string]string{"First": a.String(), "Second": b.String(), "Mediator": mediator.String()}), true
}

func selectDiseaseRemedy(in YongshenInput) (YongshenResult, bool) {
	ranked := in.Distribution.Ranked()
	weak := ranked[len(ranked)-1]
	next := ranked[len(ranked)-2]

	scale := 1.0
	if in.Distribution.Total > 0 {
		scale = 100 / in.Distribution.Total
	}
	low := in.Distribution.Scores[weak] * scale
	if low >= in.Weights.ConspicuousMin || low > in.Distribution.Scores[next]*scale/2 {
		return YongshenResult{}, false
	}

	source := weak.ControlledBy()
	remedy := source.ControlledBy()
	return newResult(SubtypeNone, config.RationaleDisease,
		[]ganzhi.Element{remedy},
		[]ganzhi.Element{weak},
		[]ganzhi.Element{source},
		map[string]string{"Weak": weak.String(), "Source": source.String(), "Remedy": remedy.String()}), true
}

func selectSupport(in YongshenInput) (YongshenResult, bool) {
	dm := in.Verdict.Element
	data := map[string]string{"DayMaster": dm.String()}

	switch in.Verdict.Classification {
	case Weak:
		return newResult(SubtypeWeak, config.RationaleWeak,
			[]ganzhi.Element{dm.GeneratedBy(), dm},
			nil,
			[]ganzhi.Element{dm.Controls(), dm.ControlledBy()},
			data), true
	case Strong:
		return newResult(SubtypeStrong, config.RationaleStrong,
			[]ganzhi.Element{dm.Generates(), dm.Controls()},
			[]ganzhi.Element{dm.ControlledBy()},
			[]ganzhi.Element{dm.GeneratedBy(), dm},
			data), true
	default:
		return newResult(SubtypeBalanced, config.RationaleBalanced,
			[]ganzhi.Element{dm.Controls(), dm.ControlledBy()},
			nil, nil,
			data), true
	}
}

func newResult(sub Subtype, id string, primary, secondary, avoid []ganzhi.Element, data map[string]string) YongshenResult {
	if secondary == nil {
		secondary = []ganzhi.Element{}
	}
	if avoid == nil {
		avoid = []ganzhi.Element{}
	}
	return YongshenResult{
		Subtype:       sub,
		Primary:       primary,
		Secondary:     secondary,
		Avoid:         avoid,
		Rationale:     config.RenderRationale(id, data),
		RationaleID:   id,
		RationaleData: data,
	}
}
