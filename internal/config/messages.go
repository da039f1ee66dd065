package config

import (
	"strings"
	"text/template"
)

// -----------------------------------------------------------------------------
// Rationale Message IDs
// -----------------------------------------------------------------------------

// Rationale IDs double as go-i18n message IDs; DefaultTemplates holds the
// English source text rendered when no localizer is involved.
const (
	RationaleFollow    = "rationale.follow"
	RationaleThriving  = "rationale.thriving"
	RationaleSummer    = "rationale.seasonal.summer"
	RationaleWinter    = "rationale.seasonal.winter"
	RationaleSpring    = "rationale.seasonal.spring"
	RationaleAutumn    = "rationale.seasonal.autumn"
	RationaleMediation = "rationale.mediation"
	RationaleDisease   = "rationale.disease_remedy"
	RationaleWeak      = "rationale.support.weak"
	RationaleStrong    = "rationale.support.strong"
	RationaleBalanced  = "rationale.support.balanced"
)

// -----------------------------------------------------------------------------
// Annual Fortune Tags
// -----------------------------------------------------------------------------

const (
	TagStemSupport    = "tag.stem_support"
	TagStemPressure   = "tag.stem_pressure"
	TagCombination    = "tag.six_combination"
	TagClash          = "tag.clash"
	TagReturnYear     = "tag.return_year"
	TagPeachBlossom   = "tag.peach_blossom"
	TagWealthStar     = "tag.wealth_star"
	TagSameElement    = "tag.same_element"
	TagOutputFlow     = "tag.output_flow"
	TagLuckTransition = "tag.luck_transition"
)

// -----------------------------------------------------------------------------
// Pattern Characteristics
// -----------------------------------------------------------------------------

const (
	TraitSelfReliant  = "trait.self_reliant"
	TraitDecisive     = "trait.decisive"
	TraitAdaptable    = "trait.adaptable"
	TraitPragmatic    = "trait.pragmatic"
	TraitDisciplined  = "trait.disciplined"
	TraitExpressive   = "trait.expressive"
	TraitTransforming = "trait.transforming"
	TraitSingleMinded = "trait.single_minded"
	TraitAuthority    = "trait.authority"
	TraitResolute     = "trait.resolute"
	TraitNoble        = "trait.noble"
	TraitBenevolent   = "trait.benevolent"
)

// -----------------------------------------------------------------------------
// Labels (locale files only)
// -----------------------------------------------------------------------------

// Label prefixes are joined with the English name of the value, e.g.
// "element.wood" or "method.disease_remedy".
const (
	LabelElement        = "element."
	LabelSeason         = "season."
	LabelClassification = "classification."
	LabelMethod         = "method."

	LabelDayMaster = "label.day_master"
	SummaryLuck    = "summary.luck"
	SummaryAnnual  = "summary.annual"
)

// DefaultTemplates maps every message ID emitted by the engine to its English
// text. Placeholders use text/template syntax, as go-i18n does.
var DefaultTemplates = map[string]string{
	RationaleFollow:    "The chart follows the dominant {{.Dominant}}; favor {{.Dominant}} and avoid the weak {{.DayMaster}} day master.",
	RationaleThriving:  "The {{.DayMaster}} day master is thriving; go with it and favor {{.DayMaster}} and its resource.",
	RationaleSummer:    "Born in summer heat; {{.Favored}} cools the chart.",
	RationaleWinter:    "Born in winter cold; {{.Favored}} warms the chart.",
	RationaleSpring:    "Born in spring while wood rules; {{.Favored}} adjusts the season.",
	RationaleAutumn:    "Born in autumn while metal rules; {{.Favored}} adjusts the season.",
	RationaleMediation: "{{.First}} and {{.Second}} are at war; {{.Mediator}} bridges them.",
	RationaleDisease:   "{{.Weak}} is too weak and {{.Source}} is the source of the illness; {{.Remedy}} is the remedy.",
	RationaleWeak:      "The {{.DayMaster}} day master is weak; favor its resource and companions.",
	RationaleStrong:    "The {{.DayMaster}} day master is strong; drain it through output and wealth, restrain it with authority.",
	RationaleBalanced:  "The {{.DayMaster}} day master is balanced; wealth and authority keep it so.",

	TagStemSupport:    "The year stem nourishes the day master",
	TagStemPressure:   "The year stem pressures the day master",
	TagCombination:    "The year branch combines with the day branch",
	TagClash:          "The year branch clashes with the day branch",
	TagReturnYear:     "Return year of the birth branch",
	TagPeachBlossom:   "Peach blossom year",
	TagWealthStar:     "Wealth star year",
	TagSameElement:    "Companion year of the same element",
	TagOutputFlow:     "The day master flows into the year",
	TagLuckTransition: "A new luck period begins",

	TraitSelfReliant:  "Self-reliant and steady",
	TraitDecisive:     "Decisive, with a sharp edge",
	TraitAdaptable:    "Adapts to strong surroundings",
	TraitPragmatic:    "Pragmatic about resources",
	TraitDisciplined:  "Responsive to rules and rank",
	TraitExpressive:   "Expressive and creative",
	TraitTransforming: "Changes character through combination",
	TraitSingleMinded: "Single-minded pursuit of one element",
	TraitAuthority:    "Commanding, favors authority",
	TraitResolute:     "Resolute and uncompromising",
	TraitNoble:        "Attracts noble help",
	TraitBenevolent:   "Kind and virtuous",
}

var defaultTemplates = func() map[string]*template.Template {
	out := make(map[string]*template.Template, len(DefaultTemplates))
	for id, text := range DefaultTemplates {
		out[id] = template.Must(template.New(id).Option("missingkey=zero").Parse(text))
	}
	return out
}()

// RenderRationale renders the English template of id. Unknown IDs render as
// the ID itself.
func RenderRationale(id string, data map[string]string) string {
	t, ok := defaultTemplates[id]
	if !ok {
		return id
	}
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return DefaultTemplates[id]
	}
	return sb.String()
}
