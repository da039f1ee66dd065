package locale

import (
	"github.com/tartampluch/go-bazi/internal/config"
	"github.com/tartampluch/go-bazi/internal/engine"
	"github.com/tartampluch/go-bazi/internal/ganzhi"
)

// PatternText is a localized pattern match.
type PatternText struct {
	Name   string   `json:"name"`
	Traits []string `json:"traits"`
}

// ChartText holds the human-readable parts of a chart in one language.
type ChartText struct {
	Language  string        `json:"language"`
	DayMaster string        `json:"day_master"`
	Method    string        `json:"method"`
	Rationale string        `json:"rationale"`
	Favorable []string      `json:"favorable"`
	Avoid     []string      `json:"avoid"`
	Patterns  []PatternText `json:"patterns"`
}

// FortuneText holds the localized tags of an annual fortune.
type FortuneText struct {
	Highlights []string `json:"highlights"`
	Warnings   []string `json:"warnings"`
}

// Chart localizes the free text of c.
func (t *Translator) Chart(c engine.Chart) ChartText {
	v := c.Verdict
	out := ChartText{
		Language: t.Lang,
		DayMaster: t.Msg(config.LabelDayMaster, map[string]string{
			"Stem":           c.Pillars.DayMaster.String(),
			"Element":        t.Element(v.Element),
			"Classification": t.Msg(config.LabelClassification+v.Classification.String(), nil),
		}),
		Method:    t.Msg(config.LabelMethod+string(c.Yongshen.Method), nil),
		Rationale: t.Rationale(c.Yongshen),
		Favorable: t.Elements(append(append([]ganzhi.Element{}, c.Yongshen.Primary...), c.Yongshen.Secondary...)),
		Avoid:     t.Elements(c.Yongshen.Avoid),
		Patterns:  make([]PatternText, 0, len(c.Patterns.Matches)),
	}
	for _, m := range c.Patterns.Matches {
		out.Patterns = append(out.Patterns, PatternText{Name: m.Name, Traits: t.Msgs(m.Characteristics)})
	}
	return out
}

// Fortune localizes the tags of f.
func (t *Translator) Fortune(f engine.AnnualFortune) FortuneText {
	return FortuneText{Highlights: t.Msgs(f.Highlights), Warnings: t.Msgs(f.Warnings)}
}
