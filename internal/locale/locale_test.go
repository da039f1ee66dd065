package locale_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-bazi/internal/calendar"
	"github.com/tartampluch/go-bazi/internal/config"
	"github.com/tartampluch/go-bazi/internal/engine"
	"github.com/tartampluch/go-bazi/internal/ganzhi"
	"github.com/tartampluch/go-bazi/internal/locale"
)

func loadCatalog(t *testing.T) *locale.Catalog {
	t.Helper()
	c, err := locale.Load(nil)
	require.NoError(t, err)
	return c
}

func referenceChart(t *testing.T) engine.Chart {
	t.Helper()
	e, err := engine.New(calendar.NewAstronomical())
	require.NoError(t, err)
	c, err := e.Compute(context.Background(), engine.BirthInput{
		Year: 1990, Month: 5, Day: 15, Hour: 14, Minute: 30,
		Longitude: 116.4074, Gender: engine.Male,
	})
	require.NoError(t, err)
	return c
}

func TestLoad(t *testing.T) {
	c := loadCatalog(t)
	assert.Equal(t, config.SupportedLanguages, c.Languages)
}

func TestMatch(t *testing.T) {
	c := loadCatalog(t)
	tests := map[string]string{
		"en":    "en",
		"en-GB": "en",
		"zh":    "zh",
		"zh-CN": "zh",
		"fr":    "en",
		"":      "en",
	}
	for in, want := range tests {
		assert.Equal(t, want, c.Match(in), "requested %q", in)
	}
}

func TestTranslator_Labels(t *testing.T) {
	c := loadCatalog(t)
	zh := c.For("zh")
	en := c.For("")

	assert.Equal(t, "zh", zh.Lang)
	assert.Equal(t, config.DefaultLanguage, en.Lang)
	assert.Equal(t, "金", zh.Element(ganzhi.Metal))
	assert.Equal(t, "metal", en.Element(ganzhi.Metal))
	assert.Equal(t, []string{"水", "木"}, zh.Elements([]ganzhi.Element{ganzhi.Water, ganzhi.Wood}))
	assert.Equal(t, "桃花年", zh.Msg(config.TagPeachBlossom, nil))
}

func TestTranslator_MissingKey(t *testing.T) {
	zh := loadCatalog(t).For("zh")
	assert.Equal(t, "no.such.key", zh.Msg("no.such.key", nil))

	// Without a catalog the engine's English templates are used.
	var none *locale.Translator
	assert.Equal(t, config.DefaultTemplates[config.TagClash], none.Msg(config.TagClash, nil))
}

func TestTranslator_Rationale(t *testing.T) {
	c := loadCatalog(t)
	chart := referenceChart(t)

	assert.Equal(t, chart.Yongshen.Rationale, c.For("en").Rationale(chart.Yongshen),
		"English rendering matches the engine's own text")
	assert.Equal(t, "生于夏令炎热，取水调候降温。", c.For("zh").Rationale(chart.Yongshen))
}

func TestTranslator_Chart(t *testing.T) {
	c := loadCatalog(t)
	chart := referenceChart(t)

	zh := c.For("zh").Chart(chart)
	assert.Equal(t, "zh", zh.Language)
	assert.Equal(t, "庚金日主，中和", zh.DayMaster)
	assert.Equal(t, "调候", zh.Method)
	assert.Equal(t, []string{"水"}, zh.Favorable)
	assert.Empty(t, zh.Avoid)
	require.Len(t, zh.Patterns, 2)
	assert.Equal(t, locale.PatternText{Name: "魁罡格", Traits: []string{"刚毅有威，喜掌权"}}, zh.Patterns[0])

	en := c.For("en").Chart(chart)
	assert.Equal(t, "庚 metal day master, balanced", en.DayMaster)
	assert.Equal(t, "Seasonal adjustment", en.Method)
}

func TestTranslator_Fortune(t *testing.T) {
	f := engine.AnnualFortune{
		Highlights: []string{config.TagStemSupport, config.TagPeachBlossom},
		Warnings:   []string{},
	}
	text := loadCatalog(t).For("zh").Fortune(f)
	assert.Equal(t, []string{"流年天干生扶日主", "桃花年"}, text.Highlights)
	assert.Empty(t, text.Warnings)
}

func TestTranslator_Summary(t *testing.T) {
	c := loadCatalog(t)
	pair := ganzhi.MustPair("壬午")

	assert.Equal(t, "Li Wei: 壬午 luck period from age 7", c.For("en").Summary(config.UIDKindLuck, "Li Wei", pair, 7))
	assert.Equal(t, "Li Wei：壬午流年（35岁）", c.For("zh").Summary(config.UIDKindAnnual, "Li Wei", pair, 35))
}
