// Package locale renders the message IDs produced by the engine (rationales,
// annual tags, pattern traits) and a few labels in the supported languages.
package locale

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/tartampluch/go-bazi/internal/config"
	"github.com/tartampluch/go-bazi/internal/engine"
	"github.com/tartampluch/go-bazi/internal/ganzhi"
)

//go:embed locales/*.json
var localeFS embed.FS

// Catalog is the loaded translation bundle.
type Catalog struct {
	bundle    *i18n.Bundle
	matcher   language.Matcher
	Languages []string
	log       *slog.Logger
}

// Load reads every embedded active.<lang>.json file. Malformed file names
// are skipped; a file that fails to parse is logged and skipped.
func Load(log *slog.Logger) (*Catalog, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(config.LogKeyComponent, config.CompI18n)

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir(config.LocalesDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLocalesAccess, err)
	}

	c := &Catalog{bundle: bundle, log: log}
	var tags []language.Tag
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, config.LocalePrefix) || !strings.HasSuffix(name, config.LocaleExt) {
			log.Debug(config.MsgLocaleSkip, config.LogKeyFile, name)
			continue
		}

		code := strings.TrimSuffix(strings.TrimPrefix(name, config.LocalePrefix), config.LocaleExt)
		tag, err := language.Parse(code)
		if code == "" || err != nil {
			log.Warn(config.MsgLocaleBadName, config.LogKeyFile, name)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, config.LocalesDir+"/"+name); err != nil {
			log.Error(config.ErrLocaleLoad,
				config.LogKeyFile, name,
				config.LogKeyError, err)
			continue
		}
		log.Debug(config.MsgLocaleLoaded,
			config.LogKeyLang, code,
			config.LogKeyFile, name)

		c.Languages = append(c.Languages, code)
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return nil, errors.New(config.ErrLocalesAccess)
	}
	c.matcher = language.NewMatcher(tags)
	return c, nil
}

// Match returns the loaded language closest to the requested one, e.g. "zh"
// for "zh-Hant-TW". Unknown requests get the first loaded language.
func (c *Catalog) Match(requested string) string {
	tag, _, _ := c.matcher.Match(language.Make(requested))
	base, _ := tag.Base()
	return base.String()
}

// Translator renders message IDs in one language, falling back to English
// and then to the ID itself.
type Translator struct {
	Lang      string
	localizer *i18n.Localizer
	log       *slog.Logger
}

// For returns a translator for lang.
func (c *Catalog) For(lang string) *Translator {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	lang = c.Match(lang)
	return &Translator{
		Lang:      lang,
		localizer: i18n.NewLocalizer(c.bundle, lang, config.DefaultLanguage),
		log:       c.log.With(config.LogKeyLang, lang),
	}
}

// Msg translates id with optional template data.
func (t *Translator) Msg(id string, data map[string]string) string {
	if t == nil || t.localizer == nil {
		return config.RenderRationale(id, data)
	}
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		t.log.Debug(config.MsgTransMissing,
			config.LogKeyKey, id,
			config.LogKeyError, err)
		return id
	}
	return msg
}

// Msgs translates every ID of ids.
func (t *Translator) Msgs(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = t.Msg(id, nil)
	}
	return out
}

// Element returns the localized name of e.
func (t *Translator) Element(e ganzhi.Element) string {
	return t.Msg(config.LabelElement+e.String(), nil)
}

// Elements localizes a list of elements.
func (t *Translator) Elements(es []ganzhi.Element) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = t.Element(e)
	}
	return out
}

// Rationale renders a yongshen rationale. Element and season names among the
// template values are localized first.
func (t *Translator) Rationale(r engine.YongshenResult) string {
	data := make(map[string]string, len(r.RationaleData))
	for k, v := range r.RationaleData {
		data[k] = t.value(v)
	}
	return t.Msg(r.RationaleID, data)
}

func (t *Translator) value(v string) string {
	if e, err := ganzhi.ParseElement(v); err == nil {
		return t.Element(e)
	}
	for _, s := range []ganzhi.Season{ganzhi.Spring, ganzhi.Summer, ganzhi.Autumn, ganzhi.Winter} {
		if s.String() == v {
			return t.Msg(config.LabelSeason+v, nil)
		}
	}
	return v
}

// Summary titles an almanac event. It fits almanac.Generator.FormatSummary.
func (t *Translator) Summary(kind, name string, pair ganzhi.Pair, age int) string {
	id := config.SummaryLuck
	if kind == config.UIDKindAnnual {
		id = config.SummaryAnnual
	}
	return t.Msg(id, map[string]string{
		"Name": name,
		"Pair": pair.String(),
		"Age":  fmt.Sprint(age),
	})
}
