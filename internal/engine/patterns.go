package engine

import (
	"sort"

	"github.com/tartampluch/go-bazi/internal/config"
	"github.com/tartampluch/go-bazi/internal/ganzhi"
)

// PatternCategory groups mutually exclusive patterns.
type PatternCategory string

const (
	CategoryRegular   PatternCategory = "regular"
	CategoryFollow    PatternCategory = "follow"
	CategoryTransform PatternCategory = "transform"
	CategoryDominant  PatternCategory = "dominant"
	CategorySpecial   PatternCategory = "special"
)

// PatternMatch is one archetype the chart fits. Element is the element the
// pattern revolves around. Characteristics are message IDs from config.
type PatternMatch struct {
	Type            string          `json:"type"`
	Category        PatternCategory `json:"category"`
	Name            string          `json:"name"`
	Element         ganzhi.Element  `json:"element"`
	Strength        int             `json:"strength"`
	Characteristics []string        `json:"characteristics"`
}

// PatternConflict flags two findings that contradict each other.
type PatternConflict struct {
	Kind    string   `json:"kind"`
	Between []string `json:"between"`
}

// PatternReport lists matches strongest first; Main is nil when nothing
// matched.
type PatternReport struct {
	Matches   []PatternMatch    `json:"matches"`
	Main      *PatternMatch     `json:"main,omitempty"`
	Conflicts []PatternConflict `json:"conflicts"`
}

// PatternRule detects the patterns of one category. Each rule reports at most
// one match except CategorySpecial, whose curated lists are independent.
type PatternRule struct {
	Category PatternCategory
	Detect   func(YongshenInput) []PatternMatch
}

// PatternRules is the detection table in declaration order, which also
// breaks ties between equally strong matches.
var PatternRules = []PatternRule{
	{CategoryRegular, detectRegular},
	{CategoryFollow, detectFollow},
	{CategoryTransform, detectTransform},
	{CategoryDominant, detectDominant},
	{CategorySpecial, detectSpecial},
}

// Pattern type tags.
const (
	PatternEstablished   = "established"
	PatternBlade         = "blade"
	PatternFollowWealth  = "follow_wealth"
	PatternFollowOfficer = "follow_officer"
	PatternFollowOutput  = "follow_output"
	PatternTransform     = "transform"
	PatternPure          = "pure"
	PatternKuigang       = "kuigang"
	PatternJinshen       = "jinshen"
	PatternDayNoble      = "day_noble"
	PatternDayVirtue     = "day_virtue"
)

// establishedBranch and bladeBranch are keyed by the day stem.
var (
	establishedBranch = [ganzhi.StemCount]ganzhi.Branch{
		ganzhi.Yin, ganzhi.Mao, ganzhi.Si, ganzhi.Horse, ganzhi.Si,
		ganzhi.Horse, ganzhi.Shen, ganzhi.You, ganzhi.Hai, ganzhi.Zi,
	}
	bladeBranch = [ganzhi.StemCount]ganzhi.Branch{
		ganzhi.Mao, ganzhi.Yin, ganzhi.Horse, ganzhi.Si, ganzhi.Horse,
		ganzhi.Si, ganzhi.You, ganzhi.Shen, ganzhi.Zi, ganzhi.Hai,
	}
)

func detectRegular(in YongshenInput) []PatternMatch {
	dm, month := in.Pillars.DayMaster, in.Pillars.Month.Branch
	switch month {
	case establishedBranch[dm]:
		return []PatternMatch{{
			Type: PatternEstablished, Name: "建禄格", Element: dm.Element(), Strength: 85,
			Characteristics: []string{config.TraitSelfReliant},
		}}
	case bladeBranch[dm]:
		return []PatternMatch{{
			Type: PatternBlade, Name: "月刃格", Element: dm.Element(), Strength: 80,
			Characteristics: []string{config.TraitDecisive},
		}}
	}
	return nil
}

func detectFollow(in YongshenInput) []PatternMatch {
	if in.Verdict.Score >= in.Weights.FollowMax {
		return nil
	}
	strongest := in.Distribution.Strongest()
	scale := 100 / in.Distribution.Total
	if in.Distribution.Scores[strongest]*scale <= in.Weights.FollowElementMin {
		return nil
	}
	dm := in.Verdict.Element
	switch {
	case dm.Controls() == strongest:
		return []PatternMatch{{
			Type: PatternFollowWealth, Name: "从财格", Element: strongest, Strength: 75,
			Characteristics: []string{config.TraitAdaptable, config.TraitPragmatic},
		}}
	case strongest.Controls() == dm:
		return []PatternMatch{{
			Type: PatternFollowOfficer, Name: "从官格", Element: strongest, Strength: 80,
			Characteristics: []string{config.TraitAdaptable, config.TraitDisciplined},
		}}
	case dm.Generates() == strongest:
		return []PatternMatch{{
			Type: PatternFollowOutput, Name: "从儿格", Element: strongest, Strength: 70,
			Characteristics: []string{config.TraitAdaptable, config.TraitExpressive},
		}}
	}
	return nil
}

// stemCombinations are the five stem pairs and the element each transforms
// into, in lookup order.
var stemCombinations = []struct {
	a, b    ganzhi.Stem
	element ganzhi.Element
	name    string
}{
	{ganzhi.Jia, ganzhi.Ji, ganzhi.Earth, "甲己化土格"},
	{ganzhi.Yi, ganzhi.Geng, ganzhi.Metal, "乙庚化金格"},
	{ganzhi.Bing, ganzhi.Xin, ganzhi.Water, "丙辛化水格"},
	{ganzhi.Ding, ganzhi.Ren, ganzhi.Wood, "丁壬化木格"},
	{ganzhi.Wu, ganzhi.Gui, ganzhi.Fire, "戊癸化火格"},
}

func detectTransform(in YongshenInput) []PatternMatch {
	stems := in.Pillars.Stems()
	for _, c := range stemCombinations {
		if containsStem(stems[:], c.a) && containsStem(stems[:], c.b) {
			return []PatternMatch{{
				Type: PatternTransform, Name: c.name, Element: c.element, Strength: 70,
				Characteristics: []string{config.TraitTransforming},
			}}
		}
	}
	return nil
}

var pureNames = [ganzhi.ElementCount]string{"曲直格", "炎上格", "稼穑格", "从革格", "润下格"}

func detectDominant(in YongshenInput) []PatternMatch {
	if in.Verdict.Score < in.Weights.ThrivingMin {
		return nil
	}
	dm := in.Verdict.Element
	count := 0
	for _, p := range in.Pillars.Pillars() {
		if p.Stem.Element() == dm {
			count++
		}
		if p.Branch.Element() == dm {
			count++
		}
	}
	if count < in.Weights.DominantCount {
		return nil
	}
	return []PatternMatch{{
		Type: PatternPure, Name: pureNames[dm], Element: dm, Strength: 85,
		Characteristics: []string{config.TraitSingleMinded},
	}}
}

// specialDayPillars are the curated day-pillar lists, in declaration order.
var specialDayPillars = []struct {
	typ      string
	name     string
	strength int
	trait    string
	pillars  []string
}{
	{PatternKuigang, "魁罡格", 75, config.TraitAuthority, []string{"庚辰", "庚戌", "壬辰", "戊戌"}},
	{PatternJinshen, "金神格", 70, config.TraitResolute, []string{"甲午", "甲寅", "己巳", "己酉"}},
	{PatternDayNoble, "日贵格", 65, config.TraitNoble, []string{"丁酉", "丁亥", "癸卯", "癸巳"}},
	{PatternDayVirtue, "日德格", 65, config.TraitBenevolent, []string{"甲寅", "丙辰", "戊辰", "庚辰", "壬戌"}},
}

func detectSpecial(in YongshenInput) []PatternMatch {
	day := in.Pillars.Day.Pair.String()
	dm := in.Pillars.DayMasterElement
	var out []PatternMatch
	for _, s := range specialDayPillars {
		for _, p := range s.pillars {
			if p == day {
				out = append(out, PatternMatch{
					Type: s.typ, Name: s.name, Element: dm, Strength: s.strength,
					Characteristics: []string{s.trait},
				})
				break
			}
		}
	}
	return out
}

// Conflict kinds.
const (
	ConflictRegularFollow  = "regular_vs_follow"
	ConflictDominantFollow = "dominant_vs_follow"
	ConflictBranchClash    = "branch_clash"
)

// DetectPatterns runs the rule table, ranks the matches and flags conflicts.
func DetectPatterns(in YongshenInput) PatternReport {
	r := PatternReport{Matches: []PatternMatch{}, Conflicts: []PatternConflict{}}
	found := map[PatternCategory]string{}
	for _, rule := range PatternRules {
		for _, m := range rule.Detect(in) {
			m.Category = rule.Category
			r.Matches = append(r.Matches, m)
			if _, ok := found[rule.Category]; !ok {
				found[rule.Category] = m.Type
			}
		}
	}
	sort.SliceStable(r.Matches, func(i, j int) bool { return r.Matches[i].Strength > r.Matches[j].Strength })
	if len(r.Matches) > 0 {
		main := r.Matches[0]
		r.Main = &main
	}

	for _, pair := range [][2]PatternCategory{{CategoryRegular, CategoryFollow}, {CategoryDominant, CategoryFollow}} {
		a, okA := found[pair[0]]
		b, okB := found[pair[1]]
		if okA && okB {
			kind := ConflictRegularFollow
			if pair[0] == CategoryDominant {
				kind = ConflictDominantFollow
			}
			r.Conflicts = append(r.Conflicts, PatternConflict{Kind: kind, Between: []string{a, b}})
		}
	}

	branches := in.Pillars.Branches()
	seen := map[[2]ganzhi.Branch]bool{}
	for i := range branches {
		for j := i + 1; j < len(branches); j++ {
			if branches[i].Clash() != branches[j] {
				continue
			}
			key := [2]ganzhi.Branch{min(branches[i], branches[j]), max(branches[i], branches[j])}
			if seen[key] {
				continue
			}
			seen[key] = true
			r.Conflicts = append(r.Conflicts, PatternConflict{
				Kind:    ConflictBranchClash,
				Between: []string{key[0].String(), key[1].String()},
			})
		}
	}
	return r
}
