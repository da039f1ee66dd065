// Package ganzhi defines the cyclical symbols of the Chinese calendar:
// the five elements, the ten heavenly stems, the twelve earthly branches
// and the sixty-term sexagenary cycle built from them.
//
// All types are small integers so they can index static tables directly.
// Every table in this package is read-only and safe for concurrent use.
package ganzhi

import (
	"errors"
	"fmt"
)

// ErrUnknownSymbol is returned when a stem, branch or pair cannot be parsed
// or lies outside its cycle.
var ErrUnknownSymbol = errors.New("ganzhi: unknown symbol")

// -----------------------------------------------------------------------------
// Five Elements
// -----------------------------------------------------------------------------

// Element is one of the five phases. The numeric order (wood, fire, earth,
// metal, water) follows the generating cycle and is the stable ordering used
// for tie-breaking everywhere in the module.
type Element int

const (
	Wood Element = iota
	Fire
	Earth
	Metal
	Water
)

// ElementCount is the number of elements.
const ElementCount = 5

// Elements lists every element in stable order.
var Elements = [ElementCount]Element{Wood, Fire, Earth, Metal, Water}

var elementNames = [ElementCount]string{"wood", "fire", "earth", "metal", "water"}
var elementHanzi = [ElementCount]string{"木", "火", "土", "金", "水"}

// Valid reports whether e is one of the five elements.
func (e Element) Valid() bool { return e >= Wood && e <= Water }

// String returns the lowercase English name.
func (e Element) String() string {
	if !e.Valid() {
		return fmt.Sprintf("element(%d)", int(e))
	}
	return elementNames[e]
}

// Hanzi returns the Chinese character of the element.
func (e Element) Hanzi() string {
	if !e.Valid() {
		return "?"
	}
	return elementHanzi[e]
}

// MarshalText encodes the element by its English name.
func (e Element) MarshalText() ([]byte, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("%w: element %d", ErrUnknownSymbol, int(e))
	}
	return []byte(elementNames[e]), nil
}

// UnmarshalText accepts the English name or the Chinese character.
func (e *Element) UnmarshalText(b []byte) error {
	v, err := ParseElement(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// ParseElement parses an English name ("wood") or a character ("木").
func ParseElement(s string) (Element, error) {
	for i := range elementNames {
		if s == elementNames[i] || s == elementHanzi[i] {
			return Element(i), nil
		}
	}
	return 0, fmt.Errorf("%w: element %q", ErrUnknownSymbol, s)
}

// Generates returns the element e produces (wood feeds fire).
func (e Element) Generates() Element { return (e + 1) % ElementCount }

// GeneratedBy returns the element that produces e.
func (e Element) GeneratedBy() Element { return (e + ElementCount - 1) % ElementCount }

// Controls returns the element e restrains (wood parts earth).
func (e Element) Controls() Element { return (e + 2) % ElementCount }

// ControlledBy returns the element that restrains e.
func (e Element) ControlledBy() Element { return (e + ElementCount - 2) % ElementCount }

// -----------------------------------------------------------------------------
// Heavenly Stems
// -----------------------------------------------------------------------------

// Stem is one of the ten heavenly stems, 甲 (0) through 癸 (9).
type Stem int

// StemCount is the length of the stem cycle.
const StemCount = 10

const (
	Jia Stem = iota // 甲
	Yi              // 乙
	Bing            // 丙
	Ding            // 丁
	Wu              // 戊
	Ji              // 己
	Geng            // 庚
	Xin             // 辛
	Ren             // 壬
	Gui             // 癸
)

var stemHanzi = [StemCount]string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}
var stemPinyin = [StemCount]string{"jia", "yi", "bing", "ding", "wu", "ji", "geng", "xin", "ren", "gui"}

// Valid reports whether s lies inside the ten-stem cycle.
func (s Stem) Valid() bool { return s >= Jia && s <= Gui }

// Element returns the element carried by the stem. Stems come in yang/yin
// couples per element.
func (s Stem) Element() Element { return Element(int(s) / 2) }

// Yang reports whether the stem is yang (even positions).
func (s Stem) Yang() bool { return s%2 == 0 }

// String returns the Chinese character.
func (s Stem) String() string {
	if !s.Valid() {
		return fmt.Sprintf("stem(%d)", int(s))
	}
	return stemHanzi[s]
}

// Pinyin returns the romanized name.
func (s Stem) Pinyin() string {
	if !s.Valid() {
		return ""
	}
	return stemPinyin[s]
}

// MarshalText encodes the stem by its character.
func (s Stem) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: stem %d", ErrUnknownSymbol, int(s))
	}
	return []byte(stemHanzi[s]), nil
}

// ParseStem accepts the character or the pinyin name.
func ParseStem(v string) (Stem, error) {
	for i := range stemHanzi {
		if v == stemHanzi[i] || v == stemPinyin[i] {
			return Stem(i), nil
		}
	}
	return 0, fmt.Errorf("%w: stem %q", ErrUnknownSymbol, v)
}

// Offset moves n steps along the stem cycle, wrapping in both directions.
func (s Stem) Offset(n int) Stem { return Stem(mod(int(s)+n, StemCount)) }

// -----------------------------------------------------------------------------
// Earthly Branches
// -----------------------------------------------------------------------------

// Branch is one of the twelve earthly branches, 子 (0) through 亥 (11).
type Branch int

// BranchCount is the length of the branch cycle.
const BranchCount = 12

const (
	Zi   Branch = iota // 子
	Chou               // 丑
	Yin                // 寅
	Mao                // 卯
	Chen               // 辰
	Si                 // 巳
	Horse              // 午; the pinyin "wu" is taken by the stem 戊
	Wei                // 未
	Shen               // 申
	You                // 酉
	Xu                 // 戌
	Hai                // 亥
)

var branchHanzi = [BranchCount]string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}
var branchPinyin = [BranchCount]string{"zi", "chou", "yin", "mao", "chen", "si", "wu", "wei", "shen", "you", "xu", "hai"}

var branchElement = [BranchCount]Element{
	Water, Earth, Wood, Wood, Earth, Fire,
	Fire, Earth, Metal, Metal, Earth, Water,
}

// Valid reports whether b lies inside the twelve-branch cycle.
func (b Branch) Valid() bool { return b >= Zi && b <= Hai }

// Element returns the branch's own (main) element, or an invalid Element
// when b is outside the cycle.
func (b Branch) Element() Element {
	if !b.Valid() {
		return Element(-1)
	}
	return branchElement[b]
}

// Yang reports whether the branch is yang (even positions).
func (b Branch) Yang() bool { return b%2 == 0 }

// String returns the Chinese character.
func (b Branch) String() string {
	if !b.Valid() {
		return fmt.Sprintf("branch(%d)", int(b))
	}
	return branchHanzi[b]
}

// Pinyin returns the romanized name.
func (b Branch) Pinyin() string {
	if !b.Valid() {
		return ""
	}
	return branchPinyin[b]
}

// MarshalText encodes the branch by its character.
func (b Branch) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("%w: branch %d", ErrUnknownSymbol, int(b))
	}
	return []byte(branchHanzi[b]), nil
}

// ParseBranch accepts the character or the pinyin name.
func ParseBranch(v string) (Branch, error) {
	for i := range branchHanzi {
		if v == branchHanzi[i] || v == branchPinyin[i] {
			return Branch(i), nil
		}
	}
	return 0, fmt.Errorf("%w: branch %q", ErrUnknownSymbol, v)
}

// Offset moves n steps along the branch cycle, wrapping in both directions.
func (b Branch) Offset(n int) Branch { return Branch(mod(int(b)+n, BranchCount)) }

// Clash returns the opposing branch (six-clash pairs: 子午, 丑未, ...).
func (b Branch) Clash() Branch { return b.Offset(6) }

// Combines returns the six-combination partner (子丑, 寅亥, 卯戌, 辰酉, 巳申, 午未).
// The partners are mirror images around the 子丑 axis.
func (b Branch) Combines() Branch { return Branch(mod(13-int(b), BranchCount)) }

// Season groups the branches three by three starting at 寅.
type Season int

const (
	Spring Season = iota
	Summer
	Autumn
	Winter
)

var seasonNames = [...]string{"spring", "summer", "autumn", "winter"}

func (s Season) String() string {
	if s < Spring || s > Winter {
		return fmt.Sprintf("season(%d)", int(s))
	}
	return seasonNames[s]
}

// MarshalText encodes the season by its English name.
func (s Season) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Season returns the season of a month branch (寅卯辰 spring ... 亥子丑 winter).
func (b Branch) Season() Season { return Season(mod(int(b)-int(Yin), BranchCount) / 3) }

// HourBranch returns the double-hour branch for a clock hour (0-23).
// 23:00-00:59 is 子, 01:00-02:59 is 丑, and so on.
func HourBranch(hour int) Branch { return Branch(mod((hour+1)/2, BranchCount)) }

// -----------------------------------------------------------------------------
// Sexagenary Cycle
// -----------------------------------------------------------------------------

// CycleLength is the length of the sexagenary cycle.
const CycleLength = 60

// Pair is a stem-branch combination. Only the sixty pairs whose stem and
// branch share polarity occur in the cycle; see Valid.
type Pair struct {
	Stem   Stem   `json:"stem"`
	Branch Branch `json:"branch"`
}

// PairAt returns the i-th pair of the cycle (甲子 = 0), wrapping i.
func PairAt(i int) Pair {
	i = mod(i, CycleLength)
	return Pair{Stem: Stem(i % StemCount), Branch: Branch(i % BranchCount)}
}

// Valid reports whether p is one of the sixty pairs.
func (p Pair) Valid() bool {
	return p.Stem.Valid() && p.Branch.Valid() && int(p.Stem)%2 == int(p.Branch)%2
}

// Index returns the position of p in the cycle, solving
// i ≡ stem (mod 10) and i ≡ branch (mod 12).
func (p Pair) Index() int { return mod(6*int(p.Stem)-5*int(p.Branch), CycleLength) }

// String returns the two-character name, e.g. "甲子".
func (p Pair) String() string { return p.Stem.String() + p.Branch.String() }

// ParsePair parses a two-character name such as "庚辰".
func ParsePair(v string) (Pair, error) {
	r := []rune(v)
	if len(r) != 2 {
		return Pair{}, fmt.Errorf("%w: pair %q", ErrUnknownSymbol, v)
	}
	s, err := ParseStem(string(r[0]))
	if err != nil {
		return Pair{}, err
	}
	b, err := ParseBranch(string(r[1]))
	if err != nil {
		return Pair{}, err
	}
	p := Pair{Stem: s, Branch: b}
	if !p.Valid() {
		return Pair{}, fmt.Errorf("%w: pair %q is not in the sexagenary cycle", ErrUnknownSymbol, v)
	}
	return p, nil
}

// MustPair is ParsePair for static tables and tests. It panics on error.
func MustPair(v string) Pair {
	p, err := ParsePair(v)
	if err != nil {
		panic(err)
	}
	return p
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
