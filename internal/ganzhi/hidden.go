package ganzhi

import "fmt"

// Role ranks a hidden stem inside its branch.
type Role int

const (
	Primary   Role = iota // 本气
	Secondary             // 中气
	Residual              // 余气
)

var roleNames = [...]string{"primary", "secondary", "residual"}

func (r Role) String() string {
	if r < Primary || r > Residual {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleNames[r]
}

// MarshalText encodes the role by its English name.
func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// HiddenStem is a latent stem carried by a branch.
type HiddenStem struct {
	Stem    Stem    `json:"stem"`
	Role    Role    `json:"role"`
	Weight  float64 `json:"weight"`
	Element Element `json:"element"`
}

func hs(s Stem, r Role, w float64) HiddenStem {
	return HiddenStem{Stem: s, Role: r, Weight: w, Element: s.Element()}
}

// hiddenStems is the canggan table. 子 卯 午 酉 are pure and hold a single
// stem; 亥 holds two; the remaining branches hold three. Weights decrease by
// role and never sum above 1.
var hiddenStems = [BranchCount][]HiddenStem{
	Zi:    {hs(Gui, Primary, 1.0)},
	Chou:  {hs(Ji, Primary, 0.6), hs(Gui, Secondary, 0.3), hs(Xin, Residual, 0.1)},
	Yin:   {hs(Jia, Primary, 0.6), hs(Bing, Secondary, 0.3), hs(Wu, Residual, 0.1)},
	Mao:   {hs(Yi, Primary, 1.0)},
	Chen:  {hs(Wu, Primary, 0.6), hs(Yi, Secondary, 0.3), hs(Gui, Residual, 0.1)},
	Si:    {hs(Bing, Primary, 0.6), hs(Geng, Secondary, 0.3), hs(Wu, Residual, 0.1)},
	Horse: {hs(Ding, Primary, 1.0)},
	Wei:   {hs(Ji, Primary, 0.6), hs(Ding, Secondary, 0.3), hs(Yi, Residual, 0.1)},
	Shen:  {hs(Geng, Primary, 0.6), hs(Ren, Secondary, 0.3), hs(Wu, Residual, 0.1)},
	You:   {hs(Xin, Primary, 1.0)},
	Xu:    {hs(Wu, Primary, 0.6), hs(Xin, Secondary, 0.3), hs(Ding, Residual, 0.1)},
	Hai:   {hs(Ren, Primary, 0.7), hs(Jia, Secondary, 0.3)},
}

// HiddenStems returns the hidden stems of b, primary first. The returned
// slice is a copy.
func HiddenStems(b Branch) ([]HiddenStem, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("%w: branch %d has no hidden-stem entry", ErrUnknownSymbol, int(b))
	}
	out := make([]HiddenStem, len(hiddenStems[b]))
	copy(out, hiddenStems[b])
	return out, nil
}

// HasRoot reports whether the element of s appears among the hidden stems of
// any of the given branches. Invalid branches are ignored.
func HasRoot(s Stem, branches ...Branch) bool {
	el := s.Element()
	for _, b := range branches {
		if !b.Valid() {
			continue
		}
		for _, h := range hiddenStems[b] {
			if h.Element == el {
				return true
			}
		}
	}
	return false
}
