package ganzhi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-bazi/internal/ganzhi"
)

func TestElementCycles(t *testing.T) {
	tests := []struct {
		el                                ganzhi.Element
		generates, generatedBy            ganzhi.Element
		controls, controlledBy            ganzhi.Element
	}{
		{ganzhi.Wood, ganzhi.Fire, ganzhi.Water, ganzhi.Earth, ganzhi.Metal},
		{ganzhi.Fire, ganzhi.Earth, ganzhi.Wood, ganzhi.Metal, ganzhi.Water},
		{ganzhi.Earth, ganzhi.Metal, ganzhi.Fire, ganzhi.Water, ganzhi.Wood},
		{ganzhi.Metal, ganzhi.Water, ganzhi.Earth, ganzhi.Wood, ganzhi.Fire},
		{ganzhi.Water, ganzhi.Wood, ganzhi.Metal, ganzhi.Fire, ganzhi.Earth},
	}

	for _, tt := range tests {
		t.Run(tt.el.String(), func(t *testing.T) {
			assert.Equal(t, tt.generates, tt.el.Generates())
			assert.Equal(t, tt.generatedBy, tt.el.GeneratedBy())
			assert.Equal(t, tt.controls, tt.el.Controls())
			assert.Equal(t, tt.controlledBy, tt.el.ControlledBy())
		})
	}
}

func TestPairIndex_RoundTrip(t *testing.T) {
	for i := 0; i < ganzhi.CycleLength; i++ {
		p := ganzhi.PairAt(i)
		require.True(t, p.Valid(), "pair %d must be valid", i)
		assert.Equal(t, i, p.Index())
	}

	assert.Equal(t, "甲子", ganzhi.PairAt(0).String())
	assert.Equal(t, "癸亥", ganzhi.PairAt(59).String())
	assert.Equal(t, "甲子", ganzhi.PairAt(60).String(), "index wraps forward")
	assert.Equal(t, "癸亥", ganzhi.PairAt(-1).String(), "index wraps backward")
}

func TestParsePair(t *testing.T) {
	p, err := ganzhi.ParsePair("庚辰")
	require.NoError(t, err)
	assert.Equal(t, ganzhi.Geng, p.Stem)
	assert.Equal(t, ganzhi.Chen, p.Branch)
	assert.Equal(t, 16, p.Index())

	_, err = ganzhi.ParsePair("甲丑")
	assert.ErrorIs(t, err, ganzhi.ErrUnknownSymbol, "mixed polarity is not in the cycle")

	_, err = ganzhi.ParsePair("甲")
	assert.ErrorIs(t, err, ganzhi.ErrUnknownSymbol)
}

func TestBranchRelations(t *testing.T) {
	assert.Equal(t, ganzhi.Horse, ganzhi.Zi.Clash())
	assert.Equal(t, ganzhi.Shen, ganzhi.Yin.Clash())
	assert.Equal(t, ganzhi.Si, ganzhi.Hai.Clash())

	combos := map[ganzhi.Branch]ganzhi.Branch{
		ganzhi.Zi:    ganzhi.Chou,
		ganzhi.Yin:   ganzhi.Hai,
		ganzhi.Mao:   ganzhi.Xu,
		ganzhi.Chen:  ganzhi.You,
		ganzhi.Si:    ganzhi.Shen,
		ganzhi.Horse: ganzhi.Wei,
	}
	for a, b := range combos {
		assert.Equal(t, b, a.Combines(), "%s should combine with %s", a, b)
		assert.Equal(t, a, b.Combines(), "combination is symmetric")
	}
}

func TestBranchSeason(t *testing.T) {
	assert.Equal(t, ganzhi.Spring, ganzhi.Yin.Season())
	assert.Equal(t, ganzhi.Spring, ganzhi.Chen.Season())
	assert.Equal(t, ganzhi.Summer, ganzhi.Si.Season())
	assert.Equal(t, ganzhi.Autumn, ganzhi.Xu.Season())
	assert.Equal(t, ganzhi.Winter, ganzhi.Zi.Season())
	assert.Equal(t, ganzhi.Winter, ganzhi.Chou.Season())
}

func TestHourBranch_ChildSpansMidnight(t *testing.T) {
	assert.Equal(t, ganzhi.Zi, ganzhi.HourBranch(23))
	assert.Equal(t, ganzhi.Zi, ganzhi.HourBranch(0))
	assert.Equal(t, ganzhi.Chou, ganzhi.HourBranch(1))
	assert.Equal(t, ganzhi.Wei, ganzhi.HourBranch(14))
	assert.Equal(t, ganzhi.Hai, ganzhi.HourBranch(22))
}

func TestHiddenStems_Table(t *testing.T) {
	for b := ganzhi.Zi; b <= ganzhi.Hai; b++ {
		t.Run(b.String(), func(t *testing.T) {
			stems, err := ganzhi.HiddenStems(b)
			require.NoError(t, err)
			require.NotEmpty(t, stems)
			assert.LessOrEqual(t, len(stems), 3)

			sum := 0.0
			for i, h := range stems {
				assert.Equal(t, ganzhi.Role(i), h.Role, "roles are ordered")
				assert.Equal(t, h.Stem.Element(), h.Element)
				assert.Greater(t, h.Weight, 0.0)
				if i > 0 {
					assert.Less(t, h.Weight, stems[i-1].Weight, "weights decrease by role")
				}
				sum += h.Weight
			}
			assert.LessOrEqual(t, sum, 1.0+1e-9)
		})
	}

	for _, pure := range []ganzhi.Branch{ganzhi.Zi, ganzhi.Mao, ganzhi.Horse, ganzhi.You} {
		stems, err := ganzhi.HiddenStems(pure)
		require.NoError(t, err)
		assert.Len(t, stems, 1, "%s is a pure branch", pure)
	}

	_, err := ganzhi.HiddenStems(ganzhi.Branch(12))
	assert.ErrorIs(t, err, ganzhi.ErrUnknownSymbol)
}

func TestHasRoot(t *testing.T) {
	assert.True(t, ganzhi.HasRoot(ganzhi.Jia, ganzhi.Hai), "亥 hides 甲")
	assert.True(t, ganzhi.HasRoot(ganzhi.Yi, ganzhi.Yin), "roots match by element")
	assert.False(t, ganzhi.HasRoot(ganzhi.Geng, ganzhi.Zi, ganzhi.Mao))
}

func TestNayin(t *testing.T) {
	tests := map[string]string{
		"甲子": "海中金",
		"乙丑": "海中金",
		"庚午": "路旁土",
		"庚辰": "白蜡金",
		"癸亥": "大海水",
	}
	for pair, want := range tests {
		n, err := ganzhi.NayinOf(ganzhi.MustPair(pair))
		require.NoError(t, err)
		assert.Equal(t, want, n.Name, pair)
	}

	_, err := ganzhi.NayinOf(ganzhi.Pair{Stem: ganzhi.Jia, Branch: ganzhi.Chou})
	assert.ErrorIs(t, err, ganzhi.ErrUnknownSymbol)
}

func TestElementText(t *testing.T) {
	b, err := ganzhi.Metal.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "metal", string(b))

	var e ganzhi.Element
	require.NoError(t, e.UnmarshalText([]byte("水")))
	assert.Equal(t, ganzhi.Water, e)
	assert.Error(t, e.UnmarshalText([]byte("aether")))
}
