package ganzhi

import "fmt"

// Nayin is the "sound" label shared by two consecutive pairs of the cycle.
type Nayin struct {
	Name    string  `json:"name"`
	Element Element `json:"element"`
}

// nayinTable holds the thirty sounds, indexed by pair index / 2.
var nayinTable = [CycleLength / 2]Nayin{
	{"海中金", Metal}, {"炉中火", Fire}, {"大林木", Wood}, {"路旁土", Earth}, {"剑锋金", Metal},
	{"山头火", Fire}, {"涧下水", Water}, {"城头土", Earth}, {"白蜡金", Metal}, {"杨柳木", Wood},
	{"泉中水", Water}, {"屋上土", Earth}, {"霹雳火", Fire}, {"松柏木", Wood}, {"长流水", Water},
	{"沙中金", Metal}, {"山下火", Fire}, {"平地木", Wood}, {"壁上土", Earth}, {"金箔金", Metal},
	{"覆灯火", Fire}, {"天河水", Water}, {"大驿土", Earth}, {"钗钏金", Metal}, {"桑柘木", Wood},
	{"大溪水", Water}, {"沙中土", Earth}, {"天上火", Fire}, {"石榴木", Wood}, {"大海水", Water},
}

// NayinOf returns the sound of p.
func NayinOf(p Pair) (Nayin, error) {
	if !p.Valid() {
		return Nayin{}, fmt.Errorf("%w: pair %s has no nayin", ErrUnknownSymbol, p)
	}
	return nayinTable[p.Index()/2], nil
}
