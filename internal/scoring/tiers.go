// Package scoring holds the point-in-time grade and loan limit calculators and
// the tier tables they are built from.
package scoring

import "math"

// Tier pairs a breakpoint with the value awarded at it.
type Tier[V any] struct {
	Threshold float64
	Value     V
}

// FloorTable awards the first tier whose threshold the input reaches.
// Tiers are listed highest threshold first.
type FloorTable[V any] struct {
	Tiers   []Tier[V]
	Default V
}

func (t FloorTable[V]) Lookup(x float64) V {
	for _, tier := range t.Tiers {
		if x >= tier.Threshold {
			return tier.Value
		}
	}
	return t.Default
}

// CeilingTable awards the first tier whose threshold the input stays under,
// for measures where lower is better. Tiers are listed lowest threshold first.
// Inclusive makes the comparison <= instead of <.
type CeilingTable[V any] struct {
	Tiers     []Tier[V]
	Default   V
	Inclusive bool
}

func (t CeilingTable[V]) Lookup(x float64) V {
	for _, tier := range t.Tiers {
		if x < tier.Threshold || (t.Inclusive && x == tier.Threshold) {
			return tier.Value
		}
	}
	return t.Default
}

// RoundToUnit rounds v to the nearest multiple of unit, halves away from zero.
func RoundToUnit(v float64, unit int64) int64 {
	return int64(math.Round(v/float64(unit))) * unit
}

// ClampRound clamps v into [lo, hi] and rounds to unit. lo and hi are expected
// to be multiples of unit so the result stays in range.
func ClampRound(v float64, lo, hi, unit int64) int64 {
	if math.IsNaN(v) || v < float64(lo) {
		v = float64(lo)
	}
	if v > float64(hi) {
		v = float64(hi)
	}
	return RoundToUnit(v, unit)
}
