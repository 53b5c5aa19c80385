package avq

import (
	"math/rand"
	"testing"
)

// TestRE8PPVMembership is testable property 4 from spec §8: for sampled x,
// RE8PPV(x) is a genuine RE8 point.
func TestRE8PPVMembership(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		var x [Dim]int32
		for i := range x {
			x[i] = toFixed((r.Float64() - 0.5) * 8)
		}
		y := RE8PPV(x)
		if !InRE8(y) {
			t.Fatalf("trial %d: RE8PPV returned non-lattice point %v for x=%v", trial, y, x)
		}
	}
}

func TestNearest2D8IsLocallyOptimal(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for trial := 0; trial < 200; trial++ {
		var x [Dim]int32
		for i := range x {
			x[i] = toFixed((r.Float64() - 0.5) * 6)
		}
		y, e := nearest2D8(x)
		// Moving one coordinate by +2 and another by -2 keeps the sum a
		// multiple of 4; no such neighbour should have lower squared
		// error than the chosen point.
		for i := 0; i < Dim; i++ {
			for j := 0; j < Dim; j++ {
				if i == j {
					continue
				}
				cand := y
				cand[i] += 2
				cand[j] -= 2
				if !InRE8(Point(cand)) {
					continue
				}
				se := SquaredErrorQ(x, Point(cand))
				if se < e {
					t.Fatalf("trial %d: found better 2D8 point %v (err %d) than chosen %v (err %d)", trial, cand, se, y, e)
				}
			}
		}
	}
}

func TestZeroVectorIsOrigin(t *testing.T) {
	var x [Dim]int32
	y := RE8PPV(x)
	for _, c := range y {
		if c != 0 {
			t.Fatalf("RE8PPV(0) = %v, want all zero", y)
		}
	}
}

func TestRoundToEvenQPicksNearestEvenInteger(t *testing.T) {
	cases := []struct {
		v    int32
		want int32
	}{
		{toFixed(0), 0},
		{toFixed(0.9), 0},
		{toFixed(1.1), 2}, // nearer to 2 than 0
		{toFixed(1.9), 2},
		{toFixed(-1.9), -2},
		{toFixed(3.0), 2}, // tie: 2 and 4 are equidistant from 3; the lower one is picked
	}
	for _, c := range cases {
		got := roundToEvenQ(c.v)
		if got != c.want {
			t.Fatalf("roundToEvenQ(%d) = %d, want %d", c.v, got, c.want)
		}
	}
}
