package plc

import (
	"math"
	"testing"

	"github.com/gowideband/g722swb/internal/adpcm"
)

func fillHistory(s *State) {
	for i := range s.Xq {
		t := float64(i)
		s.Xq[i] = int16(6000 * math.Sin(t*0.15))
	}
}

func TestConcealFrameProducesFullFrame(t *testing.T) {
	s := NewState()
	fillHistory(s)
	var low, high adpcm.SubBandState
	low.Reset()
	high.Reset()
	hpLow := &adpcm.HighpassState{}
	hpHigh := &adpcm.HighpassState{}

	l, h := s.ConcealFrame(&low, &high, hpLow, hpHigh)
	if len(l)+len(h) != FrameSize {
		t.Fatalf("expected %d total concealed samples, got %d+%d", FrameSize, len(l), len(h))
	}
	if !s.PrevPloss {
		t.Fatalf("expected PrevPloss set after concealment")
	}
}

func TestConsecutiveErasuresDoNotResnapshot(t *testing.T) {
	s := NewState()
	fillHistory(s)
	var low, high adpcm.SubBandState
	low.Reset()
	high.Reset()
	hpLow := &adpcm.HighpassState{}
	hpHigh := &adpcm.HighpassState{}

	s.ConcealFrame(&low, &high, hpLow, hpHigh)
	firstSnapshot := s.SavedLow
	s.ConcealFrame(&low, &high, hpLow, hpHigh)
	if s.SavedLow != firstSnapshot {
		t.Fatalf("snapshot should only be taken on the first erasure of a run")
	}
	if s.CfeCount != 2 {
		t.Fatalf("expected CfeCount to advance across consecutive erasures, got %d", s.CfeCount)
	}
}

func TestGainAttenuationWindowMutesAfterGattEnd(t *testing.T) {
	s := NewState()
	fillHistory(s)
	var low, high adpcm.SubBandState
	low.Reset()
	high.Reset()
	hpLow := &adpcm.HighpassState{}
	hpHigh := &adpcm.HighpassState{}

	for i := 0; i < GattEnd+2; i++ {
		s.ConcealFrame(&low, &high, hpLow, hpHigh)
	}
	l, h := s.ConcealFrame(&low, &high, hpLow, hpHigh)
	for _, v := range append(l, h...) {
		if v != 0 {
			t.Fatalf("expected silence past GattEnd frames of loss, got sample %d", v)
		}
	}
}

func TestResyncClearsPrevPloss(t *testing.T) {
	s := NewState()
	fillHistory(s)
	var low, high adpcm.SubBandState
	low.Reset()
	high.Reset()
	hpLow := &adpcm.HighpassState{}
	hpHigh := &adpcm.HighpassState{}
	s.ConcealFrame(&low, &high, hpLow, hpHigh)

	good := make([]int16, FrameSize)
	for i := range good {
		good[i] = int16(4000 * math.Sin(float64(i)*0.15))
	}
	out := s.Resync(good, &low, &high, hpLow, hpHigh, nil)
	if len(out) != len(good) {
		t.Fatalf("resync changed frame length: got %d want %d", len(out), len(good))
	}
	if s.PrevPloss {
		t.Fatalf("expected PrevPloss cleared after Resync")
	}
}

func TestResyncNoOpWithoutPriorLoss(t *testing.T) {
	s := NewState()
	good := make([]int16, FrameSize)
	for i := range good {
		good[i] = int16(i)
	}
	out := s.Resync(good, nil, nil, nil, nil, nil)
	for i := range good {
		if out[i] != good[i] {
			t.Fatalf("expected passthrough when no loss preceded, mismatch at %d", i)
		}
	}
}

func TestNgfaeSaturates(t *testing.T) {
	s := NewState()
	fillHistory(s)
	var low, high adpcm.SubBandState
	low.Reset()
	high.Reset()
	hpLow := &adpcm.HighpassState{}
	hpHigh := &adpcm.HighpassState{}
	good := make([]int16, FrameSize)

	for i := 0; i < NgfaeSaturate+5; i++ {
		s.ConcealFrame(&low, &high, hpLow, hpHigh)
		s.Resync(good, &low, &high, hpLow, hpHigh, nil)
	}
	if s.Ngfae > NgfaeSaturate {
		t.Fatalf("Ngfae exceeded saturation cap: %d", s.Ngfae)
	}
}
