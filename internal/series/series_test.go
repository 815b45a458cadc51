package series

import (
	"testing"

	"signal_engine/internal/models"
)

func candle(close float64) models.Candle {
	return models.Candle{Open: close, High: close, Low: close, Close: close}
}

func TestAppendAndSnapshotOrder(t *testing.T) {
	s := New(5)
	for i := 1; i <= 3; i++ {
		s.Append(candle(float64(i)))
	}
	if s.Len() != 3 {
		t.Fatalf("expected len 3, got %d", s.Len())
	}
	snap := s.Snapshot()
	for i, c := range snap {
		if c.Close != float64(i+1) {
			t.Fatalf("snapshot out of order at %d: %.1f", i, c.Close)
		}
	}
}

func TestEvictsOldestAtCapacity(t *testing.T) {
	s := New(3)
	for i := 1; i <= 5; i++ {
		s.Append(candle(float64(i)))
	}
	if s.Len() != 3 {
		t.Fatalf("expected len capped at 3, got %d", s.Len())
	}
	snap := s.Snapshot()
	want := []float64{3, 4, 5}
	for i, w := range want {
		if snap[i].Close != w {
			t.Fatalf("expected %.0f at %d, got %.1f", w, i, snap[i].Close)
		}
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New(4)
	s.Append(candle(1))
	snap := s.Snapshot()
	snap[0].Close = 42
	again := s.Snapshot()
	if again[0].Close != 1 {
		t.Fatalf("snapshot mutation leaked into buffer: %.1f", again[0].Close)
	}
}

func TestLast(t *testing.T) {
	s := New(2)
	if _, ok := s.Last(); ok {
		t.Fatalf("expected no last candle on empty series")
	}
	s.Append(candle(1))
	s.Append(candle(2))
	s.Append(candle(3))
	last, ok := s.Last()
	if !ok || last.Close != 3 {
		t.Fatalf("expected last close 3, got %.1f ok=%v", last.Close, ok)
	}
}

func TestZeroCapacityFallsBackToDefault(t *testing.T) {
	s := New(0)
	if s.Cap() != DefaultCapacity {
		t.Fatalf("expected default capacity %d, got %d", DefaultCapacity, s.Cap())
	}
}
