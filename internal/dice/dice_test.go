package dice

import (
	"errors"
	"testing"
)

func TestRNGDeterminism(t *testing.T) {
	a := NewRNG(42)
	b := NewRNG(42)
	for i := 0; i < 100; i++ {
		got, want := a.IntN(20), b.IntN(20)
		if got != want {
			t.Fatalf("draw %d diverged: %d vs %d", i, got, want)
		}
	}
}

func TestRNGRestoreResumesStream(t *testing.T) {
	a := NewRNG(7)
	for i := 0; i < 10; i++ {
		a.IntN(100)
	}
	checkpoint := a.State()

	rest := make([]int, 5)
	for i := range rest {
		rest[i] = a.IntN(100)
	}

	b := Restore(checkpoint)
	for i := range rest {
		if got := b.IntN(100); got != rest[i] {
			t.Fatalf("restored draw %d: got %d, want %d", i, got, rest[i])
		}
	}
}

func TestRNGIntBetweenBounds(t *testing.T) {
	rng := NewRNG(1)
	for i := 0; i < 1000; i++ {
		v := rng.IntBetween(3, 9)
		if v < 3 || v > 9 {
			t.Fatalf("value %d outside [3,9]", v)
		}
	}
}

func TestParseNotation(t *testing.T) {
	tests := []struct {
		notation string
		want     Spec
		wantErr  bool
	}{
		{notation: "2d6", want: Spec{Count: 2, Sides: 6}},
		{notation: "d20", want: Spec{Count: 1, Sides: 20}},
		{notation: "1d4+1", want: Spec{Count: 1, Sides: 4, Modifier: 1}},
		{notation: "3d8-2", want: Spec{Count: 3, Sides: 8, Modifier: -2}},
		{notation: " 2D10 ", want: Spec{Count: 2, Sides: 10}},
		{notation: "5", want: Spec{Modifier: 5}},
		{notation: "", wantErr: true},
		{notation: "2d", wantErr: true},
		{notation: "0d6", wantErr: true},
		{notation: "2d0", wantErr: true},
		{notation: "xdy", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.notation, func(t *testing.T) {
			got, err := ParseNotation(tc.notation)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidNotation) {
					t.Fatalf("expected ErrInvalidNotation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse %q: %v", tc.notation, err)
			}
			if got != tc.want {
				t.Fatalf("parse %q: got %+v, want %+v", tc.notation, got, tc.want)
			}
		})
	}
}

func TestRollBounds(t *testing.T) {
	rng := NewRNG(99)
	for i := 0; i < 500; i++ {
		total, err := Roll(rng, "2d6+1")
		if err != nil {
			t.Fatalf("roll: %v", err)
		}
		if total < 3 || total > 13 {
			t.Fatalf("2d6+1 rolled %d outside [3,13]", total)
		}
	}
}

func TestConstantRollConsumesNoRandomness(t *testing.T) {
	rng := NewRNG(5)
	before := rng.State()
	total, err := Roll(rng, "7")
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if total != 7 {
		t.Fatalf("constant roll: got %d, want 7", total)
	}
	if rng.State() != before {
		t.Fatalf("constant roll advanced the generator")
	}
}
