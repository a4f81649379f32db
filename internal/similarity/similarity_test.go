package similarity

import (
	"math"
	"testing"
)

func TestScoreReflexive(t *testing.T) {
	for _, value := range []string{"CX3", "VOLVO XC90", "BMW X4", "F-150", "Citroën C4", "a"} {
		if got := Score(value, value); got != 1 {
			t.Errorf("Score(%q, %q) = %v, want 1", value, value, got)
		}
	}
}

func TestScoreSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"VOLV0 XC90", "VOLVO XC90"},
		{"CX3", "CX5"},
		{"328", "228"},
		{"TOYOTA COROLA", "TOYOTA COROLLA"},
		{"MERCEDES", "MERCEDES-BENZ"},
	}
	for _, pair := range pairs {
		ab := Score(pair[0], pair[1])
		ba := Score(pair[1], pair[0])
		if ab != ba {
			t.Errorf("Score not symmetric for %v: %v vs %v", pair, ab, ba)
		}
		if ab < 0 || ab > 1 {
			t.Errorf("Score(%v) = %v out of range", pair, ab)
		}
	}
}

func TestScoreNormalization(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"case insensitive", "volvo", "VOLVO", 1},
		{"accent stripped", "CITROËN", "CITROEN", 1},
		{"whitespace collapsed", " BMW   X4 ", "BMW X4", 1},
		{"separator boost", "CX3", "CX-3", 0.99},
		{"separator boost with case", "cx-3", "CX3", 0.99},
		{"empty against value", "", "CX3", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestScoreTypoIsSimilar(t *testing.T) {
	got := Score("VOLV0", "VOLVO")
	if got < 0.85 || got >= 0.99 {
		t.Fatalf("Score(VOLV0, VOLVO) = %v, want in [0.85, 0.99)", got)
	}
	if unrelated := Score("VOLVO", "KIA"); unrelated >= got {
		t.Fatalf("expected unrelated makes to score lower: %v >= %v", unrelated, got)
	}
}

func TestScoreMonotonicWithEdits(t *testing.T) {
	base := "COROLLA"
	one := Score(base, "COROLLX")
	two := Score(base, "COROLXX")
	three := Score(base, "COROXXX")
	if !(one > two && two > three) {
		t.Fatalf("expected scores to fall as edits grow: %v, %v, %v", one, two, three)
	}
}

func TestNewNormalizesWeights(t *testing.T) {
	s := New(Options{EditWeight: 2, TranspositionWeight: 3, Separators: []string{}})
	if math.Abs(s.editWeight-0.4) > 1e-9 || math.Abs(s.transWeight-0.6) > 1e-9 {
		t.Fatalf("weights not normalized: %v %v", s.editWeight, s.transWeight)
	}
	if s.BoostScore() != 0.99 {
		t.Fatalf("expected default boost, got %v", s.BoostScore())
	}
	// An explicit empty separator list disables the boost.
	if got := s.Score("CX3", "CX-3"); got >= 0.99 {
		t.Fatalf("expected no boost without separators, got %v", got)
	}
}

func TestNewZeroWeightsFallBack(t *testing.T) {
	s := New(Options{})
	if s.editWeight != 0.4 || s.transWeight != 0.6 {
		t.Fatalf("unexpected fallback weights: %v %v", s.editWeight, s.transWeight)
	}
	if len(s.separators) != 1 || s.separators[0] != "-" {
		t.Fatalf("unexpected fallback separators: %v", s.separators)
	}
}

func TestExplainReportsComponents(t *testing.T) {
	s := New(DefaultOptions())
	b := s.Explain("CX-3", "cx3")
	if !b.Boosted || b.Score != 0.99 {
		t.Fatalf("expected boosted breakdown, got %+v", b)
	}
	if b.Left != "cx-3" || b.Right != "cx3" {
		t.Fatalf("expected normalized, ordered inputs, got %q %q", b.Left, b.Right)
	}
	if b.Edit <= 0 || b.Edit >= 1 || b.JaroWinkler <= 0 || b.JaroWinkler >= 1 {
		t.Fatalf("expected raw components to be computed, got %+v", b)
	}

	plain := s.Explain("BMW X3", "BMW X4")
	if plain.Boosted {
		t.Fatal("did not expect a boost for X3/X4")
	}
	want := 0.4*plain.Edit + 0.6*plain.JaroWinkler
	if math.Abs(plain.Score-want) > 1e-12 {
		t.Fatalf("score %v does not match blend %v", plain.Score, want)
	}
}
