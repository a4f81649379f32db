package verdict

import (
	"errors"
	"strings"
	"testing"

	"saaqreg/internal/pairs"
)

func TestParseLabel(t *testing.T) {
	tests := []struct {
		in   string
		want Label
	}{
		{"spelling_variant", LabelSpellingVariant},
		{"Spelling Variant", LabelSpellingVariant},
		{"truncation-variant", LabelTruncationVariant},
		{"NEW_MODEL", LabelNewModel},
		{"different model", LabelNewModel},
		{"uncertain", LabelUncertain},
		{"", LabelUncertain},
		{"banana", LabelUncertain},
	}
	for _, tt := range tests {
		if got := ParseLabel(tt.in); got != tt.want {
			t.Errorf("ParseLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLabelStance(t *testing.T) {
	if LabelSpellingVariant.Stance() != Support || LabelTruncationVariant.Stance() != Support {
		t.Fatal("variants should support regularization")
	}
	if LabelNewModel.Stance() != Prevent {
		t.Fatal("new model should prevent regularization")
	}
	if LabelUncertain.Stance() != Neutral {
		t.Fatal("uncertain should be neutral")
	}
}

func TestNewClampsConfidence(t *testing.T) {
	if v := New(SourceTemporal, Support, 1.7, ""); v.Confidence != 1 {
		t.Fatalf("confidence = %v, want 1", v.Confidence)
	}
	if v := New(SourceTemporal, Support, -0.2, ""); v.Confidence != 0 {
		t.Fatalf("confidence = %v, want 0", v.Confidence)
	}
}

func TestDegrade(t *testing.T) {
	v := Degrade(SourceAuthority, errors.New("database is locked"))
	if v.Stance != Neutral || v.Confidence != 0 || !v.Degraded {
		t.Fatalf("unexpected degraded verdict %+v", v)
	}
	if !strings.Contains(v.Rationale, "database is locked") {
		t.Fatalf("expected cause in rationale, got %q", v.Rationale)
	}
}

func TestVerdictIs(t *testing.T) {
	v := New(SourceAuthority, Prevent, 0.95, "disjoint categories")
	if !v.Is(SourceAuthority, Prevent, 0.9) {
		t.Fatal("expected match at threshold below confidence")
	}
	if v.Is(SourceAuthority, Prevent, 0.96) {
		t.Fatal("expected no match above confidence")
	}
	if v.Is(SourceTemporal, Prevent, 0.5) {
		t.Fatal("expected source to matter")
	}
}

func TestDecisionInvariants(t *testing.T) {
	pair := pairs.MustNew("BMW", "X4", nil, pairs.YearRange{}, pairs.NewYearRange(2023, 2024))
	d := Preserve(pair, nil, PathNoCandidate, "no reference candidate above floor")
	if err := d.Valid(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d.ShouldRegularize = true
	if err := d.Valid(); err == nil {
		t.Fatal("expected regularizing without candidate to be invalid")
	}

	d.Verdicts = []Verdict{Degrade(SourceAuthority, errors.New("x")), New(SourceTemporal, Support, 0.85, "")}
	if got := d.Degraded(); got != 1 {
		t.Fatalf("Degraded = %d, want 1", got)
	}
	if d.Key() != pairs.NewKey("bmw", "x4") {
		t.Fatalf("unexpected key %v", d.Key())
	}
}
