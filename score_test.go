package tactician_test

import (
	"testing"

	"github.com/dlevan/tactician"
)

func TestScoreCentipawns(t *testing.T) {
	tests := []struct {
		name  string
		score tactician.Score
		want  int
	}{
		{"zero", tactician.Score{}, 0},
		{"positive cp", tactician.Cp(125), 125},
		{"negative cp", tactician.Cp(-310), -310},
		{"mate in 1", tactician.MateIn(1), tactician.MateValue - 2},
		{"mate in 5", tactician.MateIn(5), tactician.MateValue - 10},
		{"mated in 1", tactician.MateIn(-1), -(tactician.MateValue - 2)},
		{"mated in 3", tactician.MateIn(-3), -(tactician.MateValue - 6)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.score.Centipawns(); got != tt.want {
				t.Errorf("Centipawns() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreOrdering(t *testing.T) {
	// Shorter mates beat longer mates beat any material advantage.
	if tactician.MateIn(2).Centipawns() <= tactician.MateIn(3).Centipawns() {
		t.Error("mate in 2 should outrank mate in 3")
	}
	if tactician.MateIn(20).Centipawns() <= tactician.Cp(9000).Centipawns() {
		t.Error("any mate should outrank any centipawn score")
	}
	if tactician.MateIn(-2).Centipawns() >= tactician.MateIn(-3).Centipawns() {
		t.Error("being mated sooner should rank below being mated later")
	}
	if tactician.MateIn(-20).Centipawns() >= tactician.Cp(-9000).Centipawns() {
		t.Error("being mated should rank below any centipawn score")
	}
}

func TestScoreNegate(t *testing.T) {
	if got := tactician.Cp(35).Negate(); got != tactician.Cp(-35) {
		t.Errorf("Negate(cp 35) = %+v", got)
	}
	if got := tactician.MateIn(3).Negate(); got != tactician.MateIn(-3) {
		t.Errorf("Negate(#3) = %+v", got)
	}
	if got := (tactician.Score{}).Negate(); got != (tactician.Score{}) {
		t.Errorf("Negate(0) = %+v", got)
	}
}

func TestScoreString(t *testing.T) {
	tests := []struct {
		score tactician.Score
		want  string
	}{
		{tactician.Cp(125), "+1.25"},
		{tactician.Cp(-50), "-0.50"},
		{tactician.Cp(0), "+0.00"},
		{tactician.Cp(7), "+0.07"},
		{tactician.Cp(-1234), "-12.34"},
		{tactician.MateIn(3), "#3"},
		{tactician.MateIn(-5), "#-5"},
	}
	for _, tt := range tests {
		if got := tt.score.String(); got != tt.want {
			t.Errorf("String(%+v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestIsMate(t *testing.T) {
	if tactician.Cp(500).IsMate() {
		t.Error("cp score reported as mate")
	}
	if !tactician.MateIn(1).IsMate() || !tactician.MateIn(-1).IsMate() {
		t.Error("mate marker not reported as mate")
	}
}
