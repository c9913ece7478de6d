package uci_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dlevan/tactician"
	"github.com/dlevan/tactician/engine/uci"
)

func TestDecodeLine_Info(t *testing.T) {
	tests := []struct {
		name string
		line string
		want tactician.Info
	}{
		{
			name: "full single line",
			line: "info depth 20 seldepth 28 multipv 1 score cp 35 nodes 1500000 nps 750000 time 2000 pv e2e4 e7e5 g1f3",
			want: tactician.Info{
				Depth:    20,
				SelDepth: 28,
				MultiPV:  1,
				Score:    tactician.Cp(35),
				Nodes:    1500000,
				NPS:      750000,
				TimeMS:   2000,
				PV:       []string{"e2e4", "e7e5", "g1f3"},
			},
		},
		{
			name: "mate score",
			line: "info depth 12 score mate 3 pv g2g7 a8b8 h1h8",
			want: tactician.Info{
				Depth: 12,
				Score: tactician.MateIn(3),
				PV:    []string{"g2g7", "a8b8", "h1h8"},
			},
		},
		{
			name: "negative mate",
			line: "info depth 12 score mate -2 pv a1a2",
			want: tactician.Info{
				Depth: 12,
				Score: tactician.MateIn(-2),
				PV:    []string{"a1a2"},
			},
		},
		{
			name: "unknown tokens skipped",
			line: "info depth 9 score cp -14 hashfull 420 tbhits 0 pv d7d5",
			want: tactician.Info{
				Depth: 9,
				Score: tactician.Cp(-14),
				PV:    []string{"d7d5"},
			},
		},
		{
			name: "no pv",
			line: "info depth 5 multipv 2 score cp 100",
			want: tactician.Info{Depth: 5, MultiPV: 2, Score: tactician.Cp(100)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := uci.DecodeLine(tt.line)
			if err != nil {
				t.Fatalf("DecodeLine: %v", err)
			}
			if ev.Type != tactician.EventInfo {
				t.Fatalf("type = %q, want %q", ev.Type, tactician.EventInfo)
			}
			if ev.Info == nil {
				t.Fatal("nil Info")
			}
			if diff := cmp.Diff(tt.want, *ev.Info); diff != "" {
				t.Errorf("Info mismatch (-want +got):\n%s", diff)
			}
			if ev.Raw != tt.line {
				t.Errorf("Raw = %q, want original line", ev.Raw)
			}
		})
	}
}

func TestDecodeLine_BestMove(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantMove   string
		wantPonder string
	}{
		{"plain", "bestmove e2e4", "e2e4", ""},
		{"with ponder", "bestmove e2e4 ponder e7e5", "e2e4", "e7e5"},
		{"none", "bestmove (none)", "", ""},
		{"promotion", "bestmove e7e8q", "e7e8q", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := uci.DecodeLine(tt.line)
			if err != nil {
				t.Fatalf("DecodeLine: %v", err)
			}
			if ev.Type != tactician.EventBestMove {
				t.Fatalf("type = %q, want %q", ev.Type, tactician.EventBestMove)
			}
			if ev.Move != tt.wantMove || ev.Ponder != tt.wantPonder {
				t.Errorf("got move %q ponder %q, want %q %q", ev.Move, ev.Ponder, tt.wantMove, tt.wantPonder)
			}
		})
	}
}

func TestDecodeLine_Unrecognized(t *testing.T) {
	lines := []string{
		"id name Stockfish 16",
		"option name Hash type spin default 16 min 1 max 33554432",
		"info string NNUE evaluation using nn-5af11540bbfe.nnue",
		"bestmove",
		"readyok",
	}
	for _, line := range lines {
		ev, err := uci.DecodeLine(line)
		if err != nil {
			t.Fatalf("DecodeLine(%q): %v", line, err)
		}
		if ev.Type != tactician.EventUnrecognized {
			t.Errorf("DecodeLine(%q).Type = %q, want %q", line, ev.Type, tactician.EventUnrecognized)
		}
		if ev.Raw != line {
			t.Errorf("DecodeLine(%q).Raw = %q, want input preserved", line, ev.Raw)
		}
	}
}

func TestDecodeLine_Blank(t *testing.T) {
	for _, line := range []string{"", "   ", "\t"} {
		if _, err := uci.DecodeLine(line); !errors.Is(err, uci.ErrSkipLine) {
			t.Errorf("DecodeLine(%q): got %v, want ErrSkipLine", line, err)
		}
	}
}

func TestEncodeGo(t *testing.T) {
	tests := []struct {
		name   string
		limits tactician.Limits
		want   string
	}{
		{"depth only", tactician.Limits{Depth: 18}, "go depth 18"},
		{"movetime only", tactician.Limits{MoveTime: 1500 * time.Millisecond}, "go movetime 1500"},
		{"both", tactician.Limits{Depth: 12, MoveTime: 2 * time.Second}, "go depth 12 movetime 2000"},
		{"unbounded floored", tactician.Limits{}, "go depth 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := uci.EncodeGo(tt.limits); got != tt.want {
				t.Errorf("EncodeGo = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeSetOption(t *testing.T) {
	if got := uci.EncodeSetOption("MultiPV", 3); got != "setoption name MultiPV value 3" {
		t.Errorf("EncodeSetOption = %q", got)
	}
	if got := uci.EncodeSetOption("Skill Level", 5); got != "setoption name Skill Level value 5" {
		t.Errorf("EncodeSetOption = %q", got)
	}
}

func TestEncodeSetPosition_Startpos(t *testing.T) {
	if got := uci.EncodeSetPosition(tactician.StartingPosition()); got != "position startpos" {
		t.Errorf("EncodeSetPosition(start) = %q, want %q", got, "position startpos")
	}
}

func TestPositionCommandRoundTrip(t *testing.T) {
	fens := []string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
		"8/8/8/8/8/5k2/8/4K2R w K - 0 1",
	}
	for _, fen := range fens {
		pos := tactician.MustParseFEN(fen)
		cmd := uci.EncodeSetPosition(pos)
		back, err := uci.DecodePositionCommand(cmd)
		if err != nil {
			t.Fatalf("DecodePositionCommand(%q): %v", cmd, err)
		}
		if back.String() != pos.String() {
			t.Errorf("round trip of %q: got %q", fen, back.String())
		}
	}
}

func TestDecodePositionCommand_Moves(t *testing.T) {
	pos, err := uci.DecodePositionCommand("position startpos moves e2e4 e7e5")
	if err != nil {
		t.Fatalf("DecodePositionCommand: %v", err)
	}
	want, err := tactician.ApplyUCI(tactician.StartingPosition(), "e2e4", "e7e5")
	if err != nil {
		t.Fatalf("ApplyUCI: %v", err)
	}
	if pos.String() != want.String() {
		t.Errorf("got %q, want %q", pos.String(), want.String())
	}
}

func TestDecodePositionCommand_Invalid(t *testing.T) {
	for _, line := range []string{"go depth 5", "position", "position somewhere", "position fen not-a-fen"} {
		if _, err := uci.DecodePositionCommand(line); err == nil {
			t.Errorf("DecodePositionCommand(%q): expected error", line)
		}
	}
}
