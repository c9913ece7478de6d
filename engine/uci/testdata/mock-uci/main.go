//go:build ignore

// Command mock-uci simulates a UCI chess engine for integration tests.
// It answers the standard handshake, emits a canned MultiPV analysis on
// "go", and supports failure-injection knobs via environment variables:
//
//	MOCK_UCI_CRASH_FILE   marker file path; if the file does not exist
//	                      yet, the first "go" creates it and exits
//	                      mid-search (subsequent runs behave normally,
//	                      so crash recovery can be exercised)
//	MOCK_UCI_STALL        "1": never finish a search until "stop"
//	MOCK_UCI_IGNORE_STOP  "1": swallow "stop" commands entirely
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var script = [][]string{
	{
		"info depth 6 seldepth 8 multipv 1 score cp 31 nodes 5000 nps 100000 time 5 pv e2e4 e7e5 g1f3",
		"info depth 6 seldepth 8 multipv 2 score cp 22 nodes 5000 nps 100000 time 5 pv d2d4 d7d5",
		"info depth 6 seldepth 8 multipv 3 score cp 11 nodes 5000 nps 100000 time 5 pv g1f3 g8f6",
	},
	{
		"info depth 10 seldepth 14 multipv 1 score cp 35 nodes 90000 nps 400000 time 22 pv e2e4 e7e5 g1f3 b8c6",
		"info depth 10 seldepth 14 multipv 2 score cp 25 nodes 90000 nps 400000 time 22 pv d2d4 d7d5 c2c4",
		"info depth 10 seldepth 14 multipv 3 score cp 14 nodes 90000 nps 400000 time 22 pv g1f3 g8f6 c2c4",
	},
}

func main() {
	crashFile := os.Getenv("MOCK_UCI_CRASH_FILE")
	stall := os.Getenv("MOCK_UCI_STALL") == "1"
	ignoreStop := os.Getenv("MOCK_UCI_IGNORE_STOP") == "1"

	multiPV := 1
	searching := false

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "uci":
			fmt.Println("id name mock-uci")
			fmt.Println("id author tactician tests")
			fmt.Println("option name Hash type spin default 16 min 1 max 4096")
			fmt.Println("option name MultiPV type spin default 1 min 1 max 256")
			fmt.Println("uciok")
		case "isready":
			fmt.Println("readyok")
		case "setoption":
			// setoption name MultiPV value N
			if len(fields) >= 5 && fields[2] == "MultiPV" {
				if n, err := strconv.Atoi(fields[4]); err == nil && n > 0 {
					multiPV = n
				}
			}
		case "position":
			// State is re-sent in full before every search; nothing to track.
		case "go":
			if crashFile != "" {
				if _, err := os.Stat(crashFile); err != nil {
					_ = os.WriteFile(crashFile, []byte("crashed\n"), 0o644)
					fmt.Println(script[0][0])
					fmt.Fprintln(os.Stderr, "mock-uci: simulated crash")
					os.Exit(3)
				}
			}
			for _, wave := range script {
				for i, line := range wave {
					if i < multiPV {
						fmt.Println(line)
					}
				}
			}
			if stall {
				searching = true
				continue
			}
			fmt.Println("bestmove e2e4 ponder e7e5")
		case "stop":
			if searching && !ignoreStop {
				fmt.Println("bestmove e2e4")
				searching = false
			}
		case "quit":
			return
		}
	}
}
