// Command replay turns a match script into a replay tape.
//
//	replay -script match.json -out tape.json
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"holdem-arcade/replay"
)

func main() {
	scriptPath := flag.String("script", "-", "match script JSON file (- for stdin)")
	outPath := flag.String("out", "-", "output file (- for stdout)")
	wire := flag.Bool("wire", false, "emit the compact wire tape (envelopes only)")
	pretty := flag.Bool("pretty", false, "indent JSON output")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "replay"})

	if err := run(*scriptPath, *outPath, *wire, *pretty); err != nil {
		var replayErr *replay.ReplayError
		if errors.As(err, &replayErr) {
			logger.Error("replay diverged", "step", replayErr.StepIndex, "reason", replayErr.Reason, "msg", replayErr.Message)
			if replayErr.Expected != nil {
				logger.Error("expected", "hand", replayErr.Expected.Hand, "phase", replayErr.Expected.Phase,
					"seat", replayErr.Expected.ActionSeat, "table_bet", replayErr.Expected.TableBet)
			}
		} else {
			logger.Error("replay failed", "err", err)
		}
		os.Exit(1)
	}
}

func run(scriptPath, outPath string, wire, pretty bool) error {
	raw, err := readInput(scriptPath)
	if err != nil {
		return err
	}
	var script replay.MatchScript
	if err := json.Unmarshal(raw, &script); err != nil {
		return fmt.Errorf("parse script: %w", err)
	}

	tape, err := replay.GenerateReplayTape(script)
	if err != nil {
		return err
	}

	var v any = tape
	if wire {
		v = replay.ToWireReplayTape(tape)
	}
	var out []byte
	if pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshal tape: %w", err)
	}
	out = append(out, '\n')

	if outPath == "-" {
		_, err = os.Stdout.Write(out)
		return err
	}
	return os.WriteFile(outPath, out, 0o644)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
