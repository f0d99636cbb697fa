// Command holdem plays a match against automated opponents in the terminal.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pterm/pterm"

	"holdem-arcade/holdem"
	"holdem-arcade/holdem/npc"
)

func main() {
	seed := flag.Int64("seed", 0, "match seed (0 = random)")
	pace := flag.Float64("pace", 1, "scale for opponent think pauses (0 disables them)")
	personas := flag.String("personas", "", "optional personas JSON file")
	verbose := flag.Bool("v", false, "debug logging to stderr")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "holdem", ReportTimestamp: true})
	logger.SetLevel(log.WarnLevel)
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	registry, err := npc.DefaultRegistry()
	if err != nil {
		logger.Fatal("load personas", "err", err)
	}
	if *personas != "" {
		if err := registry.LoadFromFile(*personas); err != nil {
			logger.Fatal("load personas", "file", *personas, "err", err)
		}
	}
	manager := npc.NewManager(registry, logger, *seed)

	pterm.DefaultHeader.WithFullWidth().Println("Texas Hold'em")
	for {
		if err := playMatch(manager, *seed, *pace, logger); err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}
		again, _ := pterm.DefaultInteractiveConfirm.WithDefaultText("Play again?").WithDefaultValue(true).Show()
		if !again {
			return
		}
	}
}

func playMatch(manager *npc.Manager, seed int64, pace float64, logger *log.Logger) error {
	tier, err := selectTier()
	if err != nil {
		return err
	}
	opponents, err := selectOpponents()
	if err != nil {
		return err
	}
	lineup, err := manager.Lineup(tier, opponents)
	if err != nil {
		return err
	}

	match, err := holdem.NewMatch(holdem.Config{
		Opponents:     opponents,
		Difficulty:    tier,
		OpponentNames: lineup.Names(),
		Seed:          seed,
	})
	if err != nil {
		return err
	}
	if err := match.Deal(); err != nil {
		return err
	}

	for match.Outcome() == holdem.OutcomeNone {
		snap := match.Snapshot()
		switch {
		case !match.HandLive():
			render(snap)
			renderShowdown(snap.Showdown)
			pterm.DefaultInteractiveContinue.WithDefaultText("Next hand").WithOptions([]string{"deal"}).Show()
			if err := match.NextHand(); err != nil {
				return err
			}
		case snap.HumanToAct:
			render(snap)
			if err := promptIntent(match, snap); err != nil {
				return err
			}
		default:
			seat := match.NextActor()
			if d := time.Duration(float64(lineup.ThinkDelay(seat)) * pace); d > 0 {
				spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("%s is thinking ...", pterm.LightCyan(snap.Players[seat].Name)))
				time.Sleep(d)
				spinner.Stop()
			}
			if err := match.Step(); err != nil {
				return err
			}
			logger.Debug("step", "seat", seat, "turn", match.Snapshot().Turn)
		}
	}

	snap := match.Snapshot()
	render(snap)
	renderShowdown(snap.Showdown)
	if snap.Outcome == holdem.OutcomeWon {
		pterm.Success.Println("All AIs ran out of chips! You win!")
	} else {
		pterm.Error.Println("You ran out of chips!")
	}
	return nil
}

func selectTier() (holdem.Tier, error) {
	options := make([]string, 0, len(holdem.Tiers))
	for _, t := range holdem.Tiers {
		options = append(options, t.String())
	}
	choice, err := pterm.DefaultInteractiveSelect.WithDefaultText("Select AI difficulty").WithOptions(options).Show()
	if err != nil {
		return 0, err
	}
	return holdem.ParseTier(choice)
}

func selectOpponents() (int, error) {
	options := make([]string, 0, holdem.MaxOpponents)
	for i := holdem.MinOpponents; i <= holdem.MaxOpponents; i++ {
		options = append(options, strconv.Itoa(i))
	}
	choice, err := pterm.DefaultInteractiveSelect.WithDefaultText("Number of AI opponents").WithOptions(options).Show()
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(choice)
}

func promptIntent(match *holdem.Match, snap holdem.Snapshot) error {
	for {
		action, err := pterm.DefaultInteractiveSelect.
			WithDefaultText("Your action").
			WithOptions([]string{"call", "raise", "fold"}).
			Show()
		if err != nil {
			return err
		}

		in := holdem.Intent{}
		switch action {
		case "fold":
			in = holdem.Fold()
		case "call":
			in = holdem.Call()
		case "raise":
			raw, err := pterm.DefaultInteractiveTextInput.
				WithDefaultText(fmt.Sprintf("Raise to (%d-%d)", snap.MinRaiseTo, snap.MaxRaiseTo)).
				Show()
			if err != nil {
				return err
			}
			amount, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				pterm.Warning.Printfln("%q is not a number", raw)
				continue
			}
			in = holdem.RaiseTo(amount)
		}

		err = match.Act(in)
		if errors.Is(err, holdem.ErrInvalidIntent) {
			pterm.Warning.Println(err)
			continue
		}
		return err
	}
}
