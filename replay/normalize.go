package replay

import (
	"fmt"
	"strings"

	"holdem-arcade/card"
	"holdem-arcade/holdem"
)

type normalizedIntent struct {
	hand   int
	phase  holdem.Phase
	intent holdem.Intent
}

type normalizedScript struct {
	cfg     holdem.Config
	intents []normalizedIntent
}

func normalizeScript(s MatchScript) (normalizedScript, error) {
	var out normalizedScript

	if s.Seed == 0 {
		return out, &ReplayError{StepIndex: -1, Reason: "invalid_seed", Message: "seed must be non-zero for a reproducible replay"}
	}
	tier, err := holdem.ParseTier(s.Difficulty)
	if err != nil {
		return out, &ReplayError{StepIndex: -1, Reason: "invalid_difficulty", Message: err.Error()}
	}
	out.cfg = holdem.Config{
		Opponents:     s.Opponents,
		Difficulty:    tier,
		OpponentNames: s.OpponentNames,
		StartingStack: s.StartingStack,
		OpeningBet:    s.OpeningBet,
		Seed:          s.Seed,
	}

	if len(s.Deck) > 0 {
		top, err := parseCards(s.Deck)
		if err != nil {
			return out, &ReplayError{StepIndex: -1, Reason: "invalid_deck", Message: err.Error()}
		}
		deck, err := holdem.StackedDeck(top...)
		if err != nil {
			return out, &ReplayError{StepIndex: -1, Reason: "invalid_deck", Message: err.Error()}
		}
		out.cfg.DeckOverride = deck
	}

	out.intents = make([]normalizedIntent, 0, len(s.Intents))
	for i, in := range s.Intents {
		a, ok := holdem.ParseActionType(in.Type)
		if !ok {
			return out, &ReplayError{StepIndex: int32(i), Reason: "invalid_action", Message: fmt.Sprintf("unknown action %q", in.Type)}
		}
		ni := normalizedIntent{hand: in.Hand, intent: holdem.Intent{Action: a, Amount: in.AmountTo}}
		if in.Phase != "" {
			p, ok := parsePhase(in.Phase)
			if !ok {
				return out, &ReplayError{StepIndex: int32(i), Reason: "invalid_phase", Message: fmt.Sprintf("unknown phase %q", in.Phase)}
			}
			ni.phase = p
		}
		out.intents = append(out.intents, ni)
	}
	return out, nil
}

func parseCards(codes []string) ([]card.Card, error) {
	out := make([]card.Card, 0, len(codes))
	for _, s := range codes {
		c, err := card.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("card %q: %w", s, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func parsePhase(s string) (holdem.Phase, bool) {
	for p, name := range holdem.PhaseTypeDictionary {
		if p != holdem.PhaseTypeNone && strings.EqualFold(name, s) {
			return p, true
		}
	}
	return holdem.PhaseTypeNone, false
}
