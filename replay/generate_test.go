package replay

import (
	"reflect"
	"testing"
)

func TestGenerateReplayTape_IsDeterministic(t *testing.T) {
	script := baseScript()

	tapeA, err := GenerateReplayTape(script)
	if err != nil {
		t.Fatalf("GenerateReplayTape A failed: %v", err)
	}
	tapeB, err := GenerateReplayTape(script)
	if err != nil {
		t.Fatalf("GenerateReplayTape B failed: %v", err)
	}

	if !reflect.DeepEqual(tapeA, tapeB) {
		t.Fatalf("expected deterministic replay tape for the same script")
	}
	if len(tapeA.Events) == 0 {
		t.Fatalf("expected non-empty replay tape")
	}

	found := map[string]bool{}
	for _, e := range tapeA.Events {
		found[e.Type] = true
	}
	for _, want := range []string{"snapshot", "action", "step", "showdown"} {
		if !found[want] {
			t.Fatalf("expected replay tape to contain %q events, got %v", want, found)
		}
	}
}

func TestGenerateReplayTape_OpponentFoldsFirstHand(t *testing.T) {
	tape, err := GenerateReplayTape(baseScript())
	if err != nil {
		t.Fatal(err)
	}
	var showdown map[string]any
	for _, e := range tape.Events {
		if e.Type == "showdown" {
			showdown = e.Value
			break
		}
	}
	if showdown == nil {
		t.Fatalf("no showdown event")
	}
	if showdown["uncontested"] != true {
		t.Fatalf("expected uncontested showdown, got %v", showdown)
	}
}

func TestGenerateReplayTape_ReturnsReplayErrorOnInvalidRaise(t *testing.T) {
	script := baseScript()
	script.Intents[0] = IntentSpec{Type: "raise", AmountTo: 5}

	_, err := GenerateReplayTape(script)
	replayErr, ok := err.(*ReplayError)
	if !ok {
		t.Fatalf("expected ReplayError type, got %T (%v)", err, err)
	}
	if replayErr.Reason != "invalid_intent" {
		t.Fatalf("unexpected reason: %s", replayErr.Reason)
	}
	if replayErr.Expected == nil || replayErr.Expected.MinRaiseTo != 11 {
		t.Fatalf("expected replay error to include raise bounds, got %+v", replayErr.Expected)
	}
}

func TestGenerateReplayTape_PhaseMismatch(t *testing.T) {
	script := baseScript()
	script.Intents[0].Phase = "river"

	_, err := GenerateReplayTape(script)
	replayErr, ok := err.(*ReplayError)
	if !ok || replayErr.Reason != "phase_mismatch" || replayErr.StepIndex != 0 {
		t.Fatalf("expected phase_mismatch at step 0, got %v", err)
	}
}

func TestGenerateReplayTape_RejectsBadScripts(t *testing.T) {
	cases := map[string]func(*MatchScript){
		"invalid_seed":       func(s *MatchScript) { s.Seed = 0 },
		"invalid_difficulty": func(s *MatchScript) { s.Difficulty = "godlike" },
		"invalid_deck":       func(s *MatchScript) { s.Deck = []string{"As", "As"} },
		"invalid_action":     func(s *MatchScript) { s.Intents[0].Type = "check" },
		"engine_init_failed": func(s *MatchScript) { s.Opponents = 9 },
	}
	for reason, mutate := range cases {
		script := baseScript()
		mutate(&script)
		_, err := GenerateReplayTape(script)
		replayErr, ok := err.(*ReplayError)
		if !ok || replayErr.Reason != reason {
			t.Fatalf("%s: got %v", reason, err)
		}
	}
}

func TestToWireReplayTape(t *testing.T) {
	tape, err := GenerateReplayTape(baseScript())
	if err != nil {
		t.Fatal(err)
	}
	wire := ToWireReplayTape(tape)
	if len(wire.Events) != len(tape.Events) || wire.Events[0].EnvelopeB64 == "" {
		t.Fatalf("wire tape mismatch")
	}
	if ToWireReplayTape(nil) != nil {
		t.Fatalf("nil tape should map to nil")
	}
}

// Easy opponent with 7-2 folds to the opening call.
func baseScript() MatchScript {
	return MatchScript{
		Seed:       42,
		Difficulty: "easy",
		Opponents:  1,
		Deck:       []string{"As", "Ks", "7c", "2d"},
		Intents: []IntentSpec{
			{Hand: 1, Phase: "preflop", Type: "call"},
		},
	}
}
