package replay

import (
	"encoding/base64"
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"holdem-arcade/codec"
	"holdem-arcade/holdem"
)

const defaultTableID = "replay_local"

// GenerateReplayTape plays a script against a seeded match and records
// every state change as an envelope.
func GenerateReplayTape(script MatchScript) (*ReplayTape, error) {
	ns, err := normalizeScript(script)
	if err != nil {
		return nil, err
	}

	match, err := holdem.NewMatch(ns.cfg)
	if err != nil {
		return nil, &ReplayError{StepIndex: -1, Reason: "engine_init_failed", Message: err.Error()}
	}
	if err := match.Deal(); err != nil {
		return nil, &ReplayError{StepIndex: -1, Reason: "deal_failed", Message: err.Error()}
	}

	b := newTapeBuilder(defaultTableID)
	if err := b.addSnapshot(codec.TypeSnapshot, match); err != nil {
		return nil, err
	}

	for stepIdx, in := range ns.intents {
		if err := b.runUntilHuman(match, int32(stepIdx)); err != nil {
			return nil, err
		}
		snap := match.Snapshot()
		if !snap.HumanToAct {
			return nil, &ReplayError{
				StepIndex: int32(stepIdx),
				Reason:    "no_action_expected",
				Message:   fmt.Sprintf("match is %s; no further intents are allowed", snap.Outcome),
				Expected:  expectedState(snap),
			}
		}
		if in.hand != 0 && in.hand != snap.Hand {
			return nil, &ReplayError{
				StepIndex: int32(stepIdx),
				Reason:    "hand_mismatch",
				Message:   fmt.Sprintf("expected hand %d, got %d", snap.Hand, in.hand),
				Expected:  expectedState(snap),
			}
		}
		if in.phase != holdem.PhaseTypeNone && in.phase != snap.Phase {
			return nil, &ReplayError{
				StepIndex: int32(stepIdx),
				Reason:    "phase_mismatch",
				Message:   fmt.Sprintf("expected phase %s, got %s", snap.Phase, in.phase),
				Expected:  expectedState(snap),
			}
		}

		if err := match.Act(in.intent); err != nil {
			reason := "action_apply_failed"
			if errors.Is(err, holdem.ErrInvalidIntent) {
				reason = "invalid_intent"
			}
			return nil, &ReplayError{
				StepIndex: int32(stepIdx),
				Reason:    reason,
				Message:   err.Error(),
				Expected:  expectedState(snap),
			}
		}
		if err := b.addSnapshot("action", match); err != nil {
			return nil, err
		}
		if err := b.settleIfEnded(match); err != nil {
			return nil, err
		}
	}

	// play out the automated turns after the last intent
	if err := b.runUntilHuman(match, int32(len(ns.intents))); err != nil {
		return nil, err
	}

	return &ReplayTape{
		TapeVersion: 1,
		TableID:     b.tableID,
		Seed:        ns.cfg.Seed,
		Outcome:     match.Outcome().String(),
		Events:      b.events,
	}, nil
}

func expectedState(s holdem.Snapshot) *ExpectedState {
	return &ExpectedState{
		Hand:       s.Hand,
		Phase:      s.Phase.String(),
		ActionSeat: s.ActionSeat,
		TableBet:   s.TableBet,
		MinRaiseTo: s.MinRaiseTo,
		MaxRaiseTo: s.MaxRaiseTo,
	}
}

type tapeBuilder struct {
	tableID string
	seq     uint64
	events  []ReplayEvent
}

func newTapeBuilder(tableID string) *tapeBuilder {
	return &tapeBuilder{
		tableID: tableID,
		events:  make([]ReplayEvent, 0, 64),
	}
}

// runUntilHuman resolves automated turns, settling and redealing hands,
// until the human must act or the match is over.
func (b *tapeBuilder) runUntilHuman(m *holdem.Match, step int32) error {
	for m.Outcome() == holdem.OutcomeNone && !m.HumanToAct() {
		if !m.HandLive() {
			if err := m.NextHand(); err != nil {
				return &ReplayError{StepIndex: step, Reason: "deal_failed", Message: err.Error()}
			}
			if err := b.addSnapshot(codec.TypeSnapshot, m); err != nil {
				return err
			}
			continue
		}
		if err := m.Step(); err != nil {
			return &ReplayError{StepIndex: step, Reason: "step_failed", Message: err.Error(), Expected: expectedState(m.Snapshot())}
		}
		if err := b.addSnapshot("step", m); err != nil {
			return err
		}
		if err := b.settleIfEnded(m); err != nil {
			return err
		}
	}
	return nil
}

func (b *tapeBuilder) settleIfEnded(m *holdem.Match) error {
	if m.HandLive() {
		return nil
	}
	res := m.LastShowdown()
	if res == nil {
		return nil
	}
	p, err := codec.ShowdownToStruct(res)
	if err != nil {
		return &ReplayError{StepIndex: -1, Reason: "encode_failed", Message: err.Error()}
	}
	if err := b.push(codec.TypeShowdown, p); err != nil {
		return err
	}
	if o := m.Outcome(); o != holdem.OutcomeNone {
		end, _ := structpb.NewStruct(map[string]any{"outcome": o.String(), "hands": res.Hand})
		return b.push(codec.TypeMatchEnd, end)
	}
	return nil
}

func (b *tapeBuilder) addSnapshot(typ string, m *holdem.Match) error {
	p, err := codec.SnapshotToStruct(m.Snapshot())
	if err != nil {
		return &ReplayError{StepIndex: -1, Reason: "encode_failed", Message: err.Error()}
	}
	return b.push(typ, p)
}

func (b *tapeBuilder) push(typ string, payload *structpb.Struct) error {
	b.seq++
	// seq doubles as the timestamp so tapes compare byte for byte
	env := codec.WrapAt(b.tableID, b.seq, int64(b.seq), typ, payload)
	bin, err := codec.Marshal(env)
	if err != nil {
		return &ReplayError{StepIndex: -1, Reason: "encode_failed", Message: err.Error()}
	}
	b.events = append(b.events, ReplayEvent{
		Type:        typ,
		Seq:         b.seq,
		Value:       payload.AsMap(),
		EnvelopeB64: base64.StdEncoding.EncodeToString(bin),
	})
	return nil
}
