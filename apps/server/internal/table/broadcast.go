package table

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"holdem-arcade/apps/server/internal/ledger"
	"holdem-arcade/codec"
	"holdem-arcade/holdem"

	"github.com/dustin/go-humanize"
	"google.golang.org/protobuf/types/known/structpb"
)

func (t *Table) nextSeq() uint64 {
	t.serverSeq++
	return t.serverSeq
}

func (t *Table) handID(hand int) string {
	return fmt.Sprintf("%s_h%d", t.MatchID, hand)
}

// sendLocked wraps, encodes and delivers one envelope to the owner. Every
// envelope also goes onto the hand's tape for the ledger.
func (t *Table) sendLocked(typ string, payload *structpb.Struct) {
	seq := t.nextSeq()
	env := codec.WrapServerEnvelope(t.ID, seq, typ, payload)
	data, err := codec.Marshal(env)
	if err != nil {
		t.logger.Error("encode envelope failed", "type", typ, "err", err)
		return
	}
	tsMs := env.GetFields()["tsMs"].GetNumberValue()
	ts := int64(tsMs)
	t.tape = append(t.tape, ledger.EventItem{
		Seq:         seq,
		EventType:   typ,
		EnvelopeB64: base64.StdEncoding.EncodeToString(data),
		ServerTsMs:  &ts,
	})
	if t.send != nil {
		t.send(t.Owner.UserID, data)
	}
}

func (t *Table) sendSnapshotLocked() {
	payload, err := codec.SnapshotToStruct(t.match.Snapshot())
	if err != nil {
		t.logger.Error("snapshot encode failed", "err", err)
		return
	}
	t.sendLocked(codec.TypeSnapshot, payload)
}

// SendError delivers an error envelope to the owner outside the hand tape.
func (t *Table) SendError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	env := codec.WrapServerEnvelope(t.ID, t.nextSeq(), codec.TypeError, codec.ErrorToStruct(err))
	data, mErr := codec.Marshal(env)
	if mErr != nil || t.send == nil {
		return
	}
	t.send(t.Owner.UserID, data)
}

func (t *Table) handleHandEndLocked() {
	snap := t.match.Snapshot()
	result := snap.Showdown
	if result == nil {
		return
	}
	payload, err := codec.ShowdownToStruct(result)
	if err != nil {
		t.logger.Error("showdown encode failed", "err", err)
	} else {
		t.sendLocked(codec.TypeShowdown, payload)
	}

	human := snap.Players[holdem.HumanSeat]
	t.logger.Info("hand settled",
		"hand", result.Hand,
		"pot", humanize.Comma(result.Pot),
		"winners", result.WinnerNames(),
		"stack", humanize.Comma(human.Stack))

	if snap.Outcome != holdem.OutcomeNone {
		end, _ := structpb.NewStruct(map[string]any{
			"outcome": snap.Outcome.String(),
			"hands":   snap.Hand,
			"stack":   human.Stack,
		})
		t.sendLocked(codec.TypeMatchEnd, end)
		t.logger.Info("match over", "outcome", snap.Outcome, "hands", snap.Hand)
	} else if t.Config.ShowdownDelay > 0 {
		t.nextHandAt = time.Now().Add(t.Config.ShowdownDelay)
	}

	t.recordHandLocked(snap, result)
	t.dispatchHandEndHooksLocked(snap, result)
}

func (t *Table) recordHandLocked(snap holdem.Snapshot, result *holdem.ShowdownResult) {
	if t.ledger == nil {
		return
	}
	rec := ledger.HandRecord{
		UserID:   t.Owner.UserID,
		Source:   ledger.SourceLive,
		HandID:   t.handID(result.Hand),
		PlayedAt: time.Now(),
		Summary:  handSummary(t, snap, result),
		Events:   append([]ledger.EventItem(nil), t.tape...),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := t.ledger.RecordHand(ctx, rec); err != nil {
			t.logger.Warn("ledger record failed", "hand", rec.HandID, "err", err)
		}
	}()
}

func handSummary(t *Table, snap holdem.Snapshot, result *holdem.ShowdownResult) map[string]any {
	board := make([]any, 0, len(result.Board))
	for _, c := range result.Board {
		board = append(board, c.Code())
	}
	winners := make([]any, 0, len(result.Winners))
	for _, name := range result.WinnerNames() {
		winners = append(winners, name)
	}
	return map[string]any{
		"match_id":    t.MatchID,
		"table_id":    t.ID,
		"hand":        result.Hand,
		"tier":        t.lineup.Tier.String(),
		"pot":         result.Pot,
		"board":       board,
		"winners":     winners,
		"uncontested": result.Uncontested,
		"stack":       snap.Players[holdem.HumanSeat].Stack,
		"outcome":     snap.Outcome.String(),
	}
}

func (t *Table) dispatchHandEndHooksLocked(snap holdem.Snapshot, result *holdem.ShowdownResult) {
	info := HandEndInfo{TableID: t.ID, HandID: t.handID(result.Hand), Snapshot: snap, Result: result}
	for _, hook := range t.handEndHooks {
		if hook == nil {
			continue
		}
		go func(cb HandEndHook) {
			defer func() {
				if r := recover(); r != nil {
					t.logger.Error("hand end hook panic", "recover", r)
				}
			}()
			cb(info)
		}(hook)
	}
}
