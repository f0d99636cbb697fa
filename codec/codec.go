// Package codec converts match state and player intents to and from
// protobuf Struct envelopes. Binary frames use proto wire format, text
// frames use protojson.
package codec

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"holdem-arcade/card"
	"holdem-arcade/holdem"
)

// Server → client envelope types.
const (
	TypeSnapshot = "snapshot"
	TypeShowdown = "showdown"
	TypeHandEnd  = "hand_end"
	TypeMatchEnd = "match_end"
	TypeError    = "error"
	TypePong     = "pong"
	TypeWelcome  = "welcome"
)

// Client → server envelope types.
const (
	TypeJoin     = "join"
	TypeIntent   = "intent"
	TypeNextHand = "next_hand"
	TypePing     = "ping"
	TypeLeave    = "leave"
)

// Error codes carried in error envelopes.
const (
	CodeBadRequest    = "bad_request"
	CodeInvalidIntent = "invalid_intent"
	CodeOutOfTurn     = "out_of_turn"
	CodeHandEnded     = "hand_ended"
	CodeMatchOver     = "match_over"
	CodeNotSeated     = "not_seated"
	CodeInternal      = "internal"
)

var deterministic = proto.MarshalOptions{Deterministic: true}

// WrapServerEnvelope creates a server envelope with common fields.
func WrapServerEnvelope(tableID string, serverSeq uint64, typ string, payload *structpb.Struct) *structpb.Struct {
	return wrap(tableID, serverSeq, time.Now().UnixMilli(), typ, payload)
}

// WrapAt is WrapServerEnvelope with an explicit timestamp, for replays.
func WrapAt(tableID string, serverSeq uint64, tsMs int64, typ string, payload *structpb.Struct) *structpb.Struct {
	return wrap(tableID, serverSeq, tsMs, typ, payload)
}

func wrap(tableID string, seq uint64, tsMs int64, typ string, payload *structpb.Struct) *structpb.Struct {
	if payload == nil {
		payload = &structpb.Struct{Fields: map[string]*structpb.Value{}}
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"type":    structpb.NewStringValue(typ),
		"tableId": structpb.NewStringValue(tableID),
		"seq":     structpb.NewNumberValue(float64(seq)),
		"tsMs":    structpb.NewNumberValue(float64(tsMs)),
		"payload": structpb.NewStructValue(payload),
	}}
}

// Marshal encodes an envelope in proto wire format with stable field order.
func Marshal(env *structpb.Struct) ([]byte, error) {
	return deterministic.Marshal(env)
}

// MarshalJSON encodes an envelope as protojson.
func MarshalJSON(env *structpb.Struct) ([]byte, error) {
	return protojson.Marshal(env)
}

// ClientMessage is a decoded client envelope.
type ClientMessage struct {
	Type    string
	Seq     uint64
	Payload *structpb.Struct
}

// DecodeClient parses a binary (proto) or text (protojson) client frame.
func DecodeClient(data []byte, text bool) (*ClientMessage, error) {
	env := &structpb.Struct{}
	var err error
	if text {
		err = protojson.Unmarshal(data, env)
	} else {
		err = proto.Unmarshal(data, env)
	}
	if err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	f := env.GetFields()
	typ := f["type"].GetStringValue()
	if typ == "" {
		return nil, errors.New("envelope has no type")
	}
	msg := &ClientMessage{
		Type:    typ,
		Seq:     uint64(f["seq"].GetNumberValue()),
		Payload: f["payload"].GetStructValue(),
	}
	if msg.Payload == nil {
		msg.Payload = &structpb.Struct{Fields: map[string]*structpb.Value{}}
	}
	return msg, nil
}

// EncodeClient builds a client frame; used by tests and bots.
func EncodeClient(typ string, seq uint64, payload map[string]any) ([]byte, error) {
	p, err := structpb.NewStruct(payload)
	if err != nil {
		return nil, err
	}
	env := &structpb.Struct{Fields: map[string]*structpb.Value{
		"type":    structpb.NewStringValue(typ),
		"seq":     structpb.NewNumberValue(float64(seq)),
		"payload": structpb.NewStructValue(p),
	}}
	return Marshal(env)
}

// IntentFromPayload reads {"action": "raise", "amount": 120}.
func IntentFromPayload(p *structpb.Struct) (holdem.Intent, error) {
	f := p.GetFields()
	a, ok := holdem.ParseActionType(f["action"].GetStringValue())
	if !ok {
		return holdem.Intent{}, fmt.Errorf("unknown action %q", f["action"].GetStringValue())
	}
	return holdem.Intent{Action: a, Amount: int64(f["amount"].GetNumberValue())}, nil
}

// IntentPayload is the inverse of IntentFromPayload.
func IntentPayload(in holdem.Intent) map[string]any {
	return map[string]any{
		"action": strings.ToLower(in.Action.String()),
		"amount": in.Amount,
	}
}

// SnapshotToStruct converts holdem.Snapshot to a Struct payload.
func SnapshotToStruct(s holdem.Snapshot) (*structpb.Struct, error) {
	players := make([]any, 0, len(s.Players))
	for _, p := range s.Players {
		players = append(players, map[string]any{
			"name":       p.Name,
			"seat":       p.Seat,
			"human":      p.Human,
			"tier":       tierName(p.Tier),
			"stack":      p.Stack,
			"bet":        p.Bet,
			"folded":     p.Folded,
			"sittingOut": p.SittingOut,
			"lastAction": strings.ToLower(p.LastAction.String()),
			"cards":      cardsToList(p.HandCards),
		})
	}
	logLines := make([]any, 0, len(s.Log))
	for _, l := range s.Log {
		logLines = append(logLines, l)
	}
	m := map[string]any{
		"hand":       s.Hand,
		"turn":       s.Turn,
		"phase":      s.Phase.String(),
		"pot":        s.Pot,
		"tableBet":   s.TableBet,
		"actionSeat": s.ActionSeat,
		"humanToAct": s.HumanToAct,
		"minRaiseTo": s.MinRaiseTo,
		"maxRaiseTo": s.MaxRaiseTo,
		"board":      cardsToList(s.CommunityCards),
		"hole":       cardsToList(s.HumanCards),
		"players":    players,
		"log":        logLines,
		"outcome":    s.Outcome.String(),
	}
	if s.Showdown != nil {
		m["showdown"] = showdownMap(s.Showdown)
	}
	return structpb.NewStruct(m)
}

// ShowdownToStruct converts a settled hand to a Struct payload.
func ShowdownToStruct(r *holdem.ShowdownResult) (*structpb.Struct, error) {
	if r == nil {
		return nil, errors.New("nil showdown")
	}
	return structpb.NewStruct(showdownMap(r))
}

func showdownMap(r *holdem.ShowdownResult) map[string]any {
	players := make([]any, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, map[string]any{
			"seat":      p.Seat,
			"name":      p.Name,
			"cards":     cardsToList(p.HandCards),
			"strength":  p.Strength,
			"label":     p.Label,
			"winner":    p.IsWinner,
			"winAmount": p.WinAmount,
		})
	}
	winners := make([]any, 0, len(r.Winners))
	for _, w := range r.Winners {
		winners = append(winners, w)
	}
	return map[string]any{
		"hand":        r.Hand,
		"pot":         r.Pot,
		"board":       cardsToList(r.Board),
		"uncontested": r.Uncontested,
		"winners":     winners,
		"players":     players,
	}
}

// ErrorToStruct maps an engine error to an error payload.
func ErrorToStruct(err error) *structpb.Struct {
	return ErrorPayload(ErrorCode(err), err.Error())
}

// ErrorPayload builds an error payload with an explicit code.
func ErrorPayload(code, message string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"code":    structpb.NewStringValue(code),
		"message": structpb.NewStringValue(message),
	}}
}

// ErrorCode classifies engine errors for clients.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, holdem.ErrInvalidIntent):
		return CodeInvalidIntent
	case errors.Is(err, holdem.ErrOutOfTurn):
		return CodeOutOfTurn
	case errors.Is(err, holdem.ErrHandEnded), errors.Is(err, holdem.ErrHandInProgress):
		return CodeHandEnded
	case errors.Is(err, holdem.ErrMatchOver):
		return CodeMatchOver
	}
	var ise holdem.InvalidStateError
	if errors.As(err, &ise) {
		return CodeInternal
	}
	return CodeBadRequest
}

func cardsToList(cs []card.Card) []any {
	out := make([]any, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Code())
	}
	return out
}

// CardsFromList parses a list of card codes from a Struct payload.
func CardsFromList(l *structpb.ListValue) ([]card.Card, error) {
	out := make([]card.Card, 0, len(l.GetValues()))
	for _, v := range l.GetValues() {
		c, err := card.Parse(v.GetStringValue())
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func tierName(t holdem.Tier) string {
	if !t.Valid() {
		return ""
	}
	return t.String()
}
