package codec

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdem-arcade/holdem"
)

func newMatch(t *testing.T) *holdem.Match {
	t.Helper()
	m, err := holdem.NewMatch(holdem.Config{Opponents: 2, Difficulty: holdem.TierMedium, Seed: 5})
	require.NoError(t, err)
	require.NoError(t, m.Deal())
	return m
}

func TestSnapshotEnvelope_RoundTrip(t *testing.T) {
	m := newMatch(t)
	payload, err := SnapshotToStruct(m.Snapshot())
	require.NoError(t, err)

	env := WrapAt("t1", 7, 1234, TypeSnapshot, payload)
	bin, err := Marshal(env)
	require.NoError(t, err)

	msg, err := DecodeClient(bin, false)
	require.NoError(t, err)
	assert.Equal(t, TypeSnapshot, msg.Type)
	assert.EqualValues(t, 7, msg.Seq)

	got := msg.Payload.AsMap()
	assert.Equal(t, "preflop", got["phase"])
	assert.EqualValues(t, holdem.DefaultOpeningBet, got["tableBet"])
	assert.Len(t, got["players"], 3)
	assert.Len(t, got["hole"], 2)
	assert.Equal(t, true, got["humanToAct"])
}

func TestMarshal_Deterministic(t *testing.T) {
	m := newMatch(t)
	payload, err := SnapshotToStruct(m.Snapshot())
	require.NoError(t, err)
	a, err := Marshal(WrapAt("t", 1, 1, TypeSnapshot, payload))
	require.NoError(t, err)
	b, err := Marshal(WrapAt("t", 1, 1, TypeSnapshot, payload))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestIntent_BinaryAndJSON(t *testing.T) {
	bin, err := EncodeClient(TypeIntent, 3, IntentPayload(holdem.RaiseTo(120)))
	require.NoError(t, err)
	msg, err := DecodeClient(bin, false)
	require.NoError(t, err)
	in, err := IntentFromPayload(msg.Payload)
	require.NoError(t, err)
	assert.Equal(t, holdem.RaiseTo(120), in)

	text := []byte(`{"type":"intent","seq":4,"payload":{"action":"CALL"}}`)
	msg, err = DecodeClient(text, true)
	require.NoError(t, err)
	in, err = IntentFromPayload(msg.Payload)
	require.NoError(t, err)
	assert.Equal(t, holdem.Call(), in)

	msg, err = DecodeClient([]byte(`{"type":"intent","payload":{"action":"check"}}`), true)
	require.NoError(t, err)
	_, err = IntentFromPayload(msg.Payload)
	assert.Error(t, err)
}

func TestDecodeClient_RequiresType(t *testing.T) {
	_, err := DecodeClient([]byte(`{"seq":1}`), true)
	assert.Error(t, err)
	_, err = DecodeClient([]byte{0xff, 0x01}, false)
	assert.Error(t, err)
}

func TestErrorCode(t *testing.T) {
	m := newMatch(t)
	err := m.Act(holdem.RaiseTo(1))
	require.Error(t, err)
	assert.Equal(t, CodeInvalidIntent, ErrorCode(err))
	assert.Equal(t, CodeOutOfTurn, ErrorCode(fmt.Errorf("wrapped: %w", holdem.ErrOutOfTurn)))
	assert.Equal(t, CodeMatchOver, ErrorCode(holdem.ErrMatchOver))
	assert.Equal(t, CodeInternal, ErrorCode(holdem.ErrInvalidState("x")))

	p := ErrorToStruct(holdem.ErrOutOfTurn).AsMap()
	assert.Equal(t, CodeOutOfTurn, p["code"])
}

func TestShowdownToStruct(t *testing.T) {
	m := newMatch(t)
	require.NoError(t, m.Act(holdem.Fold()))
	_, err := m.Advance()
	require.NoError(t, err)

	res := m.LastShowdown()
	require.NotNil(t, res)
	p, err := ShowdownToStruct(res)
	require.NoError(t, err)
	got := p.AsMap()
	assert.Len(t, got["board"], 5)
	cards, err := CardsFromList(p.Fields["board"].GetListValue())
	require.NoError(t, err)
	assert.Equal(t, res.Board, cards)
}

func TestErrorPayload(t *testing.T) {
	p := ErrorPayload(CodeNotSeated, "not seated at a table")
	assert.Equal(t, CodeNotSeated, p.GetFields()["code"].GetStringValue())
	assert.Equal(t, "not seated at a table", p.GetFields()["message"].GetStringValue())

	wrapped := ErrorToStruct(fmt.Errorf("act: %w", holdem.ErrOutOfTurn))
	assert.Equal(t, CodeOutOfTurn, wrapped.GetFields()["code"].GetStringValue())
}
