package replay

// MatchScript is everything needed to reproduce a match: the engine is
// seeded, so the automated turns replay exactly.
type MatchScript struct {
	Seed          int64        `json:"seed"`
	Difficulty    string       `json:"difficulty"` // tier name or 1..5
	Opponents     int          `json:"opponents"`
	StartingStack int64        `json:"starting_stack,omitempty"`
	OpeningBet    int64        `json:"opening_bet,omitempty"`
	OpponentNames []string     `json:"opponent_names,omitempty"`
	Deck          []string     `json:"deck,omitempty"` // top of the deck for every hand, e.g. ["As","Kd"]
	Intents       []IntentSpec `json:"intents"`
}

// IntentSpec is one human decision. Hand and Phase are optional checks.
type IntentSpec struct {
	Hand     int    `json:"hand,omitempty"`
	Phase    string `json:"phase,omitempty"`
	Type     string `json:"type"`
	AmountTo int64  `json:"amount_to,omitempty"`
}

type ReplayTape struct {
	TapeVersion int           `json:"tape_version"`
	TableID     string        `json:"table_id"`
	Seed        int64         `json:"seed"`
	Outcome     string        `json:"outcome"`
	Events      []ReplayEvent `json:"events"`
}

type ReplayEvent struct {
	Type        string         `json:"type"`
	Seq         uint64         `json:"seq"`
	Value       map[string]any `json:"value,omitempty"`
	EnvelopeB64 string         `json:"envelope_b64,omitempty"`
}
