package replay

import "fmt"

type ReplayError struct {
	StepIndex int32          `json:"step_index"`
	Reason    string         `json:"reason"`
	Message   string         `json:"message"`
	Expected  *ExpectedState `json:"expected,omitempty"`
}

// ExpectedState describes what the match was waiting for when a script
// step diverged.
type ExpectedState struct {
	Hand       int    `json:"hand"`
	Phase      string `json:"phase,omitempty"`
	ActionSeat int    `json:"action_seat"`
	TableBet   int64  `json:"table_bet"`
	MinRaiseTo int64  `json:"min_raise_to,omitempty"`
	MaxRaiseTo int64  `json:"max_raise_to,omitempty"`
}

func (e *ReplayError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("replay error(step=%d reason=%s): %s", e.StepIndex, e.Reason, e.Message)
}
