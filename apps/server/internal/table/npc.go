package table

import (
	"errors"
	"time"

	"holdem-arcade/holdem"
)

// scheduleStepLocked injects an EventStep for the next automated turn after
// the seat's think delay. Folded and sitting-out seats pass without delay.
func (t *Table) scheduleStepLocked() {
	if t.stepPending {
		return
	}
	seat := t.match.NextActor()
	if seat < 0 {
		return
	}
	var delay time.Duration
	if !t.Config.NoThinkDelay && seat != holdem.HumanSeat {
		if p := t.match.Player(seat); p != nil && !p.Folded() && !p.SittingOut() {
			delay = t.lineup.ThinkDelay(seat)
		}
	}
	hand := t.match.Snapshot().Hand
	t.stepPending = true

	go func() {
		if delay > 0 {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-t.done:
				return
			}
		}
		err := t.SubmitEvent(Event{Type: EventStep, Hand: hand})
		if err != nil && !errors.Is(err, ErrTableClosed) {
			t.logger.Warn("npc step rejected", "seat", seat, "err", err)
		}
	}()
}
