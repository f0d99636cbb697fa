package npc

import (
	"time"

	"holdem-arcade/holdem"
)

// Pace controls how long an NPC appears to think before acting.
type Pace struct {
	BaseMs   int `json:"baseMs"`
	JitterMs int `json:"jitterMs"` // uniform extra delay in [0, JitterMs)
}

// NPCPersona defines a named NPC character.
type NPCPersona struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Tagline string      `json:"tagline"`
	Tier    holdem.Tier `json:"tier"` // 1=Beginner .. 5=Master
	Pace    Pace        `json:"pace"`
}

func (p *NPCPersona) baseDelay() time.Duration {
	if p.Pace.BaseMs <= 0 {
		return time.Second
	}
	return time.Duration(p.Pace.BaseMs) * time.Millisecond
}
