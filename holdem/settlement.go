package holdem

import (
	"fmt"

	"holdem-arcade/card"
)

type ShowdownPlayerResult struct {
	Seat      int
	Name      string
	HandCards []card.Card // 2 张手牌
	Strength  float64
	Label     string // real hand name, informational only
	IsWinner  bool
	WinAmount int64
}

type ShowdownResult struct {
	Hand        int
	Pot         int64
	Board       []card.Card
	Uncontested bool // everyone else folded
	Winners     []int
	Players     []ShowdownPlayerResult
}

// WinnerNames lists the winners in seat order.
func (r *ShowdownResult) WinnerNames() []string {
	names := make([]string, 0, len(r.Winners))
	for _, pr := range r.Players {
		if pr.IsWinner {
			names = append(names, pr.Name)
		}
	}
	return names
}

// settleLocked pays the pot out and checks whether the match is over.
func (m *Match) settleLocked() {
	active := make([]*Player, 0, len(m.players))
	for _, p := range m.players {
		if !p.folded {
			active = append(active, p)
		}
	}

	var res *ShowdownResult
	if len(active) <= 1 {
		winner := m.players[HumanSeat]
		if len(active) == 1 {
			winner = active[0]
		}
		res = m.settleNoShowdownLocked(winner)
	} else {
		res = m.settleByStrengthLocked(active)
	}
	m.pot = 0
	m.lastShowdown = res

	if m.players[HumanSeat].stack <= 0 {
		m.outcome = OutcomeLost
		m.log.Append("Game Over: You ran out of chips!")
		return
	}
	for _, p := range m.players[1:] {
		if p.stack > 0 {
			return
		}
	}
	m.outcome = OutcomeWon
	m.log.Append("Game Over: All AIs ran out of chips! You win!")
}

func (m *Match) settleNoShowdownLocked(winner *Player) *ShowdownResult {
	winner.addStack(m.pot)
	m.log.Append(fmt.Sprintf("%s won the pot (opponents folded)!", winner.Name))
	return &ShowdownResult{
		Hand:        m.hand,
		Pot:         m.pot,
		Board:       append([]card.Card{}, m.community...),
		Uncontested: true,
		Winners:     []int{winner.Seat},
		Players: []ShowdownPlayerResult{{
			Seat:      winner.Seat,
			Name:      winner.Name,
			IsWinner:  true,
			WinAmount: m.pot,
		}},
	}
}

func (m *Match) settleByStrengthLocked(active []*Player) *ShowdownResult {
	res := &ShowdownResult{
		Hand:  m.hand,
		Pot:   m.pot,
		Board: append([]card.Card{}, m.community...),
	}

	best := -1.0
	for _, p := range active {
		m.log.Append(fmt.Sprintf("%s hand: %s", p.Name, p.handCards))
		pr := ShowdownPlayerResult{
			Seat:      p.Seat,
			Name:      p.Name,
			HandCards: append([]card.Card{}, p.handCards...),
			Strength:  HandStrength(p.handCards, m.community, m.rng),
		}
		all := append(append(make([]card.Card, 0, 7), p.handCards...), m.community...)
		if label, err := Describe(all); err == nil {
			pr.Label = label
		}
		if pr.Strength > best {
			best = pr.Strength
		}
		res.Players = append(res.Players, pr)
	}

	// exact equality: equal scores split the pot
	for i := range res.Players {
		if res.Players[i].Strength == best {
			res.Players[i].IsWinner = true
			res.Winners = append(res.Winners, res.Players[i].Seat)
		}
	}

	share := m.pot / int64(len(res.Winners))
	remainder := m.pot % int64(len(res.Winners))
	first := true
	for i := range res.Players {
		pr := &res.Players[i]
		if !pr.IsWinner {
			continue
		}
		amt := share
		if first {
			amt += remainder
			first = false
		}
		pr.WinAmount = amt
		m.players[pr.Seat].addStack(amt)
	}

	if len(res.Winners) > 1 {
		m.log.Append("Pot split among winners!")
	} else {
		m.log.Append(fmt.Sprintf("%s won the pot!", m.players[res.Winners[0]].Name))
	}
	return res
}
