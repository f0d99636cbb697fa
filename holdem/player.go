package holdem

import "holdem-arcade/card"

// Controller decides where a seat's actions come from. The set is closed:
// Human waits for an Intent, Automated asks the decision policy.
type Controller interface {
	controller()
}

type Human struct{}

type Automated struct {
	Tier Tier
}

func (Human) controller()     {}
func (Automated) controller() {}

type Player struct {
	Name string
	Seat int

	ctrl Controller

	stack int64
	bet   int64 // committed this phase

	folded     bool
	sittingOut bool
	lastAction ActionType

	handCards card.CardList
}

func newPlayer(name string, seat int, ctrl Controller, stack int64) *Player {
	return &Player{Name: name, Seat: seat, ctrl: ctrl, stack: stack}
}

func (p *Player) Controller() Controller { return p.ctrl }

func (p *Player) IsHuman() bool {
	_, ok := p.ctrl.(Human)
	return ok
}

// Tier returns the policy tier of an automated player, 0 for the human.
func (p *Player) Tier() Tier {
	if a, ok := p.ctrl.(Automated); ok {
		return a.Tier
	}
	return 0
}

func (p *Player) Stack() int64           { return p.stack }
func (p *Player) Bet() int64             { return p.bet }
func (p *Player) Folded() bool           { return p.folded }
func (p *Player) SittingOut() bool       { return p.sittingOut }
func (p *Player) LastAction() ActionType { return p.lastAction }
func (p *Player) HandCards() card.CardList {
	return p.handCards
}

func (p *Player) ResetForNewHand() {
	p.bet = 0
	p.folded = false
	p.sittingOut = false
	p.lastAction = PlayerActionTypeNone
	p.handCards = make([]card.Card, 0, 2)
}

// sitOut marks a busted player out of the hand: no cards, treated as folded.
func (p *Player) sitOut() {
	p.sittingOut = true
	p.folded = true
}

func (p *Player) AddHandCard(cards ...card.Card) {
	p.handCards = append(p.handCards, cards...)
}

func (p *Player) setLastAction(a ActionType) { p.lastAction = a }

// placeBet moves up to amount chips from stack to bet and returns the
// amount actually moved.
func (p *Player) placeBet(amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	if amount > p.stack {
		amount = p.stack
	}
	p.stack -= amount
	p.bet += amount
	return amount
}

func (p *Player) resetBet() {
	p.bet = 0
}

func (p *Player) addStack(amount int64) {
	p.stack += amount
}

func (p *Player) setFolded(v bool) { p.folded = v }
