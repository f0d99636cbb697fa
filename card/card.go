package card

import (
	"fmt"
	"strings"
)

// Card 牌值
//
// 编码规则:
// - 高4位: 花色 (0:Spade, 1:Heart, 2:Club, 3:Diamond)
// - 低4位: 点数 (2..9, 10:T, 11:J, 12:Q, 13:K, 14:A)
type Card byte

const (
	RankMin = 2
	RankMax = 14
)

// New builds a card from a rank (2..14) and suit.
func New(rank int, suit Suit) (Card, error) {
	if rank < RankMin || rank > RankMax {
		return CardInvalid, fmt.Errorf("invalid rank: %d", rank)
	}
	if suit > Diamond {
		return CardInvalid, fmt.Errorf("invalid suit: %d", suit)
	}
	return Card(byte(suit)<<4 | byte(rank)), nil
}

func (c Card) String() string {
	if c == CardInvalid {
		return "Invalid"
	}
	if c == CardRear {
		return "Rear"
	}
	return c.RankString() + c.Suit().String()
}

// Code is the ASCII form accepted by Parse, e.g. "Ks".
func (c Card) Code() string {
	if !c.Valid() {
		return "??"
	}
	return c.RankString() + c.Suit().Letter()
}

// RankString returns the short rank label ("2".."9", "T", "J", "Q", "K", "A").
func (c Card) RankString() string {
	switch c.Rank() {
	case 10:
		return "T"
	case 11:
		return "J"
	case 12:
		return "Q"
	case 13:
		return "K"
	case 14:
		return "A"
	default:
		return fmt.Sprintf("%d", c.Rank())
	}
}

// Rank 获取牌面值 2-14 (A=14)
func (c Card) Rank() int {
	if c == CardInvalid || c == CardRear {
		return 0
	}
	return int(c & 0x0F)
}

// Suit 花色 (0:Spades, 1:Hearts, 2:Clubs, 3:Diamonds)
func (c Card) Suit() Suit {
	return Suit(c >> 4)
}

func (c Card) IsAce() bool {
	return c.Rank() == 14
}

// Valid reports whether c encodes one of the 52 real cards.
func (c Card) Valid() bool {
	r := c.Rank()
	return r >= RankMin && r <= RankMax && c.Suit() <= Diamond
}

// Parse 将字符串 (如 "As", "Td", "10h") 转换为 Card
func Parse(cardStr string) (Card, error) {
	cardStr = strings.TrimSpace(cardStr)
	if len(cardStr) < 2 {
		return CardInvalid, fmt.Errorf("invalid card string: %q", cardStr)
	}

	var suit Suit
	switch cardStr[len(cardStr)-1] {
	case 's', 'S':
		suit = Spade
	case 'h', 'H':
		suit = Heart
	case 'c', 'C':
		suit = Club
	case 'd', 'D':
		suit = Diamond
	default:
		return CardInvalid, fmt.Errorf("invalid suit: %c", cardStr[len(cardStr)-1])
	}

	var rank int
	switch r := strings.ToUpper(cardStr[:len(cardStr)-1]); r {
	case "A":
		rank = 14
	case "K":
		rank = 13
	case "Q":
		rank = 12
	case "J":
		rank = 11
	case "T", "10":
		rank = 10
	case "2", "3", "4", "5", "6", "7", "8", "9":
		rank = int(r[0] - '0')
	default:
		return CardInvalid, fmt.Errorf("invalid rank: %s", r)
	}
	return New(rank, suit)
}

// MustParse is Parse for literals in tests and fixtures.
func MustParse(cardStr string) Card {
	c, err := Parse(cardStr)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseList parses a whitespace separated list such as "Ks Kh 7d".
func ParseList(s string) (CardList, error) {
	fields := strings.Fields(s)
	out := make(CardList, 0, len(fields))
	for _, f := range fields {
		c, err := Parse(f)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
