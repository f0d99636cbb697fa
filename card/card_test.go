package card

import "testing"

func TestParse_RoundTrip(t *testing.T) {
	cases := map[string]Card{
		"As":  CardSpadeA,
		"Kh":  CardHeartK,
		"Td":  CardDiamondT,
		"10c": CardClubT,
		"2s":  CardSpade2,
	}
	for in, want := range cases {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) err: %v", in, err)
		}
		if got != want {
			t.Fatalf("Parse(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := Parse("1s"); err == nil {
		t.Fatalf("expected error for rank 1")
	}
	if _, err := Parse("Kx"); err == nil {
		t.Fatalf("expected error for bad suit")
	}
}

func TestCard_RankSuitString(t *testing.T) {
	if CardSpadeA.Rank() != 14 || !CardSpadeA.IsAce() {
		t.Fatalf("ace rank = %d", CardSpadeA.Rank())
	}
	if CardDiamond2.Rank() != 2 || CardDiamond2.Suit() != Diamond {
		t.Fatalf("unexpected 2d: rank=%d suit=%v", CardDiamond2.Rank(), CardDiamond2.Suit())
	}
	if s := CardSpadeK.String(); s != "K♠" {
		t.Fatalf("String() = %q", s)
	}
	if CardInvalid.Valid() || CardRear.Valid() {
		t.Fatalf("sentinel cards must not be valid")
	}
}

func TestDeck52_Distinct(t *testing.T) {
	if len(Deck52) != 52 {
		t.Fatalf("len = %d", len(Deck52))
	}
	seen := map[Card]bool{}
	for _, c := range Deck52 {
		if !c.Valid() {
			t.Fatalf("invalid card 0x%02x", byte(c))
		}
		if seen[c] {
			t.Fatalf("duplicate %s", c)
		}
		seen[c] = true
	}
}

func TestBytes2cards_SkipsInvalid(t *testing.T) {
	in := []byte{byte(CardHeartQ), 0x00, byte(CardClub9), 0xFF}
	got := Bytes2cards(in)
	if len(got) != 2 || got[0] != CardHeartQ || got[1] != CardClub9 {
		t.Fatalf("got %v", got)
	}
}
