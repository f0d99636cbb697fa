package holdem

import (
	"math/rand"
	"testing"
)

func TestDecide_CannotCallFoldsEveryTier(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	v := View{Strength: 1, Pot: 100, TableBet: 50, OwnBet: 0, Stack: 30}
	for _, tier := range Tiers {
		for i := 0; i < 20; i++ {
			d := Decide(tier, v, rng)
			if d.Action != PlayerActionTypeFold || d.Moved != 0 {
				t.Fatalf("%s: expected forced fold, got %+v", tier, d)
			}
		}
	}
}

func TestDecide_BeginnerFoldRate(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const trials = 5000
	counts := map[ActionType]int{}
	for i := 0; i < trials; i++ {
		d := Decide(TierBeginner, View{Strength: 0.9, TableBet: 10, Stack: 1000}, rng)
		counts[d.Action]++
		if d.Action == PlayerActionTypeRaise {
			raise := d.Moved - 10
			if raise < 10 || raise > 100 {
				t.Fatalf("beginner raise size %d out of [10,100]", raise)
			}
		}
	}
	for action, want := range map[ActionType]float64{
		PlayerActionTypeFold:  0.2,
		PlayerActionTypeCall:  0.6,
		PlayerActionTypeRaise: 0.2,
	} {
		got := float64(counts[action]) / trials
		if got < want-0.03 || got > want+0.03 {
			t.Fatalf("%s rate = %.3f, want ~%.1f", action, got, want)
		}
	}
}

func TestDecide_EasyThresholds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := []struct {
		strength float64
		want     ActionType
	}{
		{0.1, PlayerActionTypeFold},
		{0.2, PlayerActionTypeFold},
		{0.3, PlayerActionTypeCall},
		{0.5, PlayerActionTypeCall},
		{0.6, PlayerActionTypeRaise},
	}
	for _, tc := range cases {
		d := Decide(TierEasy, View{Strength: tc.strength, TableBet: 10, Stack: 1000}, rng)
		if d.Action != tc.want {
			t.Fatalf("strength %.1f: got %s, want %s", tc.strength, d.Action, tc.want)
		}
		if d.Action == PlayerActionTypeRaise {
			if raise := d.Moved - 10; raise < 20 || raise > 80 {
				t.Fatalf("easy raise size %d out of [20,80]", raise)
			}
		}
	}
}

func TestDecide_MediumRespectsPotOdds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	// odds = 50/(50+50) = 0.5 -> no raise, strong hand only calls
	d := Decide(TierMedium, View{Strength: 0.9, Pot: 50, TableBet: 50, Stack: 1000}, rng)
	if d.Action != PlayerActionTypeCall {
		t.Fatalf("expected call with bad odds, got %s", d.Action)
	}
	// odds = 10/(200+10) < 0.3 -> raise 50 + [0, 90]
	d = Decide(TierMedium, View{Strength: 0.9, Pot: 200, TableBet: 10, Stack: 1000}, rng)
	if d.Action != PlayerActionTypeRaise {
		t.Fatalf("expected raise, got %s", d.Action)
	}
	if raise := d.Moved - 10; raise < 50 || raise > 140 {
		t.Fatalf("medium raise size %d out of [50,140]", raise)
	}
	if d.Amount != d.Moved {
		t.Fatalf("amount %d should equal moved %d with no prior bet", d.Amount, d.Moved)
	}
}

func TestDecide_RaiseCappedAtStack(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	d := Decide(TierMaster, View{Strength: 0.95, Pot: 1000, TableBet: 20, OwnBet: 10, Stack: 60}, rng)
	if d.Action == PlayerActionTypeRaise {
		if d.Moved != 60 || d.Amount != 70 {
			t.Fatalf("raise should go all in: %+v", d)
		}
	}
}

func TestDecide_CallAmount(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	d := Decide(TierEasy, View{Strength: 0.3, TableBet: 40, OwnBet: 15, Stack: 500}, rng)
	if d.Action != PlayerActionTypeCall || d.Moved != 25 || d.Amount != 40 {
		t.Fatalf("unexpected call: %+v", d)
	}
}

func TestDecide_MasterBluffRate(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	const trials = 4000
	early, late := 0, 0
	for i := 0; i < trials; i++ {
		if Decide(TierMaster, View{Strength: 0, TableBet: 10, Stack: 1000}, rng).Bluff {
			early++
		}
		if Decide(TierMaster, View{Strength: 0, TableBet: 10, Stack: 1000, CommunityCount: 3}, rng).Bluff {
			late++
		}
	}
	if r := float64(early) / trials; r < 0.22 || r > 0.28 {
		t.Fatalf("early bluff rate %.3f, want ~0.25", r)
	}
	if r := float64(late) / trials; r < 0.12 || r > 0.18 {
		t.Fatalf("late bluff rate %.3f, want ~0.15", r)
	}
}

func TestView_PotOdds(t *testing.T) {
	if (View{}).PotOdds() != 0 {
		t.Fatalf("zero pot and bet must give 0 odds")
	}
	if got := (View{Pot: 30, TableBet: 10}).PotOdds(); got != 0.25 {
		t.Fatalf("odds = %v", got)
	}
}
