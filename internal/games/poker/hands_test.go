package poker

import (
	"testing"

	"github.com/louisbranch/arena/internal/game/deck"
)

func cards(specs ...string) []deck.Card {
	suits := map[byte]deck.Suit{'c': deck.Clubs, 'd': deck.Diamonds, 'h': deck.Hearts, 's': deck.Spades}
	ranks := map[string]deck.Rank{
		"2": deck.Two, "3": deck.Three, "4": deck.Four, "5": deck.Five, "6": deck.Six,
		"7": deck.Seven, "8": deck.Eight, "9": deck.Nine, "T": deck.Ten,
		"J": deck.Jack, "Q": deck.Queen, "K": deck.King, "A": deck.Ace,
	}
	out := make([]deck.Card, len(specs))
	for i, s := range specs {
		out[i] = deck.Card{Rank: ranks[s[:len(s)-1]], Suit: suits[s[len(s)-1]]}
	}
	return out
}

func TestEvaluateFiveCategories(t *testing.T) {
	tests := []struct {
		name     string
		cards    []deck.Card
		category Category
	}{
		{"royal flush", cards("As", "Ks", "Qs", "Js", "Ts"), RoyalFlush},
		{"straight flush", cards("9h", "8h", "7h", "6h", "5h"), StraightFlush},
		{"four of a kind", cards("Ad", "Ac", "Ah", "As", "2c"), FourOfAKind},
		{"full house", cards("Kd", "Kc", "Kh", "2s", "2c"), FullHouse},
		{"flush", cards("Ad", "Jd", "8d", "5d", "2d"), Flush},
		{"straight", cards("9h", "8c", "7d", "6s", "5h"), Straight},
		{"wheel straight", cards("Ah", "2c", "3d", "4s", "5h"), Straight},
		{"three of a kind", cards("7h", "7c", "7d", "Ks", "2h"), ThreeOfAKind},
		{"two pair", cards("Jh", "Jc", "4d", "4s", "9h"), TwoPair},
		{"one pair", cards("Th", "Tc", "Ad", "7s", "2h"), OnePair},
		{"high card", cards("Ah", "Jc", "8d", "5s", "2h"), HighCard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := EvaluateFive(tt.cards)
			if ev.Category != tt.category {
				t.Fatalf("expected %s, got %s", tt.category, ev.Category)
			}
		})
	}
}

func TestRoyalFlushBeatsFourOfAKind(t *testing.T) {
	royal := EvaluateFive(cards("As", "Ks", "Qs", "Js", "Ts"))
	quads := EvaluateFive(cards("Ad", "Ac", "Ah", "As", "Kc"))
	if Compare(royal, quads) <= 0 {
		t.Fatal("expected royal flush to beat four of a kind")
	}
}

func TestWheelStraightIsFiveHigh(t *testing.T) {
	wheel := EvaluateFive(cards("Ah", "2c", "3d", "4s", "5h"))
	sixHigh := EvaluateFive(cards("2h", "3c", "4d", "5s", "6h"))
	if Compare(sixHigh, wheel) <= 0 {
		t.Fatal("expected six-high straight to beat the wheel")
	}
}

func TestCompareTiebreaksLexicographically(t *testing.T) {
	higherKicker := EvaluateFive(cards("Th", "Tc", "Ad", "7s", "2h"))
	lowerKicker := EvaluateFive(cards("Td", "Ts", "Kd", "7c", "2d"))
	if Compare(higherKicker, lowerKicker) <= 0 {
		t.Fatal("expected ace kicker to beat king kicker")
	}

	tie := EvaluateFive(cards("Ts", "Td", "Ah", "7h", "2s"))
	if Compare(higherKicker, tie) != 0 {
		t.Fatal("expected identical tiebreak values to tie")
	}
}

func TestEvaluateBestUsesAllCombinations(t *testing.T) {
	// Board plays: the straight on the board beats the pocket pair.
	hole := cards("2h", "2c")
	community := cards("5d", "6s", "7h", "8c", "9d")
	ev := EvaluateBest(hole, community)
	if ev.Category != Straight {
		t.Fatalf("expected straight from the board, got %s", ev.Category)
	}
}

func TestWinnersReportsTies(t *testing.T) {
	a := EvaluateBest(cards("Ah", "Kd"), cards("5d", "6s", "7h", "8c", "9d"))
	b := EvaluateBest(cards("As", "Kc"), cards("5d", "6s", "7h", "8c", "9d"))
	winners := Winners([]Eval{a, b})
	if len(winners) != 2 {
		t.Fatalf("expected both hands to tie, got %v", winners)
	}
}
