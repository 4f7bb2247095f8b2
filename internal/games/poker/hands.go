package poker

import (
	"sort"

	"github.com/louisbranch/arena/internal/game/deck"
)

// Category ranks hand classes from high card (weakest) to royal flush.
type Category int

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

var categoryNames = map[Category]string{
	HighCard:      "High Card",
	OnePair:       "One Pair",
	TwoPair:       "Two Pair",
	ThreeOfAKind:  "Three of a Kind",
	Straight:      "Straight",
	Flush:         "Flush",
	FullHouse:     "Full House",
	FourOfAKind:   "Four of a Kind",
	StraightFlush: "Straight Flush",
	RoyalFlush:    "Royal Flush",
}

// String returns the human-readable category name.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "Unknown"
}

// Eval is an evaluated hand: the category plus ordered tiebreak values,
// compared lexicographically when categories match.
type Eval struct {
	Category  Category
	Tiebreaks []int
}

// Compare returns >0 when a beats b, <0 when b beats a, 0 on an exact
// tie.
func Compare(a, b Eval) int {
	if a.Category != b.Category {
		return int(a.Category) - int(b.Category)
	}
	for i := 0; i < len(a.Tiebreaks) && i < len(b.Tiebreaks); i++ {
		if a.Tiebreaks[i] != b.Tiebreaks[i] {
			return a.Tiebreaks[i] - b.Tiebreaks[i]
		}
	}
	return 0
}

// EvaluateFive evaluates exactly five cards.
func EvaluateFive(cards []deck.Card) Eval {
	ranks := make([]int, 5)
	for i, c := range cards {
		ranks[i] = int(c.Rank)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))

	flush := true
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			flush = false
			break
		}
	}

	unique := uniqueDesc(ranks)
	straight := false
	straightHigh := 0
	if len(unique) == 5 {
		switch {
		case unique[0]-unique[4] == 4:
			straight = true
			straightHigh = unique[0]
		case unique[0] == int(deck.Ace) && unique[1] == int(deck.Five):
			// Wheel: A-2-3-4-5 plays as a five-high straight.
			straight = true
			straightHigh = int(deck.Five)
		}
	}

	if straight && flush {
		if straightHigh == int(deck.Ace) {
			return Eval{Category: RoyalFlush, Tiebreaks: []int{straightHigh}}
		}
		return Eval{Category: StraightFlush, Tiebreaks: []int{straightHigh}}
	}

	groups := groupByCount(ranks)
	switch pattern(groups) {
	case "41":
		return Eval{Category: FourOfAKind, Tiebreaks: []int{groups[0].rank, groups[1].rank}}
	case "32":
		return Eval{Category: FullHouse, Tiebreaks: []int{groups[0].rank, groups[1].rank}}
	}
	if flush {
		return Eval{Category: Flush, Tiebreaks: ranks}
	}
	if straight {
		return Eval{Category: Straight, Tiebreaks: []int{straightHigh}}
	}
	switch pattern(groups) {
	case "311":
		return Eval{Category: ThreeOfAKind, Tiebreaks: []int{groups[0].rank, groups[1].rank, groups[2].rank}}
	case "221":
		return Eval{Category: TwoPair, Tiebreaks: []int{groups[0].rank, groups[1].rank, groups[2].rank}}
	case "2111":
		return Eval{Category: OnePair, Tiebreaks: []int{groups[0].rank, groups[1].rank, groups[2].rank, groups[3].rank}}
	}
	return Eval{Category: HighCard, Tiebreaks: ranks}
}

// EvaluateBest evaluates the best five-card hand from two hole cards
// and up to five community cards, checking every 5-card subset.
func EvaluateBest(hole, community []deck.Card) Eval {
	all := append(append([]deck.Card(nil), hole...), community...)
	best := Eval{Category: -1}
	combo := make([]deck.Card, 5)
	var recurse func(start, depth int)
	recurse = func(start, depth int) {
		if depth == 5 {
			ev := EvaluateFive(combo)
			if best.Category < 0 || Compare(ev, best) > 0 {
				best = ev
			}
			return
		}
		for i := start; i <= len(all)-(5-depth); i++ {
			combo[depth] = all[i]
			recurse(i+1, depth+1)
		}
	}
	recurse(0, 0)
	return best
}

// Winners returns the indices of the best hand(s); ties are possible.
func Winners(hands []Eval) []int {
	if len(hands) == 0 {
		return nil
	}
	best := []int{0}
	for i := 1; i < len(hands); i++ {
		cmp := Compare(hands[i], hands[best[0]])
		if cmp > 0 {
			best = []int{i}
		} else if cmp == 0 {
			best = append(best, i)
		}
	}
	return best
}

type rankGroup struct {
	rank  int
	count int
}

// groupByCount groups ranks by frequency, ordered by count then rank
// descending, so groups[0] is always the dominant group.
func groupByCount(ranks []int) []rankGroup {
	freq := make(map[int]int)
	for _, r := range ranks {
		freq[r]++
	}
	groups := make([]rankGroup, 0, len(freq))
	for r, c := range freq {
		groups = append(groups, rankGroup{rank: r, count: c})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})
	return groups
}

func pattern(groups []rankGroup) string {
	buf := make([]byte, len(groups))
	for i, g := range groups {
		buf[i] = byte('0' + g.count)
	}
	return string(buf)
}

func uniqueDesc(sortedDesc []int) []int {
	out := make([]int, 0, len(sortedDesc))
	for i, r := range sortedDesc {
		if i == 0 || r != sortedDesc[i-1] {
			out = append(out, r)
		}
	}
	return out
}
