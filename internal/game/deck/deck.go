// Package deck provides immutable card primitives and seeded draw piles
// shared by the card-based game families.
package deck

import (
	"errors"
	"fmt"
	"math/rand"
)

// Suit is one of the four French suits.
type Suit string

const (
	Clubs    Suit = "♣"
	Diamonds Suit = "♦"
	Hearts   Suit = "♥"
	Spades   Suit = "♠"
)

// Suits lists all suits in deck order.
var Suits = []Suit{Clubs, Diamonds, Hearts, Spades}

// Rank is a card rank; Two is 2 and Ace is 14.
type Rank int

const (
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

// Ranks lists all ranks in ascending order.
var Ranks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

var rankNames = map[Rank]string{
	Two: "2", Three: "3", Four: "4", Five: "5", Six: "6", Seven: "7",
	Eight: "8", Nine: "9", Ten: "10", Jack: "J", Queen: "Q", King: "K", Ace: "A",
}

// Card is an immutable playing card.
type Card struct {
	Rank Rank
	Suit Suit
}

// String renders the card as rank followed by suit, for example "A♠".
func (c Card) String() string {
	return rankNames[c.Rank] + string(c.Suit)
}

// ErrEmptyPile indicates a draw from a pile with no cards left and no
// discards to reshuffle.
var ErrEmptyPile = errors.New("draw pile is empty")

// Pile is a seeded draw pile with a discard stack. When the draw pile
// runs out, the discards are reshuffled in to continue drawing.
type Pile[T any] struct {
	draw    []T
	discard []T
	rng     *rand.Rand
}

// NewPile builds a pile from the given cards, shuffled with rng.
func NewPile[T any](cards []T, rng *rand.Rand) *Pile[T] {
	p := &Pile[T]{draw: append([]T(nil), cards...), rng: rng}
	p.shuffle()
	return p
}

func (p *Pile[T]) shuffle() {
	p.rng.Shuffle(len(p.draw), func(i, j int) {
		p.draw[i], p.draw[j] = p.draw[j], p.draw[i]
	})
}

// Draw removes and returns the top card, reshuffling discards into the
// draw pile when it is empty.
func (p *Pile[T]) Draw() (T, error) {
	var zero T
	if len(p.draw) == 0 && len(p.discard) > 0 {
		p.draw = p.discard
		p.discard = nil
		p.shuffle()
	}
	if len(p.draw) == 0 {
		return zero, ErrEmptyPile
	}
	top := p.draw[0]
	p.draw = p.draw[1:]
	return top, nil
}

// DrawN draws n cards.
func (p *Pile[T]) DrawN(n int) ([]T, error) {
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		c, err := p.Draw()
		if err != nil {
			return nil, fmt.Errorf("draw %d of %d: %w", i+1, n, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// Reserve guarantees at least n cards are in the draw pile, shuffling
// the discard stack back in ahead of time when the pile runs short.
// Some games reshuffle before a short draw rather than mid-draw.
func (p *Pile[T]) Reserve(n int) {
	if len(p.draw) >= n || len(p.discard) == 0 {
		return
	}
	p.draw = append(p.draw, p.discard...)
	p.discard = nil
	p.shuffle()
}

// Peek returns up to n cards from the top of the draw pile without
// removing them.
func (p *Pile[T]) Peek(n int) []T {
	if n > len(p.draw) {
		n = len(p.draw)
	}
	return append([]T(nil), p.draw[:n]...)
}

// Discard places cards on the discard stack.
func (p *Pile[T]) Discard(cards ...T) {
	p.discard = append(p.discard, cards...)
}

// Remaining reports how many cards are left in the draw pile, excluding
// discards.
func (p *Pile[T]) Remaining() int {
	return len(p.draw)
}

// Discarded reports how many cards are on the discard stack.
func (p *Pile[T]) Discarded() int {
	return len(p.discard)
}

// Standard52 returns a fresh 52-card deck in canonical order.
func Standard52() []Card {
	cards := make([]Card, 0, 52)
	for _, s := range Suits {
		for _, r := range Ranks {
			cards = append(cards, Card{Rank: r, Suit: s})
		}
	}
	return cards
}
