// Package poker implements multi-hand no-limit Texas Hold'em for two to
// six participants. Players are eliminated when they run out of chips;
// the last player standing wins.
package poker

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/louisbranch/arena/internal/game/deck"
	"github.com/louisbranch/arena/internal/game/domain"
	"github.com/louisbranch/arena/internal/game/engine"
)

// GameType identifies this family in the registry.
const GameType = "poker"

const (
	defaultStartingChips = 1000
	defaultSmallBlind    = 10
	defaultBigBlind      = 20
)

// ErrPlayerCount indicates an unsupported participant count.
var ErrPlayerCount = errors.New("poker requires 2 to 6 participants")

type street int

const (
	preFlop street = iota
	flop
	turn
	river
	showdown
)

var streetNames = map[street]string{
	preFlop:  "Pre Flop",
	flop:     "Flop",
	turn:     "Turn",
	river:    "River",
	showdown: "Showdown",
}

// New builds a poker engine.
func New(cfg domain.Config, rng *rand.Rand) (engine.Game, error) {
	if len(cfg.Participants) < 2 || len(cfg.Participants) > 6 {
		return nil, fmt.Errorf("%w, got %d", ErrPlayerCount, len(cfg.Participants))
	}
	return &game{cfg: cfg, rng: rng}, nil
}

type game struct {
	cfg domain.Config
	rng *rand.Rand

	names      map[string]string
	playerIDs  []string
	chips      map[string]int
	eliminated map[string]bool

	dealerIndex int
	handNumber  int
	smallBlind  int
	bigBlind    int
	maxHands    int
	bankroll    int

	handActive   bool
	needsNewHand bool
	street       street
	cards        *deck.Pile[deck.Card]
	hole         map[string][]deck.Card
	community    []deck.Card
	pot          int
	currentBet   int
	minRaise     int
	roundBets    map[string]int
	folded       map[string]bool
	allIn        map[string]bool
	acted        map[string]bool
	queue        []string
	actingID     string
	dealerID     string
	history      []string

	round int
}

func (g *game) Setup() error {
	g.names = make(map[string]string, len(g.cfg.Participants))
	g.playerIDs = make([]string, 0, len(g.cfg.Participants))
	for _, p := range g.cfg.Participants {
		g.playerIDs = append(g.playerIDs, p.ID)
		g.names[p.ID] = p.Name
	}
	starting := g.cfg.IntOption("starting_chips", defaultStartingChips)
	g.smallBlind = g.cfg.IntOption("small_blind", defaultSmallBlind)
	g.bigBlind = g.cfg.IntOption("big_blind", defaultBigBlind)
	g.maxHands = g.cfg.IntOption("max_hands", g.cfg.MaxRounds*5)

	g.chips = make(map[string]int, len(g.playerIDs))
	for _, id := range g.playerIDs {
		g.chips[id] = starting
	}
	g.bankroll = starting * len(g.playerIDs)
	g.eliminated = make(map[string]bool)
	g.needsNewHand = true
	return nil
}

// activeSeats lists players still in the tournament, in seat order.
func (g *game) activeSeats() []string {
	seats := make([]string, 0, len(g.playerIDs))
	for _, id := range g.playerIDs {
		if !g.eliminated[id] {
			seats = append(seats, id)
		}
	}
	return seats
}

// handActiveIDs lists players still in the current hand.
func (g *game) handActiveIDs() []string {
	ids := make([]string, 0, len(g.playerIDs))
	for _, id := range g.activeSeats() {
		if !g.folded[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// canActIDs lists players who may still take betting actions.
func (g *game) canActIDs() []string {
	ids := make([]string, 0, len(g.playerIDs))
	for _, id := range g.handActiveIDs() {
		if !g.allIn[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func (g *game) NextPhase() (domain.Phase, error) {
	for {
		g.round++

		if len(g.activeSeats()) <= 1 || (g.handNumber >= g.maxHands && g.needsNewHand) {
			return domain.Phase{
				Kind:        domain.PhaseGameOver,
				Round:       g.round,
				Description: "Tournament over.",
			}, nil
		}

		if g.needsNewHand {
			g.startHand()
			return domain.Phase{
				Kind:  domain.PhaseResolution,
				Round: g.round,
				Description: fmt.Sprintf("Hand #%d begins. Dealer: %s. Blinds: %d/%d.",
					g.handNumber, g.names[g.dealerID], g.smallBlind, g.bigBlind),
			}, nil
		}

		if g.handOver() {
			if err := g.resolveHand(); err != nil {
				return domain.Phase{}, err
			}
			tail := g.history
			if len(tail) > 6 {
				tail = tail[len(tail)-6:]
			}
			return domain.Phase{
				Kind:  domain.PhaseResolution,
				Round: g.round,
				Description: fmt.Sprintf("Hand #%d resolved.\n%s",
					g.handNumber, strings.Join(tail, "\n")),
			}, nil
		}

		if len(g.queue) == 0 || g.bettingComplete() {
			g.advanceStreet()
			if g.street == showdown {
				continue
			}
			if len(g.queue) == 0 {
				g.runOutBoard()
				continue
			}
		}

		next := ""
		for len(g.queue) > 0 {
			candidate := g.queue[0]
			g.queue = g.queue[1:]
			if !g.folded[candidate] && !g.allIn[candidate] {
				next = candidate
				break
			}
		}
		if next == "" {
			continue
		}

		g.actingID = next
		return domain.Phase{
			Kind:  domain.PhaseAction,
			Round: g.round,
			Description: fmt.Sprintf("Hand #%d - %s: %s's turn to act.",
				g.handNumber, streetNames[g.street], g.names[next]),
			ActiveIDs: []string{next},
		}, nil
	}
}

func (g *game) startHand() {
	g.handNumber++
	g.handActive = true
	g.needsNewHand = false
	g.street = preFlop
	g.community = nil
	g.pot = 0
	g.currentBet = 0
	g.minRaise = g.bigBlind * 2
	g.roundBets = make(map[string]int)
	g.folded = make(map[string]bool)
	g.allIn = make(map[string]bool)
	g.acted = make(map[string]bool)
	g.history = nil
	g.queue = nil

	seats := g.activeSeats()
	g.cards = deck.NewPile(deck.Standard52(), g.rng)
	g.hole = make(map[string][]deck.Card, len(seats))
	for _, id := range seats {
		cards, _ := g.cards.DrawN(2)
		g.hole[id] = cards
	}

	n := len(seats)
	dealerIdx := g.dealerIndex % n
	sbIdx := (dealerIdx + 1) % n
	bbIdx := (dealerIdx + 2) % n
	// Heads-up: the dealer posts the small blind and acts first pre-flop.
	if n == 2 {
		sbIdx = dealerIdx
		bbIdx = (dealerIdx + 1) % n
	}
	g.dealerID = seats[dealerIdx]
	sbID, bbID := seats[sbIdx], seats[bbIdx]

	sbAmount := min(g.smallBlind, g.chips[sbID])
	bbAmount := min(g.bigBlind, g.chips[bbID])
	g.chips[sbID] -= sbAmount
	g.chips[bbID] -= bbAmount
	g.pot += sbAmount + bbAmount
	g.roundBets[sbID] = sbAmount
	g.roundBets[bbID] = bbAmount
	g.currentBet = bbAmount
	g.minRaise = bbAmount * 2
	if g.chips[sbID] == 0 {
		g.allIn[sbID] = true
	}
	if g.chips[bbID] == 0 {
		g.allIn[bbID] = true
	}
	g.history = append(g.history,
		fmt.Sprintf("%s posts small blind %d", g.names[sbID], sbAmount),
		fmt.Sprintf("%s posts big blind %d", g.names[bbID], bbAmount))

	// Pre-flop action starts left of the big blind and wraps around.
	for i := 0; i < n; i++ {
		id := seats[(bbIdx+1+i)%n]
		if !g.allIn[id] {
			g.queue = append(g.queue, id)
		}
	}
}

func (g *game) advanceStreet() {
	if g.street >= showdown {
		return
	}
	g.street++
	switch g.street {
	case flop:
		cards, _ := g.cards.DrawN(3)
		g.community = append(g.community, cards...)
		g.history = append(g.history, fmt.Sprintf("--- Flop: %s ---", renderCards(g.community)))
	case turn, river:
		card, _ := g.cards.Draw()
		g.community = append(g.community, card)
		g.history = append(g.history, fmt.Sprintf("--- %s: %s ---", streetNames[g.street], renderCards(g.community)))
	}

	g.currentBet = 0
	g.minRaise = g.bigBlind
	g.roundBets = make(map[string]int)
	g.acted = make(map[string]bool)
	g.queue = nil

	if g.street != showdown {
		// Post-flop action starts left of the dealer.
		seats := g.activeSeats()
		n := len(seats)
		dealerIdx := 0
		for i, id := range seats {
			if id == g.dealerID {
				dealerIdx = i
				break
			}
		}
		for i := 1; i <= n; i++ {
			id := seats[(dealerIdx+i)%n]
			if !g.folded[id] && !g.allIn[id] {
				g.queue = append(g.queue, id)
			}
		}
	}
}

// bettingComplete reports whether every player who can act has matched
// the current bet and acted at least once since the last raise.
func (g *game) bettingComplete() bool {
	canAct := g.canActIDs()
	if len(canAct) <= 1 {
		if len(canAct) == 1 {
			id := canAct[0]
			if !g.acted[id] && g.currentBet <= g.roundBets[id] {
				return len(g.queue) == 0
			}
		}
		return true
	}
	for _, id := range canAct {
		if g.roundBets[id] < g.currentBet {
			return false
		}
		if !g.acted[id] {
			return false
		}
	}
	return true
}

func (g *game) handOver() bool {
	if g.street == showdown {
		return true
	}
	return len(g.handActiveIDs()) <= 1
}

func (g *game) runOutBoard() {
	for len(g.community) < 5 {
		card, _ := g.cards.Draw()
		g.community = append(g.community, card)
	}
	g.street = showdown
}

// resolveHand awards the pot, marks eliminations, advances the dealer
// button and verifies chip conservation.
func (g *game) resolveHand() error {
	active := g.handActiveIDs()

	switch {
	case len(active) == 1:
		winner := active[0]
		g.chips[winner] += g.pot
		g.history = append(g.history,
			fmt.Sprintf("%s wins %d chips (all others folded).", g.names[winner], g.pot))
	case len(active) > 1:
		g.runOutBoard()
		hands := make([]Eval, len(active))
		g.history = append(g.history, fmt.Sprintf("--- Showdown: %s ---", renderCards(g.community)))
		for i, id := range active {
			hands[i] = EvaluateBest(g.hole[id], g.community)
			g.history = append(g.history,
				fmt.Sprintf("%s shows %s -- %s", g.names[id], renderCards(g.hole[id]), hands[i].Category))
		}
		winners := Winners(hands)
		// Split pots assign remainder chips one each to the earliest
		// winners in seat comparison order.
		split := g.pot / len(winners)
		remainder := g.pot % len(winners)
		for _, idx := range winners {
			award := split
			if remainder > 0 {
				award++
				remainder--
			}
			id := active[idx]
			g.chips[id] += award
			g.history = append(g.history,
				fmt.Sprintf("%s wins %d chips with %s.", g.names[id], award, hands[idx].Category))
		}
	}
	g.pot = 0

	total := 0
	for _, id := range g.playerIDs {
		total += g.chips[id]
	}
	if total != g.bankroll {
		return fmt.Errorf("%w: chip total %d, expected %d", domain.ErrInvariantViolation, total, g.bankroll)
	}

	for _, id := range g.activeSeats() {
		if g.chips[id] <= 0 {
			g.eliminated[id] = true
			g.history = append(g.history, fmt.Sprintf("%s is eliminated!", g.names[id]))
		}
	}
	if remaining := len(g.activeSeats()); remaining > 1 {
		g.dealerIndex = (g.dealerIndex + 1) % remaining
	}
	g.handActive = false
	g.needsNewHand = true
	return nil
}

func (g *game) LegalActions(participantID string, _ domain.Phase) []domain.ActionSchema {
	myBet := g.roundBets[participantID]
	schemas := []domain.ActionSchema{{
		Name:        "fold",
		Description: "Fold your hand and forfeit any chips already in the pot.",
	}}
	if g.currentBet <= myBet {
		schemas = append(schemas, domain.ActionSchema{
			Name:        "check",
			Description: "Pass your action without betting.",
		}, domain.ActionSchema{
			Name:        "bet",
			Description: "Place a bet when no bet has been made this round.",
			Params: []domain.ParamSchema{{
				Name: "amount", Type: "int",
				Description: "Chips to bet. Betting more than your stack puts you all-in.",
			}},
		})
	} else {
		schemas = append(schemas, domain.ActionSchema{
			Name:        "call",
			Description: fmt.Sprintf("Match the current bet of %d to stay in the hand.", g.currentBet),
		})
	}
	if g.currentBet > 0 || myBet > 0 {
		schemas = append(schemas, domain.ActionSchema{
			Name:        "raise",
			Description: fmt.Sprintf("Raise the current bet to a new total. Minimum raise is to %d; all-in for less is allowed.", g.minRaise),
			Params: []domain.ParamSchema{{
				Name: "amount", Type: "int",
				Description: "The total bet you want to have in this round.",
			}},
		})
	}
	return schemas
}

func (g *game) Apply(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	if participantID != g.actingID {
		return domain.ActionOutcome{}, fmt.Errorf("%w: it is not %s's turn", domain.ErrIllegalAction, participantID)
	}

	var result string
	var err error
	switch action.Name {
	case "fold":
		g.folded[participantID] = true
		g.acted[participantID] = true
		result = "Folded."
	case "check":
		result, err = g.applyCheck(participantID)
	case "call":
		result, err = g.applyCall(participantID)
	case "bet":
		result, err = g.applyBet(participantID, action)
	case "raise":
		result, err = g.applyRaise(participantID, action)
	default:
		err = fmt.Errorf("%w: unknown action %q", domain.ErrIllegalAction, action.Name)
	}
	if err != nil {
		return domain.ActionOutcome{}, err
	}

	g.history = append(g.history, fmt.Sprintf("%s: %s - %s", g.names[participantID], action.Name, result))
	return domain.ActionOutcome{
		ActorID: participantID,
		Name:    action.Name,
		Args:    action.Args,
		Result:  result,
		Success: true,
	}, nil
}

func (g *game) applyCheck(id string) (string, error) {
	if g.currentBet > g.roundBets[id] {
		return "", fmt.Errorf("%w: cannot check, there is a bet of %d to match", domain.ErrIllegalAction, g.currentBet)
	}
	g.acted[id] = true
	return "Checked.", nil
}

func (g *game) applyCall(id string) (string, error) {
	toCall := g.currentBet - g.roundBets[id]
	if toCall <= 0 {
		return "", fmt.Errorf("%w: nothing to call, use check instead", domain.ErrIllegalAction)
	}
	actual := min(toCall, g.chips[id])
	g.commit(id, actual)
	g.acted[id] = true
	return fmt.Sprintf("Called %d chips%s.", actual, g.allInSuffix(id)), nil
}

func (g *game) applyBet(id string, action domain.Action) (string, error) {
	if g.currentBet > g.roundBets[id] {
		return "", fmt.Errorf("%w: there is already a bet of %d, use call or raise", domain.ErrIllegalAction, g.currentBet)
	}
	amount, ok := action.IntArg("amount")
	if !ok {
		return "", fmt.Errorf("%w: bet requires an integer amount", domain.ErrMalformedAction)
	}
	if amount <= 0 {
		return "", fmt.Errorf("%w: bet amount must be positive", domain.ErrIllegalAction)
	}
	actual := min(amount, g.chips[id])
	g.commit(id, actual)
	g.currentBet = g.roundBets[id]
	g.minRaise = g.roundBets[id] * 2
	g.acted[id] = true
	g.reopenBetting(id)
	return fmt.Sprintf("Bet %d chips%s.", actual, g.allInSuffix(id)), nil
}

func (g *game) applyRaise(id string, action domain.Action) (string, error) {
	if g.currentBet == 0 && g.roundBets[id] == 0 {
		return "", fmt.Errorf("%w: no bet to raise, use bet instead", domain.ErrIllegalAction)
	}
	amount, ok := action.IntArg("amount")
	if !ok {
		return "", fmt.Errorf("%w: raise requires an integer amount", domain.ErrMalformedAction)
	}
	if amount <= g.currentBet {
		return "", fmt.Errorf("%w: raise must exceed the current bet of %d", domain.ErrIllegalAction, g.currentBet)
	}
	additional := amount - g.roundBets[id]
	if additional <= 0 {
		return "", fmt.Errorf("%w: you already have %d committed, raise total must exceed that", domain.ErrIllegalAction, g.roundBets[id])
	}
	// A short all-in is allowed below the minimum raise.
	if amount < g.minRaise && additional < g.chips[id] {
		return "", fmt.Errorf("%w: minimum raise is to %d, raise more or go all-in", domain.ErrIllegalAction, g.minRaise)
	}
	actual := min(additional, g.chips[id])
	g.commit(id, actual)
	newTotal := g.roundBets[id]
	increment := newTotal - g.currentBet
	g.currentBet = newTotal
	g.minRaise = newTotal + max(increment, 1)
	g.acted[id] = true
	g.reopenBetting(id)
	return fmt.Sprintf("Raised to %d chips total%s.", newTotal, g.allInSuffix(id)), nil
}

func (g *game) commit(id string, amount int) {
	g.chips[id] -= amount
	g.roundBets[id] += amount
	g.pot += amount
	if g.chips[id] == 0 {
		g.allIn[id] = true
	}
}

// reopenBetting rebuilds the action queue after a bet or raise so every
// other active player gets a chance to respond.
func (g *game) reopenBetting(raiserID string) {
	seats := g.activeSeats()
	n := len(seats)
	raiserIdx := -1
	for i, id := range seats {
		if id == raiserID {
			raiserIdx = i
			break
		}
	}
	if raiserIdx < 0 {
		return
	}
	g.queue = nil
	for i := 1; i < n; i++ {
		id := seats[(raiserIdx+i)%n]
		if !g.folded[id] && !g.allIn[id] {
			g.queue = append(g.queue, id)
		}
	}
}

func (g *game) allInSuffix(id string) string {
	if g.allIn[id] {
		return " (all-in)"
	}
	return ""
}

func (g *game) View(participantID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are playing Texas Hold'em as %s.\n\n", g.names[participantID])
	fmt.Fprintf(&b, "Hand #%d - %s\n", g.handNumber, streetNames[g.street])
	fmt.Fprintf(&b, "Your hole cards: %s\n", renderCards(g.hole[participantID]))
	if len(g.community) > 0 {
		fmt.Fprintf(&b, "Community cards: %s\n", renderCards(g.community))
	}
	fmt.Fprintf(&b, "Pot: %d | Current bet: %d | Your bet this round: %d | To call: %d\n",
		g.pot, g.currentBet, g.roundBets[participantID], max(0, g.currentBet-g.roundBets[participantID]))
	fmt.Fprintf(&b, "Minimum raise total: %d\n\n", g.minRaise)
	b.WriteString("Stacks:\n")
	for _, id := range g.playerIDs {
		status := ""
		switch {
		case g.eliminated[id]:
			status = " (eliminated)"
		case g.folded[id]:
			status = " (folded)"
		case g.allIn[id]:
			status = " (all-in)"
		}
		marker := ""
		if id == g.dealerID {
			marker = " [dealer]"
		}
		fmt.Fprintf(&b, "  %s: %d chips%s%s\n", g.names[id], g.chips[id], status, marker)
	}
	if len(g.history) > 0 {
		b.WriteString("\nHand so far:\n")
		for _, line := range g.history {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	return b.String()
}

// DefaultAction checks when free and folds when facing a bet.
func (g *game) DefaultAction(participantID string, _ domain.Phase) domain.Action {
	if g.currentBet <= g.roundBets[participantID] {
		return domain.Action{Name: "check"}
	}
	return domain.Action{Name: "fold"}
}

func (g *game) Terminal() (domain.Outcome, bool) {
	active := g.activeSeats()
	if len(active) <= 1 {
		losers := make([]string, 0, len(g.playerIDs))
		for _, id := range g.playerIDs {
			if len(active) == 0 || id != active[0] {
				losers = append(losers, id)
			}
		}
		return domain.Outcome{
			GameType:  GameType,
			WinnerIDs: active,
			LoserIDs:  losers,
			Ranking:   g.chipRanking(g.playerIDs),
			Metadata: map[string]any{
				domain.MetadataTermination: string(domain.TerminationWin),
				"hands_played":             g.handNumber,
				"final_chips":              g.finalChips(),
			},
		}, true
	}
	if g.handNumber >= g.maxHands && g.needsNewHand {
		ranking := g.chipRanking(active)
		losers := make([]string, 0, len(g.playerIDs))
		for _, id := range g.playerIDs {
			if id != ranking[0] {
				losers = append(losers, id)
			}
		}
		return domain.Outcome{
			GameType:  GameType,
			WinnerIDs: []string{ranking[0]},
			LoserIDs:  losers,
			Ranking:   ranking,
			Metadata: map[string]any{
				domain.MetadataTermination: string(domain.TerminationRoundCap),
				"hands_played":             g.handNumber,
				"final_chips":              g.finalChips(),
			},
		}, true
	}
	return domain.Outcome{}, false
}

// chipRanking sorts ids by chip count descending, stable on seat order.
func (g *game) chipRanking(ids []string) []string {
	ranking := append([]string(nil), ids...)
	sort.SliceStable(ranking, func(i, j int) bool {
		return g.chips[ranking[i]] > g.chips[ranking[j]]
	})
	return ranking
}

func (g *game) finalChips() map[string]int {
	out := make(map[string]int, len(g.chips))
	for id, c := range g.chips {
		out[id] = c
	}
	return out
}

func renderCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
