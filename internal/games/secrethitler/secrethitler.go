// Package secrethitler implements the hidden-role game Secret Hitler
// for five to ten participants. Rounds cycle through discussion,
// chancellor nomination, a government vote and a legislative session,
// with presidential powers unlocking as fascist policies are enacted.
package secrethitler

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/louisbranch/arena/internal/game/deck"
	"github.com/louisbranch/arena/internal/game/domain"
	"github.com/louisbranch/arena/internal/game/engine"
)

// GameType identifies this family in the registry.
const GameType = "secret_hitler"

const (
	minPlayers = 5
	maxPlayers = 10

	liberalPoliciesToWin = 5
	fascistPoliciesToWin = 6
	failedElectionsChaos = 3
)

// ErrPlayerCount indicates an unsupported participant count.
var ErrPlayerCount = errors.New("secret hitler requires 5 to 10 participants")

type policy string

const (
	policyLiberal policy = "Liberal"
	policyFascist policy = "Fascist"
)

// subPhase names one step of the round state machine; it is surfaced as
// the phase label.
type subPhase string

const (
	subDiscussion           subPhase = "discussion"
	subNomination           subPhase = "nomination"
	subVoting               subPhase = "voting"
	subVoteResult           subPhase = "vote_result"
	subPresidentDiscard     subPhase = "president_discard"
	subChancellorEnact      subPhase = "chancellor_enact"
	subPolicyEnacted        subPhase = "policy_enacted"
	subPowerInvestigate     subPhase = "power_investigate"
	subPowerExecution       subPhase = "power_execution"
	subPowerSpecialElection subPhase = "power_special_election"
	subPowerPeek            subPhase = "power_peek"
	subRoundEnd             subPhase = "round_end"
)

// Presidential power names as returned by presidentialPower.
const (
	powerInvestigate     = "investigate"
	powerExecution       = "execution"
	powerSpecialElection = "special_election"
	powerPeek            = "peek"
)

// New builds a secret hitler engine. Role assignment, seat order and
// the policy deck all draw from rng.
func New(cfg domain.Config, rng *rand.Rand) (engine.Game, error) {
	if len(cfg.Participants) < minPlayers || len(cfg.Participants) > maxPlayers {
		return nil, fmt.Errorf("%w, got %d", ErrPlayerCount, len(cfg.Participants))
	}
	return &game{cfg: cfg, rng: rng}, nil
}

type game struct {
	cfg domain.Config
	rng *rand.Rand

	names     map[string]string
	seatOrder []string
	roles     map[string]domain.Role
	alive     map[string]bool

	policies        *deck.Pile[policy]
	liberalEnacted  int
	fascistEnacted  int
	electionTracker int

	presidentIndex      int
	presidentID         string
	chancellorNomineeID string
	chancellorID        string
	prevPresidentID     string
	prevChancellorID    string
	termLimited         map[string]bool
	specialElectionID   string

	votes              map[string]string
	drawnPolicies      []policy
	chancellorPolicies []policy
	enactedPolicy      policy
	peeked             []policy

	investigated            map[string]bool
	hitlerExecuted          bool
	hitlerElectedChancellor bool

	events []string

	sub         subPhase
	afterVote   subPhase
	afterPolicy subPhase
	round       int
}

func (g *game) Setup() error {
	g.names = make(map[string]string, len(g.cfg.Participants))
	g.seatOrder = make([]string, 0, len(g.cfg.Participants))
	g.alive = make(map[string]bool, len(g.cfg.Participants))
	for _, p := range g.cfg.Participants {
		g.seatOrder = append(g.seatOrder, p.ID)
		g.names[p.ID] = p.Name
		g.alive[p.ID] = true
	}
	g.rng.Shuffle(len(g.seatOrder), func(i, j int) {
		g.seatOrder[i], g.seatOrder[j] = g.seatOrder[j], g.seatOrder[i]
	})

	g.roles = assignRoles(g.seatOrder, g.rng)

	cards := make([]policy, 0, 17)
	for i := 0; i < 6; i++ {
		cards = append(cards, policyLiberal)
	}
	for i := 0; i < 11; i++ {
		cards = append(cards, policyFascist)
	}
	g.policies = deck.NewPile(cards, g.rng)

	g.termLimited = make(map[string]bool)
	g.investigated = make(map[string]bool)
	g.votes = make(map[string]string)
	g.presidentIndex = -1
	g.round = 1
	g.advancePresident()
	return nil
}

func (g *game) NextPhase() (domain.Phase, error) {
	if _, done := g.Terminal(); done {
		return domain.Phase{
			Kind:        domain.PhaseGameOver,
			Round:       g.round,
			Description: "The game is over.",
		}, nil
	}

	next := g.nextSub()
	if next == subRoundEnd {
		g.beginNextRound()
		next = subDiscussion
	}
	g.sub = next

	phase := domain.Phase{Label: string(g.sub), Round: g.round}
	switch g.sub {
	case subDiscussion:
		phase.Kind = domain.PhaseDiscussion
		phase.Description = fmt.Sprintf("Round %d: open discussion", g.round)
		phase.ActiveIDs = g.aliveIDs()

	case subNomination:
		phase.Kind = domain.PhaseAction
		phase.Description = fmt.Sprintf("President %s nominates a Chancellor", g.names[g.presidentID])
		phase.ActiveIDs = []string{g.presidentID}

	case subVoting:
		g.votes = make(map[string]string)
		phase.Kind = domain.PhaseVoting
		phase.Description = fmt.Sprintf("Vote on President %s and Chancellor %s",
			g.names[g.presidentID], g.names[g.chancellorNomineeID])
		phase.ActiveIDs = g.aliveIDs()

	case subVoteResult:
		if err := g.resolveVote(); err != nil {
			return domain.Phase{}, err
		}
		phase.Kind = domain.PhaseResolution
		phase.Description = "Tallying votes"

	case subPresidentDiscard:
		phase.Kind = domain.PhaseAction
		phase.Description = "President discards one of three policies"
		phase.ActiveIDs = []string{g.presidentID}

	case subChancellorEnact:
		phase.Kind = domain.PhaseAction
		phase.Description = "Chancellor enacts one of two policies"
		phase.ActiveIDs = []string{g.chancellorID}

	case subPolicyEnacted:
		g.resolvePolicyEnacted()
		phase.Kind = domain.PhaseResolution
		phase.Description = "Policy enacted, checking for presidential powers"

	case subPowerInvestigate:
		phase.Kind = domain.PhaseAction
		phase.Description = "Presidential power: investigate loyalty"
		phase.ActiveIDs = []string{g.presidentID}

	case subPowerExecution:
		phase.Kind = domain.PhaseAction
		phase.Description = "Presidential power: execution"
		phase.ActiveIDs = []string{g.presidentID}

	case subPowerSpecialElection:
		phase.Kind = domain.PhaseAction
		phase.Description = "Presidential power: special election"
		phase.ActiveIDs = []string{g.presidentID}

	case subPowerPeek:
		phase.Kind = domain.PhaseAction
		phase.Description = "Presidential power: policy peek"
		phase.ActiveIDs = []string{g.presidentID}
	}
	return phase, nil
}

// nextSub computes the upcoming sub-phase. Transitions that depend on
// a resolution result read the pointer the resolution left behind.
func (g *game) nextSub() subPhase {
	switch g.sub {
	case "":
		return subDiscussion
	case subDiscussion:
		return subNomination
	case subNomination:
		return subVoting
	case subVoting:
		return subVoteResult
	case subVoteResult:
		return g.afterVote
	case subPresidentDiscard:
		return subChancellorEnact
	case subChancellorEnact:
		return subPolicyEnacted
	case subPolicyEnacted:
		return g.afterPolicy
	default:
		// All presidential powers end the round.
		return subRoundEnd
	}
}

func (g *game) LegalActions(string, domain.Phase) []domain.ActionSchema {
	statement := domain.ActionSchema{
		Name:        "statement",
		Description: "Make a public statement to the group.",
		Params: []domain.ParamSchema{{
			Name:        "statement",
			Type:        "string",
			Description: "What you want to say. Share suspicions or arguments.",
		}},
	}
	target := domain.ParamSchema{
		Name:        "target",
		Type:        "string",
		Description: "ID of the player you are targeting.",
	}

	switch g.sub {
	case subDiscussion, subPowerPeek:
		return []domain.ActionSchema{statement}

	case subNomination:
		return []domain.ActionSchema{{
			Name:        "nominate",
			Description: "Nominate an eligible player as Chancellor.",
			Params:      []domain.ParamSchema{target},
		}}

	case subVoting:
		return []domain.ActionSchema{{
			Name:        "vote",
			Description: "Vote on the proposed government.",
			Params: []domain.ParamSchema{{
				Name:        "vote",
				Type:        "string",
				Description: "Either \"ja\" to approve or \"nein\" to reject.",
			}},
		}}

	case subPresidentDiscard:
		return []domain.ActionSchema{{
			Name:        "discard",
			Description: "Discard one of the three drawn policies; the other two go to the Chancellor.",
			Params: []domain.ParamSchema{{
				Name:        "index",
				Type:        "integer",
				Description: "Index (0, 1 or 2) of the policy to discard.",
			}},
		}}

	case subChancellorEnact:
		return []domain.ActionSchema{{
			Name:        "enact",
			Description: "Enact one of the two policies passed to you.",
			Params: []domain.ParamSchema{{
				Name:        "index",
				Type:        "integer",
				Description: "Index (0 or 1) of the policy to enact.",
			}},
		}}

	case subPowerInvestigate:
		return []domain.ActionSchema{{
			Name:        "investigate",
			Description: "Learn a player's party membership card (Hitler's shows Fascist).",
			Params:      []domain.ParamSchema{target},
		}}

	case subPowerExecution:
		return []domain.ActionSchema{{
			Name:        "execute",
			Description: "Execute a player, removing them from the game.",
			Params:      []domain.ParamSchema{target},
		}}

	case subPowerSpecialElection:
		return []domain.ActionSchema{{
			Name:        "choose_president",
			Description: "Choose the next presidential candidate.",
			Params:      []domain.ParamSchema{target},
		}}
	}
	return nil
}

func (g *game) Apply(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	if !g.alive[participantID] {
		return domain.ActionOutcome{}, fmt.Errorf("%w: %s is dead", domain.ErrIllegalAction, participantID)
	}

	switch g.sub {
	case subDiscussion, subPowerPeek:
		return g.applyStatement(participantID, action)
	case subNomination:
		return g.applyNomination(participantID, action)
	case subVoting:
		return g.applyVote(participantID, action)
	case subPresidentDiscard:
		return g.applyDiscard(participantID, action)
	case subChancellorEnact:
		return g.applyEnact(participantID, action)
	case subPowerInvestigate:
		return g.applyInvestigate(participantID, action)
	case subPowerExecution:
		return g.applyExecute(participantID, action)
	case subPowerSpecialElection:
		return g.applySpecialElection(participantID, action)
	}
	return domain.ActionOutcome{}, fmt.Errorf("%w: no actions in %s", domain.ErrIllegalAction, g.sub)
}

func (g *game) applyStatement(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	if action.Name != "statement" {
		return domain.ActionOutcome{}, fmt.Errorf("%w: unknown action %q", domain.ErrIllegalAction, action.Name)
	}
	if g.sub == subPowerPeek && participantID != g.presidentID {
		return domain.ActionOutcome{}, fmt.Errorf("%w: only the President speaks after the peek", domain.ErrIllegalAction)
	}
	statement := action.StringArg("statement")
	if statement == "" {
		return domain.ActionOutcome{}, fmt.Errorf("%w: statement is required", domain.ErrMalformedAction)
	}
	return domain.ActionOutcome{
		ActorID: participantID,
		Name:    action.Name,
		Args:    action.Args,
		Result:  statement,
		Success: true,
	}, nil
}

func (g *game) applyNomination(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	if participantID != g.presidentID {
		return domain.ActionOutcome{}, fmt.Errorf("%w: only the President nominates", domain.ErrIllegalAction)
	}
	if action.Name != "nominate" {
		return domain.ActionOutcome{}, fmt.Errorf("%w: unknown action %q", domain.ErrIllegalAction, action.Name)
	}
	targetID := action.StringArg("target")
	eligible := g.eligibleChancellorIDs()
	found := false
	for _, id := range eligible {
		if id == targetID {
			found = true
			break
		}
	}
	if !found {
		return domain.ActionOutcome{}, fmt.Errorf("%w: %q is not eligible for Chancellor; eligible: %s",
			domain.ErrIllegalAction, targetID, strings.Join(eligible, ", "))
	}

	g.chancellorNomineeID = targetID
	return domain.ActionOutcome{
		ActorID: participantID,
		Name:    action.Name,
		Args:    action.Args,
		Result:  fmt.Sprintf("President %s nominated %s as Chancellor.", g.names[participantID], g.names[targetID]),
		Success: true,
	}, nil
}

func (g *game) applyVote(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	if action.Name != "vote" {
		return domain.ActionOutcome{}, fmt.Errorf("%w: unknown action %q", domain.ErrIllegalAction, action.Name)
	}
	vote := strings.ToLower(action.StringArg("vote"))
	if vote != "ja" && vote != "nein" {
		return domain.ActionOutcome{}, fmt.Errorf("%w: vote must be \"ja\" or \"nein\"", domain.ErrMalformedAction)
	}
	g.votes[participantID] = vote
	return domain.ActionOutcome{
		ActorID:   participantID,
		Name:      action.Name,
		Args:      action.Args,
		Result:    fmt.Sprintf("You voted %s.", vote),
		Success:   true,
		VisibleTo: []string{participantID},
	}, nil
}

func (g *game) applyDiscard(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	if participantID != g.presidentID {
		return domain.ActionOutcome{}, fmt.Errorf("%w: only the President discards", domain.ErrIllegalAction)
	}
	if action.Name != "discard" {
		return domain.ActionOutcome{}, fmt.Errorf("%w: unknown action %q", domain.ErrIllegalAction, action.Name)
	}
	index, ok := action.IntArg("index")
	if !ok {
		return domain.ActionOutcome{}, fmt.Errorf("%w: index is required", domain.ErrMalformedAction)
	}
	if index < 0 || index >= len(g.drawnPolicies) {
		return domain.ActionOutcome{}, fmt.Errorf("%w: index %d out of range, choose 0-%d",
			domain.ErrIllegalAction, index, len(g.drawnPolicies)-1)
	}

	discarded := g.drawnPolicies[index]
	remaining := make([]policy, 0, 2)
	for i, p := range g.drawnPolicies {
		if i != index {
			remaining = append(remaining, p)
		}
	}
	g.policies.Discard(discarded)
	g.chancellorPolicies = remaining
	g.drawnPolicies = nil

	return domain.ActionOutcome{
		ActorID:   participantID,
		Name:      action.Name,
		Args:      action.Args,
		Result:    fmt.Sprintf("You discarded a %s policy. The remaining two go to the Chancellor.", discarded),
		Success:   true,
		VisibleTo: []string{participantID},
	}, nil
}

func (g *game) applyEnact(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	if participantID != g.chancellorID {
		return domain.ActionOutcome{}, fmt.Errorf("%w: only the Chancellor enacts", domain.ErrIllegalAction)
	}
	if action.Name != "enact" {
		return domain.ActionOutcome{}, fmt.Errorf("%w: unknown action %q", domain.ErrIllegalAction, action.Name)
	}
	index, ok := action.IntArg("index")
	if !ok {
		return domain.ActionOutcome{}, fmt.Errorf("%w: index is required", domain.ErrMalformedAction)
	}
	if index < 0 || index >= len(g.chancellorPolicies) {
		return domain.ActionOutcome{}, fmt.Errorf("%w: index %d out of range, choose 0 or 1",
			domain.ErrIllegalAction, index)
	}

	enacted := g.chancellorPolicies[index]
	g.policies.Discard(g.chancellorPolicies[1-index])
	g.chancellorPolicies = nil
	g.enact(enacted)
	g.events = append(g.events, fmt.Sprintf(
		"President %s and Chancellor %s enacted a %s policy. (Liberal %d/%d, Fascist %d/%d)",
		g.names[g.presidentID], g.names[g.chancellorID], enacted,
		g.liberalEnacted, liberalPoliciesToWin, g.fascistEnacted, fascistPoliciesToWin))

	return domain.ActionOutcome{
		ActorID: participantID,
		Name:    action.Name,
		Args:    action.Args,
		Result:  fmt.Sprintf("A %s policy has been enacted!", enacted),
		Success: true,
	}, nil
}

func (g *game) applyInvestigate(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	if participantID != g.presidentID {
		return domain.ActionOutcome{}, fmt.Errorf("%w: only the President holds this power", domain.ErrIllegalAction)
	}
	if action.Name != "investigate" {
		return domain.ActionOutcome{}, fmt.Errorf("%w: unknown action %q", domain.ErrIllegalAction, action.Name)
	}
	targetID, err := g.aliveTarget(action)
	if err != nil {
		return domain.ActionOutcome{}, err
	}

	// The membership card shows the team, never the specific role.
	membership := policyLiberal
	if g.roles[targetID].Team == TeamFascist {
		membership = policyFascist
	}
	g.investigated[targetID] = true
	g.events = append(g.events, fmt.Sprintf("President %s investigated %s's loyalty.",
		g.names[participantID], g.names[targetID]))

	return domain.ActionOutcome{
		ActorID:   participantID,
		Name:      action.Name,
		Args:      action.Args,
		Result:    fmt.Sprintf("You investigated %s. Their party membership card says: %s.", g.names[targetID], membership),
		Success:   true,
		VisibleTo: []string{participantID},
	}, nil
}

func (g *game) applyExecute(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	if participantID != g.presidentID {
		return domain.ActionOutcome{}, fmt.Errorf("%w: only the President holds this power", domain.ErrIllegalAction)
	}
	if action.Name != "execute" {
		return domain.ActionOutcome{}, fmt.Errorf("%w: unknown action %q", domain.ErrIllegalAction, action.Name)
	}
	targetID, err := g.aliveTarget(action)
	if err != nil {
		return domain.ActionOutcome{}, err
	}
	if targetID == participantID {
		return domain.ActionOutcome{}, fmt.Errorf("%w: you cannot execute yourself", domain.ErrIllegalAction)
	}

	g.alive[targetID] = false
	result := fmt.Sprintf("%s has been executed.", g.names[targetID])
	if g.roles[targetID].Name == roleHitler.Name {
		g.hitlerExecuted = true
		result += " They were Hitler! The Liberals win!"
	} else {
		result += " They were not Hitler."
	}
	g.events = append(g.events, result)

	return domain.ActionOutcome{
		ActorID: participantID,
		Name:    action.Name,
		Args:    action.Args,
		Result:  result,
		Success: true,
	}, nil
}

func (g *game) applySpecialElection(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	if participantID != g.presidentID {
		return domain.ActionOutcome{}, fmt.Errorf("%w: only the President holds this power", domain.ErrIllegalAction)
	}
	if action.Name != "choose_president" {
		return domain.ActionOutcome{}, fmt.Errorf("%w: unknown action %q", domain.ErrIllegalAction, action.Name)
	}
	targetID, err := g.aliveTarget(action)
	if err != nil {
		return domain.ActionOutcome{}, err
	}
	if targetID == participantID {
		return domain.ActionOutcome{}, fmt.Errorf("%w: you cannot choose yourself", domain.ErrIllegalAction)
	}

	g.specialElectionID = targetID
	result := fmt.Sprintf("Special election: %s will be the next presidential candidate.", g.names[targetID])
	g.events = append(g.events, result)
	return domain.ActionOutcome{
		ActorID: participantID,
		Name:    action.Name,
		Args:    action.Args,
		Result:  result,
		Success: true,
	}, nil
}

func (g *game) View(participantID string) string {
	role := g.roles[participantID]

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, playing Secret Hitler.\n", g.names[participantID])
	fmt.Fprintf(&b, "Your role: %s (team: %s)\n%s\n", role.Name, role.Team, role.Description)
	g.writeRoleKnowledge(&b, participantID)

	fmt.Fprintf(&b, "\nRound %d, phase: %s\n", g.round, g.sub)
	fmt.Fprintf(&b, "Policies enacted: Liberal %d/%d, Fascist %d/%d\n",
		g.liberalEnacted, liberalPoliciesToWin, g.fascistEnacted, fascistPoliciesToWin)
	fmt.Fprintf(&b, "Election tracker: %d/%d failed elections\n", g.electionTracker, failedElectionsChaos)
	fmt.Fprintf(&b, "Policy deck: %d cards, discard pile: %d cards\n", g.policies.Remaining(), g.policies.Discarded())
	fmt.Fprintf(&b, "President: %s\n", g.names[g.presidentID])
	switch {
	case g.chancellorID != "":
		fmt.Fprintf(&b, "Chancellor: %s\n", g.names[g.chancellorID])
	case g.chancellorNomineeID != "":
		fmt.Fprintf(&b, "Chancellor nominee: %s\n", g.names[g.chancellorNomineeID])
	}

	alive := make([]string, 0, len(g.seatOrder))
	for _, id := range g.aliveIDs() {
		alive = append(alive, fmt.Sprintf("%s (id: %s)", g.names[id], id))
	}
	fmt.Fprintf(&b, "\nLiving players in seat order: %s\n", strings.Join(alive, ", "))

	if len(g.events) > 0 {
		b.WriteString("\nRecent events:\n")
		for _, e := range g.events {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}

	g.writeInstructions(&b, participantID)
	return b.String()
}

func (g *game) writeRoleKnowledge(b *strings.Builder, participantID string) {
	role := g.roles[participantID]
	if role.Team != TeamFascist {
		return
	}
	if role.Name == roleHitler.Name && !hitlerKnowsFascists(len(g.seatOrder)) {
		return
	}
	var team []string
	for _, id := range g.seatOrder {
		if id == participantID || g.roles[id].Team != TeamFascist {
			continue
		}
		team = append(team, fmt.Sprintf("%s (%s)", g.names[id], g.roles[id].Name))
	}
	if len(team) > 0 {
		fmt.Fprintf(b, "Your fascist teammates: %s\n", strings.Join(team, ", "))
	}
}

func (g *game) writeInstructions(b *strings.Builder, participantID string) {
	switch g.sub {
	case subDiscussion:
		b.WriteString("\nDiscuss the state of the game before the President nominates a Chancellor.\n")

	case subNomination:
		if participantID != g.presidentID {
			return
		}
		eligible := g.eligibleChancellorIDs()
		names := make([]string, len(eligible))
		for i, id := range eligible {
			names[i] = fmt.Sprintf("%s (id: %s)", g.names[id], id)
		}
		fmt.Fprintf(b, "\nYou are the President. Nominate a Chancellor. Eligible: %s\n", strings.Join(names, ", "))

	case subVoting:
		fmt.Fprintf(b, "\nVote ja or nein on President %s and Chancellor %s.\n",
			g.names[g.presidentID], g.names[g.chancellorNomineeID])
		if g.electionTracker == failedElectionsChaos-1 {
			b.WriteString("Warning: a third failed election enacts the top policy automatically.\n")
		}

	case subPresidentDiscard:
		if participantID != g.presidentID {
			return
		}
		fmt.Fprintf(b, "\nYou drew: %s. Discard one by index; the other two go to the Chancellor.\n",
			policyList(g.drawnPolicies))

	case subChancellorEnact:
		if participantID != g.chancellorID {
			return
		}
		fmt.Fprintf(b, "\nThe President passed you: %s. Enact one by index.\n",
			policyList(g.chancellorPolicies))

	case subPowerInvestigate:
		if participantID == g.presidentID {
			b.WriteString("\nChoose a player to investigate; you will see their party membership card.\n")
		}

	case subPowerExecution:
		if participantID == g.presidentID {
			b.WriteString("\nChoose a player to execute. Executing Hitler wins the game for the Liberals.\n")
		}

	case subPowerSpecialElection:
		if participantID == g.presidentID {
			b.WriteString("\nChoose the next presidential candidate.\n")
		}

	case subPowerPeek:
		if participantID == g.presidentID {
			fmt.Fprintf(b, "\nYou peeked at the top of the policy deck: %s. Make a statement to the group.\n",
				policyList(g.peeked))
		}
	}
}

func (g *game) DefaultAction(participantID string, _ domain.Phase) domain.Action {
	switch g.sub {
	case subDiscussion, subPowerPeek:
		return domain.Action{Name: "statement", Args: map[string]any{"statement": "(remains silent)"}}
	case subNomination:
		eligible := g.eligibleChancellorIDs()
		target := ""
		if len(eligible) > 0 {
			target = eligible[0]
		}
		return domain.Action{Name: "nominate", Args: map[string]any{"target": target}}
	case subVoting:
		return domain.Action{Name: "vote", Args: map[string]any{"vote": "nein"}}
	case subPresidentDiscard:
		return domain.Action{Name: "discard", Args: map[string]any{"index": 0}}
	case subChancellorEnact:
		return domain.Action{Name: "enact", Args: map[string]any{"index": 0}}
	case subPowerInvestigate:
		return domain.Action{Name: "investigate", Args: map[string]any{"target": g.firstOtherAliveID(participantID)}}
	case subPowerExecution:
		return domain.Action{Name: "execute", Args: map[string]any{"target": g.firstOtherAliveID(participantID)}}
	case subPowerSpecialElection:
		return domain.Action{Name: "choose_president", Args: map[string]any{"target": g.firstOtherAliveID(participantID)}}
	}
	return domain.Action{Name: "statement", Args: map[string]any{"statement": "(remains silent)"}}
}

func (g *game) Terminal() (domain.Outcome, bool) {
	switch {
	case g.liberalEnacted >= liberalPoliciesToWin:
		return g.outcome(TeamLiberal, domain.TerminationWin, "5 Liberal policies enacted"), true
	case g.hitlerExecuted:
		return g.outcome(TeamLiberal, domain.TerminationWin, "Hitler was executed"), true
	case g.fascistEnacted >= fascistPoliciesToWin:
		return g.outcome(TeamFascist, domain.TerminationWin, "6 Fascist policies enacted"), true
	case g.hitlerElectedChancellor:
		return g.outcome(TeamFascist, domain.TerminationWin, "Hitler elected Chancellor after 3+ Fascist policies"), true
	case g.round >= g.cfg.MaxRounds:
		return g.outcome(TeamLiberal, domain.TerminationRoundCap, "Maximum rounds reached; the draw goes to the Liberals"), true
	}
	return domain.Outcome{}, false
}

func (g *game) outcome(winnerTeam string, termination domain.Termination, reason string) domain.Outcome {
	var winners, losers []string
	for _, id := range g.seatOrder {
		if g.roles[id].Team == winnerTeam {
			winners = append(winners, id)
		} else {
			losers = append(losers, id)
		}
	}
	roles := make(map[string]any, len(g.seatOrder))
	for _, id := range g.seatOrder {
		roles[id] = g.roles[id].Name
	}
	return domain.Outcome{
		GameType:  GameType,
		WinnerIDs: winners,
		LoserIDs:  losers,
		Ranking:   append(append([]string(nil), winners...), losers...),
		Metadata: map[string]any{
			domain.MetadataTermination: string(termination),
			"reason":                   reason,
			"winner_team":              winnerTeam,
			"liberal_policies":         g.liberalEnacted,
			"fascist_policies":         g.fascistEnacted,
			"rounds_played":            g.round,
			"roles":                    roles,
		},
	}
}

// resolveVote tallies the government vote. A majority of ja votes forms
// the government; a third consecutive failure enacts the top policy in
// chaos and resets the term limits.
func (g *game) resolveVote() error {
	ja, nein := 0, 0
	detail := make([]string, 0, len(g.votes))
	for _, id := range g.aliveIDs() {
		vote, ok := g.votes[id]
		if !ok {
			continue
		}
		if vote == "ja" {
			ja++
		} else {
			nein++
		}
		detail = append(detail, fmt.Sprintf("%s: %s", g.names[id], vote))
	}
	passed := ja > nein

	verdict := "The government was rejected."
	if passed {
		verdict = "The government was elected."
	}
	g.events = append(g.events, fmt.Sprintf("Vote on President %s and Chancellor %s: %d ja, %d nein (%s). %s",
		g.names[g.presidentID], g.names[g.chancellorNomineeID], ja, nein, strings.Join(detail, ", "), verdict))

	if passed {
		g.chancellorID = g.chancellorNomineeID
		g.electionTracker = 0

		if g.fascistEnacted >= 3 && g.roles[g.chancellorID].Name == roleHitler.Name {
			g.hitlerElectedChancellor = true
			g.afterVote = subRoundEnd
			return nil
		}

		g.policies.Reserve(3)
		drawn, err := g.policies.DrawN(3)
		if err != nil {
			return fmt.Errorf("draw policies: %w", err)
		}
		g.drawnPolicies = drawn
		g.afterVote = subPresidentDiscard
		return nil
	}

	g.electionTracker++
	if g.electionTracker >= failedElectionsChaos {
		if err := g.chaosEnact(); err != nil {
			return err
		}
		g.electionTracker = 0
		g.prevPresidentID = ""
		g.prevChancellorID = ""
		g.afterVote = subPolicyEnacted
		return nil
	}
	g.afterVote = subRoundEnd
	return nil
}

func (g *game) chaosEnact() error {
	g.policies.Reserve(1)
	top, err := g.policies.Draw()
	if err != nil {
		return fmt.Errorf("chaos enact: %w", err)
	}
	g.enact(top)
	g.events = append(g.events, fmt.Sprintf(
		"Chaos! Three failed elections enacted the top policy automatically: %s. Term limits are reset.", top))
	return nil
}

func (g *game) enact(p policy) {
	if p == policyLiberal {
		g.liberalEnacted++
	} else {
		g.fascistEnacted++
	}
	g.enactedPolicy = p
}

// resolvePolicyEnacted decides whether the enacted policy unlocks a
// presidential power.
func (g *game) resolvePolicyEnacted() {
	if g.enactedPolicy == policyFascist {
		switch presidentialPower(len(g.seatOrder), g.fascistEnacted) {
		case powerInvestigate:
			g.afterPolicy = subPowerInvestigate
			return
		case powerExecution:
			g.afterPolicy = subPowerExecution
			return
		case powerSpecialElection:
			g.afterPolicy = subPowerSpecialElection
			return
		case powerPeek:
			g.policies.Reserve(3)
			g.peeked = g.policies.Peek(3)
			g.afterPolicy = subPowerPeek
			return
		}
	}
	g.afterPolicy = subRoundEnd
}

func (g *game) beginNextRound() {
	if g.chancellorID != "" {
		g.prevPresidentID = g.presidentID
		g.prevChancellorID = g.chancellorID
	}
	g.chancellorNomineeID = ""
	g.chancellorID = ""
	g.votes = make(map[string]string)
	g.drawnPolicies = nil
	g.chancellorPolicies = nil
	g.enactedPolicy = ""
	g.peeked = nil

	g.round++
	g.advancePresident()
}

// advancePresident rotates the presidency clockwise, skipping dead
// players, unless a special election named the next candidate. The
// normal rotation resumes from where it left off afterwards.
func (g *game) advancePresident() {
	if g.specialElectionID != "" && g.alive[g.specialElectionID] {
		g.presidentID = g.specialElectionID
		g.specialElectionID = ""
	} else {
		g.specialElectionID = ""
		idx := g.presidentIndex
		for i := 0; i < len(g.seatOrder); i++ {
			idx = (idx + 1) % len(g.seatOrder)
			if g.alive[g.seatOrder[idx]] {
				g.presidentIndex = idx
				g.presidentID = g.seatOrder[idx]
				break
			}
		}
	}
	g.computeTermLimits()
}

// computeTermLimits marks who cannot be nominated this round. The
// previous Chancellor is always limited; the previous President only
// when more than five players are alive.
func (g *game) computeTermLimits() {
	g.termLimited = make(map[string]bool)
	if g.prevChancellorID != "" && g.alive[g.prevChancellorID] {
		g.termLimited[g.prevChancellorID] = true
	}
	if len(g.aliveIDs()) > 5 && g.prevPresidentID != "" && g.alive[g.prevPresidentID] {
		g.termLimited[g.prevPresidentID] = true
	}
}

func (g *game) eligibleChancellorIDs() []string {
	var ids []string
	for _, id := range g.aliveIDs() {
		if id != g.presidentID && !g.termLimited[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func (g *game) aliveIDs() []string {
	ids := make([]string, 0, len(g.seatOrder))
	for _, id := range g.seatOrder {
		if g.alive[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func (g *game) firstOtherAliveID(participantID string) string {
	for _, id := range g.aliveIDs() {
		if id != participantID {
			return id
		}
	}
	return ""
}

func (g *game) aliveTarget(action domain.Action) (string, error) {
	targetID := action.StringArg("target")
	if targetID == "" {
		return "", fmt.Errorf("%w: target is required", domain.ErrMalformedAction)
	}
	if _, ok := g.names[targetID]; !ok {
		return "", fmt.Errorf("%w: no player with id %q", domain.ErrIllegalAction, targetID)
	}
	if !g.alive[targetID] {
		return "", fmt.Errorf("%w: %s is not alive", domain.ErrIllegalAction, g.names[targetID])
	}
	return targetID, nil
}

func policyList(policies []policy) string {
	parts := make([]string, len(policies))
	for i, p := range policies {
		parts[i] = fmt.Sprintf("[%d] %s", i, p)
	}
	return strings.Join(parts, ", ")
}
