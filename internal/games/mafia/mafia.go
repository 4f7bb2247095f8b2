// Package mafia implements the social deduction game of Mafia for five
// or more participants. Days alternate between open discussion, a town
// vote and the resolution of night actions taken by the Mafia, the
// Doctor and the Detective.
package mafia

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/louisbranch/arena/internal/game/domain"
	"github.com/louisbranch/arena/internal/game/engine"
)

// GameType identifies this family in the registry.
const GameType = "mafia"

const minPlayers = 5

// ErrPlayerCount indicates an unsupported participant count.
var ErrPlayerCount = errors.New("mafia requires at least 5 participants")

// step is the position in the repeating day/night cycle.
type step int

const (
	stepDiscussion step = iota
	stepVoting
	stepDayResolution
	stepNightAction
	stepNightResolution
	stepCount
)

var stepLabels = map[step]string{
	stepDiscussion:      "discussion",
	stepVoting:          "voting",
	stepDayResolution:   "day_resolution",
	stepNightAction:     "night_action",
	stepNightResolution: "night_resolution",
}

// New builds a mafia engine. Role assignment draws from rng, so a seed
// fully determines who is Mafia.
func New(cfg domain.Config, rng *rand.Rand) (engine.Game, error) {
	if len(cfg.Participants) < minPlayers {
		return nil, fmt.Errorf("%w, got %d", ErrPlayerCount, len(cfg.Participants))
	}
	return &game{cfg: cfg, rng: rng}, nil
}

type elimination struct {
	ID    string
	Name  string
	Role  string
	Round int
	Cause string
}

type game struct {
	cfg domain.Config
	rng *rand.Rand

	names     map[string]string
	playerIDs []string
	roles     map[string]domain.Role

	alive      map[string]bool
	eliminated []elimination

	votes            map[string]int
	nightKill        string
	nightProtect     string
	nightInvestigate string
	lastProtect      string

	// events holds the public summary of the most recent resolution,
	// shown in every view until the next resolution replaces it.
	events []string

	step  step
	round int
}

func (g *game) Setup() error {
	g.names = make(map[string]string, len(g.cfg.Participants))
	g.playerIDs = make([]string, 0, len(g.cfg.Participants))
	g.alive = make(map[string]bool, len(g.cfg.Participants))
	for _, p := range g.cfg.Participants {
		g.playerIDs = append(g.playerIDs, p.ID)
		g.names[p.ID] = p.Name
		g.alive[p.ID] = true
	}
	g.roles = assignRoles(g.playerIDs, g.rng)
	g.votes = make(map[string]int)
	g.step = stepCount - 1 // advances to discussion on the first phase
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

	g.step = (g.step + 1) % stepCount

	switch g.step {
	case stepDiscussion:
		g.round++
		return domain.Phase{
			Kind:        domain.PhaseDiscussion,
			Label:       stepLabels[g.step],
			Round:       g.round,
			Description: fmt.Sprintf("Day %d: town discussion", g.round),
			ActiveIDs:   g.aliveIDs(),
		}, nil

	case stepVoting:
		g.votes = make(map[string]int)
		return domain.Phase{
			Kind:        domain.PhaseVoting,
			Label:       stepLabels[g.step],
			Round:       g.round,
			Description: fmt.Sprintf("Day %d: town vote", g.round),
			ActiveIDs:   g.aliveIDs(),
		}, nil

	case stepDayResolution:
		g.resolveDayVote()
		return domain.Phase{
			Kind:        domain.PhaseResolution,
			Label:       stepLabels[g.step],
			Round:       g.round,
			Description: fmt.Sprintf("Day %d: vote results", g.round),
		}, nil

	case stepNightAction:
		g.nightKill = ""
		g.nightProtect = ""
		g.nightInvestigate = ""
		return domain.Phase{
			Kind:        domain.PhaseAction,
			Label:       stepLabels[g.step],
			Round:       g.round,
			Description: fmt.Sprintf("Night %d: night actions", g.round),
			ActiveIDs:   g.nightActiveIDs(),
		}, nil

	default: // stepNightResolution
		g.resolveNight()
		return domain.Phase{
			Kind:        domain.PhaseResolution,
			Label:       stepLabels[g.step],
			Round:       g.round,
			Description: fmt.Sprintf("Night %d: night results", g.round),
		}, nil
	}
}

func (g *game) LegalActions(participantID string, _ domain.Phase) []domain.ActionSchema {
	target := domain.ParamSchema{
		Name:        "target",
		Type:        "string",
		Description: "ID of the player you are targeting.",
	}

	switch g.step {
	case stepDiscussion:
		return []domain.ActionSchema{
			{
				Name:        "statement",
				Description: "Make a public statement to the group.",
				Params: []domain.ParamSchema{{
					Name:        "statement",
					Type:        "string",
					Description: "What you want to say. Share observations, defend yourself, or cast suspicion.",
				}},
			},
			{
				Name:        "accuse",
				Description: "Publicly accuse a player of being Mafia.",
				Params: []domain.ParamSchema{target, {
					Name:        "reason",
					Type:        "string",
					Description: "Your reasoning for the accusation.",
				}},
			},
		}

	case stepVoting:
		return []domain.ActionSchema{
			{
				Name:        "vote",
				Description: "Vote to eliminate a player.",
				Params:      []domain.ParamSchema{target},
			},
			{
				Name:        "abstain",
				Description: "Cast no vote this round.",
			},
		}

	case stepNightAction:
		skip := domain.ActionSchema{
			Name:        "skip",
			Description: "Take no night action.",
		}
		switch g.roles[participantID].Name {
		case roleMafia.Name:
			return []domain.ActionSchema{
				{
					Name:        "kill",
					Description: "Choose a player for the Mafia to eliminate tonight.",
					Params:      []domain.ParamSchema{target},
				},
				skip,
			}
		case roleDoctor.Name:
			return []domain.ActionSchema{
				{
					Name:        "protect",
					Description: "Choose a player to protect from the Mafia tonight.",
					Params:      []domain.ParamSchema{target},
				},
				skip,
			}
		case roleDetective.Name:
			return []domain.ActionSchema{
				{
					Name:        "investigate",
					Description: "Learn whether a player is a member of the Mafia.",
					Params:      []domain.ParamSchema{target},
				},
				skip,
			}
		}
	}
	return nil
}

func (g *game) Apply(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	if !g.alive[participantID] {
		return domain.ActionOutcome{}, fmt.Errorf("%w: %s is eliminated", domain.ErrIllegalAction, participantID)
	}

	switch g.step {
	case stepDiscussion:
		return g.applyDiscussion(participantID, action)
	case stepVoting:
		return g.applyVote(participantID, action)
	case stepNightAction:
		return g.applyNight(participantID, action)
	}
	return domain.ActionOutcome{}, fmt.Errorf("%w: no actions in %s", domain.ErrIllegalAction, stepLabels[g.step])
}

func (g *game) applyDiscussion(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	switch action.Name {
	case "statement":
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

	case "accuse":
		targetID, err := g.validTarget(action)
		if err != nil {
			return domain.ActionOutcome{}, err
		}
		reason := action.StringArg("reason")
		return domain.ActionOutcome{
			ActorID: participantID,
			Name:    action.Name,
			Args:    action.Args,
			Result:  fmt.Sprintf("%s accuses %s! %s", g.names[participantID], g.names[targetID], reason),
			Success: true,
		}, nil
	}
	return domain.ActionOutcome{}, fmt.Errorf("%w: unknown action %q", domain.ErrIllegalAction, action.Name)
}

func (g *game) applyVote(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	switch action.Name {
	case "vote":
		targetID, err := g.validTarget(action)
		if err != nil {
			return domain.ActionOutcome{}, err
		}
		g.votes[targetID]++
		return domain.ActionOutcome{
			ActorID: participantID,
			Name:    action.Name,
			Args:    action.Args,
			Result:  fmt.Sprintf("%s voted to eliminate %s.", g.names[participantID], g.names[targetID]),
			Success: true,
		}, nil

	case "abstain":
		return domain.ActionOutcome{
			ActorID: participantID,
			Name:    action.Name,
			Result:  fmt.Sprintf("%s abstained from the vote.", g.names[participantID]),
			Success: true,
		}, nil
	}
	return domain.ActionOutcome{}, fmt.Errorf("%w: unknown action %q", domain.ErrIllegalAction, action.Name)
}

func (g *game) applyNight(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	if !g.isNightActor(participantID) {
		return domain.ActionOutcome{}, fmt.Errorf("%w: %s has no night action", domain.ErrIllegalAction, participantID)
	}

	if action.Name == "skip" {
		return domain.ActionOutcome{
			ActorID:   participantID,
			Name:      action.Name,
			Result:    "You take no action tonight.",
			Success:   true,
			VisibleTo: []string{participantID},
		}, nil
	}

	role := g.roles[participantID]
	switch {
	case action.Name == "kill" && role.Name == roleMafia.Name:
		targetID, err := g.validTarget(action)
		if err != nil {
			return domain.ActionOutcome{}, err
		}
		if g.roles[targetID].Team == TeamMafia {
			return domain.ActionOutcome{}, fmt.Errorf("%w: %s is on your team", domain.ErrIllegalAction, g.names[targetID])
		}
		g.nightKill = targetID
		return domain.ActionOutcome{
			ActorID:   participantID,
			Name:      action.Name,
			Args:      action.Args,
			Result:    fmt.Sprintf("The Mafia will target %s tonight.", g.names[targetID]),
			Success:   true,
			VisibleTo: g.aliveMafiaIDs(),
		}, nil

	case action.Name == "protect" && role.Name == roleDoctor.Name:
		targetID, err := g.validTarget(action)
		if err != nil {
			return domain.ActionOutcome{}, err
		}
		if targetID == g.lastProtect {
			return domain.ActionOutcome{}, fmt.Errorf("%w: cannot protect %s two nights in a row",
				domain.ErrIllegalAction, g.names[targetID])
		}
		g.nightProtect = targetID
		return domain.ActionOutcome{
			ActorID:   participantID,
			Name:      action.Name,
			Args:      action.Args,
			Result:    fmt.Sprintf("You will protect %s tonight.", g.names[targetID]),
			Success:   true,
			VisibleTo: []string{participantID},
		}, nil

	case action.Name == "investigate" && role.Name == roleDetective.Name:
		targetID, err := g.validTarget(action)
		if err != nil {
			return domain.ActionOutcome{}, err
		}
		g.nightInvestigate = targetID
		result := fmt.Sprintf("Investigation result: %s is NOT Mafia.", g.names[targetID])
		if g.roles[targetID].Team == TeamMafia {
			result = fmt.Sprintf("Investigation result: %s IS a member of the Mafia!", g.names[targetID])
		}
		return domain.ActionOutcome{
			ActorID:   participantID,
			Name:      action.Name,
			Args:      action.Args,
			Result:    result,
			Success:   true,
			VisibleTo: []string{participantID},
		}, nil
	}
	return domain.ActionOutcome{}, fmt.Errorf("%w: %s cannot %s", domain.ErrIllegalAction, role.Name, action.Name)
}

func (g *game) View(participantID string) string {
	role := g.roles[participantID]

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, playing Mafia.\n", g.names[participantID])
	fmt.Fprintf(&b, "Your role: %s (team: %s)\n%s\n", role.Name, role.Team, role.Description)

	if role.Team == TeamMafia {
		teammates := make([]string, 0, 1)
		for _, id := range g.aliveMafiaIDs() {
			if id != participantID {
				teammates = append(teammates, g.names[id])
			}
		}
		if len(teammates) > 0 {
			fmt.Fprintf(&b, "Your fellow Mafia members: %s\n", strings.Join(teammates, ", "))
		}
	}

	fmt.Fprintf(&b, "\nRound %d, phase: %s\n", g.round, stepLabels[g.step])

	alive := make([]string, 0, len(g.playerIDs))
	for _, id := range g.aliveIDs() {
		alive = append(alive, fmt.Sprintf("%s (id: %s)", g.names[id], id))
	}
	fmt.Fprintf(&b, "\nLiving players: %s\n", strings.Join(alive, ", "))

	if len(g.eliminated) > 0 {
		b.WriteString("Eliminated:\n")
		for _, e := range g.eliminated {
			fmt.Fprintf(&b, "  %s was a %s (%s, round %d)\n", e.Name, e.Role, e.Cause, e.Round)
		}
	}

	if len(g.events) > 0 {
		fmt.Fprintf(&b, "\nRecent events:\n")
		for _, e := range g.events {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}

	g.writeInstructions(&b, participantID)
	return b.String()
}

func (g *game) writeInstructions(b *strings.Builder, participantID string) {
	switch g.step {
	case stepDiscussion:
		b.WriteString("\nIt is the town discussion. Make a statement or accuse someone of being Mafia.\n")
	case stepVoting:
		b.WriteString("\nIt is the town vote. Vote for the player you believe is Mafia, or abstain.\n")
		b.WriteString("Ties eliminate no one.\n")
	case stepNightAction:
		if !g.isNightActor(participantID) {
			return
		}
		switch g.roles[participantID].Name {
		case roleMafia.Name:
			b.WriteString("\nChoose a player for the Mafia to kill tonight.\n")
		case roleDoctor.Name:
			b.WriteString("\nChoose a player to protect tonight.\n")
			if g.lastProtect != "" {
				fmt.Fprintf(b, "You protected %s last night and cannot protect them again.\n", g.names[g.lastProtect])
			}
		case roleDetective.Name:
			b.WriteString("\nChoose a player to investigate. You will learn whether they are Mafia.\n")
		}
	}
}

func (g *game) DefaultAction(string, domain.Phase) domain.Action {
	switch g.step {
	case stepDiscussion:
		return domain.Action{Name: "statement", Args: map[string]any{"statement": "(remains silent)"}}
	case stepVoting:
		return domain.Action{Name: "abstain"}
	default:
		return domain.Action{Name: "skip"}
	}
}

func (g *game) Terminal() (domain.Outcome, bool) {
	aliveMafia := len(g.aliveMafiaIDs())
	aliveTown := 0
	for id, alive := range g.alive {
		if alive && g.roles[id].Team == TeamTown {
			aliveTown++
		}
	}

	switch {
	case aliveMafia == 0:
		return g.outcome(TeamTown, domain.TerminationWin,
			"All Mafia members have been eliminated. Town wins!"), true
	case aliveMafia >= aliveTown:
		return g.outcome(TeamMafia, domain.TerminationWin,
			"Mafia equals or outnumbers the town. Mafia wins!"), true
	case g.round >= g.cfg.MaxRounds:
		return g.outcome(TeamMafia, domain.TerminationRoundCap,
			"Maximum rounds reached. Mafia survives and wins!"), true
	}
	return domain.Outcome{}, false
}

func (g *game) outcome(winnerTeam string, termination domain.Termination, reason string) domain.Outcome {
	var winners, losers []string
	for _, id := range g.playerIDs {
		if g.roles[id].Team == winnerTeam {
			winners = append(winners, id)
		} else {
			losers = append(losers, id)
		}
	}

	roles := make(map[string]any, len(g.playerIDs))
	for _, id := range g.playerIDs {
		roles[id] = g.roles[id].Name
	}
	eliminations := make([]map[string]any, 0, len(g.eliminated))
	for _, e := range g.eliminated {
		eliminations = append(eliminations, map[string]any{
			"id": e.ID, "role": e.Role, "round": e.Round, "cause": e.Cause,
		})
	}

	return domain.Outcome{
		GameType:  GameType,
		WinnerIDs: winners,
		LoserIDs:  losers,
		Ranking:   append(append([]string(nil), winners...), losers...),
		Metadata: map[string]any{
			domain.MetadataTermination: string(termination),
			"reason":                   reason,
			"rounds_played":            g.round,
			"winner_team":              winnerTeam,
			"final_alive":              g.aliveIDs(),
			"eliminations":             eliminations,
			"roles":                    roles,
		},
	}
}

// resolveDayVote tallies votes and eliminates the player with a strict
// plurality. A tie for the top count eliminates no one.
func (g *game) resolveDayVote() {
	events := []string{}
	if len(g.votes) == 0 {
		g.events = []string{"No votes were cast. No one is eliminated."}
		return
	}

	type tally struct {
		id    string
		count int
	}
	tallies := make([]tally, 0, len(g.votes))
	for id, count := range g.votes {
		tallies = append(tallies, tally{id: id, count: count})
	}
	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].count != tallies[j].count {
			return tallies[i].count > tallies[j].count
		}
		return tallies[i].id < tallies[j].id
	})
	for _, t := range tallies {
		events = append(events, fmt.Sprintf("%s received %d vote(s).", g.names[t.id], t.count))
	}

	top := []string{tallies[0].id}
	for _, t := range tallies[1:] {
		if t.count == tallies[0].count {
			top = append(top, t.id)
		}
	}

	if len(top) > 1 {
		names := make([]string, len(top))
		for i, id := range top {
			names[i] = g.names[id]
		}
		events = append(events, fmt.Sprintf("Tie between %s! No one is eliminated.", strings.Join(names, ", ")))
	} else {
		id := top[0]
		role := g.roles[id].Name
		g.eliminate(id, "voted out")
		events = append(events, fmt.Sprintf("%s has been eliminated by vote! They were a %s.", g.names[id], role))
	}
	g.events = events
}

// resolveNight applies the collected night actions. The Doctor's
// protection beats the Mafia's kill on the same target.
func (g *game) resolveNight() {
	events := []string{}

	if g.nightProtect != "" {
		g.lastProtect = g.nightProtect
	} else {
		g.lastProtect = ""
	}

	if g.nightKill != "" {
		name := g.names[g.nightKill]
		if g.nightKill == g.nightProtect {
			events = append(events, fmt.Sprintf(
				"The Mafia targeted %s, but the Doctor saved them! No one was killed tonight.", name))
		} else {
			role := g.roles[g.nightKill].Name
			g.eliminate(g.nightKill, "killed by the Mafia")
			events = append(events, fmt.Sprintf(
				"%s was found dead in the morning. They were a %s.", name, role))
		}
	} else {
		events = append(events, "The Mafia did not kill anyone tonight.")
	}

	if g.nightInvestigate != "" {
		events = append(events, "The Detective conducted an investigation.")
	}
	g.events = events
}

func (g *game) eliminate(id, cause string) {
	g.alive[id] = false
	g.eliminated = append(g.eliminated, elimination{
		ID:    id,
		Name:  g.names[id],
		Role:  g.roles[id].Name,
		Round: g.round,
		Cause: cause,
	})
}

// aliveIDs lists living players in seat order.
func (g *game) aliveIDs() []string {
	ids := make([]string, 0, len(g.playerIDs))
	for _, id := range g.playerIDs {
		if g.alive[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func (g *game) aliveMafiaIDs() []string {
	var ids []string
	for _, id := range g.playerIDs {
		if g.alive[id] && g.roles[id].Team == TeamMafia {
			ids = append(ids, id)
		}
	}
	return ids
}

// nightActiveIDs names the players that act at night: the first living
// Mafia member (one kill per night), plus the Doctor and Detective.
func (g *game) nightActiveIDs() []string {
	var ids []string
	if mafia := g.aliveMafiaIDs(); len(mafia) > 0 {
		ids = append(ids, mafia[0])
	}
	for _, id := range g.playerIDs {
		if !g.alive[id] {
			continue
		}
		switch g.roles[id].Name {
		case roleDoctor.Name, roleDetective.Name:
			ids = append(ids, id)
		}
	}
	return ids
}

func (g *game) isNightActor(id string) bool {
	for _, actor := range g.nightActiveIDs() {
		if actor == id {
			return true
		}
	}
	return false
}

func (g *game) validTarget(action domain.Action) (string, error) {
	targetID := action.StringArg("target")
	if targetID == "" {
		return "", fmt.Errorf("%w: target is required", domain.ErrMalformedAction)
	}
	if _, ok := g.names[targetID]; !ok {
		return "", fmt.Errorf("%w: no player with id %q; living players: %s",
			domain.ErrIllegalAction, targetID, strings.Join(g.aliveIDs(), ", "))
	}
	if !g.alive[targetID] {
		return "", fmt.Errorf("%w: %s is already eliminated", domain.ErrIllegalAction, g.names[targetID])
	}
	return targetID, nil
}
