// Package impostor implements a social deduction game set on a space
// station for four to ten participants. Crewmates move between rooms
// and complete tasks while impostors try to kill them unseen; reported
// bodies and emergency meetings interrupt play with a discussion, a
// vote and a possible ejection.
package impostor

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
const GameType = "impostor"

const (
	minPlayers = 4
	maxPlayers = 10

	// defaultMaxActionRounds force-ends a stalled game in a draw.
	defaultMaxActionRounds = 30

	// killCooldownRounds is how many action rounds an impostor waits
	// between kills.
	killCooldownRounds = 2
)

// ErrPlayerCount indicates an unsupported participant count.
var ErrPlayerCount = errors.New("impostor requires 4 to 10 participants")

// mode is the coarse position in the play/meeting cycle. Action rounds
// are emitted as one single-actor phase per living player so that
// movement and kills resolve strictly in turn order.
type mode int

const (
	modeAction mode = iota
	modeDiscussion
	modeVoting
	modeResolution
)

var modeLabels = map[mode]string{
	modeAction:     "action",
	modeDiscussion: "discussion",
	modeVoting:     "voting",
	modeResolution: "resolution",
}

// New builds an impostor engine. Role assignment and task generation
// draw from rng.
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
	playerIDs []string
	roles     map[string]domain.Role

	alive     map[string]bool
	location  map[string]string
	tasks     map[string][]task
	bodies    map[string]string // victim id -> location
	cooldown  map[string]int
	meetings  map[string]int // emergency meetings remaining
	ejected   []string
	completed int
	total     int

	meetingTriggered bool
	meetingReason    string
	recentlyKilled   []string

	votes  map[string]string // voter id -> target id or "skip"
	events []string

	mode        mode
	actionQueue []string
	actingID    string
	actionRound int
	maxRounds   int
	capReached  bool
}

func (g *game) Setup() error {
	g.names = make(map[string]string, len(g.cfg.Participants))
	g.playerIDs = make([]string, 0, len(g.cfg.Participants))
	g.alive = make(map[string]bool, len(g.cfg.Participants))
	g.location = make(map[string]string, len(g.cfg.Participants))
	g.meetings = make(map[string]int, len(g.cfg.Participants))
	for _, p := range g.cfg.Participants {
		g.playerIDs = append(g.playerIDs, p.ID)
		g.names[p.ID] = p.Name
		g.alive[p.ID] = true
		g.location[p.ID] = startLocation
		g.meetings[p.ID] = 1
	}

	g.roles = assignRoles(g.playerIDs, g.rng)
	g.tasks = generateTasks(g.playerIDs, g.roles, g.rng)
	for _, id := range g.playerIDs {
		if g.roles[id].Team == TeamCrew {
			g.total += len(g.tasks[id])
		}
	}

	g.bodies = make(map[string]string)
	g.cooldown = make(map[string]int)
	for _, id := range g.impostorIDs() {
		g.cooldown[id] = 0
	}
	g.votes = make(map[string]string)
	g.maxRounds = g.cfg.IntOption("max_action_rounds", defaultMaxActionRounds)
	g.mode = modeAction
	return nil
}

func (g *game) NextPhase() (domain.Phase, error) {
	if _, done := g.Terminal(); done {
		return domain.Phase{
			Kind:        domain.PhaseGameOver,
			Round:       g.actionRound,
			Description: "The game is over.",
		}, nil
	}

	switch g.mode {
	case modeAction:
		if g.meetingTriggered {
			g.mode = modeDiscussion
			g.actionQueue = nil
			return domain.Phase{
				Kind:        domain.PhaseDiscussion,
				Label:       modeLabels[g.mode],
				Round:       g.actionRound,
				Description: fmt.Sprintf("Emergency discussion: %s", g.meetingReason),
				ActiveIDs:   g.aliveIDs(),
			}, nil
		}
		return g.nextActionPhase()

	case modeDiscussion:
		g.mode = modeVoting
		g.votes = make(map[string]string)
		return domain.Phase{
			Kind:        domain.PhaseVoting,
			Label:       modeLabels[g.mode],
			Round:       g.actionRound,
			Description: "Vote on who to eject from the station",
			ActiveIDs:   g.aliveIDs(),
		}, nil

	case modeVoting:
		g.mode = modeResolution
		g.resolveVotes()
		return domain.Phase{
			Kind:        domain.PhaseResolution,
			Label:       modeLabels[g.mode],
			Round:       g.actionRound,
			Description: "Tallying the ejection vote",
		}, nil

	default: // modeResolution
		g.mode = modeAction
		return g.nextActionPhase()
	}
}

// nextActionPhase pops the next living actor off the turn queue,
// starting a fresh action round when the queue is exhausted.
func (g *game) nextActionPhase() (domain.Phase, error) {
	for len(g.actionQueue) > 0 && !g.alive[g.actionQueue[0]] {
		g.actionQueue = g.actionQueue[1:]
	}
	if len(g.actionQueue) == 0 {
		if g.actionRound >= g.maxRounds {
			g.capReached = true
			return domain.Phase{
				Kind:        domain.PhaseGameOver,
				Round:       g.actionRound,
				Description: "The game is over.",
			}, nil
		}
		g.actionRound++
		for id := range g.cooldown {
			if g.cooldown[id] > 0 {
				g.cooldown[id]--
			}
		}
		g.recentlyKilled = nil
		g.actionQueue = g.aliveIDs()
	}

	g.actingID = g.actionQueue[0]
	g.actionQueue = g.actionQueue[1:]
	return domain.Phase{
		Kind:        domain.PhaseAction,
		Label:       modeLabels[modeAction],
		Round:       g.actionRound,
		Description: fmt.Sprintf("Action round %d: %s acts", g.actionRound, g.names[g.actingID]),
		ActiveIDs:   []string{g.actingID},
	}, nil
}

func (g *game) LegalActions(participantID string, _ domain.Phase) []domain.ActionSchema {
	switch g.mode {
	case modeAction:
		schemas := []domain.ActionSchema{
			{
				Name:        "move",
				Description: "Move to another room on the station.",
				Params: []domain.ParamSchema{{
					Name:        "location",
					Type:        "string",
					Description: "One of: " + strings.Join(locations, ", ") + ".",
				}},
			},
			{
				Name:        "do_task",
				Description: "Work on a task at your current location. Impostors fake it.",
			},
			{
				Name:        "report_body",
				Description: "Report a dead body at your current location, triggering a meeting.",
			},
			{
				Name:        "call_meeting",
				Description: "Call an emergency meeting. Each player may do this once per game.",
			},
		}
		if g.roles[participantID].Team == TeamImpostor {
			schemas = append(schemas, domain.ActionSchema{
				Name:        "kill",
				Description: "Kill a crewmate at your current location (impostor only).",
				Params: []domain.ParamSchema{{
					Name:        "target",
					Type:        "string",
					Description: "ID of the player to kill; they must share your location.",
				}},
			})
		}
		return schemas

	case modeDiscussion:
		return []domain.ActionSchema{{
			Name:        "statement",
			Description: "Make a public statement to the group.",
			Params: []domain.ParamSchema{{
				Name:        "statement",
				Type:        "string",
				Description: "Share observations, make accusations, or defend yourself.",
			}},
		}}

	case modeVoting:
		return []domain.ActionSchema{
			{
				Name:        "vote",
				Description: "Vote to eject a player from the station.",
				Params: []domain.ParamSchema{{
					Name:        "target",
					Type:        "string",
					Description: "ID of the player you want to eject.",
				}},
			},
			{
				Name:        "skip",
				Description: "Skip your vote; eject no one.",
			},
		}
	}
	return nil
}

func (g *game) Apply(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	if !g.alive[participantID] {
		return domain.ActionOutcome{}, fmt.Errorf("%w: %s is dead", domain.ErrIllegalAction, participantID)
	}

	switch g.mode {
	case modeAction:
		if participantID != g.actingID {
			return domain.ActionOutcome{}, fmt.Errorf("%w: not %s's turn", domain.ErrIllegalAction, participantID)
		}
		return g.applyAction(participantID, action)
	case modeDiscussion:
		return g.applyStatement(participantID, action)
	case modeVoting:
		return g.applyVote(participantID, action)
	}
	return domain.ActionOutcome{}, fmt.Errorf("%w: no actions in %s", domain.ErrIllegalAction, modeLabels[g.mode])
}

func (g *game) applyAction(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	switch action.Name {
	case "move":
		return g.applyMove(participantID, action)
	case "do_task":
		return g.applyDoTask(participantID, action)
	case "kill":
		return g.applyKill(participantID, action)
	case "report_body":
		return g.applyReport(participantID, action)
	case "call_meeting":
		return g.applyCallMeeting(participantID, action)
	}
	return domain.ActionOutcome{}, fmt.Errorf("%w: unknown action %q", domain.ErrIllegalAction, action.Name)
}

func (g *game) applyMove(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	loc, ok := normalizeLocation(action.StringArg("location"))
	if !ok {
		return domain.ActionOutcome{}, fmt.Errorf("%w: unknown location %q, valid: %s",
			domain.ErrIllegalAction, action.StringArg("location"), strings.Join(locations, ", "))
	}

	from := g.location[participantID]
	g.location[participantID] = loc

	parts := []string{fmt.Sprintf("You moved from %s to %s.", from, loc)}
	if others := g.namesAt(loc, participantID); len(others) > 0 {
		parts = append(parts, fmt.Sprintf("Players here: %s.", strings.Join(others, ", ")))
	} else {
		parts = append(parts, "No other players here.")
	}
	if bodies := g.bodyNamesAt(loc); len(bodies) > 0 {
		parts = append(parts, fmt.Sprintf("WARNING: you see the body of %s here!", strings.Join(bodies, ", ")))
	}

	return domain.ActionOutcome{
		ActorID: participantID,
		Name:    action.Name,
		Args:    map[string]any{"location": loc},
		Result:  strings.Join(parts, " "),
		Success: true,
	}, nil
}

func (g *game) applyDoTask(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	loc := g.location[participantID]

	if g.roles[participantID].Team == TeamImpostor {
		return domain.ActionOutcome{
			ActorID: participantID,
			Name:    action.Name,
			Result:  fmt.Sprintf("You pretended to do a task at %s.", loc),
			Success: true,
		}, nil
	}

	tasks := g.tasks[participantID]
	for i := range tasks {
		if tasks[i].Location != loc || tasks[i].Completed {
			continue
		}
		tasks[i].Completed = true
		g.completed++
		remaining := 0
		for _, t := range tasks {
			if !t.Completed {
				remaining++
			}
		}
		return domain.ActionOutcome{
			ActorID: participantID,
			Name:    action.Name,
			Result: fmt.Sprintf("Task completed: %q at %s. You have %d task(s) remaining. Overall progress: %d/%d.",
				tasks[i].Name, loc, remaining, g.completed, g.total),
			Success: true,
		}, nil
	}

	// No task here; the turn is still spent.
	var open []string
	for _, t := range tasks {
		if !t.Completed {
			open = append(open, fmt.Sprintf("%q at %s", t.Name, t.Location))
		}
	}
	result := "All your tasks are already completed!"
	if len(open) > 0 {
		result = fmt.Sprintf("You have no task to do at %s. Your remaining tasks: %s.", loc, strings.Join(open, "; "))
	}
	return domain.ActionOutcome{
		ActorID: participantID,
		Name:    action.Name,
		Result:  result,
		Success: false,
	}, nil
}

func (g *game) applyKill(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	if g.roles[participantID].Team != TeamImpostor {
		return domain.ActionOutcome{}, fmt.Errorf("%w: only impostors can kill", domain.ErrIllegalAction)
	}
	if cd := g.cooldown[participantID]; cd > 0 {
		return domain.ActionOutcome{}, fmt.Errorf("%w: kill on cooldown for %d more round(s)", domain.ErrIllegalAction, cd)
	}
	targetID := action.StringArg("target")
	if targetID == "" {
		return domain.ActionOutcome{}, fmt.Errorf("%w: target is required", domain.ErrMalformedAction)
	}
	if _, ok := g.names[targetID]; !ok {
		return domain.ActionOutcome{}, fmt.Errorf("%w: no player with id %q", domain.ErrIllegalAction, targetID)
	}
	if targetID == participantID {
		return domain.ActionOutcome{}, fmt.Errorf("%w: you cannot kill yourself", domain.ErrIllegalAction)
	}
	if !g.alive[targetID] {
		return domain.ActionOutcome{}, fmt.Errorf("%w: %s is already dead", domain.ErrIllegalAction, g.names[targetID])
	}
	if g.roles[targetID].Team == TeamImpostor {
		return domain.ActionOutcome{}, fmt.Errorf("%w: %s is a fellow impostor", domain.ErrIllegalAction, g.names[targetID])
	}
	loc := g.location[participantID]
	if g.location[targetID] != loc {
		return domain.ActionOutcome{}, fmt.Errorf("%w: %s is not at your location (%s)", domain.ErrIllegalAction, g.names[targetID], loc)
	}

	g.alive[targetID] = false
	g.bodies[targetID] = loc
	g.cooldown[participantID] = killCooldownRounds
	g.recentlyKilled = append(g.recentlyKilled, g.names[targetID])

	return domain.ActionOutcome{
		ActorID: participantID,
		Name:    action.Name,
		Args:    action.Args,
		Result: fmt.Sprintf("You killed %s at %s. Their body remains here. Kill cooldown: %d rounds.",
			g.names[targetID], loc, killCooldownRounds),
		Success:   true,
		VisibleTo: []string{participantID},
	}, nil
}

func (g *game) applyReport(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	loc := g.location[participantID]
	bodies := g.bodyNamesAt(loc)
	if len(bodies) == 0 {
		return domain.ActionOutcome{}, fmt.Errorf("%w: there are no dead bodies at %s to report", domain.ErrIllegalAction, loc)
	}

	for id, at := range g.bodies {
		if at == loc {
			delete(g.bodies, id)
		}
	}
	g.meetingTriggered = true
	g.meetingReason = fmt.Sprintf("%s reported the body of %s in %s", g.names[participantID], bodies[0], loc)
	g.events = append(g.events, g.meetingReason+".")

	return domain.ActionOutcome{
		ActorID: participantID,
		Name:    action.Name,
		Result:  fmt.Sprintf("You reported the body of %s at %s! An emergency discussion begins.", bodies[0], loc),
		Success: true,
	}, nil
}

func (g *game) applyCallMeeting(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	if g.meetings[participantID] <= 0 {
		return domain.ActionOutcome{}, fmt.Errorf("%w: you have no emergency meetings remaining", domain.ErrIllegalAction)
	}
	g.meetings[participantID]--
	g.meetingTriggered = true
	g.meetingReason = fmt.Sprintf("%s called an emergency meeting", g.names[participantID])
	g.events = append(g.events, g.meetingReason+".")

	return domain.ActionOutcome{
		ActorID: participantID,
		Name:    action.Name,
		Result:  "You called an emergency meeting! All players will now discuss and vote.",
		Success: true,
	}, nil
}

func (g *game) applyStatement(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	if action.Name != "statement" {
		return domain.ActionOutcome{}, fmt.Errorf("%w: unknown action %q", domain.ErrIllegalAction, action.Name)
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

func (g *game) applyVote(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	switch action.Name {
	case "vote":
		targetID := action.StringArg("target")
		if targetID == "" {
			return domain.ActionOutcome{}, fmt.Errorf("%w: target is required", domain.ErrMalformedAction)
		}
		if !g.alive[targetID] {
			return domain.ActionOutcome{}, fmt.Errorf("%w: %q is not a living player", domain.ErrIllegalAction, targetID)
		}
		g.votes[participantID] = targetID
		return domain.ActionOutcome{
			ActorID:   participantID,
			Name:      action.Name,
			Args:      action.Args,
			Result:    fmt.Sprintf("You voted to eject %s.", g.names[targetID]),
			Success:   true,
			VisibleTo: []string{participantID},
		}, nil

	case "skip":
		g.votes[participantID] = "skip"
		return domain.ActionOutcome{
			ActorID:   participantID,
			Name:      action.Name,
			Result:    "You chose to skip your vote.",
			Success:   true,
			VisibleTo: []string{participantID},
		}, nil
	}
	return domain.ActionOutcome{}, fmt.Errorf("%w: unknown action %q", domain.ErrIllegalAction, action.Name)
}

// resolveVotes ejects the top-voted player, but only with a unique
// leader whose votes outnumber the skips.
func (g *game) resolveVotes() {
	counts := make(map[string]int)
	skips := 0
	for _, target := range g.votes {
		if target == "skip" {
			skips++
		} else {
			counts[target]++
		}
	}

	events := []string{}
	type tally struct {
		id    string
		count int
	}
	tallies := make([]tally, 0, len(counts))
	for id, count := range counts {
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
	events = append(events, fmt.Sprintf("%d player(s) skipped.", skips))

	ejectedID := ""
	if len(tallies) > 0 {
		unique := len(tallies) == 1 || tallies[0].count > tallies[1].count
		if unique && tallies[0].count > skips {
			ejectedID = tallies[0].id
		}
	}

	if ejectedID != "" {
		g.alive[ejectedID] = false
		g.ejected = append(g.ejected, ejectedID)
		delete(g.bodies, ejectedID)
		events = append(events, fmt.Sprintf("%s was ejected! They were a %s.",
			g.names[ejectedID], g.roles[ejectedID].Name))
	} else {
		events = append(events, "No one was ejected.")
	}
	g.events = events

	g.meetingTriggered = false
	g.meetingReason = ""
	g.votes = make(map[string]string)
}

func (g *game) View(participantID string) string {
	role := g.roles[participantID]

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s aboard the station.\n", g.names[participantID])
	fmt.Fprintf(&b, "Your role: %s\n%s\n", role.Name, role.Description)

	if role.Team == TeamImpostor {
		var team []string
		for _, id := range g.impostorIDs() {
			if id != participantID {
				team = append(team, g.names[id])
			}
		}
		if len(team) > 0 {
			fmt.Fprintf(&b, "Your fellow impostors: %s\n", strings.Join(team, ", "))
		}
	}

	fmt.Fprintf(&b, "\nAction round %d, phase: %s\n", g.actionRound, modeLabels[g.mode])
	fmt.Fprintf(&b, "Task progress: %d/%d completed\n", g.completed, g.total)

	alive := make([]string, 0, len(g.playerIDs))
	for _, id := range g.aliveIDs() {
		alive = append(alive, fmt.Sprintf("%s (id: %s)", g.names[id], id))
	}
	fmt.Fprintf(&b, "Living players: %s\n", strings.Join(alive, ", "))

	if len(g.events) > 0 {
		b.WriteString("\nRecent events:\n")
		for _, e := range g.events {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}

	switch g.mode {
	case modeAction:
		g.writeActionView(&b, participantID)
	case modeDiscussion:
		b.WriteString("\nDiscuss who you suspect and why. Dead players stay silent.\n")
		if len(g.recentlyKilled) > 0 {
			fmt.Fprintf(&b, "Found dead: %s\n", strings.Join(g.recentlyKilled, ", "))
		}
	case modeVoting:
		b.WriteString("\nVote for the player you want to eject, or skip. A player is only\n")
		b.WriteString("ejected with a unique highest tally that beats the skip count.\n")
	}
	return b.String()
}

func (g *game) writeActionView(b *strings.Builder, participantID string) {
	loc := g.location[participantID]
	fmt.Fprintf(b, "\nYou are in %s.\n", loc)
	if others := g.namesAt(loc, participantID); len(others) > 0 {
		fmt.Fprintf(b, "Also here: %s\n", strings.Join(others, ", "))
	} else {
		b.WriteString("No one else is here.\n")
	}
	if bodies := g.bodyNamesAt(loc); len(bodies) > 0 {
		fmt.Fprintf(b, "You see the body of %s here!\n", strings.Join(bodies, ", "))
	}

	if g.roles[participantID].Team == TeamCrew {
		b.WriteString("Your tasks:\n")
		for _, t := range g.tasks[participantID] {
			status := "pending"
			if t.Completed {
				status = "done"
			}
			fmt.Fprintf(b, "  %q at %s (%s)\n", t.Name, t.Location, status)
		}
	} else if cd := g.cooldown[participantID]; cd > 0 {
		fmt.Fprintf(b, "Kill cooldown: %d round(s) remaining.\n", cd)
	}
	fmt.Fprintf(b, "Emergency meetings left: %d\n", g.meetings[participantID])
}

// DefaultAction is to work a task: it is always legal and, for
// impostors, indistinguishable from normal play.
func (g *game) DefaultAction(string, domain.Phase) domain.Action {
	switch g.mode {
	case modeDiscussion:
		return domain.Action{Name: "statement", Args: map[string]any{"statement": "(remains silent)"}}
	case modeVoting:
		return domain.Action{Name: "skip"}
	default:
		return domain.Action{Name: "do_task"}
	}
}

func (g *game) Terminal() (domain.Outcome, bool) {
	aliveImpostors := 0
	aliveCrew := 0
	for _, id := range g.playerIDs {
		if !g.alive[id] {
			continue
		}
		if g.roles[id].Team == TeamImpostor {
			aliveImpostors++
		} else {
			aliveCrew++
		}
	}

	switch {
	case aliveImpostors == 0:
		return g.outcome(TeamCrew, domain.TerminationWin, "all impostors were ejected"), true
	case g.total > 0 && g.completed >= g.total:
		return g.outcome(TeamCrew, domain.TerminationWin, "all tasks were completed"), true
	case aliveImpostors >= aliveCrew:
		return g.outcome(TeamImpostor, domain.TerminationWin, "impostors reached parity with the crew"), true
	case g.capReached:
		return g.outcome("", domain.TerminationRoundCap, "maximum action rounds reached"), true
	}
	return domain.Outcome{}, false
}

// outcome builds the terminal result; an empty winnerTeam is a draw
// where everyone loses.
func (g *game) outcome(winnerTeam string, termination domain.Termination, reason string) domain.Outcome {
	var winners, losers []string
	for _, id := range g.playerIDs {
		if winnerTeam != "" && g.roles[id].Team == winnerTeam {
			winners = append(winners, id)
		} else {
			losers = append(losers, id)
		}
	}
	roles := make(map[string]any, len(g.playerIDs))
	for _, id := range g.playerIDs {
		roles[id] = g.roles[id].Name
	}
	var ranking []string
	if len(winners) > 0 {
		ranking = append(append([]string(nil), winners...), losers...)
	}
	return domain.Outcome{
		GameType:  GameType,
		WinnerIDs: winners,
		LoserIDs:  losers,
		Ranking:   ranking,
		Metadata: map[string]any{
			domain.MetadataTermination: string(termination),
			"reason":                   reason,
			"winner_team":              winnerTeam,
			"rounds_played":            g.actionRound,
			"tasks_completed":          g.completed,
			"total_tasks":              g.total,
			"ejected":                  append([]string(nil), g.ejected...),
			"roles":                    roles,
		},
	}
}

func (g *game) aliveIDs() []string {
	ids := make([]string, 0, len(g.playerIDs))
	for _, id := range g.playerIDs {
		if g.alive[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func (g *game) impostorIDs() []string {
	var ids []string
	for _, id := range g.playerIDs {
		if g.roles[id].Team == TeamImpostor {
			ids = append(ids, id)
		}
	}
	return ids
}

func (g *game) namesAt(loc, excludeID string) []string {
	var names []string
	for _, id := range g.playerIDs {
		if id != excludeID && g.alive[id] && g.location[id] == loc {
			names = append(names, g.names[id])
		}
	}
	return names
}

func (g *game) bodyNamesAt(loc string) []string {
	var names []string
	for _, id := range g.playerIDs {
		if at, ok := g.bodies[id]; ok && at == loc {
			names = append(names, g.names[id])
		}
	}
	return names
}
