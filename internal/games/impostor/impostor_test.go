package impostor

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/louisbranch/arena/internal/game/domain"
)

func testConfig(n int) domain.Config {
	participants := make([]domain.Participant, n)
	for i := range participants {
		id := string(rune('a' + i))
		participants[i] = domain.Participant{ID: id, Name: strings.ToUpper(id), Model: "m"}
	}
	return domain.Config{GameType: GameType, Participants: participants, MaxRounds: 50}
}

func mustSetup(t *testing.T, n int, seed int64) *game {
	t.Helper()
	eng, err := New(testConfig(n), rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("new impostor game: %v", err)
	}
	g := eng.(*game)
	if err := g.Setup(); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return g
}

// fixRoles overrides the random assignment with a known layout: the
// first n players by ID order are impostors, the rest crewmates. Tasks
// and cooldowns are rebuilt to match.
func fixRoles(g *game, impostors int) {
	g.roles = map[string]domain.Role{}
	for i, id := range g.playerIDs {
		if i < impostors {
			g.roles[id] = roleImpostor
		} else {
			g.roles[id] = roleCrewmate
		}
	}
	g.tasks = generateTasks(g.playerIDs, g.roles, g.rng)
	g.completed = 0
	g.total = 0
	for _, id := range g.playerIDs {
		g.total += len(g.tasks[id])
	}
	g.cooldown = map[string]int{}
	for _, id := range g.impostorIDs() {
		g.cooldown[id] = 0
	}
}

// actionTurn steps phases until it is the given player's action turn.
func actionTurn(t *testing.T, g *game, id string) domain.Phase {
	t.Helper()
	for i := 0; i < 50; i++ {
		phase, err := g.NextPhase()
		if err != nil {
			t.Fatalf("next phase: %v", err)
		}
		if phase.Terminal() {
			t.Fatalf("unexpected game over while seeking %s's turn", id)
		}
		if phase.Kind == domain.PhaseAction && g.actingID == id {
			return phase
		}
	}
	t.Fatalf("%s's action turn never came up", id)
	return domain.Phase{}
}

func apply(t *testing.T, g *game, id, name string, args map[string]any) domain.ActionOutcome {
	t.Helper()
	outcome, err := g.Apply(id, domain.Action{Name: name, Args: args})
	if err != nil {
		t.Fatalf("apply %s for %s: %v", name, id, err)
	}
	return outcome
}

// runMeeting plays out a triggered meeting: everyone stays silent in
// the discussion, then casts the given vote ("skip" or a target ID).
func runMeeting(t *testing.T, g *game, votes map[string]string) {
	t.Helper()
	phase, err := g.NextPhase()
	if err != nil {
		t.Fatalf("next phase: %v", err)
	}
	if phase.Kind != domain.PhaseDiscussion {
		t.Fatalf("expected discussion after meeting trigger, got %s", phase.Kind)
	}
	for _, id := range g.aliveIDs() {
		apply(t, g, id, "statement", map[string]any{"statement": "hmm"})
	}

	phase, err = g.NextPhase()
	if err != nil {
		t.Fatalf("next phase: %v", err)
	}
	if phase.Kind != domain.PhaseVoting {
		t.Fatalf("expected voting after discussion, got %s", phase.Kind)
	}
	for _, id := range g.aliveIDs() {
		vote, ok := votes[id]
		if !ok || vote == "skip" {
			apply(t, g, id, "skip", nil)
			continue
		}
		apply(t, g, id, "vote", map[string]any{"target": vote})
	}

	if phase, err = g.NextPhase(); err != nil {
		t.Fatalf("next phase: %v", err)
	}
	if phase.Kind != domain.PhaseResolution {
		t.Fatalf("expected resolution after voting, got %s", phase.Kind)
	}
}

func TestNewRejectsBadPlayerCounts(t *testing.T) {
	for _, n := range []int{3, 11} {
		if _, err := New(testConfig(n), rand.New(rand.NewSource(1))); !errors.Is(err, ErrPlayerCount) {
			t.Fatalf("%d players: expected player count error, got %v", n, err)
		}
	}
}

func TestImpostorCountScalesWithPlayers(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tests := []struct {
		players int
		want    int
	}{
		{players: 4, want: 1},
		{players: 5, want: 1},
		{players: 7, want: 2},
		{players: 10, want: 2},
	}
	for _, tt := range tests {
		if got := impostorCount(tt.players, rng); got != tt.want {
			t.Fatalf("%d players: expected %d impostors, got %d", tt.players, tt.want, got)
		}
	}
	for i := 0; i < 20; i++ {
		if got := impostorCount(6, rng); got != 1 && got != 2 {
			t.Fatalf("6 players: expected 1 or 2 impostors, got %d", got)
		}
	}
}

func TestCrewmatesGetThreeTasksImpostorsNone(t *testing.T) {
	g := mustSetup(t, 5, 3)
	for _, id := range g.playerIDs {
		want := tasksPerCrewmate
		if g.roles[id].Team == TeamImpostor {
			want = 0
		}
		if len(g.tasks[id]) != want {
			t.Fatalf("%s (%s): expected %d tasks, got %d", id, g.roles[id].Name, want, len(g.tasks[id]))
		}
	}
	crew := len(g.playerIDs) - len(g.impostorIDs())
	if g.total != crew*tasksPerCrewmate {
		t.Fatalf("expected %d total tasks, got %d", crew*tasksPerCrewmate, g.total)
	}
}

func TestActionRoundsRunOnePlayerAtATime(t *testing.T) {
	g := mustSetup(t, 5, 1)
	for _, want := range []string{"a", "b", "c", "d", "e"} {
		phase, err := g.NextPhase()
		if err != nil {
			t.Fatalf("next phase: %v", err)
		}
		if phase.Kind != domain.PhaseAction || phase.Round != 1 {
			t.Fatalf("expected round 1 action phase, got %s round %d", phase.Kind, phase.Round)
		}
		if len(phase.ActiveIDs) != 1 || phase.ActiveIDs[0] != want {
			t.Fatalf("expected %s to act, got %v", want, phase.ActiveIDs)
		}
	}
	phase, err := g.NextPhase()
	if err != nil {
		t.Fatalf("next phase: %v", err)
	}
	if phase.Round != 2 {
		t.Fatalf("expected round 2 after the queue drained, got round %d", phase.Round)
	}
}

func TestMoveShowsCoLocatedPlayers(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixRoles(g, 1)

	actionTurn(t, g, "a")
	outcome := apply(t, g, "a", "move", map[string]any{"location": "reactor"})
	if !outcome.Success {
		t.Fatalf("move should succeed: %s", outcome.Result)
	}
	if !strings.Contains(outcome.Result, "No other players here") {
		t.Fatalf("expected empty room notice, got %q", outcome.Result)
	}
	if g.location["a"] != "Reactor" {
		t.Fatalf("expected case-insensitive match to Reactor, got %q", g.location["a"])
	}

	actionTurn(t, g, "b")
	outcome = apply(t, g, "b", "move", map[string]any{"location": "Reactor"})
	if !strings.Contains(outcome.Result, "A") {
		t.Fatalf("expected to see A in the room, got %q", outcome.Result)
	}

	actionTurn(t, g, "c")
	if _, err := g.Apply("c", domain.Action{Name: "move", Args: map[string]any{"location": "Bridge"}}); !errors.Is(err, domain.ErrIllegalAction) {
		t.Fatalf("expected illegal action for unknown location, got %v", err)
	}
}

func TestTaskCompletionEndsGameForCrew(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixRoles(g, 1)
	g.tasks = map[string][]task{
		"b": {{Location: "Cafeteria", Name: "Fix wiring"}},
	}
	g.completed = 0
	g.total = 1

	actionTurn(t, g, "b")
	outcome := apply(t, g, "b", "do_task", nil)
	if !outcome.Success {
		t.Fatalf("do_task should succeed at the task's location: %s", outcome.Result)
	}
	if !strings.Contains(outcome.Result, "1/1") {
		t.Fatalf("expected progress 1/1, got %q", outcome.Result)
	}

	result, done := g.Terminal()
	if !done {
		t.Fatal("expected the game to end when all tasks are complete")
	}
	if result.Metadata["winner_team"] != TeamCrew {
		t.Fatalf("expected crew win, got %v", result.Metadata)
	}
	if result.Metadata["reason"] != "all tasks were completed" {
		t.Fatalf("unexpected reason: %v", result.Metadata["reason"])
	}
}

func TestTaskAtWrongLocationConsumesTurnWithoutError(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixRoles(g, 1)
	g.tasks = map[string][]task{
		"b": {{Location: "Reactor", Name: "Divert power"}},
	}
	g.total = 1

	actionTurn(t, g, "b")
	outcome := apply(t, g, "b", "do_task", nil)
	if outcome.Success {
		t.Fatal("do_task away from the task location should not succeed")
	}
	if !strings.Contains(outcome.Result, "Reactor") {
		t.Fatalf("expected the result to point at the remaining task, got %q", outcome.Result)
	}
	if g.completed != 0 {
		t.Fatalf("expected no progress, got %d", g.completed)
	}
}

func TestImpostorFakesTasks(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixRoles(g, 1)

	actionTurn(t, g, "a")
	outcome := apply(t, g, "a", "do_task", nil)
	if !outcome.Success || !strings.Contains(outcome.Result, "pretended") {
		t.Fatalf("impostor do_task should fake it, got %q", outcome.Result)
	}
	if g.completed != 0 {
		t.Fatalf("faked task must not advance progress, got %d", g.completed)
	}
}

func TestKillRequiresSharedLocation(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixRoles(g, 1)
	g.location["b"] = "Reactor"

	actionTurn(t, g, "a")
	if _, err := g.Apply("a", domain.Action{Name: "kill", Args: map[string]any{"target": "b"}}); !errors.Is(err, domain.ErrIllegalAction) {
		t.Fatalf("expected illegal action for a remote kill, got %v", err)
	}

	outcome := apply(t, g, "a", "kill", map[string]any{"target": "c"})
	if !outcome.Success {
		t.Fatalf("co-located kill should succeed: %s", outcome.Result)
	}
	if len(outcome.VisibleTo) != 1 || outcome.VisibleTo[0] != "a" {
		t.Fatalf("kill outcome must be visible only to the killer, got %v", outcome.VisibleTo)
	}
	if g.alive["c"] {
		t.Fatal("victim should be dead")
	}
	if g.bodies["c"] != "Cafeteria" {
		t.Fatalf("expected a body at Cafeteria, got %q", g.bodies["c"])
	}
	if g.cooldown["a"] != killCooldownRounds {
		t.Fatalf("expected cooldown %d, got %d", killCooldownRounds, g.cooldown["a"])
	}
}

func TestKillCooldownBlocksSecondKill(t *testing.T) {
	g := mustSetup(t, 6, 1)
	fixRoles(g, 1)

	actionTurn(t, g, "a")
	apply(t, g, "a", "kill", map[string]any{"target": "b"})

	actionTurn(t, g, "a") // round 2, cooldown ticks 2 -> 1
	if _, err := g.Apply("a", domain.Action{Name: "kill", Args: map[string]any{"target": "c"}}); !errors.Is(err, domain.ErrIllegalAction) {
		t.Fatalf("expected cooldown to block the kill, got %v", err)
	}
}

func TestCrewmateCannotKill(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixRoles(g, 1)

	actionTurn(t, g, "b")
	if _, err := g.Apply("b", domain.Action{Name: "kill", Args: map[string]any{"target": "c"}}); !errors.Is(err, domain.ErrIllegalAction) {
		t.Fatalf("expected illegal action for a crewmate kill, got %v", err)
	}
}

func TestImpostorCannotKillTeammateOrSelf(t *testing.T) {
	g := mustSetup(t, 7, 1)
	fixRoles(g, 2)

	actionTurn(t, g, "a")
	if _, err := g.Apply("a", domain.Action{Name: "kill", Args: map[string]any{"target": "b"}}); !errors.Is(err, domain.ErrIllegalAction) {
		t.Fatalf("expected illegal action for killing a fellow impostor, got %v", err)
	}
	if _, err := g.Apply("a", domain.Action{Name: "kill", Args: map[string]any{"target": "a"}}); !errors.Is(err, domain.ErrIllegalAction) {
		t.Fatalf("expected illegal action for a self kill, got %v", err)
	}
}

func TestReportBodyTriggersMeetingAndClearsBodies(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixRoles(g, 1)

	actionTurn(t, g, "a")
	apply(t, g, "a", "kill", map[string]any{"target": "b"})

	actionTurn(t, g, "c")
	outcome := apply(t, g, "c", "report_body", nil)
	if !outcome.Success || !strings.Contains(outcome.Result, "B") {
		t.Fatalf("expected a report naming B, got %q", outcome.Result)
	}
	if !g.meetingTriggered {
		t.Fatal("report should trigger a meeting")
	}
	if len(g.bodies) != 0 {
		t.Fatalf("reported bodies should be cleared, got %v", g.bodies)
	}

	phase, err := g.NextPhase()
	if err != nil {
		t.Fatalf("next phase: %v", err)
	}
	if phase.Kind != domain.PhaseDiscussion {
		t.Fatalf("expected a discussion after the report, got %s", phase.Kind)
	}
	if len(phase.ActiveIDs) != 4 {
		t.Fatalf("expected 4 living discussants, got %v", phase.ActiveIDs)
	}
}

func TestReportWithoutBodyIsIllegal(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixRoles(g, 1)

	actionTurn(t, g, "a")
	if _, err := g.Apply("a", domain.Action{Name: "report_body", Args: nil}); !errors.Is(err, domain.ErrIllegalAction) {
		t.Fatalf("expected illegal action with no body present, got %v", err)
	}
}

func TestEmergencyMeetingBudgetIsOnePerPlayer(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixRoles(g, 1)

	actionTurn(t, g, "b")
	apply(t, g, "b", "call_meeting", nil)
	runMeeting(t, g, nil)

	actionTurn(t, g, "b")
	if _, err := g.Apply("b", domain.Action{Name: "call_meeting", Args: nil}); !errors.Is(err, domain.ErrIllegalAction) {
		t.Fatalf("expected the second meeting call to be illegal, got %v", err)
	}
}

func TestVoteEjectsUniqueTopOverSkips(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixRoles(g, 1)

	actionTurn(t, g, "b")
	apply(t, g, "b", "call_meeting", nil)
	runMeeting(t, g, map[string]string{"b": "a", "c": "a", "d": "a", "e": "skip", "a": "skip"})

	if g.alive["a"] {
		t.Fatal("expected a to be ejected")
	}
	ejected := false
	for _, e := range g.events {
		if strings.Contains(e, "A was ejected") && strings.Contains(e, "Impostor") {
			ejected = true
		}
	}
	if !ejected {
		t.Fatalf("expected an ejection event revealing the role, got %v", g.events)
	}

	result, done := g.Terminal()
	if !done || result.Metadata["winner_team"] != TeamCrew {
		t.Fatalf("ejecting the only impostor should end the game for crew, got done=%v %v", done, result.Metadata)
	}
	if result.Metadata["reason"] != "all impostors were ejected" {
		t.Fatalf("unexpected reason: %v", result.Metadata["reason"])
	}
}

func TestVoteSkipMajorityEjectsNoOne(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixRoles(g, 1)

	actionTurn(t, g, "b")
	apply(t, g, "b", "call_meeting", nil)
	runMeeting(t, g, map[string]string{"b": "a", "c": "a"})

	for _, id := range g.playerIDs {
		if !g.alive[id] {
			t.Fatalf("no one should be ejected when skips win, but %s is dead", id)
		}
	}
}

func TestVoteTieEjectsNoOne(t *testing.T) {
	g := mustSetup(t, 6, 1)
	fixRoles(g, 1)

	actionTurn(t, g, "b")
	apply(t, g, "b", "call_meeting", nil)
	runMeeting(t, g, map[string]string{"a": "b", "c": "b", "b": "a", "d": "a", "e": "a", "f": "b"})

	for _, id := range g.playerIDs {
		if !g.alive[id] {
			t.Fatalf("a tied vote should eject no one, but %s is dead", id)
		}
	}
}

func TestVotesArePrivateUntilTallied(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixRoles(g, 1)

	actionTurn(t, g, "b")
	apply(t, g, "b", "call_meeting", nil)
	phase, err := g.NextPhase()
	if err != nil || phase.Kind != domain.PhaseDiscussion {
		t.Fatalf("expected discussion, got %s (%v)", phase.Kind, err)
	}
	for _, id := range g.aliveIDs() {
		apply(t, g, id, "statement", map[string]any{"statement": "sus"})
	}
	if phase, err = g.NextPhase(); err != nil || phase.Kind != domain.PhaseVoting {
		t.Fatalf("expected voting, got %s (%v)", phase.Kind, err)
	}

	outcome := apply(t, g, "b", "vote", map[string]any{"target": "a"})
	if outcome.VisibleToParticipant("c") {
		t.Fatal("a vote should not be visible to other players before the tally")
	}
	if !outcome.VisibleToParticipant("b") {
		t.Fatal("a vote should be visible to the voter")
	}
}

func TestImpostorParityWins(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixRoles(g, 1)
	g.alive["c"] = false
	g.alive["d"] = false
	g.alive["e"] = false

	result, done := g.Terminal()
	if !done || result.Metadata["winner_team"] != TeamImpostor {
		t.Fatalf("expected impostor parity win, got done=%v %v", done, result.Metadata)
	}
	if result.Metadata["reason"] != "impostors reached parity with the crew" {
		t.Fatalf("unexpected reason: %v", result.Metadata["reason"])
	}
}

func TestRoundCapEndsInDraw(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixRoles(g, 1)
	g.maxRounds = 1

	for i := 0; i < 5; i++ {
		phase, err := g.NextPhase()
		if err != nil {
			t.Fatalf("next phase: %v", err)
		}
		if phase.Kind != domain.PhaseAction {
			t.Fatalf("expected an action phase, got %s", phase.Kind)
		}
	}

	phase, err := g.NextPhase()
	if err != nil {
		t.Fatalf("next phase: %v", err)
	}
	if !phase.Terminal() {
		t.Fatalf("expected game over at the round cap, got %s", phase.Kind)
	}

	result, done := g.Terminal()
	if !done {
		t.Fatal("expected a terminal outcome")
	}
	if len(result.WinnerIDs) != 0 || len(result.LoserIDs) != 5 {
		t.Fatalf("a round-cap draw has no winners, got %v / %v", result.WinnerIDs, result.LoserIDs)
	}
	if result.Metadata[domain.MetadataTermination] != string(domain.TerminationRoundCap) {
		t.Fatalf("expected round_cap termination, got %v", result.Metadata[domain.MetadataTermination])
	}
}

func TestMeetingResumesWithFreshActionRound(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixRoles(g, 1)

	actionTurn(t, g, "a") // round 1, b..e still queued
	apply(t, g, "a", "call_meeting", nil)
	runMeeting(t, g, nil)

	phase, err := g.NextPhase()
	if err != nil {
		t.Fatalf("next phase: %v", err)
	}
	if phase.Kind != domain.PhaseAction || phase.Round != 2 {
		t.Fatalf("expected a fresh action round after the meeting, got %s round %d", phase.Kind, phase.Round)
	}
	if g.actingID != "a" {
		t.Fatalf("expected the turn order to restart at a, got %s", g.actingID)
	}
}

func TestImpostorViewShowsTeammates(t *testing.T) {
	g := mustSetup(t, 7, 1)
	fixRoles(g, 2)
	actionTurn(t, g, "a")

	if view := g.View("a"); !strings.Contains(view, "fellow impostors: B") {
		t.Fatalf("impostor view should name teammates:\n%s", view)
	}
	if view := g.View("c"); strings.Contains(view, "fellow impostors") {
		t.Fatalf("crew view must not reveal impostors:\n%s", view)
	}
}

func TestDefaultActionsAreAlwaysLegal(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixRoles(g, 1)

	actionTurn(t, g, "a")
	action := g.DefaultAction("a", domain.Phase{})
	if action.Name != "do_task" {
		t.Fatalf("expected do_task default in action rounds, got %q", action.Name)
	}
	if _, err := g.Apply("a", action); err != nil {
		t.Fatalf("default action should apply cleanly: %v", err)
	}

	actionTurn(t, g, "b")
	apply(t, g, "b", "call_meeting", nil)
	if _, err := g.NextPhase(); err != nil {
		t.Fatalf("next phase: %v", err)
	}
	action = g.DefaultAction("c", domain.Phase{})
	if action.Name != "statement" {
		t.Fatalf("expected statement default in discussions, got %q", action.Name)
	}
	if _, err := g.Apply("c", action); err != nil {
		t.Fatalf("default statement should apply cleanly: %v", err)
	}
}
