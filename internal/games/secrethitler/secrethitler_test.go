package secrethitler

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
		t.Fatalf("new secret hitler game: %v", err)
	}
	g := eng.(*game)
	if err := g.Setup(); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return g
}

// fixSeats pins the seat order to config order and the roles to a known
// layout: a is Hitler, the next fascistCount-1 seats regular Fascists,
// everyone else Liberal. The presidency restarts at seat a.
func fixSeats(g *game) {
	g.seatOrder = nil
	for _, p := range g.cfg.Participants {
		g.seatOrder = append(g.seatOrder, p.ID)
	}
	fascists := 2
	if len(g.seatOrder) >= 9 {
		fascists = 4
	} else if len(g.seatOrder) >= 7 {
		fascists = 3
	}
	g.roles = map[string]domain.Role{}
	for i, id := range g.seatOrder {
		switch {
		case i == 0:
			g.roles[id] = roleHitler
		case i < fascists:
			g.roles[id] = roleFascist
		default:
			g.roles[id] = roleLiberal
		}
	}
	g.presidentIndex = 0
	g.presidentID = g.seatOrder[0]
	g.computeTermLimits()
}

func TestNewRejectsBadPlayerCounts(t *testing.T) {
	for _, n := range []int{4, 11} {
		if _, err := New(testConfig(n), rand.New(rand.NewSource(1))); !errors.Is(err, ErrPlayerCount) {
			t.Fatalf("%d players: expected player count error, got %v", n, err)
		}
	}
}

func TestRoleCountsScaleWithPlayers(t *testing.T) {
	tests := []struct {
		players     int
		fascistTeam int
	}{
		{5, 2}, {6, 2}, {7, 3}, {8, 3}, {9, 4}, {10, 4},
	}

	for _, tt := range tests {
		g := mustSetup(t, tt.players, 7)
		hitlers, fascistTeam := 0, 0
		for _, role := range g.roles {
			if role.Team == TeamFascist {
				fascistTeam++
			}
			if role.Name == roleHitler.Name {
				hitlers++
			}
		}
		if hitlers != 1 {
			t.Fatalf("%d players: expected exactly one Hitler, got %d", tt.players, hitlers)
		}
		if fascistTeam != tt.fascistTeam {
			t.Fatalf("%d players: expected %d fascist team members, got %d", tt.players, tt.fascistTeam, fascistTeam)
		}
	}
}

func TestPresidentialPowerTable(t *testing.T) {
	tests := []struct {
		players  int
		policies int
		want     string
	}{
		{5, 1, ""},
		{6, 3, powerPeek},
		{6, 4, powerExecution},
		{7, 2, powerInvestigate},
		{7, 3, powerSpecialElection},
		{8, 4, powerExecution},
		{9, 1, powerInvestigate},
		{10, 2, powerInvestigate},
		{10, 5, powerExecution},
	}

	for _, tt := range tests {
		if got := presidentialPower(tt.players, tt.policies); got != tt.want {
			t.Fatalf("%d players, %d policies: expected %q, got %q", tt.players, tt.policies, tt.want, got)
		}
	}
}

func TestRoundFlowsThroughLegislativeSession(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixSeats(g)

	want := []struct {
		kind  domain.PhaseKind
		label string
	}{
		{domain.PhaseDiscussion, "discussion"},
		{domain.PhaseAction, "nomination"},
	}
	for i, step := range want {
		phase, err := g.NextPhase()
		if err != nil {
			t.Fatalf("next phase %d: %v", i, err)
		}
		if phase.Kind != step.kind || phase.Label != step.label {
			t.Fatalf("phase %d: expected %s/%s, got %s/%s", i, step.kind, step.label, phase.Kind, phase.Label)
		}
	}

	if _, err := g.Apply("a", domain.Action{Name: "nominate", Args: map[string]any{"target": "c"}}); err != nil {
		t.Fatalf("nominate: %v", err)
	}

	phase, err := g.NextPhase()
	if err != nil {
		t.Fatalf("voting phase: %v", err)
	}
	if phase.Kind != domain.PhaseVoting {
		t.Fatalf("expected voting phase, got %s", phase.Kind)
	}
	for _, id := range phase.ActiveIDs {
		outcome, err := g.Apply(id, domain.Action{Name: "vote", Args: map[string]any{"vote": "ja"}})
		if err != nil {
			t.Fatalf("vote %s: %v", id, err)
		}
		if len(outcome.VisibleTo) != 1 || outcome.VisibleTo[0] != id {
			t.Fatalf("expected votes to stay secret until tallied, got %v", outcome.VisibleTo)
		}
	}

	phase, err = g.NextPhase()
	if err != nil {
		t.Fatalf("vote result phase: %v", err)
	}
	if phase.Kind != domain.PhaseResolution || phase.Label != "vote_result" {
		t.Fatalf("expected vote result resolution, got %s/%s", phase.Kind, phase.Label)
	}
	if g.chancellorID != "c" {
		t.Fatalf("expected c as chancellor, got %q", g.chancellorID)
	}
	if len(g.drawnPolicies) != 3 {
		t.Fatalf("expected president to draw 3 policies, got %d", len(g.drawnPolicies))
	}

	phase, err = g.NextPhase()
	if err != nil {
		t.Fatalf("discard phase: %v", err)
	}
	if phase.Label != "president_discard" || phase.ActiveIDs[0] != "a" {
		t.Fatalf("expected president discard phase for a, got %s %v", phase.Label, phase.ActiveIDs)
	}
	outcome, err := g.Apply("a", domain.Action{Name: "discard", Args: map[string]any{"index": 0}})
	if err != nil {
		t.Fatalf("discard: %v", err)
	}
	if len(outcome.VisibleTo) != 1 || outcome.VisibleTo[0] != "a" {
		t.Fatal("expected the discard to be private to the president")
	}

	phase, err = g.NextPhase()
	if err != nil {
		t.Fatalf("enact phase: %v", err)
	}
	if phase.Label != "chancellor_enact" || phase.ActiveIDs[0] != "c" {
		t.Fatalf("expected chancellor enact phase for c, got %s %v", phase.Label, phase.ActiveIDs)
	}
	if _, err := g.Apply("c", domain.Action{Name: "enact", Args: map[string]any{"index": 0}}); err != nil {
		t.Fatalf("enact: %v", err)
	}
	if g.liberalEnacted+g.fascistEnacted != 1 {
		t.Fatalf("expected exactly one enacted policy, got L%d F%d", g.liberalEnacted, g.fascistEnacted)
	}
}

func TestNominationRespectsTermLimits(t *testing.T) {
	g := mustSetup(t, 7, 1)
	fixSeats(g)
	g.prevChancellorID = "c"
	g.prevPresidentID = "d"
	g.computeTermLimits()
	g.sub = subNomination

	for _, target := range []string{"c", "d", "a"} {
		_, err := g.Apply("a", domain.Action{Name: "nominate", Args: map[string]any{"target": target}})
		if !errors.Is(err, domain.ErrIllegalAction) {
			t.Fatalf("target %s: expected illegal nomination, got %v", target, err)
		}
	}
	if _, err := g.Apply("a", domain.Action{Name: "nominate", Args: map[string]any{"target": "e"}}); err != nil {
		t.Fatalf("expected e to be eligible: %v", err)
	}
}

func TestPreviousPresidentEligibleWithFiveAlive(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixSeats(g)
	g.prevChancellorID = "c"
	g.prevPresidentID = "d"
	g.computeTermLimits()

	if g.termLimited["d"] {
		t.Fatal("expected the previous president to be eligible with 5 or fewer alive")
	}
	if !g.termLimited["c"] {
		t.Fatal("expected the previous chancellor to always be term-limited")
	}
}

func TestFailedVoteAdvancesElectionTracker(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixSeats(g)
	g.sub = subVoting
	g.chancellorNomineeID = "c"
	g.votes = map[string]string{"a": "ja", "b": "nein", "c": "nein", "d": "nein", "e": "ja"}

	if err := g.resolveVote(); err != nil {
		t.Fatalf("resolve vote: %v", err)
	}
	if g.electionTracker != 1 {
		t.Fatalf("expected tracker at 1, got %d", g.electionTracker)
	}
	if g.afterVote != subRoundEnd {
		t.Fatalf("expected the round to end after a failed vote, got %s", g.afterVote)
	}
	if g.chancellorID != "" {
		t.Fatal("expected no chancellor after a failed vote")
	}
}

func TestThreeFailedElectionsEnactChaosPolicy(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixSeats(g)
	g.sub = subVoting
	g.chancellorNomineeID = "c"
	g.electionTracker = 2
	g.prevPresidentID = "d"
	g.prevChancellorID = "e"
	g.votes = map[string]string{"a": "nein", "b": "nein", "c": "nein"}

	if err := g.resolveVote(); err != nil {
		t.Fatalf("resolve vote: %v", err)
	}
	if g.liberalEnacted+g.fascistEnacted != 1 {
		t.Fatal("expected the top policy to be enacted in chaos")
	}
	if g.electionTracker != 0 {
		t.Fatalf("expected tracker reset, got %d", g.electionTracker)
	}
	if g.prevPresidentID != "" || g.prevChancellorID != "" {
		t.Fatal("expected term limits to reset after chaos")
	}
	if g.afterVote != subPolicyEnacted {
		t.Fatalf("expected the policy check to follow chaos, got %s", g.afterVote)
	}
}

func TestTieVoteFails(t *testing.T) {
	g := mustSetup(t, 6, 1)
	fixSeats(g)
	g.sub = subVoting
	g.chancellorNomineeID = "c"
	g.votes = map[string]string{"a": "ja", "b": "ja", "c": "ja", "d": "nein", "e": "nein", "f": "nein"}

	if err := g.resolveVote(); err != nil {
		t.Fatalf("resolve vote: %v", err)
	}
	if g.chancellorID != "" {
		t.Fatal("expected a tie to reject the government")
	}
}

func TestHitlerChancellorWinsAfterThreeFascistPolicies(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixSeats(g)
	g.sub = subVoting
	g.fascistEnacted = 3
	g.chancellorNomineeID = "a" // Hitler
	g.votes = map[string]string{"a": "ja", "b": "ja", "c": "ja"}

	if err := g.resolveVote(); err != nil {
		t.Fatalf("resolve vote: %v", err)
	}
	outcome, done := g.Terminal()
	if !done {
		t.Fatal("expected the game to end with Hitler as chancellor")
	}
	if outcome.Metadata["winner_team"] != TeamFascist {
		t.Fatalf("expected fascist win, got %v", outcome.Metadata["winner_team"])
	}
}

func TestExecutingHitlerWinsForLiberals(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixSeats(g)
	g.sub = subPowerExecution
	g.presidentID = "c"

	outcome, err := g.Apply("c", domain.Action{Name: "execute", Args: map[string]any{"target": "a"}})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(outcome.Result, "They were Hitler") {
		t.Fatalf("expected the execution to reveal Hitler, got %q", outcome.Result)
	}

	final, done := g.Terminal()
	if !done {
		t.Fatal("expected terminal outcome after executing Hitler")
	}
	if final.Metadata["winner_team"] != TeamLiberal {
		t.Fatalf("expected liberal win, got %v", final.Metadata["winner_team"])
	}
}

func TestPresidentCannotExecuteSelf(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixSeats(g)
	g.sub = subPowerExecution

	_, err := g.Apply("a", domain.Action{Name: "execute", Args: map[string]any{"target": "a"}})
	if !errors.Is(err, domain.ErrIllegalAction) {
		t.Fatalf("expected self-execution to be illegal, got %v", err)
	}
}

func TestInvestigationIsPrivateAndShowsMembership(t *testing.T) {
	g := mustSetup(t, 7, 1)
	fixSeats(g)
	g.sub = subPowerInvestigate
	g.presidentID = "d"

	// Hitler's membership card shows Fascist, never the role name.
	outcome, err := g.Apply("d", domain.Action{Name: "investigate", Args: map[string]any{"target": "a"}})
	if err != nil {
		t.Fatalf("investigate: %v", err)
	}
	if !strings.Contains(outcome.Result, "Fascist") || strings.Contains(outcome.Result, "Hitler") {
		t.Fatalf("expected the card to show only the party, got %q", outcome.Result)
	}
	if len(outcome.VisibleTo) != 1 || outcome.VisibleTo[0] != "d" {
		t.Fatalf("expected the result to be private, got %v", outcome.VisibleTo)
	}
}

func TestSpecialElectionOverridesRotation(t *testing.T) {
	g := mustSetup(t, 7, 1)
	fixSeats(g)
	g.chancellorID = "b"

	g.specialElectionID = "e"
	g.beginNextRound()
	if g.presidentID != "e" {
		t.Fatalf("expected the special election winner as president, got %s", g.presidentID)
	}

	// The normal rotation resumes from the old index afterwards.
	g.chancellorID = ""
	g.beginNextRound()
	if g.presidentID != "b" {
		t.Fatalf("expected rotation to resume at b, got %s", g.presidentID)
	}
}

func TestPresidencySkipsDeadPlayers(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixSeats(g)
	g.alive["b"] = false

	g.beginNextRound()
	if g.presidentID != "c" {
		t.Fatalf("expected the presidency to skip the dead player, got %s", g.presidentID)
	}
}

func TestPolicyPeekShowsTopOfDeck(t *testing.T) {
	g := mustSetup(t, 6, 1)
	fixSeats(g)
	g.enactedPolicy = policyFascist
	g.fascistEnacted = 3

	g.resolvePolicyEnacted()
	if g.afterPolicy != subPowerPeek {
		t.Fatalf("expected peek power at 3 fascist policies with 6 players, got %s", g.afterPolicy)
	}
	if len(g.peeked) != 3 {
		t.Fatalf("expected 3 peeked policies, got %d", len(g.peeked))
	}
	if g.policies.Remaining() < 3 {
		t.Fatal("expected the peek to leave the deck untouched")
	}

	g.sub = subPowerPeek
	if !strings.Contains(g.View("a"), string(g.peeked[0])) {
		t.Fatal("expected the president's view to show the peeked policies")
	}
	if strings.Contains(g.View("b"), "peeked at the top") {
		t.Fatal("expected other players not to see the peek")
	}
}

func TestFascistsKnowEachOtherHitlerOnlyInSmallGames(t *testing.T) {
	small := mustSetup(t, 5, 1)
	fixSeats(small)
	small.sub = subDiscussion
	if !strings.Contains(small.View("b"), "Hitler") {
		t.Fatal("expected the fascist to know Hitler")
	}
	if !strings.Contains(small.View("a"), "fascist teammates") {
		t.Fatal("expected Hitler to know the fascist in a 5 player game")
	}

	large := mustSetup(t, 7, 1)
	fixSeats(large)
	large.sub = subDiscussion
	if strings.Contains(large.View("a"), "fascist teammates") {
		t.Fatal("expected Hitler not to know the fascists in a 7 player game")
	}
	if !strings.Contains(large.View("b"), "Hitler") {
		t.Fatal("expected regular fascists to still know Hitler")
	}
	if strings.Contains(large.View("e"), "fascist teammates") {
		t.Fatal("expected liberals to know nothing")
	}
}

func TestRoundCapFavorsLiberals(t *testing.T) {
	g := mustSetup(t, 5, 1)
	fixSeats(g)
	g.round = g.cfg.MaxRounds

	outcome, done := g.Terminal()
	if !done {
		t.Fatal("expected terminal outcome at the round cap")
	}
	if outcome.Metadata["winner_team"] != TeamLiberal {
		t.Fatalf("expected liberals to win the cap, got %v", outcome.Metadata["winner_team"])
	}
	if outcome.Metadata[domain.MetadataTermination] != string(domain.TerminationRoundCap) {
		t.Fatalf("expected round cap termination, got %v", outcome.Metadata[domain.MetadataTermination])
	}
}
