package secrethitler

import (
	"math/rand"

	"github.com/louisbranch/arena/internal/game/domain"
)

// Team labels for role allegiance.
const (
	TeamLiberal = "liberal"
	TeamFascist = "fascist"
)

var roleLiberal = domain.Role{
	Name: "Liberal",
	Team: TeamLiberal,
	Description: "You are a Liberal. Your goal is to enact 5 Liberal policies or to " +
		"identify and assassinate Hitler. You do not know anyone else's role. " +
		"During discussions, try to figure out who the Fascists are and vote " +
		"against suspicious Chancellor nominations. Trust is your greatest " +
		"weapon, and your greatest vulnerability.",
	Hidden: true,
}

var roleFascist = domain.Role{
	Name: "Fascist",
	Team: TeamFascist,
	Description: "You are a Fascist. Your goal is to enact 6 Fascist policies or to get " +
		"Hitler elected as Chancellor after 3 or more Fascist policies have been " +
		"enacted. You know who your fellow Fascists are, including Hitler. " +
		"Sow confusion, cast suspicion on Liberals, and protect Hitler's identity " +
		"while working to get Fascist policies enacted.",
	Hidden: true,
}

var roleHitler = domain.Role{
	Name: "Hitler",
	Team: TeamFascist,
	Description: "You are Hitler. Your goal is the same as the Fascists: enact 6 Fascist " +
		"policies, or get yourself elected as Chancellor after 3 or more Fascist " +
		"policies are enacted. You must appear trustworthy and Liberal to avoid " +
		"being assassinated. Play carefully and try to get elected Chancellor " +
		"when the time is right.",
	Hidden: true,
}

// assignRoles deals roles to participant IDs. There is always exactly
// one Hitler; the number of regular Fascists scales with the player
// count (5-6 players one, 7-8 two, 9-10 three).
func assignRoles(ids []string, rng *rand.Rand) map[string]domain.Role {
	numFascists := 1
	switch {
	case len(ids) >= 9:
		numFascists = 3
	case len(ids) >= 7:
		numFascists = 2
	}

	roles := make([]domain.Role, 0, len(ids))
	roles = append(roles, roleHitler)
	for i := 0; i < numFascists; i++ {
		roles = append(roles, roleFascist)
	}
	for len(roles) < len(ids) {
		roles = append(roles, roleLiberal)
	}

	shuffled := append([]string(nil), ids...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	assignments := make(map[string]domain.Role, len(ids))
	for i, id := range shuffled {
		assignments[id] = roles[i]
	}
	return assignments
}

// hitlerKnowsFascists reports whether Hitler learns the other Fascist's
// identity; this only happens in 5-6 player games.
func hitlerKnowsFascists(numPlayers int) bool {
	return numPlayers <= 6
}

// presidentialPower returns the power unlocked by the Nth fascist
// policy, or "" when that slot grants none. The board layout depends on
// the player count.
func presidentialPower(numPlayers, fascistPolicies int) string {
	var table map[int]string
	switch {
	case numPlayers <= 6:
		table = map[int]string{3: powerPeek, 4: powerExecution, 5: powerExecution}
	case numPlayers <= 8:
		table = map[int]string{2: powerInvestigate, 3: powerSpecialElection, 4: powerExecution, 5: powerExecution}
	default:
		table = map[int]string{1: powerInvestigate, 2: powerInvestigate, 3: powerSpecialElection, 4: powerExecution, 5: powerExecution}
	}
	return table[fascistPolicies]
}
