package mafia

import (
	"math/rand"

	"github.com/louisbranch/arena/internal/game/domain"
)

// Team labels for role allegiance.
const (
	TeamMafia = "mafia"
	TeamTown  = "town"
)

var roleMafia = domain.Role{
	Name: "Mafia",
	Team: TeamMafia,
	Description: "You are a member of the Mafia. Each night you choose a player to " +
		"eliminate. During the day you must blend in with the town and avoid " +
		"suspicion. You win when the Mafia equals or outnumbers the remaining " +
		"town players.",
	Hidden: true,
}

var roleDoctor = domain.Role{
	Name: "Doctor",
	Team: TeamTown,
	Description: "You are the Doctor. Each night you may choose one player to protect. " +
		"If the Mafia targets that player, they will survive. You cannot " +
		"protect the same player two nights in a row. During the day, help the " +
		"town identify the Mafia.",
	Hidden: true,
}

var roleDetective = domain.Role{
	Name: "Detective",
	Team: TeamTown,
	Description: "You are the Detective. Each night you may investigate one player to " +
		"learn whether they are a member of the Mafia. Use this information " +
		"carefully during the day to help the town. Be cautious about revealing " +
		"your role; the Mafia will want to eliminate you.",
	Hidden: true,
}

var roleVillager = domain.Role{
	Name: "Villager",
	Team: TeamTown,
	Description: "You are a Villager. You have no special night ability, but your voice " +
		"and vote during the day are critical. Pay close attention to what " +
		"others say, look for inconsistencies, and help the town identify and " +
		"eliminate the Mafia.",
	Hidden: true,
}

// assignRoles deals roles to participant IDs. Games with seven or more
// players get a second Mafia member; there is always one Doctor and one
// Detective, with Villagers filling the remaining seats.
func assignRoles(ids []string, rng *rand.Rand) map[string]domain.Role {
	numMafia := 1
	if len(ids) >= 7 {
		numMafia = 2
	}

	roles := make([]domain.Role, 0, len(ids))
	for i := 0; i < numMafia; i++ {
		roles = append(roles, roleMafia)
	}
	roles = append(roles, roleDoctor, roleDetective)
	for len(roles) < len(ids) {
		roles = append(roles, roleVillager)
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
