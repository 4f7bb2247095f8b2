package impostor

import (
	"math/rand"
	"strings"

	"github.com/louisbranch/arena/internal/game/domain"
)

// Team labels for role allegiance.
const (
	TeamImpostor = "impostor"
	TeamCrew     = "crew"
)

// locations lists every room on the station.
var locations = []string{
	"Cafeteria",
	"Reactor",
	"Electrical",
	"MedBay",
	"Navigation",
	"Security",
	"Admin",
	"Storage",
}

// locationTasks maps each location to the tasks available there.
var locationTasks = map[string][]string{
	"Cafeteria":  {"Empty garbage", "Fix wiring", "Accept diverted power"},
	"Reactor":    {"Start reactor sequence", "Unlock manifolds", "Divert power"},
	"Electrical": {"Fix wiring", "Calibrate distributor", "Divert power"},
	"MedBay":     {"Submit scan", "Inspect sample", "Sort samples"},
	"Navigation": {"Chart course", "Stabilize steering", "Fix wiring"},
	"Security":   {"Fix wiring", "Sort files", "Swipe card"},
	"Admin":      {"Swipe card", "Upload data", "Fix wiring"},
	"Storage":    {"Empty garbage", "Fuel engines", "Fix wiring"},
}

const startLocation = "Cafeteria"

var roleImpostor = domain.Role{
	Name: "Impostor",
	Team: TeamImpostor,
	Description: "You are an IMPOSTOR aboard the space station. Your goal is to " +
		"eliminate crewmates without being discovered. You can fake tasks, " +
		"kill crewmates when you are alone with them, and manipulate " +
		"discussions to avoid suspicion. You win when the number of living " +
		"impostors equals the number of living crewmates.",
	Hidden: true,
}

var roleCrewmate = domain.Role{
	Name: "Crewmate",
	Team: TeamCrew,
	Description: "You are a CREWMATE aboard the space station. Complete your assigned " +
		"tasks by traveling to the correct locations and performing them. " +
		"Stay alert for suspicious behavior; if you find a dead body, " +
		"report it immediately. During discussions, work with other crewmates " +
		"to identify and vote out the impostor(s). You win when all tasks " +
		"are completed or all impostors are ejected.",
	Hidden: true,
}

// impostorCount scales with the player count: 4-5 players one impostor,
// exactly 6 randomly one or two, 7-10 two.
func impostorCount(numPlayers int, rng *rand.Rand) int {
	switch {
	case numPlayers <= 5:
		return 1
	case numPlayers == 6:
		return 1 + rng.Intn(2)
	default:
		return 2
	}
}

func assignRoles(ids []string, rng *rand.Rand) map[string]domain.Role {
	numImpostors := impostorCount(len(ids), rng)

	shuffled := append([]string(nil), ids...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	assignments := make(map[string]domain.Role, len(ids))
	for i, id := range shuffled {
		if i < numImpostors {
			assignments[id] = roleImpostor
		} else {
			assignments[id] = roleCrewmate
		}
	}
	return assignments
}

// task is one assignment on a crewmate's list.
type task struct {
	Location  string
	Name      string
	Completed bool
}

const tasksPerCrewmate = 3

// generateTasks deals three distinct location-task pairs to each
// crewmate. Impostors get none; they fake their work.
func generateTasks(ids []string, roles map[string]domain.Role, rng *rand.Rand) map[string][]task {
	pairs := make([]task, 0, len(locations)*3)
	for _, loc := range locations {
		for _, name := range locationTasks[loc] {
			pairs = append(pairs, task{Location: loc, Name: name})
		}
	}

	out := make(map[string][]task, len(ids))
	for _, id := range ids {
		if roles[id].Team == TeamImpostor {
			out[id] = nil
			continue
		}
		shuffled := append([]task(nil), pairs...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		out[id] = append([]task(nil), shuffled[:tasksPerCrewmate]...)
	}
	return out
}

// normalizeLocation resolves a location name case-insensitively.
func normalizeLocation(name string) (string, bool) {
	for _, loc := range locations {
		if strings.EqualFold(loc, name) {
			return loc, true
		}
	}
	return "", false
}
