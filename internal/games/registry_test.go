package games

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/louisbranch/arena/internal/game/domain"
)

func TestRegistryInstallsAllGames(t *testing.T) {
	r := Registry()
	want := []string{"chess", "impostor", "mafia", "poker", "secret_hitler"}
	if got := r.Types(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected types %v, got %v", want, got)
	}
}

func TestRegistryBuildsPlayableEngines(t *testing.T) {
	r := Registry()
	participants := make([]domain.Participant, 5)
	for i := range participants {
		id := string(rune('a' + i))
		participants[i] = domain.Participant{ID: id, Name: id, Model: "m"}
	}

	for _, gameType := range []string{"mafia", "secret_hitler", "impostor"} {
		cfg := domain.Config{GameType: gameType, Participants: participants, MaxRounds: 10}
		eng, err := r.New(cfg, rand.New(rand.NewSource(1)))
		if err != nil {
			t.Fatalf("%s: new engine: %v", gameType, err)
		}
		if err := eng.Setup(); err != nil {
			t.Fatalf("%s: setup: %v", gameType, err)
		}
	}
}

func TestRegistryRejectsUnknownType(t *testing.T) {
	cfg := domain.Config{GameType: "checkers"}
	if _, err := Registry().New(cfg, rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("expected an error for an unregistered game type")
	}
}
