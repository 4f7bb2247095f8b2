package ratings

import (
	"math"
	"testing"
)

func TestExpectedScoreIsSymmetric(t *testing.T) {
	if got := ExpectedScore(1500, 1500); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("equal ratings: expected 0.5, got %f", got)
	}
	a := ExpectedScore(1600, 1400)
	b := ExpectedScore(1400, 1600)
	if math.Abs(a+b-1.0) > 1e-9 {
		t.Fatalf("expectancies should sum to 1, got %f + %f", a, b)
	}
	if a <= 0.5 {
		t.Fatalf("the stronger player should be favored, got %f", a)
	}
}

func TestUpdateRatingsHeadToHead(t *testing.T) {
	current := map[string]float64{"alpha": 1500, "beta": 1500}
	updated := UpdateRatings(current, []string{"alpha"}, []string{"beta"})

	if math.Abs(updated["alpha"]-1516) > 1e-9 {
		t.Fatalf("winner at equal ratings should gain K/2, got %f", updated["alpha"])
	}
	if math.Abs(updated["beta"]-1484) > 1e-9 {
		t.Fatalf("loser at equal ratings should lose K/2, got %f", updated["beta"])
	}
	if current["alpha"] != 1500 {
		t.Fatal("input map must not be mutated")
	}
}

func TestUpdateRatingsConservesPointsAtEqualRatings(t *testing.T) {
	current := map[string]float64{"a": 1500, "b": 1500, "c": 1500, "d": 1500}
	updated := UpdateRatings(current, []string{"a"}, []string{"b", "c", "d"})

	sum := 0.0
	for _, r := range updated {
		sum += r
	}
	if math.Abs(sum-6000) > 1e-6 {
		t.Fatalf("pairwise updates at equal ratings should conserve points, got sum %f", sum)
	}
	if updated["a"] <= 1500 {
		t.Fatalf("sole winner should gain, got %f", updated["a"])
	}
	for _, loser := range []string{"b", "c", "d"} {
		if updated[loser] >= 1500 {
			t.Fatalf("loser %s should drop, got %f", loser, updated[loser])
		}
	}
}

func TestUpdateRatingsDeltasAverageOverOpponents(t *testing.T) {
	// One win against three equal opponents moves the winner exactly as
	// far as one win against a single equal opponent.
	duel := UpdateRatings(map[string]float64{"w": 1500, "l": 1500}, []string{"w"}, []string{"l"})
	multi := UpdateRatings(
		map[string]float64{"w": 1500, "l1": 1500, "l2": 1500, "l3": 1500},
		[]string{"w"}, []string{"l1", "l2", "l3"},
	)
	if math.Abs(duel["w"]-multi["w"]) > 1e-9 {
		t.Fatalf("averaged delta mismatch: duel %f vs multi %f", duel["w"], multi["w"])
	}
}

func TestUpdateRatingsDrawBetweenEquals(t *testing.T) {
	updated := UpdateRatings(map[string]float64{"a": 1500, "b": 1500}, nil, []string{"a", "b"})
	if updated["a"] != 1500 || updated["b"] != 1500 {
		t.Fatalf("a draw between equals should not move ratings, got %v", updated)
	}
}

func TestUpdateRatingsDrawFavorsUnderdog(t *testing.T) {
	updated := UpdateRatings(map[string]float64{"strong": 1700, "weak": 1300}, nil, []string{"strong", "weak"})
	if updated["strong"] >= 1700 {
		t.Fatalf("the favorite should lose points on a draw, got %f", updated["strong"])
	}
	if updated["weak"] <= 1300 {
		t.Fatalf("the underdog should gain points on a draw, got %f", updated["weak"])
	}
}

func TestUpdateRatingsDefaultsUnknownModels(t *testing.T) {
	updated := UpdateRatings(map[string]float64{}, []string{"new"}, []string{"other"})
	if math.Abs(updated["new"]-(DefaultRating+KFactor/2)) > 1e-9 {
		t.Fatalf("unknown models should start at the default rating, got %f", updated["new"])
	}
}

func TestUpdateRatingsNeedsTwoPlayers(t *testing.T) {
	current := map[string]float64{"solo": 1600}
	updated := UpdateRatings(current, []string{"solo"}, nil)
	if updated["solo"] != 1600 {
		t.Fatalf("single-player games should not move ratings, got %f", updated["solo"])
	}
}
