package movies

import (
	"math/rand"
	"testing"

	"topmovies/pkg/models"
)

func rated(title string, rating float64) models.Movie {
	return models.Movie{Title: title, Rating: &rating}
}

func TestRankAssignsDescendingPositions(t *testing.T) {
	in := []models.Movie{
		{Title: "Unrated"},
		rated("Meh", 4),
		rated("Good", 7.5),
		rated("Best", 9.8),
	}

	ranked := Rank(in)
	want := map[string]int{"Unrated": 4, "Meh": 3, "Good": 2, "Best": 1}
	for _, r := range ranked {
		if r.Ranking != want[r.Title] {
			t.Errorf("%s ranked %d, want %d", r.Title, r.Ranking, want[r.Title])
		}
	}
}

func TestRankFormsPermutationWithTopRatingFirst(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 1; n <= 25; n++ {
		// distinct ratings in ascending order, as the store returns them
		ms := make([]models.Movie, n)
		base := 0.0
		for i := range ms {
			base += 0.01 + rng.Float64()/10
			ms[i] = rated("m", base)
		}

		ranked := Rank(ms)
		seen := make(map[int]bool, n)
		var top models.RankedMovie
		for _, r := range ranked {
			if r.Ranking < 1 || r.Ranking > n || seen[r.Ranking] {
				t.Fatalf("n=%d: rank %d out of range or duplicated", n, r.Ranking)
			}
			seen[r.Ranking] = true
			if r.Ranking == 1 {
				top = r
			}
		}
		if *top.Rating != *ms[n-1].Rating {
			t.Fatalf("n=%d: rank 1 has rating %v, want max %v", n, *top.Rating, *ms[n-1].Rating)
		}
	}
}

func TestRankTiesKeepInputOrder(t *testing.T) {
	ranked := Rank([]models.Movie{rated("first", 5), rated("second", 5)})
	if ranked[0].Ranking != 2 || ranked[1].Ranking != 1 {
		t.Fatalf("unexpected tie ranks: %d, %d", ranked[0].Ranking, ranked[1].Ranking)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	in := []models.Movie{rated("a", 1), rated("b", 2)}
	_ = Rank(in)
	if in[0].Title != "a" || in[1].Title != "b" {
		t.Fatalf("input reordered: %+v", in)
	}
}

func TestRankEmpty(t *testing.T) {
	if got := Rank(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestByRankReverses(t *testing.T) {
	ordered := ByRank(Rank([]models.Movie{rated("low", 1), rated("mid", 5), rated("high", 9)}))
	for i, title := range []string{"high", "mid", "low"} {
		if ordered[i].Title != title || ordered[i].Ranking != i+1 {
			t.Fatalf("position %d: got %s rank %d", i, ordered[i].Title, ordered[i].Ranking)
		}
	}
}
