package movies

import "topmovies/pkg/models"

// Rank assigns list positions to movies ordered by ascending rating.
// The last (highest rated) movie gets rank 1 and the first gets len(ms).
// Equal ratings keep their input order. The input slice is not modified.
func Rank(ms []models.Movie) []models.RankedMovie {
	out := make([]models.RankedMovie, len(ms))
	for i, m := range ms {
		out[i] = models.RankedMovie{Movie: m, Ranking: len(ms) - i}
	}
	return out
}

// ByRank returns ranked movies highest rated first, the order the list page shows.
func ByRank(ranked []models.RankedMovie) []models.RankedMovie {
	out := make([]models.RankedMovie, len(ranked))
	for i, r := range ranked {
		out[len(ranked)-1-i] = r
	}
	return out
}
