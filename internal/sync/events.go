package sync

import "time"

const (
	EventMovieAdded   = "movie.added"
	EventMovieRated   = "movie.rated"
	EventMovieDeleted = "movie.deleted"
)

type MovieEvent struct {
	Type    string    `json:"type"`
	MovieID int64     `json:"movie_id"`
	Title   string    `json:"title,omitempty"`
	Rating  *float64  `json:"rating,omitempty"`
	At      time.Time `json:"at"`
}

// Publisher lets handlers announce list changes without knowing who listens.
type Publisher interface {
	Publish(ev MovieEvent)
}
