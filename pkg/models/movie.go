package models

import "time"

// Movie is a single entry on the personal list.
//
// Rating and Review stay nil until the user rates the movie.
type Movie struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Year        int       `json:"year"`
	Description string    `json:"description"`
	ImgURL      string    `json:"img_url"`
	Rating      *float64  `json:"rating,omitempty"`
	Review      *string   `json:"review,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Rated reports whether the movie has a rating yet.
func (m Movie) Rated() bool {
	return m.Rating != nil
}

// NewMovie carries the fields resolved from the metadata API when a movie is added.
type NewMovie struct {
	Title       string
	Year        int
	Description string
	ImgURL      string
}

// RankedMovie pairs a Movie with the rank derived for one list view.
// Ranking is never stored; 1 is the highest rated movie.
type RankedMovie struct {
	Movie
	Ranking int `json:"ranking"`
}
