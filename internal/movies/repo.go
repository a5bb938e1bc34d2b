package movies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-sqlite3"

	"topmovies/pkg/models"
)

const (
	MinRating       = 0.0
	MaxRating       = 10.0
	MaxReviewLength = 250
)

const movieColumns = `id, title, year, description, img_url, rating, review, created_at, updated_at`

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Insert stores a freshly resolved movie with no rating or review.
func (r *Repo) Insert(ctx context.Context, m models.NewMovie) (int64, error) {
	m.Title = strings.TrimSpace(m.Title)
	m.Description = strings.TrimSpace(m.Description)
	m.ImgURL = strings.TrimSpace(m.ImgURL)
	if err := validateNew(m); err != nil {
		return 0, err
	}

	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO movies (title, year, description, img_url)
		VALUES (?, ?, ?, ?)
	`, m.Title, m.Year, m.Description, m.ImgURL)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert %q: %w", m.Title, ErrDuplicateTitle)
		}
		return 0, fmt.Errorf("insert movie: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// UpdateRating sets rating and review. Nothing is written unless both are valid.
func (r *Repo) UpdateRating(ctx context.Context, id int64, rating, review string) error {
	value, err := ParseRating(rating)
	if err != nil {
		return err
	}
	review, err = normalizeReview(review)
	if err != nil {
		return err
	}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE movies
		SET rating = ?, review = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, value, review, id)
	if err != nil {
		return fmt.Errorf("update rating: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("movie %d: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a movie. Deleting an unknown or already deleted id fails.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("movie %d: %w", id, ErrNotFound)
	}
	return nil
}

// Get fails with ErrNotFound when no movie has the id.
func (r *Repo) Get(ctx context.Context, id int64) (*models.Movie, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id)

	m, err := scanMovie(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("movie %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scan get: %w", err)
	}
	return m, nil
}

// ListByRatingAsc returns every movie, unrated ones first, then by ascending
// rating. Equal ratings fall back to insertion order.
func (r *Repo) ListByRatingAsc(ctx context.Context) ([]models.Movie, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+movieColumns+`
		FROM movies
		ORDER BY rating IS NOT NULL, rating ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// ListRanked lists movies and derives their ranks in one step.
func (r *Repo) ListRanked(ctx context.Context) ([]models.RankedMovie, error) {
	ms, err := r.ListByRatingAsc(ctx)
	if err != nil {
		return nil, err
	}
	return Rank(ms), nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

// Upsert writes a complete record keyed by title. Only bulk import uses it.
func (r *Repo) Upsert(ctx context.Context, m models.Movie) error {
	nm := models.NewMovie{
		Title:       strings.TrimSpace(m.Title),
		Year:        m.Year,
		Description: strings.TrimSpace(m.Description),
		ImgURL:      strings.TrimSpace(m.ImgURL),
	}
	if err := validateNew(nm); err != nil {
		return err
	}

	// rating and review are set together or not at all
	var (
		rating sql.NullFloat64
		review sql.NullString
	)
	switch {
	case m.Rating == nil && m.Review == nil:
	case m.Rating == nil:
		return fmt.Errorf("%w: review without a rating", ErrInvalidInput)
	case m.Review == nil:
		return fmt.Errorf("%w: rating without a review", ErrInvalidInput)
	default:
		if !validRating(*m.Rating) {
			return fmt.Errorf("%w: rating %v out of range", ErrInvalidInput, *m.Rating)
		}
		text, err := normalizeReview(*m.Review)
		if err != nil {
			return err
		}
		rating = sql.NullFloat64{Float64: *m.Rating, Valid: true}
		review = sql.NullString{String: text, Valid: true}
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO movies (title, year, description, img_url, rating, review)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(title) DO UPDATE SET
			year = excluded.year,
			description = excluded.description,
			img_url = excluded.img_url,
			rating = excluded.rating,
			review = excluded.review,
			updated_at = CURRENT_TIMESTAMP
	`, nm.Title, nm.Year, nm.Description, nm.ImgURL, rating, review)
	if err != nil {
		return fmt.Errorf("upsert movie: %w", err)
	}
	return nil
}

// ParseRating parses user supplied rating text such as "7.5".
func ParseRating(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: rating is required", ErrInvalidInput)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: rating %q is not a number", ErrInvalidInput, s)
	}
	if !validRating(v) {
		return 0, fmt.Errorf("%w: rating must be between 0 and 10", ErrInvalidInput)
	}
	return v, nil
}

func validRating(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= MinRating && v <= MaxRating
}

func normalizeReview(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: review is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(s) > MaxReviewLength {
		return "", fmt.Errorf("%w: review must be at most %d characters", ErrInvalidInput, MaxReviewLength)
	}
	return s, nil
}

func validateNew(m models.NewMovie) error {
	switch {
	case m.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	case m.Year <= 0:
		return fmt.Errorf("%w: year is required", ErrInvalidInput)
	case m.Description == "":
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	case m.ImgURL == "":
		return fmt.Errorf("%w: image url is required", ErrInvalidInput)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(s rowScanner) (*models.Movie, error) {
	var (
		m       models.Movie
		rating  sql.NullFloat64
		review  sql.NullString
		created time.Time
		updated time.Time
	)
	if err := s.Scan(
		&m.ID, &m.Title, &m.Year, &m.Description, &m.ImgURL, &rating, &review, &created, &updated,
	); err != nil {
		return nil, err
	}

	if rating.Valid {
		v := rating.Float64
		m.Rating = &v
	}
	if review.Valid {
		v := review.String
		m.Review = &v
	}
	m.CreatedAt = created
	m.UpdatedAt = updated
	return &m, nil
}
