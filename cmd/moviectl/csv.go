package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"topmovies/internal/movies"
	"topmovies/pkg/models"
)

var csvHeader = []string{"title", "year", "description", "img_url", "rating", "review"}

func exportCSV(ctx context.Context, repo *movies.Repo, w io.Writer) (int, error) {
	list, err := repo.ListByRatingAsc(ctx)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, err
	}
	for _, m := range list {
		rating := ""
		if m.Rating != nil {
			rating = strconv.FormatFloat(*m.Rating, 'f', -1, 64)
		}
		review := ""
		if m.Review != nil {
			review = *m.Review
		}
		if err := cw.Write([]string{
			m.Title,
			strconv.Itoa(m.Year),
			m.Description,
			m.ImgURL,
			rating,
			review,
		}); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(list), cw.Error()
}

// importCSV upserts every row keyed by title. Rows without a title are skipped.
func importCSV(ctx context.Context, repo *movies.Repo, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := readHeader(cr)
	if err != nil {
		return 0, err
	}

	n := 0
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return n, err
		}

		title := valueAt(header, row, "title")
		if title == "" {
			continue
		}

		year, err := strconv.Atoi(valueAt(header, row, "year"))
		if err != nil {
			return n, fmt.Errorf("line %d: parse year for %q: %w", line, title, err)
		}

		m := models.Movie{
			Title:       title,
			Year:        year,
			Description: valueAt(header, row, "description"),
			ImgURL:      valueAt(header, row, "img_url"),
		}
		if raw := valueAt(header, row, "rating"); raw != "" {
			v, err := movies.ParseRating(raw)
			if err != nil {
				return n, fmt.Errorf("line %d: %w", line, err)
			}
			m.Rating = &v
		}
		if raw := valueAt(header, row, "review"); raw != "" {
			m.Review = &raw
		}

		if err := repo.Upsert(ctx, m); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		n++
	}
	return n, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
