package tmdb

import "errors"

var (
	// ErrMetadataUnavailable covers network failures, timeouts and non-2xx responses.
	ErrMetadataUnavailable = errors.New("tmdb: metadata unavailable")
	// ErrMalformedMetadata means TMDB answered but the payload lacks a required field.
	ErrMalformedMetadata = errors.New("tmdb: malformed metadata")
	// ErrInvalidQuery is returned for blank search titles and non-positive ids.
	ErrInvalidQuery = errors.New("tmdb: invalid query")
)
