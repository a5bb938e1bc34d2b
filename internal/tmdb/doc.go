// Package tmdb is the small TMDB client behind the add-movie flow.
//
// It exposes title search and movie detail lookups, turning the detail payload
// into the fields the movie list stores (release year and a full poster URL).
// Transport failures and unexpected payloads are reported as ErrMetadataUnavailable
// and ErrMalformedMetadata so handlers can map them without inspecting responses.
package tmdb
