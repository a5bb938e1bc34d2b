package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"topmovies/internal/tmdb"
)

func newClient(t *testing.T, handler http.HandlerFunc, opts ...tmdb.Option) *tmdb.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]tmdb.Option{tmdb.WithRetries(1, time.Millisecond)}, opts...)
	client, err := tmdb.New("key", server.URL, "en-US", opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := tmdb.New("", "https://example.com", "en-US"); err == nil {
		t.Fatal("expected error when api key missing")
	}
}

func TestSearchSuccess(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "key" || r.URL.Query().Get("query") != "Inception" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"results":[{"id":27205,"title":"Inception","release_date":"2010-07-15","poster_path":"/p.jpg"}]}`))
	})

	results, err := client.Search(context.Background(), "  Inception ")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) != 1 || results[0].ID != 27205 || results[0].ReleaseDate != "2010-07-15" {
		t.Fatalf("unexpected results: %#v", results)
	}
}

func TestSearchEmptyResultsIsNotAnError(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"page":1,"total_results":0}`))
	})

	results, err := client.Search(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", results)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	client, err := tmdb.New("key", "https://example.com", "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.Search(context.Background(), "  "); !errors.Is(err, tmdb.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestSearchHTTPErrorRetriesOnce(t *testing.T) {
	var calls atomic.Int32
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Search(context.Background(), "fail")
	if !errors.Is(err, tmdb.ErrMetadataUnavailable) {
		t.Fatalf("expected ErrMetadataUnavailable, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", got)
	}
}

func TestSearchClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	if _, err := client.Search(context.Background(), "x"); !errors.Is(err, tmdb.ErrMetadataUnavailable) {
		t.Fatalf("expected ErrMetadataUnavailable, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single call, got %d", got)
	}
}

func TestSearchRecoversAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"id":1,"title":"Example"}]}`))
	})

	results, err := client.Search(context.Background(), "Example")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("unexpected results: %#v", results)
	}
}

func TestSearchTimeout(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}, tmdb.WithTimeout(20*time.Millisecond), tmdb.WithRetries(0, 0))

	if _, err := client.Search(context.Background(), "slow"); !errors.Is(err, tmdb.ErrMetadataUnavailable) {
		t.Fatalf("expected ErrMetadataUnavailable on timeout, got %v", err)
	}
}

func TestTimeoutBoundsRetries(t *testing.T) {
	var hits int32
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, tmdb.WithTimeout(100*time.Millisecond), tmdb.WithRetries(1, time.Millisecond))

	start := time.Now()
	_, err := client.Search(context.Background(), "slow")
	elapsed := time.Since(start)

	if !errors.Is(err, tmdb.ErrMetadataUnavailable) {
		t.Fatalf("expected ErrMetadataUnavailable, got %v", err)
	}
	if elapsed > 180*time.Millisecond {
		t.Fatalf("expected one timeout budget across attempts, took %v (%d requests)", elapsed, atomic.LoadInt32(&hits))
	}
}

func TestSearchUndecodableBody(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	})

	if _, err := client.Search(context.Background(), "x"); !errors.Is(err, tmdb.ErrMalformedMetadata) {
		t.Fatalf("expected ErrMalformedMetadata, got %v", err)
	}
}

func TestFetchDetailsDerivesYearAndPoster(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/27205" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("language") != "en-US" {
			t.Errorf("expected language parameter, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"id":27205,"title":"Inception","original_title":"Inception","overview":"Dreams.","release_date":"2010-07-15","poster_path":"/abc.jpg"}`))
	})

	details, err := client.FetchDetails(context.Background(), 27205)
	if err != nil {
		t.Fatalf("FetchDetails returned error: %v", err)
	}
	if details.Title != "Inception" || details.Year != 2010 || details.Description != "Dreams." {
		t.Fatalf("unexpected details: %#v", details)
	}
	if details.PosterURL != "https://image.tmdb.org/t/p/w500/abc.jpg" {
		t.Fatalf("unexpected poster url %q", details.PosterURL)
	}
}

func TestFetchDetailsPrefersOriginalTitle(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title":"Spirited Away","original_title":"千と千尋の神隠し","overview":"A bathhouse.","release_date":"2001-07-20","poster_path":"/s.jpg"}`))
	}, tmdb.WithImageBaseURL("https://img.example/"))

	details, err := client.FetchDetails(context.Background(), 129)
	if err != nil {
		t.Fatalf("FetchDetails returned error: %v", err)
	}
	if details.Title != "千と千尋の神隠し" {
		t.Fatalf("expected original title, got %q", details.Title)
	}
	if details.PosterURL != "https://img.example/s.jpg" {
		t.Fatalf("unexpected poster url %q", details.PosterURL)
	}
}

func TestFetchDetailsMalformed(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing date", `{"original_title":"X","overview":"o","poster_path":"/p.jpg"}`},
		{"unparseable date", `{"original_title":"X","overview":"o","release_date":"soon","poster_path":"/p.jpg"}`},
		{"year zero", `{"original_title":"X","overview":"o","release_date":"0000-01-01","poster_path":"/p.jpg"}`},
		{"missing poster", `{"original_title":"X","overview":"o","release_date":"1999-01-01"}`},
		{"missing title", `{"overview":"o","release_date":"1999-01-01","poster_path":"/p.jpg"}`},
		{"empty overview", `{"original_title":"X","overview":"  ","release_date":"1999-01-01","poster_path":"/p.jpg"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			})
			if _, err := client.FetchDetails(context.Background(), 1); !errors.Is(err, tmdb.ErrMalformedMetadata) {
				t.Fatalf("expected ErrMalformedMetadata, got %v", err)
			}
		})
	}
}

func TestFetchDetailsRejectsNonPositiveID(t *testing.T) {
	client, err := tmdb.New("key", "https://example.com", "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.FetchDetails(context.Background(), 0); !errors.Is(err, tmdb.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestReleaseYear(t *testing.T) {
	cases := map[string]int{
		"2010-07-15":  2010,
		"1999":        1999,
		" 1972-03-24": 1972,
	}
	for in, want := range cases {
		got, err := tmdb.ReleaseYear(in)
		if err != nil || got != want {
			t.Errorf("ReleaseYear(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, in := range []string{"07/15/10", "0000-00-00"} {
		if _, err := tmdb.ReleaseYear(in); !errors.Is(err, tmdb.ErrMalformedMetadata) {
			t.Errorf("ReleaseYear(%q): expected malformed error, got %v", in, err)
		}
	}
}
