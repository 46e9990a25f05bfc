package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/playcast/internal/shared"
)

type fakeSpotify struct {
	server      *httptest.Server
	rejectToken bool
	tokenCalls  int
	playlists   map[string]any
	pages       map[string]any
}

func newFakeSpotify(t *testing.T) *fakeSpotify {
	t.Helper()

	f := &fakeSpotify{playlists: map[string]any{}, pages: map[string]any{}}
	mux := http.NewServeMux()

	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls++
		if f.rejectToken {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_client","error_description":"Invalid client"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"app-token","token_type":"bearer","expires_in":3600}`)
	})

	mux.HandleFunc("/v1/playlists/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer app-token" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":{"status":401,"message":"No token provided"}}`)
			return
		}

		id := strings.TrimPrefix(r.URL.Path, "/v1/playlists/")
		if page, ok := f.pages[id+"?"+r.URL.Query().Get("offset")]; ok {
			json.NewEncoder(w).Encode(page)
			return
		}
		if playlist, ok := f.playlists[id]; ok {
			json.NewEncoder(w).Encode(playlist)
			return
		}

		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"status":404,"message":"Resource not found"}}`)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeSpotify) service(t *testing.T) *SpotifyService {
	t.Helper()

	srv, err := NewSpotifyService(
		map[string]string{"client_id": "id", "client_secret": "secret"},
		WithBaseURL(f.server.URL+"/v1"),
		WithTokenURL(f.server.URL+"/token"),
		WithHTTPClient(f.server.Client()),
	)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return srv
}

func track(id, name, artist string) map[string]any {
	return map[string]any{
		"track": map[string]any{
			"id":          id,
			"name":        name,
			"type":        "track",
			"duration_ms": 180000,
			"artists":     []map[string]any{{"id": "a-" + id, "name": artist}, {"id": "x", "name": "Featured"}},
			"album":       map[string]any{"id": "al", "name": "Album"},
		},
	}
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(map[string]string{"client_id": "id", "client_secret": "secret"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
			if srv.baseURL != spotifyBaseURL {
				t.Errorf("expected default base URL, got %s", srv.baseURL)
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_secret": "secret"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_id": "id"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("Service Interface", func(t *testing.T) {
		var _ Catalog = &SpotifyService{}
	})

	t.Run("Authenticate", func(t *testing.T) {
		t.Run("exchanges client credentials", func(t *testing.T) {
			f := newFakeSpotify(t)
			srv := f.service(t)

			if err := srv.Authenticate(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if f.tokenCalls == 0 {
				t.Error("expected token endpoint to be called")
			}
		})

		t.Run("rejected credentials", func(t *testing.T) {
			f := newFakeSpotify(t)
			f.rejectToken = true

			err := f.service(t).Authenticate(context.Background())
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
		})

		t.Run("unreachable token endpoint", func(t *testing.T) {
			f := newFakeSpotify(t)
			srv := f.service(t)
			f.server.Close()

			err := srv.Authenticate(context.Background())
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
			if errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("transport failure should not be reported as ErrAuthFailed, got %v", err)
			}
		})

		t.Run("requests before authenticate", func(t *testing.T) {
			f := newFakeSpotify(t)
			_, err := f.service(t).FetchPlaylist(context.Background(), "pl")
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
		})
	})

	t.Run("FetchPlaylist", func(t *testing.T) {
		t.Run("adapts metadata and entries", func(t *testing.T) {
			f := newFakeSpotify(t)
			f.playlists["pl"] = map[string]any{
				"id":          "pl",
				"name":        "Road Trip",
				"description": "Songs &amp; more",
				"images":      []map[string]any{{"url": "https://img/cover.jpg"}},
				"tracks": map[string]any{
					"items": []any{
						track("t1", "Song", "Band"),
						map[string]any{"track": nil},
						map[string]any{"is_local": true, "track": map[string]any{"id": "", "name": "Local", "type": "track"}},
						map[string]any{"track": map[string]any{"id": "ep1", "name": "Episode", "type": "episode"}},
						track("t2", "Other", "Artist"),
					},
					"next": nil,
				},
			}

			srv := f.service(t)
			if err := srv.Authenticate(context.Background()); err != nil {
				t.Fatalf("failed to authenticate: %v", err)
			}

			snapshot, err := srv.FetchPlaylist(context.Background(), "pl")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if snapshot.Metadata.Name != "Road Trip" {
				t.Errorf("expected name Road Trip, got %s", snapshot.Metadata.Name)
			}
			if snapshot.Metadata.Description != "Songs & more" {
				t.Errorf("expected unescaped description, got %q", snapshot.Metadata.Description)
			}
			if snapshot.Metadata.ImageURL != "https://img/cover.jpg" {
				t.Errorf("expected first image URL, got %q", snapshot.Metadata.ImageURL)
			}

			if len(snapshot.Entries) != 5 {
				t.Fatalf("expected 5 entries, got %d", len(snapshot.Entries))
			}
			for _, i := range []int{1, 2, 3} {
				if snapshot.Entries[i] != nil {
					t.Errorf("expected entry %d to be nil, got %+v", i, snapshot.Entries[i])
				}
			}

			first := snapshot.Entries[0]
			if first == nil || first.ID != "t1" || first.Title != "Song" || first.PrimaryArtist != "Band" {
				t.Errorf("unexpected first entry: %+v", first)
			}
			if first.Album != "Album" || first.DurationMS != 180000 {
				t.Errorf("expected album and duration, got %+v", first)
			}
		})

		t.Run("empty images", func(t *testing.T) {
			f := newFakeSpotify(t)
			f.playlists["pl"] = map[string]any{
				"id": "pl", "name": "No Cover", "images": []any{},
				"tracks": map[string]any{"items": []any{}},
			}

			srv := f.service(t)
			srv.Authenticate(context.Background())

			snapshot, err := srv.FetchPlaylist(context.Background(), "pl")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if snapshot.Metadata.ImageURL != "" {
				t.Errorf("expected empty image URL, got %q", snapshot.Metadata.ImageURL)
			}
		})

		t.Run("follows next pages", func(t *testing.T) {
			f := newFakeSpotify(t)
			next := f.server.URL + "/v1/playlists/pl/tracks?offset=2&limit=2"
			f.playlists["pl"] = map[string]any{
				"id": "pl", "name": "Long",
				"tracks": map[string]any{
					"items": []any{track("t1", "One", "A"), track("t2", "Two", "B")},
					"next":  next,
				},
			}
			f.pages["pl/tracks?2"] = map[string]any{
				"items": []any{track("t3", "Three", "C")},
				"next":  nil,
			}

			srv := f.service(t)
			srv.Authenticate(context.Background())

			snapshot, err := srv.FetchPlaylist(context.Background(), "pl")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(snapshot.Entries) != 3 {
				t.Fatalf("expected 3 entries across pages, got %d", len(snapshot.Entries))
			}
			if snapshot.Entries[2].ID != "t3" {
				t.Errorf("expected t3 last, got %s", snapshot.Entries[2].ID)
			}
		})

		t.Run("not found", func(t *testing.T) {
			f := newFakeSpotify(t)
			srv := f.service(t)
			srv.Authenticate(context.Background())

			_, err := srv.FetchPlaylist(context.Background(), "missing")
			if !errors.Is(err, shared.ErrPlaylistNotFound) {
				t.Errorf("expected ErrPlaylistNotFound, got %v", err)
			}
		})

		t.Run("empty id", func(t *testing.T) {
			f := newFakeSpotify(t)
			srv := f.service(t)
			srv.Authenticate(context.Background())

			_, err := srv.FetchPlaylist(context.Background(), "")
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	})
}

func TestStatusError(t *testing.T) {
	tt := []struct {
		status int
		body   string
		want   error
		msg    string
	}{
		{status: 401, body: `{"error":{"status":401,"message":"The access token expired"}}`, want: shared.ErrAuthFailed, msg: "The access token expired"},
		{status: 404, body: ``, want: shared.ErrPlaylistNotFound, msg: "Not Found"},
		{status: 429, body: `{"error":{"status":429,"message":"API rate limit exceeded"}}`, want: shared.ErrAPIRequest, msg: "status 429"},
		{status: 500, body: `not json`, want: shared.ErrAPIRequest, msg: "Internal Server Error"},
	}

	for _, tc := range tt {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			rec := httptest.NewRecorder()
			rec.WriteHeader(tc.status)
			rec.WriteString(tc.body)

			err := statusError(rec.Result())
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Errorf("expected error to mention %q, got %v", tc.msg, err)
			}
		})
	}
}
