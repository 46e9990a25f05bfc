// Spotify API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/playcast/internal/models"
	"github.com/desertthunder/playcast/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
}

// SpotifyTrack represents a Spotify track (or episode, see Type).
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	IsLocal    bool            `json:"is_local"`
}

// SpotifyPlaylistTrack represents a track within a playlist context. Track is null for removed items.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	IsLocal bool          `json:"is_local"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPlaylistTracks is one page of playlist items.
type SpotifyPlaylistTracks struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

// SpotifyPlaylist represents a Spotify playlist with its first page of items.
type SpotifyPlaylist struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Images      []SpotifyImage        `json:"images"`
	Tracks      SpotifyPlaylistTracks `json:"tracks"`
}

type spotifyError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyOption customizes a [SpotifyService].
type SpotifyOption func(*SpotifyService)

// WithBaseURL points the service at a different Web API root.
func WithBaseURL(u string) SpotifyOption {
	return func(s *SpotifyService) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithTokenURL points the client-credentials exchange at a different token endpoint.
func WithTokenURL(u string) SpotifyOption {
	return func(s *SpotifyService) { s.config.TokenURL = u }
}

// WithHTTPClient sets the transport used for both token and API requests.
func WithHTTPClient(c *http.Client) SpotifyOption {
	return func(s *SpotifyService) { s.baseClient = c }
}

// SpotifyService implements [Catalog] for the Spotify Web API.
// Uses the [clientcredentials] grant; the [oauth2] transport refreshes the app token as needed.
type SpotifyService struct {
	config     *clientcredentials.Config
	baseURL    string
	baseClient *http.Client
	httpClient *http.Client
}

// NewSpotifyService creates a new Spotify service with the given client credentials.
func NewSpotifyService(credentials map[string]string, opts ...SpotifyOption) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	s := &SpotifyService{
		config: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     spotifyTokenURL,
		},
		baseURL:    spotifyBaseURL,
		baseClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticate exchanges the client credentials for an app token.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.baseClient)

	if _, err := s.config.Token(ctx); err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
		}
		return fmt.Errorf("%w: token request failed: %v", shared.ErrAPIRequest, err)
	}

	s.httpClient = s.config.Client(ctx)
	return nil
}

// doRequest performs an authenticated GET against an API endpoint or an absolute "next" URL.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	if s.httpClient == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrAuthFailed)
	}

	apiURL := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		apiURL = s.baseURL + endpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
		}
		return fmt.Errorf("%w: request failed: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}

	return nil
}

// statusError maps a non-2xx response onto the shared sentinel errors.
func statusError(resp *http.Response) error {
	msg := http.StatusText(resp.StatusCode)
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr spotifyError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		msg = apiErr.Error.Message
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, msg)
	default:
		return fmt.Errorf("%w: spotify API error: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, msg)
	}
}

// Playlist retrieves a playlist by ID with its first page of items.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*SpotifyPlaylist, error) {
	endpoint := fmt.Sprintf("/playlists/%s?additional_types=track", url.PathEscape(playlistID))

	var playlist SpotifyPlaylist
	if err := s.doRequest(ctx, endpoint, &playlist); err != nil {
		return nil, err
	}

	return &playlist, nil
}

// PlaylistTracks retrieves every item of the playlist, following "next" links after the first page.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, first SpotifyPlaylistTracks) ([]SpotifyPlaylistTrack, error) {
	items := append([]SpotifyPlaylistTrack{}, first.Items...)

	next := first.Next
	for next != nil && *next != "" {
		var page SpotifyPlaylistTracks
		if err := s.doRequest(ctx, *next, &page); err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		next = page.Next
	}

	return items, nil
}

// FetchPlaylist retrieves the playlist and adapts it into a [models.PlaylistSnapshot].
func (s *SpotifyService) FetchPlaylist(ctx context.Context, playlistID string) (*models.PlaylistSnapshot, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id is empty", shared.ErrInvalidArgument)
	}

	sp, err := s.Playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	items, err := s.PlaylistTracks(ctx, sp.Tracks)
	if err != nil {
		return nil, err
	}

	snapshot := &models.PlaylistSnapshot{
		Metadata: models.PlaylistMetadata{
			ID:          sp.ID,
			Name:        sp.Name,
			Description: html.UnescapeString(sp.Description),
		},
		Entries: make([]*models.TrackEntry, 0, len(items)),
	}
	if len(sp.Images) > 0 {
		snapshot.Metadata.ImageURL = sp.Images[0].URL
	}

	for _, item := range items {
		snapshot.Entries = append(snapshot.Entries, toTrackEntry(item))
	}

	return snapshot, nil
}

// toTrackEntry returns nil for items that cannot be mirrored: removed tracks, local files and episodes.
func toTrackEntry(item SpotifyPlaylistTrack) *models.TrackEntry {
	track := item.Track
	if track == nil || item.IsLocal || track.IsLocal || track.ID == "" {
		return nil
	}
	if track.Type != "" && track.Type != "track" {
		return nil
	}

	entry := &models.TrackEntry{
		ID:         track.ID,
		Title:      track.Name,
		Album:      track.Album.Name,
		DurationMS: track.DurationMS,
	}
	if len(track.Artists) > 0 {
		entry.PrimaryArtist = track.Artists[0].Name
	}

	return entry
}
