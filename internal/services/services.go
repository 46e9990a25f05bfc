// package services defines interface Catalog for reading playlists from HTTP APIs
//
// Spotify
package services

import (
	"context"

	"github.com/desertthunder/playcast/internal/models"
)

// Catalog defines the read-only playlist catalog used by the sync pipeline.
type Catalog interface {
	// Authenticate obtains credentials for subsequent requests.
	// Returns an error wrapping [shared.ErrAuthFailed] if the catalog rejects them.
	Authenticate(ctx context.Context) error

	// FetchPlaylist retrieves playlist metadata and every track entry in catalog order.
	// Unavailable items are returned as nil entries.
	FetchPlaylist(ctx context.Context, playlistID string) (*models.PlaylistSnapshot, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}
