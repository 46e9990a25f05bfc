// Package services defines the [Catalog] interface for playlist providers and implements it for Spotify.
//
// # Spotify Implementation
//
// [SpotifyService] authenticates with the OAuth2 client-credentials grant ([clientcredentials.Config]).
// The returned [http.Client] refreshes the app token automatically, so a long sync never needs
// user interaction.
//
// Playlist items are fetched page by page: the first page arrives embedded in the playlist
// object and [SpotifyService.PlaylistTracks] follows the "next" links until the list is
// exhausted.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : client id or secret not configured
//   - [shared.ErrAuthFailed] : token exchange rejected or 401 from the API
//   - [shared.ErrPlaylistNotFound] : playlist id does not resolve (404)
//   - [shared.ErrAPIRequest] : any other HTTP or decoding failure
//
// # API Mappings
//
// Spotify JSON is decoded into the Spotify* DTOs and adapted into [models.PlaylistSnapshot].
// Removed tracks (null track), local files and podcast episodes become nil entries.
package services
