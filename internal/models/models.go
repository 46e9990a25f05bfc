// package models defines the data model for the playlist mirror
package models

import (
	"strings"
	"time"
)

// AudioExt is the extension of every materialized audio file.
const AudioExt = ".mp3"

// PlaylistMetadata is the playlist-level snapshot used for the feed channel.
type PlaylistMetadata struct {
	ID          string
	Name        string
	Description string
	ImageURL    string // empty when the playlist has no images
}

// TrackEntry is a single available track of a playlist.
type TrackEntry struct {
	ID            string // catalog-unique, stable across runs
	Title         string
	PrimaryArtist string
	Album         string
	DurationMS    int
}

// Query builds the free-text search used by the media resolver: "<title> <artist> audio".
func (t TrackEntry) Query() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{t.Title, t.PrimaryArtist} {
		if s = strings.Join(strings.Fields(s), " "); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(append(parts, "audio"), " ")
}

// Filename is the local audio filename derived from the track id.
func (t TrackEntry) Filename() string {
	return t.ID + AudioExt
}

// Duration returns the track length.
func (t TrackEntry) Duration() time.Duration {
	return time.Duration(t.DurationMS) * time.Millisecond
}

// PlaylistSnapshot is everything fetched from the catalog for one run.
//
// Entries keeps the catalog order; nil elements are removed or unavailable tracks.
type PlaylistSnapshot struct {
	Metadata PlaylistMetadata
	Entries  []*TrackEntry
}

// Available returns the non-nil entries in order.
func (s *PlaylistSnapshot) Available() []TrackEntry {
	return AvailableEntries(s.Entries)
}

// AvailableEntries returns the non-nil entries of a playlist in order.
func AvailableEntries(entries []*TrackEntry) []TrackEntry {
	out := make([]TrackEntry, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out
}
