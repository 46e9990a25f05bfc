package feed

import (
	"fmt"

	"github.com/desertthunder/playcast/internal/models"
	"github.com/desertthunder/playcast/internal/shared"
	"github.com/grafov/m3u8"
)

// BuildPlaylist assembles a closed VOD media playlist with one segment per non-nil entry.
func (g *Generator) BuildPlaylist(entries []*models.TrackEntry) (*m3u8.MediaPlaylist, error) {
	available := models.AvailableEntries(entries)

	pl, err := m3u8.NewMediaPlaylist(0, uint(max(1, len(available))))
	if err != nil {
		return nil, err
	}
	pl.MediaType = m3u8.VOD

	for _, entry := range available {
		title := entry.Title
		if entry.PrimaryArtist != "" {
			title = entry.PrimaryArtist + " - " + entry.Title
		}
		if err := pl.Append(g.EnclosureURL(entry.ID), entry.Duration().Seconds(), title); err != nil {
			return nil, err
		}
	}

	pl.Close()
	return pl, nil
}

// GeneratePlaylist writes the M3U8 companion playlist.
func (g *Generator) GeneratePlaylist(entries []*models.TrackEntry) error {
	if g.opts.PlaylistPath == "" {
		return fmt.Errorf("%w: playlist path not configured", shared.ErrInvalidConfig)
	}

	pl, err := g.BuildPlaylist(entries)
	if err != nil {
		return fmt.Errorf("%w: failed to build playlist: %v", shared.ErrFeedWrite, err)
	}

	if err := writeFile(g.opts.PlaylistPath, pl.Encode().Bytes()); err != nil {
		return err
	}
	g.logger.Info("generated playlist", "path", g.opts.PlaylistPath, "segments", pl.Count())
	return nil
}
