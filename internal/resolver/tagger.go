package resolver

import (
	"fmt"

	"github.com/bogem/id3v2/v2"
	"github.com/desertthunder/playcast/internal/models"
)

// CatalogIDFrame is the TXXX description under which the catalog track id is stored.
const CatalogIDFrame = "SPOTIFY_ID"

// ID3Tagger writes ID3v2.4 title, artist, album and catalog id frames.
type ID3Tagger struct{}

func (ID3Tagger) Tag(path string, entry models.TrackEntry) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open tag: %w", err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(entry.Title)
	tag.SetArtist(entry.PrimaryArtist)
	if entry.Album != "" {
		tag.SetAlbum(entry.Album)
	}
	tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
		Encoding:    id3v2.EncodingUTF8,
		Description: CatalogIDFrame,
		Value:       entry.ID,
	})

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save tag: %w", err)
	}
	return nil
}

// CatalogID reads the catalog id frame written by [ID3Tagger], or "" when absent.
func CatalogID(path string) (string, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return "", err
	}
	defer tag.Close()

	for _, f := range tag.GetFrames(tag.CommonID("User defined text information frame")) {
		udtf, ok := f.(id3v2.UserDefinedTextFrame)
		if ok && udtf.Description == CatalogIDFrame {
			return udtf.Value, nil
		}
	}
	return "", nil
}
