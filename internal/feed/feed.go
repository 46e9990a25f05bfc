package feed

import (
	"encoding/xml"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playcast/internal/models"
	"github.com/desertthunder/playcast/internal/shared"
)

// MIMEType is the enclosure type of every item.
const MIMEType = "audio/mpeg"

// RSS is the root of the feed document.
type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel Channel  `xml:"channel"`
}

// Channel describes the playlist.
type Channel struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Link        string `xml:"link"`
	Image       Image  `xml:"image"`
	Items       []Item `xml:"item"`
}

// Image is the channel artwork; URL is empty when the playlist has no image.
type Image struct {
	URL   string `xml:"url"`
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

// Item is one track.
type Item struct {
	Title       string    `xml:"title"`
	Description string    `xml:"description"`
	Enclosure   Enclosure `xml:"enclosure"`
	GUID        GUID      `xml:"guid"`
	PubDate     string    `xml:"pubDate"`
}

type Enclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

type GUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// Options configures a [Generator].
type Options struct {
	PublicURL    string // base URL the output directory is served from
	AudioDir     string // audio directory relative to the output directory
	FeedPath     string
	PlaylistPath string           // optional M3U8 output; "" disables it
	Now          func() time.Time // defaults to time.Now
	Logger       *log.Logger
}

// Generator writes the feed document and companion playlist.
type Generator struct {
	opts   Options
	logger *log.Logger
}

// NewGenerator creates a [Generator].
func NewGenerator(opts Options) *Generator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Generator{opts: opts, logger: logger}
}

// EnclosureURL is the public URL of the audio file for a track id.
func (g *Generator) EnclosureURL(id string) string {
	audioDir := strings.Trim(path.Clean(filepath.ToSlash(g.opts.AudioDir)), "/")
	return strings.TrimRight(g.opts.PublicURL, "/") + "/" + audioDir + "/" + id + models.AudioExt
}

// Build assembles the document for meta and entries using the given publication time.
// Nil entries are skipped; the remaining items keep the order of entries.
func (g *Generator) Build(meta models.PlaylistMetadata, entries []*models.TrackEntry, now time.Time) *RSS {
	pubDate := now.Format(time.RFC1123Z)

	doc := &RSS{
		Version: "2.0",
		Channel: Channel{
			Title:       meta.Name,
			Description: meta.Description,
			Link:        g.opts.PublicURL,
			Image: Image{
				URL:   meta.ImageURL,
				Title: meta.Name,
				Link:  g.opts.PublicURL,
			},
			Items: make([]Item, 0, len(entries)),
		},
	}

	for _, entry := range models.AvailableEntries(entries) {
		doc.Channel.Items = append(doc.Channel.Items, Item{
			Title:       entry.Title,
			Description: "Artist: " + entry.PrimaryArtist,
			Enclosure:   Enclosure{URL: g.EnclosureURL(entry.ID), Type: MIMEType},
			GUID:        GUID{IsPermaLink: "false", Value: entry.ID},
			PubDate:     pubDate,
		})
	}

	return doc
}

// Render encodes the document with an XML declaration and tab indentation.
func Render(doc *RSS) ([]byte, error) {
	out, err := xml.MarshalIndent(doc, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("failed to encode feed: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// Generate regenerates the feed (and the M3U8 playlist when configured) from scratch.
//
// Every file is replaced atomically, so a reader sees either the previous version or the new one.
func (g *Generator) Generate(meta models.PlaylistMetadata, entries []*models.TrackEntry) error {
	doc := g.Build(meta, entries, g.opts.Now())

	data, err := Render(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrFeedWrite, err)
	}
	if err := writeFile(g.opts.FeedPath, data); err != nil {
		return err
	}
	g.logger.Info("generated feed", "path", g.opts.FeedPath, "items", len(doc.Channel.Items))

	if g.opts.PlaylistPath == "" {
		return nil
	}
	return g.GeneratePlaylist(entries)
}

func writeFile(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrFeedWrite, err)
	}
	if err := shared.WriteFileAtomic(dest, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrFeedWrite, err)
	}
	return nil
}
