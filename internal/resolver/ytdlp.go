package resolver

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/lrstanley/go-ytdlp"
)

const (
	DefaultSearchPrefix = "ytsearch1:"
	DefaultAudioFormat  = "mp3"
	DefaultAudioQuality = "192K"
)

// YTDLP implements [Downloader] with the yt-dlp executable.
type YTDLP struct {
	Executable   string // empty uses yt-dlp from PATH (or the one installed by [YTDLP.Install])
	SearchPrefix string
	AudioFormat  string
	AudioQuality string
}

// NewYTDLP creates a [YTDLP] with the default search prefix and audio settings.
func NewYTDLP(executable string) *YTDLP {
	return &YTDLP{
		Executable:   executable,
		SearchPrefix: DefaultSearchPrefix,
		AudioFormat:  DefaultAudioFormat,
		AudioQuality: DefaultAudioQuality,
	}
}

// Install downloads a managed yt-dlp binary when none is available and uses it for later downloads.
func (y *YTDLP) Install(ctx context.Context) error {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to install yt-dlp: %w", err)
	}
	y.Executable = resolved.Executable
	return nil
}

// command builds the yt-dlp invocation: best audio of the first search hit, transcoded.
func (y *YTDLP) command(dir, base string) *ytdlp.Command {
	cmd := ytdlp.New().
		Format("bestaudio/best").
		ExtractAudio().
		AudioFormat(y.AudioFormat).
		AudioQuality(y.AudioQuality).
		NoPlaylist().
		NoProgress().
		Quiet().
		Output(filepath.Join(dir, base+".%(ext)s"))

	if y.Executable != "" {
		cmd.SetExecutable(y.Executable)
	}
	return cmd
}

func (y *YTDLP) Download(ctx context.Context, query, dir, base string) error {
	if _, err := y.command(dir, base).Run(ctx, y.SearchPrefix+query); err != nil {
		return fmt.Errorf("yt-dlp: %w", err)
	}
	return nil
}
