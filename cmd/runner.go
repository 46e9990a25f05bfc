package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playcast/internal/feed"
	"github.com/desertthunder/playcast/internal/repositories"
	"github.com/desertthunder/playcast/internal/resolver"
	"github.com/desertthunder/playcast/internal/services"
	"github.com/desertthunder/playcast/internal/shared"
	"github.com/desertthunder/playcast/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Catalog, Downloader and Tagger are built from the config on demand when not injected.
type Runner struct {
	config     *shared.Config
	catalog    services.Catalog
	downloader resolver.Downloader
	tagger     resolver.Tagger
	logger     *log.Logger
	output     io.Writer
	now        func() time.Time
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Catalog    services.Catalog
	Downloader resolver.Downloader
	Tagger     resolver.Tagger
	Logger     *log.Logger
	Output     io.Writer
	Now        func() time.Time
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Runner{
		config:     opts.Config,
		catalog:    opts.Catalog,
		downloader: opts.Downloader,
		tagger:     opts.Tagger,
		logger:     opts.Logger,
		output:     opts.Output,
		now:        opts.Now,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, feedCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// applyFlags overlays global flag values onto the config.
func (r *Runner) applyFlags(cmd *cli.Command) {
	if id := cmd.String("playlist"); id != "" {
		r.config.Sync.PlaylistID = id
	}
	if dir := cmd.String("output-dir"); dir != "" {
		r.config.Sync.OutputDir = dir
	}
}

// newEngine validates the config and wires the sync pipeline.
//
// Nothing touches the filesystem before validation succeeds. The ledger is only opened for runs that
// download, since Publish records nothing. The returned close func releases it.
func (r *Runner) newEngine(ctx context.Context, downloads bool) (*tasks.PlaylistEngine, func(), error) {
	if err := r.config.Validate(); err != nil {
		return nil, nil, err
	}

	catalog, err := r.newCatalog()
	if err != nil {
		return nil, nil, err
	}

	downloader, err := r.newDownloader(ctx, downloads)
	if err != nil {
		return nil, nil, err
	}

	tagger := r.tagger
	if tagger == nil {
		tagger = resolver.ID3Tagger{}
	}

	res, err := resolver.New(resolver.Options{
		Downloader: downloader,
		Tagger:     tagger,
		RateLimit:  r.config.Resolver.RateLimit,
		Logger:     shared.WithLogger(r.logger, "component", "resolver"),
	})
	if err != nil {
		return nil, nil, err
	}

	generator := feed.NewGenerator(feed.Options{
		PublicURL:    r.config.Sync.PublicURL,
		AudioDir:     r.config.Sync.AudioDir,
		FeedPath:     r.config.FeedPath(),
		PlaylistPath: r.config.PlaylistPath(),
		Now:          r.now,
		Logger:       shared.WithLogger(r.logger, "component", "feed"),
	})

	opts := tasks.EngineOpts{
		Catalog:  catalog,
		Resolver: res,
		Feed:     generator,
		AudioDir: r.config.AudioPath(),
		Logger:   r.logger,
		Now:      r.now,
	}

	closeFn := func() {}
	if downloads && r.config.Database.Path != "" {
		db, err := shared.OpenLedger(r.config.Database.Path)
		if err != nil {
			r.logger.Warn("sync ledger unavailable, continuing without it", "path", r.config.Database.Path, "error", err)
		} else {
			opts.Recorder = repositories.NewRunRepository(db)
			closeFn = func() { db.Close() }
		}
	}

	engine, err := tasks.NewPlaylistEngine(opts)
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	return engine, closeFn, nil
}

func (r *Runner) newCatalog() (services.Catalog, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}
	svc, err := services.NewSpotifyService(r.config.Credentials.Spotify.Map())
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// newDownloader returns the injected downloader or a yt-dlp wrapper from the resolver config.
// The binary is only installed when downloads will actually run.
func (r *Runner) newDownloader(ctx context.Context, downloads bool) (resolver.Downloader, error) {
	if r.downloader != nil {
		return r.downloader, nil
	}

	cfg := r.config.Resolver
	y := resolver.NewYTDLP(cfg.Executable)
	if cfg.SearchPrefix != "" {
		y.SearchPrefix = cfg.SearchPrefix
	}
	if cfg.AudioFormat != "" {
		y.AudioFormat = cfg.AudioFormat
	}
	if cfg.AudioQuality != "" {
		y.AudioQuality = cfg.AudioQuality
	}

	if downloads && cfg.AutoInstall {
		r.logger.Info("ensuring yt-dlp is installed")
		if err := y.Install(ctx); err != nil {
			return nil, fmt.Errorf("%w: failed to install yt-dlp: %v", shared.ErrServiceUnavailable, err)
		}
	}
	return y, nil
}

// openLedger opens the configured ledger for read commands.
func (r *Runner) openLedger() (*sql.DB, *repositories.RunRepository, error) {
	if r.config.Database.Path == "" {
		return nil, nil, fmt.Errorf("%w: database.path is empty, the sync ledger is disabled", shared.ErrInvalidConfig)
	}
	db, err := shared.OpenLedger(r.config.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	return db, repositories.NewRunRepository(db), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
