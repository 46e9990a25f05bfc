package resolver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playcast/internal/models"
	"github.com/desertthunder/playcast/internal/shared"
	"golang.org/x/time/rate"
)

// StagingDir is the hidden directory under the audio directory that holds in-progress downloads.
const StagingDir = ".staging"

// Downloader fetches the best audio match for query into dir as base + ".mp3".
//
// A search without results is not an error: the downloader returns nil and writes nothing.
type Downloader interface {
	Download(ctx context.Context, query, dir, base string) error
}

// Tagger writes track metadata into a finished audio file.
type Tagger interface {
	Tag(path string, entry models.TrackEntry) error
}

// Result is the outcome of a single [Resolver.Resolve] call.
type Result struct {
	Outcome models.Outcome // Resolved or Failed
	Cached  bool           // file already existed; no network activity
	Path    string
	Err     error
}

// Options configures a [Resolver].
type Options struct {
	Downloader Downloader
	Tagger     Tagger      // nil disables tagging
	RateLimit  float64     // downloads per second; <= 0 means unlimited
	Logger     *log.Logger // defaults to a stderr logger
}

// Resolver materializes tracks as local audio files.
type Resolver struct {
	downloader Downloader
	tagger     Tagger
	limiter    *rate.Limiter
	logger     *log.Logger
}

// New creates a [Resolver]. The downloader is required.
func New(opts Options) (*Resolver, error) {
	if opts.Downloader == nil {
		return nil, fmt.Errorf("%w: downloader not configured", shared.ErrServiceUnavailable)
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Resolver{
		downloader: opts.Downloader,
		tagger:     opts.Tagger,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}, nil
}

// Resolve ensures an audio file for entry exists at dest.
//
// An existing file short-circuits with a cached result. Otherwise the download is staged in
// <dir(dest)>/.staging/<base>/, tagged, and renamed onto dest, so dest only ever appears complete.
// Failures are returned inside the [Result]; the staging directory is removed either way.
func (r *Resolver) Resolve(ctx context.Context, query, dest string, entry models.TrackEntry) Result {
	if shared.FileExists(dest) {
		r.logger.Debug("already downloaded", "path", dest)
		return Result{Outcome: models.OutcomeResolved, Cached: true, Path: dest}
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return r.fail(query, dest, fmt.Errorf("%w: %v", shared.ErrDownloadFailed, err))
	}

	if err := r.materialize(ctx, query, dest, entry); err != nil {
		return r.fail(query, dest, err)
	}

	r.logger.Info("downloaded", "query", query, "path", dest)
	return Result{Outcome: models.OutcomeResolved, Path: dest}
}

func (r *Resolver) materialize(ctx context.Context, query, dest string, entry models.TrackEntry) error {
	base := strings.TrimSuffix(filepath.Base(dest), filepath.Ext(dest))
	staging := filepath.Join(filepath.Dir(dest), StagingDir, base)

	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("%w: failed to clear staging directory: %v", shared.ErrDownloadFailed, err)
	}
	if err := os.MkdirAll(staging, 0755); err != nil {
		return fmt.Errorf("%w: failed to create staging directory: %v", shared.ErrDownloadFailed, err)
	}
	defer func() {
		os.RemoveAll(staging)
		os.Remove(filepath.Dir(staging)) // only succeeds once empty
	}()

	r.logger.Info("searching", "query", query)
	if err := r.downloader.Download(ctx, query, staging, base); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrDownloadFailed, err)
	}

	staged := filepath.Join(staging, base+models.AudioExt)
	info, err := os.Stat(staged)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %q", shared.ErrNoResults, query)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrDownloadFailed, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: downloaded file is empty", shared.ErrDownloadFailed)
	}

	if r.tagger != nil {
		if err := r.tagger.Tag(staged, entry); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrTagFailed, err)
		}
	}

	if err := os.Rename(staged, dest); err != nil {
		return fmt.Errorf("%w: failed to move file into place: %v", shared.ErrDownloadFailed, err)
	}
	return nil
}

func (r *Resolver) fail(query, dest string, err error) Result {
	r.logger.Warn("download failed", "query", query, "path", dest, "reason", err)
	return Result{Outcome: models.OutcomeFailed, Path: dest, Err: err}
}

// Sweep removes the staging directory under audioDir left behind by interrupted runs.
func (r *Resolver) Sweep(audioDir string) error {
	staging := filepath.Join(audioDir, StagingDir)
	if _, err := os.Stat(staging); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	r.logger.Debug("removing stale staging directory", "path", staging)
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("failed to remove staging directory: %w", err)
	}
	return nil
}
