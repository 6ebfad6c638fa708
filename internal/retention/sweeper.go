// Package retention removes aged screenshot artifacts and their queue rows.
package retention

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"shutter/internal/config"
	"shutter/internal/logging"
	"shutter/internal/queue"
)

// Option configures the sweeper.
type Option func(*Sweeper)

// WithClock injects the time source used to compute the cutoff.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// Sweeper deletes screenshot files older than the retention horizon along
// with the terminal queue rows that referenced them.
type Sweeper struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewSweeper wires a sweeper from its collaborators.
func NewSweeper(cfg *config.Config, store *queue.Store, logger *slog.Logger, opts ...Option) *Sweeper {
	sweeper := &Sweeper{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "retention"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(sweeper)
	}
	return sweeper
}

// Result summarizes one sweep pass.
type Result struct {
	FilesRemoved int
	DirsRemoved  int
	RowsPurged   int64
	Errors       int
}

// Sweep removes artifacts older than the given number of days and purges the
// matching terminal queue rows. A days value of 0 or less uses the configured
// retention horizon. File errors are counted and skipped so one bad entry
// never aborts the pass.
func (s *Sweeper) Sweep(ctx context.Context, days int) (*Result, error) {
	if days <= 0 {
		days = s.cfg.Retention.CleanupDays
	}
	cutoff := s.now().Add(-time.Duration(days) * 24 * time.Hour)

	result := &Result{}
	if err := s.sweepFiles(ctx, cutoff, result); err != nil {
		return result, err
	}
	s.pruneEmptyDirs(result)

	purged, err := s.store.PurgeTerminalBefore(ctx, cutoff)
	if err != nil {
		return result, err
	}
	result.RowsPurged = purged

	s.logger.Info("retention sweep finished",
		logging.Int("files_removed", result.FilesRemoved),
		logging.Int("dirs_removed", result.DirsRemoved),
		logging.Int64("rows_purged", result.RowsPurged),
		logging.Int("errors", result.Errors))
	return result, nil
}

func (s *Sweeper) sweepFiles(ctx context.Context, cutoff time.Time, result *Result) error {
	root := s.cfg.Paths.ScreenshotsDir
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			result.Errors++
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(path), ".png") {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			result.Errors++
			return nil
		}
		if !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			s.logger.Warn("remove artifact failed",
				logging.String("path", path),
				logging.Error(err))
			result.Errors++
			return nil
		}
		result.FilesRemoved++
		return nil
	})
}

// pruneEmptyDirs removes now-empty year/month directories, deepest first.
// The screenshots root itself is never removed.
func (s *Sweeper) pruneEmptyDirs(result *Result) {
	root := s.cfg.Paths.ScreenshotsDir

	var dirs []string
	_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})

	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := os.Remove(dir); err == nil {
			result.DirsRemoved++
		}
	}
}
