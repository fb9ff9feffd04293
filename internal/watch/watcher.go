// Package watch re-evaluates the build gate when project inputs change.
//
// File events are debounced; an optional interval re-check catches changes
// the filesystem notifier misses (network mounts, editors that replace files).
// Checks never run concurrently.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/runbuild/internal/logfields"
)

// Trigger says why a check ran.
type Trigger string

const (
	TriggerStartup  Trigger = "startup"
	TriggerChange   Trigger = "change"
	TriggerInterval Trigger = "interval"
)

// CheckFunc evaluates the gate (and typically builds). Errors are logged and
// watching continues.
type CheckFunc func(ctx context.Context, trigger Trigger) error

// Options tune a Watcher.
type Options struct {
	// Debounce coalesces bursts of file events. Zero fires on every event.
	Debounce time.Duration
	// Interval schedules periodic checks when positive.
	Interval time.Duration
	Logger   *slog.Logger
}

// Watcher watches a fixed set of files.
type Watcher struct {
	files    map[string]struct{}
	dirs     []string
	check    CheckFunc
	opts     Options
	logger   *slog.Logger
	mu       sync.Mutex
	changeCh chan string
}

// New returns a watcher for paths. Paths are made absolute; their parent
// directories are watched because editors often replace files instead of
// writing them in place.
func New(paths []string, check CheckFunc, opts Options) (*Watcher, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		files:    make(map[string]struct{}, len(paths)),
		check:    check,
		opts:     opts,
		logger:   logger,
		changeCh: make(chan string, 1),
	}
	seenDir := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.FileSystemError("resolve watched path").WithCause(err).WithContext("path", p).Build()
		}
		w.files[abs] = struct{}{}
		dir := existingDir(filepath.Dir(abs))
		if _, ok := seenDir[dir]; !ok {
			seenDir[dir] = struct{}{}
			w.dirs = append(w.dirs, dir)
		}
	}
	return w, nil
}

// existingDir walks up to the nearest directory that exists.
func existingDir(dir string) string {
	for {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

// Run checks once, then on every debounced change and interval tick until
// ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.RuntimeError("failed to create file watcher").WithCause(err).Build()
	}
	defer func() { _ = fw.Close() }()

	for _, dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			return errors.FileSystemError("failed to watch directory").
				WithCause(err).
				WithContext("path", dir).
				Build()
		}
	}
	w.logger.Info("Watching project inputs", logfields.Count(len(w.files)))

	if w.opts.Interval > 0 {
		sched, err := NewScheduler(w.logger)
		if err != nil {
			return err
		}
		if _, err := sched.ScheduleEvery("gate-recheck", w.opts.Interval, func() {
			w.run(ctx, TriggerInterval)
		}); err != nil {
			return err
		}
		sched.Start()
		defer func() { _ = sched.Stop() }()
	}

	w.run(ctx, TriggerStartup)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.debounceLoop(ctx)
	}()
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if _, watched := w.files[filepath.Clean(event.Name)]; !watched {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("Input change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			w.trigger(event.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", logfields.Error(err))
		}
	}
}

// trigger queues a change; one pending change is enough.
func (w *Watcher) trigger(path string) {
	select {
	case w.changeCh <- path:
	default:
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.changeCh:
			if w.opts.Debounce <= 0 {
				w.run(ctx, TriggerChange)
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				timer.Reset(w.opts.Debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.run(ctx, TriggerChange)
		}
	}
}

func (w *Watcher) run(ctx context.Context, trigger Trigger) {
	if ctx.Err() != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.check(ctx, trigger); err != nil {
		w.logger.Error("Check failed", slog.String("trigger", string(trigger)), logfields.Error(err))
	}
}
