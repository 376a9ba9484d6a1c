// Package watch delivers a notification for every backup log that appears or
// changes in a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	defaultPattern = "*.log"
	defaultSettle  = 2 * time.Second

	restartBackoffBase = 500 * time.Millisecond
	restartBackoffMax  = 30 * time.Second
)

type Config struct {
	// Dir is the directory to watch. Not recursive.
	Dir string
	// Pattern matches log file base names. Default "*.log".
	Pattern string
	// Settle is the quiet period after the last write before a file is read,
	// so half-written logs are not picked up. Default 2s.
	Settle time.Duration
	// Schedule is an optional cron expression for a periodic rescan. Useful
	// where fsnotify is unreliable (network mounts).
	Schedule string
	// OnReady runs once after the watcher is established.
	OnReady func()
}

// Handler processes one due log file. An error is logged; the file is tried
// again only when it changes again.
type Handler func(ctx context.Context, path string) error

type Watcher struct {
	cfg    Config
	log    zerolog.Logger
	handle Handler
	sched  cron.Schedule

	mu        sync.Mutex
	delivered map[string]time.Time // path -> mod time last handed off
	timers    map[string]*time.Timer
	due       chan string

	readyOnce sync.Once
}

func New(cfg Config, log zerolog.Logger, handle Handler) (*Watcher, error) {
	if cfg.Pattern == "" {
		cfg.Pattern = defaultPattern
	}
	if cfg.Settle <= 0 {
		cfg.Settle = defaultSettle
	}
	if _, err := filepath.Match(cfg.Pattern, "probe"); err != nil {
		return nil, fmt.Errorf("pattern %q: %w", cfg.Pattern, err)
	}
	st, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("watch dir: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("watch dir %s: not a directory", cfg.Dir)
	}

	w := &Watcher{
		cfg:       cfg,
		log:       log,
		handle:    handle,
		delivered: map[string]time.Time{},
		timers:    map[string]*time.Timer{},
		due:       make(chan string, 64),
	}
	if s := strings.TrimSpace(cfg.Schedule); s != "" {
		sched, err := cron.ParseStandard(s)
		if err != nil {
			return nil, fmt.Errorf("schedule %q: %w", s, err)
		}
		w.sched = sched
	}
	return w, nil
}

// Run blocks until ctx is cancelled. The fsnotify watcher is recreated with
// backoff whenever it breaks; the optional cron rescan runs alongside it.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stopTimers()

	if w.sched != nil {
		go w.rescanLoop(ctx)
	}
	go w.deliverLoop(ctx)

	backoff := restartBackoffBase
	for {
		if ctx.Err() != nil {
			return nil
		}

		fw, err := fsnotify.NewWatcher()
		if err == nil {
			err = fw.Add(w.cfg.Dir)
			if err != nil {
				_ = fw.Close()
			}
		}
		if err != nil {
			w.log.Warn().Err(err).Str("dir", w.cfg.Dir).Dur("backoff", backoff).Msg("watch init failed; retrying")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			if backoff < restartBackoffMax {
				backoff *= 2
			}
			continue
		}
		backoff = restartBackoffBase

		w.log.Info().Str("dir", w.cfg.Dir).Str("pattern", w.cfg.Pattern).Msg("watching for backup logs")
		w.readyOnce.Do(func() {
			if w.cfg.OnReady != nil {
				w.cfg.OnReady()
			}
		})
		// Catch files that landed before the watcher existed.
		w.rescan(ctx)

		w.eventLoop(ctx, fw)
		_ = fw.Close()
		if ctx.Err() != nil {
			return nil
		}
		w.log.Warn().Str("dir", w.cfg.Dir).Msg("watcher stopped; restarting")
	}
}

// eventLoop consumes fsnotify events until the watcher breaks or ctx ends.
func (w *Watcher) eventLoop(ctx context.Context, fw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if !w.matches(filepath.Base(ev.Name)) {
				continue
			}
			w.arm(ev.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			if err == nil {
				continue
			}
			// Overflow means events were missed; rescan instead of trusting
			// the event stream.
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.log.Warn().Err(err).Msg("event overflow; forcing rescan")
				w.rescan(ctx)
				continue
			}
			w.log.Warn().Err(err).Msg("watch error")
			if errors.Is(err, fsnotify.ErrClosed) {
				return
			}
		}
	}
}

func (w *Watcher) matches(base string) bool {
	ok, err := filepath.Match(w.cfg.Pattern, base)
	return err == nil && ok
}

// arm (re)starts the settle timer for path; the file becomes due once it has
// been quiet for the settle duration.
func (w *Watcher) arm(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Reset(w.cfg.Settle)
		return
	}
	w.timers[path] = time.AfterFunc(w.cfg.Settle, func() {
		select {
		case w.due <- path:
		default:
			w.log.Warn().Str("path", path).Msg("due queue full; dropping event")
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = map[string]*time.Timer{}
}

func (w *Watcher) deliverLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-w.due:
			w.deliver(ctx, path)
		}
	}
}

// deliver hands one file to the handler unless its mod time was already seen.
func (w *Watcher) deliver(ctx context.Context, path string) {
	st, err := os.Stat(path)
	if err != nil {
		w.log.Debug().Err(err).Str("path", path).Msg("skipping vanished file")
		return
	}

	w.mu.Lock()
	delete(w.timers, path)
	last, seen := w.delivered[path]
	if seen && !st.ModTime().After(last) {
		w.mu.Unlock()
		return
	}
	w.delivered[path] = st.ModTime()
	w.mu.Unlock()

	if err := w.handle(ctx, path); err != nil {
		w.log.Error().Err(err).Str("path", path).Msg("notification failed; will retry when the file changes")
		return
	}
	w.log.Debug().Str("path", path).Msg("log file handled")
}

// rescanLoop fires w.rescan on the configured cron schedule.
func (w *Watcher) rescanLoop(ctx context.Context) {
	for {
		next := w.sched.Next(time.Now())
		t := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
			w.rescan(ctx)
		}
	}
}

// rescan enqueues every matching file whose mod time advanced since the last
// hand-off. Shares the settle pathway with fsnotify events.
func (w *Watcher) rescan(ctx context.Context) {
	entries, err := os.ReadDir(w.cfg.Dir)
	if err != nil {
		w.log.Warn().Err(err).Str("dir", w.cfg.Dir).Msg("rescan failed")
		return
	}
	for _, e := range entries {
		if ctx.Err() != nil {
			return
		}
		if e.IsDir() || !w.matches(e.Name()) {
			continue
		}
		path := filepath.Join(w.cfg.Dir, e.Name())
		info, err := e.Info()
		if err != nil {
			continue
		}
		w.mu.Lock()
		last, seen := w.delivered[path]
		w.mu.Unlock()
		if seen && !info.ModTime().After(last) {
			continue
		}
		w.arm(path)
	}
}
