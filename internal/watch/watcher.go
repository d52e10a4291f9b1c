// Package watch polls a source tree and reports files modified since the
// previous scan.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yargevad/filepathx"
	"go.uber.org/zap"
)

const (
	defaultInterval     = 500 * time.Millisecond
	defaultErrorBackoff = time.Second
)

// Callback receives the path of one changed file.
type Callback func(path string)

type Config struct {
	Root         string
	Extensions   []string
	Interval     time.Duration
	ErrorBackoff time.Duration
}

// Watcher compares file modification times against a watermark.
type Watcher struct {
	root       string
	extensions []string
	interval   time.Duration
	backoff    time.Duration
	log        *zap.Logger
	now        func() time.Time

	mu        sync.Mutex
	watermark time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

// New creates a watcher whose watermark starts at the current time, so files
// that already exist are not reported.
func New(cfg Config, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	backoff := cfg.ErrorBackoff
	if backoff <= 0 {
		backoff = defaultErrorBackoff
	}

	var exts []string
	for _, ext := range cfg.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}

	w := &Watcher{
		root:       cfg.Root,
		extensions: exts,
		interval:   interval,
		backoff:    backoff,
		log:        logger,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	w.watermark = w.now()
	return w
}

// Watermark returns the boundary used by the next scan.
func (w *Watcher) Watermark() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watermark
}

// Scan runs one pass. Every matching regular file modified after the
// watermark is passed to cb once, then the watermark moves to the time the
// scan started. On error the watermark is left unchanged.
func (w *Watcher) Scan(cb Callback) (int, error) {
	started := w.now()

	info, err := os.Stat(w.root)
	if err != nil {
		return 0, fmt.Errorf("stat watch root: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("watch root %s is not a directory", w.root)
	}

	paths, err := w.candidates()
	if err != nil {
		return 0, err
	}

	since := w.Watermark()
	changed := 0
	for _, path := range paths {
		fi, err := os.Stat(path)
		if err != nil {
			// removed between glob and stat
			continue
		}
		if !fi.Mode().IsRegular() || !fi.ModTime().After(since) {
			continue
		}
		changed++
		if cb != nil {
			cb(path)
		}
	}

	w.mu.Lock()
	w.watermark = started
	w.mu.Unlock()
	return changed, nil
}

func (w *Watcher) candidates() ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, ext := range w.extensions {
		matches, err := filepathx.Glob(filepath.Join(w.root, "**", "*"+ext))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", ext, err)
		}
		for _, m := range matches {
			m = filepath.Clean(m)
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Run scans every interval until ctx is done or Stop is called. A failed scan
// is logged and followed by the error backoff.
func (w *Watcher) Run(ctx context.Context, cb Callback) {
	w.log.Info("watching for changes",
		zap.String("dir", w.root),
		zap.Strings("extensions", w.extensions),
		zap.Duration("interval", w.interval),
	)

	for {
		wait := w.interval
		if n, err := w.Scan(cb); err != nil {
			w.log.Error("scan failed", zap.String("dir", w.root), zap.Error(err))
			wait = w.backoff
		} else if n > 0 {
			w.log.Debug("scan found changes", zap.Int("files", n))
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			w.log.Info("watcher stopped")
			return
		case <-w.stop:
			timer.Stop()
			w.log.Info("watcher stopped")
			return
		case <-timer.C:
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}
