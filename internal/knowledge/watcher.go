package knowledge

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
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/documents"
	"github.com/fyrsmithlabs/folio/internal/sanitize"
)

// DefaultSettle is how long a file must stop changing before it is ingested.
const DefaultSettle = 750 * time.Millisecond

// Watcher ingests files dropped into an inbox directory.
type Watcher struct {
	dir    string
	ingest func(ctx context.Context, path string) error
	logger *zap.Logger
	settle time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	ready   chan string
	done    chan struct{}
}

// NewWatcher watches dir and ingests new and modified files with p.
func NewWatcher(dir string, p *Processor, logger *zap.Logger) (*Watcher, error) {
	if dir == "" {
		return nil, errors.New("knowledge: inbox directory is required")
	}
	if p == nil {
		return nil, errors.New("knowledge: processor is required")
	}
	return newWatcher(dir, func(ctx context.Context, path string) error {
		_, err := p.IngestFile(ctx, path)
		return err
	}, logger), nil
}

func newWatcher(dir string, ingest func(context.Context, string) error, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		dir:     dir,
		ingest:  ingest,
		logger:  logger.With(zap.String("inbox", dir)),
		settle:  DefaultSettle,
		pending: map[string]*time.Timer{},
		ready:   make(chan string, 64),
		done:    make(chan struct{}),
	}
}

// Run ingests files already in the inbox, then watches it until ctx is
// done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o750); err != nil {
		return fmt.Errorf("creating inbox %s: %w", w.dir, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.logger.Info("watching knowledge inbox")

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("reading inbox: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			w.handle(ctx, filepath.Join(w.dir, e.Name()))
		}
	}

	defer func() {
		w.stopTimers()
		close(w.done)
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				w.schedule(ev.Name)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("inbox watcher error", zap.Error(err))
		case path := <-w.ready:
			w.handle(ctx, path)
		}
	}
}

// schedule delays ingestion until writes to path have settled.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		select {
		case w.ready <- path:
		case <-w.done:
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) handle(ctx context.Context, path string) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") {
		return
	}
	if !documents.Supported(name) {
		w.logger.Info("skipping unsupported inbox file", zap.String("file", name))
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	if err := w.insideInbox(path); err != nil {
		w.logger.Warn("skipping inbox link to outside file", zap.String("file", name), zap.Error(err))
		return
	}
	if err := w.ingest(ctx, path); err != nil {
		w.logger.Warn("inbox ingestion failed", zap.String("file", name), zap.Error(err))
		return
	}
	w.logger.Info("ingested inbox file", zap.String("file", name))
}

// insideInbox rejects symlinks that resolve outside the inbox.
func (w *Watcher) insideInbox(path string) error {
	root, err := filepath.EvalSymlinks(w.dir)
	if err != nil {
		return err
	}
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return err
	}
	_, err = sanitize.ValidatePath(target, root)
	return err
}
