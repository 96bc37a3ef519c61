package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) ingest(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, filepath.Base(path))
	return nil
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func TestWatcher_IngestsExistingAndNewFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.md"), []byte("# hi"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photo.png"), []byte("png"), 0o600))

	rec := &recorder{}
	w := newWatcher(dir, rec.ingest, zap.NewNop())
	w.settle = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return len(rec.seen()) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("fresh notes"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.txt"), []byte("skip"), 0o600))
	require.Eventually(t, func() bool { return len(rec.seen()) == 2 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []string{"existing.md", "new.txt"}, rec.seen())
}

func TestWatcher_SkipsLinksOutsideInbox(t *testing.T) {
	dir := t.TempDir()
	secret := filepath.Join(t.TempDir(), "secrets.txt")
	require.NoError(t, os.WriteFile(secret, []byte("do not index"), 0o600))
	if err := os.Symlink(secret, filepath.Join(dir, "linked.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "local.txt"), []byte("fine"), 0o600))

	rec := &recorder{}
	w := newWatcher(dir, rec.ingest, zap.NewNop())

	w.handle(context.Background(), filepath.Join(dir, "linked.txt"))
	w.handle(context.Background(), filepath.Join(dir, "local.txt"))
	assert.Equal(t, []string{"local.txt"}, rec.seen())
}

func TestNewWatcher_Validation(t *testing.T) {
	_, err := NewWatcher("", &Processor{}, nil)
	assert.Error(t, err)
	_, err = NewWatcher(t.TempDir(), nil, nil)
	assert.Error(t, err)
}
