package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "expensetracker/internal/log"
)

type fakeServer struct {
	listenErr error
	stop      chan struct{}
	shutdowns int32
}

func newFakeServer(listenErr error) *fakeServer {
	return &fakeServer{listenErr: listenErr, stop: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	if atomic.AddInt32(&f.shutdowns, 1) == 1 {
		close(f.stop)
	}
	return nil
}

func TestServeUntilDoneStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := newFakeServer(nil)
	var cleaned atomic.Bool

	done := make(chan error, 1)
	go func() {
		done <- ServeUntilDone(ctx, applog.Discard(), srv, time.Second, func() error {
			cleaned.Store(true)
			return nil
		})
	}()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, cleaned.Load())
	assert.Equal(t, int32(1), atomic.LoadInt32(&srv.shutdowns))
}

func TestServeUntilDoneReportsListenError(t *testing.T) {
	boom := errors.New("address in use")
	err := ServeUntilDone(context.Background(), applog.Discard(), newFakeServer(boom), time.Second, nil)
	assert.ErrorIs(t, err, boom)
}

func TestServeUntilDoneJoinsCleanupError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	closeErr := errors.New("close failed")
	err := ServeUntilDone(ctx, applog.Discard(), newFakeServer(nil), time.Second, func() error { return closeErr })
	assert.ErrorIs(t, err, closeErr)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("EXPENSETRACKER_TEST_KEY=from-file\n"), 0o600))
	t.Setenv("EXPENSETRACKER_TEST_KEY", "")
	require.NoError(t, os.Unsetenv("EXPENSETRACKER_TEST_KEY"))

	require.NoError(t, LoadEnvFile(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv("EXPENSETRACKER_TEST_KEY"))
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("PORT", "8081")
	cfg, err := LoadAndValidateConfig()
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.Port)

	t.Setenv("PORT", "nope")
	_, err = LoadAndValidateConfig()
	assert.Error(t, err)
}
