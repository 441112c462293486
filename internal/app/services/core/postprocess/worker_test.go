package postprocess

import (
	"context"
	"errors"
	"mobileforms-service/internal/app/config"
	"mobileforms-service/internal/pkg/dto/responses"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type countingUsecase struct {
	passes atomic.Int32
}

func (c *countingUsecase) RunPass(ctx context.Context) (*responses.PostProcessPass, error) {
	c.passes.Add(1)
	return &responses.PostProcessPass{Started: true}, nil
}

type fakeLocker struct {
	mu        sync.Mutex
	held      bool
	unlocked  int
	unlockErr error
}

func (f *fakeLocker) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held {
		return false, "", nil
	}
	f.held = true
	return true, "token", nil
}

func (f *fakeLocker) Unlock(ctx context.Context, key, lockValue string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.held = false
	f.unlocked++
	return f.unlockErr
}

func (f *fakeLocker) Refresh(ctx context.Context, key, lockValue string, expiration time.Duration) error {
	return nil
}

func TestWorkerRunOnce(t *testing.T) {
	ctx := context.Background()
	cfg := config.NewInternalConfig()

	t.Run("Runs Under Leader Lock", func(t *testing.T) {
		locker := &fakeLocker{}
		usecase := &countingUsecase{}
		worker := NewWorker(zap.NewNop(), cfg, locker, usecase)

		worker.RunOnce(ctx)
		assert.Equal(t, int32(1), usecase.passes.Load())
		assert.Equal(t, 1, locker.unlocked)
	})

	t.Run("Skips When Another Instance Leads", func(t *testing.T) {
		locker := &fakeLocker{held: true}
		usecase := &countingUsecase{}
		worker := NewWorker(zap.NewNop(), cfg, locker, usecase)

		worker.RunOnce(ctx)
		assert.Zero(t, usecase.passes.Load())
	})

	t.Run("Logs Failed Lock Release", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		locker := &fakeLocker{unlockErr: errors.New("redis unavailable")}
		usecase := &countingUsecase{}
		worker := NewWorker(zap.New(core), cfg, locker, usecase)

		worker.RunOnce(ctx)
		assert.Equal(t, int32(1), usecase.passes.Load())
		assert.Equal(t, 1, locker.unlocked)

		released := logs.FilterMessage("postprocess.Worker error releasing leader lock").All()
		require.Len(t, released, 1)
		assert.Equal(t, leaderLockKey, released[0].ContextMap()["redis_key"])
		assert.Equal(t, "redis unavailable", released[0].ContextMap()["error"])
	})

	t.Run("Runs Without Locker", func(t *testing.T) {
		usecase := &countingUsecase{}
		worker := NewWorker(zap.NewNop(), cfg, nil, usecase)

		worker.RunOnce(ctx)
		assert.Equal(t, int32(1), usecase.passes.Load())
	})
}

func TestWorkerWatchesPending(t *testing.T) {
	pendingDir := t.TempDir()
	cfg := config.NewInternalConfig()
	cfg.Queue.Backend = "filesystem"
	cfg.Queue.PendingDir = pendingDir
	cfg.PostProcess.CronSpec = "@every 1h"
	cfg.PostProcess.WatchPending = true
	cfg.PostProcess.WatchDebounceInMillis = 50

	usecase := &countingUsecase{}
	worker := NewWorker(zap.NewNop(), cfg, nil, usecase)
	require.NoError(t, worker.Start(context.Background()))
	defer worker.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(pendingDir, ".partial.xml"), []byte("<form/>"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, usecase.passes.Load())

	require.NoError(t, os.WriteFile(filepath.Join(pendingDir, "p100.xml"), []byte("<form/>"), 0o644))
	assert.Eventually(t, func() bool { return usecase.passes.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestWorkerRejectsBadCronSpec(t *testing.T) {
	cfg := config.NewInternalConfig()
	cfg.PostProcess.CronSpec = "every minute"
	worker := NewWorker(zap.NewNop(), cfg, nil, &countingUsecase{})
	assert.Error(t, worker.Start(context.Background()))
}
