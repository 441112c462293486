package postprocess

import (
	"context"
	"mobileforms-service/internal/app/config"
	"mobileforms-service/internal/app/contracts"
	"mobileforms-service/internal/pkg/constvars"
	"mobileforms-service/internal/pkg/utils"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// leaderLockKey keeps passes to one instance when several share the queue areas.
const leaderLockKey = "postprocess:leader"

const leaderLockTTL = 2 * time.Minute

// Worker triggers post-process passes on a cron schedule and, for the filesystem backend,
// whenever a document lands in the pending area.
type Worker struct {
	log     *zap.Logger
	cfg     *config.InternalConfig
	locker  contracts.LockerService
	usecase contracts.PostProcessUsecase
	cron    *cron.Cron
	watcher *fsnotify.Watcher
	runCtx  context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewWorker builds a worker. lockerSvc may be nil for a single-instance deployment.
func NewWorker(log *zap.Logger, cfg *config.InternalConfig, lockerSvc contracts.LockerService, usecase contracts.PostProcessUsecase) *Worker {
	return &Worker{log: log, cfg: cfg, locker: lockerSvc, usecase: usecase}
}

func (w *Worker) Start(ctx context.Context) error {
	w.runCtx, w.cancel = context.WithCancel(ctx)

	c := cron.New()
	if _, err := c.AddFunc(w.cfg.PostProcess.CronSpec, func() { w.RunOnce(w.runCtx) }); err != nil {
		w.cancel()
		return err
	}
	c.Start()
	w.cron = c
	w.log.Info("postprocess.Worker started",
		zap.String(constvars.LoggingCronSpecKey, w.cfg.PostProcess.CronSpec),
	)

	if w.cfg.PostProcess.WatchPending && w.cfg.Queue.Backend == constvars.QueueBackendFilesystem {
		if err := w.startWatcher(); err != nil {
			w.Stop()
			return err
		}
	}
	return nil
}

// Stop waits for a running pass to finish.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.watcher != nil {
		_ = w.watcher.Close()
	}
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
	w.wg.Wait()
}

// RunOnce runs one pass under the leader lock.
func (w *Worker) RunOnce(ctx context.Context) {
	ctx = utils.WithRequestID(ctx)
	requestID := utils.RequestIDFrom(ctx)

	if w.locker != nil {
		acquired, token, err := w.locker.TryLock(ctx, leaderLockKey, leaderLockTTL)
		if err != nil {
			w.log.Warn("postprocess.Worker leader lock attempt failed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			return
		}
		if !acquired {
			w.log.Info("postprocess.Worker leader lock not acquired; another instance is running",
				zap.String(constvars.LoggingRequestIDKey, requestID),
			)
			return
		}
		defer func() {
			if err := w.locker.Unlock(ctx, leaderLockKey, token); err != nil {
				w.log.Warn("postprocess.Worker error releasing leader lock",
					zap.String(constvars.LoggingRequestIDKey, requestID),
					zap.String(constvars.LoggingRedisKey, leaderLockKey),
					zap.Error(err),
				)
			}
		}()

		refreshCtx, cancelRefresh := context.WithCancel(ctx)
		defer cancelRefresh()
		go w.refreshLeaderLock(refreshCtx, token)
	}

	if _, err := w.usecase.RunPass(ctx); err != nil {
		w.log.Error("postprocess.Worker pass failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
	}
}

func (w *Worker) refreshLeaderLock(ctx context.Context, token string) {
	tick := time.NewTicker(leaderLockTTL / 2)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if err := w.locker.Refresh(ctx, leaderLockKey, token, leaderLockTTL); err != nil {
				w.log.Warn("postprocess.Worker failed to refresh leader lock TTL", zap.Error(err))
			}
		}
	}
}

func (w *Worker) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(w.cfg.Queue.PendingDir); err != nil {
		_ = watcher.Close()
		return err
	}
	w.watcher = watcher

	w.wg.Add(1)
	go w.watch(w.runCtx, watcher)
	w.log.Info("postprocess.Worker watching pending area",
		zap.String(constvars.LoggingAreaLocationKey, w.cfg.Queue.PendingDir),
	)
	return nil
}

// watch runs a pass once arrivals have been quiet for the debounce interval.
func (w *Worker) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	defer w.wg.Done()

	debounce := time.Duration(w.cfg.PostProcess.WatchDebounceInMillis) * time.Millisecond
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("postprocess.Worker watcher error", zap.Error(err))
		case <-timer.C:
			w.RunOnce(ctx)
		}
	}
}
