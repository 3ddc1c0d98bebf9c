package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ResyncJobName is the name of the periodic store refetch
const ResyncJobName = "store_resync"

// Refreshable is one live collection. store.Store satisfies it.
type Refreshable interface {
	Name() string
	Refresh(ctx context.Context) bool
	LastLoaded() time.Time
}

// ResyncJob refetches every live collection. It bounds how long a snapshot
// stays stale when change notifications are lost.
type ResyncJob struct {
	targets []Refreshable
	timeout time.Duration
	logger  *zap.Logger
}

func NewResyncJob(targets []Refreshable, timeout time.Duration, logger *zap.Logger) *ResyncJob {
	return &ResyncJob{targets: targets, timeout: timeout, logger: logger}
}

// Run refetches all targets
func (j *ResyncJob) Run() {
	j.refresh(func(Refreshable) bool { return true })
}

// RunStartupLoad loads the targets that have never completed a fetch
func (j *ResyncJob) RunStartupLoad() (loaded, failed int) {
	return j.refresh(func(t Refreshable) bool { return t.LastLoaded().IsZero() })
}

func (j *ResyncJob) refresh(want func(Refreshable) bool) (loaded, failed int) {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	var failedNames []string
	for _, t := range j.targets {
		if !want(t) {
			continue
		}
		if t.Refresh(ctx) {
			loaded++
		} else {
			failed++
			failedNames = append(failedNames, t.Name())
		}
	}

	if failed > 0 {
		j.logger.Warn("store resync incomplete",
			zap.Int("loaded", loaded),
			zap.Strings("failed", failedNames),
			zap.Duration("duration", time.Since(start)))
	} else if loaded > 0 {
		j.logger.Debug("store resync completed",
			zap.Int("loaded", loaded),
			zap.Duration("duration", time.Since(start)))
	}
	return loaded, failed
}

// RegisterResyncJob adds the resync to scheduler. With runStartupLoad the
// initial fetch starts immediately in the background so the API can serve
// loading snapshots meanwhile.
func RegisterResyncJob(scheduler *Scheduler, targets []Refreshable, logger *zap.Logger, cronExpr string, timeout time.Duration, runStartupLoad bool) error {
	job := NewResyncJob(targets, timeout, logger)

	if runStartupLoad {
		go job.RunStartupLoad()
	}

	return scheduler.AddJob(ResyncJobName, cronExpr, job.Run)
}
