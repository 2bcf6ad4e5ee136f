// Package janitor periodically removes expired result cache entries.
package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/octobees/decisionfindr/api/internal/logging"
	"github.com/octobees/decisionfindr/api/internal/service"
)

// Purger is the cache sweep the janitor drives.
type Purger interface {
	PurgeExpired(ctx context.Context) (service.PurgeSummary, error)
}

// Janitor wraps robfig/cron and runs the purge on a schedule.
type Janitor struct {
	cron   *cron.Cron
	purger Purger
	spec   string
	logger *slog.Logger

	mu sync.Mutex
}

// New creates a janitor firing on spec, e.g. "@every 1h".
func New(purger Purger, spec string, logger *slog.Logger) *Janitor {
	return &Janitor{
		cron:   cron.New(),
		purger: purger,
		spec:   spec,
		logger: logging.OrDefault(logger),
	}
}

// Start registers the job and starts the scheduler.
func (j *Janitor) Start(ctx context.Context) error {
	if _, err := j.cron.AddFunc(j.spec, func() {
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.Error("cache purge failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	j.cron.Start()
	j.logger.Info("janitor started", "spec", j.spec)
	return nil
}

// Stop halts the scheduler and waits for a running purge to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("janitor stopped")
}

// RunOnce performs a single purge. Overlapping runs are serialised.
func (j *Janitor) RunOnce(ctx context.Context) (service.PurgeSummary, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	summary, err := j.purger.PurgeExpired(ctx)
	if err != nil {
		return summary, err
	}
	j.logger.Info("cache purge complete", "scanned", summary.Scanned, "removed", summary.Removed)
	return summary, nil
}
