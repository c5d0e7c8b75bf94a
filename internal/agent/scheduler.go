package agent

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// scheduler runs named jobs on fixed intervals until stopped. A job never
// overlaps with itself.
type scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *zap.SugaredLogger
}

func newScheduler(logger *zap.SugaredLogger) *scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &scheduler{ctx: ctx, cancel: cancel, logger: logger}
}

func (s *scheduler) every(name string, interval time.Duration, fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				start := time.Now()
				fn(s.ctx)
				jobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
			case <-s.ctx.Done():
				s.logger.Debugw("Job stopped", "job", name)
				return
			}
		}
	}()
	s.logger.Infow("Job scheduled", "job", name, "interval", interval)
}

// stop cancels running jobs and waits for them to return.
func (s *scheduler) stop() {
	s.cancel()
	s.wg.Wait()
}
