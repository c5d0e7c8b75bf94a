// Package worker implements the buffered worker pool that ships projection
// records to ClickHouse and player alerts to Redis.
// Recommendation runs never wait on analytics writes:
// - Load shedding when the queue is full
// - Batch inserts for efficient ClickHouse writes
// - Graceful shutdown with flush guarantees

package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/skateiq/fantasy-agent/internal/models"
)

// Prometheus metrics
var (
	recordsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fantasy_agent_projection_records_ingested_total",
		Help: "Total number of projection records enqueued",
	})

	recordsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fantasy_agent_projection_records_processed_total",
		Help: "Total number of projection records written by workers",
	})

	recordsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fantasy_agent_projection_records_failed_total",
		Help: "Total number of projection records that failed processing",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fantasy_agent_worker_queue_depth",
		Help: "Current depth of the worker queue",
	})

	batchInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fantasy_agent_batch_insert_duration_seconds",
		Help:    "Duration of batch inserts to ClickHouse",
		Buckets: prometheus.DefBuckets,
	})

	recordsLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fantasy_agent_projection_records_load_shed_total",
		Help: "Total number of projection records dropped due to load shedding",
	})
)

// Job is one player's projection from a recommendation run plus any alerts
// raised for that player.
type Job struct {
	UserID      string
	Projection  models.PlayerProjection
	Alerts      []models.PlayerAlert
	GeneratedAt time.Time
	Timestamp   time.Time
}

// AlertPublisher fans alerts out to notification consumers.
type AlertPublisher interface {
	PublishAlerts(ctx context.Context, userID string, alerts []models.PlayerAlert) error
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	// ClickHouse may be nil, in which case only alerts are published.
	ClickHouse driver.Conn
	Publisher  AlertPublisher
	Logger     *zap.Logger
}

// Pool manages a pool of workers for async analytics writes
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger

	stopOnce sync.Once
	closeMu  sync.RWMutex
	closed   bool
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	// Start queue depth reporter
	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
		"clickhouse", p.config.ClickHouse != nil,
	)
}

// Stop gracefully shuts down the worker pool, flushing queued jobs.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping worker pool...")

		p.closeMu.Lock()
		p.closed = true
		close(p.jobQueue)
		p.closeMu.Unlock()

		p.wg.Wait()
		if p.cancel != nil {
			p.cancel()
		}
		p.logger.Info("Worker pool stopped")
	})
}

// Enqueue adds a job without blocking. It returns false when the queue is
// full or the pool is stopping.
func (p *Pool) Enqueue(job Job) bool {
	if job.Timestamp.IsZero() {
		job.Timestamp = time.Now()
	}

	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		recordsLoadShed.Inc()
		return false
	}

	select {
	case p.jobQueue <- job:
		recordsIngested.Inc()
		return true
	default:
		p.logger.Warnw("Worker queue full, dropping projection record", "user", job.UserID, "player", job.Projection.PlayerID)
		recordsLoadShed.Inc()
		return false
	}
}

// EnqueueRecommendations enqueues one job per projected player and returns
// how many were accepted.
func (p *Pool) EnqueueRecommendations(rec *models.TeamRecommendations) int {
	alertsByPlayer := make(map[int64][]models.PlayerAlert, len(rec.PlayerAlerts))
	for _, a := range rec.PlayerAlerts {
		alertsByPlayer[a.PlayerID] = append(alertsByPlayer[a.PlayerID], a)
	}

	accepted := 0
	for _, proj := range rec.StartSit {
		ok := p.Enqueue(Job{
			UserID:      rec.UserID,
			Projection:  proj,
			Alerts:      alertsByPlayer[proj.PlayerID],
			GeneratedAt: rec.GeneratedAt,
		})
		if ok {
			accepted++
		}
	}
	return accepted
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(p.QueueDepth()))
		case <-p.ctx.Done():
			return
		}
	}
}

// worker processes jobs from the queue in batches
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]Job, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		if err := p.processBatch(batch); err != nil {
			p.logger.Errorw("Batch processing failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			recordsFailed.Add(float64(len(batch)))
		} else {
			p.logger.Debugw("Batch processed", "worker", id, "batchSize", len(batch), "duration", time.Since(start))
			recordsProcessed.Add(float64(len(batch)))
		}
		batchInsertDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				// Channel closed, flush remaining
				flush()
				return
			}

			batch = append(batch, job)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-p.ctx.Done():
			flush()
			return
		}
	}
}

// processBatch writes projection rows, then publishes alerts.
func (p *Pool) processBatch(batch []Job) error {
	if len(batch) == 0 {
		return nil
	}

	ctx := context.Background()

	if p.config.ClickHouse != nil {
		if err := p.insertProjections(ctx, batch); err != nil {
			return err
		}
	}

	p.publishAlerts(ctx, batch)
	return nil
}

func (p *Pool) insertProjections(ctx context.Context, batch []Job) error {
	chBatch, err := p.config.ClickHouse.PrepareBatch(ctx, `
		INSERT INTO fantasy_agent.projection_events (
			timestamp, generated_at, user_id, player_id, player_name, position, team,
			projected_points, confidence, verdict, trend, upcoming_games, average_matchup, alert_count
		)
	`)
	if err != nil {
		return err
	}

	for _, job := range batch {
		proj := job.Projection
		err := chBatch.Append(
			job.Timestamp,
			job.GeneratedAt,
			job.UserID,
			proj.PlayerID,
			proj.PlayerName,
			string(proj.Position),
			proj.TeamAbbrev,
			proj.ProjectedPoints,
			proj.Confidence,
			string(proj.Verdict),
			string(proj.Trend),
			uint16(proj.UpcomingGames),
			proj.AverageMatchup,
			uint16(len(job.Alerts)),
		)
		if err != nil {
			p.logger.Warnw("Failed to append projection to batch", "error", err, "player", proj.PlayerID)
			continue
		}
	}

	if err := chBatch.Send(); err != nil {
		p.logger.Errorw("Failed to send batch to ClickHouse", "error", err, "batchSize", len(batch))
		return err
	}
	return nil
}

func (p *Pool) publishAlerts(ctx context.Context, batch []Job) {
	if p.config.Publisher == nil {
		return
	}
	byUser := make(map[string][]models.PlayerAlert)
	for _, job := range batch {
		if len(job.Alerts) > 0 {
			byUser[job.UserID] = append(byUser[job.UserID], job.Alerts...)
		}
	}
	for userID, alerts := range byUser {
		if err := p.config.Publisher.PublishAlerts(ctx, userID, alerts); err != nil {
			p.logger.Warnw("Failed to publish alerts", "user", userID, "alerts", len(alerts), "error", err)
		}
	}
}
