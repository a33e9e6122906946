package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/garyjia/courier-billing/internal/application/port"
	"github.com/garyjia/courier-billing/internal/domain/event"
	"github.com/garyjia/courier-billing/internal/domain/rating"
	"go.uber.org/zap"
)

// Defect kinds reported by the configuration audit
const (
	DefectRejected = "rejected"
	DefectOverlap  = "overlap"
)

// ConfigAuditConfig holds configuration for the audit worker
type ConfigAuditConfig struct {
	Interval time.Duration
}

// DefaultConfigAuditConfig returns default configuration
func DefaultConfigAuditConfig() ConfigAuditConfig {
	return ConfigAuditConfig{Interval: 15 * time.Minute}
}

// Defect is one configuration problem needing manual correction
type Defect struct {
	FranchiseID int64  `json:"franchise_id"`
	Kind        string `json:"kind"`
	Detail      string `json:"detail"`
}

// AuditReport is the outcome of one audit pass
type AuditReport struct {
	Franchises int      `json:"franchises"`
	Defects    []Defect `json:"defects"`
}

// ConfigAuditWorker periodically builds every franchise snapshot and reports
// configurations that are rejected or contain overlapping rate ranges.
// Rating keeps failing closed on those; the audit only surfaces them early.
type ConfigAuditWorker struct {
	config  ConfigAuditConfig
	configs port.ConfigRepository
	events  port.EventPublisher
	logger  *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	last    *AuditReport
}

// NewConfigAuditWorker creates the audit worker. events may be nil.
func NewConfigAuditWorker(config ConfigAuditConfig, configs port.ConfigRepository, events port.EventPublisher, logger *zap.Logger) *ConfigAuditWorker {
	if config.Interval <= 0 {
		config.Interval = DefaultConfigAuditConfig().Interval
	}
	return &ConfigAuditWorker{
		config:  config,
		configs: configs,
		events:  events,
		logger:  logger,
	}
}

// Name returns the worker name for identification
func (w *ConfigAuditWorker) Name() string {
	return "ConfigAuditWorker"
}

// Start runs one audit immediately and then one per interval
func (w *ConfigAuditWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("config audit worker already running")
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.running = true

	w.logger.Info("ConfigAuditWorker started", zap.Duration("interval", w.config.Interval))
	go w.loop(ctx, w.done)
	return nil
}

// Stop cancels the loop and waits for an audit in progress to finish
func (w *ConfigAuditWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done
	w.logger.Info("ConfigAuditWorker stopped")
	return nil
}

// LastReport returns the most recent audit report, or nil before the first pass
func (w *ConfigAuditWorker) LastReport() *AuditReport {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

func (w *ConfigAuditWorker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("Configuration audit failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce audits every configured franchise
func (w *ConfigAuditWorker) RunOnce(ctx context.Context) (*AuditReport, error) {
	ids, err := w.configs.ListFranchiseIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list franchises: %w", err)
	}

	report := &AuditReport{Defects: []Defect{}}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cfg, err := w.configs.LoadFranchiseConfig(ctx, id)
		if err != nil {
			return nil, err
		}
		if cfg == nil {
			continue
		}
		report.Franchises++

		snap, err := rating.Build(*cfg)
		if err != nil {
			w.report(ctx, report, Defect{FranchiseID: id, Kind: DefectRejected, Detail: err.Error()})
			continue
		}
		for _, o := range snap.Overlaps() {
			w.report(ctx, report, Defect{
				FranchiseID: id,
				Kind:        DefectOverlap,
				Detail: fmt.Sprintf("%s rules %d and %d overlap on %s->%s %s",
					o.Level, o.FirstID, o.SecondID, o.Key.FromZone, o.Key.ToZone, o.Key.ServiceType),
			})
		}
	}

	w.mu.Lock()
	w.last = report
	w.mu.Unlock()

	w.logger.Info("Configuration audit finished",
		zap.Int("franchises", report.Franchises),
		zap.Int("defects", len(report.Defects)))
	return report, nil
}

func (w *ConfigAuditWorker) report(ctx context.Context, report *AuditReport, d Defect) {
	report.Defects = append(report.Defects, d)
	w.logger.Warn("Configuration defect",
		zap.Int64("franchise_id", d.FranchiseID),
		zap.String("kind", d.Kind),
		zap.String("detail", d.Detail))

	if w.events != nil {
		w.events.DispatchAsync(ctx, event.NewEvent(event.TypeConfigDefect, d.FranchiseID, 0, "", map[string]interface{}{
			"kind":   d.Kind,
			"detail": d.Detail,
		}))
	}
}
