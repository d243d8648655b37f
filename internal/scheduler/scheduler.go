package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"TrendSentinel/internal/collector"
	"TrendSentinel/internal/model"
	"TrendSentinel/internal/notifier"
	"TrendSentinel/internal/portfolio"
	"TrendSentinel/internal/recorder"
	"TrendSentinel/internal/report"
	"TrendSentinel/internal/strategy"
)

// Scheduler runs scans over the symbol universe, on demand or from cron.
type Scheduler struct {
	Cron      *cron.Cron
	Symbols   []string
	Collector *collector.Collector
	Engine    *strategy.Engine
	Store     portfolio.Store
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Ctx       context.Context

	mu sync.Mutex // one run at a time; the ownership file has a single writer
}

// NewScheduler creates a new Scheduler. Overlapping cron firings are skipped.
func NewScheduler(ctx context.Context, symbols []string, col *collector.Collector, engine *strategy.Engine,
	store portfolio.Store, n notifier.Notifier, rec recorder.Recorder) *Scheduler {
	if n == nil {
		n = notifier.NoopNotifier{}
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	cronLog := cron.PrintfLogger(logrus.StandardLogger())
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cronLog))),
		Symbols:   symbols,
		Collector: col,
		Engine:    engine,
		Store:     store,
		Notifier:  n,
		Recorder:  rec,
		Ctx:       ctx,
	}
}

// Register schedules the scan with a six-field cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.scheduledRun); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logrus.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logrus.Info("scheduler stopped")
}

// RunNow executes a scan immediately (RUN_ON_START / once mode).
func (s *Scheduler) RunNow() error {
	_, err := s.Run(s.Ctx)
	return err
}

func (s *Scheduler) scheduledRun() {
	if _, err := s.Run(s.Ctx); err != nil {
		logrus.Errorf("scheduled run: %v", err)
	}
}

// Run performs one full scan: load ownership, detect per symbol, reconcile,
// save, record and notify. Per-symbol failures only skip that symbol. A
// cancelled context aborts before anything is saved.
func (s *Scheduler) Run(ctx context.Context) (*recorder.RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := &recorder.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Source:    s.Collector.Fetcher.Name(),
	}
	log := logrus.WithField("run_id", run.RunID)
	log.Infof("scan started: %d symbols, source %s", len(s.Symbols), run.Source)

	owned := s.Store.Load(ctx)

	for _, symbol := range s.Symbols {
		if err := ctx.Err(); err != nil {
			return run, fmt.Errorf("scan aborted: %w", err)
		}
		run.Scanned++
		series, err := s.Collector.Collect(ctx, symbol)
		if err != nil {
			run.Skipped++
			entry := log.WithField("symbol", symbol)
			if errors.Is(err, collector.ErrBelowFloor) {
				entry.Debugf("skipped: %v", err)
			} else {
				entry.Warnf("skipped: %v", err)
			}
			continue
		}
		run.Detected = append(run.Detected, s.Engine.Evaluate(symbol, series)...)
	}
	if err := ctx.Err(); err != nil {
		return run, fmt.Errorf("scan aborted: %w", err)
	}

	run.Accepted = portfolio.Reconcile(owned, run.Detected)
	rep := report.Assemble(run.Accepted, owned)
	run.Owned = owned.Len()

	var saveErr error
	if err := s.Store.Save(ctx, rep); err != nil {
		saveErr = fmt.Errorf("save portfolio: %w", err)
		run.SaveError = err.Error()
		log.Errorf("save portfolio %s: %v", s.Store.Path(), err)
	}
	run.FinishedAt = time.Now()

	if err := s.Recorder.RecordRun(run); err != nil {
		log.Errorf("record run: %v", err)
	}
	if err := s.Notifier.Notify(ctx, notifier.FormatRunReport(run, rep)); err != nil {
		log.Errorf("send notification: %v", err)
	}

	log.WithFields(logrus.Fields{
		"scanned":  run.Scanned,
		"skipped":  run.Skipped,
		"detected": len(run.Detected),
		"accepted": len(run.Accepted),
		"owned":    run.Owned,
	}).Infof("scan finished in %s", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	logAccepted(log, run.Accepted)
	return run, saveErr
}

func logAccepted(log *logrus.Entry, accepted []model.Signal) {
	for _, sig := range accepted {
		log.WithFields(logrus.Fields{"symbol": sig.Symbol, "interval": sig.Horizon}).Infof("accepted %s", sig.Kind)
	}
}
