package daemon

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/stecurtis/imx/internal/config"
	"github.com/stecurtis/imx/internal/export"
	"github.com/stecurtis/imx/internal/msgstore"
	"github.com/stecurtis/imx/internal/status"
	"go.uber.org/zap"
)

// Scheduler triggers export runs on the configured interval. Runs never
// overlap: the process already holds the data-root lock, and cron entries
// execute on one goroutine per entry while runOnce is synchronous.
type Scheduler struct {
	cron     *cron.Cron
	exporter *export.Exporter
	machine  *status.Machine
	cfg      *config.Config
	logger   *zap.Logger
}

// NewScheduler creates a scheduler around the exporter.
func NewScheduler(exporter *export.Exporter, machine *status.Machine, cfg *config.Config, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		exporter: exporter,
		machine:  machine,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers the interval entry, kicks off an immediate first run, and
// starts the cron loop.
func (s *Scheduler) Start() error {
	spec := fmt.Sprintf("@every %dm", s.cfg.RefreshMinutes)
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	s.logger.Info("scheduler started", zap.Int("refresh_minutes", s.cfg.RefreshMinutes))

	go s.runOnce()
	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runOnce() {
	if err := s.machine.Transition(status.Running); err != nil {
		// Already running; skip this tick rather than overlap.
		s.logger.Warn("skipping scheduled run", zap.Error(err))
		return
	}

	summary, err := s.exporter.Run()
	if err != nil {
		_ = s.machine.Transition(status.Error)
		if errors.Is(err, msgstore.ErrStoreUnavailable) {
			s.logger.Error("message store unavailable; grant Full Disk Access to imxd and retry",
				zap.Error(err))
			return
		}
		s.logger.Error("export run failed", zap.Error(err))
		return
	}

	_ = s.machine.Transition(status.Idle)
	s.logger.Info("scheduled run complete",
		zap.String("run_id", summary.RunID),
		zap.Int("contacts_checked", summary.ContactsChecked),
		zap.Int("contacts_with_new", summary.ContactsWithNew),
		zap.Int("new_records", summary.NewRecords),
		zap.Int("failures", summary.Failures))
}
