package scheduler

import (
	"context"
	"fmt"
	"time"

	"expired/internal/config"
	"expired/internal/model"
	"expired/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// jobTimeout bounds a single scheduled run.
const jobTimeout = 2 * time.Minute

// Scheduler runs the periodic expiry jobs.
type Scheduler struct {
	cron    *cron.Cron
	service service.ProductService
	cfg     config.SchedulerConfig
	logger  zerolog.Logger
}

// New creates a new scheduler. Jobs are registered by Start.
func New(cfg config.SchedulerConfig, svc service.ProductService, logger zerolog.Logger) *Scheduler {
	logger = logger.With().Str("component", "scheduler").Logger()

	// Standard 5-field cron: min, hour, dom, month, dow.
	c := cron.New(
		cron.WithLogger(cronLogger{logger: logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger: logger})),
	)

	return &Scheduler{
		cron:    c,
		service: svc,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start registers the digest and auto-archive jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info().
		Str("schedule", s.cfg.DigestSchedule).
		Int("auto_archive_after_days", s.cfg.AutoArchiveAfterDays).
		Msg("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.DigestSchedule, s.runJobs); err != nil {
		s.logger.Error().Err(err).Msg("failed to schedule expiry digest")
		return fmt.Errorf("failed to schedule expiry digest: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info().Msg("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runJobs() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.RunAutoArchive(ctx); err != nil {
		s.logger.Error().Err(err).Msg("auto archive failed")
	}
	s.RunDigest(ctx)
}

// RunDigest reloads the list and logs how many products sit in each bucket,
// naming the ones that are expired or expiring soon.
func (s *Scheduler) RunDigest(ctx context.Context) model.Summary {
	s.service.Reload(ctx)
	summary := s.service.Summary(ctx)

	s.logger.Info().
		Int("total", summary.Total).
		Int("expired", summary.Expired).
		Int("expiring_soon", summary.ExpiringSoon).
		Int("good", summary.Good).
		Msg("expiry digest")

	for _, filter := range []model.Filter{model.FilterExpired, model.FilterExpiringSoon} {
		products, err := s.service.List(ctx, filter)
		if err != nil {
			s.logger.Error().Err(err).Str("filter", string(filter)).Msg("failed to list products for digest")
			continue
		}
		for _, p := range products {
			s.logger.Info().
				Str("filter", string(filter)).
				Str("product_id", p.ID.String()).
				Str("title", p.Title).
				Time("expiry_date", p.ExpiryDate).
				Msg("digest entry")
		}
	}

	return summary
}

// RunAutoArchive archives products expired longer than the configured number of days.
// It is a no-op when the setting is 0.
func (s *Scheduler) RunAutoArchive(ctx context.Context) (int, error) {
	if s.cfg.AutoArchiveAfterDays <= 0 {
		return 0, nil
	}

	count, err := s.service.ArchiveExpired(ctx, s.cfg.AutoArchiveAfterDays)
	if err != nil {
		return 0, fmt.Errorf("failed to archive expired products: %w", err)
	}
	return count, nil
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
