package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/yigit/unicluster/internal/app/models"
	"github.com/yigit/unicluster/internal/pkg/helpers"
)

// Runner starts an automatic placement run for an intake year
type Runner interface {
	RunAutoPlacement(ctx context.Context, year int) ([]*models.Placement, error)
}

// AutoPlacementJob triggers automatic placement on a cron schedule for the
// current intake year.
type AutoPlacementJob struct {
	runner   Runner
	schedule string
	timeout  time.Duration
	logger   zerolog.Logger
	now      func() time.Time

	cron *cron.Cron
}

// NewAutoPlacementJob validates the schedule and registers the run. An empty
// schedule returns a nil job.
func NewAutoPlacementJob(runner Runner, schedule string, timeout time.Duration, logger zerolog.Logger) (*AutoPlacementJob, error) {
	if schedule == "" {
		return nil, nil
	}

	j := &AutoPlacementJob{
		runner:   runner,
		schedule: schedule,
		timeout:  timeout,
		logger:   logger.With().Str("component", "auto-placement-job").Logger(),
		now:      time.Now,
	}

	cronLogger := cronLogger{log: j.logger}
	j.cron = cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	if _, err := j.cron.AddFunc(schedule, j.Run); err != nil {
		return nil, fmt.Errorf("invalid placement schedule %q: %w", schedule, err)
	}

	return j, nil
}

// Start begins firing on schedule
func (j *AutoPlacementJob) Start() {
	if j == nil {
		return
	}
	j.cron.Start()
	j.logger.Info().Str("schedule", j.schedule).Dur("timeout", j.timeout).Msg("Automatic placement job scheduled")
}

// Stop halts the schedule and waits for a run in progress to finish or for ctx to end
func (j *AutoPlacementJob) Stop(ctx context.Context) {
	if j == nil {
		return
	}
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
		j.logger.Warn().Msg("Automatic placement job still running at shutdown")
	}
}

// Run performs one run for the current year
func (j *AutoPlacementJob) Run() {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	year := helpers.CurrentYear(j.now())
	placements, err := j.runner.RunAutoPlacement(ctx, year)
	if err != nil {
		j.logger.Error().Err(err).Int("year", year).Msg("Scheduled automatic placement failed")
		return
	}
	j.logger.Info().Int("year", year).Int("placed", len(placements)).Msg("Scheduled automatic placement finished")
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
