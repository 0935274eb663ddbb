package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/unicluster/internal/app/models"
)

type fakeRunner struct {
	years       []int
	hadDeadline bool
	err         error
}

func (f *fakeRunner) RunAutoPlacement(ctx context.Context, year int) ([]*models.Placement, error) {
	f.years = append(f.years, year)
	_, f.hadDeadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return []*models.Placement{{ID: 1, Year: year}}, nil
}

func TestNewAutoPlacementJob_EmptyScheduleDisables(t *testing.T) {
	job, err := NewAutoPlacementJob(&fakeRunner{}, "", time.Minute, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, job)

	// nil jobs are safe to start and stop
	job.Start()
	job.Stop(context.Background())
}

func TestNewAutoPlacementJob_InvalidSchedule(t *testing.T) {
	_, err := NewAutoPlacementJob(&fakeRunner{}, "every tuesday", time.Minute, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "every tuesday")
}

func TestAutoPlacementJob_RunUsesCurrentYear(t *testing.T) {
	runner := &fakeRunner{}
	job, err := NewAutoPlacementJob(runner, "0 2 * * *", 5*time.Minute, zerolog.Nop())
	require.NoError(t, err)
	job.now = func() time.Time { return time.Date(2027, time.March, 1, 2, 0, 0, 0, time.UTC) }

	job.Run()

	assert.Equal(t, []int{2027}, runner.years)
	assert.True(t, runner.hadDeadline)
}

func TestAutoPlacementJob_RunSurvivesFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("database unavailable")}
	job, err := NewAutoPlacementJob(runner, "@hourly", 0, zerolog.Nop())
	require.NoError(t, err)

	job.Run()
	job.Run()

	assert.Len(t, runner.years, 2)
	assert.False(t, runner.hadDeadline)
}

func TestAutoPlacementJob_StartStop(t *testing.T) {
	job, err := NewAutoPlacementJob(&fakeRunner{}, "@daily", time.Minute, zerolog.Nop())
	require.NoError(t, err)

	job.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	job.Stop(ctx)
	assert.NoError(t, ctx.Err())
}
