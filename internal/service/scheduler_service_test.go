package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySpec(t *testing.T) {
	spec, err := buildDailySpec("09:30")
	require.NoError(t, err)
	assert.Equal(t, "0 30 9 * * *", spec)

	for _, bad := range []string{"", "9", "24:00", "12:60", "aa:bb", "1:2:3"} {
		_, err := buildDailySpec(bad)
		assert.Error(t, err, bad)
	}
}

func TestScheduleWeekly(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	id, err := s.ScheduleWeekly("weekly", time.Monday, "08:15", func(context.Context) error { return nil })
	require.NoError(t, err)

	next := s.cron.Entry(id).Schedule.Next(time.Date(2023, 10, 4, 0, 0, 0, 0, time.UTC))
	assert.True(t, time.Date(2023, 10, 9, 8, 15, 0, 0, time.UTC).Equal(next), "next run %s", next)
}

func TestSchedulerRejectsBadSchedules(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	noop := func(context.Context) error { return nil }

	_, err := s.ScheduleInterval("zero", 0, noop)
	assert.Error(t, err)
	_, err = s.ScheduleDaily("bad", "25:00", noop)
	assert.Error(t, err)
}

func TestSchedulerRunsIntervalJobs(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	ran := make(chan struct{}, 4)

	_, err := s.ScheduleInterval("tick", time.Second, func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok, "jobs run with a deadline")
		ran <- struct{}{}
		return errors.New("logged, not fatal")
	})
	require.NoError(t, err)

	s.Start()
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}
