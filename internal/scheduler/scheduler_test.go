package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenlab/sectorscope/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	runs     int32
	err      error
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }
func (j *stubJob) Run(ctx context.Context) error {
	atomic.AddInt32(&j.runs, 1)
	return j.err
}

func newTestScheduler() *Scheduler {
	s := New(logger.Nop())
	s.retryDelay = time.Millisecond
	return s
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "refresh", schedule: "@hourly"}

	require.NoError(t, s.AddJob(job))
	err := s.AddJob(job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := newTestScheduler()
	err := s.AddJob(&stubJob{name: "bad", schedule: "not a cron spec"})
	require.Error(t, err)
}

func TestRunJobExecutesAndRecordsHistory(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "refresh", schedule: "@hourly"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("refresh"))
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&job.runs) == 1
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		h, err := s.History("refresh")
		return err == nil && len(h.Results) == 1
	}, time.Second, 5*time.Millisecond)

	h, err := s.History("refresh")
	require.NoError(t, err)
	assert.True(t, h.Results[0].Success)
	assert.Equal(t, 1.0, h.SuccessRate())
}

func TestRunJobRetriesOnFailure(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "flaky", schedule: "@hourly", err: errors.New("provider down")}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("flaky"))
	require.Eventually(t, func() bool {
		h, err := s.History("flaky")
		return err == nil && len(h.Results) == 1
	}, 2*time.Second, 5*time.Millisecond)

	// Initial attempt plus maxRetries.
	assert.Equal(t, int32(3), atomic.LoadInt32(&job.runs))

	h, _ := s.History("flaky")
	assert.False(t, h.Results[0].Success)
	assert.Contains(t, h.Results[0].Error, "provider down")
	assert.Equal(t, 0.0, h.SuccessRate())
}

func TestRunJobUnknownName(t *testing.T) {
	s := newTestScheduler()
	require.Error(t, s.RunJob("missing"))
}

func TestJobHistoryBounded(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+20; i++ {
		h.AddResult(JobResult{Success: true})
	}
	assert.Len(t, h.Results, historyLimit)
}
