package scheduler

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	runs int
	err  error
}

func (j *countingJob) Run() error   { j.runs++; return j.err }
func (j *countingJob) Name() string { return "counting_job" }

func TestRunNow(t *testing.T) {
	s := New(zerolog.Nop())

	job := &countingJob{}
	require.NoError(t, s.RunNow(job))
	assert.Equal(t, 1, job.runs)
}

func TestRunNow_PropagatesJobError(t *testing.T) {
	s := New(zerolog.Nop())

	job := &countingJob{err: errors.New("provider down")}
	err := s.RunNow(job)
	require.Error(t, err)
	assert.Equal(t, 1, job.runs)
}

func TestAddJob_RejectsBadSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.AddJob("not a cron expression", &countingJob{})
	assert.Error(t, err)
}
