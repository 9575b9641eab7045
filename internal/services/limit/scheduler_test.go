package limit

import (
	"context"
	"io"
	"testing"
	"time"

	"cardvault/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingJobs struct {
	resets  []models.LimitType
	applies []models.LimitType
}

func (r *recordingJobs) ResetAllByPeriod(lt models.LimitType) error {
	r.resets = append(r.resets, lt)
	return nil
}

func (r *recordingJobs) ApplyPendingByPeriod(lt models.LimitType) error {
	r.applies = append(r.applies, lt)
	return nil
}

type recordingSweeper struct {
	calls int
}

func (r *recordingSweeper) ExpireCards(ctx context.Context, now time.Time) (int, error) {
	r.calls++
	return 0, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestScheduler_Register(t *testing.T) {
	t.Run("registers reset, apply and sweep entries", func(t *testing.T) {
		s := NewScheduler(&recordingJobs{}, &recordingSweeper{}, quietLogger())
		require.NoError(t, s.Register())
		assert.Len(t, s.cron.Entries(), 5)
	})

	t.Run("sweeper is optional", func(t *testing.T) {
		s := NewScheduler(&recordingJobs{}, nil, quietLogger())
		require.NoError(t, s.Register())
		assert.Len(t, s.cron.Entries(), 4)
	})
}

func TestScheduler_ApplyRunsAfterReset(t *testing.T) {
	// The pending-ceiling application is scheduled one minute after the
	// reset of the same window, so the reset commits first.
	s := NewScheduler(&recordingJobs{}, nil, quietLogger())
	require.NoError(t, s.Register())

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).Add(-time.Minute)
	var nexts []time.Time
	for _, e := range s.cron.Entries() {
		nexts = append(nexts, e.Schedule.Next(base))
	}
	require.Len(t, nexts, 4)
	assert.Equal(t, base.Add(time.Minute), nexts[0], "daily reset at midnight")
	assert.Equal(t, base.Add(time.Minute), nexts[1], "monthly reset at midnight on the 1st")
	assert.Equal(t, base.Add(2*time.Minute), nexts[2], "daily apply one minute later")
	assert.Equal(t, base.Add(2*time.Minute), nexts[3], "monthly apply one minute later")
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(&recordingJobs{}, &recordingSweeper{}, quietLogger())
	require.NoError(t, s.Register())
	s.Start()
	s.Stop()
}
