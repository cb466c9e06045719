package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardRecoversAndRollsBack(t *testing.T) {
	inv := &fakeInvoker{reply: succeed(trendReply)}
	s := newTestSession(t, inv)
	_, err := s.AnalyzeTrends(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Guard(func(Snapshot) error { return nil }))

	inv.reply = succeed(`{"executive_summary":"poison"}`)
	_, err = s.AnalyzeTrends(context.Background())
	require.NoError(t, err)

	err = s.Guard(func(snap Snapshot) error {
		if snap.Trend.ExecutiveSummary == "poison" {
			panic("bad trend")
		}
		return nil
	})
	require.Error(t, err)

	snap := s.Snapshot()
	assert.Equal(t, "Shorts dominate", snap.Trend.ExecutiveSummary)
	assert.Equal(t, "Something went wrong: bad trend", snap.Error)

	snap = s.DismissError()
	assert.Empty(t, snap.Error)
	require.NoError(t, s.Guard(func(Snapshot) error { return nil }))
}

func TestGuardWithoutKnownGood(t *testing.T) {
	inv := &fakeInvoker{reply: succeed(trendReply)}
	s := newTestSession(t, inv)
	_, err := s.AnalyzeTrends(context.Background())
	require.NoError(t, err)

	err = s.Guard(func(Snapshot) error { panic(errors.New("nil map")) })
	require.Error(t, err)
	snap := s.Snapshot()
	assert.Nil(t, snap.Trend)
	assert.Equal(t, StepDashboard, snap.Step)
	assert.Equal(t, "Something went wrong: nil map", snap.Error)
}

func TestGuardPassesRenderErrors(t *testing.T) {
	s := newTestSession(t, &fakeInvoker{})
	sentinel := errors.New("template missing")
	require.ErrorIs(t, s.Guard(func(Snapshot) error { return sentinel }), sentinel)
	assert.Empty(t, s.Snapshot().Error)
}
