package verification

import (
	"context"
	"testing"
	"time"

	"ecoroot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedDelay_TwoPhases(t *testing.T) {
	sched := newTestScheduler(t)
	f := NewFixedDelay(sched, 30*time.Millisecond, 150*time.Millisecond, nil)

	ctx := context.Background()
	id, err := f.Submit(ctx, SubmitRequest{ChallengeID: "c6", UserID: "u1", ProofType: model.ProofUpload})
	require.NoError(t, err)

	rec, err := f.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, MessageSubmitted, rec.Message)

	require.Eventually(t, func() bool {
		rec, err := f.Status(ctx, id)
		return err == nil && rec.Message == MessagePending
	}, time.Second, 5*time.Millisecond)

	rec = waitTerminal(t, f, id)
	assert.Equal(t, model.VerificationVerified, rec.Status)
	assert.Equal(t, MessageApproved, rec.Message)
}

func TestScheduler_CancelByTag(t *testing.T) {
	sched := newTestScheduler(t)

	fired := make(chan struct{}, 1)
	require.NoError(t, sched.After("owned", 200*time.Millisecond, func() {
		fired <- struct{}{}
	}, "view-1"))

	assert.Eventually(t, func() bool { return sched.Pending("view-1") == 1 }, time.Second, 5*time.Millisecond)

	sched.Cancel("view-1")
	assert.Eventually(t, func() bool { return sched.Pending("view-1") == 0 }, time.Second, 5*time.Millisecond)

	select {
	case <-fired:
		t.Fatal("cancelled job ran")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestScheduler_Every(t *testing.T) {
	sched := newTestScheduler(t)

	ticks := make(chan struct{}, 10)
	require.NoError(t, sched.Every("tick", 20*time.Millisecond, func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	}, "poller"))

	for i := 0; i < 2; i++ {
		select {
		case <-ticks:
		case <-time.After(time.Second):
			t.Fatal("recurring job did not run")
		}
	}

	sched.Cancel("poller")
}
