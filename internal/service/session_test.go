package service

import (
	"errors"
	"testing"
	"time"

	"ecoroot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressStore_UpdateRollsBackOnError(t *testing.T) {
	store := NewProgressStore(nil)

	_, err := store.Update("u1", "c1", func(p *model.UserProgress) error {
		p.Joined = true
		return nil
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	p, err := store.Update("u1", "c1", func(p *model.UserProgress) error {
		p.ProgressDays = 3
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, p.ProgressDays)
	assert.True(t, p.Joined)

	assert.Equal(t, 0, store.Get("u1", "c1").ProgressDays)
	assert.False(t, store.Get("u1", "c2").Joined)
}

func TestProgressStore_Sweep(t *testing.T) {
	clock := newTestClock()
	store := NewProgressStore(clock.Now)

	_, err := store.Update("old", "c1", func(p *model.UserProgress) error { p.Joined = true; return nil })
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	_, err = store.Update("fresh", "c1", func(p *model.UserProgress) error { p.Joined = true; return nil })
	require.NoError(t, err)

	assert.Equal(t, 1, store.Sweep(time.Hour))
	assert.False(t, store.Get("old", "c1").Joined)
	assert.True(t, store.Get("fresh", "c1").Joined)
	assert.Len(t, store.List("fresh"), 1)
}
