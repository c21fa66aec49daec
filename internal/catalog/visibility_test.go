package catalog

import (
	"testing"
	"time"

	"ecoroot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	duringDiwali := time.Date(2026, 11, 9, 10, 0, 0, 0, time.UTC)
	beforeDiwali := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)

	regular, _ := c.Challenge("c1")
	festival, _ := c.Challenge("f1")
	teacher, _ := c.Challenge("t1")

	tests := []struct {
		name      string
		challenge model.Challenge
		role      model.Role
		now       time.Time
		visible   bool
		joinable  bool
		reason    error
	}{
		{"regular for student", regular, model.RoleStudent, beforeDiwali, true, true, nil},
		{"regular for teacher", regular, model.RoleTeacher, beforeDiwali, false, false, ErrRoleNotPermitted},
		{"active festival for student", festival, model.RoleStudent, duringDiwali, true, true, nil},
		{"inactive festival for student", festival, model.RoleStudent, beforeDiwali, true, false, ErrFestivalInactive},
		{"festival for teacher", festival, model.RoleTeacher, duringDiwali, false, false, ErrRoleNotPermitted},
		{"teacher-led for teacher", teacher, model.RoleTeacher, beforeDiwali, true, true, nil},
		{"teacher-led for student", teacher, model.RoleStudent, beforeDiwali, false, false, ErrRoleNotPermitted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Evaluate(tt.challenge, tt.role, tt.now)
			assert.Equal(t, tt.visible, e.Visible)
			assert.Equal(t, tt.joinable, e.Joinable)
			if tt.reason != nil {
				assert.ErrorIs(t, e.Reason, tt.reason)
				assert.ErrorIs(t, CheckJoin(tt.challenge, tt.role, tt.now), tt.reason)
			} else {
				assert.NoError(t, e.Reason)
				assert.NoError(t, CheckJoin(tt.challenge, tt.role, tt.now))
			}
		})
	}
}

func TestEvaluate_UnknownKind(t *testing.T) {
	e := Evaluate(model.Challenge{ID: "x", Kind: "mystery"}, model.RoleStudent, time.Now())
	assert.False(t, e.Visible)
	assert.ErrorIs(t, e.Reason, ErrUnknownKind)
}

func TestList(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	t.Run("student sees regular then festival", func(t *testing.T) {
		list := c.List(model.RoleStudent, now, Filter{})
		require.Len(t, list, 12)

		seenFestival := false
		for _, l := range list {
			assert.NotEqual(t, model.KindTeacher, l.Challenge.Kind)
			if l.Challenge.Kind == model.KindFestival {
				seenFestival = true
				continue
			}
			assert.False(t, seenFestival, "regular challenge %s listed after a festival", l.Challenge.ID)
		}
	})

	t.Run("navratri is active on 2026-10-16", func(t *testing.T) {
		list := c.List(model.RoleStudent, now, Filter{Category: "Festival"})
		for _, l := range list {
			if l.Challenge.ID == "f5" {
				assert.True(t, l.Active)
				assert.True(t, l.Joinable)
			}
			if l.Challenge.ID == "f1" {
				assert.False(t, l.Active)
				assert.False(t, l.Joinable)
			}
		}
	})

	t.Run("teacher sees only teacher-led", func(t *testing.T) {
		list := c.List(model.RoleTeacher, now, Filter{})
		require.Len(t, list, 3)
		for _, l := range list {
			assert.Equal(t, model.KindTeacher, l.Challenge.Kind)
		}
	})

	t.Run("sort by points within groups", func(t *testing.T) {
		list := c.List(model.RoleStudent, now, Filter{SortByPoints: true})
		for i := 1; i < len(list); i++ {
			prev, cur := list[i-1].Challenge, list[i].Challenge
			if prev.Kind == cur.Kind {
				assert.GreaterOrEqual(t, prev.Points, cur.Points)
			}
		}
		assert.Equal(t, "c1", list[0].Challenge.ID)
	})

	t.Run("difficulty and search", func(t *testing.T) {
		list := c.List(model.RoleStudent, now, Filter{Difficulty: model.DifficultyHard, Search: "clean"})
		require.Len(t, list, 2)
		assert.Equal(t, "c4", list[0].Challenge.ID)
		assert.Equal(t, "f2", list[1].Challenge.ID)
	})
}
