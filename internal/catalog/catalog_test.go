package catalog

import (
	"testing"
	"time"

	"ecoroot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Len(t, c.Challenges(), 15)
	assert.Len(t, c.Rewards(), 4)

	c1, ok := c.Challenge("c1")
	require.True(t, ok)
	assert.Equal(t, model.KindRegular, c1.Kind)
	assert.Equal(t, 3, c1.DurationDays)
	assert.Equal(t, 60, c1.Points)

	f1, ok := c.Challenge("f1")
	require.True(t, ok)
	assert.Equal(t, model.KindFestival, f1.Kind)
	require.NotNil(t, f1.Festival)
	assert.Equal(t, "Diwali", f1.Festival.Name)

	t1, ok := c.Challenge("t1")
	require.True(t, ok)
	assert.Equal(t, model.KindTeacher, t1.Kind)
	require.NotNil(t, t1.Teacher)
	assert.Equal(t, 50, t1.Teacher.MaxStudents)

	_, ok = c.Challenge("missing")
	assert.False(t, ok)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "zero duration",
			doc: `
challenges:
  - id: x
    difficulty: easy
    proofType: camera
    points: 10
    durationDays: 0
`,
		},
		{
			name: "unknown difficulty",
			doc: `
challenges:
  - id: x
    difficulty: extreme
    proofType: camera
    durationDays: 1
`,
		},
		{
			name: "unknown proof type",
			doc: `
challenges:
  - id: x
    difficulty: easy
    proofType: video
    durationDays: 1
`,
		},
		{
			name: "festival ends before start",
			doc: `
challenges:
  - id: x
    difficulty: easy
    proofType: camera
    durationDays: 1
    festival:
      startDate: "2026-05-10"
      endDate: "2026-05-01"
`,
		},
		{
			name: "festival and teacher",
			doc: `
challenges:
  - id: x
    difficulty: easy
    proofType: camera
    durationDays: 1
    festival:
      startDate: "2026-05-01"
      endDate: "2026-05-10"
    teacher:
      maxStudents: 5
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidChallenge)
		})
	}
}

func TestLoad_DuplicateID(t *testing.T) {
	doc := `
challenges:
  - id: x
    difficulty: easy
    proofType: camera
    durationDays: 1
  - id: x
    difficulty: hard
    proofType: upload
    durationDays: 2
`
	_, err := Load([]byte(doc))
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestFestivalWindow_IsActive(t *testing.T) {
	w := model.FestivalWindow{
		StartDate: time.Date(2026, 11, 8, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 11, 12, 0, 0, 0, 0, time.UTC),
	}

	assert.False(t, w.IsActive(time.Date(2026, 11, 7, 23, 59, 0, 0, time.UTC)))
	assert.True(t, w.IsActive(time.Date(2026, 11, 8, 0, 0, 0, 0, time.UTC)))
	assert.True(t, w.IsActive(time.Date(2026, 11, 12, 22, 0, 0, 0, time.UTC)))
	assert.False(t, w.IsActive(time.Date(2026, 11, 13, 0, 0, 0, 0, time.UTC)))
}

func TestCategories(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Environment", "Sustainability", "Energy", "Community",
		"Waste Management", "Water", "Festival", "Campus",
	}, c.Categories())
}
