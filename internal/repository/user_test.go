package repository

import (
	"testing"
	"time"

	"ecoroot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserValues_EmptyListsStoredAsArrays(t *testing.T) {
	values, err := userValues(&model.User{ID: "u1", Role: model.RoleStudent})
	require.NoError(t, err)

	assert.Equal(t, []byte("[]"), values["certificates"])
	assert.Equal(t, []byte("[]"), values["claimed_rewards"])
	assert.Equal(t, []byte("[]"), values["completed_challenges"])
	assert.Equal(t, "student", values["role"])
}

func TestUser_ToModel(t *testing.T) {
	claimed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	row := User{
		ID:                  "u1",
		Role:                "teacher",
		EcoPoints:           500,
		Certificates:        []byte(`[{"type":"basic","claimedAt":"2026-03-01T12:00:00Z","cost":1000}]`),
		ClaimedRewards:      nil,
		CompletedChallenges: []byte(`[]`),
	}

	u, err := row.toModel()
	require.NoError(t, err)
	assert.Equal(t, model.RoleTeacher, u.Role)
	require.Len(t, u.Certificates, 1)
	assert.Equal(t, model.CertificateBasic, u.Certificates[0].Tier)
	assert.True(t, claimed.Equal(u.Certificates[0].ClaimedAt))
	assert.Empty(t, u.ClaimedRewards)

	row.Certificates = []byte(`{broken`)
	_, err = row.toModel()
	assert.Error(t, err)
}

func TestLegacyBalanceKey(t *testing.T) {
	assert.Equal(t, "ecoroot.mockApi.credits:u1", legacyBalanceKey("u1"))
}

func TestMigrationNames(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"001_eco_users.sql"}, names)
}
