package service

import (
	"context"
	"errors"
	"testing"

	"ecoroot/internal/catalog"
	"ecoroot/internal/model"
	"ecoroot/internal/repository"
	"ecoroot/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setPoints(t *testing.T, repo *repository.MemoryRepository, id string, points int) {
	t.Helper()
	_, err := repo.UpdateUser(context.Background(), id, func(u *model.User) error {
		u.EcoPoints = points
		return nil
	})
	require.NoError(t, err)
}

func TestLedgerService_ClaimCertificate(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	require.NoError(t, s.repo.CreateUser(ctx, &model.User{ID: student.ID, Role: model.RoleStudent, EcoPoints: 5000, Score: 7000}))

	_, err := s.ledger.ClaimCertificate(ctx, student, model.CertificateAdvanced)
	assert.ErrorIs(t, err, ErrOutOfOrder)

	_, err = s.ledger.ClaimCertificate(ctx, student, model.CertificateTier("platinum"))
	assert.ErrorIs(t, err, ErrUnknownTier)

	user, err := s.ledger.ClaimCertificate(ctx, student, model.CertificateBasic)
	require.NoError(t, err)
	assert.Equal(t, 0, user.EcoPoints, "claim consumes the whole balance")
	assert.Equal(t, 7000, user.Score)
	require.Len(t, user.Certificates, 1)
	assert.Equal(t, 1000, user.Certificates[0].Cost)

	_, err = s.ledger.ClaimCertificate(ctx, student, model.CertificateBasic)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	_, err = s.ledger.ClaimCertificate(ctx, student, model.CertificateAdvanced)
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	setPoints(t, s.repo, student.ID, 2500)
	user, err = s.ledger.ClaimCertificate(ctx, student, model.CertificateAdvanced)
	require.NoError(t, err)
	assert.Equal(t, 0, user.EcoPoints)

	setPoints(t, s.repo, student.ID, 3000)
	user, err = s.ledger.ClaimCertificate(ctx, student, model.CertificateExpert)
	require.NoError(t, err)
	assert.Len(t, user.Certificates, 3)

	setPoints(t, s.repo, student.ID, 9000)
	_, err = s.ledger.ClaimCertificate(ctx, student, model.CertificateBasic)
	assert.ErrorIs(t, err, ErrMaxTiersReached)

	stored, err := s.repo.GetUser(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 9000, stored.EcoPoints, "failed claim leaves the balance alone")
	assert.Equal(t, 7000, stored.Score)
}

func TestLedgerService_RedeemReward(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	require.NoError(t, s.repo.CreateUser(ctx, &model.User{ID: student.ID, Role: model.RoleStudent, EcoPoints: 500, Score: 800}))

	_, err := s.ledger.RedeemReward(ctx, student, "ngo-unknown", 10)
	assert.ErrorIs(t, err, ErrRewardNotFound)

	user, err := s.ledger.RedeemReward(ctx, student, "ngo-tree", 200)
	require.NoError(t, err)
	assert.Equal(t, 300, user.EcoPoints)
	assert.Equal(t, 800, user.Score)

	_, err = s.ledger.RedeemReward(ctx, student, "ngo-tree", 200)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	_, err = s.ledger.RedeemReward(ctx, student, "ngo-kit", 1)
	assert.ErrorIs(t, err, ErrCostBelowPrice)

	_, err = s.ledger.RedeemReward(ctx, student, "ngo-river", 0)
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	stored, err := s.repo.GetUser(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 300, stored.EcoPoints)
	assert.Len(t, stored.ClaimedRewards, 1)
}

func TestLedgerService_AwardPointsOnce(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	awarded, err := s.ledger.AwardPoints(ctx, student, "c1", "u1_c1_1", "blob:1")
	require.NoError(t, err)
	assert.Equal(t, 60, awarded)

	awarded, err = s.ledger.AwardPoints(ctx, student, "c1", "u1_c1_1", "blob:1")
	require.NoError(t, err)
	assert.Zero(t, awarded)

	awarded, err = s.ledger.AwardPoints(ctx, student, "c1", "u1_c1_2", "blob:2")
	require.NoError(t, err)
	assert.Equal(t, 60, awarded)

	user, err := s.users.Account(ctx, student)
	require.NoError(t, err)
	assert.Equal(t, DefaultStudentPoints+120, user.EcoPoints)
	assert.Equal(t, 120, user.Score)

	_, err = s.ledger.AwardPoints(ctx, student, "zz", "u1_zz_1", "")
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestLedgerService_MirrorsBalance(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	repo := repository.NewMemoryRepository()
	mirror := &mocks.MockBalanceMirror{}
	users := NewUserService(repo, mirror, nil, nil)
	ledger := NewLedgerService(users, repo, mirror, cat, nil, nil)

	ctx := context.Background()
	require.NoError(t, repo.CreateUser(ctx, &model.User{ID: student.ID, Role: model.RoleStudent, EcoPoints: 400}))

	mirror.On("MirrorBalance", mock.Anything, student.ID, 250).Return(nil).Once()
	user, err := ledger.RedeemReward(ctx, student, "ngo-meal", 150)
	require.NoError(t, err)
	assert.Equal(t, 250, user.EcoPoints)

	mirror.On("MirrorBalance", mock.Anything, student.ID, 310).Return(errors.New("redis down")).Once()
	awarded, err := ledger.AwardPoints(ctx, student, "c1", "u1_c1_9", "")
	require.NoError(t, err, "mirror failures do not fail the mutation")
	assert.Equal(t, 60, awarded)

	mirror.AssertExpectations(t)
}
