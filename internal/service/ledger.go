package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecoroot/internal/model"
	"ecoroot/internal/repository"

	"go.uber.org/zap"
)

var errAlreadyCredited = errors.New("verification already credited")

type LedgerService struct {
	accounts *UserService
	repo     UserRepository
	mirror   BalanceMirror
	catalog  ChallengeCatalog
	now      func() time.Time
	log      *zap.Logger
}

func NewLedgerService(accounts *UserService, repo UserRepository, mirror BalanceMirror, c ChallengeCatalog, now func() time.Time, log *zap.Logger) *LedgerService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LedgerService{
		accounts: accounts,
		repo:     repo,
		mirror:   mirror,
		catalog:  c,
		now:      now,
		log:      log,
	}
}

func (s *LedgerService) Rewards() []model.Reward {
	return s.catalog.Rewards()
}

// AwardPoints credits the challenge points for a verified submission and
// returns the amount credited. A verification id is credited at most once.
func (s *LedgerService) AwardPoints(ctx context.Context, actor model.Actor, challengeID, verificationID, proofHandle string) (int, error) {
	ch, ok := s.catalog.Challenge(challengeID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrChallengeNotFound, challengeID)
	}

	_, err := s.update(ctx, actor, func(u *model.User) error {
		if u.HasCredited(verificationID) {
			return errAlreadyCredited
		}
		u.EcoPoints += ch.Points
		u.Score += ch.Points
		u.CompletedChallenges = append(u.CompletedChallenges, model.CompletedChallenge{
			ChallengeID:    ch.ID,
			VerificationID: verificationID,
			ProofHandle:    proofHandle,
			Points:         ch.Points,
			CompletedAt:    s.now().UTC(),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, errAlreadyCredited) {
			return 0, nil
		}
		return 0, err
	}

	s.log.Info("eco-points awarded",
		zap.String("user_id", actor.ID),
		zap.String("challenge_id", ch.ID),
		zap.String("verification_id", verificationID),
		zap.Int("points", ch.Points))

	return ch.Points, nil
}

// ClaimCertificate unlocks the next tier. The whole balance is consumed
// whatever the tier cost; the score is left alone.
func (s *LedgerService) ClaimCertificate(ctx context.Context, actor model.Actor, tier model.CertificateTier) (*model.User, error) {
	idx := tier.Index()
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTier, tier)
	}

	return s.update(ctx, actor, func(u *model.User) error {
		if len(u.Certificates) >= len(model.CertificateTiers) {
			return ErrMaxTiersReached
		}
		if u.HasCertificate(tier) {
			return ErrAlreadyClaimed
		}
		if idx > 0 && !u.HasCertificate(model.CertificateTiers[idx-1]) {
			return ErrOutOfOrder
		}
		if u.EcoPoints < tier.Cost() {
			return ErrInsufficientPoints
		}

		u.Certificates = append(u.Certificates, model.Certificate{
			Tier:      tier,
			ClaimedAt: s.now().UTC(),
			Cost:      tier.Cost(),
		})
		u.EcoPoints = 0
		return nil
	})
}

// RedeemReward spends cost points on an NGO reward. A zero cost uses the
// catalog price.
func (s *LedgerService) RedeemReward(ctx context.Context, actor model.Actor, rewardID string, cost int) (*model.User, error) {
	reward, ok := s.catalog.Reward(rewardID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRewardNotFound, rewardID)
	}
	if cost <= 0 {
		cost = reward.Cost
	}
	if cost < reward.Cost {
		return nil, fmt.Errorf("%w: %d < %d", ErrCostBelowPrice, cost, reward.Cost)
	}

	return s.update(ctx, actor, func(u *model.User) error {
		if u.EcoPoints < cost {
			return ErrInsufficientPoints
		}
		if u.HasClaimedReward(reward.ID) {
			return ErrAlreadyClaimed
		}

		u.EcoPoints -= cost
		u.ClaimedRewards = append(u.ClaimedRewards, model.ClaimedReward{
			RewardID:  reward.ID,
			ClaimedAt: s.now().UTC(),
			Cost:      cost,
		})
		return nil
	})
}

// update applies fn to the persisted account and mirrors the new balance.
func (s *LedgerService) update(ctx context.Context, actor model.Actor, fn func(u *model.User) error) (*model.User, error) {
	if _, err := s.accounts.Account(ctx, actor); err != nil {
		return nil, err
	}

	user, err := s.repo.UpdateUser(ctx, actor.ID, func(u *model.User) error {
		if err := fn(u); err != nil {
			return err
		}
		u.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.mirror.MirrorBalance(ctx, user.ID, user.EcoPoints); err != nil {
		s.log.Warn("failed to mirror legacy balance",
			zap.String("user_id", user.ID),
			zap.Error(err))
	}

	return user, nil
}
