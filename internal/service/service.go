package service

import (
	"context"
	"time"

	"ecoroot/internal/catalog"
	"ecoroot/internal/model"
)

type Service struct {
	*UserService
	*ProgressService
	*VerificationService
	*LedgerService
}

func NewService(
	userService *UserService,
	progressService *ProgressService,
	verificationService *VerificationService,
	ledgerService *LedgerService,
) *Service {
	return &Service{
		UserService:         userService,
		ProgressService:     progressService,
		VerificationService: verificationService,
		LedgerService:       ledgerService,
	}
}

type UserServiceI interface {
	Account(ctx context.Context, actor model.Actor) (*model.User, error)
	GetLeaderboard(ctx context.Context, roles []model.Role) ([]*model.User, error)
}

type UserRepository interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	// UpdateUser applies fn to the stored account atomically. Nothing is
	// written when fn returns an error.
	UpdateUser(ctx context.Context, id string, fn func(user *model.User) error) (*model.User, error)
	GetTopUsers(ctx context.Context, limit int, roles []model.Role) ([]*model.User, error)
}

// BalanceMirror keeps the single-number balance older clients still read.
type BalanceMirror interface {
	MirrorBalance(ctx context.Context, userID string, balance int) error
	LegacyBalance(ctx context.Context, userID string) (int, bool, error)
}

type ChallengeCatalog interface {
	Challenge(id string) (model.Challenge, bool)
	Reward(id string) (model.Reward, bool)
	Rewards() []model.Reward
	Categories() []string
	List(role model.Role, now time.Time, f catalog.Filter) []catalog.Listing
}

type ProgressServiceI interface {
	ListChallenges(actor model.Actor, f catalog.Filter) []catalog.Listing
	Categories() []string
	Join(ctx context.Context, actor model.Actor, challengeID string) (*model.UserProgress, error)
	SubmitDailyProof(ctx context.Context, actor model.Actor, challengeID, proofHandle string) (*model.UserProgress, error)
	MarkDayComplete(ctx context.Context, actor model.Actor, challengeID string) (*MarkResult, error)
	UploadProof(ctx context.Context, actor model.Actor, challengeID, proofHandle string) (*CompletionResult, error)
	Progress(ctx context.Context, actor model.Actor, challengeID string) (*model.UserProgress, error)
}

type VerificationServiceI interface {
	CompleteChallenge(ctx context.Context, actor model.Actor, challengeID, proofHandle string, proofType model.ProofType) (*CompletionResult, error)
	CheckStatus(ctx context.Context, actor model.Actor, verificationID string) (*StatusResult, error)
	Watch(actor model.Actor, verificationID, owner string) error
	CancelView(owner string)
	History(ctx context.Context, actor model.Actor) ([]model.VerificationRecord, error)
}

type LedgerServiceI interface {
	AwardPoints(ctx context.Context, actor model.Actor, challengeID, verificationID, proofHandle string) (int, error)
	ClaimCertificate(ctx context.Context, actor model.Actor, tier model.CertificateTier) (*model.User, error)
	RedeemReward(ctx context.Context, actor model.Actor, rewardID string, cost int) (*model.User, error)
	Rewards() []model.Reward
}

// JobScheduler runs recurring jobs that can be cancelled by tag.
type JobScheduler interface {
	Every(name string, interval time.Duration, fn func(), tags ...string) error
	Cancel(tag string)
}
