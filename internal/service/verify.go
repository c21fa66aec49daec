package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecoroot/internal/model"
	"ecoroot/internal/verification"

	"go.uber.org/zap"
)

const DefaultPollInterval = 3 * time.Second

var errNoChange = errors.New("no change")

type StatusResult struct {
	VerificationID string
	ChallengeID    string
	Status         model.VerificationStatus
	Verified       bool
	Message        string
	// CreditsAwarded is the number of points credited by this call. Polling
	// an already credited verification yields zero.
	CreditsAwarded int
}

// Err returns ErrVerificationRejected for rejected verifications.
func (r *StatusResult) Err() error {
	if r.Status == model.VerificationRejected {
		return ErrVerificationRejected
	}
	return nil
}

type VerificationService struct {
	progress     *ProgressService
	ledger       LedgerServiceI
	backend      verification.Backend
	sched        JobScheduler
	pollInterval time.Duration
	log          *zap.Logger
}

func NewVerificationService(
	progress *ProgressService,
	ledger LedgerServiceI,
	backend verification.Backend,
	sched JobScheduler,
	pollInterval time.Duration,
	log *zap.Logger,
) *VerificationService {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &VerificationService{
		progress:     progress,
		ledger:       ledger,
		backend:      backend,
		sched:        sched,
		pollInterval: pollInterval,
		log:          log,
	}
}

// CompleteChallenge submits proof for a finished challenge. It also serves
// resubmission after a rejection, which creates a new verification id.
func (s *VerificationService) CompleteChallenge(
	ctx context.Context,
	actor model.Actor,
	challengeID, proofHandle string,
	proofType model.ProofType,
) (*CompletionResult, error) {
	ch, err := s.progress.challenge(challengeID)
	if err != nil {
		return nil, err
	}
	if proofType != "" && proofType != ch.ProofType {
		return nil, ErrWrongProofType
	}
	if ch.ProofType == model.ProofUpload {
		return s.progress.UploadProof(ctx, actor, ch.ID, proofHandle)
	}

	var res *CompletionResult
	_, err = s.progress.store.Update(actor.ID, ch.ID, func(p *model.UserProgress) error {
		if !p.Joined {
			return ErrNotJoined
		}
		if !p.Completed {
			return ErrNotCompleted
		}
		if err := checkResubmit(p); err != nil {
			return err
		}

		handle := proofHandle
		if handle == "" {
			handle = p.DailyProofs[ch.DurationDays].ProofHandle
		}
		if handle == "" {
			return &ProofMissingError{Day: ch.DurationDays}
		}

		res, err = s.progress.submit(ctx, actor, ch, p, handle)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// CheckStatus reports the verification state. The first observation of a
// verified result credits the challenge points; later polls credit nothing.
func (s *VerificationService) CheckStatus(ctx context.Context, actor model.Actor, verificationID string) (*StatusResult, error) {
	rec, err := s.backend.Status(ctx, verificationID)
	if err != nil {
		if errors.Is(err, verification.ErrNotFound) {
			return nil, ErrVerificationNotFound
		}
		return nil, fmt.Errorf("failed to get verification status: %w", err)
	}
	if rec.UserID != actor.ID {
		return nil, ErrVerificationNotFound
	}

	res := &StatusResult{
		VerificationID: rec.ID,
		ChallengeID:    rec.ChallengeID,
		Status:         rec.Status,
		Verified:       rec.Status == model.VerificationVerified,
		Message:        rec.Message,
	}
	if !rec.Status.IsTerminal() {
		return res, nil
	}

	p, _ := s.progress.store.Update(actor.ID, rec.ChallengeID, func(p *model.UserProgress) error {
		if p.VerificationID != rec.ID || p.VerificationStatus == rec.Status {
			return errNoChange
		}
		p.VerificationStatus = rec.Status
		return nil
	})

	if !res.Verified || p.IsCredited(rec.ID) {
		return res, nil
	}

	awarded, err := s.ledger.AwardPoints(ctx, actor, rec.ChallengeID, rec.ID, rec.ProofHandle)
	if err != nil {
		return nil, fmt.Errorf("failed to award points: %w", err)
	}
	res.CreditsAwarded = awarded

	_, _ = s.progress.store.Update(actor.ID, rec.ChallengeID, func(p *model.UserProgress) error {
		if p.CreditedVerifications == nil {
			p.CreditedVerifications = make(map[string]struct{})
		}
		p.CreditedVerifications[rec.ID] = struct{}{}
		return nil
	})

	return res, nil
}

// Watch polls a verification on behalf of a view until it is terminal.
// Cancelling the owner stops the poll; the verification itself still resolves.
func (s *VerificationService) Watch(actor model.Actor, verificationID, owner string) error {
	tag := watchTag(verificationID)
	s.sched.Cancel(tag)

	tags := []string{tag}
	if owner != "" {
		tags = append(tags, owner)
	}

	return s.sched.Every("watch "+verificationID, s.pollInterval, func() {
		res, err := s.CheckStatus(context.Background(), actor, verificationID)
		if err != nil {
			s.log.Warn("failed to poll verification",
				zap.String("verification_id", verificationID),
				zap.Error(err))
			if errors.Is(err, ErrVerificationNotFound) {
				go s.sched.Cancel(tag)
			}
			return
		}
		if res.Status.IsTerminal() {
			go s.sched.Cancel(tag)
		}
	}, tags...)
}

func (s *VerificationService) CancelView(owner string) {
	s.sched.Cancel(owner)
}

func (s *VerificationService) History(ctx context.Context, actor model.Actor) ([]model.VerificationRecord, error) {
	records, err := s.backend.History(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get verification history: %w", err)
	}
	return records, nil
}

func watchTag(verificationID string) string {
	return "watch:" + verificationID
}
