package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"ecoroot/internal/catalog"
	"ecoroot/internal/model"
	"ecoroot/internal/verification"

	"go.uber.org/zap"
)

const Cooldown = 24 * time.Hour

type MarkResult struct {
	Progress *model.UserProgress
	// Verification is set when completing the last day submitted proof for verification.
	Verification *CompletionResult
}

type CompletionResult struct {
	VerificationID string
	Status         model.VerificationStatus
	Message        string
}

type ProgressService struct {
	catalog ChallengeCatalog
	store   *ProgressStore
	backend verification.Backend
	now     func() time.Time
	log     *zap.Logger
}

func NewProgressService(c ChallengeCatalog, store *ProgressStore, backend verification.Backend, now func() time.Time, log *zap.Logger) *ProgressService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ProgressService{
		catalog: c,
		store:   store,
		backend: backend,
		now:     now,
		log:     log,
	}
}

func (s *ProgressService) ListChallenges(actor model.Actor, f catalog.Filter) []catalog.Listing {
	return s.catalog.List(actor.Role, s.now(), f)
}

func (s *ProgressService) Categories() []string {
	return s.catalog.Categories()
}

func (s *ProgressService) challenge(id string) (model.Challenge, error) {
	ch, ok := s.catalog.Challenge(id)
	if !ok {
		return model.Challenge{}, fmt.Errorf("%w: %s", ErrChallengeNotFound, id)
	}
	return ch, nil
}

func (s *ProgressService) Join(ctx context.Context, actor model.Actor, challengeID string) (*model.UserProgress, error) {
	ch, err := s.challenge(challengeID)
	if err != nil {
		return nil, err
	}

	if err := catalog.CheckJoin(ch, actor.Role, s.now()); err != nil {
		return nil, err
	}

	return s.store.Update(actor.ID, ch.ID, func(p *model.UserProgress) error {
		if p.Joined {
			return ErrAlreadyJoined
		}
		p.Joined = true
		p.ProgressDays = 0
		p.Completed = false
		p.DailyProofs = make(map[int]model.DailyProof)
		p.LastMarkTime = nil
		return nil
	})
}

// SubmitDailyProof attaches proof to the current day without advancing it.
// Submitting again replaces only the current day's proof.
func (s *ProgressService) SubmitDailyProof(ctx context.Context, actor model.Actor, challengeID, proofHandle string) (*model.UserProgress, error) {
	ch, err := s.challenge(challengeID)
	if err != nil {
		return nil, err
	}
	if ch.ProofType != model.ProofCamera {
		return nil, ErrWrongProofType
	}

	return s.store.Update(actor.ID, ch.ID, func(p *model.UserProgress) error {
		if !p.Joined {
			return ErrNotJoined
		}
		if p.Completed {
			return ErrAlreadyCompleted
		}
		if proofHandle == "" {
			return &ProofMissingError{Day: p.CurrentDay()}
		}
		if p.DailyProofs == nil {
			p.DailyProofs = make(map[int]model.DailyProof)
		}
		p.DailyProofs[p.CurrentDay()] = model.DailyProof{
			ProofHandle: proofHandle,
			SubmittedAt: s.now().UTC(),
		}
		return nil
	})
}

func (s *ProgressService) MarkDayComplete(ctx context.Context, actor model.Actor, challengeID string) (*MarkResult, error) {
	ch, err := s.challenge(challengeID)
	if err != nil {
		return nil, err
	}
	if ch.ProofType != model.ProofCamera {
		return nil, ErrWrongProofType
	}

	var submitted *CompletionResult
	p, err := s.store.Update(actor.ID, ch.ID, func(p *model.UserProgress) error {
		if !p.Joined {
			return ErrNotJoined
		}
		if p.Completed || p.ProgressDays >= ch.DurationDays {
			return ErrAlreadyCompleted
		}

		now := s.now()
		if p.LastMarkTime != nil {
			if elapsed := now.Sub(*p.LastMarkTime); elapsed < Cooldown {
				return &CooldownError{Remaining: int(math.Ceil(24 - elapsed.Hours()))}
			}
		}

		day := p.CurrentDay()
		if _, ok := p.DailyProofs[day]; !ok {
			return &ProofMissingError{Day: day}
		}

		p.ProgressDays++
		markedAt := now.UTC()
		p.LastMarkTime = &markedAt

		if p.ProgressDays == ch.DurationDays {
			p.Completed = true
			if ch.DurationDays == 1 {
				res, err := s.submit(ctx, actor, ch, p, p.DailyProofs[day].ProofHandle)
				if err != nil {
					return err
				}
				submitted = res
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &MarkResult{Progress: p, Verification: submitted}, nil
}

// UploadProof completes an upload challenge in one step and submits it for verification.
func (s *ProgressService) UploadProof(ctx context.Context, actor model.Actor, challengeID, proofHandle string) (*CompletionResult, error) {
	ch, err := s.challenge(challengeID)
	if err != nil {
		return nil, err
	}
	if ch.ProofType != model.ProofUpload {
		return nil, ErrWrongProofType
	}

	var res *CompletionResult
	_, err = s.store.Update(actor.ID, ch.ID, func(p *model.UserProgress) error {
		if !p.Joined {
			return ErrNotJoined
		}
		if err := checkResubmit(p); err != nil {
			return err
		}
		if proofHandle == "" {
			return &ProofMissingError{Day: 1}
		}

		p.ProgressDays = ch.DurationDays
		p.Completed = true
		if p.DailyProofs == nil {
			p.DailyProofs = make(map[int]model.DailyProof)
		}
		p.DailyProofs[1] = model.DailyProof{ProofHandle: proofHandle, SubmittedAt: s.now().UTC()}

		res, err = s.submit(ctx, actor, ch, p, proofHandle)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ProgressService) Progress(ctx context.Context, actor model.Actor, challengeID string) (*model.UserProgress, error) {
	ch, err := s.challenge(challengeID)
	if err != nil {
		return nil, err
	}
	return s.store.Get(actor.ID, ch.ID), nil
}

func (s *ProgressService) AllProgress(actor model.Actor) []*model.UserProgress {
	return s.store.List(actor.ID)
}

// checkResubmit allows a new submission only when none is pending or verified.
func checkResubmit(p *model.UserProgress) error {
	switch p.VerificationStatus {
	case model.VerificationPending:
		return ErrVerificationPending
	case model.VerificationVerified:
		return ErrAlreadyCompleted
	}
	return nil
}

// submit sends proof to the verification backend and records the pending id on p.
func (s *ProgressService) submit(ctx context.Context, actor model.Actor, ch model.Challenge, p *model.UserProgress, proofHandle string) (*CompletionResult, error) {
	id, err := s.backend.Submit(ctx, verification.SubmitRequest{
		ChallengeID: ch.ID,
		UserID:      actor.ID,
		ProofHandle: proofHandle,
		ProofType:   ch.ProofType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit proof for verification: %w", err)
	}

	rec, err := s.backend.Status(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get verification status: %w", err)
	}

	p.VerificationID = id
	p.VerificationStatus = rec.Status

	s.log.Info("challenge submitted for verification",
		zap.String("user_id", actor.ID),
		zap.String("challenge_id", ch.ID),
		zap.String("verification_id", id))

	return &CompletionResult{VerificationID: id, Status: rec.Status, Message: rec.Message}, nil
}
