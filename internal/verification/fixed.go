package verification

import (
	"context"
	"fmt"
	"time"

	"ecoroot/internal/model"

	"go.uber.org/zap"
)

const (
	DefaultUnderProcessAfter = 2500 * time.Millisecond
	DefaultApproveAfter      = 5 * time.Second
)

// FixedDelay approves every submission after a fixed two-phase delay.
type FixedDelay struct {
	store        *recordStore
	sched        Timer
	underProcess time.Duration
	approve      time.Duration
	now          func() time.Time
	log          *zap.Logger
}

func NewFixedDelay(sched Timer, underProcess, approve time.Duration, log *zap.Logger) *FixedDelay {
	if underProcess <= 0 {
		underProcess = DefaultUnderProcessAfter
	}
	if approve <= 0 {
		approve = DefaultApproveAfter
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FixedDelay{
		store:        newRecordStore(),
		sched:        sched,
		underProcess: underProcess,
		approve:      approve,
		now:          time.Now,
		log:          log,
	}
}

func (f *FixedDelay) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	id := f.store.add(model.VerificationRecord{
		ChallengeID: req.ChallengeID,
		UserID:      req.UserID,
		ProofType:   req.ProofType,
		ProofHandle: req.ProofHandle,
		SubmittedAt: f.now().UTC(),
		Status:      model.VerificationPending,
		Message:     MessageSubmitted,
	})

	tag := recordTag(id)
	if err := f.sched.After("verification phase "+id, f.underProcess, func() {
		f.store.setMessage(id, MessagePending)
	}, tag); err != nil {
		f.store.remove(id)
		return "", err
	}
	if err := f.sched.After("verification "+id, f.approve, func() {
		if f.store.resolve(id, model.VerificationVerified, MessageApproved, nil, f.now().UTC()) {
			f.log.Info("verification approved", zap.String("verification_id", id))
		}
	}, tag); err != nil {
		f.sched.Cancel(tag)
		f.store.remove(id)
		return "", err
	}

	return id, nil
}

func (f *FixedDelay) Status(ctx context.Context, id string) (model.VerificationRecord, error) {
	rec, ok := f.store.get(id)
	if !ok {
		return model.VerificationRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, nil
}

func (f *FixedDelay) History(ctx context.Context, userID string) ([]model.VerificationRecord, error) {
	return f.store.history(userID), nil
}
