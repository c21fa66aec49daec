package verification

import (
	"context"
	"fmt"
	"time"

	"ecoroot/internal/model"

	"go.uber.org/zap"
)

const (
	DefaultMinDelay = 2 * time.Second
	DefaultMaxDelay = 5 * time.Second
)

// Failure thresholds: a check passes when the roll is above its threshold.
const (
	uniquenessThreshold = 0.15
	qualityThreshold    = 0.10
	liveThreshold       = 0.20
	faceThreshold       = 0.20
	timestampThreshold  = 0.10
	defaultContentMatch = 0.10
)

// contentMatchThresholds is stricter for challenges whose proof is easier to fake.
var contentMatchThresholds = map[string]float64{
	"c1": 0.15,
	"c2": 0.25,
	"c3": 0.25,
	"c4": 0.20,
	"c5": 0.20,
	"c6": 0.20,
	"f1": 0.20,
	"f2": 0.25,
	"f3": 0.20,
	"f4": 0.25,
	"f5": 0.20,
	"f6": 0.15,
	"t1": 0.15,
	"t2": 0.20,
	"t3": 0.18,
}

// Simulator resolves each submission after a random delay using six
// independent randomized checks. It performs no real image analysis.
type Simulator struct {
	store    *recordStore
	sched    Timer
	roll     Roller
	minDelay time.Duration
	maxDelay time.Duration
	now      func() time.Time
	log      *zap.Logger
}

type Option func(*Simulator)

func WithRoller(r Roller) Option {
	return func(s *Simulator) { s.roll = r }
}

func WithDelay(min, max time.Duration) Option {
	return func(s *Simulator) {
		s.minDelay = min
		s.maxDelay = max
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Simulator) { s.log = log }
}

func NewSimulator(sched Timer, opts ...Option) *Simulator {
	s := &Simulator{
		store:    newRecordStore(),
		sched:    sched,
		roll:     NewRoller(0),
		minDelay: DefaultMinDelay,
		maxDelay: DefaultMaxDelay,
		now:      time.Now,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxDelay < s.minDelay {
		s.maxDelay = s.minDelay
	}
	return s
}

func (s *Simulator) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	id := s.store.add(model.VerificationRecord{
		ChallengeID: req.ChallengeID,
		UserID:      req.UserID,
		ProofType:   req.ProofType,
		ProofHandle: req.ProofHandle,
		SubmittedAt: s.now().UTC(),
		Status:      model.VerificationPending,
		Message:     MessagePending,
	})

	delay := s.minDelay + time.Duration(s.roll.Float64()*float64(s.maxDelay-s.minDelay))
	err := s.sched.After("verification "+id, delay, func() { s.resolve(id) }, recordTag(id))
	if err != nil {
		s.store.remove(id)
		return "", err
	}

	s.log.Info("proof submitted for verification",
		zap.String("verification_id", id),
		zap.String("challenge_id", req.ChallengeID),
		zap.Duration("delay", delay))

	return id, nil
}

func (s *Simulator) Status(ctx context.Context, id string) (model.VerificationRecord, error) {
	rec, ok := s.store.get(id)
	if !ok {
		return model.VerificationRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, nil
}

func (s *Simulator) History(ctx context.Context, userID string) ([]model.VerificationRecord, error) {
	return s.store.history(userID), nil
}

func (s *Simulator) resolve(id string) {
	rec, ok := s.store.get(id)
	if !ok {
		return
	}

	checks := s.evaluate(rec.ChallengeID)
	status, message := model.VerificationVerified, MessageVerified
	for _, c := range checks {
		if !c.Passed {
			status, message = model.VerificationRejected, MessageRejected
			break
		}
	}

	if s.store.resolve(id, status, message, checks, s.now().UTC()) {
		s.log.Info("verification resolved",
			zap.String("verification_id", id),
			zap.String("status", string(status)))
	}
}

// evaluate rolls all six checks, never short-circuiting.
func (s *Simulator) evaluate(challengeID string) []model.VerificationCheck {
	content, ok := contentMatchThresholds[challengeID]
	if !ok {
		content = defaultContentMatch
	}

	pass := func(threshold float64) bool {
		return s.roll.Float64() > threshold
	}

	return []model.VerificationCheck{
		{Name: "unique", Passed: pass(uniquenessThreshold)},
		{Name: "quality", Passed: pass(qualityThreshold)},
		{Name: "captured_live", Passed: pass(liveThreshold)},
		{Name: "content_match", Passed: pass(content)},
		{Name: "face_visible", Passed: pass(faceThreshold)},
		{Name: "timestamp", Passed: pass(timestampThreshold)},
	}
}

func recordTag(id string) string {
	return "verification:" + id
}
