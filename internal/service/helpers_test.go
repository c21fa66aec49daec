package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"ecoroot/internal/catalog"
	"ecoroot/internal/model"
	"ecoroot/internal/repository"
	"ecoroot/internal/verification"

	"github.com/stretchr/testify/require"
)

var (
	student = model.Actor{ID: "u1", Name: "Asha", Role: model.RoleStudent}
	teacher = model.Actor{ID: "t1", Name: "Ms. Rao", Role: model.RoleTeacher}
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeBackend resolves only when the test says so.
type fakeBackend struct {
	mu      sync.Mutex
	records map[string]*model.VerificationRecord
	order   []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{records: make(map[string]*model.VerificationRecord)}
}

func (b *fakeBackend) Submit(ctx context.Context, req verification.SubmitRequest) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := fmt.Sprintf("%s_%s_%d", req.UserID, req.ChallengeID, len(b.order)+1)
	b.records[id] = &model.VerificationRecord{
		ID:          id,
		ChallengeID: req.ChallengeID,
		UserID:      req.UserID,
		ProofType:   req.ProofType,
		ProofHandle: req.ProofHandle,
		Status:      model.VerificationPending,
		Message:     verification.MessagePending,
	}
	b.order = append(b.order, id)
	return id, nil
}

func (b *fakeBackend) Status(ctx context.Context, id string) (model.VerificationRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.records[id]
	if !ok {
		return model.VerificationRecord{}, verification.ErrNotFound
	}
	return *rec, nil
}

func (b *fakeBackend) History(ctx context.Context, userID string) ([]model.VerificationRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []model.VerificationRecord
	for _, id := range b.order {
		if rec := b.records[id]; rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (b *fakeBackend) resolve(id string, status model.VerificationStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec := b.records[id]
	rec.Status = status
	rec.Message = verification.MessageVerified
	if status == model.VerificationRejected {
		rec.Message = verification.MessageRejected
	}
}

func (b *fakeBackend) submissions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.order)
}

type fakeJob struct {
	fn   func()
	tags []string
}

// fakeScheduler runs jobs only when the test calls runAll.
type fakeScheduler struct {
	mu   sync.Mutex
	jobs map[string]fakeJob
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{jobs: make(map[string]fakeJob)}
}

func (s *fakeScheduler) Every(name string, interval time.Duration, fn func(), tags ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[name] = fakeJob{fn: fn, tags: tags}
	return nil
}

func (s *fakeScheduler) Cancel(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, job := range s.jobs {
		for _, t := range job.tags {
			if t == tag {
				delete(s.jobs, name)
				break
			}
		}
	}
}

func (s *fakeScheduler) pending(tag string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, job := range s.jobs {
		for _, t := range job.tags {
			if t == tag {
				n++
				break
			}
		}
	}
	return n
}

func (s *fakeScheduler) runAll() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.jobs))
	for _, job := range s.jobs {
		fns = append(fns, job.fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

type testServices struct {
	clock        *testClock
	backend      *fakeBackend
	sched        *fakeScheduler
	repo         *repository.MemoryRepository
	users        *UserService
	progress     *ProgressService
	ledger       *LedgerService
	verification *VerificationService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	cat, err := catalog.Default()
	require.NoError(t, err)

	clock := newTestClock()
	backend := newFakeBackend()
	sched := newFakeScheduler()
	repo := repository.NewMemoryRepository()

	users := NewUserService(repo, repository.NoopMirror{}, clock.Now, nil)
	ledger := NewLedgerService(users, repo, repository.NoopMirror{}, cat, clock.Now, nil)
	progress := NewProgressService(cat, NewProgressStore(clock.Now), backend, clock.Now, nil)
	verify := NewVerificationService(progress, ledger, backend, sched, time.Second, nil)

	return &testServices{
		clock:        clock,
		backend:      backend,
		sched:        sched,
		repo:         repo,
		users:        users,
		progress:     progress,
		ledger:       ledger,
		verification: verify,
	}
}

// completeSingleDay joins c4 and marks its only day, which submits it for verification.
func (s *testServices) completeSingleDay(t *testing.T, actor model.Actor) string {
	t.Helper()
	ctx := context.Background()

	_, err := s.progress.Join(ctx, actor, "c4")
	require.NoError(t, err)
	_, err = s.progress.SubmitDailyProof(ctx, actor, "c4", "blob:cleanup")
	require.NoError(t, err)
	res, err := s.progress.MarkDayComplete(ctx, actor, "c4")
	require.NoError(t, err)
	require.NotNil(t, res.Verification)
	return res.Verification.VerificationID
}
