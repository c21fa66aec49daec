package service

import (
	"sort"
	"sync"
	"time"

	"ecoroot/internal/model"
)

type session struct {
	mu       sync.Mutex
	progress map[string]*model.UserProgress
	lastSeen time.Time
}

// ProgressStore holds per-user challenge progress for the lifetime of a
// session. Updates for one user are serialized; different users never contend.
type ProgressStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

func NewProgressStore(now func() time.Time) *ProgressStore {
	if now == nil {
		now = time.Now
	}
	return &ProgressStore{
		sessions: make(map[string]*session),
		now:      now,
	}
}

func (s *ProgressStore) session(userID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{progress: make(map[string]*model.UserProgress)}
		s.sessions[userID] = sess
	}
	sess.lastSeen = s.now()
	return sess
}

// Get returns a copy of the progress, or a not-joined value when none exists.
func (s *ProgressStore) Get(userID, challengeID string) *model.UserProgress {
	sess := s.session(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if p, ok := sess.progress[challengeID]; ok {
		return p.Clone()
	}
	return &model.UserProgress{UserID: userID, ChallengeID: challengeID}
}

// List returns copies of every challenge the user has progress on.
func (s *ProgressStore) List(userID string) []*model.UserProgress {
	sess := s.session(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	out := make([]*model.UserProgress, 0, len(sess.progress))
	for _, p := range sess.progress {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChallengeID < out[j].ChallengeID })
	return out
}

// Update runs fn against a working copy and stores it only when fn succeeds.
// The returned progress is the stored state after the call either way.
func (s *ProgressStore) Update(userID, challengeID string, fn func(p *model.UserProgress) error) (*model.UserProgress, error) {
	sess := s.session(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	current, ok := sess.progress[challengeID]
	if !ok {
		current = &model.UserProgress{UserID: userID, ChallengeID: challengeID}
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return current.Clone(), err
	}

	sess.progress[challengeID] = working
	return working.Clone(), nil
}

// Sweep drops sessions not touched for longer than idle and returns how many.
func (s *ProgressStore) Sweep(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	n := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}
