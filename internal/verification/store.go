package verification

import (
	"sort"
	"sync"
	"time"

	"ecoroot/internal/model"
)

// recordStore keeps every submission. A record leaves pending exactly once.
type recordStore struct {
	mu      sync.RWMutex
	records map[string]*model.VerificationRecord
	byUser  map[string][]string
}

func newRecordStore() *recordStore {
	return &recordStore{
		records: make(map[string]*model.VerificationRecord),
		byUser:  make(map[string][]string),
	}
}

// add stores rec under a unique id derived from rec.SubmittedAt and returns it.
func (s *recordStore) add(rec model.VerificationRecord) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := rec.SubmittedAt
	id := newID(rec.UserID, rec.ChallengeID, at)
	for {
		if _, exists := s.records[id]; !exists {
			break
		}
		at = at.Add(time.Millisecond)
		id = newID(rec.UserID, rec.ChallengeID, at)
	}

	rec.ID = id
	s.records[id] = &rec
	s.byUser[rec.UserID] = append(s.byUser[rec.UserID], id)
	return id
}

// remove drops a record whose resolution could not be scheduled.
func (s *recordStore) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return
	}
	delete(s.records, id)

	ids := s.byUser[rec.UserID]
	for i, other := range ids {
		if other == id {
			s.byUser[rec.UserID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
}

func (s *recordStore) get(id string) (model.VerificationRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return model.VerificationRecord{}, false
	}
	return copyRecord(rec), true
}

func (s *recordStore) setMessage(id, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok || rec.Status != model.VerificationPending {
		return false
	}
	rec.Message = message
	return true
}

func (s *recordStore) resolve(id string, status model.VerificationStatus, message string, checks []model.VerificationCheck, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok || rec.Status != model.VerificationPending {
		return false
	}
	rec.Status = status
	rec.Message = message
	rec.Checks = checks
	rec.ResolvedAt = &at
	return true
}

func (s *recordStore) history(userID string) []model.VerificationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUser[userID]
	out := make([]model.VerificationRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyRecord(s.records[id]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out
}

func copyRecord(rec *model.VerificationRecord) model.VerificationRecord {
	out := *rec
	out.Checks = append([]model.VerificationCheck(nil), rec.Checks...)
	if rec.ResolvedAt != nil {
		t := *rec.ResolvedAt
		out.ResolvedAt = &t
	}
	return out
}
