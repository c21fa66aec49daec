package model

import "time"

type DailyProof struct {
	ProofHandle string
	SubmittedAt time.Time
}

type UserProgress struct {
	UserID       string
	ChallengeID  string
	Joined       bool
	ProgressDays int
	Completed    bool
	DailyProofs  map[int]DailyProof
	LastMarkTime *time.Time

	VerificationID     string
	VerificationStatus VerificationStatus
	// Verification ids whose points were already credited for this user and challenge.
	CreditedVerifications map[string]struct{}
}

// CurrentDay is the day number the next proof or mark applies to.
func (p *UserProgress) CurrentDay() int {
	return p.ProgressDays + 1
}

func (p *UserProgress) IsCredited(verificationID string) bool {
	_, ok := p.CreditedVerifications[verificationID]
	return ok
}

func (p *UserProgress) Clone() *UserProgress {
	out := *p
	if p.DailyProofs != nil {
		out.DailyProofs = make(map[int]DailyProof, len(p.DailyProofs))
		for day, proof := range p.DailyProofs {
			out.DailyProofs[day] = proof
		}
	}
	if p.LastMarkTime != nil {
		t := *p.LastMarkTime
		out.LastMarkTime = &t
	}
	if p.CreditedVerifications != nil {
		out.CreditedVerifications = make(map[string]struct{}, len(p.CreditedVerifications))
		for id := range p.CreditedVerifications {
			out.CreditedVerifications[id] = struct{}{}
		}
	}
	return &out
}
