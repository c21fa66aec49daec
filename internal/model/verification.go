package model

import "time"

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

func (s VerificationStatus) IsTerminal() bool {
	return s == VerificationVerified || s == VerificationRejected
}

type VerificationCheck struct {
	Name   string
	Passed bool
}

type VerificationRecord struct {
	ID          string
	ChallengeID string
	UserID      string
	ProofType   ProofType
	ProofHandle string
	SubmittedAt time.Time
	ResolvedAt  *time.Time
	Status      VerificationStatus
	Message     string
	Checks      []VerificationCheck
}
