package model

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// Actor is the identity a request acts as.
type Actor struct {
	ID   string
	Name string
	Role Role
}

type CertificateTier string

const (
	CertificateBasic    CertificateTier = "basic"
	CertificateAdvanced CertificateTier = "advanced"
	CertificateExpert   CertificateTier = "expert"
)

// CertificateTiers lists tiers in the order they must be claimed.
var CertificateTiers = []CertificateTier{CertificateBasic, CertificateAdvanced, CertificateExpert}

var certificateCosts = map[CertificateTier]int{
	CertificateBasic:    1000,
	CertificateAdvanced: 2000,
	CertificateExpert:   3000,
}

func (t CertificateTier) Cost() int {
	return certificateCosts[t]
}

// Index returns the tier position in CertificateTiers, or -1 for unknown tiers.
func (t CertificateTier) Index() int {
	for i, tier := range CertificateTiers {
		if tier == t {
			return i
		}
	}
	return -1
}

type Certificate struct {
	Tier      CertificateTier `json:"type"`
	ClaimedAt time.Time       `json:"claimedAt"`
	Cost      int             `json:"cost"`
}

type ClaimedReward struct {
	RewardID  string    `json:"id"`
	ClaimedAt time.Time `json:"claimedAt"`
	Cost      int       `json:"cost"`
}

type CompletedChallenge struct {
	ChallengeID    string    `json:"challengeId"`
	VerificationID string    `json:"verificationId"`
	ProofHandle    string    `json:"proofUrl,omitempty"`
	Points         int       `json:"points"`
	CompletedAt    time.Time `json:"completedAt"`
}

type User struct {
	ID                  string
	Name                string
	Role                Role
	EcoPoints           int
	Score               int
	Certificates        []Certificate
	ClaimedRewards      []ClaimedReward
	CompletedChallenges []CompletedChallenge
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (u *User) HasCertificate(tier CertificateTier) bool {
	for _, c := range u.Certificates {
		if c.Tier == tier {
			return true
		}
	}
	return false
}

func (u *User) HasClaimedReward(rewardID string) bool {
	for _, r := range u.ClaimedRewards {
		if r.RewardID == rewardID {
			return true
		}
	}
	return false
}

func (u *User) HasCredited(verificationID string) bool {
	for _, c := range u.CompletedChallenges {
		if c.VerificationID == verificationID {
			return true
		}
	}
	return false
}

func (u *User) Clone() *User {
	out := *u
	out.Certificates = append([]Certificate(nil), u.Certificates...)
	out.ClaimedRewards = append([]ClaimedReward(nil), u.ClaimedRewards...)
	out.CompletedChallenges = append([]CompletedChallenge(nil), u.CompletedChallenges...)
	return &out
}
