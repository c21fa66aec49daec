package service

import (
	"errors"
	"fmt"

	"ecoroot/internal/catalog"
)

var (
	ErrAlreadyJoined        = errors.New("challenge already joined")
	ErrAlreadyCompleted     = errors.New("challenge already completed")
	ErrNotJoined            = errors.New("challenge not joined")
	ErrNotCompleted         = errors.New("challenge still has days remaining")
	ErrProofMissing         = errors.New("proof missing")
	ErrCooldownActive       = errors.New("cooldown active")
	ErrWrongProofType       = errors.New("proof type not accepted by this challenge")
	ErrChallengeNotFound    = errors.New("challenge not found")
	ErrVerificationPending  = errors.New("verification already in progress")
	ErrVerificationRejected = errors.New("verification rejected")
	ErrVerificationNotFound = errors.New("verification not found")

	ErrInsufficientPoints = errors.New("insufficient eco-points")
	ErrAlreadyClaimed     = errors.New("already claimed")
	ErrOutOfOrder         = errors.New("previous certificate tier not claimed")
	ErrMaxTiersReached    = errors.New("all certificate tiers claimed")
	ErrUnknownTier        = errors.New("unknown certificate tier")
	ErrRewardNotFound     = errors.New("reward not found")
	ErrCostBelowPrice     = errors.New("cost is below the reward price")
	ErrUserNotFound       = errors.New("user not found")

	ErrRoleNotPermitted = catalog.ErrRoleNotPermitted
	ErrFestivalInactive = catalog.ErrFestivalInactive
)

// CooldownError reports how many whole hours remain before the next day can be marked.
type CooldownError struct {
	Remaining int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %d more hours before completing the next day", e.Remaining)
}

func (e *CooldownError) Unwrap() error {
	return ErrCooldownActive
}

// ProofMissingError names the day that still needs proof.
type ProofMissingError struct {
	Day int
}

func (e *ProofMissingError) Error() string {
	return fmt.Sprintf("please upload proof for day %d first", e.Day)
}

func (e *ProofMissingError) Unwrap() error {
	return ErrProofMissing
}
