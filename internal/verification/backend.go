package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecoroot/internal/model"
)

const (
	MessagePending   = "Verification under process..."
	MessageSubmitted = "Submitting for verification..."
	MessageVerified  = "Proof verified successfully! Eco-Points awarded."
	MessageRejected  = "Proof rejected. Image may be duplicate or not meet requirements."
	MessageApproved  = "Verification complete! Eco-Points awarded."
)

var ErrNotFound = errors.New("verification not found")

type SubmitRequest struct {
	ChallengeID string
	UserID      string
	ProofHandle string
	ProofType   model.ProofType
}

// Backend verifies submitted proof asynchronously. Submit returns at once
// with a pending record; Status is polled until the record is terminal.
type Backend interface {
	Submit(ctx context.Context, req SubmitRequest) (string, error)
	Status(ctx context.Context, id string) (model.VerificationRecord, error)
	History(ctx context.Context, userID string) ([]model.VerificationRecord, error)
}

// Timer schedules the delayed steps of a verification. *Scheduler is the
// production Timer.
type Timer interface {
	After(name string, delay time.Duration, fn func(), tags ...string) error
	Cancel(tag string)
}

func newID(userID, challengeID string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%d", userID, challengeID, at.UnixMilli())
}
