package api

import (
	"errors"
	"net/http"

	"ecoroot/internal/middleware"
	"ecoroot/internal/model"
	"ecoroot/internal/service"
	"ecoroot/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{service.ErrChallengeNotFound, http.StatusNotFound, "challenge_not_found"},
	{service.ErrVerificationNotFound, http.StatusNotFound, "verification_not_found"},
	{service.ErrRewardNotFound, http.StatusNotFound, "reward_not_found"},
	{service.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{service.ErrRoleNotPermitted, http.StatusForbidden, "role_not_permitted"},
	{service.ErrAlreadyJoined, http.StatusConflict, "already_joined"},
	{service.ErrAlreadyCompleted, http.StatusConflict, "already_completed"},
	{service.ErrAlreadyClaimed, http.StatusConflict, "already_claimed"},
	{service.ErrVerificationPending, http.StatusConflict, "verification_pending"},
	{service.ErrCooldownActive, http.StatusTooManyRequests, "cooldown_active"},
	{service.ErrProofMissing, http.StatusBadRequest, "proof_missing"},
	{service.ErrWrongProofType, http.StatusBadRequest, "wrong_proof_type"},
	{service.ErrUnknownTier, http.StatusBadRequest, "unknown_tier"},
	{service.ErrCostBelowPrice, http.StatusBadRequest, "cost_below_price"},
	{service.ErrNotJoined, http.StatusUnprocessableEntity, "not_joined"},
	{service.ErrNotCompleted, http.StatusUnprocessableEntity, "not_completed"},
	{service.ErrFestivalInactive, http.StatusUnprocessableEntity, "festival_inactive"},
	{service.ErrInsufficientPoints, http.StatusUnprocessableEntity, "insufficient_points"},
	{service.ErrOutOfOrder, http.StatusUnprocessableEntity, "out_of_order"},
	{service.ErrMaxTiersReached, http.StatusUnprocessableEntity, "max_tiers_reached"},
}

// respondError writes the client-facing form of err. Unknown errors are
// logged and hidden behind fallback.
func respondError(c *gin.Context, err error, fallback string) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}

		body := gin.H{"error": err.Error(), "code": m.code}

		var cooldown *service.CooldownError
		if errors.As(err, &cooldown) {
			body["remaining_hours"] = cooldown.Remaining
		}
		var missing *service.ProofMissingError
		if errors.As(err, &missing) {
			body["day"] = missing.Day
		}

		c.JSON(m.status, body)
		return
	}

	logger.Logger().Error(fallback, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}

func actorFrom(c *gin.Context) (model.Actor, bool) {
	actor, ok := middleware.Actor(c)
	if !ok {
		logger.Logger().Error("actor not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return model.Actor{}, false
	}
	return actor, true
}
