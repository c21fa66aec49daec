package middleware

import (
	"net/http"

	"ecoroot/internal/model"
	"ecoroot/internal/service"
	"ecoroot/pkg/auth"
	"ecoroot/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

const (
	ActorKey   = "actor"
	AccountKey = "account"
)

type Authorization struct {
	userService service.UserServiceI
}

func NewAuthorization(userService service.UserServiceI) *Authorization {
	return &Authorization{
		userService: userService,
	}
}

// LoadAccount resolves the session user into an actor and makes sure the
// account exists before any handler mutates it.
func (a *Authorization) LoadAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		sessionUser, ok := auth.FromContext(c)
		if !ok {
			log.Error("session user not found in context")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		actor := model.Actor{
			ID:   sessionUser.ID,
			Name: sessionUser.Name,
			Role: model.Role(sessionUser.Role),
		}

		account, err := a.userService.Account(c.Request.Context(), actor)
		if err != nil {
			log.Error("failed to load account", zap.String("user_id", actor.ID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to load account"})
			return
		}

		// The stored role wins over the one the client claims.
		if account.Role.Valid() && account.Role != actor.Role {
			log.Warn("session role differs from account role",
				zap.String("user_id", actor.ID),
				zap.String("session_role", string(actor.Role)),
				zap.String("account_role", string(account.Role)))
			actor.Role = account.Role
		}

		c.Set(ActorKey, actor)
		c.Set(AccountKey, account)
		c.Next()
	}
}

// RequireRole rejects actors whose role differs from role.
func (a *Authorization) RequireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := Actor(c)
		if !ok || actor.Role != role {
			logger.Logger().Info("role check failed",
				zap.String("user_id", actor.ID),
				zap.String("required", string(role)))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": string(role) + " access required"})
			return
		}
		c.Next()
	}
}

func Actor(c *gin.Context) (model.Actor, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return model.Actor{}, false
	}
	actor, ok := v.(model.Actor)
	return actor, ok
}
