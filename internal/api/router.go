package api

import (
	"time"

	"ecoroot/internal/middleware"
	"ecoroot/internal/service"
	"ecoroot/pkg/auth"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts every route group on handler.
func RegisterRoutes(handler *gin.RouterGroup, svc *service.Service, pollInterval time.Duration, a *auth.SessionAuth) {
	m := middleware.NewAuthorization(svc.UserService)

	NewChallengeRoutes(handler, svc.ProgressService, svc.VerificationService, a, m)
	NewVerificationRoutes(handler, svc.VerificationService, pollInterval, a, m)
	NewLedgerRoutes(handler, svc.LedgerService, a, m)
	NewUserRoutes(handler, svc.UserService, a, m)
}
