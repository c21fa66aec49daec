package api

import (
	"net/http"

	"ecoroot/internal/middleware"
	"ecoroot/internal/model"
	"ecoroot/internal/service"
	"ecoroot/pkg/auth"
	"ecoroot/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type ledgerRoutes struct {
	ls service.LedgerServiceI
}

func NewLedgerRoutes(handler *gin.RouterGroup, ls service.LedgerServiceI, a *auth.SessionAuth, m *middleware.Authorization) {
	r := &ledgerRoutes{ls: ls}

	rewards := handler.Group("/rewards")
	rewards.Use(a.SessionMiddleware(), m.LoadAccount())
	{
		rewards.GET("", r.ListRewards)
		rewards.POST("/:id/redeem", r.RedeemReward)
	}

	certificates := handler.Group("/certificates")
	certificates.Use(a.SessionMiddleware(), m.LoadAccount(), m.RequireRole(model.RoleStudent))
	{
		certificates.POST("/:tier/claim", r.ClaimCertificate)
	}
}

type RewardResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	NGO         string `json:"ngo"`
	Description string `json:"description"`
	Cost        int    `json:"cost"`
}

func (r *ledgerRoutes) ListRewards(c *gin.Context) {
	rewards := r.ls.Rewards()
	out := make([]RewardResponse, len(rewards))
	for i, rw := range rewards {
		out[i] = RewardResponse{
			ID:          rw.ID,
			Title:       rw.Title,
			NGO:         rw.NGO,
			Description: rw.Description,
			Cost:        rw.Cost,
		}
	}
	c.JSON(http.StatusOK, gin.H{"rewards": out})
}

type RedeemRequest struct {
	Cost int `json:"cost"`
}

func (r *ledgerRoutes) RedeemReward(c *gin.Context) {
	log := logger.Logger()
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req RedeemRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Error("failed to bind request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
	}

	user, err := r.ls.RedeemReward(c.Request.Context(), actor, c.Param("id"), req.Cost)
	if err != nil {
		respondError(c, err, "failed to redeem reward")
		return
	}

	log.Info("reward redeemed",
		zap.String("user_id", actor.ID),
		zap.String("reward_id", c.Param("id")),
		zap.Int("new_balance", user.EcoPoints))

	c.JSON(http.StatusOK, gin.H{"new_balance": user.EcoPoints})
}

func (r *ledgerRoutes) ClaimCertificate(c *gin.Context) {
	log := logger.Logger()
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	tier := model.CertificateTier(c.Param("tier"))
	user, err := r.ls.ClaimCertificate(c.Request.Context(), actor, tier)
	if err != nil {
		respondError(c, err, "failed to claim certificate")
		return
	}

	log.Info("certificate claimed",
		zap.String("user_id", actor.ID),
		zap.String("tier", string(tier)))

	c.JSON(http.StatusOK, newAccountResponse(user))
}
