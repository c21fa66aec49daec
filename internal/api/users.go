package api

import (
	"net/http"
	"time"

	"ecoroot/internal/middleware"
	"ecoroot/internal/model"
	"ecoroot/internal/service"
	"ecoroot/pkg/auth"

	"github.com/gin-gonic/gin"
)

type userRoutes struct {
	us service.UserServiceI
}

func NewUserRoutes(handler *gin.RouterGroup, us service.UserServiceI, a *auth.SessionAuth, m *middleware.Authorization) {
	r := &userRoutes{us: us}
	h := handler.Group("/users")
	h.Use(a.SessionMiddleware(), m.LoadAccount())
	{
		h.GET("/me", r.GetMe)
		h.GET("/leaderboard", r.GetLeaderboard)
	}
}

type CertificateResponse struct {
	Tier      string    `json:"type"`
	ClaimedAt time.Time `json:"claimed_at"`
	Cost      int       `json:"cost"`
}

type ClaimedRewardResponse struct {
	RewardID  string    `json:"id"`
	ClaimedAt time.Time `json:"claimed_at"`
	Cost      int       `json:"cost"`
}

type CompletedChallengeResponse struct {
	ChallengeID    string    `json:"challenge_id"`
	VerificationID string    `json:"verification_id"`
	ProofHandle    string    `json:"proof_handle,omitempty"`
	Points         int       `json:"points"`
	CompletedAt    time.Time `json:"completed_at"`
}

type AccountResponse struct {
	ID                  string                       `json:"id"`
	Name                string                       `json:"name"`
	Role                string                       `json:"role"`
	EcoPoints           int                          `json:"eco_points"`
	Score               int                          `json:"score"`
	Certificates        []CertificateResponse        `json:"certificates"`
	ClaimedRewards      []ClaimedRewardResponse      `json:"claimed_rewards"`
	CompletedChallenges []CompletedChallengeResponse `json:"completed_challenges"`
}

func newAccountResponse(u *model.User) AccountResponse {
	out := AccountResponse{
		ID:                  u.ID,
		Name:                u.Name,
		Role:                string(u.Role),
		EcoPoints:           u.EcoPoints,
		Score:               u.Score,
		Certificates:        make([]CertificateResponse, len(u.Certificates)),
		ClaimedRewards:      make([]ClaimedRewardResponse, len(u.ClaimedRewards)),
		CompletedChallenges: make([]CompletedChallengeResponse, len(u.CompletedChallenges)),
	}
	for i, cert := range u.Certificates {
		out.Certificates[i] = CertificateResponse{Tier: string(cert.Tier), ClaimedAt: cert.ClaimedAt, Cost: cert.Cost}
	}
	for i, rw := range u.ClaimedRewards {
		out.ClaimedRewards[i] = ClaimedRewardResponse{RewardID: rw.RewardID, ClaimedAt: rw.ClaimedAt, Cost: rw.Cost}
	}
	for i, cc := range u.CompletedChallenges {
		out.CompletedChallenges[i] = CompletedChallengeResponse{
			ChallengeID:    cc.ChallengeID,
			VerificationID: cc.VerificationID,
			ProofHandle:    cc.ProofHandle,
			Points:         cc.Points,
			CompletedAt:    cc.CompletedAt,
		}
	}
	return out
}

func (r *userRoutes) GetMe(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	user, err := r.us.Account(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err, "failed to get account")
		return
	}

	c.JSON(http.StatusOK, newAccountResponse(user))
}

type LeaderboardEntry struct {
	Rank  int    `json:"rank"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Score int    `json:"score"`
}

// GetLeaderboard ranks students by score unless ?role=all or ?role=teacher is given.
func (r *userRoutes) GetLeaderboard(c *gin.Context) {
	roles := []model.Role{model.RoleStudent}
	switch role := c.Query("role"); role {
	case "":
	case "all":
		roles = nil
	default:
		if !model.Role(role).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
			return
		}
		roles = []model.Role{model.Role(role)}
	}

	users, err := r.us.GetLeaderboard(c.Request.Context(), roles)
	if err != nil {
		respondError(c, err, "failed to get leaderboard")
		return
	}

	out := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		out[i] = LeaderboardEntry{
			Rank:  i + 1,
			ID:    u.ID,
			Name:  u.Name,
			Role:  string(u.Role),
			Score: u.Score,
		}
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": out})
}
