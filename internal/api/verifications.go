package api

import (
	"context"
	"net/http"
	"time"

	"ecoroot/internal/middleware"
	"ecoroot/internal/model"
	"ecoroot/internal/service"
	"ecoroot/pkg/auth"
	"ecoroot/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const writeWait = 10 * time.Second

type verificationRoutes struct {
	vs           service.VerificationServiceI
	pollInterval time.Duration
}

func NewVerificationRoutes(
	handler *gin.RouterGroup,
	vs service.VerificationServiceI,
	pollInterval time.Duration,
	a *auth.SessionAuth,
	m *middleware.Authorization,
) {
	if pollInterval <= 0 {
		pollInterval = service.DefaultPollInterval
	}
	r := &verificationRoutes{vs: vs, pollInterval: pollInterval}

	h := handler.Group("/verifications")
	h.Use(a.SessionMiddleware(), m.LoadAccount())
	{
		h.GET("", r.GetHistory)
		h.GET("/:id", r.GetStatus)
		h.GET("/:id/ws", r.StreamStatus)
	}

	v := handler.Group("/views")
	v.Use(a.SessionMiddleware())
	{
		v.POST("", r.CreateView)
		v.DELETE("/:token", r.CancelView)
	}
}

type StatusResponse struct {
	VerificationID string `json:"verification_id"`
	ChallengeID    string `json:"challenge_id"`
	Status         string `json:"status"`
	Verified       bool   `json:"verified"`
	Message        string `json:"message"`
	CreditsAwarded int    `json:"credits_awarded,omitempty"`
	Error          string `json:"error,omitempty"`
}

func newStatusResponse(res *service.StatusResult) StatusResponse {
	out := StatusResponse{
		VerificationID: res.VerificationID,
		ChallengeID:    res.ChallengeID,
		Status:         string(res.Status),
		Verified:       res.Verified,
		Message:        res.Message,
		CreditsAwarded: res.CreditsAwarded,
	}
	if err := res.Err(); err != nil {
		out.Error = err.Error()
	}
	return out
}

func (r *verificationRoutes) GetStatus(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	res, err := r.vs.CheckStatus(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err, "failed to get verification status")
		return
	}

	c.JSON(http.StatusOK, newStatusResponse(res))
}

type RecordResponse struct {
	VerificationID string     `json:"verification_id"`
	ChallengeID    string     `json:"challenge_id"`
	ProofType      string     `json:"proof_type"`
	Status         string     `json:"status"`
	Message        string     `json:"message"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

func (r *verificationRoutes) GetHistory(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	records, err := r.vs.History(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err, "failed to get verification history")
		return
	}

	out := make([]RecordResponse, len(records))
	for i, rec := range records {
		out[i] = newRecordResponse(rec)
	}
	c.JSON(http.StatusOK, gin.H{"verifications": out})
}

func newRecordResponse(rec model.VerificationRecord) RecordResponse {
	return RecordResponse{
		VerificationID: rec.ID,
		ChallengeID:    rec.ChallengeID,
		ProofType:      string(rec.ProofType),
		Status:         string(rec.Status),
		Message:        rec.Message,
		SubmittedAt:    rec.SubmittedAt,
		ResolvedAt:     rec.ResolvedAt,
	}
}

// StreamStatus pushes the verification status every poll interval until it
// is terminal or the client goes away.
func (r *verificationRoutes) StreamStatus(c *gin.Context) {
	log := logger.Logger()
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id := c.Param("id")

	// Reject unknown ids before upgrading so the client gets a plain HTTP error.
	if _, err := r.vs.CheckStatus(c.Request.Context(), actor, id); err != nil {
		respondError(c, err, "failed to get verification status")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Info("websocket unexpected close", zap.Error(err))
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		res, err := r.vs.CheckStatus(ctx, actor, id)
		if err != nil {
			log.Error("failed to poll verification", zap.String("verification_id", id), zap.Error(err))
			return
		}

		data, err := json.Marshal(newStatusResponse(res))
		if err != nil {
			log.Error("failed to marshal status", zap.Error(err))
			return
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Info("failed to write status", zap.Error(err))
			return
		}

		if res.Status.IsTerminal() {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "verification resolved"),
				time.Now().Add(writeWait))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (r *verificationRoutes) CreateView(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"view_token": uuid.NewString()})
}

// CancelView stops every server-side poll started for the view. Pending
// verifications still resolve.
func (r *verificationRoutes) CancelView(c *gin.Context) {
	token := c.Param("token")
	if _, err := uuid.Parse(token); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid view token"})
		return
	}

	r.vs.CancelView(token)
	c.Status(http.StatusNoContent)
}
