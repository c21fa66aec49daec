package api

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"ecoroot/internal/catalog"
	"ecoroot/internal/middleware"
	"ecoroot/internal/model"
	"ecoroot/internal/service"
	"ecoroot/pkg/auth"
	"ecoroot/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type challengeRoutes struct {
	ps service.ProgressServiceI
	vs service.VerificationServiceI
}

func NewChallengeRoutes(
	handler *gin.RouterGroup,
	ps service.ProgressServiceI,
	vs service.VerificationServiceI,
	a *auth.SessionAuth,
	m *middleware.Authorization,
) {
	r := &challengeRoutes{ps: ps, vs: vs}
	h := handler.Group("/challenges")
	h.Use(a.SessionMiddleware(), m.LoadAccount())
	{
		h.GET("", r.ListChallenges)
		h.POST("/:id/join", r.Join)
		h.POST("/:id/proofs", r.SubmitDailyProof)
		h.POST("/:id/days", r.MarkDayComplete)
		h.POST("/:id/upload", r.UploadProof)
		h.POST("/:id/complete", r.CompleteChallenge)
		h.GET("/:id/progress", r.GetProgress)
	}
}

type FestivalResponse struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type TeacherResponse struct {
	TargetAudience string `json:"target_audience"`
	MaxStudents    int    `json:"max_students"`
}

type ChallengeResponse struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Category     string            `json:"category"`
	Difficulty   string            `json:"difficulty"`
	Points       int               `json:"points"`
	DurationDays int               `json:"duration_days"`
	ProofType    string            `json:"proof_type"`
	Kind         string            `json:"kind"`
	Festival     *FestivalResponse `json:"festival,omitempty"`
	Teacher      *TeacherResponse  `json:"teacher,omitempty"`
	Active       bool              `json:"active"`
	Joinable     bool              `json:"joinable"`
}

func newChallengeResponse(l catalog.Listing) ChallengeResponse {
	ch := l.Challenge
	out := ChallengeResponse{
		ID:           ch.ID,
		Title:        ch.Title,
		Description:  ch.Description,
		Category:     ch.Category,
		Difficulty:   string(ch.Difficulty),
		Points:       ch.Points,
		DurationDays: ch.DurationDays,
		ProofType:    string(ch.ProofType),
		Kind:         string(ch.Kind),
		Active:       l.Active,
		Joinable:     l.Joinable,
	}
	if ch.Festival != nil {
		out.Festival = &FestivalResponse{
			Name:      ch.Festival.Name,
			StartDate: ch.Festival.StartDate.Format(time.DateOnly),
			EndDate:   ch.Festival.EndDate.Format(time.DateOnly),
		}
	}
	if ch.Teacher != nil {
		out.Teacher = &TeacherResponse{
			TargetAudience: ch.Teacher.TargetAudience,
			MaxStudents:    ch.Teacher.MaxStudents,
		}
	}
	return out
}

func (r *challengeRoutes) ListChallenges(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	filter := catalog.Filter{
		Category:     c.Query("category"),
		Difficulty:   model.Difficulty(c.Query("difficulty")),
		Search:       c.Query("search"),
		SortByPoints: c.Query("sort") == "points",
	}

	listings := r.ps.ListChallenges(actor, filter)
	out := make([]ChallengeResponse, len(listings))
	for i, l := range listings {
		out[i] = newChallengeResponse(l)
	}

	c.JSON(http.StatusOK, gin.H{
		"challenges": out,
		"categories": r.ps.Categories(),
	})
}

type DailyProofResponse struct {
	ProofHandle string    `json:"proof_handle"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type ProgressResponse struct {
	ChallengeID        string                     `json:"challenge_id"`
	Joined             bool                       `json:"joined"`
	ProgressDays       int                        `json:"progress_days"`
	CurrentDay         int                        `json:"current_day"`
	Completed          bool                       `json:"completed"`
	DailyProofs        map[int]DailyProofResponse `json:"daily_proofs"`
	LastMarkTime       *time.Time                 `json:"last_mark_time,omitempty"`
	NextMarkAvailable  *time.Time                 `json:"next_mark_available,omitempty"`
	VerificationID     string                     `json:"verification_id,omitempty"`
	VerificationStatus string                     `json:"verification_status,omitempty"`
}

func newProgressResponse(p *model.UserProgress) ProgressResponse {
	out := ProgressResponse{
		ChallengeID:        p.ChallengeID,
		Joined:             p.Joined,
		ProgressDays:       p.ProgressDays,
		CurrentDay:         p.CurrentDay(),
		Completed:          p.Completed,
		DailyProofs:        make(map[int]DailyProofResponse, len(p.DailyProofs)),
		LastMarkTime:       p.LastMarkTime,
		VerificationID:     p.VerificationID,
		VerificationStatus: string(p.VerificationStatus),
	}

	days := make([]int, 0, len(p.DailyProofs))
	for day := range p.DailyProofs {
		days = append(days, day)
	}
	sort.Ints(days)
	for _, day := range days {
		proof := p.DailyProofs[day]
		out.DailyProofs[day] = DailyProofResponse{ProofHandle: proof.ProofHandle, SubmittedAt: proof.SubmittedAt}
	}

	if p.LastMarkTime != nil && !p.Completed {
		next := p.LastMarkTime.Add(service.Cooldown)
		out.NextMarkAvailable = &next
	}
	return out
}

func (r *challengeRoutes) Join(c *gin.Context) {
	log := logger.Logger()
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	progress, err := r.ps.Join(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrAlreadyJoined) && progress != nil {
			c.JSON(http.StatusOK, gin.H{
				"already_joined": true,
				"progress":       newProgressResponse(progress),
			})
			return
		}
		respondError(c, err, "failed to join challenge")
		return
	}

	log.Info("challenge joined",
		zap.String("user_id", actor.ID),
		zap.String("challenge_id", progress.ChallengeID))

	c.JSON(http.StatusCreated, gin.H{
		"already_joined": false,
		"progress":       newProgressResponse(progress),
	})
}

type ProofRequest struct {
	ProofHandle string `json:"proof_handle"`
}

func (r *challengeRoutes) SubmitDailyProof(c *gin.Context) {
	log := logger.Logger()
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req ProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	progress, err := r.ps.SubmitDailyProof(c.Request.Context(), actor, c.Param("id"), req.ProofHandle)
	if err != nil {
		respondError(c, err, "failed to submit proof")
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": newProgressResponse(progress)})
}

// MarkDayRequest is optional; a one-day challenge submits on its last day.
type MarkDayRequest struct {
	ViewToken string `json:"view_token"`
}

func (r *challengeRoutes) MarkDayComplete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req MarkDayRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Logger().Error("failed to bind request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
	}

	res, err := r.ps.MarkDayComplete(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err, "failed to complete day")
		return
	}

	body := gin.H{"progress": newProgressResponse(res.Progress)}
	if res.Verification != nil {
		body["verification"] = newCompletionResponse(res.Verification, r.watch(actor, res.Verification.VerificationID, req.ViewToken))
	}
	c.JSON(http.StatusOK, body)
}

type CompleteRequest struct {
	ProofHandle string `json:"proof_handle"`
	ProofType   string `json:"proof_type"`
	// ViewToken ties a server-side status watch to the caller's view.
	ViewToken string `json:"view_token"`
}

type CompletionResponse struct {
	VerificationID string `json:"verification_id"`
	Status         string `json:"status"`
	Message        string `json:"message"`
	ViewToken      string `json:"view_token,omitempty"`
}

func newCompletionResponse(res *service.CompletionResult, viewToken string) CompletionResponse {
	return CompletionResponse{
		VerificationID: res.VerificationID,
		Status:         string(res.Status),
		Message:        res.Message,
		ViewToken:      viewToken,
	}
}

func (r *challengeRoutes) UploadProof(c *gin.Context) {
	log := logger.Logger()
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := r.ps.UploadProof(c.Request.Context(), actor, c.Param("id"), req.ProofHandle)
	if err != nil {
		respondError(c, err, "failed to upload proof")
		return
	}

	c.JSON(http.StatusAccepted, newCompletionResponse(res, r.watch(actor, res.VerificationID, req.ViewToken)))
}

func (r *challengeRoutes) CompleteChallenge(c *gin.Context) {
	log := logger.Logger()
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := r.vs.CompleteChallenge(c.Request.Context(), actor, c.Param("id"), req.ProofHandle, model.ProofType(req.ProofType))
	if err != nil {
		respondError(c, err, "failed to complete challenge")
		return
	}

	c.JSON(http.StatusAccepted, newCompletionResponse(res, r.watch(actor, res.VerificationID, req.ViewToken)))
}

// watch starts a server-side poll owned by viewToken. No token, no watch.
func (r *challengeRoutes) watch(actor model.Actor, verificationID, viewToken string) string {
	if viewToken == "" {
		return ""
	}
	if err := r.vs.Watch(actor, verificationID, viewToken); err != nil {
		logger.Logger().Warn("failed to watch verification",
			zap.String("verification_id", verificationID),
			zap.Error(err))
		return ""
	}
	return viewToken
}

func (r *challengeRoutes) GetProgress(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	progress, err := r.ps.Progress(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err, "failed to get progress")
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": newProgressResponse(progress)})
}
