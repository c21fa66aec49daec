package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecoroot/internal/model"
	"ecoroot/internal/repository"

	"go.uber.org/zap"
)

const (
	DefaultStudentPoints = 120
	DefaultTeacherPoints = 500

	leaderboardSize = 100
)

type UserService struct {
	repo   UserRepository
	mirror BalanceMirror
	now    func() time.Time
	log    *zap.Logger
}

func NewUserService(repo UserRepository, mirror BalanceMirror, now func() time.Time, log *zap.Logger) *UserService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{
		repo:   repo,
		mirror: mirror,
		now:    now,
		log:    log,
	}
}

// Account loads the actor's account, creating it on first sight. Storage
// failures fall back to a default account instead of failing the request.
func (s *UserService) Account(ctx context.Context, actor model.Actor) (*model.User, error) {
	user, err := s.repo.GetUser(ctx, actor.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.log.Warn("failed to load account, using defaults",
			zap.String("user_id", actor.ID),
			zap.Error(err))
		return s.defaultAccount(ctx, actor), nil
	}

	user = s.defaultAccount(ctx, actor)
	err = s.repo.CreateUser(ctx, user)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return s.repo.GetUser(ctx, actor.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.log.Info("account created",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.Int("eco_points", user.EcoPoints))

	return user, nil
}

func (s *UserService) defaultAccount(ctx context.Context, actor model.Actor) *model.User {
	points := DefaultStudentPoints
	if actor.Role == model.RoleTeacher {
		points = DefaultTeacherPoints
	}

	if balance, ok, err := s.mirror.LegacyBalance(ctx, actor.ID); err != nil {
		s.log.Warn("failed to read legacy balance",
			zap.String("user_id", actor.ID),
			zap.Error(err))
	} else if ok {
		points = balance
	}

	now := s.now().UTC()
	return &model.User{
		ID:        actor.ID,
		Name:      actor.Name,
		Role:      actor.Role,
		EcoPoints: points,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *UserService) GetLeaderboard(ctx context.Context, roles []model.Role) ([]*model.User, error) {
	users, err := s.repo.GetTopUsers(ctx, leaderboardSize, roles)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	return users, nil
}
