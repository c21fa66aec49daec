package mocks

import (
	"context"

	"ecoroot/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User).Clone(), args.Error(1)
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// UpdateUser applies fn to a copy of the account given to Return.
func (m *MockUserRepository) UpdateUser(ctx context.Context, id string, fn func(user *model.User) error) (*model.User, error) {
	args := m.Called(ctx, id)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	user := args.Get(0).(*model.User).Clone()
	if err := fn(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (m *MockUserRepository) GetTopUsers(ctx context.Context, limit int, roles []model.Role) ([]*model.User, error) {
	args := m.Called(ctx, limit, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.User), args.Error(1)
}

type MockBalanceMirror struct {
	mock.Mock
}

func (m *MockBalanceMirror) MirrorBalance(ctx context.Context, userID string, balance int) error {
	args := m.Called(ctx, userID, balance)
	return args.Error(0)
}

func (m *MockBalanceMirror) LegacyBalance(ctx context.Context, userID string) (int, bool, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Bool(1), args.Error(2)
}
