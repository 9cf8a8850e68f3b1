package mocks

import (
	"context"

	"github.com/ganot/showcase/internal/domain/activity"
	"github.com/ganot/showcase/internal/domain/session"
	"github.com/stretchr/testify/mock"
)

// PreferenceRepository is a mock for repository.PreferenceRepository.
type PreferenceRepository struct {
	mock.Mock
}

func (m *PreferenceRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *PreferenceRepository) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if entries, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityLogger is a mock for session.ActivityLogger.
type ActivityLogger struct {
	mock.Mock
}

func (m *ActivityLogger) LogActivity(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// Gate is a mock for session.Gate.
type Gate struct {
	mock.Mock
}

func (m *Gate) Allow(ctx context.Context, action session.Action) bool {
	args := m.Called(ctx, action)
	return args.Bool(0)
}
