// Package repomock содержит мок repo.TaskRepository на testify/mock.
package repomock

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/mock"

	"github.com/BuzzLyutic/todotxt-api/internal/model"
	"github.com/BuzzLyutic/todotxt-api/internal/repo"
)

var _ repo.TaskRepository = (*TaskRepository)(nil)

// TaskRepository - мок репозитория
type TaskRepository struct {
	mock.Mock
}

func (m *TaskRepository) Create(ctx context.Context, t model.Task) (model.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *TaskRepository) CreateMany(ctx context.Context, ts []model.Task) ([]model.Task, error) {
	args := m.Called(ctx, ts)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *TaskRepository) Get(ctx context.Context, id int64) (model.Task, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *TaskRepository) List(ctx context.Context, filter model.TaskFilter, limit int) ([]model.Task, error) {
	args := m.Called(ctx, filter, limit)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *TaskRepository) ListAll(ctx context.Context) ([]model.Task, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *TaskRepository) Update(ctx context.Context, t model.Task) (model.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *TaskRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TaskRepository) SaveIdempotencyKey(ctx context.Context, key string, resourceID int64) error {
	args := m.Called(ctx, key, resourceID)
	return args.Error(0)
}

func (m *TaskRepository) GetIdempotencyKey(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TaskRepository) GetStats(ctx context.Context, today civil.Date) (repo.Stats, error) {
	args := m.Called(ctx, today)
	return args.Get(0).(repo.Stats), args.Error(1)
}
