package repo

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/BuzzLyutic/todotxt-api/internal/model"
)

// TaskRepository определяет интерфейс для работы с задачами
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	CreateMany(ctx context.Context, ts []model.Task) ([]model.Task, error)
	Get(ctx context.Context, id int64) (model.Task, error)
	List(ctx context.Context, filter model.TaskFilter, limit int) ([]model.Task, error)
	ListAll(ctx context.Context) ([]model.Task, error)
	Update(ctx context.Context, t model.Task) (model.Task, error)
	Delete(ctx context.Context, id int64) error
	SaveIdempotencyKey(ctx context.Context, key string, resourceID int64) error
	GetIdempotencyKey(ctx context.Context, key string) (int64, error)
	GetStats(ctx context.Context, today civil.Date) (Stats, error)
}

// Stats агрегирует задачи; Overdue считает открытые задачи с due раньше today.
type Stats struct {
	TotalTasks int            `json:"total_tasks"`
	Open       int            `json:"open"`
	Finished   int            `json:"finished"`
	Overdue    int            `json:"overdue"`
	Recurring  int            `json:"recurring"`
	ByPriority map[string]int `json:"by_priority"`
}
