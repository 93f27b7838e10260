package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todotxt-api/internal/model"
	"github.com/BuzzLyutic/todotxt-api/internal/repo"
)

// Store - очередь повторений, её реализует *repo.TaskRepo.
type Store interface {
	// ClaimRecurring возвращает repo.ErrorNotFound, если очередь пуста.
	ClaimRecurring(ctx context.Context) (model.Task, error)
	// SpawnNext отмечает doneID обработанной и сохраняет next, если он не nil.
	SpawnNext(ctx context.Context, doneID int64, next *model.Task) (model.Task, error)
	ReleaseRecurring(ctx context.Context, id int64) error
}

var _ Store = (*repo.TaskRepo)(nil)

// Pool создаёт следующие повторения завершённых задач с rec:.
type Pool struct {
	store    Store
	logger   *zap.Logger
	count    int
	interval time.Duration
	now      func() time.Time
	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
}

func NewPool(store Store, logger *zap.Logger, count int, interval time.Duration) *Pool {
	return &Pool{
		store:    store,
		logger:   logger,
		count:    count,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("Starting worker pool", zap.Int("workers", p.count), zap.Duration("interval", p.interval))

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool) Stop() {
	p.logger.Info("Stopping worker pool...")
	p.stopOnce.Do(func() { close(p.stop) })
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			// очередь разбирается до конца за один тик
			for {
				err := p.processNext(ctx, id)
				if err == nil {
					continue
				}
				if !errors.Is(err, repo.ErrorNotFound) && !errors.Is(err, context.Canceled) {
					p.logger.Error("worker error", zap.Int("worker", id), zap.Error(err))
				}
				break
			}
		}
	}
}

func (p *Pool) processNext(ctx context.Context, workerID int) error {
	select {
	case <-p.stop:
		return repo.ErrorNotFound
	default:
	}

	task, err := p.store.ClaimRecurring(ctx)
	if err != nil {
		return err
	}

	completed := civil.DateOf(p.now())
	if task.Todo.FinishDate != nil {
		completed = *task.Todo.FinishDate
	}

	var next *model.Task
	if todo, ok := task.Todo.Recur(completed); ok {
		line := todo.String()
		next = &model.Task{Line: line, Todo: todo}
	}

	spawned, err := p.store.SpawnNext(ctx, task.ID, next)
	switch {
	case errors.Is(err, repo.ErrorConflict):
		// задачу переоткрыли, пока она была в обработке
		p.logger.Info("recurrence skipped", zap.Int("worker", workerID), zap.Int64("task_id", task.ID))
		return nil
	case err != nil:
		// вернуть задачу в очередь
		if rerr := p.store.ReleaseRecurring(context.WithoutCancel(ctx), task.ID); rerr != nil {
			p.logger.Error("release failed", zap.Int64("task_id", task.ID), zap.Error(rerr))
		}
		return err
	}

	if next == nil {
		return nil
	}
	p.logger.Info("Recurrence spawned",
		zap.Int("worker", workerID),
		zap.Int64("task_id", task.ID),
		zap.Int64("next_id", spawned.ID),
		zap.String("line", spawned.Line),
	)
	return nil
}
