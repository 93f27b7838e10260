package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/BuzzLyutic/todotxt-api/internal/model"
)

// ClaimRecurring забирает одну завершённую повторяющуюся задачу из очереди.
// Возвращает ErrorNotFound, если очередь пуста.
func (r *TaskRepo) ClaimRecurring(ctx context.Context) (model.Task, error) {
	t, err := r.scanTask(r.pool.QueryRow(ctx, `
		WITH claimed AS (
			SELECT id
			FROM tasks
			WHERE recur_status = 'pending'
			ORDER BY updated_at, id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE tasks
		SET recur_status = 'processing'
		FROM claimed
		WHERE tasks.id = claimed.id
		RETURNING tasks.id, tasks.line, tasks.version, tasks.created_at, tasks.updated_at
	`))

	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

// SpawnNext отмечает задачу doneID обработанной и вставляет next, если он задан.
// Если задачу успели переоткрыть, ничего не создаётся и возвращается ErrorConflict.
func (r *TaskRepo) SpawnNext(ctx context.Context, doneID int64, next *model.Task) (model.Task, error) {
	var spawned model.Task

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `
			UPDATE tasks SET recur_status = 'done'
			WHERE id = $1 AND recur_status = 'processing'
		`, doneID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrorConflict
		}
		if next == nil {
			return nil
		}

		spawned, err = r.insert(ctx, tx, *next)
		return err
	})

	return spawned, r.mapError(err)
}

// ReleaseRecurring возвращает задачу в очередь.
func (r *TaskRepo) ReleaseRecurring(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE tasks SET recur_status = 'pending'
		WHERE id = $1 AND recur_status = 'processing'
	`, id)
	return err
}
