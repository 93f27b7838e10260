package repo

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/todotxt-api/internal/model"
	"github.com/BuzzLyutic/todotxt-api/pkg/todotxt"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

const taskColumns = `id, line, version, created_at, updated_at`

const insertTaskSQL = `
	INSERT INTO tasks (line, priority, finished, due_date, threshold_date, recurrence, contexts, projects)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING ` + taskColumns

// querier - общее у *pgxpool.Pool и pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TaskRepo хранит каноническую строку todo.txt и поля для фильтрации.
// Разобранное представление восстанавливается парсером при чтении.
type TaskRepo struct {
	pool   *pgxpool.Pool
	parser todotxt.Parser
}

func NewTaskRepo(pool *pgxpool.Pool, parser todotxt.Parser) *TaskRepo {
	return &TaskRepo{
		pool:   pool,
		parser: parser,
	}
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	created, err := r.insert(ctx, r.pool, t)
	return created, r.mapError(err)
}

// CreateMany вставляет все задачи одним батчем в одной транзакции.
func (r *TaskRepo) CreateMany(ctx context.Context, ts []model.Task) ([]model.Task, error) {
	if len(ts) == 0 {
		return nil, nil
	}

	created := make([]model.Task, 0, len(ts))
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, t := range ts {
			batch.Queue(insertTaskSQL, columnsOf(t)...)
		}

		br := tx.SendBatch(ctx, batch)
		for range ts {
			t, err := r.scanTask(br.QueryRow())
			if err != nil {
				br.Close()
				return err
			}
			created = append(created, t)
		}
		return br.Close()
	})
	if err != nil {
		return nil, r.mapError(err)
	}
	return created, nil
}

func (r *TaskRepo) Get(ctx context.Context, id int64) (model.Task, error) {
	t, err := r.scanTask(r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1
	`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) List(ctx context.Context, filter model.TaskFilter, limit int) ([]model.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE ($1::text IS NULL OR $1 = ANY(contexts))
		  AND ($2::text IS NULL OR $2 = ANY(projects))
		  AND ($3::boolean IS NULL OR finished = $3)
		ORDER BY finished, priority, due_date NULLS LAST, id
		LIMIT $4
	`

	rows, err := r.pool.Query(ctx, query, filter.Context, filter.Project, filter.Finished, limit)
	if err != nil {
		return nil, err
	}
	return r.collect(rows, limit)
}

// ListAll возвращает все задачи в порядке создания, для экспорта.
func (r *TaskRepo) ListAll(ctx context.Context) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return r.collect(rows, 0)
}

// Update перезаписывает строку с проверкой версии. Завершение задачи
// с rec: ставит её в очередь на создание следующего повторения,
// переоткрытие снимает с очереди.
func (r *TaskRepo) Update(ctx context.Context, t model.Task) (model.Task, error) {
	args := append([]any{t.ID, t.Version}, columnsOf(t)...)
	updated, err := r.scanTask(r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET line = $3, priority = $4, finished = $5, due_date = $6, threshold_date = $7,
		    recurrence = $8, contexts = $9, projects = $10,
		    recur_status = CASE
		        WHEN NOT $5::boolean THEN 'none'
		        WHEN $8::text IS NOT NULL AND recur_status = 'none' THEN 'pending'
		        ELSE recur_status
		    END,
		    version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING `+taskColumns, args...))

	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorConflict
	}
	return updated, r.mapError(err)
}

func (r *TaskRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

// SaveIdempotencyKey возвращает ErrorConflict, если ключ уже занят.
func (r *TaskRepo) SaveIdempotencyKey(ctx context.Context, key string, resourceID int64) error {
	cmd, err := r.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (key, resource_id) VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING
	`, key, resourceID)
	if err != nil {
		return r.mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrorConflict
	}
	return nil
}

func (r *TaskRepo) GetIdempotencyKey(ctx context.Context, key string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		SELECT resource_id from idempotency_keys WHERE key = $1
	`, key).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrorNotFound
	}
	return id, err
}

func (r *TaskRepo) GetStats(ctx context.Context, today civil.Date) (Stats, error) {
	stats := Stats{ByPriority: make(map[string]int)}

	err := r.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE finished),
		       count(*) FILTER (WHERE NOT finished AND due_date < $1),
		       count(*) FILTER (WHERE recurrence IS NOT NULL)
		FROM tasks
	`, today.In(time.UTC)).Scan(&stats.TotalTasks, &stats.Finished, &stats.Overdue, &stats.Recurring)
	if err != nil {
		return stats, err
	}
	stats.Open = stats.TotalTasks - stats.Finished

	rows, err := r.pool.Query(ctx, `
		SELECT priority, count(*)
		FROM tasks
		WHERE NOT finished
		GROUP BY priority
	`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p     int16
			count int
		)
		if err := rows.Scan(&p, &count); err != nil {
			return stats, err
		}
		stats.ByPriority[priorityKey(todotxt.Priority(p))] = count
	}
	return stats, rows.Err()
}

func (r *TaskRepo) insert(ctx context.Context, q querier, t model.Task) (model.Task, error) {
	return r.scanTask(q.QueryRow(ctx, insertTaskSQL, columnsOf(t)...))
}

func (r *TaskRepo) scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	if err := row.Scan(&t.ID, &t.Line, &t.Version, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return t, err
	}
	t.Todo = r.parser.Parse(t.Line)
	return t, nil
}

func (r *TaskRepo) collect(rows pgx.Rows, capacity int) ([]model.Task, error) {
	defer rows.Close()

	tasks := make([]model.Task, 0, capacity)
	for rows.Next() {
		t, err := r.scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepo) mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return ErrorConflict
		}
	}
	return err
}

// columnsOf раскладывает задачу в параметры insertTaskSQL ($1..$8).
func columnsOf(t model.Task) []any {
	todo := t.Todo

	var rec *string
	if todo.Recurrence != nil {
		s := todo.Recurrence.String()
		rec = &s
	}

	return []any{
		t.Line,
		int16(todo.Priority),
		todo.Finished,
		dateArg(todo.DueDate),
		dateArg(todo.ThresholdDate),
		rec,
		orEmpty(todo.Contexts),
		orEmpty(todo.Projects),
	}
}

func dateArg(d *civil.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.In(time.UTC)
	return &t
}

// orEmpty: в NOT NULL колонки массивов nil не передаём.
func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func priorityKey(p todotxt.Priority) string {
	if !p.Valid() {
		return "none"
	}
	return p.String()
}
