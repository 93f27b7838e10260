package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todotxt-api/internal/model"
	"github.com/BuzzLyutic/todotxt-api/internal/repo"
	"github.com/BuzzLyutic/todotxt-api/pkg/todotxt"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrAlreadyFinished = errors.New("task already finished")
)

const (
	defaultLimit = 20
	maxLimit     = 100
	maxLineBytes = 64 * 1024
)

type TaskService struct {
	repo   repo.TaskRepository
	parser todotxt.Parser
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*TaskService)

// WithClock подменяет источник текущей даты (для тестов).
func WithClock(now func() time.Time) Option {
	return func(s *TaskService) { s.now = now }
}

func NewTaskService(repo repo.TaskRepository, parser todotxt.Parser, logger *zap.Logger, opts ...Option) *TaskService {
	s := &TaskService{
		repo:   repo,
		parser: parser,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parse разбирает строку без сохранения.
func (s *TaskService) Parse(line string) (todotxt.Task, error) {
	if err := validateSingleLine(line); err != nil {
		return todotxt.Task{}, err
	}
	return s.parser.Parse(line), nil
}

func (s *TaskService) Create(ctx context.Context, line string, idempKey string) (model.Task, error) {
	if err := validateLine(line); err != nil {
		return model.Task{}, err
	}

	if idempKey != "" { // если ключ с ресурсом уже существует, мы не создаем его еще раз
		if existingID, err := s.repo.GetIdempotencyKey(ctx, idempKey); err == nil {
			return s.repo.Get(ctx, existingID)
		}
	}

	created, err := s.repo.Create(ctx, s.canonical(line))
	if err != nil {
		return created, err
	}

	if idempKey != "" {
		if err := s.repo.SaveIdempotencyKey(ctx, idempKey, created.ID); err != nil {
			if !errors.Is(err, repo.ErrorConflict) {
				return created, err
			}
			// ключ успел занять параллельный запрос, наша копия лишняя
			return s.resolveIdempotencyRace(ctx, idempKey, created.ID)
		}
	}

	s.logger.Debug("task created", zap.Int64("task_id", created.ID), zap.String("line", created.Line))
	return created, nil
}

func (s *TaskService) resolveIdempotencyRace(ctx context.Context, key string, duplicateID int64) (model.Task, error) {
	if err := s.repo.Delete(ctx, duplicateID); err != nil && !errors.Is(err, repo.ErrorNotFound) {
		return model.Task{}, err
	}
	existingID, err := s.repo.GetIdempotencyKey(ctx, key)
	if err != nil {
		return model.Task{}, err
	}
	return s.repo.Get(ctx, existingID)
}

func (s *TaskService) Get(ctx context.Context, id int64) (model.Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *TaskService) List(ctx context.Context, filter model.TaskFilter, limit int) ([]model.Task, error) {
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	return s.repo.List(ctx, filter, limit)
}

func (s *TaskService) Update(ctx context.Context, id int64, line string, version int) (model.Task, error) {
	if err := validateLine(line); err != nil {
		return model.Task{}, err
	}

	t := s.canonical(line)
	t.ID = id
	t.Version = version
	return s.repo.Update(ctx, t)
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Complete завершает задачу текущей датой. Следующее повторение
// создаёт пул воркеров.
func (s *TaskService) Complete(ctx context.Context, id int64) (model.Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return t, err
	}
	if t.Todo.Finished {
		return t, ErrAlreadyFinished
	}

	done := t.Todo.Complete(s.today())
	t.Line = done.String()
	t.Todo = s.parser.Parse(t.Line)

	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		return updated, err
	}

	s.logger.Info("task completed",
		zap.Int64("task_id", updated.ID),
		zap.Bool("recurring", updated.Todo.Recurrence != nil),
	)
	return updated, nil
}

// Import сохраняет все непустые строки todo.txt одной пачкой.
func (s *TaskService) Import(ctx context.Context, r io.Reader) (model.ImportResult, error) {
	var (
		res   model.ImportResult
		tasks []model.Task
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			res.Skipped++
			continue
		}
		tasks = append(tasks, s.canonical(line))
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return res, fmt.Errorf("%w: line longer than %d bytes", ErrValidation, maxLineBytes)
		}
		return res, fmt.Errorf("read todo.txt: %w", err)
	}

	created, err := s.repo.CreateMany(ctx, tasks)
	if err != nil {
		return res, err
	}
	res.Imported = len(created)

	s.logger.Info("todo.txt imported", zap.Int("imported", res.Imported), zap.Int("skipped", res.Skipped))
	return res, nil
}

// Export пишет все задачи в формате todo.txt, по строке на задачу.
func (s *TaskService) Export(ctx context.Context, w io.Writer) error {
	tasks, err := s.repo.ListAll(ctx)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	for _, t := range tasks {
		bw.WriteString(t.Line)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func (s *TaskService) GetStats(ctx context.Context) (repo.Stats, error) {
	return s.repo.GetStats(ctx, s.today())
}

// canonical приводит строку к канонической записи; разобранное
// представление строится из неё же, как при чтении из БД.
func (s *TaskService) canonical(line string) model.Task {
	canon := todotxt.Parse(line).String()
	return model.Task{Line: canon, Todo: s.parser.Parse(canon)}
}

func (s *TaskService) today() civil.Date {
	return civil.DateOf(s.now())
}

func validateLine(line string) error {
	if strings.TrimSpace(line) == "" {
		return fmt.Errorf("%w: line is empty", ErrValidation)
	}
	return validateSingleLine(line)
}

func validateSingleLine(line string) error {
	if strings.ContainsAny(line, "\r\n") {
		return fmt.Errorf("%w: line contains a line break", ErrValidation)
	}
	return nil
}
