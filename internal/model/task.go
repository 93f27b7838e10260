package model

import (
	"time"

	"github.com/BuzzLyutic/todotxt-api/pkg/todotxt"
)

// Task - сохранённая строка todo.txt. Line всегда в канонической форме,
// Todo - её разобранное представление.
type Task struct {
	ID        int64        `json:"id"`
	Line      string       `json:"line"`
	Todo      todotxt.Task `json:"todo"`
	Version   int          `json:"version"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// LineRequest - тело запросов на создание и изменение.
type LineRequest struct {
	Line    string `json:"line"`
	Version int    `json:"version,omitempty"`
}

type TaskFilter struct {
	Context  *string
	Project  *string
	Finished *bool
}

// ImportResult - сколько строк файла todo.txt сохранено и пропущено.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
