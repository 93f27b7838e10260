package todotxt

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"cloud.google.com/go/civil"
)

// Priority is a todo.txt priority, 0 for (A) through 25 for (Z).
type Priority uint8

// NoPriority marks a task without a priority.
const NoPriority Priority = 26

// Valid reports whether p is one of (A) through (Z).
func (p Priority) Valid() bool {
	return p < NoPriority
}

// Letter returns the priority letter, or 0 if there is none.
func (p Priority) Letter() byte {
	if !p.Valid() {
		return 0
	}
	return 'A' + byte(p)
}

func (p Priority) String() string {
	if !p.Valid() {
		return ""
	}
	return string(p.Letter())
}

func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Priority) UnmarshalText(text []byte) error {
	switch {
	case len(text) == 0:
		*p = NoPriority
	case len(text) == 1 && text[0] >= 'A' && text[0] <= 'Z':
		*p = Priority(text[0] - 'A')
	default:
		return fmt.Errorf("invalid priority %q", text)
	}
	return nil
}

// Task is one parsed todo.txt line.
type Task struct {
	// Line is the source line; set only by a Parser with KeepLine.
	Line string `json:"line,omitempty" yaml:"line,omitempty"`
	// Subject is the text after the header with key:value tags removed.
	Subject  string   `json:"subject" yaml:"subject"`
	Priority Priority `json:"priority" yaml:"priority"`

	CreateDate *civil.Date `json:"create_date,omitempty" yaml:"create_date,omitempty"`
	FinishDate *civil.Date `json:"finish_date,omitempty" yaml:"finish_date,omitempty"`
	Finished   bool        `json:"finished" yaml:"finished"`

	ThresholdDate *civil.Date `json:"threshold_date,omitempty" yaml:"threshold_date,omitempty"`
	DueDate       *civil.Date `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Recurrence    *Recurrence `json:"recurrence,omitempty" yaml:"recurrence,omitempty"`

	Contexts []string          `json:"contexts,omitempty" yaml:"contexts,omitempty"`
	Projects []string          `json:"projects,omitempty" yaml:"projects,omitempty"`
	Hashtags []string          `json:"hashtags,omitempty" yaml:"hashtags,omitempty"`
	Tags     map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Body returns everything after the header, tags included.
func (t Task) Body() string {
	if t.Line != "" {
		if n := t.headerLen(); n <= len(t.Line) {
			return t.Line[n:]
		}
	}
	var b strings.Builder
	b.WriteString(t.Subject)
	writeTags(&b, t.tagPairs(), t.Subject == "")
	return b.String()
}

// HasContext reports whether the task carries @name.
func (t Task) HasContext(name string) bool {
	return slices.Contains(t.Contexts, name)
}

// HasProject reports whether the task carries +name.
func (t Task) HasProject(name string) bool {
	return slices.Contains(t.Projects, name)
}

// Complete returns a finished copy of the task.
//
// The finish date is kept only when a creation date or a priority follows
// it in the rendered line; a lone date after "x " reads back as the
// creation date.
func (t Task) Complete(on civil.Date) Task {
	done := t.clone()
	done.Finished = true
	done.FinishDate = nil
	if t.CreateDate != nil || t.Priority.Valid() {
		done.FinishDate = &on
	}
	return done
}

// headerLen is the byte length of the completion, priority and creation
// date prefix the parser consumed.
func (t Task) headerLen() int {
	n := 0
	if t.Finished {
		n += len(finishedMarker)
	}
	if t.FinishDate != nil {
		n += dateLen + 1
	}
	if t.Priority.Valid() {
		n += priorityLen
	}
	if t.CreateDate != nil {
		n += dateLen + 1
	}
	return n
}

func (t Task) clone() Task {
	c := t
	c.Line = ""
	c.CreateDate = copyDate(t.CreateDate)
	c.FinishDate = copyDate(t.FinishDate)
	c.ThresholdDate = copyDate(t.ThresholdDate)
	c.DueDate = copyDate(t.DueDate)
	if t.Recurrence != nil {
		r := *t.Recurrence
		c.Recurrence = &r
	}
	c.Contexts = slices.Clone(t.Contexts)
	c.Projects = slices.Clone(t.Projects)
	c.Hashtags = slices.Clone(t.Hashtags)
	c.Tags = maps.Clone(t.Tags)
	return c
}
