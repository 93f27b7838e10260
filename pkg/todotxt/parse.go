package todotxt

import (
	"strings"

	"cloud.google.com/go/civil"
)

const (
	finishedMarker = "x "
	priorityLen    = len("(A) ")

	tagDue       = "due"
	tagThreshold = "t"
	tagRec       = "rec"
)

// reservedTags maps the keys promoted to dedicated fields to their setters.
// A value that fails to parse clears the field.
var reservedTags = map[string]func(t *Task, value string){
	tagDue: func(t *Task, value string) {
		t.DueDate = optionalDate(value)
	},
	tagThreshold: func(t *Task, value string) {
		t.ThresholdDate = optionalDate(value)
	},
	tagRec: func(t *Task, value string) {
		t.Recurrence = nil
		if r, err := ParseRecurrence(value); err == nil {
			t.Recurrence = &r
		}
	},
}

// Parser turns todo.txt lines into Task records.
type Parser struct {
	// KeepLine stores the source line in Task.Line.
	KeepLine bool
}

// Parse parses a line with the default Parser.
func Parse(line string) Task {
	return Parser{}.Parse(line)
}

// Parse decomposes line into a Task. It never fails; unreadable dates and
// recurrences are left unset.
func (p Parser) Parse(line string) Task {
	var t Task
	if p.KeepLine {
		t.Line = strings.Clone(line)
	}
	rest := t.parseHeader(line)
	t.scan(rest)
	return t
}

// parseHeader consumes the completion marker, finish date, priority and
// creation date, returning the remainder of the line.
func (t *Task) parseHeader(s string) string {
	var finish *civil.Date
	if strings.HasPrefix(s, finishedMarker) {
		t.Finished = true
		s = s[len(finishedMarker):]
		if d, ok := dateHeader(s); ok {
			finish = &d
			s = s[dateLen+1:]
		}
	}

	t.Priority = NoPriority
	if p, ok := priorityHeader(s); ok {
		t.Priority = p
		s = s[priorityLen:]
	}

	if d, ok := dateHeader(s); ok {
		t.CreateDate = &d
		s = s[dateLen+1:]
	}

	// Without a priority in between, "x <date> " followed by no second date
	// is a completed task with a creation date, not a finish date.
	if !t.Priority.Valid() && finish != nil && t.CreateDate == nil {
		t.CreateDate, finish = finish, nil
	}
	t.FinishDate = finish
	return s
}

func priorityHeader(s string) (Priority, bool) {
	if len(s) < priorityLen || s[0] != '(' || s[2] != ')' || s[3] != ' ' {
		return NoPriority, false
	}
	if c := s[1]; c >= 'A' && c <= 'Z' {
		return Priority(c - 'A'), true
	}
	return NoPriority, false
}

type scanState uint8

const (
	stateInit scanState = iota
	stateContext
	stateProject
	stateHashtag
	stateTagKey
	stateTagValue
)

func isTagKeyStart(c byte) bool {
	return 'a' <= c && c <= 'z'
}

// scanner walks the body of a line once, collecting tokens and rebuilding
// the subject without its key:value tags.
type scanner struct {
	task  *Task
	src   string
	state scanState
	start int // marker byte of a context/project/hashtag, first byte of a tag key
	colon int

	subject []byte
	mark    int // start of src not yet copied into subject
}

func (t *Task) scan(s string) {
	sc := scanner{task: t, src: s, subject: make([]byte, 0, len(s))}
	for i := 0; i < len(s); i++ {
		sc.step(i, s[i])
	}
	sc.close(len(s))
	sc.subject = append(sc.subject, s[sc.mark:]...)
	t.Subject = string(sc.subject)
}

func (sc *scanner) step(i int, c byte) {
	switch sc.state {
	case stateInit:
		switch {
		case c == '@':
			sc.begin(stateContext, i)
		case c == '+':
			sc.begin(stateProject, i)
		case c == '#':
			sc.begin(stateHashtag, i)
		case isTagKeyStart(c):
			sc.begin(stateTagKey, i)
		}
	case stateTagKey:
		switch c {
		case ':':
			sc.state = stateTagValue
			sc.colon = i
		case ' ':
			sc.state = stateInit
		}
	default:
		if c == ' ' {
			sc.close(i)
		}
	}
}

func (sc *scanner) begin(state scanState, i int) {
	sc.state = state
	sc.start = i
}

// close ends the pending token at end, which is a space or the end of src.
func (sc *scanner) close(end int) {
	t := sc.task
	switch sc.state {
	case stateContext:
		t.Contexts = appendToken(t.Contexts, sc.src[sc.start+1:end])
	case stateProject:
		t.Projects = appendToken(t.Projects, sc.src[sc.start+1:end])
	case stateHashtag:
		t.Hashtags = appendToken(t.Hashtags, sc.src[sc.start+1:end])
	case stateTagValue:
		sc.tag(sc.src[sc.start:sc.colon], sc.src[sc.colon+1:end])
		sc.cut(end)
	}
	sc.state = stateInit
}

func (sc *scanner) tag(key, value string) {
	if set, ok := reservedTags[key]; ok {
		set(sc.task, value)
		return
	}
	if sc.task.Tags == nil {
		sc.task.Tags = make(map[string]string)
	}
	sc.task.Tags[strings.Clone(key)] = strings.Clone(value)
}

// cut drops src[start:end] from the subject along with one separating
// space: the one before the tag, or the one after it when nothing precedes.
func (sc *scanner) cut(end int) {
	sc.subject = append(sc.subject, sc.src[sc.mark:sc.start]...)
	sc.mark = end
	switch n := len(sc.subject); {
	case n > 0 && sc.subject[n-1] == ' ':
		sc.subject = sc.subject[:n-1]
	case n == 0 && end < len(sc.src):
		sc.mark = end + 1
	}
}

func appendToken(tokens []string, tok string) []string {
	if tok == "" {
		return tokens
	}
	return append(tokens, strings.Clone(tok))
}
