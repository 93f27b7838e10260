package todotxt

import (
	"errors"
	"fmt"
	"strconv"
)

// Interval is the unit a recurrence advances by.
type Interval uint8

const (
	Daily Interval = iota + 1
	BusinessDaily
	Weekly
	Monthly
	Yearly
)

var intervalSuffixes = map[byte]Interval{
	'd': Daily,
	'b': BusinessDaily,
	'w': Weekly,
	'm': Monthly,
	'y': Yearly,
}

// Suffix returns the letter that selects the interval in a rec: tag.
func (i Interval) Suffix() byte {
	switch i {
	case Daily:
		return 'd'
	case BusinessDaily:
		return 'b'
	case Weekly:
		return 'w'
	case Monthly:
		return 'm'
	case Yearly:
		return 'y'
	}
	return '?'
}

func (i Interval) String() string {
	switch i {
	case Daily:
		return "daily"
	case BusinessDaily:
		return "business-daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Yearly:
		return "yearly"
	}
	return "unknown"
}

var (
	ErrEmptyRecurrence = errors.New("empty recurrence")
	ErrEmptyNumber     = errors.New("recurrence period is empty")
	ErrInvalidNumber   = errors.New("recurrence period is not a number")
	ErrOutOfRange      = errors.New("recurrence period out of range")
	ErrInvalidSuffix   = errors.New("unknown recurrence interval")
)

// Recurrence is the value of a rec: tag, e.g. "+1w" or "10d".
//
// A hard recurrence schedules the next occurrence from the due date,
// a soft one from the completion date.
type Recurrence struct {
	Interval Interval
	Hard     bool
	Period   uint16
}

// ParseRecurrence reads a recurrence in the form [+]<digits><d|b|w|m|y>.
func ParseRecurrence(s string) (Recurrence, error) {
	if s == "" {
		return Recurrence{}, ErrEmptyRecurrence
	}

	var r Recurrence
	body := s
	if body[0] == '+' {
		r.Hard = true
		body = body[1:]
	}
	if body == "" {
		return Recurrence{}, fmt.Errorf("parse recurrence %q: %w", s, ErrEmptyNumber)
	}

	interval, ok := intervalSuffixes[body[len(body)-1]]
	if !ok {
		return Recurrence{}, fmt.Errorf("parse recurrence %q: %w", s, ErrInvalidSuffix)
	}
	digits := body[:len(body)-1]
	if digits == "" {
		return Recurrence{}, fmt.Errorf("parse recurrence %q: %w", s, ErrEmptyNumber)
	}

	n, err := strconv.ParseUint(digits, 10, 16)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return Recurrence{}, fmt.Errorf("parse recurrence %q: %w", s, ErrOutOfRange)
		}
		return Recurrence{}, fmt.Errorf("parse recurrence %q: %w", s, ErrInvalidNumber)
	}
	if n == 0 {
		return Recurrence{}, fmt.Errorf("parse recurrence %q: %w", s, ErrOutOfRange)
	}

	r.Interval = interval
	r.Period = uint16(n)
	return r, nil
}

// String renders the recurrence without the tag key.
func (r Recurrence) String() string {
	b := make([]byte, 0, 8)
	if r.Hard {
		b = append(b, '+')
	}
	b = strconv.AppendUint(b, uint64(r.Period), 10)
	b = append(b, r.Interval.Suffix())
	return string(b)
}

// Tag renders the recurrence as a rec: tag.
func (r Recurrence) Tag() string {
	return tagRec + ":" + r.String()
}

func (r Recurrence) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Recurrence) UnmarshalText(text []byte) error {
	parsed, err := ParseRecurrence(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
