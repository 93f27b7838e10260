package todotxt

import (
	"maps"
	"slices"
	"strings"
)

type tagPair struct {
	key, value string
}

// Format renders t in canonical todo.txt form.
func Format(t Task) string {
	return t.String()
}

// String renders the task header, subject and tags. Generic tags follow
// the due, threshold and recurrence tags in key order.
//
// When the subject would read back as part of the header ("x ", "(A) " or
// a date), the first tag is written in front of it instead.
func (t Task) String() string {
	var b strings.Builder
	b.Grow(len(t.Subject) + 32)
	t.writeHeader(&b)

	tags := t.tagPairs()
	if len(tags) > 0 && t.subjectReadsAsHeader(b.String()) {
		writeTag(&b, tags[0])
		b.WriteByte(' ')
		tags = tags[1:]
	}
	b.WriteString(t.Subject)
	writeTags(&b, tags, t.Subject == "")
	return b.String()
}

func (t Task) writeHeader(b *strings.Builder) {
	if t.Finished {
		b.WriteString(finishedMarker)
		if t.FinishDate != nil {
			b.WriteString(t.FinishDate.String())
			b.WriteByte(' ')
		}
	}
	if t.Priority.Valid() {
		b.WriteByte('(')
		b.WriteByte(t.Priority.Letter())
		b.WriteString(") ")
	}
	if t.CreateDate != nil {
		b.WriteString(t.CreateDate.String())
		b.WriteByte(' ')
	}
}

// subjectReadsAsHeader reports whether parsing header followed by the
// subject would consume part of the subject as header fields.
func (t Task) subjectReadsAsHeader(header string) bool {
	if t.Subject == "" {
		return false
	}
	switch c := t.Subject[0]; {
	case c == 'x', c == '(', '0' <= c && c <= '9':
	default:
		return false
	}
	var reread Task
	rest := reread.parseHeader(header + t.Subject)
	return len(rest) < len(t.Subject)
}

// tagPairs lists the tags in output order: due, t, rec, then generic tags
// sorted by key.
func (t Task) tagPairs() []tagPair {
	tags := make([]tagPair, 0, 3+len(t.Tags))
	if t.DueDate != nil {
		tags = append(tags, tagPair{tagDue, t.DueDate.String()})
	}
	if t.ThresholdDate != nil {
		tags = append(tags, tagPair{tagThreshold, t.ThresholdDate.String()})
	}
	if t.Recurrence != nil {
		tags = append(tags, tagPair{tagRec, t.Recurrence.String()})
	}
	for _, key := range slices.Sorted(maps.Keys(t.Tags)) {
		tags = append(tags, tagPair{key, t.Tags[key]})
	}
	return tags
}

// writeTags writes tags separated by spaces. Unless first is set, a space
// also precedes the first tag.
func writeTags(b *strings.Builder, tags []tagPair, first bool) {
	for _, tag := range tags {
		if !first {
			b.WriteByte(' ')
		}
		first = false
		writeTag(b, tag)
	}
}

func writeTag(b *strings.Builder, tag tagPair) {
	b.WriteString(tag.key)
	b.WriteByte(':')
	b.WriteString(tag.value)
}
