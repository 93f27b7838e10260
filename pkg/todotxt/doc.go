// Package todotxt parses and renders single lines of the todo.txt format.
//
// A line carries an optional completion marker and finish date, a priority,
// a creation date and a free-text subject with embedded tokens:
//
//	x 2016-03-28 (A) 2016-03-24 call mom @phone +family due:2016-04-01 rec:+1w
//
// Parse never fails: fields whose value cannot be read are left empty.
// Task.String renders the canonical form back, with due, threshold and
// recurrence tags first and the remaining key:value tags in key order.
package todotxt
