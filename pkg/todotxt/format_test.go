package todotxt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTask_String(t *testing.T) {
	tests := []struct {
		name string
		task Task
		want string
	}{
		{
			name: "subject only",
			task: Task{Subject: "buy milk", Priority: NoPriority},
			want: "buy milk",
		},
		{
			name: "full header",
			task: Task{
				Subject:    "call mom",
				Priority:   0,
				Finished:   true,
				FinishDate: date("2016-03-28"),
				CreateDate: date("2016-03-24"),
			},
			want: "x 2016-03-28 (A) 2016-03-24 call mom",
		},
		{
			name: "finish date ignored for open task",
			task: Task{Subject: "call mom", Priority: NoPriority, FinishDate: date("2016-03-28")},
			want: "call mom",
		},
		{
			name: "fixed tag order",
			task: Task{
				Subject:       "report",
				Priority:      NoPriority,
				Recurrence:    &Recurrence{Interval: Monthly, Period: 1},
				ThresholdDate: date("2016-04-01"),
				DueDate:       date("2016-04-05"),
				Tags:          map[string]string{"zone": "b", "area": "a", "mid": "c"},
			},
			want: "report due:2016-04-05 t:2016-04-01 rec:1m area:a mid:c zone:b",
		},
		{
			name: "tags without subject",
			task: Task{Priority: 3, DueDate: date("2016-04-05")},
			want: "(D) due:2016-04-05",
		},
		{
			name: "zero value has priority A",
			task: Task{Subject: "x"},
			want: "(A) x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.String())
			assert.Equal(t, tt.want, Format(tt.task))
		})
	}
}

func TestPriority_Text(t *testing.T) {
	assert.Equal(t, "A", Priority(0).String())
	assert.Equal(t, "Z", Priority(25).String())
	assert.Equal(t, "", NoPriority.String())
	assert.False(t, NoPriority.Valid())

	var p Priority
	require.NoError(t, p.UnmarshalText([]byte("C")))
	assert.Equal(t, Priority(2), p)
	require.NoError(t, p.UnmarshalText(nil))
	assert.Equal(t, NoPriority, p)
	assert.Error(t, p.UnmarshalText([]byte("c")))
	assert.Error(t, p.UnmarshalText([]byte("AB")))
}

func TestTask_JSON(t *testing.T) {
	task := Parse("(B) 2016-03-24 call @phone due:2016-04-01 rec:+1w at:20:00")

	data, err := json.Marshal(task)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"subject": "call @phone",
		"priority": "B",
		"create_date": "2016-03-24",
		"finished": false,
		"due_date": "2016-04-01",
		"recurrence": "+1w",
		"contexts": ["phone"],
		"tags": {"at": "20:00"}
	}`, string(data))

	var decoded Task
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, task, decoded)
}

func TestTask_YAML(t *testing.T) {
	task := Parse("2016-03-24 call +family rec:2w")

	data, err := yaml.Marshal(task)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "subject: call +family")
	assert.Regexp(t, `create_date: "?2016-03-24"?`, out)
	assert.Contains(t, out, "recurrence: 2w")
	assert.Contains(t, out, "- family")
}
