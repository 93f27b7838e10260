package todotxt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecurrence(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Recurrence
		wantErr error
	}{
		{
			name:  "hard weekly",
			input: "+1w",
			want:  Recurrence{Interval: Weekly, Hard: true, Period: 1},
		},
		{
			name:  "soft daily",
			input: "10d",
			want:  Recurrence{Interval: Daily, Period: 10},
		},
		{
			name:  "business days",
			input: "3b",
			want:  Recurrence{Interval: BusinessDaily, Period: 3},
		},
		{
			name:  "monthly",
			input: "+2m",
			want:  Recurrence{Interval: Monthly, Hard: true, Period: 2},
		},
		{
			name:  "yearly",
			input: "1y",
			want:  Recurrence{Interval: Yearly, Period: 1},
		},
		{
			name:    "empty",
			input:   "",
			wantErr: ErrEmptyRecurrence,
		},
		{
			name:    "suffix only",
			input:   "w",
			wantErr: ErrEmptyNumber,
		},
		{
			name:    "plus only",
			input:   "+",
			wantErr: ErrEmptyNumber,
		},
		{
			name:    "hard suffix only",
			input:   "+d",
			wantErr: ErrEmptyNumber,
		},
		{
			name:    "unknown suffix",
			input:   "1x",
			wantErr: ErrInvalidSuffix,
		},
		{
			name:    "uppercase suffix",
			input:   "1W",
			wantErr: ErrInvalidSuffix,
		},
		{
			name:    "number without suffix",
			input:   "12",
			wantErr: ErrInvalidSuffix,
		},
		{
			name:    "not a number",
			input:   "1.5d",
			wantErr: ErrInvalidNumber,
		},
		{
			name:    "negative",
			input:   "-1d",
			wantErr: ErrInvalidNumber,
		},
		{
			name:    "double plus",
			input:   "++1d",
			wantErr: ErrInvalidNumber,
		},
		{
			name:    "zero period",
			input:   "0d",
			wantErr: ErrOutOfRange,
		},
		{
			name:    "overflow",
			input:   "70000d",
			wantErr: ErrOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecurrence(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecurrence_String(t *testing.T) {
	for _, s := range []string{"+1w", "10d", "3b", "+12m", "1y", "65535d"} {
		t.Run(s, func(t *testing.T) {
			r, err := ParseRecurrence(s)
			require.NoError(t, err)
			assert.Equal(t, s, r.String())
			assert.Equal(t, "rec:"+s, r.Tag())
		})
	}
}

func TestRecurrence_JSON(t *testing.T) {
	type wrapper struct {
		Rec *Recurrence `json:"rec"`
	}

	data, err := json.Marshal(wrapper{Rec: &Recurrence{Interval: Monthly, Hard: true, Period: 3}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rec":"+3m"}`, string(data))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"rec":"2w"}`), &w))
	require.NotNil(t, w.Rec)
	assert.Equal(t, Recurrence{Interval: Weekly, Period: 2}, *w.Rec)

	err = json.Unmarshal([]byte(`{"rec":"2q"}`), &w)
	assert.ErrorIs(t, err, ErrInvalidSuffix)
}

func TestInterval_String(t *testing.T) {
	assert.Equal(t, "weekly", Weekly.String())
	assert.Equal(t, "business-daily", BusinessDaily.String())
	assert.Equal(t, "unknown", Interval(0).String())
	assert.Equal(t, byte('y'), Yearly.Suffix())
}
