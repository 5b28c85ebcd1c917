package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTemporal(t *testing.T) {
	tests := []struct {
		name  string
		input TemporalInput
		want  TemporalExtent
	}{
		{
			name:  "single datetime",
			input: TemporalInput{Datetime: "2020-01-01"},
			want:  Instant{At: MustParseTimestamp("2020-01-01")},
		},
		{
			name:  "start only",
			input: TemporalInput{Start: "2020-01-01"},
			want:  Instant{At: MustParseTimestamp("2020-01-01")},
		},
		{
			name:  "end only",
			input: TemporalInput{End: "2020-06-01"},
			want:  Instant{At: MustParseTimestamp("2020-06-01")},
		},
		{
			name:  "equal endpoints collapse",
			input: TemporalInput{Start: "2020-01-01", End: "2020-01-01"},
			want:  Instant{At: MustParseTimestamp("2020-01-01")},
		},
		{
			name:  "same instant different spelling collapses",
			input: TemporalInput{Start: "2020-01-01", End: "2020-01-01T00:00:00Z"},
			want:  Instant{At: MustParseTimestamp("2020-01-01")},
		},
		{
			name:  "distinct endpoints",
			input: TemporalInput{Start: "2020-01-01", End: "2020-06-01"},
			want:  Interval{Start: MustParseTimestamp("2020-01-01"), End: MustParseTimestamp("2020-06-01")},
		},
		{
			name:  "datetime agreeing with collapsed pair",
			input: TemporalInput{Datetime: "2020-01-01T00:00:00Z", Start: "2020-01-01", End: "2020-01-01"},
			want:  Instant{At: MustParseTimestamp("2020-01-01T00:00:00Z")},
		},
		{
			name:  "datetime agreeing with start",
			input: TemporalInput{Datetime: "2020-01-01", Start: "2020-01-01"},
			want:  Instant{At: MustParseTimestamp("2020-01-01")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeTemporal(tt.input, true)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTemporalErrors(t *testing.T) {
	_, err := NormalizeTemporal(TemporalInput{}, true)
	require.ErrorIs(t, err, ErrInvalidInput)
	var invalid InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "datetime", invalid.Field)

	_, err = NormalizeTemporal(TemporalInput{Start: "2020-06-01", End: "2020-01-01"}, true)
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "end_datetime", invalid.Field)

	_, err = NormalizeTemporal(TemporalInput{Datetime: "yesterday"}, true)
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "datetime", invalid.Field)
}

func TestNormalizeTemporalConflicts(t *testing.T) {
	inputs := []TemporalInput{
		{Datetime: "2019-01-01", Start: "2020-01-01", End: "2020-06-01"},
		{Datetime: "2019-01-01", Start: "2020-01-01", End: "2020-01-01"},
		{Datetime: "2019-01-01", End: "2020-01-01"},
		{Datetime: "2020-01-01", Start: "2020-01-01", End: "2020-06-01"},
	}

	for _, in := range inputs {
		_, err := NormalizeTemporal(in, false)
		require.ErrorIs(t, err, ErrInvalidInput, "%+v", in)
		var invalid InvalidInputError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "datetime", invalid.Field)
		assert.Contains(t, invalid.FieldErrors()[0].Message, "conflicts")
	}
}

func TestNormalizeTemporalOptional(t *testing.T) {
	got, err := NormalizeTemporal(TemporalInput{Datetime: "  "}, false)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRangeInput(t *testing.T) {
	got, err := NormalizeTemporal(RangeInput{From: "2020-01-01", To: "2020-02-01"}.TemporalInput(), true)
	require.NoError(t, err)
	assert.IsType(t, Interval{}, got)

	got, err = NormalizeTemporal(RangeInput{From: "2020-01-01"}.TemporalInput(), true)
	require.NoError(t, err)
	assert.Equal(t, Instant{At: MustParseTimestamp("2020-01-01")}, got)
}

func TestTimestampKeepsSpelling(t *testing.T) {
	ts := MustParseTimestamp("2020-01-01T12:30:00+02:00")
	assert.Equal(t, "2020-01-01T12:30:00+02:00", ts.String())
	assert.Equal(t, 10, ts.Time().Hour())

	b, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.JSONEq(t, `"2020-01-01T12:30:00+02:00"`, string(b))

	var decoded Timestamp
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.True(t, decoded.Equal(ts))
}

func TestNewIntervalRejectsReversed(t *testing.T) {
	_, err := NewInterval(MustParseTimestamp("2020-02-01"), MustParseTimestamp("2020-01-01"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestToTemporalInputRoundTrip(t *testing.T) {
	for _, in := range []TemporalInput{
		{Datetime: "2020-01-01"},
		{Start: "2020-01-01", End: "2020-06-01T12:00:00Z"},
	} {
		ext, err := NormalizeTemporal(in, true)
		require.NoError(t, err)
		assert.Equal(t, in, ToTemporalInput(ext))
	}
	assert.Equal(t, TemporalInput{}, ToTemporalInput(nil))
}
