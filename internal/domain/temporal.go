package domain

import (
	"encoding/json"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// Timestamp keeps the caller's original spelling next to the parsed instant.
// Comparisons use the instant, serialization uses the spelling.
type Timestamp struct {
	raw string
	t   time.Time
}

func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Timestamp{raw: s, t: t.UTC()}, nil
		}
	}
	return Timestamp{}, InvalidInputError{Reason: "unrecognized timestamp " + `"` + s + `"`}
}

func MustParseTimestamp(s string) Timestamp {
	ts, err := ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return ts
}

func (ts Timestamp) String() string { return ts.raw }

func (ts Timestamp) Time() time.Time { return ts.t }

func (ts Timestamp) IsZero() bool { return ts.raw == "" }

func (ts Timestamp) Equal(o Timestamp) bool { return ts.t.Equal(o.t) }

func (ts Timestamp) Before(o Timestamp) bool { return ts.t.Before(o.t) }

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.raw)
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

// TemporalExtent is either an Instant or an Interval.
type TemporalExtent interface {
	isTemporalExtent()
}

type Instant struct {
	At Timestamp
}

// Interval always satisfies Start < End; build it with NewInterval.
type Interval struct {
	Start Timestamp
	End   Timestamp
}

func (Instant) isTemporalExtent()  {}
func (Interval) isTemporalExtent() {}

// NewInterval collapses equal endpoints into an Instant.
func NewInterval(start, end Timestamp) (TemporalExtent, error) {
	if end.Before(start) {
		return nil, InvalidInputError{
			Field:  "end_datetime",
			Reason: "end must not precede start",
		}
	}
	if end.Equal(start) {
		return Instant{At: start}, nil
	}
	return Interval{Start: start, End: end}, nil
}

// TemporalInput is the {datetime, start, end} submission shape.
type TemporalInput struct {
	Datetime string `json:"datetime,omitempty"`
	Start    string `json:"start_datetime,omitempty"`
	End      string `json:"end_datetime,omitempty"`
}

// RangeInput is the {from, to} shape produced by date range pickers.
type RangeInput struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

func (r RangeInput) TemporalInput() TemporalInput {
	return TemporalInput{Start: r.From, End: r.To}
}

// NormalizeTemporal maps an input to its canonical extent. A datetime is an
// Instant and must agree with any start or end sent alongside it. Otherwise
// distinct start and end make an Interval, and a single one an Instant. A nil
// extent is returned when nothing was supplied and required is false.
func NormalizeTemporal(in TemporalInput, required bool) (TemporalExtent, error) {
	datetime, err := parseOptional("datetime", in.Datetime)
	if err != nil {
		return nil, err
	}
	start, err := parseOptional("start_datetime", in.Start)
	if err != nil {
		return nil, err
	}
	end, err := parseOptional("end_datetime", in.End)
	if err != nil {
		return nil, err
	}

	if !datetime.IsZero() {
		for _, other := range []Timestamp{start, end} {
			if !other.IsZero() && !other.Equal(datetime) {
				return nil, InvalidInputError{
					Field:  "datetime",
					Reason: "datetime conflicts with start_datetime or end_datetime",
				}
			}
		}
		return Instant{At: datetime}, nil
	}

	switch {
	case !start.IsZero() && !end.IsZero():
		return NewInterval(start, end)
	case !start.IsZero():
		return Instant{At: start}, nil
	case !end.IsZero():
		return Instant{At: end}, nil
	}

	if required {
		return nil, InvalidInputError{Field: "datetime", Reason: "a date or date range is required"}
	}
	return nil, nil
}

func parseOptional(field, value string) (Timestamp, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Timestamp{}, nil
	}
	return parseField(field, value)
}

func parseField(field, value string) (Timestamp, error) {
	ts, err := ParseTimestamp(value)
	if err != nil {
		return Timestamp{}, InvalidInputError{Field: field, Reason: "unrecognized timestamp " + `"` + value + `"`}
	}
	return ts, nil
}

// ToTemporalInput is the inverse of NormalizeTemporal, keeping the original
// spellings.
func ToTemporalInput(ext TemporalExtent) TemporalInput {
	switch t := ext.(type) {
	case Instant:
		return TemporalInput{Datetime: t.At.String()}
	case Interval:
		return TemporalInput{Start: t.Start.String(), End: t.End.String()}
	default:
		return TemporalInput{}
	}
}
