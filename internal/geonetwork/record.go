package geonetwork

import (
	"encoding/json"
)

// StringList decodes fields that GeoNetwork sends either as a single string
// or as an array of strings.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = StringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

func (l StringList) First() string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}

type Info struct {
	UUID string `json:"uuid"`
	ID   string `json:"id,omitempty"`
}

// Record is one entry of a GeoNetwork "q" search response.
type Record struct {
	Identifier      string     `json:"identifier"`
	Title           string     `json:"title"`
	Abstract        string     `json:"abstract"`
	GeoBox          StringList `json:"geoBox,omitempty"`
	TempExtentBegin string     `json:"tempExtentBegin,omitempty"`
	TempExtentEnd   string     `json:"tempExtentEnd,omitempty"`
	RevisionDate    StringList `json:"revisionDate,omitempty"`
	Keyword         StringList `json:"keyword,omitempty"`
	Info            *Info      `json:"geonet:info,omitempty"`
}

// SearchResponse is the body of /srv/eng/q with _content_type=json.
type SearchResponse struct {
	Summary  json.RawMessage `json:"summary,omitempty"`
	Metadata []Record        `json:"metadata"`
}

// UnmarshalJSON accepts a single object where GeoNetwork returns one hit.
func (r *SearchResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Summary  json.RawMessage `json:"summary,omitempty"`
		Metadata json.RawMessage `json:"metadata"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Summary = raw.Summary
	r.Metadata = nil
	if len(raw.Metadata) == 0 || string(raw.Metadata) == "null" {
		return nil
	}
	if raw.Metadata[0] == '{' {
		var one Record
		if err := json.Unmarshal(raw.Metadata, &one); err != nil {
			return err
		}
		r.Metadata = []Record{one}
		return nil
	}
	return json.Unmarshal(raw.Metadata, &r.Metadata)
}
