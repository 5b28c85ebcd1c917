package geonetwork

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/catalog"
	"github.com/totegamma/catalog/internal/domain"
	"github.com/totegamma/catalog/internal/stac"
)

const baseURL = "https://catalog.example.com"

func newTestTranslator(t *testing.T, policy domain.BoxPolicy) *Translator {
	t.Helper()
	v, err := stac.NewSchemaValidator(catalog.SpecVersion)
	require.NoError(t, err)
	return NewTranslator(stac.NewEmitter(v), policy)
}

func TestTranslateSingleDay(t *testing.T) {
	tr := newTestTranslator(t, domain.BoxPolicyFirst)
	rec := Record{
		Identifier:      "X1",
		GeoBox:          StringList{"4.0|52.0|5.0|53.0"},
		TempExtentBegin: "2020-01-01",
		TempExtentEnd:   "2020-01-01",
	}

	result, err := tr.Translate(rec, baseURL)
	require.NoError(t, err)
	require.True(t, result.IsValid(), "errors: %v", result.Errors())

	item, _ := result.Item()
	assert.Equal(t, "X1", item.ID)
	assert.Equal(t, [][][2]float64{{{4, 52}, {5, 52}, {5, 53}, {4, 53}, {4, 52}}}, item.Geometry.Coordinates)
	assert.Equal(t, "2020-01-01", item.Properties["datetime"])
	assert.NotContains(t, item.Properties, "start_datetime")
	assert.NotContains(t, item.Properties, "end_datetime")
}

func TestTranslateInterval(t *testing.T) {
	tr := newTestTranslator(t, domain.BoxPolicyFirst)
	rec := Record{
		Identifier:      "X1",
		GeoBox:          StringList{"4.0|52.0|5.0|53.0"},
		TempExtentBegin: "2020-01-01",
		TempExtentEnd:   "2020-06-01",
	}

	result, err := tr.Translate(rec, baseURL)
	require.NoError(t, err)
	require.True(t, result.IsValid(), "errors: %v", result.Errors())

	item, _ := result.Item()
	assert.NotContains(t, item.Properties, "datetime")
	assert.Equal(t, "2020-01-01", item.Properties["start_datetime"])
	assert.Equal(t, "2020-06-01", item.Properties["end_datetime"])
}

func TestTranslateRevisionDateFallback(t *testing.T) {
	tr := newTestTranslator(t, domain.BoxPolicyFirst)
	rec := Record{
		Identifier:    "X2",
		TempExtentEnd: "2021-01-01",
		RevisionDate:  StringList{"2019-03-04", "2019-05-06"},
	}

	result, err := tr.Translate(rec, baseURL)
	require.NoError(t, err)
	require.True(t, result.IsValid(), "errors: %v", result.Errors())

	item, _ := result.Item()
	assert.Equal(t, "2019-03-04", item.Properties["datetime"])
	assert.Nil(t, item.Geometry)
}

func TestTranslateMissingIdentifier(t *testing.T) {
	tr := newTestTranslator(t, domain.BoxPolicyFirst)

	_, err := tr.Translate(Record{Identifier: "  ", TempExtentBegin: "2020-01-01"}, baseURL)
	assert.ErrorIs(t, err, domain.ErrMissingIdentifier)
}

func TestTranslateMalformedBox(t *testing.T) {
	tr := newTestTranslator(t, domain.BoxPolicyFirst)

	_, err := tr.Translate(Record{Identifier: "X3", GeoBox: StringList{"4|52|x|53"}, TempExtentBegin: "2020-01-01"}, baseURL)
	assert.ErrorIs(t, err, domain.ErrMalformedGeometryInput)
}

func TestTranslateWithoutDateIsInvalid(t *testing.T) {
	tr := newTestTranslator(t, domain.BoxPolicyFirst)

	result, err := tr.Translate(Record{Identifier: "X4"}, baseURL)
	require.NoError(t, err)
	assert.False(t, result.IsValid())
	assert.ErrorIs(t, result.Err(), domain.ErrSpecValidation)
}

func TestTranslateBoxPolicies(t *testing.T) {
	rec := Record{
		Identifier:      "X5",
		GeoBox:          StringList{"4|52|5|53", "6|50|7|51"},
		TempExtentBegin: "2020-01-01",
	}

	first, err := newTestTranslator(t, domain.BoxPolicyFirst).Canonical(rec, baseURL)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 52, 5, 53}, first.Geometry.BBox())

	envelope, err := newTestTranslator(t, domain.BoxPolicyEnvelope).Canonical(rec, baseURL)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 50, 7, 53}, envelope.Geometry.BBox())
}

func TestCanonicalSelfLink(t *testing.T) {
	tr := newTestTranslator(t, domain.BoxPolicyFirst)

	withUUID, err := tr.Canonical(Record{Identifier: "X6", Info: &Info{UUID: "b1f2"}}, baseURL)
	require.NoError(t, err)
	require.Len(t, withUUID.Links, 1)
	assert.Equal(t, "self", withUUID.Links[0].Rel)
	assert.Equal(t, baseURL+"/items/b1f2", withUUID.Links[0].Href)

	withoutUUID, err := tr.Canonical(Record{Identifier: "X6"}, baseURL+"/")
	require.NoError(t, err)
	assert.Equal(t, baseURL+"/items/X6", withoutUUID.Links[0].Href)
}

func TestCanonicalKeywords(t *testing.T) {
	tr := newTestTranslator(t, domain.BoxPolicyFirst)

	rec, err := tr.Canonical(Record{Identifier: "X7", Keyword: StringList{"ocean", " ocean ", "", "tide"}}, baseURL)
	require.NoError(t, err)
	assert.Equal(t, []string{"ocean", "tide"}, rec.Keywords)
}

func TestDecodeSearchResponse(t *testing.T) {
	body := `{
		"summary": {"@count": "2"},
		"metadata": [
			{"identifier": "a", "title": "A", "geoBox": "4|52|5|53", "revisionDate": "2020-01-01", "geonet:info": {"uuid": "u-a"}},
			{"identifier": "b", "geoBox": ["1|2|3|4", "5|6|7|8"], "keyword": ["x", "y"]}
		]
	}`

	var resp SearchResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.Len(t, resp.Metadata, 2)
	assert.Equal(t, StringList{"4|52|5|53"}, resp.Metadata[0].GeoBox)
	assert.Equal(t, StringList{"2020-01-01"}, resp.Metadata[0].RevisionDate)
	assert.Equal(t, "u-a", resp.Metadata[0].Info.UUID)
	assert.Equal(t, StringList{"1|2|3|4", "5|6|7|8"}, resp.Metadata[1].GeoBox)
	assert.Nil(t, resp.Metadata[1].Info)
}

func TestDecodeSearchResponseSingleHit(t *testing.T) {
	var resp SearchResponse
	require.NoError(t, json.Unmarshal([]byte(`{"metadata": {"identifier": "only"}}`), &resp))
	require.Len(t, resp.Metadata, 1)
	assert.Equal(t, "only", resp.Metadata[0].Identifier)
}
