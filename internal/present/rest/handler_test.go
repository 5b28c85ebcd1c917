package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/catalog"
	"github.com/totegamma/catalog/internal/domain"
	"github.com/totegamma/catalog/internal/geonetwork"
	"github.com/totegamma/catalog/internal/schema"
	"github.com/totegamma/catalog/internal/stac"
	"github.com/totegamma/catalog/internal/usecase"
)

// --- mocks ---

type mockItemRepo struct {
	records map[string]domain.Record
}

func (m *mockItemRepo) Upsert(ctx context.Context, r domain.Record) (domain.Record, error) {
	m.records[r.ID] = r
	return r, nil
}

func (m *mockItemRepo) Get(ctx context.Context, id string) (domain.Record, error) {
	r, ok := m.records[id]
	if !ok {
		return domain.Record{}, domain.NotFoundError{Resource: "item " + id}
	}
	return r, nil
}

func (m *mockItemRepo) List(ctx context.Context, collectionID string, limit int) ([]domain.Record, error) {
	var out []domain.Record
	for _, r := range m.records {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockItemRepo) Delete(ctx context.Context, id string) error {
	delete(m.records, id)
	return nil
}

type mockCollectionRepo struct{}

func (m *mockCollectionRepo) Create(ctx context.Context, c domain.Collection) (domain.Collection, error) {
	return c, nil
}

func (m *mockCollectionRepo) Get(ctx context.Context, id string) (domain.Collection, error) {
	if id != "models" {
		return domain.Collection{}, domain.NotFoundError{Resource: "collection " + id}
	}
	return domain.Collection{ID: id, Title: "Models"}, nil
}

func (m *mockCollectionRepo) List(ctx context.Context) ([]domain.Collection, error) {
	return []domain.Collection{{ID: "models", Title: "Models"}}, nil
}

type mockKeywordRepo struct{}

func (m *mockKeywordRepo) Search(ctx context.Context, query string, limit int) ([]domain.Keyword, error) {
	return []domain.Keyword{{ID: "1", Title: query, Count: 3}}, nil
}

type mockGateway struct{}

func (m *mockGateway) Search(ctx context.Context, query string, limit int) ([]geonetwork.Record, error) {
	return []geonetwork.Record{{Identifier: "X1", GeoBox: geonetwork.StringList{"4.0|52.0|5.0|53.0"}, TempExtentBegin: "2020-01-01"}}, nil
}

type mockRealtime struct{}

func (m *mockRealtime) Realtime(ctx context.Context, request <-chan []string, response chan<- catalog.Event) {
	<-ctx.Done()
}

// --- tests ---

func newTestServer(t *testing.T) (*echo.Echo, *mockItemRepo) {
	t.Helper()

	config := domain.Config{
		CatalogID:   "test",
		Title:       "Test catalog",
		BaseURL:     "https://catalog.example.com",
		SpecVersion: catalog.SpecVersion,
		PageSize:    10,
	}

	registry, err := schema.NewBuiltinRegistry()
	require.NoError(t, err)
	validator, err := stac.NewSchemaValidator(catalog.SpecVersion)
	require.NoError(t, err)
	emitter := stac.NewEmitter(validator)
	composer := schema.NewComposer(schema.BaseItemSchema(), registry)
	translator := geonetwork.NewTranslator(emitter, domain.BoxPolicyFirst)

	repo := &mockItemRepo{records: map[string]domain.Record{}}
	collections := &mockCollectionRepo{}

	h := NewHandler(
		config,
		usecase.NewItemUsecase(repo, composer, emitter, nil, config),
		usecase.NewCollectionUsecase(collections),
		usecase.NewKeywordUsecase(&mockKeywordRepo{}),
		usecase.NewHarvestUsecase(&mockGateway{}, translator, emitter, repo, collections, config, 10),
		registry,
		&mockRealtime{},
	)

	e := echo.New()
	h.RegisterRoutes(e)
	return e, repo
}

func do(e *echo.Echo, method, target string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Error       string              `json:"error"`
	FieldErrors []domain.FieldError `json:"fieldErrors"`
}

func TestHandleLanding(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var landing catalog.Catalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &landing))
	assert.Equal(t, "test", landing.ID)
	assert.Equal(t, catalog.CatalogType, landing.Type)
	assert.Equal(t, "https://catalog.example.com/", landing.Links[0].Href)
}

func TestHandleExtensions(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodGet, "/extensions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Regexp(t, `^\{"numerical":.*"project":`, rec.Body.String())
}

func TestHandleExtensionSchema(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodGet, "/extensions/schema?ext=numerical,project", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	props := doc["properties"].(map[string]any)["properties"].(map[string]any)
	inner := props["properties"].(map[string]any)
	assert.Contains(t, inner, "modelName")
	assert.Contains(t, inner, "projectNumber")

	rec = do(e, http.MethodGet, "/extensions/schema?ext=nope", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.FieldErrors, 1)
	assert.Equal(t, domain.ExtensionsField, body.FieldErrors[0].Path)
}

func TestHandleCreateAndGetItem(t *testing.T) {
	e, repo := newTestServer(t)

	input := map[string]any{
		"collectionId": "models",
		"title":        "North sea",
		"datetime":     "2020-01-01",
		"geometry": map[string]any{
			"type":        "Polygon",
			"coordinates": [][][]float64{{{4, 52}, {5, 52}, {5, 53}, {4, 53}, {4, 52}}},
		},
	}
	rec := do(e, http.MethodPost, "/items", input)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created catalog.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Contains(t, repo.records, created.ID)
	assert.Equal(t, "2020-01-01", created.Properties["datetime"])

	rec = do(e, http.MethodGet, "/items/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPut, "/items/fixed-id", input)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, repo.records, "fixed-id")

	rec = do(e, http.MethodGet, "/items?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page catalog.ItemCollection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, catalog.ItemCollectionType, page.Type)
	assert.Len(t, page.Features, 2)

	rec = do(e, http.MethodDelete, "/items/fixed-id", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandleCreateItemInvalid(t *testing.T) {
	e, repo := newTestServer(t)

	rec := do(e, http.MethodPost, "/items", map[string]any{"title": "no collection"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.FieldErrors)
	assert.Empty(t, repo.records)

	rec = do(e, http.MethodGet, "/items?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetItemNotFound(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodGet, "/items/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleTranslate(t *testing.T) {
	e, repo := newTestServer(t)

	rec := do(e, http.MethodPost, "/translate/geonetwork", map[string]any{
		"identifier":      "X1",
		"geoBox":          "4.0|52.0|5.0|53.0",
		"tempExtentBegin": "2020-01-01",
		"tempExtentEnd":   "2020-06-01",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var item catalog.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, "2020-01-01", item.Properties["start_datetime"])
	assert.NotContains(t, item.Properties, "datetime")
	assert.Empty(t, repo.records)

	rec = do(e, http.MethodPost, "/translate/geonetwork", map[string]any{"title": "anonymous"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleHarvest(t *testing.T) {
	e, repo := newTestServer(t)

	rec := do(e, http.MethodPost, "/harvest/geonetwork", map[string]any{"collectionId": "models"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report usecase.HarvestReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, []string{"X1"}, report.Imported)
	assert.Contains(t, repo.records, "X1")

	rec = do(e, http.MethodPost, "/harvest/geonetwork", map[string]any{"collectionId": "unknown"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, "/harvest/geonetwork", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleKeywordsAndCollections(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodGet, "/api/keywords?q=ocean", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var keywords []domain.Keyword
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &keywords))
	assert.Equal(t, "ocean", keywords[0].Title)

	rec = do(e, http.MethodGet, "/collections/models", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/collections/other", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, "/collections", map[string]any{"id": "obs"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleCreateItemRejectsBadPositions(t *testing.T) {
	e, repo := newTestServer(t)

	for _, coordinates := range []any{
		[][][]float64{{{4}, {5, 52}, {5, 53}, {4, 53}, {4}}},
		[][][]float64{{{4, 52, 10}, {5, 52, 10}, {5, 53, 10}, {4, 53, 10}, {4, 52, 10}}},
	} {
		rec := do(e, http.MethodPost, "/items", map[string]any{
			"collectionId": "models",
			"datetime":     "2020-01-01",
			"geometry":     map[string]any{"type": "Polygon", "coordinates": coordinates},
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

		var body errorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.NotEmpty(t, body.FieldErrors)
		assert.Contains(t, body.FieldErrors[0].Path, "geometry.coordinates")
	}
	assert.Empty(t, repo.records)

	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
