package usecase

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/totegamma/catalog"
	"github.com/totegamma/catalog/internal/domain"
	"github.com/totegamma/catalog/internal/geonetwork"
	"github.com/totegamma/catalog/internal/schema"
	"github.com/totegamma/catalog/internal/stac"
)

type mockItemRepo struct {
	records  map[string]domain.Record
	upserted []string
	deleted  []string
	failWith error
}

func newMockItemRepo() *mockItemRepo {
	return &mockItemRepo{records: map[string]domain.Record{}}
}

func (m *mockItemRepo) Upsert(ctx context.Context, record domain.Record) (domain.Record, error) {
	if m.failWith != nil {
		return domain.Record{}, m.failWith
	}
	m.records[record.ID] = record
	m.upserted = append(m.upserted, record.ID)
	return record, nil
}

func (m *mockItemRepo) Get(ctx context.Context, id string) (domain.Record, error) {
	record, ok := m.records[id]
	if !ok {
		return domain.Record{}, domain.NotFoundError{Resource: "item"}
	}
	return record, nil
}

func (m *mockItemRepo) List(ctx context.Context, collectionID string, limit int) ([]domain.Record, error) {
	var ids []string
	for id, r := range m.records {
		if collectionID == "" || r.Collection == collectionID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	var out []domain.Record
	for _, id := range ids {
		if len(out) == limit {
			break
		}
		out = append(out, m.records[id])
	}
	return out, nil
}

func (m *mockItemRepo) Delete(ctx context.Context, id string) error {
	delete(m.records, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockCollectionRepo struct {
	collections map[string]domain.Collection
}

func (m *mockCollectionRepo) Create(ctx context.Context, c domain.Collection) (domain.Collection, error) {
	if m.collections == nil {
		m.collections = map[string]domain.Collection{}
	}
	m.collections[c.ID] = c
	return c, nil
}

func (m *mockCollectionRepo) Get(ctx context.Context, id string) (domain.Collection, error) {
	c, ok := m.collections[id]
	if !ok {
		return domain.Collection{}, domain.NotFoundError{Resource: "collection"}
	}
	return c, nil
}

func (m *mockCollectionRepo) List(ctx context.Context) ([]domain.Collection, error) {
	var out []domain.Collection
	for _, c := range m.collections {
		out = append(out, c)
	}
	return out, nil
}

type mockKeywordRepo struct {
	keywords []domain.Keyword
	query    string
	limit    int
}

func (m *mockKeywordRepo) Search(ctx context.Context, query string, limit int) ([]domain.Keyword, error) {
	m.query = query
	m.limit = limit
	var out []domain.Keyword
	for _, k := range m.keywords {
		if strings.Contains(strings.ToLower(k.Title), strings.ToLower(query)) {
			out = append(out, k)
		}
	}
	return out, nil
}

type mockGateway struct {
	records []geonetwork.Record
	limit   int
}

func (m *mockGateway) Search(ctx context.Context, query string, limit int) ([]geonetwork.Record, error) {
	m.limit = limit
	return m.records, nil
}

type mockPublisher struct {
	channels []string
	events   []catalog.Event
}

func (m *mockPublisher) Publish(ctx context.Context, channel string, event catalog.Event) error {
	m.channels = append(m.channels, channel)
	m.events = append(m.events, event)
	return nil
}

var testConfig = domain.Config{
	CatalogID:   "test",
	BaseURL:     "https://catalog.example.com",
	SpecVersion: catalog.SpecVersion,
	PageSize:    20,
}

func newTestEmitter(t *testing.T) *stac.Emitter {
	t.Helper()
	v, err := stac.NewSchemaValidator(catalog.SpecVersion)
	require.NoError(t, err)
	return stac.NewEmitter(v)
}

func newTestComposer(t *testing.T) *schema.Composer {
	t.Helper()
	registry, err := schema.NewBuiltinRegistry()
	require.NoError(t, err)
	return schema.NewComposer(schema.BaseItemSchema(), registry)
}
