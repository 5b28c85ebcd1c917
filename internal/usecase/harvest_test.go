package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/catalog"
	"github.com/totegamma/catalog/internal/domain"
	"github.com/totegamma/catalog/internal/geonetwork"
)

func newTestHarvestUsecase(t *testing.T, records []geonetwork.Record) (*HarvestUsecase, *mockItemRepo, *mockGateway) {
	emitter := newTestEmitter(t)
	repo := newMockItemRepo()
	gw := &mockGateway{records: records}
	collections := &mockCollectionRepo{collections: map[string]domain.Collection{"harvested": {ID: "harvested", Title: "Harvested"}}}
	translator := geonetwork.NewTranslator(emitter, domain.BoxPolicyFirst)
	return NewHarvestUsecase(gw, translator, emitter, repo, collections, testConfig, 25), repo, gw
}

func TestHarvestUsecaseHarvest(t *testing.T) {
	records := []geonetwork.Record{
		{Identifier: "X1", GeoBox: geonetwork.StringList{"4.0|52.0|5.0|53.0"}, TempExtentBegin: "2020-01-01", TempExtentEnd: "2020-01-01"},
		{Identifier: "", GeoBox: geonetwork.StringList{"4|52|5|53"}, TempExtentBegin: "2020-01-01"},
		{Identifier: "X3", GeoBox: geonetwork.StringList{"4|52|five|53"}, TempExtentBegin: "2020-01-01"},
		{Identifier: "X4", GeoBox: geonetwork.StringList{"4|52|5|53"}},
		{Identifier: "X5", TempExtentBegin: "2020-01-01", TempExtentEnd: "2020-06-01"},
	}
	uc, repo, gw := newTestHarvestUsecase(t, records)

	report, err := uc.Harvest(context.Background(), HarvestInput{CollectionID: "harvested", Query: "sea"})
	require.NoError(t, err)

	assert.Equal(t, []string{"X1", "X5"}, report.Imported)
	require.Len(t, report.Failed, 3)
	assert.Equal(t, "", report.Failed[0].Identifier)
	assert.Equal(t, "identifier", report.Failed[0].Errors[0].Path)
	assert.Equal(t, "X3", report.Failed[1].Identifier)
	assert.Equal(t, "X4", report.Failed[2].Identifier)
	assert.Equal(t, 25, gw.limit)

	stored := repo.records["X1"]
	assert.Equal(t, "harvested", stored.Collection)
	assert.Equal(t, domain.Instant{At: domain.MustParseTimestamp("2020-01-01")}, stored.Temporal)
	assert.Equal(t, []domain.Position{{4, 52}, {5, 52}, {5, 53}, {4, 53}, {4, 52}}, stored.Geometry.Coordinates[0])
}

func TestHarvestUsecaseUnknownCollection(t *testing.T) {
	uc, repo, _ := newTestHarvestUsecase(t, []geonetwork.Record{{Identifier: "X1", TempExtentBegin: "2020-01-01"}})

	_, err := uc.Harvest(context.Background(), HarvestInput{CollectionID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, repo.records)
}

func TestHarvestUsecaseCanceled(t *testing.T) {
	uc, repo, _ := newTestHarvestUsecase(t, []geonetwork.Record{{Identifier: "X1", TempExtentBegin: "2020-01-01"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Harvest(ctx, HarvestInput{CollectionID: "harvested"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, repo.records)
}

func TestHarvestUsecaseTranslate(t *testing.T) {
	uc, repo, _ := newTestHarvestUsecase(t, nil)

	result, err := uc.Translate(context.Background(), geonetwork.Record{
		Identifier:      "X1",
		GeoBox:          geonetwork.StringList{"4.0|52.0|5.0|53.0"},
		TempExtentBegin: "2020-01-01",
		TempExtentEnd:   "2020-06-01",
	})
	require.NoError(t, err)
	require.True(t, result.IsValid())

	item, _ := result.Item()
	assert.NotContains(t, item.Properties, "datetime")
	assert.Empty(t, repo.records)
}

func TestHarvestUsecaseLinksFollowStoredID(t *testing.T) {
	record := geonetwork.Record{
		Identifier:      "X1",
		GeoBox:          geonetwork.StringList{"4.0|52.0|5.0|53.0"},
		TempExtentBegin: "2020-01-01",
		Info:            &geonetwork.Info{UUID: "a4b5-uuid"},
	}
	uc, repo, _ := newTestHarvestUsecase(t, []geonetwork.Record{record})

	report, err := uc.Harvest(context.Background(), HarvestInput{CollectionID: "harvested"})
	require.NoError(t, err)
	require.Equal(t, []string{"X1"}, report.Imported)

	stored, ok := repo.records["X1"]
	require.True(t, ok)
	assert.Equal(t, []catalog.Link{
		catalog.SelfLink("https://catalog.example.com/items/X1"),
		{Rel: "root", Type: "application/json", Href: "https://catalog.example.com"},
		{Rel: "collection", Type: "application/json", Href: "https://catalog.example.com/collections/harvested"},
		{Rel: "parent", Type: "application/json", Href: "https://catalog.example.com/collections/harvested"},
	}, stored.Links)

	// translation without storing keeps the remote uuid
	result, err := uc.Translate(context.Background(), record)
	require.NoError(t, err)
	item, ok := result.Item()
	require.True(t, ok)
	assert.Equal(t, "https://catalog.example.com/items/a4b5-uuid", item.Links[0].Href)
}
