package usecase

import (
	"context"

	"github.com/totegamma/catalog"
	"github.com/totegamma/catalog/internal/domain"
	"github.com/totegamma/catalog/internal/geonetwork"
)

// ItemRepository is the persistence collaborator: upsert keyed by id.
type ItemRepository interface {
	Upsert(ctx context.Context, record domain.Record) (domain.Record, error)
	Get(ctx context.Context, id string) (domain.Record, error)
	List(ctx context.Context, collectionID string, limit int) ([]domain.Record, error)
	Delete(ctx context.Context, id string) error
}

// CollectionRepository defines persistence/lookup for collections.
type CollectionRepository interface {
	Create(ctx context.Context, collection domain.Collection) (domain.Collection, error)
	Get(ctx context.Context, id string) (domain.Collection, error)
	List(ctx context.Context) ([]domain.Collection, error)
}

// KeywordRepository is the read-only keyword query surface.
type KeywordRepository interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Keyword, error)
}

// GeonetworkGateway fetches records from a remote GeoNetwork catalogue.
type GeonetworkGateway interface {
	Search(ctx context.Context, query string, limit int) ([]geonetwork.Record, error)
}

// EventPublisher announces item changes.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, event catalog.Event) error
}
