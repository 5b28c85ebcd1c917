package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/catalog/internal/domain"
	"github.com/totegamma/catalog/internal/infra/database/models"
)

var tracer = otel.Tracer("repository")

const itemCacheTTL = 300 // seconds

type ItemRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

// NewItemRepository returns the gorm backed item store. mc may be nil to
// disable the read cache.
func NewItemRepository(db *gorm.DB, mc *memcache.Client) *ItemRepository {
	return &ItemRepository{db: db, mc: mc}
}

func itemCacheKey(id string) string {
	return "catalog:item:" + id
}

// Upsert creates the item or replaces every column of the existing one.
func (r *ItemRepository) Upsert(ctx context.Context, record domain.Record) (domain.Record, error) {
	ctx, span := tracer.Start(ctx, "Item.Repository.Upsert")
	defer span.End()
	span.SetAttributes(attribute.String("ItemId", record.ID))

	item, err := recordToModel(record)
	if err != nil {
		span.RecordError(err)
		return domain.Record{}, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Omit("Keywords", "Collection").Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"collection_id", "title", "description",
				"datetime", "start_datetime", "end_datetime",
				"temporal", "geometry", "properties", "links", "assets", "extensions",
				"spec_version", "m_date",
			}),
		}).Create(&item).Error
		if err != nil {
			return err
		}

		keywords, err := ensureKeywords(tx, record.Keywords)
		if err != nil {
			return err
		}
		return tx.Model(&item).Association("Keywords").Replace(keywords)
	})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return domain.Record{}, domain.NotFoundError{Resource: "collection " + record.Collection}
		}
		return domain.Record{}, errors.Wrap(err, "ItemRepository.Upsert: transaction failed")
	}

	r.invalidate(ctx, record.ID)
	return record, nil
}

func (r *ItemRepository) Get(ctx context.Context, id string) (domain.Record, error) {
	ctx, span := tracer.Start(ctx, "Item.Repository.Get")
	defer span.End()

	if item, ok := r.cached(ctx, id); ok {
		span.SetAttributes(attribute.Bool("CacheHit", true))
		return modelToRecord(item)
	}

	var item models.Item
	err := r.db.WithContext(ctx).Preload("Keywords").Where("id = ?", id).Take(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Record{}, domain.NotFoundError{Resource: "item " + id}
		}
		span.RecordError(err)
		return domain.Record{}, errors.Wrap(err, "ItemRepository.Get: query failed")
	}
	sortKeywords(item.Keywords)

	r.store(ctx, item)
	return modelToRecord(item)
}

func (r *ItemRepository) List(ctx context.Context, collectionID string, limit int) ([]domain.Record, error) {
	ctx, span := tracer.Start(ctx, "Item.Repository.List")
	defer span.End()

	query := r.db.WithContext(ctx).Preload("Keywords").Order("c_date DESC").Order("id ASC").Limit(limit)
	if collectionID != "" {
		query = query.Where("collection_id = ?", collectionID)
	}

	var items []models.Item
	if err := query.Find(&items).Error; err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "ItemRepository.List: query failed")
	}

	records := make([]domain.Record, 0, len(items))
	for _, item := range items {
		sortKeywords(item.Keywords)
		record, err := modelToRecord(item)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Item.Repository.Delete")
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item := models.Item{ID: id}
		if err := tx.Model(&item).Association("Keywords").Clear(); err != nil {
			return err
		}
		result := tx.Delete(&models.Item{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NotFoundError{Resource: "item " + id}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		span.RecordError(err)
		return errors.Wrap(err, "ItemRepository.Delete: transaction failed")
	}

	r.invalidate(ctx, id)
	return nil
}

// ensureKeywords returns the keyword rows for titles, creating missing ones.
func ensureKeywords(tx *gorm.DB, titles []string) ([]models.Keyword, error) {
	if len(titles) == 0 {
		return []models.Keyword{}, nil
	}

	candidates := make([]models.Keyword, len(titles))
	for i, title := range titles {
		candidates[i] = models.Keyword{ID: uuid.NewString(), Title: title}
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "title"}},
		DoNothing: true,
	}).Create(&candidates).Error
	if err != nil {
		return nil, err
	}

	var keywords []models.Keyword
	if err := tx.Where("title IN ?", titles).Find(&keywords).Error; err != nil {
		return nil, err
	}
	return keywords, nil
}

func sortKeywords(keywords []models.Keyword) {
	sort.Slice(keywords, func(i, j int) bool { return keywords[i].Title < keywords[j].Title })
}

func (r *ItemRepository) cached(ctx context.Context, id string) (models.Item, bool) {
	if r.mc == nil {
		return models.Item{}, false
	}
	entry, err := r.mc.Get(itemCacheKey(id))
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			slog.WarnContext(ctx, "item cache read failed", slog.String("error", err.Error()), slog.String("module", "repository"))
		}
		return models.Item{}, false
	}
	var item models.Item
	if err := json.Unmarshal(entry.Value, &item); err != nil {
		return models.Item{}, false
	}
	return item, true
}

func (r *ItemRepository) store(ctx context.Context, item models.Item) {
	if r.mc == nil {
		return
	}
	b, err := json.Marshal(item)
	if err != nil {
		return
	}
	err = r.mc.Set(&memcache.Item{Key: itemCacheKey(item.ID), Value: b, Expiration: itemCacheTTL})
	if err != nil {
		slog.WarnContext(ctx, "item cache write failed", slog.String("error", err.Error()), slog.String("module", "repository"))
	}
}

func (r *ItemRepository) invalidate(ctx context.Context, id string) {
	if r.mc == nil {
		return
	}
	err := r.mc.Delete(itemCacheKey(id))
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		slog.WarnContext(ctx, "item cache invalidation failed", slog.String("error", err.Error()), slog.String("module", "repository"))
	}
}
