package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/catalog/internal/domain"
	"github.com/totegamma/catalog/internal/infra/database/models"
)

type CollectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// Create upserts by id; cdate of an existing collection is kept.
func (r *CollectionRepository) Create(ctx context.Context, collection domain.Collection) (domain.Collection, error) {
	ctx, span := tracer.Start(ctx, "Collection.Repository.Create")
	defer span.End()

	model := models.Collection{
		ID:          collection.ID,
		Title:       collection.Title,
		Description: collection.Description,
		License:     collection.License,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "description", "license"}),
	}).Create(&model).Error
	if err != nil {
		span.RecordError(err)
		return domain.Collection{}, errors.Wrap(err, "CollectionRepository.Create: upsert failed")
	}

	return r.Get(ctx, collection.ID)
}

func (r *CollectionRepository) Get(ctx context.Context, id string) (domain.Collection, error) {
	ctx, span := tracer.Start(ctx, "Collection.Repository.Get")
	defer span.End()

	var model models.Collection
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Collection{}, domain.NotFoundError{Resource: "collection " + id}
		}
		span.RecordError(err)
		return domain.Collection{}, errors.Wrap(err, "CollectionRepository.Get: query failed")
	}
	return collectionFromModel(model), nil
}

func (r *CollectionRepository) List(ctx context.Context) ([]domain.Collection, error) {
	ctx, span := tracer.Start(ctx, "Collection.Repository.List")
	defer span.End()

	var rows []models.Collection
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&rows).Error; err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "CollectionRepository.List: query failed")
	}

	out := make([]domain.Collection, len(rows))
	for i, row := range rows {
		out[i] = collectionFromModel(row)
	}
	return out, nil
}

func collectionFromModel(m models.Collection) domain.Collection {
	return domain.Collection{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		License:     m.License,
		CDate:       m.CDate,
	}
}
