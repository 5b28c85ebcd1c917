package usecase

import (
	"context"
	"strings"

	"github.com/totegamma/catalog/internal/domain"
)

type CollectionUsecase struct {
	repo CollectionRepository
}

func NewCollectionUsecase(repo CollectionRepository) *CollectionUsecase {
	return &CollectionUsecase{repo: repo}
}

func (uc *CollectionUsecase) Create(ctx context.Context, collection domain.Collection) (domain.Collection, error) {
	ctx, span := tracer.Start(ctx, "Collection.Usecase.Create")
	defer span.End()

	collection.ID = strings.TrimSpace(collection.ID)
	collection.Title = strings.TrimSpace(collection.Title)
	if collection.ID == "" {
		return domain.Collection{}, domain.InvalidInputError{Field: "id", Reason: "collection id is required"}
	}
	if collection.Title == "" {
		return domain.Collection{}, domain.InvalidInputError{Field: "title", Reason: "collection title is required"}
	}

	created, err := uc.repo.Create(ctx, collection)
	if err != nil {
		span.RecordError(err)
		return domain.Collection{}, err
	}
	return created, nil
}

func (uc *CollectionUsecase) Get(ctx context.Context, id string) (domain.Collection, error) {
	ctx, span := tracer.Start(ctx, "Collection.Usecase.Get")
	defer span.End()

	return uc.repo.Get(ctx, id)
}

func (uc *CollectionUsecase) List(ctx context.Context) ([]domain.Collection, error) {
	ctx, span := tracer.Start(ctx, "Collection.Usecase.List")
	defer span.End()

	return uc.repo.List(ctx)
}
