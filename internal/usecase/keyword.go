package usecase

import (
	"context"
	"strings"

	"github.com/totegamma/catalog/internal/domain"
)

type KeywordUsecase struct {
	repo KeywordRepository
}

func NewKeywordUsecase(repo KeywordRepository) *KeywordUsecase {
	return &KeywordUsecase{repo: repo}
}

// Search matches keyword titles by substring, most used first.
func (uc *KeywordUsecase) Search(ctx context.Context, query string) ([]domain.Keyword, error) {
	ctx, span := tracer.Start(ctx, "Keyword.Usecase.Search")
	defer span.End()

	keywords, err := uc.repo.Search(ctx, strings.TrimSpace(query), domain.KeywordPageSize)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return keywords, nil
}
