package repository

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/totegamma/catalog/internal/domain"
)

type KeywordRepository struct {
	db *gorm.DB
}

func NewKeywordRepository(db *gorm.DB) *KeywordRepository {
	return &KeywordRepository{db: db}
}

type keywordRow struct {
	ID          string
	Title       string
	ParentID    *string
	ParentTitle *string
	Count       int64
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches titles case-insensitively, ordered by the number of items
// tagged with the keyword.
func (r *KeywordRepository) Search(ctx context.Context, query string, limit int) ([]domain.Keyword, error) {
	ctx, span := tracer.Start(ctx, "Keyword.Repository.Search")
	defer span.End()

	var rows []keywordRow
	err := r.db.WithContext(ctx).
		Table("keywords AS k").
		Select("k.id, k.title, k.parent_id, p.title AS parent_title, COUNT(ik.item_id) AS count").
		Joins("LEFT JOIN keywords AS p ON p.id = k.parent_id").
		Joins("LEFT JOIN item_keywords AS ik ON ik.keyword_id = k.id").
		Where("k.title ILIKE ?", "%"+likeEscaper.Replace(query)+"%").
		Group("k.id, k.title, k.parent_id, p.title").
		Order("count DESC").
		Order("k.title ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "KeywordRepository.Search: query failed")
	}

	out := make([]domain.Keyword, len(rows))
	for i, row := range rows {
		out[i] = domain.Keyword{ID: row.ID, Title: row.Title, Count: row.Count}
		if row.ParentID != nil {
			out[i].ParentID = *row.ParentID
		}
		if row.ParentTitle != nil {
			out[i].ParentTitle = *row.ParentTitle
		}
	}
	return out, nil
}
