package repository

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"gorm.io/datatypes"

	"github.com/totegamma/catalog"
	"github.com/totegamma/catalog/internal/domain"
	"github.com/totegamma/catalog/internal/infra/database/models"
)

func marshalJSON(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func unmarshalJSON(data datatypes.JSON, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, v)
}

func timePtr(ts domain.Timestamp) *time.Time {
	t := ts.Time()
	return &t
}

func recordToModel(record domain.Record) (models.Item, error) {
	item := models.Item{
		ID:           record.ID,
		CollectionID: record.Collection,
		Title:        record.Title,
		Description:  record.Description,
		SpecVersion:  record.SpecVersion,
	}

	switch t := record.Temporal.(type) {
	case domain.Instant:
		item.Datetime = timePtr(t.At)
	case domain.Interval:
		item.StartDatetime = timePtr(t.Start)
		item.EndDatetime = timePtr(t.End)
	}

	var err error
	columns := []struct {
		dst *datatypes.JSON
		src any
	}{
		{&item.Temporal, domain.ToTemporalInput(record.Temporal)},
		{&item.Geometry, record.Geometry},
		{&item.Properties, record.Properties},
		{&item.Links, record.Links},
		{&item.Assets, record.Assets},
		{&item.Extensions, record.Extensions},
	}
	for _, c := range columns {
		*c.dst, err = marshalJSON(c.src)
		if err != nil {
			return models.Item{}, errors.Wrap(err, "recordToModel: marshal failed")
		}
	}
	return item, nil
}

func modelToRecord(item models.Item) (domain.Record, error) {
	record := domain.Record{
		RecordFields: domain.RecordFields{
			ID:          item.ID,
			Collection:  item.CollectionID,
			Title:       item.Title,
			Description: item.Description,
		},
		SpecVersion: item.SpecVersion,
	}

	var temporal domain.TemporalInput
	var geometry *domain.Geometry
	var links []catalog.Link
	columns := []struct {
		src datatypes.JSON
		dst any
	}{
		{item.Temporal, &temporal},
		{item.Geometry, &geometry},
		{item.Properties, &record.Properties},
		{item.Links, &links},
		{item.Assets, &record.Assets},
		{item.Extensions, &record.Extensions},
	}
	for _, c := range columns {
		if err := unmarshalJSON(c.src, c.dst); err != nil {
			return domain.Record{}, errors.Wrapf(err, "modelToRecord: item %s", item.ID)
		}
	}
	record.Links = links
	record.Geometry = geometry

	extent, err := domain.NormalizeTemporal(temporal, false)
	if err != nil {
		return domain.Record{}, errors.Wrapf(err, "modelToRecord: item %s temporal", item.ID)
	}
	record.Temporal = extent

	for _, k := range item.Keywords {
		record.Keywords = append(record.Keywords, k.Title)
	}
	return record, nil
}
