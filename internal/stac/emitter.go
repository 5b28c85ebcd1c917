// Package stac assembles records into STAC Items and checks them against
// the STAC schema before they are handed out.
package stac

import (
	"fmt"

	"github.com/totegamma/catalog"
	"github.com/totegamma/catalog/internal/domain"
	"github.com/totegamma/catalog/schemas"
)

const (
	propertyDatetime      = "datetime"
	propertyStartDatetime = "start_datetime"
	propertyEndDatetime   = "end_datetime"
	propertyTitle         = "title"
	propertyKeywords      = "keywords"
)

type Emitter struct {
	validator Validator
}

func NewEmitter(validator Validator) *Emitter {
	return &Emitter{validator: validator}
}

func (e *Emitter) SpecVersion() string {
	return e.validator.Version()
}

// Assemble builds the STAC Item shape without validating it. An Instant
// becomes properties.datetime; an Interval becomes start_datetime and
// end_datetime with datetime absent.
func Assemble(fields domain.RecordFields, temporal domain.TemporalExtent, geometry *domain.Geometry, specVersion string) catalog.Item {
	props := catalog.CloneMap(fields.Properties)
	if props == nil {
		props = map[string]any{}
	}
	delete(props, propertyDatetime)
	delete(props, propertyStartDatetime)
	delete(props, propertyEndDatetime)

	if fields.Title != "" {
		props[propertyTitle] = fields.Title
	}
	if len(fields.Keywords) > 0 {
		keywords := make([]any, len(fields.Keywords))
		for i, k := range fields.Keywords {
			keywords[i] = k
		}
		props[propertyKeywords] = keywords
	}

	switch t := temporal.(type) {
	case domain.Instant:
		props[propertyDatetime] = t.At.String()
	case domain.Interval:
		props[propertyStartDatetime] = t.Start.String()
		props[propertyEndDatetime] = t.End.String()
	}

	item := catalog.Item{
		Type:        catalog.ItemType,
		StacVersion: specVersion,
		ID:          fields.ID,
		Description: fields.Description,
		Collection:  fields.Collection,
		Properties:  props,
		Links:       append([]catalog.Link{}, fields.Links...),
		Assets:      map[string]catalog.Asset{},
	}
	for k, a := range fields.Assets {
		item.Assets[k] = a
	}

	if geometry != nil {
		wire := ToWire(*geometry)
		item.Geometry = &wire
		item.BBox = geometry.BBox()
	}

	return item.Clone()
}

// Emit assembles the record and validates it. Validator failures are
// returned verbatim inside an Invalid result; the error is reserved for
// the validator being unusable.
func (e *Emitter) Emit(fields domain.RecordFields, temporal domain.TemporalExtent, geometry *domain.Geometry, specVersion string) (domain.ValidationResult, error) {
	if specVersion != e.validator.Version() {
		return domain.ValidationResult{}, fmt.Errorf("record version %s does not match validator version %s", specVersion, e.validator.Version())
	}

	item := Assemble(fields, temporal, geometry, specVersion)

	errs, err := e.validator.Validate(schemas.ItemKind, item)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	if len(errs) > 0 {
		return domain.Invalid(errs), nil
	}
	return domain.Valid(item), nil
}

// EmitRecord is Emit for a stored record.
func (e *Emitter) EmitRecord(record domain.Record) (domain.ValidationResult, error) {
	return e.Emit(record.RecordFields, record.Temporal, record.Geometry, record.SpecVersion)
}

func ToWire(g domain.Geometry) catalog.Geometry {
	rings := make([][][2]float64, len(g.Coordinates))
	for i, ring := range g.Coordinates {
		rings[i] = make([][2]float64, len(ring))
		for j, p := range ring {
			rings[i][j] = [2]float64(p)
		}
	}
	return catalog.Geometry{Type: g.Type, Coordinates: rings}
}

func FromWire(g catalog.Geometry) domain.Geometry {
	rings := make([][]domain.Position, len(g.Coordinates))
	for i, ring := range g.Coordinates {
		rings[i] = make([]domain.Position, len(ring))
		for j, p := range ring {
			rings[i][j] = domain.Position(p)
		}
	}
	return domain.Geometry{Type: g.Type, Coordinates: rings}
}
