// Package geonetwork turns records harvested from a GeoNetwork catalogue
// into validated STAC items.
package geonetwork

import (
	"strings"

	"github.com/totegamma/catalog"
	"github.com/totegamma/catalog/internal/domain"
	"github.com/totegamma/catalog/internal/stac"
	"github.com/totegamma/catalog/internal/utils"
)

type Translator struct {
	emitter *stac.Emitter
	policy  domain.BoxPolicy
}

func NewTranslator(emitter *stac.Emitter, policy domain.BoxPolicy) *Translator {
	return &Translator{emitter: emitter, policy: policy}
}

// Canonical builds the record without validating it.
func (t *Translator) Canonical(rec Record, baseURL string) (domain.Record, error) {
	id := strings.TrimSpace(rec.Identifier)
	if id == "" {
		return domain.Record{}, domain.MissingIdentifierError{}
	}

	var geometry *domain.Geometry
	if len(rec.GeoBox) > 0 {
		g, err := domain.FromBoundingBoxes(rec.GeoBox, t.policy)
		if err != nil {
			return domain.Record{}, err
		}
		geometry = &g
	}

	temporal, err := domain.NormalizeTemporal(rec.temporalInput(), false)
	if err != nil {
		return domain.Record{}, err
	}

	return domain.Record{
		RecordFields: domain.RecordFields{
			ID:          id,
			Title:       rec.Title,
			Description: rec.Abstract,
			Links:       []catalog.Link{catalog.SelfLink(catalog.ComposeItemURL(baseURL, rec.selfID()))},
			Assets:      map[string]catalog.Asset{},
			Keywords:    rec.keywords(),
		},
		Temporal:    temporal,
		Geometry:    geometry,
		SpecVersion: t.emitter.SpecVersion(),
	}, nil
}

// Translate builds the record and hands it to the emitter, returning its
// result unchanged.
func (t *Translator) Translate(rec Record, baseURL string) (domain.ValidationResult, error) {
	record, err := t.Canonical(rec, baseURL)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	return t.emitter.EmitRecord(record)
}

// An unequal begin/end pair is an interval. Otherwise begin wins, then the
// first revision date.
func (r Record) temporalInput() domain.TemporalInput {
	begin := strings.TrimSpace(r.TempExtentBegin)
	end := strings.TrimSpace(r.TempExtentEnd)
	if begin != "" && end != "" {
		return domain.TemporalInput{Start: begin, End: end}
	}
	if begin == "" {
		begin = strings.TrimSpace(r.RevisionDate.First())
	}
	return domain.TemporalInput{Datetime: begin}
}

func (r Record) selfID() string {
	if r.Info != nil && r.Info.UUID != "" {
		return r.Info.UUID
	}
	return strings.TrimSpace(r.Identifier)
}

func (r Record) keywords() []string {
	return utils.DedupeAndTrim(r.Keyword)
}
