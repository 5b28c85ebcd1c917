package usecase

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/catalog/internal/domain"
	"github.com/totegamma/catalog/internal/geonetwork"
	"github.com/totegamma/catalog/internal/stac"
)

type HarvestInput struct {
	CollectionID string `json:"collectionId"`
	Query        string `json:"query"`
	Limit        int    `json:"limit"`
}

type HarvestFailure struct {
	Identifier string              `json:"identifier"`
	Errors     []domain.FieldError `json:"errors"`
}

type HarvestReport struct {
	Imported []string         `json:"imported"`
	Failed   []HarvestFailure `json:"failed"`
}

type HarvestUsecase struct {
	gateway     GeonetworkGateway
	translator  *geonetwork.Translator
	emitter     *stac.Emitter
	items       ItemRepository
	collections CollectionRepository
	config      domain.Config
	pageSize    int
}

func NewHarvestUsecase(
	gateway GeonetworkGateway,
	translator *geonetwork.Translator,
	emitter *stac.Emitter,
	items ItemRepository,
	collections CollectionRepository,
	config domain.Config,
	pageSize int,
) *HarvestUsecase {
	return &HarvestUsecase{
		gateway:     gateway,
		translator:  translator,
		emitter:     emitter,
		items:       items,
		collections: collections,
		config:      config,
		pageSize:    pageSize,
	}
}

// Translate converts one foreign record without storing it.
func (uc *HarvestUsecase) Translate(ctx context.Context, record geonetwork.Record) (domain.ValidationResult, error) {
	_, span := tracer.Start(ctx, "Harvest.Usecase.Translate")
	defer span.End()

	return uc.translator.Translate(record, uc.config.BaseURL)
}

// Harvest imports the records matching the query into a collection. Records
// are translated one at a time; a failing record is reported and skipped.
func (uc *HarvestUsecase) Harvest(ctx context.Context, input HarvestInput) (HarvestReport, error) {
	ctx, span := tracer.Start(ctx, "Harvest.Usecase.Harvest")
	defer span.End()
	span.SetAttributes(attribute.String("CollectionId", input.CollectionID))

	if _, err := uc.collections.Get(ctx, input.CollectionID); err != nil {
		span.RecordError(err)
		return HarvestReport{}, err
	}

	records, err := uc.gateway.Search(ctx, input.Query, clampLimit(input.Limit, uc.pageSize))
	if err != nil {
		span.RecordError(err)
		return HarvestReport{}, err
	}

	report := HarvestReport{Imported: []string{}, Failed: []HarvestFailure{}}
	for _, foreign := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		id, fieldErrs, err := uc.importOne(ctx, foreign, input.CollectionID)
		if err != nil {
			span.RecordError(err)
			return report, err
		}
		if len(fieldErrs) > 0 {
			slog.InfoContext(
				ctx, "skipping harvested record",
				slog.String("identifier", foreign.Identifier),
				slog.Int("errors", len(fieldErrs)),
				slog.String("module", "harvest"),
			)
			report.Failed = append(report.Failed, HarvestFailure{Identifier: foreign.Identifier, Errors: fieldErrs})
			continue
		}
		report.Imported = append(report.Imported, id)
	}

	span.SetAttributes(
		attribute.Int("Imported", len(report.Imported)),
		attribute.Int("Failed", len(report.Failed)),
	)
	return report, nil
}

// importOne returns field errors for a record that cannot be imported and
// an error only when storage fails.
func (uc *HarvestUsecase) importOne(ctx context.Context, foreign geonetwork.Record, collectionID string) (string, []domain.FieldError, error) {
	record, err := uc.translator.Canonical(foreign, uc.config.BaseURL)
	if err != nil {
		return "", fieldErrors(err), nil
	}
	// The translated self link may name the remote uuid. A stored item links
	// to the id it is stored under.
	record.Collection = collectionID
	record.Links = itemLinks(uc.config.BaseURL, record.ID, collectionID)

	result, err := uc.emitter.EmitRecord(record)
	if err != nil {
		return "", nil, err
	}
	if !result.IsValid() {
		return "", result.Errors(), nil
	}

	stored, err := uc.items.Upsert(ctx, record)
	if err != nil {
		return "", nil, err
	}
	return stored.ID, nil, nil
}

func fieldErrors(err error) []domain.FieldError {
	if fe, ok := err.(domain.FieldErrorer); ok {
		return fe.FieldErrors()
	}
	return []domain.FieldError{{Message: err.Error()}}
}
