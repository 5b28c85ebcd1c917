package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/totegamma/catalog"
	"github.com/totegamma/catalog/internal/domain"
	"github.com/totegamma/catalog/internal/schema"
	"github.com/totegamma/catalog/internal/stac"
	"github.com/totegamma/catalog/internal/utils"
)

var tracer = otel.Tracer("usecase")

// SubmitInput is the create / update form of an item.
type SubmitInput struct {
	ID           string                   `json:"id,omitempty"`
	CollectionID string                   `json:"collectionId"`
	Title        string                   `json:"title,omitempty"`
	Description  string                   `json:"description,omitempty"`
	Geometry     *domain.Geometry         `json:"geometry"`
	Datetime     string                   `json:"datetime,omitempty"`
	Start        string                   `json:"start_datetime,omitempty"`
	End          string                   `json:"end_datetime,omitempty"`
	DateRange    *domain.RangeInput       `json:"dateRange,omitempty"`
	Properties   map[string]any           `json:"properties,omitempty"`
	Keywords     []string                 `json:"keywords,omitempty"`
	Assets       map[string]catalog.Asset `json:"assets,omitempty"`
	Extensions   []string                 `json:"extensions,omitempty"`
}

// TemporalInput prefers explicit datetime fields over the date range.
func (in SubmitInput) TemporalInput() domain.TemporalInput {
	explicit := domain.TemporalInput{Datetime: in.Datetime, Start: in.Start, End: in.End}
	if explicit == (domain.TemporalInput{}) && in.DateRange != nil {
		return in.DateRange.TemporalInput()
	}
	return explicit
}

type ItemUsecase struct {
	repo     ItemRepository
	composer *schema.Composer
	emitter  *stac.Emitter
	signal   EventPublisher
	config   domain.Config
}

func NewItemUsecase(
	repo ItemRepository,
	composer *schema.Composer,
	emitter *stac.Emitter,
	signal EventPublisher,
	config domain.Config,
) *ItemUsecase {
	return &ItemUsecase{
		repo:     repo,
		composer: composer,
		emitter:  emitter,
		signal:   signal,
		config:   config,
	}
}

// Schema returns the composed submission schema for a selection.
func (uc *ItemUsecase) Schema(ctx context.Context, extensions []string) (schema.Schema, error) {
	_, span := tracer.Start(ctx, "Item.Usecase.Schema")
	defer span.End()

	return uc.composer.Compose(schema.NewSelection(extensions...))
}

// Submit validates and stores one item, returning what was stored as a
// STAC Item.
func (uc *ItemUsecase) Submit(ctx context.Context, input SubmitInput) (catalog.Item, error) {
	ctx, span := tracer.Start(ctx, "Item.Usecase.Submit")
	defer span.End()

	doc, err := toDocument(input)
	if err != nil {
		span.RecordError(err)
		return catalog.Item{}, errors.Wrap(err, "ItemUsecase.Submit: toDocument failed")
	}
	sel, err := uc.validate(doc)
	if err != nil {
		span.RecordError(err)
		return catalog.Item{}, err
	}
	return uc.store(ctx, sel, input)
}

// SubmitJSON is Submit for a request body. The body is checked against the
// composed schema as sent, before it is decoded. A non-empty id replaces the
// one in the body.
func (uc *ItemUsecase) SubmitJSON(ctx context.Context, body []byte, id string) (catalog.Item, error) {
	ctx, span := tracer.Start(ctx, "Item.Usecase.SubmitJSON")
	defer span.End()

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil || doc == nil {
		return catalog.Item{}, domain.InvalidInputError{Reason: "body must be a JSON object"}
	}
	if id != "" {
		doc["id"] = id
	}

	sel, err := uc.validate(doc)
	if err != nil {
		span.RecordError(err)
		return catalog.Item{}, err
	}

	var input SubmitInput
	if err := json.Unmarshal(body, &input); err != nil {
		var fe domain.FieldErrorer
		if errors.As(err, &fe) {
			return catalog.Item{}, err
		}
		return catalog.Item{}, domain.InvalidInputError{Reason: err.Error()}
	}
	if id != "" {
		input.ID = id
	}
	return uc.store(ctx, sel, input)
}

// validate checks doc against the schema composed for the extensions it
// names.
func (uc *ItemUsecase) validate(doc map[string]any) (schema.Selection, error) {
	sel := schema.NewSelection(extensionIDs(doc)...)
	compiled, err := uc.composer.Compiled(sel)
	if err != nil {
		return sel, err
	}
	fieldErrs, err := compiled.Validate(doc)
	if err != nil {
		return sel, err
	}
	if len(fieldErrs) > 0 {
		return sel, domain.InvalidInputError{Errors: fieldErrs}
	}
	return sel, nil
}

// Non-string entries are left for the schema to report.
func extensionIDs(doc map[string]any) []string {
	raw, _ := doc[domain.ExtensionsField].([]any)
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (uc *ItemUsecase) store(ctx context.Context, sel schema.Selection, input SubmitInput) (catalog.Item, error) {
	span := trace.SpanFromContext(ctx)

	temporal, err := domain.NormalizeTemporal(input.TemporalInput(), true)
	if err != nil {
		return catalog.Item{}, err
	}
	if input.Geometry == nil {
		return catalog.Item{}, domain.InvalidGeometryError{Reason: "geometry is required"}
	}
	geometry, err := domain.FromPolygon(*input.Geometry)
	if err != nil {
		return catalog.Item{}, err
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = uuid.NewString()
	}
	span.SetAttributes(attribute.String("ItemId", id))
	if requester, ok := ctx.Value(domain.RequesterIdCtxKey).(string); ok {
		span.SetAttributes(attribute.String("RequesterId", requester))
	}

	fields := domain.RecordFields{
		ID:          id,
		Collection:  input.CollectionID,
		Title:       input.Title,
		Description: input.Description,
		Properties:  catalog.CloneMap(input.Properties),
		Links:       itemLinks(uc.config.BaseURL, id, input.CollectionID),
		Assets:      input.Assets,
		Keywords:    utils.DedupeAndTrim(input.Keywords),
		Extensions:  sel.IDs(),
	}

	result, err := uc.emitter.Emit(fields, temporal, &geometry, uc.config.SpecVersion)
	if err != nil {
		span.RecordError(err)
		return catalog.Item{}, err
	}
	if !result.IsValid() {
		return catalog.Item{}, result.Err()
	}

	_, err = uc.repo.Upsert(ctx, domain.Record{
		RecordFields: fields,
		Temporal:     temporal,
		Geometry:     &geometry,
		SpecVersion:  uc.config.SpecVersion,
	})
	if err != nil {
		span.RecordError(err)
		return catalog.Item{}, err
	}

	item, _ := result.Item()
	uc.publish(ctx, catalog.EventItemUpserted, fields.Collection, id, &item)

	return item, nil
}

func (uc *ItemUsecase) Get(ctx context.Context, id string) (catalog.Item, error) {
	ctx, span := tracer.Start(ctx, "Item.Usecase.Get")
	defer span.End()

	record, err := uc.repo.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		return catalog.Item{}, err
	}
	return uc.emit(record)
}

func (uc *ItemUsecase) List(ctx context.Context, collectionID string, limit int) ([]catalog.Item, error) {
	ctx, span := tracer.Start(ctx, "Item.Usecase.List")
	defer span.End()

	records, err := uc.repo.List(ctx, collectionID, clampLimit(limit, uc.config.PageSize))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	items := make([]catalog.Item, 0, len(records))
	for _, record := range records {
		item, err := uc.emit(record)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (uc *ItemUsecase) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Item.Usecase.Delete")
	defer span.End()

	record, err := uc.repo.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}

	uc.publish(ctx, catalog.EventItemDeleted, record.Collection, id, nil)
	return nil
}

func (uc *ItemUsecase) emit(record domain.Record) (catalog.Item, error) {
	result, err := uc.emitter.EmitRecord(record)
	if err != nil {
		return catalog.Item{}, err
	}
	if !result.IsValid() {
		return catalog.Item{}, result.Err()
	}
	item, _ := result.Item()
	return item, nil
}

// itemLinks are the links of a stored item, all derived from the id it is
// stored under.
func itemLinks(baseURL, id, collectionID string) []catalog.Link {
	links := []catalog.Link{
		catalog.SelfLink(catalog.ComposeItemURL(baseURL, id)),
		{Rel: "root", Type: "application/json", Href: baseURL},
	}
	if collectionID != "" {
		collectionURL := catalog.ComposeCollectionURL(baseURL, collectionID)
		links = append(links,
			catalog.Link{Rel: "collection", Type: "application/json", Href: collectionURL},
			catalog.Link{Rel: "parent", Type: "application/json", Href: collectionURL},
		)
	}
	return links
}

// publish failures are logged; the change itself is already stored.
func (uc *ItemUsecase) publish(ctx context.Context, eventType, collection, id string, item *catalog.Item) {
	if uc.signal == nil {
		return
	}
	event := catalog.Event{
		Type:       eventType,
		Collection: collection,
		ItemID:     id,
		Item:       item,
		Timestamp:  time.Now(),
	}
	if err := uc.signal.Publish(ctx, catalog.EventChannel(collection), event); err != nil {
		slog.ErrorContext(
			ctx, "failed to publish item event",
			slog.String("error", err.Error()),
			slog.String("type", eventType),
			slog.String("module", "item"),
		)
	}
}

// toDocument turns the input into the generic JSON form the composed schema
// validates.
func toDocument(input SubmitInput) (map[string]any, error) {
	b, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		limit = fallback
	}
	if limit <= 0 {
		limit = domain.DefaultPageSize
	}
	if limit > domain.MaxPageSize {
		limit = domain.MaxPageSize
	}
	return limit
}
