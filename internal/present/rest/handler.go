package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/totegamma/catalog"
	"github.com/totegamma/catalog/internal/domain"
	"github.com/totegamma/catalog/internal/geonetwork"
	"github.com/totegamma/catalog/internal/present/rest/presenter"
	"github.com/totegamma/catalog/internal/schema"
	"github.com/totegamma/catalog/internal/usecase"
)

// Realtime streams item events for a set of collections.
type Realtime interface {
	Realtime(ctx context.Context, request <-chan []string, response chan<- catalog.Event)
}

type Handler struct {
	config      domain.Config
	items       *usecase.ItemUsecase
	collections *usecase.CollectionUsecase
	keywords    *usecase.KeywordUsecase
	harvest     *usecase.HarvestUsecase
	registry    *schema.Registry
	realtime    Realtime
}

func NewHandler(
	config domain.Config,
	items *usecase.ItemUsecase,
	collections *usecase.CollectionUsecase,
	keywords *usecase.KeywordUsecase,
	harvest *usecase.HarvestUsecase,
	registry *schema.Registry,
	realtime Realtime,
) *Handler {
	return &Handler{
		config:      config,
		items:       items,
		collections: collections,
		keywords:    keywords,
		harvest:     harvest,
		registry:    registry,
		realtime:    realtime,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.handleLanding)
	e.GET("/conformance", h.handleConformance)
	e.GET("/extensions", h.handleExtensions)
	e.GET("/extensions/schema", h.handleExtensionSchema)
	e.POST("/items", h.handleCreateItem)
	e.PUT("/items/:id", h.handleUpdateItem)
	e.GET("/items/:id", h.handleGetItem)
	e.GET("/items", h.handleListItems)
	e.DELETE("/items/:id", h.handleDeleteItem)
	e.POST("/collections", h.handleCreateCollection)
	e.GET("/collections", h.handleListCollections)
	e.GET("/collections/:id", h.handleGetCollection)
	e.GET("/api/keywords", h.handleKeywords)
	e.POST("/translate/geonetwork", h.handleTranslate)
	e.POST("/harvest/geonetwork", h.handleHarvest)
	e.GET("/realtime", h.handleRealtime)
}

func (h *Handler) link(rel, path string) catalog.Link {
	return catalog.Link{Rel: rel, Type: "application/json", Href: strings.TrimRight(h.config.BaseURL, "/") + path}
}

func (h *Handler) handleLanding(c echo.Context) error {
	landing := catalog.Catalog{
		Type:        catalog.CatalogType,
		ID:          h.config.CatalogID,
		Title:       h.config.Title,
		Description: h.config.Description,
		StacVersion: h.config.SpecVersion,
		ConformsTo:  catalog.Conformance,
		Links: []catalog.Link{
			h.link("self", "/"),
			h.link("root", "/"),
			h.link("conformance", "/conformance"),
			h.link("data", "/collections"),
			h.link("items", "/items"),
		},
	}
	return presenter.OK(c, landing)
}

func (h *Handler) handleConformance(c echo.Context) error {
	return presenter.OK(c, echo.Map{"conformsTo": catalog.Conformance})
}

func (h *Handler) handleExtensions(c echo.Context) error {
	return presenter.OK(c, h.registry.Listing())
}

// extensionParams accepts ext=a&ext=b as well as ext=a,b.
func extensionParams(c echo.Context) []string {
	var ids []string
	for _, v := range c.QueryParams()["ext"] {
		ids = append(ids, strings.Split(v, ",")...)
	}
	return ids
}

func (h *Handler) handleExtensionSchema(c echo.Context) error {
	ctx := c.Request().Context()

	composed, err := h.items.Schema(ctx, extensionParams(c))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, composed.Document())
}

func (h *Handler) handleCreateItem(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	if !json.Valid(body) {
		return presenter.BadRequestMessage(c, "invalid JSON body")
	}

	item, err := h.items.SubmitJSON(ctx, body, "")
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, item)
}

func (h *Handler) handleUpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	if !json.Valid(body) {
		return presenter.BadRequestMessage(c, "invalid JSON body")
	}

	item, err := h.items.SubmitJSON(ctx, body, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, item)
}

func (h *Handler) handleGetItem(c echo.Context) error {
	ctx := c.Request().Context()

	item, err := h.items.Get(ctx, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, item)
}

func (h *Handler) handleListItems(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		var err error
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid limit")
		}
	}

	items, err := h.items.List(ctx, c.QueryParam("collection"), limit)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, catalog.ItemCollection{
		Type:     catalog.ItemCollectionType,
		Features: items,
		Links:    []catalog.Link{h.link("root", "/")},
	})
}

func (h *Handler) handleDeleteItem(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.items.Delete(ctx, c.Param("id")); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.NoContent(c)
}

func (h *Handler) handleCreateCollection(c echo.Context) error {
	ctx := c.Request().Context()

	var input domain.Collection
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequest(c, err)
	}

	created, err := h.collections.Create(ctx, input)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, created)
}

func (h *Handler) handleListCollections(c echo.Context) error {
	ctx := c.Request().Context()

	collections, err := h.collections.List(ctx)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{
		"collections": collections,
		"links":       []catalog.Link{h.link("self", "/collections"), h.link("root", "/")},
	})
}

func (h *Handler) handleGetCollection(c echo.Context) error {
	ctx := c.Request().Context()

	collection, err := h.collections.Get(ctx, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, collection)
}

func (h *Handler) handleKeywords(c echo.Context) error {
	ctx := c.Request().Context()

	keywords, err := h.keywords.Search(ctx, c.QueryParam("q"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, keywords)
}

func (h *Handler) handleTranslate(c echo.Context) error {
	ctx := c.Request().Context()

	var record geonetwork.Record
	if err := c.Bind(&record); err != nil {
		return presenter.BadRequest(c, err)
	}

	result, err := h.harvest.Translate(ctx, record)
	if err != nil {
		return presenter.Error(c, err)
	}
	if !result.IsValid() {
		return presenter.Error(c, result.Err())
	}
	item, _ := result.Item()
	return presenter.OK(c, item)
}

func (h *Handler) handleHarvest(c echo.Context) error {
	ctx := c.Request().Context()

	var input usecase.HarvestInput
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequest(c, err)
	}
	if input.CollectionID == "" {
		return presenter.BadRequestMessage(c, "collectionId is required")
	}

	report, err := h.harvest.Harvest(ctx, input)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, report)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Request struct {
	Type        string   `json:"type"`
	Collections []string `json:"collections"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	input := make(chan []string)
	output := make(chan catalog.Event)

	go h.realtime.Realtime(ctx, input, output)

	quit := make(chan struct{})

	go func() {
		defer close(quit)
		for {
			var req Request
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}

			switch req.Type {
			case "listen":
				select {
				case input <- req.Collections:
				case <-ctx.Done():
					return
				}
				slog.DebugContext(
					ctx, fmt.Sprintf("Socket subscribe: %s", req.Collections),
					slog.String("module", "socket"),
				)
			case "h": // heartbeat
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
