package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"github.com/totegamma/catalog"
	"github.com/totegamma/catalog/client"
	"github.com/totegamma/catalog/internal/config"
	"github.com/totegamma/catalog/internal/geonetwork"
	"github.com/totegamma/catalog/internal/infra/database"
	"github.com/totegamma/catalog/internal/infra/gateway"
	"github.com/totegamma/catalog/internal/infra/repository"
	"github.com/totegamma/catalog/internal/present/rest"
	restmw "github.com/totegamma/catalog/internal/present/rest/middleware"
	"github.com/totegamma/catalog/internal/schema"
	"github.com/totegamma/catalog/internal/service"
	"github.com/totegamma/catalog/internal/stac"
	"github.com/totegamma/catalog/internal/usecase"
)

const serviceName = "catalog"

func setupTraceProvider(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(catalog.SpecVersion),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}

func main() {
	ctx := context.Background()

	configPath := os.Getenv("CATALOG_CONFIG")
	if configPath == "" {
		configPath = "/etc/catalog/config.yaml"
	}

	conf, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()), slog.String("path", configPath))
		os.Exit(1)
	}

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true

	if conf.Server.EnableTrace {
		shutdown, err := setupTraceProvider(ctx, conf.Server.TraceEndpoint)
		if err != nil {
			panic(err)
		}
		defer shutdown(ctx)

		e.Use(otelecho.Middleware(serviceName, otelecho.WithSkipper(func(c echo.Context) bool {
			return c.Path() == "/realtime"
		})))
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		panic("failed to connect database")
	}

	err = database.MigratePostgres(db)
	if err != nil {
		panic("failed to migrate database")
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)
	if err := database.PingRedis(ctx, rdb); err != nil {
		panic("failed to connect redis")
	}

	mc := database.NewMemcached(conf.Server.MemcachedAddr)

	registry, err := schema.NewBuiltinRegistry()
	if err != nil {
		panic(err)
	}
	composer := schema.NewComposer(schema.BaseItemSchema(), registry)

	validator, err := stac.NewSchemaValidator(conf.Catalog.SpecVersion)
	if err != nil {
		panic(err)
	}
	emitter := stac.NewEmitter(validator)
	translator := geonetwork.NewTranslator(emitter, conf.Harvest.Policy)

	itemRepo := repository.NewItemRepository(db, mc)
	collectionRepo := repository.NewCollectionRepository(db)
	keywordRepo := repository.NewKeywordRepository(db)

	httpClient := client.New(serviceName + "/" + catalog.SpecVersion)
	geonetworkGateway := gateway.NewGeonetworkGateway(httpClient, conf.Harvest.GeonetworkURL)

	signal := service.NewSignalService(rdb)

	itemUsecase := usecase.NewItemUsecase(itemRepo, composer, emitter, signal, conf.Catalog)
	collectionUsecase := usecase.NewCollectionUsecase(collectionRepo)
	keywordUsecase := usecase.NewKeywordUsecase(keywordRepo)
	harvestUsecase := usecase.NewHarvestUsecase(
		geonetworkGateway,
		translator,
		emitter,
		itemRepo,
		collectionRepo,
		conf.Catalog,
		conf.Harvest.PageSize,
	)

	handler := rest.NewHandler(
		conf.Catalog,
		itemUsecase,
		collectionUsecase,
		keywordUsecase,
		harvestUsecase,
		registry,
		signal,
	)

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(restmw.IdentifyRequester)

	handler.RegisterRoutes(e)

	slog.Info(
		"catalog started",
		slog.String("addr", conf.Server.Addr),
		slog.String("specVersion", conf.Catalog.SpecVersion),
		slog.Int("extensions", registry.Len()),
	)

	e.Logger.Fatal(e.Start(conf.Server.Addr))
}
