package gateway

import (
	"context"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/catalog/client"
	"github.com/totegamma/catalog/internal/geonetwork"
)

var tracer = otel.Tracer("gateway")

const searchPath = "/srv/eng/q"

// GeonetworkGateway queries the JSON search service of a GeoNetwork node.
type GeonetworkGateway struct {
	client  *client.Client
	baseURL string
}

func NewGeonetworkGateway(cl *client.Client, baseURL string) *GeonetworkGateway {
	return &GeonetworkGateway{client: cl, baseURL: baseURL}
}

func (g *GeonetworkGateway) Search(ctx context.Context, query string, limit int) ([]geonetwork.Record, error) {
	ctx, span := tracer.Start(ctx, "Geonetwork.Gateway.Search")
	defer span.End()
	span.SetAttributes(attribute.String("Query", query), attribute.Int("Limit", limit))

	params := url.Values{
		"_content_type": {"json"},
		"fast":          {"index"},
		"from":          {"1"},
		"to":            {strconv.Itoa(limit)},
	}
	if query != "" {
		params.Set("any", query)
	}

	target, err := client.BuildURL(g.baseURL, searchPath, params)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "GeonetworkGateway.Search: BuildURL failed")
	}

	var resp geonetwork.SearchResponse
	if err := g.client.GetJSON(ctx, target, &resp); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "GeonetworkGateway.Search: request failed")
	}
	return resp.Metadata, nil
}
