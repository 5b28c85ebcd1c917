package catalog

import (
	"time"
)

const (
	// SpecVersion is the STAC version written into every emitted record and
	// used to pick the validating schema.
	SpecVersion string = "1.0.0"

	ItemType    string = "Feature"
	CatalogType string = "Catalog"

	ItemCollectionType string = "FeatureCollection"
)

// Geometry is the GeoJSON geometry carried on the wire.
type Geometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

type Link struct {
	Rel   string  `json:"rel"`
	Href  string  `json:"href"`
	Type  string  `json:"type,omitempty"`
	Title *string `json:"title,omitempty"`
}

type Asset struct {
	Href        string   `json:"href"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type,omitempty"`
	Roles       []string `json:"roles,omitempty"`
}

// Item is a STAC Item as served to clients.
type Item struct {
	Type           string           `json:"type"`
	StacVersion    string           `json:"stac_version"`
	StacExtensions []string         `json:"stac_extensions,omitempty"`
	ID             string           `json:"id"`
	Description    string           `json:"description,omitempty"`
	Collection     string           `json:"collection,omitempty"`
	Geometry       *Geometry        `json:"geometry"`
	BBox           []float64        `json:"bbox,omitempty"`
	Properties     map[string]any   `json:"properties"`
	Links          []Link           `json:"links"`
	Assets         map[string]Asset `json:"assets"`
}

// ItemCollection is a page of items.
type ItemCollection struct {
	Type     string `json:"type"`
	Features []Item `json:"features"`
	Links    []Link `json:"links"`
}

// Catalog is the landing document of the service.
type Catalog struct {
	Type        string   `json:"type"`
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	StacVersion string   `json:"stac_version"`
	ConformsTo  []string `json:"conformsTo"`
	Links       []Link   `json:"links"`
}

var Conformance = []string{
	"https://api.stacspec.org/v1.0.0/core",
	"https://api.stacspec.org/v1.0.0/collections",
	"https://api.stacspec.org/v1.0.0/ogcapi-features",
	"http://www.opengis.net/spec/ogcapi-features-1/1.0/conf/core",
	"http://www.opengis.net/spec/ogcapi-features-1/1.0/conf/geojson",
}

const (
	EventItemUpserted string = "item.upserted"
	EventItemDeleted  string = "item.deleted"
)

// Event is published whenever a stored item changes.
type Event struct {
	Type       string    `json:"type"`
	Collection string    `json:"collection"`
	ItemID     string    `json:"itemID"`
	Item       *Item     `json:"item,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Clone returns a deep copy so that a validated item can be handed out
// without sharing its maps.
func (i Item) Clone() Item {
	cp := i
	if i.StacExtensions != nil {
		cp.StacExtensions = append([]string(nil), i.StacExtensions...)
	}
	if i.Geometry != nil {
		g := Geometry{Type: i.Geometry.Type, Coordinates: make([][][2]float64, len(i.Geometry.Coordinates))}
		for n, ring := range i.Geometry.Coordinates {
			g.Coordinates[n] = append([][2]float64(nil), ring...)
		}
		cp.Geometry = &g
	}
	if i.BBox != nil {
		cp.BBox = append([]float64(nil), i.BBox...)
	}
	if i.Properties != nil {
		cp.Properties = CloneMap(i.Properties)
	}
	if i.Links != nil {
		cp.Links = append([]Link(nil), i.Links...)
	}
	if i.Assets != nil {
		cp.Assets = make(map[string]Asset, len(i.Assets))
		for k, a := range i.Assets {
			a.Roles = append([]string(nil), a.Roles...)
			cp.Assets[k] = a
		}
	}
	return cp
}

// CloneMap deep copies a JSON-compatible map.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
