package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const GeometryTypePolygon = "Polygon"

// Position is a (longitude, latitude) pair.
type Position [2]float64

// UnmarshalJSON accepts exactly two numbers. Shorter or longer arrays are
// rejected instead of being padded or cut.
func (p *Position) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return InvalidGeometryError{Reason: "position must be an array of numbers"}
	}
	if len(coords) != 2 {
		return InvalidGeometryError{Reason: fmt.Sprintf("position must have 2 coordinates, got %d", len(coords))}
	}
	*p = Position{coords[0], coords[1]}
	return nil
}

// Geometry is restricted to a single-ring Polygon.
type Geometry struct {
	Type        string       `json:"type"`
	Coordinates [][]Position `json:"coordinates"`
}

func (g Geometry) Clone() Geometry {
	rings := make([][]Position, len(g.Coordinates))
	for i, ring := range g.Coordinates {
		rings[i] = append([]Position(nil), ring...)
	}
	return Geometry{Type: g.Type, Coordinates: rings}
}

// BBox returns [minLon, minLat, maxLon, maxLat] over every point.
func (g Geometry) BBox() []float64 {
	first := true
	var box BoundingBox
	for _, ring := range g.Coordinates {
		for _, p := range ring {
			if first {
				box = BoundingBox{MinLon: p[0], MinLat: p[1], MaxLon: p[0], MaxLat: p[1]}
				first = false
				continue
			}
			box = box.Union(BoundingBox{MinLon: p[0], MinLat: p[1], MaxLon: p[0], MaxLat: p[1]})
		}
	}
	if first {
		return nil
	}
	return []float64{box.MinLon, box.MinLat, box.MaxLon, box.MaxLat}
}

// BoxPolicy decides how a sequence of bounding boxes becomes one polygon.
type BoxPolicy int

const (
	// BoxPolicyFirst keeps the first box and discards the rest.
	BoxPolicyFirst BoxPolicy = iota
	// BoxPolicyEnvelope uses the envelope enclosing every box.
	BoxPolicyEnvelope
)

func (p BoxPolicy) String() string {
	switch p {
	case BoxPolicyFirst:
		return "first"
	case BoxPolicyEnvelope:
		return "envelope"
	default:
		return "unknown"
	}
}

func ParseBoxPolicy(s string) (BoxPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first":
		return BoxPolicyFirst, nil
	case "envelope":
		return BoxPolicyEnvelope, nil
	default:
		return BoxPolicyFirst, fmt.Errorf("unknown box policy %q", s)
	}
}

type BoundingBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// ParseBoundingBox reads a minLon|minLat|maxLon|maxLat string. Tokens past
// the fourth are ignored.
func ParseBoundingBox(s string) (BoundingBox, error) {
	tokens := strings.Split(s, "|")
	if len(tokens) < 4 {
		return BoundingBox{}, MalformedGeometryInputError{
			Input:  s,
			Reason: fmt.Sprintf("expected 4 values, got %d", len(tokens)),
		}
	}

	var values [4]float64
	for i := range values {
		tok := strings.TrimSpace(tokens[i])
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return BoundingBox{}, MalformedGeometryInputError{
				Input:  s,
				Reason: fmt.Sprintf("value %d (%q) is not a number", i+1, tok),
			}
		}
		values[i] = v
	}

	return BoundingBox{MinLon: values[0], MinLat: values[1], MaxLon: values[2], MaxLat: values[3]}, nil
}

func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return BoundingBox{
		MinLon: math.Min(b.MinLon, o.MinLon),
		MinLat: math.Min(b.MinLat, o.MinLat),
		MaxLon: math.Max(b.MaxLon, o.MaxLon),
		MaxLat: math.Max(b.MaxLat, o.MaxLat),
	}
}

// Ring walks the corners counterclockwise from (minLon,minLat) and closes on
// the start.
func (b BoundingBox) Ring() []Position {
	return []Position{
		{b.MinLon, b.MinLat},
		{b.MaxLon, b.MinLat},
		{b.MaxLon, b.MaxLat},
		{b.MinLon, b.MaxLat},
		{b.MinLon, b.MinLat},
	}
}

func (b BoundingBox) Polygon() Geometry {
	return Geometry{Type: GeometryTypePolygon, Coordinates: [][]Position{b.Ring()}}
}

// FromBoundingBoxes builds the polygon for a sequence of box strings.
func FromBoundingBoxes(boxes []string, policy BoxPolicy) (Geometry, error) {
	if len(boxes) == 0 {
		return Geometry{}, MalformedGeometryInputError{Reason: "no bounding box"}
	}

	switch policy {
	case BoxPolicyEnvelope:
		var envelope BoundingBox
		for i, raw := range boxes {
			box, err := ParseBoundingBox(raw)
			if err != nil {
				return Geometry{}, err
			}
			if i == 0 {
				envelope = box
				continue
			}
			envelope = envelope.Union(box)
		}
		return envelope.Polygon(), nil
	default:
		box, err := ParseBoundingBox(boxes[0])
		if err != nil {
			return Geometry{}, err
		}
		return box.Polygon(), nil
	}
}

// FromPolygon checks a caller supplied polygon and returns a copy of it.
func FromPolygon(g Geometry) (Geometry, error) {
	if g.Type != GeometryTypePolygon {
		return Geometry{}, InvalidGeometryError{Reason: fmt.Sprintf("unsupported geometry type %q", g.Type)}
	}
	if len(g.Coordinates) != 1 {
		return Geometry{}, InvalidGeometryError{Reason: fmt.Sprintf("expected exactly one ring, got %d", len(g.Coordinates))}
	}
	ring := g.Coordinates[0]
	if len(ring) < 4 {
		return Geometry{}, InvalidGeometryError{Reason: fmt.Sprintf("ring needs at least 4 points, got %d", len(ring))}
	}
	if ring[0] != ring[len(ring)-1] {
		return Geometry{}, InvalidGeometryError{Reason: "ring is not closed"}
	}
	for i, p := range ring {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
			return Geometry{}, InvalidGeometryError{Reason: fmt.Sprintf("point %d is not finite", i)}
		}
	}
	return g.Clone(), nil
}
