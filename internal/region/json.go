package region

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rasterloc/rasterloc/internal/geometry"
)

// Document is the serialized form of a detector run over one asset.
type Document struct {
	Width   int          `json:"width"`
	Height  int          `json:"height"`
	Regions []RegionJSON `json:"regions"`
}

// RegionJSON mirrors TextRegion on the wire with a flat point list.
type RegionJSON struct {
	Text       string      `json:"text"`
	Polygon    []PointJSON `json:"polygon,omitempty"`
	Page       int         `json:"page"`
	Confidence float64     `json:"confidence"`
	ElementID  string      `json:"element_id,omitempty"`
}

type PointJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ToJSON serializes regions with the asset dimensions.
func ToJSON(regions []TextRegion, width, height int) ([]byte, error) {
	doc := Document{Width: width, Height: height}
	doc.Regions = make([]RegionJSON, 0, len(regions))
	for _, r := range regions {
		rr := RegionJSON{
			Text:       r.Text,
			Page:       r.Page,
			Confidence: r.Confidence,
			ElementID:  r.ElementID,
		}
		for _, p := range r.Polygon {
			rr.Polygon = append(rr.Polygon, PointJSON{X: p.X, Y: p.Y})
		}
		doc.Regions = append(doc.Regions, rr)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FromJSON parses a detector document into regions. Pages default to 1.
func FromJSON(data []byte) ([]TextRegion, error) {
	if len(data) == 0 {
		return nil, errors.New("empty region document")
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse region document: %w", err)
	}
	out := make([]TextRegion, 0, len(doc.Regions))
	for _, rr := range doc.Regions {
		r := TextRegion{
			Text:       rr.Text,
			Page:       rr.Page,
			Confidence: rr.Confidence,
			ElementID:  rr.ElementID,
		}
		if r.Page < 1 {
			r.Page = 1
		}
		for _, p := range rr.Polygon {
			r.Polygon = append(r.Polygon, geometry.Point{X: p.X, Y: p.Y})
		}
		out = append(out, r)
	}
	return out, nil
}

// ReadFile loads regions from a detector-JSON sidecar file.
func ReadFile(path string) ([]TextRegion, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-provided sidecar path is expected
	if err != nil {
		return nil, fmt.Errorf("read region file: %w", err)
	}
	return FromJSON(data)
}

// WriteFile serializes regions to path.
func WriteFile(path string, regions []TextRegion, width, height int) error {
	data, err := ToJSON(regions, width, height)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write region file: %w", err)
	}
	return nil
}
