// Package detect defines the text-detection boundary. Detection itself is an
// external collaborator; this package only fixes its interface and provides
// a sidecar-file implementation so the pipeline can consume pre-computed
// detector output.
package detect

import (
	"context"
	"fmt"
	"os"

	"github.com/rasterloc/rasterloc/internal/region"
)

// Detector supplies text regions for an asset.
type Detector interface {
	Detect(ctx context.Context, assetPath string) ([]region.TextRegion, error)
}

// SidecarDetector reads regions from a JSON sidecar next to the asset
// (<asset>.regions.json), or from an explicit override path.
type SidecarDetector struct {
	// Path, when non-empty, overrides the per-asset sidecar location.
	Path string
}

// NewSidecarDetector returns a detector reading per-asset sidecar files.
func NewSidecarDetector(path string) *SidecarDetector {
	return &SidecarDetector{Path: path}
}

// SidecarPath returns the conventional sidecar location for an asset.
func SidecarPath(assetPath string) string {
	return assetPath + ".regions.json"
}

// Detect loads the sidecar document for the asset.
func (d *SidecarDetector) Detect(ctx context.Context, assetPath string) ([]region.TextRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := d.Path
	if path == "" {
		path = SidecarPath(assetPath)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no detector output for %s: %w", assetPath, err)
	}
	return region.ReadFile(path)
}
