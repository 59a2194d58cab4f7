// Package eligibility gates which asset files enter the localization
// pipeline.
package eligibility

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AssetType classifies an asset by how (and whether) it can be localized.
type AssetType string

const (
	AssetRaster  AssetType = "raster"
	AssetUnknown AssetType = "unknown"
)

// rasterExtensions lists the raster formats the reinsertion engine accepts.
var rasterExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".bmp":  {},
	".tiff": {},
	".tif":  {},
}

// Result is the outcome of an eligibility check.
type Result struct {
	Eligible  bool
	Reason    string
	AssetType AssetType
}

// Check reports whether the file is a supported art asset. Missing files and
// unsupported extensions are ineligible, not errors; callers route them to
// the no-loc bucket.
func Check(path string) Result {
	if _, err := os.Stat(path); err != nil {
		return Result{Eligible: false, Reason: "file not found", AssetType: AssetUnknown}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := rasterExtensions[ext]; ok {
		return Result{Eligible: true, Reason: fmt.Sprintf("supported type: %s", ext), AssetType: AssetRaster}
	}
	return Result{Eligible: false, Reason: fmt.Sprintf("unsupported file type: %s", ext), AssetType: AssetUnknown}
}

// IsRasterAsset reports whether the path has a supported raster extension.
func IsRasterAsset(path string) bool {
	_, ok := rasterExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
