// Package packager bundles localization results into a review zip:
//
//	<asset_id>/
//	  original.<ext>
//	  localized.<ext>
//	  text_mapping.json   source + translated string pairs
//	  metadata.json       language and pipeline info
package packager

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/language"

	"github.com/rasterloc/rasterloc/internal/region"
	"github.com/rasterloc/rasterloc/internal/version"
)

type mappingEntry struct {
	Source     string `json:"source"`
	Translated string `json:"translated"`
	Page       int    `json:"page"`
}

type metadata struct {
	AssetID        string `json:"asset_id"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Pipeline       string `json:"pipeline"`
	OriginalFile   string `json:"original_file"`
	LocalizedFile  string `json:"localized_file"`
	TotalStrings   int    `json:"total_strings"`
}

// Request describes one review package.
type Request struct {
	AssetID        string
	OriginalPath   string
	LocalizedPath  string
	SourceRegions  []region.TextRegion
	TargetRegions  []region.TextRegion
	SourceLanguage language.Tag
	TargetLanguage language.Tag
	OutputDir      string
}

// Create writes the review zip and returns its path.
func Create(req Request) (string, error) {
	if len(req.SourceRegions) != len(req.TargetRegions) {
		return "", fmt.Errorf("package %s: %d source regions but %d translated",
			req.AssetID, len(req.SourceRegions), len(req.TargetRegions))
	}
	if err := os.MkdirAll(req.OutputDir, 0o750); err != nil {
		return "", fmt.Errorf("create package dir: %w", err)
	}

	zipPath := filepath.Join(req.OutputDir, fmt.Sprintf("%s_%s.zip", req.AssetID, req.TargetLanguage))
	f, err := os.Create(zipPath) //nolint:gosec // G304: writing to a caller-chosen output dir is expected
	if err != nil {
		return "", fmt.Errorf("create package: %w", err)
	}
	defer func() { _ = f.Close() }()

	zw := zip.NewWriter(f)
	if err := writeEntries(zw, req); err != nil {
		_ = zw.Close()
		_ = os.Remove(zipPath)
		return "", err
	}
	if err := zw.Close(); err != nil {
		_ = os.Remove(zipPath)
		return "", fmt.Errorf("finalize package: %w", err)
	}
	return zipPath, nil
}

func writeEntries(zw *zip.Writer, req Request) error {
	if err := addFile(zw, req.OriginalPath,
		fmt.Sprintf("%s/original%s", req.AssetID, filepath.Ext(req.OriginalPath))); err != nil {
		return err
	}
	if err := addFile(zw, req.LocalizedPath,
		fmt.Sprintf("%s/localized%s", req.AssetID, filepath.Ext(req.LocalizedPath))); err != nil {
		return err
	}

	mapping := make([]mappingEntry, 0, len(req.SourceRegions))
	for i := range req.SourceRegions {
		mapping = append(mapping, mappingEntry{
			Source:     req.SourceRegions[i].Text,
			Translated: req.TargetRegions[i].Text,
			Page:       req.SourceRegions[i].Page,
		})
	}
	if err := addJSON(zw, req.AssetID+"/text_mapping.json", mapping); err != nil {
		return err
	}

	return addJSON(zw, req.AssetID+"/metadata.json", metadata{
		AssetID:        req.AssetID,
		SourceLanguage: req.SourceLanguage.String(),
		TargetLanguage: req.TargetLanguage.String(),
		Pipeline:       "rasterloc/" + version.Version,
		OriginalFile:   filepath.Base(req.OriginalPath),
		LocalizedFile:  filepath.Base(req.LocalizedPath),
		TotalStrings:   len(req.SourceRegions),
	})
}

func addFile(zw *zip.Writer, src, arcname string) error {
	f, err := os.Open(src) //nolint:gosec // G304: packaging caller-provided asset files
	if err != nil {
		return fmt.Errorf("package %s: %w", arcname, err)
	}
	defer func() { _ = f.Close() }()

	w, err := zw.Create(arcname)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("package %s: %w", arcname, err)
	}
	return nil
}

func addJSON(zw *zip.Writer, arcname string, v any) error {
	w, err := zw.Create(arcname)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
