package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasterloc/rasterloc/internal/detect"
	"github.com/rasterloc/rasterloc/internal/geometry"
	"github.com/rasterloc/rasterloc/internal/region"
	"github.com/rasterloc/rasterloc/internal/runlog"
	"github.com/rasterloc/rasterloc/internal/testutil"
)

func writeCommandAsset(t *testing.T, dir string) string {
	t.Helper()
	img := testutil.GenerateTextImage(testutil.DefaultTextImageConfig())
	asset := filepath.Join(dir, "button.png")
	testutil.SaveImage(t, img, asset)
	require.NoError(t, region.WriteFile(detect.SidecarPath(asset), []region.TextRegion{{
		Text: "Save all open documents",
		Polygon: []geometry.Point{
			{X: 8, Y: 6}, {X: 150, Y: 6}, {X: 150, Y: 30}, {X: 8, Y: 30},
		},
		Confidence: 0.9,
	}}, 200, 60))
	return asset
}

func TestLocalizeCommand(t *testing.T) {
	dir := t.TempDir()
	asset := writeCommandAsset(t, dir)
	outDir := filepath.Join(dir, "out")

	cmd := rootCmd
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{
		"localize", asset,
		"--output-dir", outDir,
		"--no-package",
		"--run-log", filepath.Join(dir, "run.jsonl"),
	})

	err := cmd.Execute()
	require.NoError(t, err, buf.String())

	assert.Contains(t, buf.String(), "localized 1 string(s)")
	assert.FileExists(t, filepath.Join(outDir, "button.png"))
}

func TestLocalizeCommandRegionsFlagSingleAssetOnly(t *testing.T) {
	dir := t.TempDir()
	asset := writeCommandAsset(t, dir)

	cmd := rootCmd
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{
		"localize", asset, asset,
		"--regions", detect.SidecarPath(asset),
	})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single asset")
}

func TestLocalizeCommandMissingAssetNoLoc(t *testing.T) {
	dir := t.TempDir()
	runLog := filepath.Join(dir, "run.jsonl")

	cmd := rootCmd
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{
		"localize", filepath.Join(dir, "missing.png"),
		"--output-dir", filepath.Join(dir, "out"),
		"--no-package",
		"--run-log", runLog,
	})

	err := cmd.Execute()
	require.NoError(t, err, buf.String())
	assert.Contains(t, buf.String(), "no localization (file not found)")

	records, err := runlog.ReadAll(runLog)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, runlog.OutcomeNoLoc, records[0].ReviewOutcome)
}

func TestConfigInitCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rasterloc.yaml")

	cmd := rootCmd
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"config", "init", path})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.FileExists(t, path)
}
