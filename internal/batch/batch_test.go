package batch

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasterloc/rasterloc/internal/detect"
	"github.com/rasterloc/rasterloc/internal/geometry"
	"github.com/rasterloc/rasterloc/internal/pipeline"
	"github.com/rasterloc/rasterloc/internal/region"
	"github.com/rasterloc/rasterloc/internal/testutil"
)

func writeBatchAsset(t *testing.T, dir, name string, withSidecar bool) string {
	t.Helper()
	img := testutil.GenerateTextImage(testutil.DefaultTextImageConfig())
	path := filepath.Join(dir, name)
	testutil.SaveImage(t, img, path)
	if withSidecar {
		require.NoError(t, region.WriteFile(detect.SidecarPath(path), []region.TextRegion{{
			Text: "Save all open documents",
			Polygon: []geometry.Point{
				{X: 8, Y: 6}, {X: 150, Y: 6}, {X: 150, Y: 30}, {X: 8, Y: 30},
			},
			Confidence: 0.9,
		}}, 200, 60))
	}
	return path
}

func batchBuilder(dir string) *pipeline.Builder {
	return pipeline.NewBuilder().WithOutputDir(filepath.Join(dir, "localized"))
}

func TestRunNoAssets(t *testing.T) {
	dir := t.TempDir()
	_, err := Run(context.Background(), batchBuilder(dir), []string{dir}, DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no localizable assets")
}

func TestRunMissingPath(t *testing.T) {
	dir := t.TempDir()
	_, err := Run(context.Background(), batchBuilder(dir), []string{filepath.Join(dir, "nope")}, DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot access")
}

func TestRunDirectory(t *testing.T) {
	dir := t.TempDir()
	writeBatchAsset(t, dir, "a.png", true)
	writeBatchAsset(t, dir, "b.png", true)

	res, err := Run(context.Background(), batchBuilder(dir), []string{dir}, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, res.Results, 2)
	assert.Empty(t, res.Failures)
	// Discovery order is sorted.
	assert.Equal(t, "a", res.Results[0].AssetID)
	assert.Equal(t, "b", res.Results[1].AssetID)
}

func TestRunCollectsPerAssetFailures(t *testing.T) {
	dir := t.TempDir()
	writeBatchAsset(t, dir, "good.png", true)
	orphan := writeBatchAsset(t, dir, "orphan.png", false)

	res, err := Run(context.Background(), batchBuilder(dir), []string{dir}, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, orphan, res.Failures[0].Asset)
	assert.Contains(t, res.Failures[0].Error, "no detector output")
}

func TestRunParallelWorkers(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.png", "c.png", "d.png"} {
		writeBatchAsset(t, dir, name, true)
	}

	cfg := DefaultConfig()
	cfg.Workers = 3
	res, err := Run(context.Background(), batchBuilder(dir), []string{dir}, cfg)
	require.NoError(t, err)
	assert.Len(t, res.Results, 4)
	assert.Equal(t, 3, res.Workers)
}

func TestRunHonorsContext(t *testing.T) {
	dir := t.TempDir()
	writeBatchAsset(t, dir, "a.png", true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, batchBuilder(dir), []string{dir}, DefaultConfig())
	require.ErrorIs(t, err, context.Canceled)
}

func TestDiscoverAssetsPatterns(t *testing.T) {
	dir := t.TempDir()
	a := writeBatchAsset(t, dir, "keep.png", false)
	writeBatchAsset(t, dir, "skip.png", false)

	files, err := discoverAssets([]string{dir}, false, []string{"keep.*"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{a}, files)

	files, err = discoverAssets([]string{dir}, false, nil, []string{"skip.*"})
	require.NoError(t, err)
	assert.Equal(t, []string{a}, files)
}

func TestDiscoverAssetsSkipsSidecarsAndSubdirs(t *testing.T) {
	dir := t.TempDir()
	top := writeBatchAsset(t, dir, "top.png", true)
	nested := writeBatchAsset(t, filepath.Join(dir, "sub"), "nested.png", false)

	files, err := discoverAssets([]string{dir}, false, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{top}, files)

	files, err = discoverAssets([]string{dir}, true, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{nested, top}, files)
}

func TestFormatResult(t *testing.T) {
	res := &Result{
		Results: []pipeline.Result{
			{AssetID: "a", Status: pipeline.StatusLocalized, Strings: 2, OutputPath: "out/a.png"},
			{AssetID: "b", Status: pipeline.StatusNoLoc, Reason: "insufficient text"},
		},
		Failures: []Failure{{Asset: "c.png", Error: "boom"}},
		Workers:  2,
	}

	text, err := FormatResult(res, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "1 localized, 1 no-loc, 1 failed")

	csvOut, err := FormatResult(res, "csv")
	require.NoError(t, err)
	assert.Contains(t, csvOut, "asset_id,status")
	assert.Contains(t, csvOut, "c.png,failed,boom")

	jsonOut, err := FormatResult(res, "json")
	require.NoError(t, err)
	assert.Contains(t, jsonOut, `"workers": 2`)
}
