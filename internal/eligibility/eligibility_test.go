package eligibility

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	return path
}

func TestCheckRasterAsset(t *testing.T) {
	for _, name := range []string{"a.png", "b.JPG", "c.jpeg", "d.bmp", "e.tiff", "f.tif"} {
		res := Check(touch(t, name))
		assert.True(t, res.Eligible, name)
		assert.Equal(t, AssetRaster, res.AssetType, name)
	}
}

func TestCheckUnsupportedType(t *testing.T) {
	res := Check(touch(t, "diagram.svg"))
	assert.False(t, res.Eligible)
	assert.Equal(t, AssetUnknown, res.AssetType)
	assert.Contains(t, res.Reason, ".svg")
}

func TestCheckMissingFile(t *testing.T) {
	res := Check(filepath.Join(t.TempDir(), "nope.png"))
	assert.False(t, res.Eligible)
	assert.Equal(t, "file not found", res.Reason)
}

func TestIsRasterAsset(t *testing.T) {
	assert.True(t, IsRasterAsset("/some/dir/shot.PNG"))
	assert.False(t, IsRasterAsset("/some/dir/doc.pdf"))
	assert.False(t, IsRasterAsset("noext"))
}
