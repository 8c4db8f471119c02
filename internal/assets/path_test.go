package assets

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"traversal stripped", "../../etc/passwd", "etc-passwd"},
		{"unsafe chars replaced", "Jupiter 125 (Disc)!", "jupiter-125-disc"},
		{"dashes collapsed and trimmed", "--matte--black--", "matte-black"},
		{"case lowered", "Primary.WEBP", "primary.webp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.in))
		})
	}
}

func TestGenerateAssetPath(t *testing.T) {
	got := GenerateAssetPath(PathParams{
		BrandSlug: "TVS",
		ModelSlug: "Jupiter 125",
		ColorSlug: "Matte Blue",
		Filename:  "1.webp",
	})
	assert.Equal(t, "tvs/jupiter-125/matte-blue/1.webp", got)

	withAll := GenerateAssetPath(PathParams{
		BrandSlug:   "tvs",
		ModelSlug:   "apache",
		VariantSlug: "rtr 160",
		ColorSlug:   "red",
		Subfolder:   "360",
		Filename:    "2.jpg",
	})
	assert.Equal(t, "tvs/apache/rtr-160/red/360/2.jpg", withAll)
}

func TestValidatePath(t *testing.T) {
	root := t.TempDir()

	resolved, relative, err := ValidatePath(root, "tvs/jupiter/blue/1.webp")
	require.NoError(t, err)
	assert.Equal(t, "tvs/jupiter/blue/1.webp", relative)
	assert.Equal(t, filepath.Join(root, "tvs", "jupiter", "blue", "1.webp"), resolved)

	// Traversal segments are neutralized by sanitization, so the resolved
	// path stays inside the root.
	resolved, _, err = ValidatePath(root, "../../outside/1.webp")
	require.NoError(t, err)
	assert.Contains(t, resolved, root)

	_, _, err = ValidatePath(root, "tvs/jupiter/script.exe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed")
}

func TestNormalizeExtension(t *testing.T) {
	assert.Equal(t, "jpg", NormalizeExtension("https://cdn.tvsmotor.com/a/b.jpg?w=800"))
	assert.Equal(t, "mp4", NormalizeExtension("https://cdn.tvsmotor.com/video.mp4"))
	assert.Equal(t, "webp", NormalizeExtension("https://cdn.tvsmotor.com/no-extension"))
	assert.Equal(t, "webp", NormalizeExtension("https://cdn.tvsmotor.com/file.exe"))
}

func TestIsAllowedAssetDomain(t *testing.T) {
	assert.True(t, IsAllowedAssetDomain("https://www.tvsmotor.com/a.webp"))
	assert.True(t, IsAllowedAssetDomain("https://d1.cloudfront.net/a.webp"))
	assert.False(t, IsAllowedAssetDomain("https://evil.example.com/a.webp"))
	assert.False(t, IsAllowedAssetDomain("::bad::"))
}
