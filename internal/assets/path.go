// Package assets downloads extracted media into a content-addressed local
// tree. Every write is guarded: domain allowlist, extension and MIME
// allowlists, size cap, and media-root containment.
package assets

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

var allowedExtensions = map[string]bool{
	".webp": true, ".jpg": true, ".jpeg": true, ".png": true, ".svg": true,
	".avif": true, ".gif": true, ".mp4": true, ".pdf": true,
}

var allowedMIMEPrefixes = []string{"image/", "video/", "application/pdf"}

// assetDomainAllowlist covers the OEM sites plus the CDNs they serve media
// from.
var assetDomainAllowlist = []string{
	"tvsmotor.com",
	"heromotocorp.com",
	"honda2wheelersindia.com",
	"bajajauto.com",
	"suzukimotorcycle.co.in",
	"yamaha-motor-india.com",
	"cloudfront.net",
	"akamaized.net",
	"imgix.net",
	"cloudinary.com",
}

// IsAllowedAssetDomain reports whether an asset URL's hostname ends with an
// allowlisted domain.
func IsAllowedAssetDomain(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Hostname() == "" {
		return false
	}
	host := parsed.Hostname()
	for _, d := range assetDomainAllowlist {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

var (
	unsafeChars    = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	collapseDashes = regexp.MustCompile(`-+`)
)

// SanitizeFilename strips traversal sequences and unsafe characters from one
// path segment.
func SanitizeFilename(name string) string {
	s := strings.ReplaceAll(name, "..", "")
	s = unsafeChars.ReplaceAllString(s, "-")
	s = collapseDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return strings.ToLower(s)
}

// PathParams names the tree position of one asset file.
type PathParams struct {
	BrandSlug   string
	ModelSlug   string
	VariantSlug string
	ColorSlug   string
	Subfolder   string
	Filename    string
}

// GenerateAssetPath builds the media-root-relative path
// brand/model[/variant][/color][/subfolder]/filename with every segment
// sanitized.
func GenerateAssetPath(p PathParams) string {
	parts := []string{SanitizeFilename(p.BrandSlug), SanitizeFilename(p.ModelSlug)}
	if p.VariantSlug != "" {
		parts = append(parts, SanitizeFilename(p.VariantSlug))
	}
	if p.ColorSlug != "" {
		parts = append(parts, SanitizeFilename(p.ColorSlug))
	}
	if p.Subfolder != "" {
		parts = append(parts, SanitizeFilename(p.Subfolder))
	}
	parts = append(parts, SanitizeFilename(p.Filename))
	return strings.Join(parts, "/")
}

// ValidatePath sanitizes a media-root-relative target path and verifies the
// resolved absolute path stays inside the media root and carries an allowed
// extension. Returns the resolved absolute path and the sanitized relative
// path.
func ValidatePath(mediaRoot, targetPath string) (resolved, relative string, err error) {
	var parts []string
	for _, seg := range strings.Split(targetPath, "/") {
		if clean := SanitizeFilename(seg); clean != "" {
			parts = append(parts, clean)
		}
	}
	relative = strings.Join(parts, "/")

	rootAbs, err := filepath.Abs(mediaRoot)
	if err != nil {
		return "", relative, eris.Wrap(err, "assets: resolving media root")
	}
	resolved = filepath.Join(rootAbs, filepath.FromSlash(relative))
	if resolved != rootAbs && !strings.HasPrefix(resolved, rootAbs+string(filepath.Separator)) {
		return "", relative, eris.New("assets: path traversal detected")
	}

	ext := strings.ToLower(filepath.Ext(resolved))
	if !allowedExtensions[ext] {
		return "", relative, eris.Errorf("assets: extension %q not allowed", ext)
	}
	return resolved, relative, nil
}

// NormalizeExtension picks the asset file extension from a URL, defaulting to
// webp when the URL carries none or an unrecognized one.
func NormalizeExtension(rawURL string) string {
	clean := strings.SplitN(rawURL, "?", 2)[0]
	ext := strings.ToLower(filepath.Ext(clean))
	if allowedExtensions[ext] {
		return strings.TrimPrefix(ext, ".")
	}
	return "webp"
}
