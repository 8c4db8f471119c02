package extract

import (
	"net/url"
	"strings"
)

// DomainAllowlist lists the source hostnames extraction will accept. Any URL
// outside this list is rejected before extraction unless the call is flagged
// as a manual paste for audit.
var DomainAllowlist = []string{
	"tvsmotor.com",
	"heromotocorp.com",
	"honda2wheelersindia.com",
	"bajajauto.com",
	"suzukimotorcycle.co.in",
	"yamaha-motor-india.com",
	"bikewale.com",
	"bikedekho.com",
}

var trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "fbclid", "gclid"}

// ExtendAllowlist adds configured domains to the allowlist, skipping
// duplicates. Called once at startup.
func ExtendAllowlist(domains []string) {
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		known := false
		for _, existing := range DomainAllowlist {
			if existing == d {
				known = true
				break
			}
		}
		if !known {
			DomainAllowlist = append(DomainAllowlist, d)
		}
	}
}

// IsAllowedDomain reports whether the URL's hostname ends with an
// allowlisted domain.
func IsAllowedDomain(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Hostname() == "" {
		return false
	}
	host := parsed.Hostname()
	for _, d := range DomainAllowlist {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// SanitizeURL enforces https and strips tracking parameters. Unparsable
// input is returned unchanged.
func SanitizeURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return raw
	}
	parsed.Scheme = "https"
	q := parsed.Query()
	for _, p := range trackingParams {
		q.Del(p)
	}
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

// ValidURL is a URL that passed allowlist validation.
type ValidURL struct {
	URL       string `json:"url"`
	Sanitized string `json:"sanitized"`
	Domain    string `json:"domain"`
}

// InvalidURL is a URL that failed validation, with the reason.
type InvalidURL struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// ValidateURLs checks a batch of URLs against the domain allowlist.
func ValidateURLs(urls []string) (valid []ValidURL, invalid []InvalidURL) {
	for _, raw := range urls {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Hostname() == "" {
			invalid = append(invalid, InvalidURL{URL: raw, Reason: "Invalid URL format"})
			continue
		}
		if !IsAllowedDomain(raw) {
			invalid = append(invalid, InvalidURL{URL: raw, Reason: "Domain " + parsed.Hostname() + " not in allowlist"})
			continue
		}
		valid = append(valid, ValidURL{URL: raw, Sanitized: SanitizeURL(raw), Domain: parsed.Hostname()})
	}
	return valid, invalid
}
