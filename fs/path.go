// Package fs exports den snapshots to the local filesystem.
package fs

import (
	"net/url"
	"path"
	"strings"

	"github.com/isaacchacko/den"
)

// URLToPath converts a page URL to a relative markdown path under its host.
// Example: https://en.wikipedia.org/wiki/Mutex → en.wikipedia.org/wiki/Mutex.md
//
// Returns EINVALID for URLs without a host or whose path escapes the host
// directory.
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", den.Errorf(den.EINVALID, "invalid URL: %v", err)
	}
	if u.Host == "" {
		return "", den.Errorf(den.EINVALID, "URL has no host: %s", rawURL)
	}
	host := strings.ReplaceAll(u.Host, ":", "_")

	p := u.Path
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", den.Errorf(den.EINVALID, "path traversal in URL: %s", rawURL)
		}
	}

	// Trailing slash becomes index.md in that directory.
	if p == "" || strings.HasSuffix(p, "/") {
		p += "index"
	}
	p = path.Clean("/" + p)
	if u.RawQuery != "" {
		p += "_" + strings.NewReplacer("&", "_", "=", "-", "/", "_").Replace(u.RawQuery)
	}

	return host + p + ".md", nil
}
