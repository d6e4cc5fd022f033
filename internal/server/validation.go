package server

import (
	"net/url"
	"path"
	"strings"
)

// sanitizeFilename reduces a client-supplied name to a bare basename.
// Percent-encoding is resolved first so encoded separators cannot smuggle
// path components, and Windows-style separators are treated as such.
// Returns "" when nothing usable remains.
func sanitizeFilename(name string) string {
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)

	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return name
}
