// Package fileid derives the stable source key and fallback URL of an article file.
package fileid

import (
	"net/url"
	"path/filepath"
)

const prefix = "file:"

// Source returns the source key recorded for articles imported from path.
// Same path always yields the same key. Used to update and delete by path.
func Source(absolutePath string) string {
	return prefix + filepath.Clean(absolutePath)
}

// URL returns the canonical URL of an article file that names none.
func URL(absolutePath string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Clean(absolutePath))}
	return u.String()
}
