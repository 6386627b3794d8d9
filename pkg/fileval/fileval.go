// Package fileval holds the upload allow-list and the pure validation helpers
// built on it. Nothing here touches the network, the database or the disk, so
// the rules can be tested in isolation.
package fileval

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// MaxFileSize is the upload size cap in bytes (2 MiB).
const MaxFileSize = 2 * 1024 * 1024

// maxSafeBaseLen caps the sanitized base name used in stored filenames.
const maxSafeBaseLen = 50

// AllowedFileTypes maps accepted MIME types to their usual extensions.
var AllowedFileTypes = map[string][]string{
	"image/jpeg":      {".jpg", ".jpeg"},
	"image/png":       {".png"},
	"image/gif":       {".gif"},
	"image/svg+xml":   {".svg"},
	"text/plain":      {".txt"},
	"text/markdown":   {".md"},
	"text/csv":        {".csv"},
	"application/csv": {".csv"},
}

// AllowedExtensions returns the union of every extension in the allow-list.
func AllowedExtensions() []string {
	var exts []string
	for _, list := range AllowedFileTypes {
		exts = append(exts, list...)
	}
	return exts
}

// IsAllowedMimeType reports whether the declared MIME type is in the allow-list.
func IsAllowedMimeType(mimeType string) bool {
	_, ok := AllowedFileTypes[mimeType]
	return ok
}

// IsAllowedExtension reports whether the filename's extension appears anywhere
// in the union of allowed extensions. The extension is intentionally not
// required to pair with its declared MIME type's own list; a .txt named file
// declared as image/png passes this check.
func IsAllowedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedExtensions() {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Validate checks a candidate upload against the size cap, the MIME allow-list
// and the extension union. Every failed check contributes its own reason; all
// of them are returned together.
func Validate(mimeType, filename string, size int64) error {
	var result *multierror.Error
	if size > MaxFileSize {
		result = multierror.Append(result,
			fmt.Errorf("file size (%s) exceeds the 2MB limit", FormatSize(size)))
	}
	if !IsAllowedMimeType(mimeType) {
		result = multierror.Append(result,
			fmt.Errorf("file type '%s' is not supported", mimeType))
	}
	if !IsAllowedExtension(filename) {
		ext := strings.ToLower(filepath.Ext(filename))
		result = multierror.Append(result,
			fmt.Errorf("file extension '%s' is not supported", ext))
	}
	return result.ErrorOrNil()
}

// Reasons flattens a Validate error into its individual reason strings.
func Reasons(err error) []string {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		reasons := make([]string, 0, len(merr.Errors))
		for _, e := range merr.Errors {
			reasons = append(reasons, e.Error())
		}
		return reasons
	}
	return []string{err.Error()}
}

// SafeFilename strips everything outside [A-Za-z0-9_-] from the base name,
// truncates it and reappends the original extension. The result is cosmetic
// only; stored names are always prefixed with a random token.
func SafeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	safe := b.String()
	if len(safe) > maxSafeBaseLen {
		safe = safe[:maxSafeBaseLen]
	}
	return safe + ext
}

// FormatSize renders a byte count in binary units with up to two decimals.
func FormatSize(bytes int64) string {
	if bytes == 0 {
		return "0 Bytes"
	}
	units := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}
	v := float64(bytes) / math.Pow(1024, float64(i))
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + units[i]
}

// Category buckets a MIME type for the UI: image/* is "image", text/* and
// anything csv-ish is "text", the rest is "unknown".
func Category(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case strings.HasPrefix(mimeType, "text/"), strings.Contains(mimeType, "csv"):
		return "text"
	default:
		return "unknown"
	}
}
