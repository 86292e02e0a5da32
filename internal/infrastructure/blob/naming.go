package blob

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/dentalscribe/submission-api/internal/core/domain"
)

// preferred extensions where the MIME database lists a less common one first.
var preferredExt = map[string]string{
	"image/jpeg":   ".jpg",
	"image/png":    ".png",
	"image/gif":    ".gif",
	domain.MimePDF: ".pdf",
}

// ObjectName returns a fresh random object name carrying an extension derived
// from the MIME type, or from filename when the type is unknown.
func ObjectName(mimeType, filename string) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + extension(mimeType, filename)
}

func extension(mimeType, filename string) string {
	m := domain.NormalizeMime(mimeType)
	if ext, ok := preferredExt[m]; ok {
		return ext
	}
	if mt := mimetype.Lookup(m); mt != nil && mt.Extension() != "" {
		return mt.Extension()
	}
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	return ".bin"
}
