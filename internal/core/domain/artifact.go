package domain

import "strings"

// Upload is a decoded file handed to the core by the transport layer.
type Upload struct {
	Data     []byte
	MimeType string
	Filename string // optional, only used to derive an extension
}

// Empty reports whether there are no bytes to store.
func (u *Upload) Empty() bool { return u == nil || len(u.Data) == 0 }

const MimePDF = "application/pdf"

var acceptedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
	"image/bmp":  {},
	"image/tiff": {},
}

// NormalizeMime lowercases a MIME type and strips parameters.
func NormalizeMime(m string) string {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	return strings.ToLower(strings.TrimSpace(m))
}

// IsAcceptedImage reports whether m is an image type the service stores.
func IsAcceptedImage(m string) bool {
	_, ok := acceptedImageTypes[NormalizeMime(m)]
	return ok
}
