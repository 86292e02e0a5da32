package handler

import (
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/vincent-petithory/dataurl"

	"github.com/dentalscribe/submission-api/internal/core/domain"
)

// decodeDataURL turns a "data:<mime>;base64,<payload>" string into an upload.
// A bare base64 payload is accepted too; its type is sniffed from the bytes
// and falls back to fallbackMime.
func decodeDataURL(raw, fallbackMime string) (*domain.Upload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if !strings.HasPrefix(raw, "data:") {
		return decodeBareBase64(raw, fallbackMime)
	}

	du, err := dataurl.DecodeString(raw)
	if err != nil {
		return nil, domain.Validation("malformed data url")
	}
	if du.Encoding != dataurl.EncodingBase64 {
		return nil, domain.Validation("data url must be base64 encoded")
	}
	if len(du.Data) == 0 {
		return nil, domain.Validation("empty data url payload")
	}
	return &domain.Upload{Data: du.Data, MimeType: domain.NormalizeMime(du.ContentType())}, nil
}

func decodeBareBase64(raw, fallbackMime string) (*domain.Upload, error) {
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, domain.Validation("invalid base64 payload")
	}
	if len(data) == 0 {
		return nil, domain.Validation("empty data url payload")
	}
	return &domain.Upload{Data: data, MimeType: sniffMime(data, fallbackMime)}, nil
}

// sniffMime detects the content type of data, keeping fallback when the bytes
// are not recognised.
func sniffMime(data []byte, fallback string) string {
	detected := domain.NormalizeMime(mimetype.Detect(data).String())
	if detected == "" || detected == "application/octet-stream" || detected == "text/plain" {
		return fallback
	}
	return detected
}
