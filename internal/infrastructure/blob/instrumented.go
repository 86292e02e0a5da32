package blob

import (
	"context"
	"time"

	"github.com/dentalscribe/submission-api/internal/api/metrics"
	"github.com/dentalscribe/submission-api/internal/core/domain"
	"github.com/dentalscribe/submission-api/internal/core/ports"
)

// Instrumented records upload metrics around another store.
type Instrumented struct {
	next   ports.BlobStore
	driver string
}

func NewInstrumented(next ports.BlobStore, driver string) *Instrumented {
	return &Instrumented{next: next, driver: driver}
}

func (s *Instrumented) Store(ctx context.Context, upload domain.Upload) (string, error) {
	start := time.Now()
	url, err := s.next.Store(ctx, upload)
	metrics.BlobUploadDuration.WithLabelValues(s.driver).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.BlobUploadsTotal.WithLabelValues(s.driver, "error").Inc()
		return "", err
	}
	metrics.BlobUploadsTotal.WithLabelValues(s.driver, "ok").Inc()
	metrics.BlobUploadBytes.Observe(float64(len(upload.Data)))
	return url, nil
}
