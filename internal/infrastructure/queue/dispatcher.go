package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dentalscribe/submission-api/internal/api/metrics"
	"github.com/dentalscribe/submission-api/internal/core/domain"
	"github.com/dentalscribe/submission-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	recordTimeout  = 5 * time.Second
)

// Dispatcher routes audit events to a fixed set of workers using consistent
// hashing on the submission id, guaranteeing per-submission event ordering.
type Dispatcher struct {
	workers []chan domain.SubmissionEvent
	service ports.EventService
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.EventService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.SubmissionEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SubmissionEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers drain their queue and stop
// when ctx is cancelled; Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Publish hands an event to the worker responsible for its submission. It
// never blocks: when the worker queue is full the event is dropped.
func (d *Dispatcher) Publish(event domain.SubmissionEvent) {
	idx := d.shardIndex(event.SubmissionID)
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditEventsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("submission_id", event.SubmissionID).
			Str("type", string(event.Type)).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a submission id deterministically to a worker index.
func (d *Dispatcher) shardIndex(submissionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(submissionID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.SubmissionEvent) {
	defer d.wg.Done()
	depth := metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case event := <-ch:
			depth.Set(float64(len(ch)))
			d.record(context.Background(), id, event)
		}
	}
}

// drain records whatever is still queued at shutdown.
func (d *Dispatcher) drain(id int, ch <-chan domain.SubmissionEvent) {
	for {
		select {
		case event := <-ch:
			d.record(context.Background(), id, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) record(parent context.Context, id int, event domain.SubmissionEvent) {
	ctx, cancel := context.WithTimeout(parent, recordTimeout)
	defer cancel()

	start := time.Now()
	err := d.service.Record(ctx, event)
	metrics.AuditRecordDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.AuditEventsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("submission_id", event.SubmissionID).
			Str("type", string(event.Type)).
			Int("worker_id", id).
			Msg("audit event recording failed")
		return
	}
	metrics.AuditEventsTotal.WithLabelValues("recorded").Inc()
}
