package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pixelforge/nexus/internal/core/ports"
	"github.com/pixelforge/nexus/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	deleteTimeout  = 30 * time.Second
	drainTimeout   = 10 * time.Second
)

// Dispatcher deletes orphaned blobs in the background. Keys are sharded onto
// a fixed set of workers by hash so repeated keys land on the same worker.
type Dispatcher struct {
	workers []chan string
	store   ports.BlobStore
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, store ports.BlobStore, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan string, numWorkers),
		store:   store,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. When ctx is cancelled each worker
// drains the keys still buffered in its queue before returning.
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

// Enqueue schedules key for deletion without blocking. A full worker queue
// drops the key and logs it so the orphan can be removed by hand.
func (d *Dispatcher) Enqueue(key string) {
	if key == "" {
		return
	}
	idx := d.shardIndex(key)
	select {
	case d.workers[idx] <- key:
		metrics.BlobCleanupQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.BlobCleanupTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("blob_key", key).Int("worker_id", idx).Msg("blob cleanup queue full, dropping key")
	}
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	defer d.wg.Done()
	depth := metrics.BlobCleanupQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			d.drain(ctx, id, ch)
			return
		case key := <-ch:
			depth.Dec()
			d.delete(ctx, id, key)
		}
	}
}

// drain deletes the keys left in ch within drainTimeout. Keys still queued
// once the budget is spent are counted as dropped.
func (d *Dispatcher) drain(ctx context.Context, id int, ch <-chan string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()
	depth := metrics.BlobCleanupQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case key := <-ch:
			depth.Dec()
			if ctx.Err() != nil {
				metrics.BlobCleanupTotal.WithLabelValues("dropped").Inc()
				d.log.Warn().Str("blob_key", key).Int("worker_id", id).Msg("shutdown drain timed out, dropping key")
				continue
			}
			d.delete(ctx, id, key)
		default:
			return
		}
	}
}

func (d *Dispatcher) delete(ctx context.Context, worker int, key string) {
	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	start := time.Now()
	err := d.store.Delete(ctx, key)
	metrics.BlobCleanupDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.BlobCleanupTotal.WithLabelValues("error").Inc()
		d.log.Error().Err(err).
			Str("blob_key", key).
			Int("worker_id", worker).
			Msg("blob cleanup failed")
		return
	}
	metrics.BlobCleanupTotal.WithLabelValues("ok").Inc()
	d.log.Debug().Str("blob_key", key).Int("worker_id", worker).Msg("blob removed")
}
