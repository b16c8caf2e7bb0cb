// Package downloader implements the generic batch-download-with-retry
// contract spec §4.6 names: process keys in fixed-size batches, classify
// each key's result as Ok/Retry/Err, and retry only the failed keys with
// exponential backoff rather than redoing the whole batch.
//
// Grounded on original_source/crates/sync/stage/examples/simple_downloader.rs
// (the Downloader trait + DownloaderResult::{Ok,Retry,Err} three-way split)
// and crates/sync/stage/src/blocks/mod.rs (BatchBlockDownloader's real
// caller shape, batch-then-concurrent-within-batch execution). The
// concurrency style — bounded parallel fetches joined with an error group —
// follows the teacher's turbo/snapshotsync polling/orchestration idiom.
package downloader

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Outcome is one key's download result: exactly one of Value (success),
// a retryable Err (Retry=true), or a permanent Err (Retry=false).
type Outcome[V any] struct {
	Value V
	Err   error
	Retry bool
}

// Ok builds a successful Outcome.
func Ok[V any](v V) Outcome[V] { return Outcome[V]{Value: v} }

// RetryErr builds a transient-failure Outcome that BatchDownloader retries.
func RetryErr[V any](err error) Outcome[V] { return Outcome[V]{Err: err, Retry: true} }

// PermanentErr builds a non-retryable failure Outcome that aborts the batch
// immediately.
func PermanentErr[V any](err error) Outcome[V] { return Outcome[V]{Err: err, Retry: false} }

// Downloader fetches one Value per Key; BatchDownloader drives many
// concurrently and manages the retry loop around it.
type Downloader[K any, V any] interface {
	Download(ctx context.Context, key K) Outcome[V]
}

// DownloaderFunc adapts a plain function to the Downloader interface.
type DownloaderFunc[K any, V any] func(ctx context.Context, key K) Outcome[V]

func (f DownloaderFunc[K, V]) Download(ctx context.Context, key K) Outcome[V] { return f(ctx, key) }

// Config tunes BatchDownloader's batching/retry/rate-limiting behavior.
type Config struct {
	// BatchSize is how many keys are fetched concurrently per round.
	BatchSize int
	// MaxRetries caps how many times one key is retried before the whole
	// download aborts (spec §4.6 "up to a max retry count").
	MaxRetries int
	// Backoff schedules the delay before each successive retry; defaults
	// to {3s, 6s, 12s} per spec §4.6's example schedule if nil.
	Backoff []ExponentialStep
	// RateLimit, if non-nil, is waited on before every individual
	// download call — a courtesy throttle for a real upstream gateway
	// rather than a correctness requirement.
	RateLimit *rate.Limiter
}

// ExponentialStep is one entry in a fixed backoff schedule.
type ExponentialStep = backoffDuration

// BatchDownloader processes a key list in fixed-size batches, retrying only
// the keys that came back Retry, per spec §4.6.
type BatchDownloader[K any, V any] struct {
	downloader Downloader[K, V]
	cfg        Config
}

// New builds a BatchDownloader with the given batch size and default
// {3s, 6s, 12s} backoff / 3 max retries, matching original_source's
// documented example configuration.
func New[K any, V any](d Downloader[K, V], batchSize int) *BatchDownloader[K, V] {
	return NewWithConfig(d, Config{
		BatchSize:  batchSize,
		MaxRetries: len(DefaultBackoff),
		Backoff:    DefaultBackoff,
	})
}

func NewWithConfig[K any, V any](d Downloader[K, V], cfg Config) *BatchDownloader[K, V] {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if len(cfg.Backoff) == 0 {
		cfg.Backoff = DefaultBackoff
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = len(cfg.Backoff)
	}
	return &BatchDownloader[K, V]{downloader: d, cfg: cfg}
}

// Download fetches every key, in order, returning as soon as a key fails
// permanently or exhausts its retries. Batches run sequentially; keys
// within one batch run concurrently (spec §4.6 "Batches are processed
// sequentially, items within batches concurrently" per the original
// example's own summary).
func (b *BatchDownloader[K, V]) Download(ctx context.Context, keys []K) ([]V, error) {
	values := make([]V, len(keys))

	for start := 0; start < len(keys); start += b.cfg.BatchSize {
		end := start + b.cfg.BatchSize
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[start:end]
		results := make([]V, len(batch))

		if err := b.downloadBatch(ctx, batch, results); err != nil {
			return nil, err
		}
		copy(values[start:end], results)
	}
	return values, nil
}

func (b *BatchDownloader[K, V]) downloadBatch(ctx context.Context, batch []K, out []V) error {
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range batch {
		i, key := i, key
		g.Go(func() error {
			v, err := b.downloadOne(gctx, key)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	return g.Wait()
}

func (b *BatchDownloader[K, V]) downloadOne(ctx context.Context, key K) (V, error) {
	var lastErr error
	for attempt := 0; attempt <= b.cfg.MaxRetries; attempt++ {
		if b.cfg.RateLimit != nil {
			if err := b.cfg.RateLimit.Wait(ctx); err != nil {
				var zero V
				return zero, err
			}
		}

		outcome := b.downloader.Download(ctx, key)
		if outcome.Err == nil {
			return outcome.Value, nil
		}
		lastErr = outcome.Err
		if !outcome.Retry {
			var zero V
			return zero, fmt.Errorf("downloader: permanent failure: %w", lastErr)
		}
		if attempt == b.cfg.MaxRetries {
			break
		}

		delay := b.cfg.Backoff[attempt%len(b.cfg.Backoff)]
		select {
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		case <-time.After(time.Duration(delay)):
		}
	}
	var zero V
	return zero, fmt.Errorf("downloader: exhausted %d retries: %w", b.cfg.MaxRetries, lastErr)
}

// backoffDuration is a time.Duration alias kept distinct so Config's public
// surface doesn't leak the stdlib type name into call sites that only ever
// see ExponentialStep.
type backoffDuration = time.Duration

// DefaultBackoff is the {3s, 6s, 12s} schedule spec §4.6 names as its
// example, and original_source's simple_downloader.rs documents as the
// library default.
var DefaultBackoff = []ExponentialStep{3 * time.Second, 6 * time.Second, 12 * time.Second}

// NewExponentialBackOff builds a cenkalti/backoff policy that starts at
// DefaultBackoff[0] and doubles (3s, 6s, 12s, ...), with the library's
// default jitter and no cap on elapsed time, exposed for callers that want
// that schedule wired
// into a retry loop expressed with that library's own API directly (e.g. a
// downloader composed with backoff.Retry instead of BatchDownloader's
// internal loop).
func NewExponentialBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = DefaultBackoff[0]
	b.Multiplier = 2
	b.MaxElapsedTime = 0
	return b
}
