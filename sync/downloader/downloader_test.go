package downloader

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBatchDownloaderSucceedsOnFirstTry(t *testing.T) {
	d := DownloaderFunc[int, int](func(_ context.Context, key int) Outcome[int] {
		return Ok(key * 2)
	})
	bd := New[int, int](d, 2)

	values, err := bd.Download(context.Background(), []int{1, 2, 3, 4, 5})
	require.NoError(t, err)
	require.Equal(t, []int{2, 4, 6, 8, 10}, values)
}

func TestBatchDownloaderRetriesThenSucceeds(t *testing.T) {
	var attempts atomic.Int32
	d := DownloaderFunc[int, int](func(_ context.Context, key int) Outcome[int] {
		n := attempts.Add(1)
		if n < 2 {
			return RetryErr[int](errors.New("transient"))
		}
		return Ok(key)
	})
	bd := NewWithConfig[int, int](d, Config{
		BatchSize:  1,
		MaxRetries: 3,
		Backoff:    []ExponentialStep{0, 0, 0},
	})

	values, err := bd.Download(context.Background(), []int{7})
	require.NoError(t, err)
	require.Equal(t, []int{7}, values)
	require.EqualValues(t, 2, attempts.Load())
}

func TestBatchDownloaderAbortsOnPermanentError(t *testing.T) {
	permanent := errors.New("boom")
	d := DownloaderFunc[int, int](func(_ context.Context, key int) Outcome[int] {
		return PermanentErr[int](permanent)
	})
	bd := New[int, int](d, 4)

	_, err := bd.Download(context.Background(), []int{1, 2, 3})
	require.ErrorIs(t, err, permanent)
}

func TestBatchDownloaderExhaustsRetries(t *testing.T) {
	transient := errors.New("still failing")
	d := DownloaderFunc[int, int](func(_ context.Context, key int) Outcome[int] {
		return RetryErr[int](transient)
	})
	bd := NewWithConfig[int, int](d, Config{
		BatchSize:  1,
		MaxRetries: 2,
		Backoff:    []ExponentialStep{0, 0},
	})

	_, err := bd.Download(context.Background(), []int{1})
	require.ErrorIs(t, err, transient)
}
