// Package ratelimit throttles the data stream of a download to a fixed
// number of bytes per second.
//
// It is a thin io.Reader adapter over a golang.org/x/time/rate token bucket
// whose burst is one second worth of data.
package ratelimit

import (
	"context"
	"io"
	"math"

	"golang.org/x/time/rate"
)

// reader wraps an io.Reader and charges the bucket for every byte read.
type reader struct {
	ctx     context.Context
	r       io.Reader
	limiter *rate.Limiter
}

// NewLimiter returns a token bucket for bytesPerSecond, or nil when the rate
// is not positive (unlimited).
func NewLimiter(bytesPerSecond int64) *rate.Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	burst := bytesPerSecond
	if burst > math.MaxInt32 {
		burst = math.MaxInt32
	}
	return rate.NewLimiter(rate.Limit(bytesPerSecond), int(burst))
}

// NewReader creates a rate-limited reader. With a non-positive rate
// r is returned unchanged. Waiting for tokens stops when ctx
// is done.
func NewReader(ctx context.Context, r io.Reader, bytesPerSecond int64) io.Reader {
	limiter := NewLimiter(bytesPerSecond)
	if limiter == nil {
		return r
	}
	return &reader{ctx: ctx, r: r, limiter: limiter}
}

// Read implements io.Reader. A single read never asks for more than one
// burst, so the bucket can always satisfy it.
func (r *reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if burst := r.limiter.Burst(); len(p) > burst {
		p = p[:burst]
	}

	n, err := r.r.Read(p)
	if n > 0 {
		if werr := r.limiter.WaitN(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
