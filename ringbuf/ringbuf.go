// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ringbuf is the blocking counterpart to [code.hybscloud.com/concur/lfring]:
// the same bounded FIFO rings, but Enqueue/Dequeue wait for room or data
// instead of reporting [lfring.ErrWouldBlock] back to the caller.
//
// A Ring is built from mode flags rather than a fixed algorithm choice:
//
//   - ModeSP/ModeMP, ModeSC/ModeMC select the producer/consumer
//     constraint, exactly as [lfring.Builder.SingleProducer] and
//     [lfring.Builder.SingleConsumer] do for the non-blocking layer.
//   - NBEnq/NBDeq make one side non-blocking: the call truncates
//     against whatever room or data is available right now instead of
//     spin-waiting.
//   - LFDeq makes the consumer side lock-free: it still waits for data
//     to exist, but retries immediately on contention rather than
//     backing off, so no consumer's progress can be held up by another
//     consumer's stall.
//
// LFDeq combined with NBEnq is rejected at construction — the two
// disciplines pull in opposite directions (a lock-free consumer wants
// every producer to eventually land, a non-blocking producer wants to
// walk away the moment it can't) — by returning an error, not a panic:
// this is a caller-supplied combination, not a broken invariant.
package ringbuf

import (
	"errors"

	"code.hybscloud.com/concur/lfring"
	"code.hybscloud.com/spin"
)

// Option configures a Ring at construction time.
type Option func(*config)

type config struct {
	singleProducer bool
	singleConsumer bool
	nbEnq          bool
	nbDeq          bool
	lfDeq          bool
}

// ModeSP declares a single producer goroutine.
func ModeSP() Option { return func(c *config) { c.singleProducer = true } }

// ModeMP declares multiple producer goroutines (default).
func ModeMP() Option { return func(c *config) { c.singleProducer = false } }

// ModeSC declares a single consumer goroutine.
func ModeSC() Option { return func(c *config) { c.singleConsumer = true } }

// ModeMC declares multiple consumer goroutines (default).
func ModeMC() Option { return func(c *config) { c.singleConsumer = false } }

// NBEnq makes Enqueue non-blocking: it places as much as room allows
// and returns [lfring.ErrWouldBlock] instead of waiting for the rest.
func NBEnq() Option { return func(c *config) { c.nbEnq = true } }

// NBDeq makes Dequeue non-blocking: it returns whatever is available
// right now, or [lfring.ErrWouldBlock] if nothing is.
func NBDeq() Option { return func(c *config) { c.nbDeq = true } }

// LFDeq makes the consumer side lock-free: Dequeue still waits for
// data, but the wait never backs off behind a stalled peer consumer.
func LFDeq() Option { return func(c *config) { c.lfDeq = true } }

// ErrIncompatibleModes is returned by New when LFDeq is combined with
// NBEnq.
var ErrIncompatibleModes = errors.New("ringbuf: LFDeq cannot be combined with NBEnq")

// Ring is a bounded blocking FIFO built over an [lfring.Queue].
type Ring[T any] struct {
	q     lfring.Queue[T]
	nbEnq bool
	nbDeq bool
	lfDeq bool
}

// New creates a Ring of the given capacity (rounded up to a power of
// two by the underlying [lfring.Builder]) configured by opts.
//
// Panics if capacity < 1, matching [lfring.New]. Returns a non-nil
// error only for the LFDeq+NBEnq combination.
func New[T any](capacity int, opts ...Option) (*Ring[T], error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.lfDeq && cfg.nbEnq {
		return nil, ErrIncompatibleModes
	}
	b := lfring.New(capacity)
	if cfg.singleProducer {
		b = b.SingleProducer()
	}
	if cfg.singleConsumer {
		b = b.SingleConsumer()
	}
	return &Ring[T]{
		q:     lfring.Build[T](b),
		nbEnq: cfg.nbEnq,
		nbDeq: cfg.nbDeq,
		lfDeq: cfg.lfDeq,
	}, nil
}

// Cap returns the ring's physical capacity.
func (r *Ring[T]) Cap() int { return r.q.Cap() }

// Enqueue places elem, blocking until room is available unless the
// ring was built with NBEnq, in which case it returns
// [lfring.ErrWouldBlock] immediately when full.
func (r *Ring[T]) Enqueue(elem *T) error {
	if r.nbEnq {
		return r.q.Enqueue(elem)
	}
	sw := spin.Wait{}
	for {
		err := r.q.Enqueue(elem)
		if err == nil {
			return nil
		}
		if !lfring.IsWouldBlock(err) {
			return err
		}
		sw.Once()
	}
}

// Dequeue removes and returns an element, blocking until one is
// available unless the ring was built with NBDeq, in which case it
// returns [lfring.ErrWouldBlock] immediately when empty.
//
// With LFDeq, the wait retries without backoff so no consumer can be
// held up by another consumer's stalled release.
func (r *Ring[T]) Dequeue() (T, error) {
	if r.nbDeq {
		return r.q.Dequeue()
	}
	if r.lfDeq {
		for {
			v, err := r.q.Dequeue()
			if err == nil || !lfring.IsWouldBlock(err) {
				return v, err
			}
		}
	}
	sw := spin.Wait{}
	for {
		v, err := r.q.Dequeue()
		if err == nil {
			return v, nil
		}
		if !lfring.IsWouldBlock(err) {
			return v, err
		}
		sw.Once()
	}
}

// EnqueueBatch places every element of elems, in order, blocking for
// room as needed unless the ring was built with NBEnq, in which case
// it places as many as fit right now and returns that count.
func (r *Ring[T]) EnqueueBatch(elems []T) (n int) {
	bp, ok := r.q.(lfring.BatchProducer[T])
	if !ok {
		for i := range elems {
			if err := r.Enqueue(&elems[i]); err != nil {
				return i
			}
		}
		return len(elems)
	}
	if r.nbEnq {
		return bp.EnqueueBatch(elems)
	}
	sw := spin.Wait{}
	for n < len(elems) {
		got := bp.EnqueueBatch(elems[n:])
		n += got
		if n < len(elems) {
			sw.Once()
		}
	}
	return n
}

// DequeueBatch fills out with dequeued elements, blocking until
// len(out) elements have arrived unless the ring was built with
// NBDeq, in which case it returns as many as are available right now.
// index is the queue-relative position of out[0], taken from the first
// underlying batch call that returned any elements.
func (r *Ring[T]) DequeueBatch(out []T) (n int, index uint64) {
	bc, ok := r.q.(lfring.BatchConsumer[T])
	if !ok {
		for n < len(out) {
			v, err := r.Dequeue()
			if err != nil {
				return n, index
			}
			out[n] = v
			n++
		}
		return n, index
	}
	if r.nbDeq {
		return bc.DequeueBatch(out)
	}
	sw := spin.Wait{}
	first := true
	for n < len(out) {
		got, idx := bc.DequeueBatch(out[n:])
		if got > 0 {
			if first {
				index = idx
				first = false
			}
			n += got
		}
		if n < len(out) {
			sw.Once()
		}
	}
	return n, index
}

// EnqueueBatchNB makes a single non-blocking attempt regardless of
// the ring's own mode, placing as many of elems as fit right now.
func (r *Ring[T]) EnqueueBatchNB(elems []T) (n int) {
	bp, ok := r.q.(lfring.BatchProducer[T])
	if !ok {
		for i := range elems {
			if err := r.q.Enqueue(&elems[i]); err != nil {
				return i
			}
		}
		return len(elems)
	}
	return bp.EnqueueBatch(elems)
}

// DequeueBatchNB makes a single non-blocking attempt regardless of
// the ring's own mode, filling out with as many elements as are
// available right now.
func (r *Ring[T]) DequeueBatchNB(out []T) (n int, index uint64) {
	bc, ok := r.q.(lfring.BatchConsumer[T])
	if !ok {
		for n < len(out) {
			v, err := r.q.Dequeue()
			if err != nil {
				return n, index
			}
			out[n] = v
			n++
		}
		return n, index
	}
	return bc.DequeueBatch(out)
}
