package distinct

import (
	"errors"
	"fmt"
)

// ErrPrecisionExhausted reports that repeated halving drove the retention
// probability below the smallest positive float64. The stream outgrew the
// length bound the buffer was sized for; the instance is dead and the caller
// should rebuild with a larger capacity rather than trust further estimates.
var ErrPrecisionExhausted = errors.New("distinct: retention probability underflowed, stream exceeded the sizing bound")

// Option configures an Estimator at construction.
type Option func(*config)

type config struct {
	source Source
}

// WithSource replaces the default randomness with src, typically a seeded
// Source so a run can be reproduced.
func WithSource(src Source) Option {
	return func(c *config) { c.source = src }
}

// Estimator approximates the number of distinct elements observed in a
// stream. Elements are opaque: identity is whatever == says for T.
//
// A single instance is not safe for concurrent use. Callers that ingest from
// multiple goroutines must hold one lock across Ingest and Estimate, or run
// an independent Estimator per stream partition.
type Estimator[T comparable] struct {
	buffer    *sampleBuffer[T]
	source    Source
	capacity  int
	p         float64
	processed uint64
	exhausted bool
}

// New returns an Estimator with an explicit sample-buffer capacity. Use
// NewFromAccuracy to derive the capacity from accuracy targets instead.
func New[T comparable](capacity int, opts ...Option) (*Estimator[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("distinct: capacity %d, need at least 1", capacity)
	}
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.source == nil {
		cfg.source = NewSource()
	}
	return &Estimator[T]{
		buffer:   newSampleBuffer[T](capacity),
		source:   cfg.source,
		capacity: capacity,
		p:        1,
	}, nil
}

// NewFromAccuracy returns an Estimator sized so the estimate is within a
// relative error eps of the truth with probability at least 1-delta, for
// streams of at most n elements.
func NewFromAccuracy[T comparable](eps, delta float64, n uint64, opts ...Option) (*Estimator[T], error) {
	capacity, err := CapacityForAccuracy(eps, delta, n)
	if err != nil {
		return nil, err
	}
	return New[T](capacity, opts...)
}

// Ingest feeds one element from the stream into the estimator:
//
//  1. if the buffer holds v, remove it
//  2. insert v with probability p
//  3. if the buffer is now full, thin it once and halve p
//
// The thin in step 3 runs exactly once per call even when it happens not to
// shrink the buffer; any leftover excess is worked off by later removals and
// thins. Ingest fails with ErrPrecisionExhausted once halving p would
// underflow to zero, and every call after that fails the same way.
func (e *Estimator[T]) Ingest(v T) error {
	if e.exhausted {
		return ErrPrecisionExhausted
	}

	if e.buffer.contains(v) {
		e.buffer.remove(v)
	}
	if e.source.Bernoulli(e.p) {
		e.buffer.insert(v)
	}
	if e.buffer.size() >= e.capacity {
		halved := e.p / 2
		if halved == 0 {
			e.exhausted = true
			return ErrPrecisionExhausted
		}
		e.buffer.thin(e.source)
		e.p = halved
	}

	e.processed++
	return nil
}

// Estimate returns the current approximate distinct count: the number of
// retained elements divided by the retention probability. It is a pure read,
// callable at any point; before any ingestion it returns 0.
func (e *Estimator[T]) Estimate() float64 {
	return float64(e.buffer.size()) / e.p
}

// ElementsProcessed returns the number of elements ingested so far. This is
// a diagnostics counter of stream length, not a distinct count.
func (e *Estimator[T]) ElementsProcessed() uint64 {
	return e.processed
}

// Capacity returns the sample-buffer capacity the estimator was built with.
func (e *Estimator[T]) Capacity() int {
	return e.capacity
}

// RetentionProbability returns the current per-element survival probability
// p. It starts at 1 and halves at every thinning event.
func (e *Estimator[T]) RetentionProbability() float64 {
	return e.p
}

// SampleSize returns how many elements the buffer currently retains.
func (e *Estimator[T]) SampleSize() int {
	return e.buffer.size()
}
