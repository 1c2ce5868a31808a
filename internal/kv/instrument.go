package kv

import (
	"context"
	"errors"
	"time"

	"github.com/manuscriptos/manuscript/backend/go-services/pkg/logger"
	"github.com/manuscriptos/manuscript/backend/go-services/pkg/metrics"
)

// instrumented records metrics and debug logs around another Store.
type instrumented struct {
	next    Store
	backend string
}

// Instrument wraps s so every call is counted under the given backend label.
func Instrument(s Store, backend string) Store {
	return &instrumented{next: s, backend: backend}
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	metrics.StoreLatency.WithLabelValues(i.backend, op).Observe(time.Since(start).Seconds())
	metrics.StoreOperations.WithLabelValues(i.backend, op, resultLabel(err)).Inc()
	if errors.Is(err, ErrUnavailable) {
		logger.Warnf("kv %s %s failed: %v", i.backend, op, err)
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "unavailable"
	}
}

func (i *instrumented) Get(ctx context.Context, key string) (*Record, error) {
	start := time.Now()
	r, err := i.next.Get(ctx, key)
	i.observe("get", start, err)
	return r, err
}

func (i *instrumented) Put(ctx context.Context, rec *Record) (string, error) {
	start := time.Now()
	rev, err := i.next.Put(ctx, rec)
	i.observe("put", start, err)
	if err == nil {
		logger.Debugw("kv put", "backend", i.backend, "key", rec.Key, "rev", rev)
	}
	return rev, err
}

func (i *instrumented) Remove(ctx context.Context, key, rev string) error {
	start := time.Now()
	err := i.next.Remove(ctx, key, rev)
	i.observe("remove", start, err)
	return err
}

func (i *instrumented) Range(ctx context.Context, start, end string) ([]*Record, error) {
	t := time.Now()
	out, err := i.next.Range(ctx, start, end)
	i.observe("range", t, err)
	return out, err
}

func (i *instrumented) Close() error {
	return i.next.Close()
}
