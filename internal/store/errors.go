package store

import (
	"errors"
	"fmt"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/kv"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("revision conflict")
	ErrSerialization = errors.New("malformed stored record")
	ErrUnavailable   = errors.New("backing store unavailable")
	ErrCycle         = errors.New("parent chain would form a cycle")
)

// OpError describes a failed store operation. Err is always one of the
// package sentinels, possibly wrapped with backend detail.
type OpError struct {
	Op   string
	Kind string
	ID   string
	Err  error
}

func (e *OpError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s %s: %v", e.Op, e.Kind, e.ID, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

const (
	kindDocument = "document"
	kindList     = "list"
)

// classify maps backing-store errors onto the package sentinels so callers
// never see backend error values.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict),
		errors.Is(err, ErrSerialization), errors.Is(err, ErrUnavailable),
		errors.Is(err, ErrCycle):
		return err
	case errors.Is(err, kv.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, kv.ErrConflict):
		return ErrConflict
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

func opError(op, kind, id string, err error) error {
	return &OpError{Op: op, Kind: kind, ID: id, Err: classify(err)}
}
