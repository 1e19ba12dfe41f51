package gridimpact

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnknownRegion is returned when a provider code or name is missing
	// from the region catalog.
	ErrUnknownRegion = errors.New("unknown region")
	// ErrMissingParent is returned when gap-filling finds neither a previous
	// period nor a parent region to synthesize an aggregate from.
	ErrMissingParent = errors.New("no fallback for missing aggregate")
)

// Source ingests one provider feed into the store.
type Source interface {
	// Name identifies the provider in logs and reports
	Name() string
	// Ingest reads the whole feed and upserts its observations within r
	Ingest(ctx context.Context, store *Store, r Range) (lines int, err error)
}

// SourceErr wraps a failure of a source with the failing operation.
type SourceErr struct {
	Err       error
	Source    string
	Operation string
}

func (sourceErr *SourceErr) Error() string {
	return fmt.Sprintf("source %s failed (op: %s): %s", sourceErr.Source, sourceErr.Operation, sourceErr.Err.Error())
}

func (sourceErr *SourceErr) Unwrap() error {
	return sourceErr.Err
}
