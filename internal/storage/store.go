package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned, wrapped, when a resource name does not resolve.
var ErrNotFound = errors.New("resource not found")

// Store is a flat namespace of named byte resources.
type Store interface {
	Init(ctx context.Context) error
	ReadAll(ctx context.Context, name string) ([]byte, error)
	WriteAll(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context, prefix string) ([]string, error)
}
