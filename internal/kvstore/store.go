// Package kvstore holds small client-side state (recovery token, signed-in
// user, admin preferences) behind a Store that is either persistent or
// in-process.
package kvstore

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("kvstore: key not found")

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
