package app

import "context"

// Slots is the durable key/value storage the cart lives in. A missing slot
// reads as (nil, false, nil).
type Slots interface {
	Read(ctx context.Context, key string) ([]byte, bool, error)
	Write(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
