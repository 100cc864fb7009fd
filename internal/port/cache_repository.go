package port

import "context"

type CacheRepository interface {
	// SetIdempotency claims a checkout attempt key, returns false if it is
	// already taken.
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency frees a claimed key so an aborted attempt can be
	// retried by the caller.
	ReleaseIdempotency(ctx context.Context, key string) error
}
