package db

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// Operation is a store action that may be retried.
type Operation func() error

// IsRetryableError decides whether a failed attempt should be retried.
type IsRetryableError func(err error) bool

const DefaultMaxRetries = 3

// Try executes op, retrying up to DefaultMaxRetries times on duplicate key
// errors. A random UUID collision is vanishingly rare; regenerating the ID
// and retrying beats surfacing the insert failure.
func Try(op Operation) error {
	return WithRetries(op, DefaultMaxRetries, IsMongoDuplicateKeyError)
}

// WithRetries executes op up to maxRetries+1 times, with a short incremental
// backoff between retryable failures. Non-retryable errors return
// immediately.
func WithRetries(op Operation, maxRetries int, retryable IsRetryableError) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if attempt == maxRetries || !retryable(err) {
			break
		}
		time.Sleep(time.Duration(50*(attempt+1)) * time.Millisecond)
	}
	return err
}

// IsMongoDuplicateKeyError reports whether err is a MongoDB duplicate key
// error (code 11000), including inside bulk writes.
func IsMongoDuplicateKeyError(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, e := range bwe.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return false
}
