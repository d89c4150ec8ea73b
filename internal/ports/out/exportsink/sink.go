package exportsink

import (
	"context"
	"io"
)

// Object describes a stored export.
type Object struct {
	Key         string
	ContentType string
	Size        int64
	// Location is a driver-specific address (file path or s3:// URI).
	Location string
}

// Sink persists serialized exports.
type Sink interface {
	Put(ctx context.Context, key string, contentType string, body io.Reader) (Object, error)
}
