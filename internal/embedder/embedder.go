// Package embedder defines the contract for the external face-embedding
// model server.
package embedder

import "context"

// Result is the embedding extracted from one image. Found is false when no
// face was detected, which is a normal outcome rather than an error.
type Result struct {
	Found   bool
	Vector  []float32
	Message string
}

// Client exposes the subset of the model server used by the verification
// flow.
type Client interface {
	Embed(ctx context.Context, imageBytes []byte) (*Result, error)
}
