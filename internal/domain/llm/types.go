// Package llm defines the language model generation contract.
package llm

import "context"

// Stream yields text deltas as the upstream model produces them. Recv returns
// io.EOF after the final delta; Close releases the upstream connection and
// must be safe to call at any point, including mid-stream abandonment.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Generator wraps a remote language model.
type Generator interface {
	// Generate returns the complete answer for prompt in one call.
	Generate(ctx context.Context, prompt string) (string, error)
	// GenerateStream opens an incremental generation. The returned stream is
	// lazy, finite, and non-restartable.
	GenerateStream(ctx context.Context, prompt string) (Stream, error)
}
