// Package tokencount implements embedder.TokenEstimator over
// pkoukk/tiktoken-go, the same encoder chunker/token uses to bound chunk
// size, so the token budget enforced at embedding time is measured with
// the same ruler used at chunking time.
package tokencount

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Estimator wraps a tiktoken encoding.
type Estimator struct {
	enc *tiktoken.Tiktoken
}

// New loads the named encoding (e.g. "cl100k_base").
func New(encoding string) (*Estimator, error) {
	if encoding == "" {
		encoding = "cl100k_base"
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("tokencount: failed to load encoding %s: %w", encoding, err)
	}
	return &Estimator{enc: enc}, nil
}

// EstimateTokens implements embedder.TokenEstimator.
func (e *Estimator) EstimateTokens(text string) int {
	return len(e.enc.Encode(text, nil, nil))
}
