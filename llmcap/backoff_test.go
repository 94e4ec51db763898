package llmcap

import (
	"context"
	"errors"
	"testing"
)

func TestWithBackoffRetriesTransientThenSucceeds(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), RetryConfig{MaxAttempts: 3}, func(ctx context.Context) error {
		attempts++
		if attempts < 2 {
			return Classify(ClassTransient, errors.New("rate limited"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestWithBackoffDoesNotRetryPermanent(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), RetryConfig{}, func(ctx context.Context) error {
		attempts++
		return Classify(ClassPermanent, errors.New("bad request"))
	})
	if err == nil {
		t.Fatal("expected error to propagate")
	}
	if attempts != 1 {
		t.Fatalf("permanent errors must not be retried, got %d attempts", attempts)
	}
}
