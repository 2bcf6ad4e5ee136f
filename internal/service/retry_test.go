package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicy_Do(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 2, Base: time.Millisecond, Cap: 2 * time.Millisecond}
	tests := map[string]struct {
		err       error
		wantCalls int
	}{
		"retryable":     {err: retryableErr{retry: true}, wantCalls: 3},
		"not retryable": {err: retryableErr{retry: false}, wantCalls: 1},
		"plain error":   {err: errors.New("boom"), wantCalls: 1},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			calls := 0
			err := policy.Do(context.Background(), func(ctx context.Context) error {
				calls++
				return tt.err
			})
			if calls != tt.wantCalls {
				t.Fatalf("expected %d calls, got %d", tt.wantCalls, calls)
			}
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected original error back, got %v", err)
			}
		})
	}
}

func TestRetryPolicy_StopsOnSuccess(t *testing.T) {
	calls := 0
	err := RetryPolicy{MaxRetries: 5, Base: time.Millisecond}.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return retryableErr{retry: true}
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("expected success on second attempt, got calls=%d err=%v", calls, err)
	}
}
