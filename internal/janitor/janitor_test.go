package janitor

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/octobees/decisionfindr/api/internal/logging"
	"github.com/octobees/decisionfindr/api/internal/service"
)

type stubPurger struct {
	calls atomic.Int32
	err   error
}

func (s *stubPurger) PurgeExpired(ctx context.Context) (service.PurgeSummary, error) {
	s.calls.Add(1)
	return service.PurgeSummary{Scanned: 3, Removed: 1}, s.err
}

func TestJanitor_RunOnce(t *testing.T) {
	var buf bytes.Buffer
	p := &stubPurger{}
	j := New(p, "@every 1h", logging.NewWithWriter("info", &buf))

	summary, err := j.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Removed != 1 || p.calls.Load() != 1 {
		t.Fatalf("unexpected summary %+v calls=%d", summary, p.calls.Load())
	}
	if !bytes.Contains(buf.Bytes(), []byte("cache purge complete")) {
		t.Fatalf("expected summary log, got %q", buf.String())
	}

	p.err = errors.New("backend down")
	if _, err := j.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected purge error to surface")
	}
}

func TestJanitor_Schedule(t *testing.T) {
	p := &stubPurger{}
	j := New(p, "@every 1s", nil)
	if err := j.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for p.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	j.Stop()
	if p.calls.Load() == 0 {
		t.Fatalf("expected scheduled purge to run")
	}
}

func TestJanitor_InvalidSpec(t *testing.T) {
	j := New(&stubPurger{}, "not a schedule", nil)
	if err := j.Start(context.Background()); err == nil {
		t.Fatalf("expected invalid spec error")
	}
}
