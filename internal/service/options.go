package service

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/decisionfindr/api/internal/logging"
)

// Option configures the collaborators shared by every service.
type Option func(*base)

type base struct {
	now    func() time.Time
	logger *slog.Logger
	newID  func() string
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *base) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithIDGenerator overrides how ids for history entries, templates and lists are minted.
func WithIDGenerator(newID func() string) Option {
	return func(b *base) {
		if newID != nil {
			b.newID = newID
		}
	}
}

func newBase(opts []Option) base {
	b := base{
		now:    time.Now,
		logger: logging.OrDefault(nil),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b base) nowMillis() int64 {
	return b.now().UnixMilli()
}
