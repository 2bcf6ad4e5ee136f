package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/octobees/decisionfindr/api/internal/logging"
)

// Adapter layers JSON documents, per-user namespacing and legacy-key migration
// on top of a Store.
type Adapter struct {
	backend Store
	logger  *slog.Logger
	legacy  map[Feature]string
	owner   string

	mu         sync.Mutex
	migrated   map[string]bool
	migrations singleflight.Group
}

// AdapterOption configures optional behaviour.
type AdapterOption func(*Adapter)

// WithLegacyKeys overrides the legacy keys migrated on first access. A nil map disables migration.
func WithLegacyKeys(keys map[Feature]string) AdapterOption {
	return func(a *Adapter) {
		a.legacy = keys
	}
}

// WithLegacyOwner names the only user that legacy documents migrate to.
// Without an owner, legacy keys are left untouched.
func WithLegacyOwner(userID string) AdapterOption {
	return func(a *Adapter) {
		a.owner = userID
	}
}

// WithLogger sets the logger used for corruption and migration warnings.
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAdapter wraps backend.
func NewAdapter(backend Store, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		backend:  backend,
		logger:   logging.OrDefault(nil),
		legacy:   DefaultLegacyKeys,
		migrated: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load decodes the document under key into dst. It reports false when the key is
// absent, has no user, or holds malformed JSON; dst is reset to its zero value then.
func (a *Adapter) Load(ctx context.Context, key Key, dst any) (bool, error) {
	k := key.String()
	if k == "" {
		return false, nil
	}
	a.ensureMigrated(ctx, key.UserID)

	raw, ok, err := a.backend.Get(ctx, k)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", k, err)
	}
	if !ok || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		a.logger.Warn("discarding malformed stored value", "key", k, "error", err)
		resetValue(dst)
		return false, nil
	}
	return true, nil
}

// Save encodes v as JSON under key. Keys without a user are skipped.
func (a *Adapter) Save(ctx context.Context, key Key, v any) error {
	k := key.String()
	if k == "" {
		return nil
	}
	a.ensureMigrated(ctx, key.UserID)

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", k, err)
	}
	if err := a.backend.Set(ctx, k, data); err != nil {
		return fmt.Errorf("save %s: %w", k, err)
	}
	return nil
}

// Remove deletes the document under key. Keys without a user are skipped.
func (a *Adapter) Remove(ctx context.Context, key Key) error {
	k := key.String()
	if k == "" {
		return nil
	}
	if err := a.backend.Delete(ctx, k); err != nil {
		return fmt.Errorf("remove %s: %w", k, err)
	}
	return nil
}

// Keys lists every stored key of a feature across all users.
func (a *Adapter) Keys(ctx context.Context, feature Feature) ([]Key, error) {
	raw, err := a.backend.Keys(ctx, feature.prefix())
	if err != nil {
		return nil, fmt.Errorf("list %s keys: %w", feature, err)
	}
	keys := make([]Key, 0, len(raw))
	for _, r := range raw {
		if key, ok := parseKey(feature, r); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func resetValue(dst any) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return
	}
	rv.Elem().Set(reflect.Zero(rv.Elem().Type()))
}
