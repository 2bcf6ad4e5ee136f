package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// MigrationReport counts what a legacy-key migration did for one user.
type MigrationReport struct {
	Copied  int
	Removed int
}

// Migrate moves every known legacy key into the owner's namespace and deletes it.
// Any other user gets an empty report and sees nothing. A namespaced document
// that already exists is never overwritten. Running it again is a no-op because
// the legacy keys are gone.
func (a *Adapter) Migrate(ctx context.Context, userID string) (MigrationReport, error) {
	var report MigrationReport
	if a.owner == "" || userID != a.owner {
		return report, nil
	}
	for _, feature := range sortedFeatures(a.legacy) {
		legacyKey := a.legacy[feature]
		target := KeyFor(feature, userID).String()
		if legacyKey == "" || target == "" {
			continue
		}

		raw, ok, err := a.backend.Get(ctx, legacyKey)
		if err != nil {
			return report, fmt.Errorf("read legacy key %s: %w", legacyKey, err)
		}
		if !ok {
			continue
		}

		if json.Valid(raw) {
			_, exists, err := a.backend.Get(ctx, target)
			if err != nil {
				return report, fmt.Errorf("read %s: %w", target, err)
			}
			if !exists {
				if err := a.backend.Set(ctx, target, raw); err != nil {
					return report, fmt.Errorf("copy %s to %s: %w", legacyKey, target, err)
				}
				report.Copied++
			}
		} else {
			a.logger.Warn("dropping malformed legacy value", "key", legacyKey)
		}

		if err := a.backend.Delete(ctx, legacyKey); err != nil {
			return report, fmt.Errorf("delete legacy key %s: %w", legacyKey, err)
		}
		report.Removed++
	}
	return report, nil
}

// ensureMigrated runs Migrate once per process for the legacy owner. Concurrent
// first accesses share one run; failures are retried on the next access.
func (a *Adapter) ensureMigrated(ctx context.Context, userID string) {
	if len(a.legacy) == 0 || userID == "" || userID != a.owner {
		return
	}

	a.mu.Lock()
	done := a.migrated[userID]
	a.mu.Unlock()
	if done {
		return
	}

	_, _, _ = a.migrations.Do(userID, func() (any, error) {
		a.mu.Lock()
		done := a.migrated[userID]
		a.mu.Unlock()
		if done {
			return nil, nil
		}

		report, err := a.Migrate(ctx, userID)
		if err != nil {
			a.logger.Warn("legacy storage migration failed", "user_id", userID, "error", err)
			return nil, err
		}
		if report.Removed > 0 {
			a.logger.Info("migrated legacy storage keys", "user_id", userID, "copied", report.Copied, "removed", report.Removed)
		}
		a.mu.Lock()
		a.migrated[userID] = true
		a.mu.Unlock()
		return nil, nil
	})
}
