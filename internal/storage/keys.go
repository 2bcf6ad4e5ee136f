package storage

import (
	"sort"
	"strings"
)

// Feature names one kind of per-user document.
type Feature string

const (
	FeatureResultsCache Feature = "results_cache"
	FeatureAccumulated  Feature = "accumulated_results"
	FeatureHistory      Feature = "search_history"
	FeatureTemplates    Feature = "search_templates"
	FeatureLists        Feature = "prospect_lists"
)

// DefaultLegacyKeys maps features to the non-namespaced keys written before
// documents were scoped per user.
var DefaultLegacyKeys = map[Feature]string{
	FeatureAccumulated: "accumulatedResults",
	FeatureHistory:     "searchHistory",
	FeatureTemplates:   "searchTemplates",
	FeatureLists:       "prospectLists",
}

// Key addresses one document: {feature}_{userID}, optionally followed by :{qualifier}.
type Key struct {
	Feature   Feature
	UserID    string
	Qualifier string
}

// KeyFor builds the namespaced key of a feature for a user.
func KeyFor(feature Feature, userID string) Key {
	return Key{Feature: feature, UserID: strings.TrimSpace(userID)}
}

// With returns a copy of k narrowed to a qualifier, e.g. one cache entry.
func (k Key) With(qualifier string) Key {
	k.Qualifier = qualifier
	return k
}

// String renders the storage key. Keys without a user render as "",
// which the adapter treats as absent on read and a no-op on write.
func (k Key) String() string {
	if k.UserID == "" || k.Feature == "" {
		return ""
	}
	s := string(k.Feature) + "_" + k.UserID
	if k.Qualifier != "" {
		s += ":" + k.Qualifier
	}
	return s
}

func (f Feature) prefix() string {
	return string(f) + "_"
}

func parseKey(feature Feature, raw string) (Key, bool) {
	rest, ok := strings.CutPrefix(raw, feature.prefix())
	if !ok || rest == "" {
		return Key{}, false
	}
	userID, qualifier, _ := strings.Cut(rest, ":")
	if userID == "" {
		return Key{}, false
	}
	return Key{Feature: feature, UserID: userID, Qualifier: qualifier}, true
}

func sortedFeatures(m map[Feature]string) []Feature {
	out := make([]Feature, 0, len(m))
	for f := range m {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
