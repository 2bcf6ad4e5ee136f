package entity

// CacheEntry is the durable snapshot of one search's results.
type CacheEntry struct {
	Timestamp   int64          `json:"timestamp"`
	Version     string         `json:"version"`
	QueryParams SearchParams   `json:"queryParams"`
	Results     []SearchResult `json:"results"`
}

// AccumulatedCollection holds every result a user has seen across searches.
type AccumulatedCollection struct {
	Timestamp int64          `json:"timestamp"`
	Version   string         `json:"version"`
	Results   []SearchResult `json:"results"`
}
