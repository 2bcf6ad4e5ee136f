package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/octobees/decisionfindr/api/internal/entity"
)

// CSV writes the header and one record per result.
func CSV(results []entity.SearchResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range results {
		if err := w.Write(row(r)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
