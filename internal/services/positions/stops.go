package positions

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// LoadStops reads the manual stops file: a JSON object of ticker -> stop price.
// A missing file yields an empty map. Keys are upper-cased; non-numeric values are skipped.
func LoadStops(path string) (map[string]float64, error) {
	stops := make(map[string]float64)
	if path == "" {
		return stops, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return stops, nil
	}
	if err != nil {
		return stops, fmt.Errorf("failed to read stops file: %w", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return stops, fmt.Errorf("failed to parse stops file %s: %w", path, err)
	}

	for ticker, value := range raw {
		if d, ok := number(value); ok && d.IsPositive() {
			stops[strings.ToUpper(strings.TrimSpace(ticker))] = d.InexactFloat64()
		}
	}
	return stops, nil
}
