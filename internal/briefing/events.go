package briefing

import (
	"fmt"
	"sort"

	"github.com/ternarybob/riskos/internal/models"
)

// DefaultExternalEventLimit caps the external events section
const DefaultExternalEventLimit = 8

// BuildExternalEvents lists the most recent adversarial, major and macro headlines as
// "{T}: [{score}] {title} ({source})", newest first, at most limit lines.
func BuildExternalEvents(headlines []models.Headline, limit int) []string {
	if limit <= 0 {
		limit = DefaultExternalEventLimit
	}

	filtered := make([]models.Headline, 0, len(headlines))
	for _, h := range headlines {
		if h.IsExternalEvent() {
			filtered = append(filtered, h)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].PublishedAt > filtered[j].PublishedAt
	})
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	lines := make([]string, 0, len(filtered))
	for _, h := range filtered {
		ticker, source := h.Ticker, h.Source
		if ticker == "" {
			ticker = "?"
		}
		if source == "" {
			source = "unknown"
		}
		lines = append(lines, fmt.Sprintf("%s: [%s] %s (%s)", ticker, h.Score, h.Title, source))
	}
	return UniqueLines(lines)
}
