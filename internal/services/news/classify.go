package news

import (
	"strings"

	"github.com/ternarybob/riskos/internal/models"
)

// adversarialKeywords mark headlines that threaten the thesis outright
var adversarialKeywords = []string{
	"short report", "short seller", "fraud",
	"sec investigation", "doj investigation", "class action",
	"regulatory action", "accounting irregular", "restatement", "bankruptcy",
}

// majorKeywords mark company-level events
var majorKeywords = []string{
	"earnings", "guidance", "merger", "acquisition", "m&a",
	"ceo", "cfo", "layoff", "dividend", "buyback",
}

// macroKeywords mark market-wide drivers
var macroKeywords = []string{
	"fed", "interest rate", "inflation", "recession", "gdp", "treasury", "oil",
}

// ScoreText classifies headline text by case-insensitive substring match.
// The first matching tier wins: adversarial, major, macro, otherwise relevant.
func ScoreText(text string) string {
	lowered := strings.ToLower(text)

	if containsAny(lowered, adversarialKeywords) {
		return models.ScoreAdversarial
	}
	if containsAny(lowered, majorKeywords) {
		return models.ScoreMajor
	}
	if containsAny(lowered, macroKeywords) {
		return models.ScoreMacro
	}
	return models.ScoreRelevant
}

// IsAlertScore reports whether a score raises a hard news alert
func IsAlertScore(score string) bool {
	return score == models.ScoreAdversarial || score == models.ScoreMajor
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
