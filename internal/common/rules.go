package common

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RiskRules mirrors the risk-rules.yaml layout shared with the portfolio tooling.
// Pointer fields distinguish "absent" from zero so partial files only override what they set.
type RiskRules struct {
	HardAlerts struct {
		StopApproachingPct    *float64 `yaml:"stop_approaching_pct"`
		PortfolioDailyDownPct *float64 `yaml:"portfolio_daily_down_pct"`
		PhaseTransitionPairs  [][]int  `yaml:"phase_transition_pairs"`
	} `yaml:"hard_alerts"`
	SoftFlags struct {
		ConcentrationWarnPct *float64 `yaml:"concentration_warn_pct"`
	} `yaml:"soft_flags"`
	SchwabOrderDetection struct {
		ActiveStatuses       []string `yaml:"active_statuses"`
		ProtectiveOrderTypes []string `yaml:"protective_order_types"`
	} `yaml:"schwab_order_detection"`
}

// LoadRiskRules reads and parses a risk-rules.yaml file
func LoadRiskRules(path string) (*RiskRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read risk rules %s: %w", path, err)
	}

	var rules RiskRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse risk rules %s: %w", path, err)
	}
	return &rules, nil
}

// ApplyRiskRules overlays a risk-rules.yaml file onto the config.
// Malformed transition pairs are skipped; if none survive the configured pairs are kept.
func ApplyRiskRules(config *Config, path string) error {
	rules, err := LoadRiskRules(path)
	if err != nil {
		return err
	}

	if v := rules.HardAlerts.StopApproachingPct; v != nil {
		config.Risk.StopApproachingPct = *v
	}
	if v := rules.HardAlerts.PortfolioDailyDownPct; v != nil {
		config.Risk.PortfolioDailyDownPct = *v
	}
	if v := rules.SoftFlags.ConcentrationWarnPct; v != nil {
		config.Risk.ConcentrationWarnPct = *v
	}

	pairs := make([][]int, 0, len(rules.HardAlerts.PhaseTransitionPairs))
	for _, pair := range rules.HardAlerts.PhaseTransitionPairs {
		if len(pair) != 2 {
			continue
		}
		pairs = append(pairs, []int{pair[0], pair[1]})
	}
	if len(pairs) > 0 {
		config.Risk.PhaseTransitionPairs = pairs
	}

	if len(rules.SchwabOrderDetection.ActiveStatuses) > 0 {
		config.Positions.Schwab.ActiveStatuses = rules.SchwabOrderDetection.ActiveStatuses
	}
	if len(rules.SchwabOrderDetection.ProtectiveOrderTypes) > 0 {
		config.Positions.Schwab.ProtectiveOrderTypes = rules.SchwabOrderDetection.ProtectiveOrderTypes
	}

	return nil
}
