package common

import (
	"fmt"

	"github.com/ternarybob/banner"
)

// Version information (set via -ldflags during build)
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// GetVersion returns the current version string
func GetVersion() string {
	return Version
}

// GetFullVersion returns version with build info
func GetFullVersion() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", Version, Build, GitCommit)
}

// PrintBanner displays the startup banner for long-running commands
func PrintBanner() {
	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetBorderColor(banner.ColorCyan).
		SetTextColor(banner.ColorWhite).
		SetWidth(60)

	b.PrintTopLine()
	b.PrintCenteredText("RiskOS")
	b.PrintSeparatorLine()
	b.PrintKeyValue("Version", GetFullVersion(), 10)
	b.PrintBottomLine()
}
