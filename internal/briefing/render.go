package briefing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// RenderMarkdown renders the report with its fixed section order
func RenderMarkdown(r *Report) string {
	lines := []string{
		fmt.Sprintf("# Morning Briefing - %s", r.AsOfDate),
		"",
		fmt.Sprintf("Generated: %s", r.GeneratedAt),
		"",
		fmt.Sprintf("Portfolio health snapshot: %s", r.SummaryLine),
	}

	sections := []struct {
		title string
		lines []string
	}{
		{"Changes since previous run", r.Sections.ChangesSinceLastRun},
		{"Immediate actions", r.Sections.ImmediateActions},
		{"Watchlist flags", r.Sections.WatchlistFlags},
		{"External events tied to holdings", r.Sections.ExternalEvents},
	}
	for _, section := range sections {
		lines = append(lines, "", "## "+section.title)
		if len(section.lines) == 0 {
			lines = append(lines, "- None.")
			continue
		}
		for _, line := range section.lines {
			lines = append(lines, "- "+line)
		}
	}

	lines = append(lines, "", "## One actionable thought", r.Thought(), "")
	return strings.Join(lines, "\n")
}

// RenderHTML converts the markdown rendering to a standalone HTML page
func RenderHTML(title, markdown string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Linkify),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)

	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}

	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString("<title>" + html.EscapeString(title) + "</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}

// Artifacts are the files written for one report
type Artifacts struct {
	JSON     string `json:"json"`
	Markdown string `json:"markdown"`
	HTML     string `json:"html,omitempty"`
}

// WriteArtifacts writes {date}.json and {date}.md (and {date}.html when withHTML is set)
// into dir, replacing any previous run for the same date.
func WriteArtifacts(dir string, r *Report, withHTML bool) (Artifacts, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Artifacts{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	artifacts := Artifacts{
		JSON:     filepath.Join(dir, r.AsOfDate+".json"),
		Markdown: filepath.Join(dir, r.AsOfDate+".md"),
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return Artifacts{}, fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(artifacts.JSON, data, 0644); err != nil {
		return Artifacts{}, fmt.Errorf("failed to write report JSON: %w", err)
	}

	markdown := RenderMarkdown(r)
	if err := os.WriteFile(artifacts.Markdown, []byte(markdown), 0644); err != nil {
		return Artifacts{}, fmt.Errorf("failed to write report markdown: %w", err)
	}

	if withHTML {
		page, err := RenderHTML("Morning Briefing - "+r.AsOfDate, markdown)
		if err != nil {
			return Artifacts{}, err
		}
		artifacts.HTML = filepath.Join(dir, r.AsOfDate+".html")
		if err := os.WriteFile(artifacts.HTML, []byte(page), 0644); err != nil {
			return Artifacts{}, fmt.Errorf("failed to write report HTML: %w", err)
		}
	}
	return artifacts, nil
}
