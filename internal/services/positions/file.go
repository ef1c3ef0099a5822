package positions

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/riskos/internal/models"
)

// ReadSnapshot loads a positions.json snapshot
func ReadSnapshot(path string) (models.PositionsResult, error) {
	var result models.PositionsResult
	data, err := os.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("failed to read positions snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("failed to parse positions snapshot %s: %w", path, err)
	}
	if result.Positions == nil {
		result.Positions = []models.Position{}
	}
	return result, nil
}

// WriteSnapshot writes result as indented JSON, replacing the file atomically
func WriteSnapshot(path string, result models.PositionsResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode positions snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write positions snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace positions snapshot: %w", err)
	}
	return nil
}

// FileSource serves positions from a snapshot written by a live fetch or a CSV import
type FileSource struct {
	snapshotPath string
	stopsPath    string
	logger       arbor.ILogger
}

// NewFileSource creates a snapshot-backed source
func NewFileSource(snapshotPath, stopsPath string, logger arbor.ILogger) *FileSource {
	return &FileSource{snapshotPath: snapshotPath, stopsPath: stopsPath, logger: logger}
}

// Name identifies the source
func (s *FileSource) Name() string { return SourceFile }

// Fetch reads the snapshot and fills missing stops from the stops file
func (s *FileSource) Fetch(ctx context.Context) models.PositionsResult {
	result, err := ReadSnapshot(s.snapshotPath)
	if err != nil {
		return errorResult(SourceFile, err)
	}
	if result.Source == "" {
		result.Source = SourceFile
	}

	stops, err := LoadStops(s.stopsPath)
	if err != nil && s.logger != nil {
		s.logger.Warn().Err(err).Str("path", s.stopsPath).Msg("Ignoring unreadable stops file")
	}
	ApplyStops(result.Positions, stops, false)
	return result
}
