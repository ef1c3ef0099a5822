package briefing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/riskos/internal/models"
	"github.com/ternarybob/riskos/internal/signals"
)

const (
	// StateVersion is written into every saved state
	StateVersion = 1

	// DefaultHistoryCap bounds the remembered headline fingerprints
	DefaultHistoryCap = 500
)

// State is what one run remembers for the next: the last phase per ticker and
// the fingerprints of headlines already shown, oldest first.
type State struct {
	Version       int            `json:"version"`
	UpdatedAt     string         `json:"updatedAt"`
	PhaseByTicker map[string]int `json:"phaseByTicker"`
	NewsHashes    []string       `json:"newsHashes"`
}

// EmptyState returns a state with no prior run
func EmptyState() State {
	return State{Version: StateVersion, PhaseByTicker: map[string]int{}, NewsHashes: []string{}}
}

// StateStore persists State as a single JSON document
type StateStore struct {
	path   string
	logger arbor.ILogger
}

// NewStateStore creates a store for the state file at path
func NewStateStore(path string, logger arbor.ILogger) *StateStore {
	return &StateStore{path: path, logger: logger}
}

// Path returns the state file location
func (s *StateStore) Path() string {
	return s.path
}

// Load reads the previous state. A missing, unreadable, corrupt or empty file yields
// an empty state and loaded=false; it is never an error.
func (s *StateStore) Load() (State, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.warn(err, "Unreadable briefing state, treating as baseline run")
		}
		return EmptyState(), false
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		s.warn(err, "Corrupt briefing state, treating as baseline run")
		return EmptyState(), false
	}
	if len(keys) == 0 {
		return EmptyState(), false
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		s.warn(err, "Corrupt briefing state, treating as baseline run")
		return EmptyState(), false
	}
	if state.PhaseByTicker == nil {
		state.PhaseByTicker = map[string]int{}
	}
	if state.NewsHashes == nil {
		state.NewsHashes = []string{}
	}
	return state, true
}

func (s *StateStore) warn(err error, msg string) {
	if s.logger != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg(msg)
	}
}

// Save replaces the state file atomically: temp file in the same directory, fsync, rename
func (s *StateStore) Save(state State) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".briefing_state-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close state: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// Fingerprint identifies a headline across runs: the first 16 hex characters of
// sha256("TICKER|title|source|publishedAt").
func Fingerprint(h models.Headline) string {
	key := strings.Join([]string{
		strings.ToUpper(strings.TrimSpace(h.Ticker)),
		strings.TrimSpace(h.Title),
		strings.TrimSpace(h.Source),
		strings.TrimSpace(h.PublishedAt),
	}, "|")
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}

// Deltas is what changed since the previous run
type Deltas struct {
	Transitions  []string
	NewHeadlines []models.Headline
	RunHashes    []string
	StateLoaded  bool
}

// ComputeDeltas sets PreviousPhase on records found in the previous state, lists phase
// transitions and the headlines not seen before. A headline repeated within the run
// counts once.
func ComputeDeltas(prev State, loaded bool, records []signals.PhaseRecord, headlines []models.Headline) Deltas {
	for i := range records {
		if !records[i].OK() {
			continue
		}
		if p, ok := prev.PhaseByTicker[strings.ToUpper(records[i].Ticker)]; ok {
			previous := p
			records[i].PreviousPhase = &previous
		}
	}

	seen := make(map[string]bool, len(prev.NewsHashes))
	for _, h := range prev.NewsHashes {
		seen[h] = true
	}

	deltas := Deltas{
		Transitions:  PhaseTransitions(records),
		NewHeadlines: []models.Headline{},
		RunHashes:    []string{},
		StateLoaded:  loaded,
	}
	inRun := make(map[string]bool, len(headlines))
	for _, h := range headlines {
		digest := Fingerprint(h)
		if inRun[digest] {
			continue
		}
		inRun[digest] = true
		deltas.RunHashes = append(deltas.RunHashes, digest)
		if !seen[digest] {
			deltas.NewHeadlines = append(deltas.NewHeadlines, h)
		}
	}
	return deltas
}

// Lines renders the "changes since last run" section
func (d Deltas) Lines() []string {
	lines := append([]string{}, d.Transitions...)
	if d.StateLoaded {
		lines = append(lines, fmt.Sprintf("New scored headlines since last run: %d", len(d.NewHeadlines)))
	} else {
		lines = append(lines, "Baseline run: no previous state found.")
	}
	return UniqueLines(lines)
}

// NextState builds the state to persist: phases of every classified ticker, and the
// previous fingerprints followed by this run's new ones, keeping the most recent historyCap.
func NextState(prev State, records []signals.PhaseRecord, runHashes []string, now time.Time, historyCap int) State {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}

	next := EmptyState()
	next.UpdatedAt = now.UTC().Format(time.RFC3339)
	for _, r := range records {
		ticker := strings.ToUpper(strings.TrimSpace(r.Ticker))
		if r.OK() && ticker != "" {
			next.PhaseByTicker[ticker] = r.Phase
		}
	}

	seen := make(map[string]bool, len(prev.NewsHashes)+len(runHashes))
	hashes := make([]string, 0, len(prev.NewsHashes)+len(runHashes))
	for _, group := range [][]string{prev.NewsHashes, runHashes} {
		for _, h := range group {
			if h == "" || seen[h] {
				continue
			}
			seen[h] = true
			hashes = append(hashes, h)
		}
	}
	if len(hashes) > historyCap {
		hashes = hashes[len(hashes)-historyCap:]
	}
	next.NewsHashes = hashes
	return next
}
