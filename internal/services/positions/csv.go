package positions

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/ternarybob/riskos/internal/models"
)

// ErrCSVHeaderNotFound is returned when no line of the export carries the column names
var ErrCSVHeaderNotFound = errors.New("Could not find header row in CSV. Expected columns: Symbol, Qty, Price, Mkt Val")

const maxEquitySymbolLen = 6

// csvRow gives header-name access to one record
type csvRow struct {
	index  map[string]int
	record []string
}

// get returns the first named column present. Headers match exactly or as
// "name (" prefixes, e.g. "Qty (Quantity)".
func (r csvRow) get(names ...string) string {
	for _, name := range names {
		if i, ok := r.index[name]; ok && i < len(r.record) {
			return r.record[i]
		}
	}
	for _, name := range names {
		for header, i := range r.index {
			if strings.HasPrefix(header, name+" (") && i < len(r.record) {
				return r.record[i]
			}
		}
	}
	return ""
}

func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(h), " ")
}

// parseCSVDecimal strips currency formatting; blank or invalid values are zero
func parseCSVDecimal(value string) decimal.Decimal {
	d, err := decimal.NewFromString(cleanNumber(value))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isCashRow(symbol string) bool {
	switch strings.ToUpper(strings.TrimSpace(symbol)) {
	case "CASH & CASH INVESTMENTS", "SCHWAB ONE(R) BROKERAGE ACCOUNT", "":
		return true
	}
	return false
}

func isTotalRow(symbol string) bool {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	return strings.Contains(s, "ACCOUNT TOTAL") || s == "TOTAL"
}

// ParseSchwabCSV reads a Schwab "Positions" export. Preamble lines before the
// header are skipped; total and cash rows feed the summary; option rows are ignored.
func ParseSchwabCSV(r io.Reader) (models.PositionsResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.PositionsResult{}, fmt.Errorf("failed to read CSV: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	lines := strings.SplitAfter(string(data), "\n")
	headerIdx := -1
	for i, line := range lines {
		if strings.Contains(line, "Symbol") && strings.Contains(line, "Qty") {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return models.PositionsResult{}, ErrCSVHeaderNotFound
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines[headerIdx:], "")))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return models.PositionsResult{}, fmt.Errorf("failed to read CSV header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	result := models.PositionsResult{Positions: []models.Position{}, Source: SourceCSV}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.PositionsResult{}, fmt.Errorf("failed to parse CSV: %w", err)
		}
		row := csvRow{index: index, record: record}

		symbol := strings.TrimSpace(row.get("Symbol"))
		if symbol == "" {
			continue
		}

		if isTotalRow(symbol) {
			result.Summary.TotalValue = parseCSVDecimal(row.get("Mkt Val")).InexactFloat64()
			if day := strings.TrimSpace(row.get("Day's Gain - Pct", "Day's Gain %")); day != "" {
				result.Summary.DailyPnLPct = models.Float(parseCSVDecimal(day).InexactFloat64())
			}
			continue
		}
		if isCashRow(symbol) {
			result.Summary.Cash = parseCSVDecimal(row.get("Mkt Val")).InexactFloat64()
			continue
		}
		if len(symbol) > maxEquitySymbolLen || strings.Contains(symbol, " ") {
			continue
		}

		qty := parseCSVDecimal(row.get("Qty", "Quantity"))
		if qty.IsZero() {
			continue
		}

		p := models.Position{
			Ticker:       strings.ToUpper(symbol),
			Quantity:     int(qty.Abs().IntPart()),
			Direction:    models.DirectionLong,
			CurrentPrice: parseCSVDecimal(row.get("Price")).InexactFloat64(),
		}
		if qty.IsNegative() {
			p.Direction = models.DirectionShort
		}
		if pct := strings.TrimSpace(row.get("Total Gain - Pct", "Gain % (Gain/Loss %)", "Gain/Loss %")); pct != "" {
			p.PnLPct = models.Float(parseCSVDecimal(pct).InexactFloat64())
		}
		result.Positions = append(result.Positions, p)
	}

	return result, nil
}

// ImportCSV parses a Schwab export, merges manual stops and writes the positions snapshot
func ImportCSV(csvPath, stopsPath, snapshotPath string) (models.PositionsResult, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return models.PositionsResult{}, fmt.Errorf("File not found: %s", csvPath)
	}
	defer f.Close()

	result, err := ParseSchwabCSV(f)
	if err != nil {
		return models.PositionsResult{}, err
	}

	// Unreadable stops are ignored, as in the live sources
	stops, _ := LoadStops(stopsPath)
	ApplyStops(result.Positions, stops, true)

	if err := WriteSnapshot(snapshotPath, result); err != nil {
		return models.PositionsResult{}, err
	}
	return result, nil
}
