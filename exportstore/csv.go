// Package exportstore persists exported activity lists as dated CSV files.
package exportstore

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	loadplan "github.com/goncalonina/Road-to-Power"
)

const (
	filePrefix = "strava_export_"
	fileExt    = ".csv"
)

// ErrNoExport is returned when the export directory holds no export file.
var ErrNoExport = errors.New("no activity export found")

// leadingColumns are written first, in this order, when present.
var leadingColumns = []string{
	"id", "name", "type", "sport_type", "start_date", "start_date_local",
	"moving_time", "elapsed_time", "distance", "average_watts",
	"weighted_average_watts", "tss",
}

// FileName is the export file name for the given day.
func FileName(t time.Time) string {
	return filePrefix + t.Format("20060102") + fileExt
}

// Latest returns the newest export in dir.
func Latest(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, filePrefix+"*"+fileExt))
	if err != nil {
		return "", fmt.Errorf("list exports: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoExport, dir)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// ReadCSV loads an export. Blank cells are left out of the row so the
// normalizer sees them as absent.
func ReadCSV(path string) ([]loadplan.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses CSV with a header row.
func Read(r io.Reader) ([]loadplan.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []loadplan.RawRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	rows := make([]loadplan.RawRecord, 0, 64)
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(rows)+1, err)
		}
		row := make(loadplan.RawRecord, len(header))
		for i, cell := range cells {
			if i >= len(header) || header[i] == "" || strings.TrimSpace(cell) == "" {
				continue
			}
			row[header[i]] = cell
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteCSV writes rows under the union of their keys.
func WriteCSV(path string, rows []loadplan.RawRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	if err := Write(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Write encodes rows as CSV.
func Write(w io.Writer, rows []loadplan.RawRecord) error {
	header := columns(rows)
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		cells := make([]string, len(header))
		for i, col := range header {
			cells[i] = formatCell(row[col])
		}
		if err := cw.Write(cells); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func columns(rows []loadplan.RawRecord) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for k := range row {
			seen[k] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for _, col := range leadingColumns {
		if _, ok := seen[col]; ok {
			out = append(out, col)
			delete(seen, col)
		}
	}
	rest := make([]string, 0, len(seen))
	for k := range seen {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	}
}
