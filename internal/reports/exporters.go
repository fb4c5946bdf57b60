// Package reports exports ledger rows and adapts external leaderboards.
package reports

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"quiz-rewards-engine/internal/domain"
)

// Row is one flat line of a performance report.
type Row struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Points   int    `json:"points"`
	Level    int    `json:"level"`
	Medals   string `json:"medals"`
}

var rowHeader = []string{"username", "role", "points", "level", "medals"}

func (r Row) fields() []string {
	return []string{r.Username, r.Role, strconv.Itoa(r.Points), strconv.Itoa(r.Level), r.Medals}
}

// RowFromUser flattens a user; medals are comma-joined.
func RowFromUser(u domain.User) Row {
	return Row{
		Username: u.Username,
		Role:     string(u.Role),
		Points:   u.Points,
		Level:    u.Level,
		Medals:   strings.Join(u.Medals, ","),
	}
}

// Exporter writes rows to path and returns its absolute form.
type Exporter interface {
	Format() string
	Export(path string, rows []Row) (string, error)
}

type CSVExporter struct{}

func (CSVExporter) Format() string { return "csv" }

// createFile opens an export target; tests swap it to observe close failures.
var createFile = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func (CSVExporter) Export(path string, rows []Row) (string, error) {
	f, err := createFile(path)
	if err != nil {
		return "", fmt.Errorf("create csv: %w", err)
	}

	w := csv.NewWriter(f)
	if len(rows) == 0 {
		_ = w.Write([]string{"msg"})
		_ = w.Write([]string{"no data"})
	} else {
		_ = w.Write(rowHeader)
		for _, r := range rows {
			_ = w.Write(r.fields())
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close csv: %w", err)
	}
	return filepath.Abs(path)
}

type JSONExporter struct{}

func (JSONExporter) Format() string { return "json" }

func (JSONExporter) Export(path string, rows []Row) (string, error) {
	if rows == nil {
		rows = []Row{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal rows: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write json: %w", err)
	}
	return filepath.Abs(path)
}

// TextExporter renders a plain-text document, one row per line.
type TextExporter struct {
	Title string
}

func (TextExporter) Format() string { return "txt" }

func (e TextExporter) Export(path string, rows []Row) (string, error) {
	title := e.Title
	if title == "" {
		title = "Performance report"
	}
	var b strings.Builder
	b.WriteString(title + "\n\n")
	for _, r := range rows {
		fields := r.fields()
		parts := make([]string, len(rowHeader))
		for i, h := range rowHeader {
			parts[i] = h + ": " + fields[i]
		}
		line := strings.Join(parts, ", ")
		if len(line) > 110 {
			line = line[:110]
		}
		b.WriteString(line + "\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write text: %w", err)
	}
	return filepath.Abs(path)
}
