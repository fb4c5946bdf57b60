package reports

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quiz-rewards-engine/internal/domain"
)

func sampleRows() []Row {
	return []Row{
		RowFromUser(domain.User{Username: "alice", Role: domain.RoleStudent, Points: 120, Level: 2, Medals: []string{"a", "b"}}),
		RowFromUser(domain.User{Username: "bob", Role: domain.RoleTeacher, Points: 0, Level: 1}),
	}
}

func TestExportAll(t *testing.T) {
	dir := t.TempDir()
	paths, err := NewFacade(DemoExternalRanking()).ExportAll(filepath.Join(dir, "report"), sampleRows())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, format := range []string{"csv", "json", "txt"} {
		p, ok := paths[format]
		if !ok || !filepath.IsAbs(p) {
			t.Fatalf("expected absolute %s path, got %q", format, p)
		}
	}

	csvData, _ := os.ReadFile(paths["csv"])
	if !strings.HasPrefix(string(csvData), "username,role,points,level,medals\nalice,STUDENT,120,2,\"a,b\"\n") {
		t.Fatalf("unexpected csv %q", csvData)
	}

	var rows []Row
	jsonData, _ := os.ReadFile(paths["json"])
	if err := json.Unmarshal(jsonData, &rows); err != nil || len(rows) != 2 || rows[0].Medals != "a,b" {
		t.Fatalf("unexpected json rows %v err=%v", rows, err)
	}

	txt, _ := os.ReadFile(paths["txt"])
	if !strings.Contains(string(txt), "username: bob, role: TEACHER") {
		t.Fatalf("unexpected text %q", txt)
	}
}

func TestCSVWithoutRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if _, err := (CSVExporter{}).Export(path, nil); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "msg\nno data\n" {
		t.Fatalf("unexpected csv %q", data)
	}
}

func TestExportFailsOnBadPath(t *testing.T) {
	_, err := NewFacade(DemoExternalRanking()).ExportAll(filepath.Join(t.TempDir(), "missing", "report"), sampleRows())
	if err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestRankingAdapter(t *testing.T) {
	top := NewFacade(DemoExternalRanking()).Leaderboard(2)
	if len(top) != 2 || top[0] != (Entry{Username: "alice", Points: 420}) || top[1].Username != "bob" {
		t.Fatalf("unexpected adapted entries %+v", top)
	}
	if all := NewRankingAdapter(DemoExternalRanking()).Top(50); len(all) != 3 {
		t.Fatalf("expected all 3 entries, got %d", len(all))
	}
}

func TestRank(t *testing.T) {
	ranked := Rank([]Entry{{"carol", 10}, {"bob", 30}, {"alice", 10}}, 0)
	if ranked[0].Username != "bob" || ranked[1].Username != "alice" || ranked[2].Username != "carol" {
		t.Fatalf("unexpected order %+v", ranked)
	}
	if len(Rank(ranked, 1)) != 1 {
		t.Fatalf("expected limit to apply")
	}
}

type failingClose struct {
	bytes.Buffer
}

func (*failingClose) Close() error { return errors.New("disk full") }

func TestCSVExportReportsCloseError(t *testing.T) {
	orig := createFile
	t.Cleanup(func() { createFile = orig })
	target := &failingClose{}
	createFile = func(string) (io.WriteCloser, error) { return target, nil }

	_, err := CSVExporter{}.Export(filepath.Join(t.TempDir(), "r.csv"), sampleRows())
	if err == nil || !strings.Contains(err.Error(), "close csv: disk full") {
		t.Fatalf("expected close error, got %v", err)
	}
	if !strings.Contains(target.String(), "alice") {
		t.Fatalf("expected rows written before close, got %q", target.String())
	}
}
