package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"pdfsift/extract"
)

func sampleResult() *extract.Result {
	m1 := extract.Match{Source: "doc1.pdf", Page: 2, Text: "设计变更通知单 #123"}
	m2 := extract.Match{Source: "doc3.pdf", Page: 1, Text: "设计变更通知单, with comma"}
	return &extract.Result{
		Documents: []string{"doc1.pdf", "doc2.pdf", "doc3.pdf"},
		PerDocument: map[string][]extract.Match{
			"doc1.pdf": {m1},
			"doc2.pdf": {},
			"doc3.pdf": {m2},
		},
		AllMatches: []extract.Match{m1, m2},
	}
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return rows
}

func TestExportWritesPerDocumentAndCombined(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(zap.NewNop(), "")

	written, err := w.Export(sampleResult(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// doc2 has zero matches: no per-document file for it.
	expected := []string{
		filepath.Join(dir, "doc1_matches.csv"),
		filepath.Join(dir, "doc3_matches.csv"),
		filepath.Join(dir, "matches.csv"),
	}
	if len(written) != len(expected) {
		t.Fatalf("expected %d files, got %v", len(expected), written)
	}
	for i, p := range expected {
		if written[i] != p {
			t.Errorf("expected %s, got %s", p, written[i])
		}
	}

	rows := readRows(t, filepath.Join(dir, "matches.csv"))
	if len(rows) != 3 {
		t.Fatalf("expected header plus two rows, got %d rows", len(rows))
	}
	if rows[0][0] != "pdf_path" || rows[0][1] != "page" || rows[0][2] != "text" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "doc1.pdf" || rows[1][1] != "2" {
		t.Errorf("unexpected first row: %v", rows[1])
	}
}

func TestExportQuotingRoundTrip(t *testing.T) {
	dir := t.TempDir()
	text := `设计变更通知单, "quoted", line`
	res := &extract.Result{
		Documents:   []string{"a.pdf"},
		PerDocument: map[string][]extract.Match{"a.pdf": {{Source: "a.pdf", Page: 1, Text: text}}},
		AllMatches:  []extract.Match{{Source: "a.pdf", Page: 1, Text: text}},
	}

	if _, err := NewWriter(zap.NewNop(), "").Export(res, dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := readRows(t, filepath.Join(dir, "matches.csv"))
	if rows[1][2] != text {
		t.Errorf("text did not round-trip: %q", rows[1][2])
	}
}

func TestExportIsIdempotent(t *testing.T) {
	res := sampleResult()
	w := NewWriter(zap.NewNop(), "")

	dir1 := t.TempDir()
	dir2 := t.TempDir()
	if _, err := w.Export(res, dir1); err != nil {
		t.Fatalf("first export: %v", err)
	}
	if _, err := w.Export(res, dir2); err != nil {
		t.Fatalf("second export: %v", err)
	}
	// Exporting again into a used directory must truncate, not append.
	if _, err := w.Export(res, dir1); err != nil {
		t.Fatalf("repeat export: %v", err)
	}

	for _, name := range []string{"doc1_matches.csv", "doc3_matches.csv", "matches.csv"} {
		b1, err := os.ReadFile(filepath.Join(dir1, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		b2, err := os.ReadFile(filepath.Join(dir2, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !bytes.Equal(b1, b2) {
			t.Errorf("%s differs between exports", name)
		}
	}
}

func TestExportCombinedPathOverride(t *testing.T) {
	dir := t.TempDir()
	combined := filepath.Join(dir, "nested", "all.csv")

	w := NewWriter(zap.NewNop(), combined)
	written, err := w.Export(sampleResult(), filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if written[len(written)-1] != combined {
		t.Errorf("expected combined CSV at %s, got %v", combined, written)
	}
	if _, err := os.Stat(combined); err != nil {
		t.Errorf("combined CSV not written: %v", err)
	}
}

func TestExportUnusableOutputDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "occupied")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	_, err := NewWriter(zap.NewNop(), "").Export(sampleResult(), blocker)

	var eerr *ExportError
	if !errors.As(err, &eerr) {
		t.Fatalf("expected *ExportError, got %v", err)
	}
}
