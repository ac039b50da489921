package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/use-agent/tiercards/config"
	"github.com/use-agent/tiercards/engine"
	"github.com/use-agent/tiercards/extract"
	"github.com/use-agent/tiercards/models"
	"github.com/use-agent/tiercards/snapshot"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeSnapshot(t *testing.T, dir string) string {
	t.Helper()
	rec, err := models.NewCardRecord(`Say "Hi"`, models.TierS, 10, "", []string{"Earth"}, "Corps")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "cards.json")
	if err := snapshot.Write(path, []models.CardRecord{rec}); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	snap := writeSnapshot(t, dir)
	csvPath := filepath.Join(dir, "cards.csv")

	out, err := execute(t, "export", "--snapshot", snap, "--out", csvPath, "--log-level", "error")
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Exported 1 cards") {
		t.Errorf("output = %q", out)
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	want := "\uFEFFname;tier;score;expansion;tags;category\n" + `"Say ""Hi""";S;10;"";"Earth";"Corps"`
	if string(data) != want {
		t.Errorf("csv = %q", data)
	}
}

func TestExportCommand_MissingSnapshot(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "export",
		"--snapshot", filepath.Join(dir, "none.json"),
		"--out", filepath.Join(dir, "out.csv"),
		"--log-level", "error",
	)
	if err == nil || !strings.Contains(err.Error(), models.ErrCodeSnapshotRead) {
		t.Fatalf("err = %v, want SNAPSHOT_READ_FAILED", err)
	}
}

func TestStatsCommand(t *testing.T) {
	snap := writeSnapshot(t, t.TempDir())

	out, err := execute(t, "stats", "--snapshot", snap, "--markdown", "--top", "1", "--log-level", "error")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, `Say "Hi"`) || !strings.Contains(out, "| Corps |") {
		t.Errorf("output = %s", out)
	}
}

func TestNewFetcher_HTTPModeSkipsBrowser(t *testing.T) {
	c := config.Load()
	c.Scraper.FetchMode = "http"
	ex, err := extract.New(c.Extract)
	if err != nil {
		t.Fatal(err)
	}

	f, closeFn, err := newFetcher(c, ex)
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()
	if _, ok := f.(*engine.Dispatcher); !ok {
		t.Errorf("fetcher = %T, want *engine.Dispatcher", f)
	}
}
