package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/use-agent/tiercards/models"
	"github.com/use-agent/tiercards/snapshot"
)

func mustRecord(t *testing.T, name string, tier models.Tier, score int, expansion string, tags []string, category string) models.CardRecord {
	t.Helper()
	r, err := models.NewCardRecord(name, tier, score, expansion, tags, category)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestWrite_ScenarioB(t *testing.T) {
	rec := mustRecord(t, `Say "Hi"`, models.TierS, 10, "", []string{"Earth"}, "Corps")

	got := string(Bytes([]models.CardRecord{rec}))
	want := "\uFEFFname;tier;score;expansion;tags;category\n" +
		`"Say ""Hi""";S;10;"";"Earth";"Corps"`
	if got != want {
		t.Errorf("export mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestWrite_EmptyIsHeaderOnly(t *testing.T) {
	got := string(Bytes(nil))
	if got != "\uFEFFname;tier;score;expansion;tags;category" {
		t.Errorf("got %q", got)
	}
}

func TestWrite_UnknownTierAndTags(t *testing.T) {
	rec := mustRecord(t, "Point Luna", models.TierUnknown, 0, `Base "X"`, []string{"Earth", "Space"}, "Корпорации")
	lines := strings.Split(string(Bytes([]models.CardRecord{rec})), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d", len(lines))
	}
	want := `"Point Luna";;0;"Base ""X""";"Earth|Space";"Корпорации"`
	if lines[1] != want {
		t.Errorf("row = %q, want %q", lines[1], want)
	}
}

// A standard semicolon CSV reader must recover every field.
func TestWrite_RoundTripsThroughCSVReader(t *testing.T) {
	records := []models.CardRecord{
		mustRecord(t, `Say "Hi"`, models.TierS, 10, "", []string{"Earth"}, "Corps"),
		mustRecord(t, "Semi;colon", models.TierF, 0, "Venus", nil, "Проектные карты"),
		mustRecord(t, "Plain", models.TierUnknown, 7, `"quoted"`, []string{"a", "b", "c"}, "CEO"),
	}

	data := strings.TrimPrefix(string(Bytes(records)), BOM)
	r := csv.NewReader(strings.NewReader(data))
	r.Comma = ';'
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Header, rows[0]); diff != "" {
		t.Errorf("header mismatch:\n%s", diff)
	}

	var got []models.CardRecord
	for _, row := range rows[1:] {
		tier, _ := models.ParseTier(row[1])
		score, err := strconv.Atoi(row[2])
		if err != nil {
			t.Fatal(err)
		}
		var tags []string
		if row[4] != "" {
			tags = strings.Split(row[4], TagSeparator)
		}
		got = append(got, mustRecord(t, row[0], tier, score, row[3], tags, row[5]))
	}
	if diff := cmp.Diff(records, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFile_IdempotentAndLeavesSnapshotAlone(t *testing.T) {
	dir := t.TempDir()
	snap := filepath.Join(dir, "cards.json")
	out := filepath.Join(dir, "cards.csv")

	records := []models.CardRecord{mustRecord(t, "A", models.TierA, 1, "", nil, "X")}
	if err := snapshot.Write(snap, records); err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(snap)

	n, err := File(snap, out)
	if err != nil || n != 1 {
		t.Fatalf("File = %d, %v", n, err)
	}
	first, _ := os.ReadFile(out)
	if _, err := File(snap, out); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(out)
	after, _ := os.ReadFile(snap)

	if !bytes.Equal(first, second) {
		t.Error("export is not idempotent")
	}
	if !bytes.Equal(before, after) {
		t.Error("export modified the snapshot")
	}
}

func TestFile_InvalidSnapshot(t *testing.T) {
	dir := t.TempDir()
	snap := filepath.Join(dir, "cards.json")
	out := filepath.Join(dir, "cards.csv")
	if err := os.WriteFile(snap, []byte(`[{"name":"x"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := File(snap, out)
	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeSnapshotInvalid {
		t.Fatalf("err = %v, want SNAPSHOT_INVALID", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("export file written for an invalid snapshot")
	}
}
