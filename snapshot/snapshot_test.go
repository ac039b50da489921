package snapshot

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/use-agent/tiercards/models"
)

func sample(t *testing.T) []models.CardRecord {
	t.Helper()
	a, err := models.NewCardRecord("Say \"Hi\" <&>", models.TierS, 10, "", []string{"Earth"}, "Corps")
	if err != nil {
		t.Fatal(err)
	}
	b, err := models.NewCardRecord("Кредиты", models.TierUnknown, 0, "Prelude", nil, "Прелюдии")
	if err != nil {
		t.Fatal(err)
	}
	return []models.CardRecord{a, b}
}

func TestEncode_Format(t *testing.T) {
	rec, _ := models.NewCardRecord("A&B", models.TierA, 3, "base", nil, "Corps")
	data, err := Encode([]models.CardRecord{rec})
	if err != nil {
		t.Fatal(err)
	}
	want := `[
  {
    "name": "A&B",
    "tier": "A",
    "score": 3,
    "expansion": "base",
    "tags": [],
    "category": "Corps"
  }
]
`
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("encoded snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_EmptyIsArray(t *testing.T) {
	data, err := Encode(nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]\n" {
		t.Errorf("Encode(nil) = %q", data)
	}
}

func TestWriteLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	want := sample(t)

	if err := Write(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_IdempotentAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cards.json")
	if err := os.WriteFile(path, bytes.Repeat([]byte("stale "), 1000), 0o644); err != nil {
		t.Fatal(err)
	}

	recs := sample(t)
	if err := Write(path, recs); err != nil {
		t.Fatal(err)
	}
	first, _ := os.ReadFile(path)
	if err := Write(path, recs); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(path)

	if !bytes.Equal(first, second) {
		t.Error("writing the same records twice produced different bytes")
	}
	if bytes.Contains(first, []byte("stale")) {
		t.Error("previous content not fully replaced")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeSnapshotRead {
		t.Fatalf("err = %v, want SNAPSHOT_READ_FAILED", err)
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantMsg string
	}{
		{"not json", `{{`, "JSON array"},
		{"object", `{"name":"x"}`, "JSON array"},
		{"null", `null`, "JSON array"},
		{"element not object", `[1]`, "element 0"},
		{"missing tier", `[{"name":"x","score":1,"category":"C"}]`, `missing key "tier"`},
		{"unknown key", `[{"name":"x","tier":"A","score":1,"category":"C","rarity":2}]`, "element 0"},
		{"empty name", `[{"name":"","tier":"A","score":1,"category":"C"}]`, "element 0"},
		{"negative score", `[{"name":"x","tier":"A","score":-1,"category":"C"}]`, "element 0"},
		{"bad tier", `[{"name":"x","tier":"Z","score":1,"category":"C"}]`, "element 0"},
		{"second bad", `[{"name":"x","tier":"A","score":1,"category":"C"},{"name":"y","tier":"A","score":"1","category":"C"}]`, "element 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.in))
			var se *models.ScrapeError
			if !errors.As(err, &se) || se.Code != models.ErrCodeSnapshotInvalid {
				t.Fatalf("err = %v, want SNAPSHOT_INVALID", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %q, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestDecode_SentinelsReachable(t *testing.T) {
	_, err := Decode([]byte(`[{"name":"","tier":"A","score":1,"category":"C"}]`))
	if !errors.Is(err, models.ErrEmptyName) {
		t.Errorf("err = %v, want ErrEmptyName in chain", err)
	}
}

func TestDecode_TagsOptional(t *testing.T) {
	got, err := Decode([]byte(`[{"name":"x","tier":"","score":0,"category":"C"}]`))
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Tags == nil || got[0].Tier != models.TierUnknown {
		t.Errorf("got %+v", got[0])
	}
}
