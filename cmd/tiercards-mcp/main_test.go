package main

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/use-agent/tiercards/cache"
	"github.com/use-agent/tiercards/models"
	"github.com/use-agent/tiercards/snapshot"
)

func seedCache(t *testing.T) *cache.Cache {
	t.Helper()
	var recs []models.CardRecord
	for _, r := range []struct {
		name     string
		tier     models.Tier
		score    int
		category string
	}{
		{"Tharsis", models.TierS, 90, "Корпорации"},
		{"Helion", models.TierB, 40, "Корпорации"},
		{"Loan", models.TierA, 70, "Прелюдии"},
	} {
		rec, err := models.NewCardRecord(r.name, r.tier, r.score, "", nil, r.category)
		if err != nil {
			t.Fatal(err)
		}
		recs = append(recs, rec)
	}
	path := filepath.Join(t.TempDir(), "cards.json")
	if err := snapshot.Write(path, recs); err != nil {
		t.Fatal(err)
	}
	return cache.New(path)
}

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T", res.Content[0])
	}
	return tc.Text
}

func TestListCards(t *testing.T) {
	h := handleListCards(seedCache(t))

	res := call(t, h, map[string]any{"category": "Корпорации", "limit": float64(1)})
	if res.IsError {
		t.Fatal(text(t, res))
	}
	var cards []models.CardRecord
	if err := json.Unmarshal([]byte(text(t, res)), &cards); err != nil {
		t.Fatal(err)
	}
	if len(cards) != 1 || cards[0].Name != "Tharsis" {
		t.Errorf("cards = %+v", cards)
	}
}

func TestListCards_BadTier(t *testing.T) {
	res := call(t, handleListCards(seedCache(t)), map[string]any{"tier": "Z"})
	if !res.IsError {
		t.Error("expected a tool error for tier Z")
	}
}

func TestListCards_MissingSnapshot(t *testing.T) {
	cc := cache.New(filepath.Join(t.TempDir(), "none.json"))
	res := call(t, handleListCards(cc), nil)
	if !res.IsError || !strings.Contains(text(t, res), models.ErrCodeSnapshotRead) {
		t.Errorf("result = %+v", res)
	}
}

func TestCardStats(t *testing.T) {
	res := call(t, handleCardStats(seedCache(t), 5), map[string]any{"top": float64(1)})
	if res.IsError {
		t.Fatal(text(t, res))
	}
	out := text(t, res)
	for _, want := range []string{"3 cards", "| Tharsis |", "| Прелюдии |"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "| Loan |") {
		t.Error("top=1 should list only one card")
	}
}
