package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestParseTier(t *testing.T) {
	tests := []struct {
		raw    string
		want   Tier
		wantOK bool
	}{
		{"S", TierS, true},
		{" a ", TierA, true},
		{"f", TierF, true},
		{"", TierUnknown, false},
		{"E", TierUnknown, false},
		{"SS", TierUnknown, false},
		{"tier-S", TierUnknown, false},
	}
	for _, tt := range tests {
		got, ok := ParseTier(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseTier(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestTierRank(t *testing.T) {
	for i, tier := range Tiers {
		if tier.Rank() != i {
			t.Errorf("%s.Rank() = %d, want %d", tier, tier.Rank(), i)
		}
	}
	if TierUnknown.Rank() != 9 {
		t.Errorf("unknown rank = %d, want 9", TierUnknown.Rank())
	}
	if Tier("X").Rank() != 9 {
		t.Errorf("invalid tier should rank as unknown")
	}
}

func TestNewCardRecord_Invariants(t *testing.T) {
	tests := []struct {
		name    string
		card    func() (CardRecord, error)
		wantErr error
	}{
		{"valid", func() (CardRecord, error) {
			return NewCardRecord("Mining Guild", TierS, 87, "", nil, "Corps")
		}, nil},
		{"unknown tier is valid", func() (CardRecord, error) {
			return NewCardRecord("Mining Guild", TierUnknown, 0, "", nil, "Corps")
		}, nil},
		{"empty name", func() (CardRecord, error) {
			return NewCardRecord("", TierS, 1, "", nil, "Corps")
		}, ErrEmptyName},
		{"negative score", func() (CardRecord, error) {
			return NewCardRecord("X", TierS, -1, "", nil, "Corps")
		}, ErrNegativeScore},
		{"bad tier", func() (CardRecord, error) {
			return NewCardRecord("X", Tier("Q"), 1, "", nil, "Corps")
		}, ErrInvalidTier},
		{"empty category", func() (CardRecord, error) {
			return NewCardRecord("X", TierS, 1, "", nil, "")
		}, ErrEmptyCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.card()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewCardRecord_TagsNeverNull(t *testing.T) {
	rec, err := NewCardRecord("Saturn Systems", TierA, 71, "", nil, "Corps")
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"name":"Saturn Systems","tier":"A","score":71,"expansion":"","tags":[],"category":"Corps"}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

func TestNewCardRecord_CopiesTags(t *testing.T) {
	tags := []string{"Earth", "Jovian"}
	rec, err := NewCardRecord("Saturn Systems", TierA, 71, "", tags, "Corps")
	if err != nil {
		t.Fatal(err)
	}
	tags[0] = "Venus"
	if rec.Tags[0] != "Earth" {
		t.Errorf("record shares caller's tag slice: %v", rec.Tags)
	}
}

func TestCardsQuery_Filter(t *testing.T) {
	mk := func(name string, tier Tier, category string) CardRecord {
		r, err := NewCardRecord(name, tier, 1, "", nil, category)
		if err != nil {
			t.Fatal(err)
		}
		return r
	}
	records := []CardRecord{
		mk("a", TierS, "Corps"),
		mk("b", TierUnknown, "Corps"),
		mk("c", TierS, "CEO"),
		mk("d", TierS, "Corps"),
	}
	names := func(rs []CardRecord) []string {
		out := []string{}
		for _, r := range rs {
			out = append(out, r.Name)
		}
		return out
	}

	tests := []struct {
		name string
		q    CardsQuery
		want []string
	}{
		{"no filter", CardsQuery{}, []string{"a", "b", "c", "d"}},
		{"category", CardsQuery{Category: "Corps"}, []string{"a", "b", "d"}},
		{"tier lower case", CardsQuery{Tier: "s"}, []string{"a", "c", "d"}},
		{"unknown tier", CardsQuery{Tier: "unknown"}, []string{"b"}},
		{"both with limit", CardsQuery{Category: "Corps", Tier: "S", Limit: 1}, []string{"a"}},
		{"no match", CardsQuery{Category: "Preludes"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(tt.q.Filter(records))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestMustRegister_PanicsOnRejectedTag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for an empty tag name")
		}
	}()
	mustRegister(validator.New(), "", func(validator.FieldLevel) bool { return true })
}

func TestRecordValidator_TierTag(t *testing.T) {
	if err := (CardRecord{Name: "X", Tier: "Z", Category: "C"}).Validate(); !errors.Is(err, ErrInvalidTier) {
		t.Errorf("Validate() = %v, want ErrInvalidTier", err)
	}
}
