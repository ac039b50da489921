package models

import "strings"

// CardsQuery filters the snapshot for GET /api/v1/cards and the MCP
// list_cards tool.
type CardsQuery struct {
	// Category keeps only cards from this page label. Empty keeps all.
	Category string `form:"category" json:"category,omitempty"`

	// Tier keeps only cards of this tier. "unknown" selects untiered cards.
	// Allowed: S, A, B, C, D, F (either case) and unknown.
	Tier string `form:"tier" json:"tier,omitempty" binding:"omitempty,oneof=S A B C D F s a b c d f unknown"`

	// Limit caps the number of returned cards. 0 means no cap.
	Limit int `form:"limit" json:"limit,omitempty" binding:"omitempty,min=0,max=10000"`
}

// StatsQuery is the query for GET /api/v1/stats.
type StatsQuery struct {
	// Top is the number of highest-scoring cards to include.
	// Default: 5. Max: 100.
	Top int `form:"top" json:"top,omitempty" binding:"omitempty,min=1,max=100"`
}

// Defaults applies default values to unset fields.
func (q *StatsQuery) Defaults(top int) {
	if q.Top == 0 {
		q.Top = top
	}
}

// Filter returns the records matching q, in their original order. The
// result is never nil.
func (q CardsQuery) Filter(records []CardRecord) []CardRecord {
	out := []CardRecord{}
	wantTier, tierFilter := q.tier()
	for _, r := range records {
		if q.Category != "" && r.Category != q.Category {
			continue
		}
		if tierFilter && r.Tier != wantTier {
			continue
		}
		out = append(out, r)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out
}

func (q CardsQuery) tier() (Tier, bool) {
	if q.Tier == "" {
		return TierUnknown, false
	}
	if strings.EqualFold(q.Tier, "unknown") {
		return TierUnknown, true
	}
	t, ok := ParseTier(q.Tier)
	if !ok {
		// Unrecognized values match nothing.
		return Tier(q.Tier), true
	}
	return t, true
}
