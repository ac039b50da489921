// Package report summarizes a card list: per-tier histogram, per-category
// counts and the top cards by score.
package report

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/use-agent/tiercards/models"
)

// Mode controls the table output format.
type Mode int

const (
	ASCII    Mode = iota // Fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

// TierCount is one histogram bucket.
type TierCount struct {
	Tier  models.Tier
	Count int
}

// Summary is the aggregate view of a card list.
type Summary struct {
	Total      int
	ByTier     []TierCount // S..F then unknown; empty buckets included
	ByCategory []models.CategoryCount
	Top        []models.CardRecord
}

// Summarize computes the summary. Top holds at most topN records ordered by
// score descending; equal scores keep their position in records.
func Summarize(records []models.CardRecord, topN int) Summary {
	s := Summary{Total: len(records)}

	counts := make(map[models.Tier]int)
	catIndex := make(map[string]int)
	for _, r := range records {
		counts[r.Tier]++
		i, ok := catIndex[r.Category]
		if !ok {
			i = len(s.ByCategory)
			catIndex[r.Category] = i
			s.ByCategory = append(s.ByCategory, models.CategoryCount{Category: r.Category})
		}
		s.ByCategory[i].Count++
	}
	for _, t := range append(slices.Clone(models.Tiers), models.TierUnknown) {
		s.ByTier = append(s.ByTier, TierCount{Tier: t, Count: counts[t]})
	}

	if topN > 0 {
		ranked := slices.Clone(records)
		slices.SortStableFunc(ranked, func(a, b models.CardRecord) int {
			return cmp.Compare(b.Score, a.Score)
		})
		s.Top = ranked[:min(topN, len(ranked))]
	}
	return s
}

// TierMap returns the histogram keyed by tier letter ("unknown" for the
// untiered bucket), as served by the API.
func (s Summary) TierMap() map[string]int {
	m := make(map[string]int, len(s.ByTier))
	for _, tc := range s.ByTier {
		m[tc.Tier.String()] = tc.Count
	}
	return m
}

// Render writes the summary tables to w.
func Render(w io.Writer, s Summary, mode Mode) error {
	tiers := newTable(mode)
	tiers.AppendHeader(table.Row{"Tier", "Cards"})
	for _, tc := range s.ByTier {
		tiers.AppendRow(table.Row{tc.Tier.String(), tc.Count})
	}
	tiers.AppendFooter(table.Row{"Total", s.Total})
	tiers.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})

	cats := newTable(mode)
	cats.AppendHeader(table.Row{"Category", "Cards"})
	for _, cc := range s.ByCategory {
		cats.AppendRow(table.Row{cc.Category, cc.Count})
	}
	cats.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})

	top := newTable(mode)
	top.AppendHeader(table.Row{"#", "Name", "Tier", "Score", "Category"})
	for i, r := range s.Top {
		top.AppendRow(table.Row{i + 1, r.Name, r.Tier.String(), r.Score, r.Category})
	}
	top.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 40},
		{Number: 4, Align: text.AlignRight},
	})

	for _, t := range []table.Writer{tiers, cats, top} {
		if _, err := fmt.Fprintln(w, render(t, mode)); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

func newTable(mode Mode) table.Writer {
	t := table.NewWriter()
	if mode == ASCII {
		t.SetStyle(table.StyleLight)
	}
	return t
}

func render(t table.Writer, mode Mode) string {
	if mode == Markdown {
		return t.RenderMarkdown()
	}
	return t.Render()
}
