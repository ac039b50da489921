package pipeline

import (
	"cmp"
	"slices"

	"github.com/use-agent/tiercards/models"
)

// Aggregator collects records for one run in page-visitation order.
// It is not safe for concurrent use; a run owns exactly one.
type Aggregator struct {
	records []models.CardRecord
}

// NewAggregator returns an empty aggregator for a fresh run.
func NewAggregator() *Aggregator {
	return &Aggregator{records: []models.CardRecord{}}
}

// Add appends one page's records. No deduplication is performed.
func (a *Aggregator) Add(records []models.CardRecord) {
	a.records = append(a.records, records...)
}

// Len reports how many records have been collected so far.
func (a *Aggregator) Len() int { return len(a.records) }

// Records returns a copy of everything collected, in insertion order.
func (a *Aggregator) Records() []models.CardRecord {
	return slices.Clone(a.records)
}

// Sort groups records by category in order of first appearance, then orders
// each group by tier rank ascending and score descending. Records with equal
// keys keep their input order. The input slice is not modified.
func Sort(records []models.CardRecord) []models.CardRecord {
	var order []string
	groups := make(map[string][]models.CardRecord)
	for _, r := range records {
		if _, seen := groups[r.Category]; !seen {
			order = append(order, r.Category)
		}
		groups[r.Category] = append(groups[r.Category], r)
	}

	out := make([]models.CardRecord, 0, len(records))
	for _, category := range order {
		group := groups[category]
		slices.SortStableFunc(group, compareRecords)
		out = append(out, group...)
	}
	return out
}

func compareRecords(a, b models.CardRecord) int {
	if c := cmp.Compare(a.Tier.Rank(), b.Tier.Rank()); c != 0 {
		return c
	}
	return cmp.Compare(b.Score, a.Score)
}
