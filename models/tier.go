package models

import "strings"

// Tier is the ordinal quality rank of a card. The zero value is TierUnknown,
// which serializes as "" in the snapshot.
type Tier string

const (
	TierS       Tier = "S"
	TierA       Tier = "A"
	TierB       Tier = "B"
	TierC       Tier = "C"
	TierD       Tier = "D"
	TierF       Tier = "F"
	TierUnknown Tier = ""
)

// unknownRank sorts tierless cards after every ranked tier.
const unknownRank = 9

var tierRanks = map[Tier]int{
	TierS: 0,
	TierA: 1,
	TierB: 2,
	TierC: 3,
	TierD: 4,
	TierF: 5,
}

// Tiers lists the ranked tiers in rank order.
var Tiers = []Tier{TierS, TierA, TierB, TierC, TierD, TierF}

// ParseTier maps a raw token to a ranked tier. Only a single letter from
// the six-way enum is accepted; anything else reports false.
func ParseTier(raw string) (Tier, bool) {
	t := Tier(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := tierRanks[t]; ok {
		return t, true
	}
	return TierUnknown, false
}

// Rank returns the sort rank: S=0 through F=5, unknown=9.
func (t Tier) Rank() int {
	if r, ok := tierRanks[t]; ok {
		return r
	}
	return unknownRank
}

// Valid reports whether t is one of the six ranked tiers or TierUnknown.
func (t Tier) Valid() bool {
	if t == TierUnknown {
		return true
	}
	_, ok := tierRanks[t]
	return ok
}

// String returns the tier letter, or "unknown" for TierUnknown.
func (t Tier) String() string {
	if t == TierUnknown {
		return "unknown"
	}
	return string(t)
}
