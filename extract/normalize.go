package extract

import (
	"strconv"
	"strings"

	"github.com/use-agent/tiercards/models"
)

// RawCard is the field tuple pulled from one card element before
// normalization. Optional fields carry an explicit presence flag so that a
// literal score of 0 is never confused with "not found".
type RawCard struct {
	Name      string
	Score     int
	HasScore  bool
	Tier      models.Tier
	HasTier   bool
	Expansion string
	Tags      string
}

// Normalize converts a raw tuple into a CardRecord tagged with category.
// Missing score becomes 0 and missing tier becomes TierUnknown. An empty
// name yields models.ErrEmptyName.
func Normalize(raw RawCard, category string) (models.CardRecord, error) {
	score := 0
	if raw.HasScore {
		score = raw.Score
	}
	tier := models.TierUnknown
	if raw.HasTier {
		tier = raw.Tier
	}
	return models.NewCardRecord(
		strings.TrimSpace(raw.Name),
		tier,
		score,
		strings.TrimSpace(raw.Expansion),
		SplitTags(raw.Tags),
		category,
	)
}

// ParseScore reads the leading integer of s the way a lenient browser
// parse would: surrounding space is trimmed, an optional sign and the run
// of digits that follows are used, and trailing text is ignored ("87 pts"
// is 87). Values that are not a non-negative integer report false.
func ParseScore(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// SplitTags splits a comma-delimited attribute. Pieces are trimmed and
// empty pieces dropped, so "" yields an empty slice, never [""].
func SplitTags(attr string) []string {
	tags := []string{}
	for _, p := range strings.Split(attr, ",") {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
