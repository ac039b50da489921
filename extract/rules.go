package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/use-agent/tiercards/models"
)

// Rule is one strategy for deriving a field from a card element. Apply
// reports false when the strategy has nothing to offer, which hands control
// to the next rule in the chain.
type Rule[T any] struct {
	Name  string
	Apply func(card *goquery.Selection) (T, bool)
}

// First runs rules in order and returns the first present value together
// with the name of the rule that produced it.
func First[T any](card *goquery.Selection, rules []Rule[T]) (T, string, bool) {
	for _, r := range rules {
		if v, ok := r.Apply(card); ok {
			return v, r.Name, true
		}
	}
	var zero T
	return zero, "", false
}

// tierClassPattern finds tier-<LETTER> anywhere in a class attribute, so
// compound classes such as tier-S-row count. Letters are upper case only.
var tierClassPattern = regexp.MustCompile(`tier-([SABCDF])`)

var dataTierMatcher = cascadia.MustCompile("[data-tier]")

// nameRules: labelled sub-element text, then data-name.
func nameRules(nameSel cascadia.Selector) []Rule[string] {
	return []Rule[string]{
		{Name: "name-element", Apply: func(card *goquery.Selection) (string, bool) {
			el := card.FindMatcher(nameSel).First()
			if el.Length() == 0 {
				return "", false
			}
			text := strings.TrimSpace(el.Text())
			return text, text != ""
		}},
		{Name: "data-name", Apply: attrRule("data-name")},
	}
}

// scoreRules: labelled sub-element text, then data-score. A value that does
// not parse counts as absent.
func scoreRules(scoreSel cascadia.Selector) []Rule[int] {
	return []Rule[int]{
		{Name: "score-element", Apply: func(card *goquery.Selection) (int, bool) {
			el := card.FindMatcher(scoreSel).First()
			if el.Length() == 0 {
				return 0, false
			}
			return ParseScore(el.Text())
		}},
		{Name: "data-score", Apply: func(card *goquery.Selection) (int, bool) {
			v, ok := card.Attr("data-score")
			if !ok {
				return 0, false
			}
			return ParseScore(v)
		}},
	}
}

// tierRules: own data-tier, nearest ancestor data-tier, then a tier-X class
// on the element or an ancestor.
func tierRules() []Rule[models.Tier] {
	return []Rule[models.Tier]{
		{Name: "data-tier", Apply: func(card *goquery.Selection) (models.Tier, bool) {
			v, ok := card.Attr("data-tier")
			if !ok {
				return models.TierUnknown, false
			}
			return models.ParseTier(v)
		}},
		{Name: "ancestor-data-tier", Apply: func(card *goquery.Selection) (models.Tier, bool) {
			anc := card.Parent().ClosestMatcher(dataTierMatcher)
			if anc.Length() == 0 {
				return models.TierUnknown, false
			}
			return models.ParseTier(anc.AttrOr("data-tier", ""))
		}},
		{Name: "tier-class", Apply: func(card *goquery.Selection) (models.Tier, bool) {
			if card.Length() == 0 {
				return models.TierUnknown, false
			}
			for n := card.Get(0); n != nil; n = n.Parent {
				if n.Type != html.ElementNode {
					continue
				}
				if m := tierClassPattern.FindStringSubmatch(classOf(n)); m != nil {
					return models.ParseTier(m[1])
				}
			}
			return models.TierUnknown, false
		}},
	}
}

// attrRule yields the trimmed attribute value when it is non-empty.
func attrRule(name string) func(*goquery.Selection) (string, bool) {
	return func(card *goquery.Selection) (string, bool) {
		v := strings.TrimSpace(card.AttrOr(name, ""))
		return v, v != ""
	}
}

func classOf(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "class" {
			return a.Val
		}
	}
	return ""
}
