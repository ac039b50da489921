// Package extract pulls card records out of rendered tier-list pages.
//
// Every field is resolved by an ordered chain of rules (see rules.go); the
// first rule with a present value wins and missing markup only moves the
// chain forward. Nothing in here fails because a page lacks a selector.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/use-agent/tiercards/config"
	"github.com/use-agent/tiercards/models"
)

// Extractor applies the card rule chains to a page. It holds only compiled
// selectors and is safe to reuse across pages and runs.
type Extractor struct {
	card       cascadia.Selector
	nameRules  []Rule[string]
	scoreRules []Rule[int]
	tierRules  []Rule[models.Tier]
}

// Stats describes one page's extraction.
type Stats struct {
	Candidates   int // elements matching the card selector
	Extracted    int // records produced
	Dropped      int // candidates without a resolvable name
	UnknownTier  int // records that fell through every tier rule
	DefaultScore int // records that fell through every score rule
}

// New compiles the configured selectors. An invalid selector is a
// configuration error.
func New(cfg config.ExtractConfig) (*Extractor, error) {
	card, err := cascadia.Compile(cfg.CardSelector)
	if err != nil {
		return nil, fmt.Errorf("extract: card selector %q: %w", cfg.CardSelector, err)
	}
	name, err := cascadia.Compile(cfg.NameSelector)
	if err != nil {
		return nil, fmt.Errorf("extract: name selector %q: %w", cfg.NameSelector, err)
	}
	score, err := cascadia.Compile(cfg.ScoreSelector)
	if err != nil {
		return nil, fmt.Errorf("extract: score selector %q: %w", cfg.ScoreSelector, err)
	}
	return &Extractor{
		card:       card,
		nameRules:  nameRules(name),
		scoreRules: scoreRules(score),
		tierRules:  tierRules(),
	}, nil
}

// Extract parses rawHTML and returns one record per card element with a
// resolvable name, in document order, each tagged with category.
func (e *Extractor) Extract(rawHTML, category string) ([]models.CardRecord, Stats, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, Stats{}, fmt.Errorf("extract: parse %s page: %w", category, err)
	}
	return e.ExtractDocument(doc, category)
}

// ExtractDocument is Extract over an already parsed document.
func (e *Extractor) ExtractDocument(doc *goquery.Document, category string) ([]models.CardRecord, Stats, error) {
	var stats Stats
	records := []models.CardRecord{}
	var firstErr error

	doc.FindMatcher(e.card).Each(func(_ int, card *goquery.Selection) {
		stats.Candidates++
		raw := e.Raw(card)
		rec, err := Normalize(raw, category)
		if errors.Is(err, models.ErrEmptyName) {
			stats.Dropped++
			return
		}
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("extract: card %q: %w", raw.Name, err)
			}
			return
		}
		if !raw.HasTier {
			stats.UnknownTier++
		}
		if !raw.HasScore {
			stats.DefaultScore++
		}
		records = append(records, rec)
	})
	if firstErr != nil {
		return nil, stats, firstErr
	}
	stats.Extracted = len(records)
	return records, stats, nil
}

// Raw resolves every rule chain for one card element.
func (e *Extractor) Raw(card *goquery.Selection) RawCard {
	name, _, _ := First(card, e.nameRules)
	score, _, hasScore := First(card, e.scoreRules)
	tier, _, hasTier := First(card, e.tierRules)
	return RawCard{
		Name:      name,
		Score:     score,
		HasScore:  hasScore,
		Tier:      tier,
		HasTier:   hasTier,
		Expansion: card.AttrOr("data-expansion", ""),
		Tags:      card.AttrOr("data-tags", ""),
	}
}

// HasCandidates reports whether rawHTML contains at least one element
// matching the card selector. The fetch dispatcher uses it to decide if a
// static fetch returned a usable page.
func (e *Extractor) HasCandidates(rawHTML string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return false
	}
	return doc.FindMatcher(e.card).Length() > 0
}
