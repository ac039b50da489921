package models

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Invariant violations reported by NewCardRecord and CardRecord.Validate.
var (
	ErrEmptyName     = errors.New("card name is empty")
	ErrNegativeScore = errors.New("card score is negative")
	ErrInvalidTier   = errors.New("card tier is not one of S, A, B, C, D, F or unknown")
	ErrEmptyCategory = errors.New("card category is empty")
)

// CardRecord is one tiered entity observed on one page.
//
// Records are built through NewCardRecord and treated as immutable values
// afterwards; the pipeline copies them, it never edits them in place.
type CardRecord struct {
	Name      string   `json:"name" validate:"required"`
	Tier      Tier     `json:"tier" validate:"tier"`
	Score     int      `json:"score" validate:"gte=0"`
	Expansion string   `json:"expansion"`
	Tags      []string `json:"tags"`
	Category  string   `json:"category" validate:"required"`
}

// NewCardRecord validates the fields and returns the record. Tags are
// copied; a nil slice becomes an empty one so the snapshot always carries [].
func NewCardRecord(name string, tier Tier, score int, expansion string, tags []string, category string) (CardRecord, error) {
	if tags == nil {
		tags = []string{}
	} else {
		tags = slices.Clone(tags)
	}
	rec := CardRecord{
		Name:      name,
		Tier:      tier,
		Score:     score,
		Expansion: expansion,
		Tags:      tags,
		Category:  category,
	}
	if err := rec.Validate(); err != nil {
		return CardRecord{}, err
	}
	return rec, nil
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		mustRegister(validate, "tier", func(fl validator.FieldLevel) bool {
			return Tier(fl.Field().String()).Valid()
		})
	})
	return validate
}

// mustRegister adds a custom tag and panics if the validator refuses it.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("models: register %q validation: %v", tag, err))
	}
}

// Validate checks the record invariants: non-empty name and category,
// a known tier, and a non-negative score. The returned error wraps one of
// the Err* sentinels.
func (c CardRecord) Validate() error {
	err := recordValidator().Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate card %q: %w", c.Name, err)
	}
	switch fieldErrs[0].Field() {
	case "Name":
		return ErrEmptyName
	case "Tier":
		return fmt.Errorf("%w: %q", ErrInvalidTier, string(c.Tier))
	case "Score":
		return fmt.Errorf("%w: %d", ErrNegativeScore, c.Score)
	case "Category":
		return ErrEmptyCategory
	default:
		return fmt.Errorf("validate card %q: %w", c.Name, err)
	}
}
