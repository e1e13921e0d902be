package classification

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/coffee-diary/internal/model"
)

const (
	guardPourOverCafe = "pour-over-cafe"
	guardBlendDrink   = "blend-drink"
)

// BeanClassifier separates whole-bean purchases from brewed drinks.
type BeanClassifier struct {
	terms *RuleSet
	vocab BeanVocabulary
}

// NewBeanClassifier builds the bean vocabulary rules.
func NewBeanClassifier(vocab Vocabulary) (*BeanClassifier, error) {
	if err := vocab.Validate(); err != nil {
		return nil, err
	}

	b := &BeanClassifier{vocab: vocab.Beans}

	guards := map[string]Guard{
		guardPourOverCafe: func(t *Text, _ []string) bool { return b.isPourOverCafe(t) },
		guardBlendDrink: func(t *Text, _ []string) bool {
			return t.ContainsAny(FieldMerchant|FieldDescription, MatchFold, b.vocab.BlendDrinks)
		},
	}

	terms, err := NewRuleSet([]Pass{{Name: "beans", Rules: BeanRules(vocab.Beans)}}, guards)
	if err != nil {
		return nil, fmt.Errorf("failed to build bean rules: %w", err)
	}
	b.terms = terms

	return b, nil
}

// BeanRules expands the bean vocabulary into rules. Pour-over and blend terms
// only count next to a bean companion term; weight units only count directly
// after digits.
func BeanRules(v BeanVocabulary) []Rule {
	var rules []Rule

	for _, kw := range v.PourOverTerms {
		rules = append(rules, Rule{
			Keyword:    kw,
			Fields:     FieldMerchant | FieldDescription,
			Mode:       MatchFold,
			Requires:   v.PourOverCompanions,
			SuppressIf: guardPourOverCafe,
		})
	}

	for _, kw := range v.BlendTerms {
		rules = append(rules, Rule{
			Keyword:    kw,
			Fields:     FieldMerchant | FieldDescription,
			Mode:       MatchFold,
			Requires:   v.BlendCompanions,
			SuppressIf: guardBlendDrink,
		})
	}

	if len(v.WeightUnits) > 0 {
		units := make([]string, len(v.WeightUnits))
		for i, u := range v.WeightUnits {
			units[i] = regexp.QuoteMeta(u)
		}
		rules = append(rules, Rule{
			Keyword:  "weight",
			Patterns: []string{`\d+(?:` + strings.Join(units, "|") + `)\b`},
			Fields:   FieldAll,
			Mode:     MatchRegex,
		})
	}

	for _, kw := range v.Terms {
		rules = append(rules, Rule{Keyword: kw, Fields: FieldAll, Mode: MatchFold})
	}

	return rules
}

// IsBeans reports whether a coffee purchase was beans rather than a drink.
// It is always false for non-coffee transactions.
func (b *BeanClassifier) IsBeans(txn model.Transaction, isCoffee bool) bool {
	if !isCoffee {
		return false
	}

	t := NewText(txn.Merchant, txn.Description, txn.Account)
	both := FieldMerchant | FieldDescription

	// The roaster sells nothing but beans.
	if t.ContainsAny(both, MatchFold, b.vocab.KnownRoasters) {
		return true
	}

	if b.isPourOverCafe(t) {
		return false
	}
	if t.ContainsAny(both, MatchFold, b.vocab.ShopDescriptors) {
		return false
	}

	if t.Contains(both, MatchFold, b.vocab.LiteralTerm) {
		return true
	}
	if b.hasStandaloneBean(t) {
		return true
	}

	return b.terms.Any(t)
}

// hasStandaloneBean finds the bean character outside cafe names and cafe descriptors.
func (b *BeanClassifier) hasStandaloneBean(t *Text) bool {
	if t.ContainsAny(FieldMerchant|FieldDescription, MatchFold, b.vocab.CafeNamesWithBean) {
		return false
	}
	for _, f := range []Field{FieldDescription, FieldMerchant} {
		if t.Contains(f, MatchFold, b.vocab.BeanChar) && !t.ContainsAny(f, MatchFold, b.vocab.CafeDescriptors) {
			return true
		}
	}
	return false
}

// isPourOverCafe marks a venue named for pour-over coffee when neither field mentions beans.
func (b *BeanClassifier) isPourOverCafe(t *Text) bool {
	both := FieldMerchant | FieldDescription
	return t.ContainsAny(both, MatchFold, b.vocab.PourOverVenues) && !t.Contains(both, MatchFold, b.vocab.BeanChar)
}
