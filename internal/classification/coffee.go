package classification

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/Veraticus/coffee-diary/internal/model"
)

// ErrInvalidVocabulary is returned when a vocabulary lacks required terms.
var ErrInvalidVocabulary = errors.New("invalid vocabulary")

// Scores added per matching pass.
const (
	MerchantScore = 0.8
	AccountScore  = 0.9
	EnglishScore  = 0.6
	ChineseScore  = 0.7

	// CoffeeThreshold is exclusive: a score must exceed it.
	CoffeeThreshold = 0.5

	// AccountDomainKeyword is recorded when the counterparty account matches a coffee brand domain.
	AccountDomainKeyword = "account-domain"
)

// Guard names used by the coffee rule table.
const (
	guardRestaurantGeneric         = "restaurant-generic"
	guardRestaurantGenericMerchant = "restaurant-generic-merchant"
	guardAccountSignalled          = "account-signalled"
)

// CoffeeResult is the coffee classifier's decision for one transaction.
type CoffeeResult struct {
	Keywords   []string
	Confidence float64
	IsCoffee   bool
}

// CoffeeClassifier decides whether a transaction is a coffee purchase.
type CoffeeClassifier struct {
	rules *RuleSet
	vocab Vocabulary
}

// NewCoffeeClassifier builds the coffee rule table from vocab.
func NewCoffeeClassifier(vocab Vocabulary) (*CoffeeClassifier, error) {
	if err := vocab.Validate(); err != nil {
		return nil, err
	}

	c := &CoffeeClassifier{vocab: vocab}

	guards := map[string]Guard{
		guardRestaurantGeneric: func(t *Text, _ []string) bool {
			return c.isRestaurantOrBar(t) && !c.hasStrongDrinkTerm(t)
		},
		guardRestaurantGenericMerchant: func(t *Text, _ []string) bool {
			return c.isRestaurantOrBar(t) && t.Contains(FieldMerchant, MatchSubstring, vocab.GenericTerm) && !c.hasStrongDrinkTerm(t)
		},
		guardAccountSignalled: func(_ *Text, matched []string) bool {
			for _, k := range matched {
				k = strings.ToLower(k)
				for _, sig := range vocab.AccountSignals {
					if strings.Contains(k, strings.ToLower(sig)) {
						return true
					}
				}
			}
			return false
		},
	}

	rules, err := NewRuleSet(CoffeePasses(vocab), guards)
	if err != nil {
		return nil, fmt.Errorf("failed to build coffee rules: %w", err)
	}
	c.rules = rules

	return c, nil
}

// CoffeePasses expands vocab into the ordered coffee rule table.
func CoffeePasses(vocab Vocabulary) []Pass {
	merchant := Pass{Name: "merchant", FirstMatchOnly: true}
	for _, kw := range vocab.MerchantNames {
		r := Rule{Keyword: kw, Fields: FieldMerchant, Mode: modeFor(kw), Score: MerchantScore}
		if kw == vocab.GenericTerm {
			r.SuppressIf = guardRestaurantGeneric
		}
		merchant.Rules = append(merchant.Rules, r)
	}

	account := Pass{Name: "account", Rules: []Rule{{
		Keyword:    AccountDomainKeyword,
		Patterns:   vocab.AccountDomains,
		Fields:     FieldAccount,
		Mode:       MatchFold,
		Score:      AccountScore,
		SuppressIf: guardAccountSignalled,
	}}}
	if len(vocab.AccountDomains) == 0 {
		account.Rules = nil
	}

	english := Pass{Name: "english"}
	for _, kw := range vocab.English {
		english.Rules = append(english.Rules, Rule{Keyword: kw, Fields: FieldAny, Mode: MatchFold, Score: EnglishScore})
	}

	chinese := Pass{Name: "chinese"}
	for _, kw := range vocab.Chinese {
		r := Rule{Keyword: kw, Fields: FieldAny, Mode: MatchSubstring, Score: ChineseScore}
		if kw == vocab.GenericTerm {
			r.SuppressIf = guardRestaurantGenericMerchant
		}
		chinese.Rules = append(chinese.Rules, r)
	}

	return []Pass{merchant, account, english, chinese}
}

// Classify scores a transaction. It never fails.
func (c *CoffeeClassifier) Classify(txn model.Transaction) CoffeeResult {
	t := NewText(txn.Merchant, txn.Description, txn.Account)
	res := c.rules.Evaluate(t)
	confidence := res.Score

	// A coffee-flavoured snack matches only the generic word.
	if confidence < MerchantScore &&
		len(res.Keywords) == 1 && res.Keywords[0] == c.vocab.GenericTerm &&
		c.isFoodItem(t) {
		confidence = 0
	}

	confidence = clamp(confidence)

	keywords := res.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	return CoffeeResult{
		Keywords:   keywords,
		Confidence: confidence,
		IsCoffee:   IsCoffeeScore(confidence),
	}
}

// IsCoffeeScore applies the exclusive coffee threshold.
func IsCoffeeScore(confidence float64) bool {
	return confidence > CoffeeThreshold
}

func (c *CoffeeClassifier) isRestaurantOrBar(t *Text) bool {
	return t.ContainsAny(FieldMerchant, MatchSubstring, c.vocab.RestaurantMarkers)
}

func (c *CoffeeClassifier) hasStrongDrinkTerm(t *Text) bool {
	return t.ContainsAny(FieldDescription, MatchSubstring, c.vocab.StrongDrinkTerms)
}

func (c *CoffeeClassifier) isFoodItem(t *Text) bool {
	return t.ContainsAny(FieldMerchant|FieldDescription, MatchSubstring, c.vocab.FoodItems)
}

// modeFor matches CJK keywords exactly and Latin keywords without case.
func modeFor(keyword string) MatchMode {
	for _, r := range keyword {
		if unicode.Is(unicode.Han, r) {
			return MatchSubstring
		}
	}
	return MatchFold
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
