// Package classification decides whether a payment record is a coffee purchase
// and what kind of coffee purchase it is.
package classification

import (
	"fmt"
	"regexp"
	"strings"
)

// Field selects which transaction text a rule is evaluated against.
type Field uint8

// Field flags. They can be combined.
const (
	FieldMerchant Field = 1 << iota
	FieldDescription
	FieldAccount
	// FieldAll is merchant, description and account joined by spaces.
	FieldAll

	FieldAny = FieldMerchant | FieldDescription | FieldAccount
)

// MatchMode controls how a rule pattern is compared with the text.
type MatchMode int

const (
	// MatchSubstring is a case-sensitive substring test against the merchant as
	// written. Description and account are folded to lower case on entry, so
	// only lower-case or CJK patterns can match them.
	MatchSubstring MatchMode = iota
	// MatchFold is a case-insensitive substring test.
	MatchFold
	// MatchRegex tests a regular expression against the folded text.
	MatchRegex
)

// Rule is a single declarative matching rule.
type Rule struct {
	// Keyword is recorded in the match list when the rule fires.
	Keyword string
	// Patterns are alternatives; any one matching fires the rule. Empty means Keyword.
	Patterns []string
	// Requires lists companion substrings of which at least one must also be
	// present in the rule's fields.
	Requires []string
	// SuppressIf names a guard that, when true, skips the rule.
	SuppressIf string
	Score      float64
	Fields     Field
	Mode       MatchMode
}

// Pass is an ordered group of rules.
type Pass struct {
	Name  string
	Rules []Rule
	// FirstMatchOnly stops the pass at the first rule that fires.
	FirstMatchOnly bool
}

// Guard reports whether a rule should be skipped for the given text.
// matched holds the keywords recorded so far.
type Guard func(t *Text, matched []string) bool

// Text is the prepared, read-only view of a transaction's free-text fields.
type Text struct {
	Merchant     string
	MerchantFold string
	Description  string // folded
	Account      string // folded
	All          string // folded
}

// NewText prepares the text fields of a transaction for matching.
func NewText(merchant, description, account string) *Text {
	d := strings.ToLower(description)
	a := strings.ToLower(account)
	return &Text{
		Merchant:     merchant,
		MerchantFold: strings.ToLower(merchant),
		Description:  d,
		Account:      a,
		All:          strings.ToLower(merchant + " " + description + " " + account),
	}
}

// Contains is a substring test over the selected fields using mode's folding.
func (t *Text) Contains(fields Field, mode MatchMode, pattern string) bool {
	if mode == MatchFold {
		pattern = strings.ToLower(pattern)
	}
	for _, s := range t.views(fields, mode) {
		if strings.Contains(s, pattern) {
			return true
		}
	}
	return false
}

// ContainsAny reports whether any pattern is contained in the selected fields.
func (t *Text) ContainsAny(fields Field, mode MatchMode, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && t.Contains(fields, mode, p) {
			return true
		}
	}
	return false
}

func (t *Text) views(fields Field, mode MatchMode) []string {
	views := make([]string, 0, 4)
	if fields&FieldMerchant != 0 {
		if mode == MatchSubstring {
			views = append(views, t.Merchant)
		} else {
			views = append(views, t.MerchantFold)
		}
	}
	if fields&FieldDescription != 0 {
		views = append(views, t.Description)
	}
	if fields&FieldAccount != 0 {
		views = append(views, t.Account)
	}
	if fields&FieldAll != 0 {
		views = append(views, t.All)
	}
	return views
}

// Result is the outcome of running a rule set.
type Result struct {
	Keywords []string
	Score    float64
}

type compiledRule struct {
	regexps []*regexp.Regexp
	guard   Guard
	Rule
}

type compiledPass struct {
	name           string
	rules          []compiledRule
	firstMatchOnly bool
}

// RuleSet evaluates ordered passes of rules against a transaction's text.
// It is immutable after construction and safe for concurrent use.
type RuleSet struct {
	passes []compiledPass
}

// NewRuleSet compiles passes and resolves guard references.
func NewRuleSet(passes []Pass, guards map[string]Guard) (*RuleSet, error) {
	rs := &RuleSet{passes: make([]compiledPass, 0, len(passes))}

	for _, p := range passes {
		cp := compiledPass{name: p.Name, firstMatchOnly: p.FirstMatchOnly}
		for _, r := range p.Rules {
			cr := compiledRule{Rule: r}
			if len(cr.Patterns) == 0 {
				cr.Patterns = []string{r.Keyword}
			}
			if r.Fields == 0 {
				return nil, fmt.Errorf("rule %q in pass %s targets no fields", r.Keyword, p.Name)
			}
			if r.SuppressIf != "" {
				g, ok := guards[r.SuppressIf]
				if !ok {
					return nil, fmt.Errorf("rule %q in pass %s references unknown guard %q", r.Keyword, p.Name, r.SuppressIf)
				}
				cr.guard = g
			}
			if r.Mode == MatchRegex {
				for _, pat := range cr.Patterns {
					re, err := regexp.Compile("(?i)" + pat)
					if err != nil {
						return nil, fmt.Errorf("failed to compile pattern %s: %w", pat, err)
					}
					cr.regexps = append(cr.regexps, re)
				}
			}
			cp.rules = append(cp.rules, cr)
		}
		rs.passes = append(rs.passes, cp)
	}

	return rs, nil
}

// Evaluate runs every pass in order. A keyword already recorded is never
// recorded or scored twice.
func (rs *RuleSet) Evaluate(t *Text) Result {
	var res Result

	for _, p := range rs.passes {
		for _, r := range p.rules {
			if contains(res.Keywords, r.Keyword) {
				continue
			}
			if !r.matches(t) {
				continue
			}
			if r.guard != nil && r.guard(t, res.Keywords) {
				continue
			}
			res.Keywords = append(res.Keywords, r.Keyword)
			res.Score += r.Score
			if p.firstMatchOnly {
				break
			}
		}
	}

	return res
}

// Any reports whether at least one rule fires.
func (rs *RuleSet) Any(t *Text) bool {
	return len(rs.Evaluate(t).Keywords) > 0
}

// RuleCount returns the number of compiled rules across all passes.
func (rs *RuleSet) RuleCount() int {
	n := 0
	for _, p := range rs.passes {
		n += len(p.rules)
	}
	return n
}

func (r *compiledRule) matches(t *Text) bool {
	fired := false
	if r.Mode == MatchRegex {
		for _, re := range r.regexps {
			for _, s := range t.views(r.Fields, r.Mode) {
				if re.MatchString(s) {
					fired = true
					break
				}
			}
			if fired {
				break
			}
		}
	} else {
		fired = t.ContainsAny(r.Fields, r.Mode, r.Patterns)
	}
	if !fired {
		return false
	}
	if len(r.Requires) > 0 {
		return t.ContainsAny(r.Fields, MatchFold, r.Requires)
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
