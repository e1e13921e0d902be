package classification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRuleSet(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		passes  []Pass
		wantErr bool
	}{
		{
			name: "valid rules",
			passes: []Pass{{Name: "p", Rules: []Rule{
				{Keyword: "latte", Fields: FieldDescription, Mode: MatchFold, Score: 0.5},
				{Keyword: "weight", Patterns: []string{`\d+g`}, Fields: FieldAll, Mode: MatchRegex},
			}}},
		},
		{
			name:    "rule without fields",
			passes:  []Pass{{Name: "p", Rules: []Rule{{Keyword: "latte"}}}},
			wantErr: true,
			errMsg:  "targets no fields",
		},
		{
			name:    "unknown guard",
			passes:  []Pass{{Name: "p", Rules: []Rule{{Keyword: "latte", Fields: FieldAny, SuppressIf: "missing"}}}},
			wantErr: true,
			errMsg:  "unknown guard",
		},
		{
			name:    "invalid regex",
			passes:  []Pass{{Name: "p", Rules: []Rule{{Keyword: "bad", Patterns: []string{`[invalid`}, Fields: FieldAny, Mode: MatchRegex}}}},
			wantErr: true,
			errMsg:  "failed to compile pattern",
		},
		{
			name:   "empty passes",
			passes: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := NewRuleSet(tt.passes, nil)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, rs)
		})
	}
}

func TestRuleSet_Evaluate(t *testing.T) {
	alwaysSuppress := map[string]Guard{
		"always": func(*Text, []string) bool { return true },
		"never":  func(*Text, []string) bool { return false },
	}

	tests := []struct {
		name      string
		text      *Text
		wantKeys  []string
		passes    []Pass
		wantScore float64
	}{
		{
			name: "first match only stops the pass",
			passes: []Pass{{Name: "merchant", FirstMatchOnly: true, Rules: []Rule{
				{Keyword: "starbucks", Fields: FieldMerchant, Mode: MatchFold, Score: 0.8},
				{Keyword: "coffee", Fields: FieldMerchant, Mode: MatchFold, Score: 0.8},
			}}},
			text:      NewText("Starbucks Coffee", "", ""),
			wantKeys:  []string{"starbucks"},
			wantScore: 0.8,
		},
		{
			name: "priority order decides the recorded keyword",
			passes: []Pass{{Name: "merchant", FirstMatchOnly: true, Rules: []Rule{
				{Keyword: "coffee", Fields: FieldMerchant, Mode: MatchFold, Score: 0.8},
				{Keyword: "starbucks", Fields: FieldMerchant, Mode: MatchFold, Score: 0.8},
			}}},
			text:      NewText("Starbucks Coffee", "", ""),
			wantKeys:  []string{"coffee"},
			wantScore: 0.8,
		},
		{
			name: "keyword recorded once across passes",
			passes: []Pass{
				{Name: "a", Rules: []Rule{{Keyword: "latte", Fields: FieldDescription, Mode: MatchFold, Score: 0.6}}},
				{Name: "b", Rules: []Rule{{Keyword: "latte", Fields: FieldAny, Mode: MatchFold, Score: 0.7}}},
			},
			text:      NewText("", "Iced Latte", ""),
			wantKeys:  []string{"latte"},
			wantScore: 0.6,
		},
		{
			name: "substring mode is case sensitive on merchant",
			passes: []Pass{{Name: "a", Rules: []Rule{
				{Keyword: "manner", Fields: FieldMerchant, Mode: MatchSubstring, Score: 1},
			}}},
			text:     NewText("Manner", "", ""),
			wantKeys: nil,
		},
		{
			name: "guard suppresses a rule",
			passes: []Pass{{Name: "a", Rules: []Rule{
				{Keyword: "coffee", Fields: FieldAny, Mode: MatchFold, Score: 1, SuppressIf: "always"},
				{Keyword: "latte", Fields: FieldAny, Mode: MatchFold, Score: 0.5, SuppressIf: "never"},
			}}},
			text:      NewText("", "coffee latte", ""),
			wantKeys:  []string{"latte"},
			wantScore: 0.5,
		},
		{
			name: "requires a companion term",
			passes: []Pass{{Name: "a", Rules: []Rule{
				{Keyword: "blend", Fields: FieldDescription, Mode: MatchFold, Requires: []string{"beans"}, Score: 1},
			}}},
			text:     NewText("", "house blend latte", ""),
			wantKeys: nil,
		},
		{
			name: "pattern alternatives",
			passes: []Pass{{Name: "a", Rules: []Rule{
				{Keyword: "domain", Patterns: []string{"starbucks", "luckin"}, Fields: FieldAccount, Mode: MatchFold, Score: 0.9},
			}}},
			text:      NewText("", "", "pay@LUCKIN.example"),
			wantKeys:  []string{"domain"},
			wantScore: 0.9,
		},
		{
			name: "regex over joined text",
			passes: []Pass{{Name: "a", Rules: []Rule{
				{Keyword: "weight", Patterns: []string{`\d+(?:kg|g)\b`}, Fields: FieldAll, Mode: MatchRegex, Score: 1},
			}}},
			text:      NewText("Roaster", "Yirgacheffe 250G", ""),
			wantKeys:  []string{"weight"},
			wantScore: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := NewRuleSet(tt.passes, alwaysSuppress)
			require.NoError(t, err)

			res := rs.Evaluate(tt.text)
			assert.Equal(t, tt.wantKeys, res.Keywords)
			assert.InDelta(t, tt.wantScore, res.Score, 1e-9)
			assert.Equal(t, len(tt.wantKeys) > 0, rs.Any(tt.text))
		})
	}
}

func TestRuleSet_RuleCount(t *testing.T) {
	rs, err := NewRuleSet(CoffeePasses(DefaultVocabulary()), map[string]Guard{
		guardRestaurantGeneric:         func(*Text, []string) bool { return false },
		guardRestaurantGenericMerchant: func(*Text, []string) bool { return false },
		guardAccountSignalled:          func(*Text, []string) bool { return false },
	})
	require.NoError(t, err)

	v := DefaultVocabulary()
	want := len(v.MerchantNames) + 1 + len(v.English) + len(v.Chinese)
	assert.Equal(t, want, rs.RuleCount())
}
