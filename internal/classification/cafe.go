package classification

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/coffee-diary/internal/model"
)

// UnknownCafe is returned when no name can be derived.
const UnknownCafe = "Unknown Cafe"

// Bounds on a plausible display name, in runes, both exclusive.
const (
	minNameLen = 1
	maxNameLen = 50
)

var cafeNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)([^·(（]+(?:coffee|咖啡|咖啡店|咖啡厅|咖啡吧|cafe|café)[^·(（]*)`),
	regexp.MustCompile(`(?i)([A-Za-z\s]+(?:coffee|cafe|café))`),
	regexp.MustCompile(`([^·(（]+咖啡[^·(（]*)`),
}

var nameSeparators = regexp.MustCompile(`[·(（]`)

// Filter selects a subset of coffee purchases for display.
type Filter string

// Filter values.
const (
	FilterAll    Filter = ""
	FilterChain  Filter = "chain"
	FilterBeans  Filter = "beans"
	FilterCafe   Filter = "cafe"
	FilterManner Filter = "manner"
	FilterGrid   Filter = "grid"
	FilterDozzze Filter = "dozzze"
	FilterHans   Filter = "hans"
)

// ParseFilter validates a filter name.
func ParseFilter(s string) (Filter, bool) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FilterAll, FilterChain, FilterBeans, FilterCafe, FilterManner, FilterGrid, FilterDozzze, FilterHans:
		return f, true
	}
	return "", false
}

// brandMarkers picks out a single chain for the per-brand filters.
var brandMarkers = map[Filter][]string{
	FilterManner: {"manner", "北京茵赫", "茵赫"},
	FilterGrid:   {"grid"},
	FilterDozzze: {"dozzze", "豆仔"},
	FilterHans:   {"hans", "憨憨"},
}

// Display answers display-layer questions about classified purchases.
type Display struct {
	vocab DisplayVocabulary
}

// NewDisplay creates a Display from vocab.
func NewDisplay(vocab Vocabulary) *Display {
	return &Display{vocab: vocab.Display}
}

// CafeName derives a readable cafe name, falling back to the description
// when the merchant is a platform alias.
func (d *Display) CafeName(txn model.Transaction) string {
	merchant := txn.Merchant
	desc := txn.Description

	if merchant != "" && !containsAny(merchant, d.vocab.PlatformMarkers) && plausibleName(merchant) {
		return merchant
	}

	for _, re := range cafeNamePatterns {
		m := re.FindStringSubmatch(desc)
		if m == nil {
			continue
		}
		if name := strings.TrimSpace(m[1]); plausibleName(name) {
			return name
		}
	}

	if first := strings.TrimSpace(nameSeparators.Split(desc, 2)[0]); first != "" {
		return first
	}
	if merchant != "" {
		return merchant
	}
	return UnknownCafe
}

// IsChain reports whether a purchase belongs to a recognized multi-location brand.
func (d *Display) IsChain(txn model.CoffeeTransaction) bool {
	if txn.IsKnownChainAccount {
		return true
	}
	t := NewText(txn.Merchant, txn.Description, "")
	return t.ContainsAny(FieldMerchant|FieldDescription, MatchFold, d.vocab.Chains)
}

// IsDelivery reports whether a purchase went through a food-delivery platform.
func (d *Display) IsDelivery(txn model.CoffeeTransaction) bool {
	if txn.IsDeliveryPlatformAccount {
		return true
	}
	t := NewText(txn.Merchant, txn.Description, "")
	return t.ContainsAny(FieldMerchant|FieldDescription, MatchFold, d.vocab.DeliveryMarkers)
}

// IsEquipment reports whether a purchase was brewing gear rather than coffee.
func (d *Display) IsEquipment(txn model.CoffeeTransaction) bool {
	t := NewText("", txn.Description, "")
	return t.ContainsAny(FieldDescription, MatchFold, d.vocab.EquipmentMarkers)
}

// IsCafe reports whether a purchase was a drink at an independent cafe.
func (d *Display) IsCafe(txn model.CoffeeTransaction) bool {
	return !d.IsChain(txn) && !txn.IsBeans && !d.IsEquipment(txn) && !d.IsDelivery(txn)
}

// Matches reports whether txn passes filter f. cafeName narrows FilterCafe to one
// cafe and beanMerchant narrows FilterBeans to one merchant; empty means all.
func (d *Display) Matches(txn model.CoffeeTransaction, f Filter, cafeName, beanMerchant string) bool {
	switch f {
	case FilterAll:
		return true
	case FilterChain:
		return d.IsChain(txn)
	case FilterBeans:
		if !txn.IsBeans {
			return false
		}
		return beanMerchant == "" || txn.Merchant == beanMerchant
	case FilterCafe:
		if !d.IsCafe(txn) {
			return false
		}
		return cafeName == "" || d.CafeName(txn.Transaction) == cafeName
	case FilterManner:
		return txn.IsKnownChainAccount ||
			NewText(txn.Merchant, "", "").ContainsAny(FieldMerchant, MatchFold, brandMarkers[f]) ||
			keywordsContain(txn.MatchedKeywords, "manner")
	case FilterGrid:
		return NewText(txn.Merchant, "", "").ContainsAny(FieldMerchant, MatchFold, brandMarkers[f]) ||
			NewText("", txn.Description, "").Contains(FieldDescription, MatchFold, "grid coffee") ||
			keywordsContain(txn.MatchedKeywords, "grid")
	default:
		return NewText(txn.Merchant, txn.Description, "").ContainsAny(FieldMerchant|FieldDescription, MatchFold, brandMarkers[f])
	}
}

// FilterByDate applies a filter to every date, dropping dates left empty.
func (d *Display) FilterByDate(byDate model.CoffeeDataByDate, f Filter, cafeName, beanMerchant string) model.CoffeeDataByDate {
	if f == FilterAll {
		return byDate
	}
	out := make(model.CoffeeDataByDate)
	for date, txns := range byDate {
		var kept []model.CoffeeTransaction
		for _, txn := range txns {
			if d.Matches(txn, f, cafeName, beanMerchant) {
				kept = append(kept, txn)
			}
		}
		if len(kept) > 0 {
			out[date] = kept
		}
	}
	return out
}

// CafeNames lists the distinct independent cafes, sorted.
func (d *Display) CafeNames(txns []model.CoffeeTransaction) []string {
	seen := make(map[string]bool)
	for _, txn := range txns {
		if d.IsChain(txn) || txn.IsBeans || d.IsEquipment(txn) {
			continue
		}
		name := d.CafeName(txn.Transaction)
		if name == UnknownCafe || containsAny(name, d.vocab.PlatformMarkers) {
			continue
		}
		seen[name] = true
	}
	return sortedKeys(seen)
}

// BeanMerchants lists the distinct merchants of bean purchases, sorted.
func (d *Display) BeanMerchants(txns []model.CoffeeTransaction) []string {
	seen := make(map[string]bool)
	for _, txn := range txns {
		if txn.IsBeans && utf8.RuneCountInString(txn.Merchant) > minNameLen {
			seen[txn.Merchant] = true
		}
	}
	return sortedKeys(seen)
}

func plausibleName(s string) bool {
	n := utf8.RuneCountInString(s)
	return n > minNameLen && n < maxNameLen
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func keywordsContain(keywords []string, sub string) bool {
	for _, k := range keywords {
		if strings.Contains(strings.ToLower(k), sub) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// EspressoMaxAmount is the price ceiling that singles out Manner's espresso shots.
const EspressoMaxAmount = 5.0

// IsEspressoShot reports whether a Manner purchase is cheap enough to be a single espresso.
func (d *Display) IsEspressoShot(txn model.CoffeeTransaction) bool {
	return d.Matches(txn, FilterManner, "", "") && txn.Amount <= EspressoMaxAmount
}
