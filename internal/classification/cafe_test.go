package classification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/coffee-diary/internal/model"
)

func coffeeTxn(merchant, desc string) model.CoffeeTransaction {
	return model.CoffeeTransaction{
		Transaction: model.Transaction{Merchant: merchant, Description: desc},
		IsCoffee:    true,
		Confidence:  0.8,
	}
}

func TestDisplay_CafeName(t *testing.T) {
	d := NewDisplay(DefaultVocabulary())

	tests := []struct {
		name     string
		merchant string
		desc     string
		want     string
	}{
		{name: "merchant used as is", merchant: "Seesaw Coffee", desc: "拿铁", want: "Seesaw Coffee"},
		{name: "platform merchant falls back to description", merchant: "美团", desc: "Arabica Coffee·三里屯店", want: "Arabica Coffee"},
		{name: "description split at separator", merchant: "淘宝", desc: "保温杯(大号)", want: "保温杯"},
		{name: "platform merchant with empty description", merchant: "美团", desc: "", want: "美团"},
		{name: "nothing to go on", want: UnknownCafe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.CafeName(model.Transaction{Merchant: tt.merchant, Description: tt.desc})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDisplay_Matches(t *testing.T) {
	d := NewDisplay(DefaultVocabulary())

	chain := coffeeTxn("瑞幸咖啡", "生椰拿铁")
	cafe := coffeeTxn("Seesaw Coffee", "拿铁")
	beans := coffeeTxn("白鲸", "咖啡豆 250g")
	beans.IsBeans = true
	gear := coffeeTxn("Some Cafe", "V60滤纸")
	delivery := coffeeTxn("Some Cafe", "拿铁")
	delivery.IsDeliveryPlatformAccount = true
	mannerAccount := coffeeTxn("收款商户", "")
	mannerAccount.IsKnownChainAccount = true
	mannerKeyword := coffeeTxn("x", "")
	mannerKeyword.MatchedKeywords = []string{"Manner"}
	grid := coffeeTxn("某地", "Grid Coffee 拿铁")
	hans := coffeeTxn("憨憨咖啡", "美式")

	tests := []struct {
		name         string
		filter       Filter
		cafeName     string
		beanMerchant string
		txn          model.CoffeeTransaction
		want         bool
	}{
		{name: "all passes everything", filter: FilterAll, txn: gear, want: true},
		{name: "chain by brand", filter: FilterChain, txn: chain, want: true},
		{name: "chain by account", filter: FilterChain, txn: mannerAccount, want: true},
		{name: "independent is not chain", filter: FilterChain, txn: cafe, want: false},
		{name: "cafe", filter: FilterCafe, txn: cafe, want: true},
		{name: "cafe narrowed by name", filter: FilterCafe, cafeName: "Seesaw Coffee", txn: cafe, want: true},
		{name: "cafe narrowed to another name", filter: FilterCafe, cafeName: "Other", txn: cafe, want: false},
		{name: "chain is not cafe", filter: FilterCafe, txn: chain, want: false},
		{name: "equipment is not cafe", filter: FilterCafe, txn: gear, want: false},
		{name: "delivery is not cafe", filter: FilterCafe, txn: delivery, want: false},
		{name: "beans", filter: FilterBeans, txn: beans, want: true},
		{name: "beans narrowed by merchant", filter: FilterBeans, beanMerchant: "白鲸", txn: beans, want: true},
		{name: "beans narrowed to another merchant", filter: FilterBeans, beanMerchant: "x", txn: beans, want: false},
		{name: "drinks are not beans", filter: FilterBeans, txn: cafe, want: false},
		{name: "manner by account", filter: FilterManner, txn: mannerAccount, want: true},
		{name: "manner by keyword", filter: FilterManner, txn: mannerKeyword, want: true},
		{name: "manner by company", filter: FilterManner, txn: coffeeTxn("北京茵赫餐饮管理有限公司", ""), want: true},
		{name: "grid by description", filter: FilterGrid, txn: grid, want: true},
		{name: "hans", filter: FilterHans, txn: hans, want: true},
		{name: "dozzze by name", filter: FilterDozzze, txn: coffeeTxn("DOzzZE Coffee", ""), want: true},
		{name: "dozzze rejects others", filter: FilterDozzze, txn: hans, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Matches(tt.txn, tt.filter, tt.cafeName, tt.beanMerchant))
		})
	}
}

func TestDisplay_IsEspressoShot(t *testing.T) {
	d := NewDisplay(DefaultVocabulary())

	shot := coffeeTxn("Manner", "浓缩")
	shot.Amount = 5
	latte := coffeeTxn("Manner", "拿铁")
	latte.Amount = 15
	other := coffeeTxn("Seesaw", "浓缩")
	other.Amount = 3

	assert.True(t, d.IsEspressoShot(shot))
	assert.False(t, d.IsEspressoShot(latte))
	assert.False(t, d.IsEspressoShot(other))
}

func TestDisplay_FilterByDate(t *testing.T) {
	d := NewDisplay(DefaultVocabulary())

	byDate := model.CoffeeDataByDate{
		"2025-03-01": {coffeeTxn("瑞幸咖啡", "拿铁"), coffeeTxn("Seesaw Coffee", "拿铁")},
		"2025-03-02": {coffeeTxn("星巴克", "美式")},
	}

	got := d.FilterByDate(byDate, FilterCafe, "", "")
	assert.Len(t, got, 1)
	assert.Len(t, got["2025-03-01"], 1)
	assert.Equal(t, "Seesaw Coffee", got["2025-03-01"][0].Merchant)

	assert.Equal(t, byDate, d.FilterByDate(byDate, FilterAll, "", ""))
}

func TestDisplay_CafeNamesAndBeanMerchants(t *testing.T) {
	d := NewDisplay(DefaultVocabulary())

	beans := coffeeTxn("白鲸", "咖啡豆")
	beans.IsBeans = true
	otherBeans := coffeeTxn("Roastery", "Ethiopia")
	otherBeans.IsBeans = true

	txns := []model.CoffeeTransaction{
		coffeeTxn("Seesaw Coffee", "拿铁"),
		coffeeTxn("Arabica", "拿铁"),
		coffeeTxn("Seesaw Coffee", "美式"),
		coffeeTxn("瑞幸咖啡", "拿铁"),
		coffeeTxn("", ""),
		beans,
		otherBeans,
	}

	assert.Equal(t, []string{"Arabica", "Seesaw Coffee"}, d.CafeNames(txns))
	assert.Equal(t, []string{"Roastery", "白鲸"}, d.BeanMerchants(txns))
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in     string
		want   Filter
		wantOK bool
	}{
		{in: "", want: FilterAll, wantOK: true},
		{in: "Chain", want: FilterChain, wantOK: true},
		{in: " beans ", want: FilterBeans, wantOK: true},
		{in: "manner", want: FilterManner, wantOK: true},
		{in: "bogus", wantOK: false},
	}
	for _, tt := range tests {
		got, ok := ParseFilter(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
