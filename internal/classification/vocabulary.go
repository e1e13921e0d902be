package classification

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Vocabulary holds every keyword list the classifiers use.
// Lists are ordered; order is priority where a pass stops at the first match.
type Vocabulary struct {
	// GenericTerm is the bare CJK word for coffee that restaurant and food guards watch for.
	GenericTerm       string   `yaml:"generic_term"`
	MerchantNames     []string `yaml:"merchant_names"`
	AccountDomains    []string `yaml:"account_domains"`
	AccountSignals    []string `yaml:"account_signals"`
	English           []string `yaml:"english"`
	Chinese           []string `yaml:"chinese"`
	RestaurantMarkers []string `yaml:"restaurant_markers"`
	StrongDrinkTerms  []string `yaml:"strong_drink_terms"`
	FoodItems         []string `yaml:"food_items"`

	Beans   BeanVocabulary    `yaml:"beans"`
	Display DisplayVocabulary `yaml:"display"`
}

// BeanVocabulary holds the bean classifier's terms and its known false positives.
type BeanVocabulary struct {
	LiteralTerm        string   `yaml:"literal_term"`
	BeanChar           string   `yaml:"bean_char"`
	KnownRoasters      []string `yaml:"known_roasters"`
	CafeNamesWithBean  []string `yaml:"cafe_names_with_bean"`
	ShopDescriptors    []string `yaml:"shop_descriptors"`
	CafeDescriptors    []string `yaml:"cafe_descriptors"`
	PourOverVenues     []string `yaml:"pour_over_venues"`
	PourOverTerms      []string `yaml:"pour_over_terms"`
	PourOverCompanions []string `yaml:"pour_over_companions"`
	BlendTerms         []string `yaml:"blend_terms"`
	BlendDrinks        []string `yaml:"blend_drinks"`
	BlendCompanions    []string `yaml:"blend_companions"`
	WeightUnits        []string `yaml:"weight_units"`
	Terms              []string `yaml:"terms"`
}

// DisplayVocabulary drives the cafe-name extractor and the display filters.
type DisplayVocabulary struct {
	Chains           []string `yaml:"chains"`
	PlatformMarkers  []string `yaml:"platform_markers"`
	DeliveryMarkers  []string `yaml:"delivery_markers"`
	EquipmentMarkers []string `yaml:"equipment_markers"`
}

// DefaultVocabulary returns the built-in keyword lists.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		GenericTerm: "咖啡",
		MerchantNames: []string{
			"starbucks", "星巴克", "luckin", "瑞幸", "manner", "Manner", "mannercoffee",
			"grid coffee", "Grid Coffee", "coffee", "咖啡",
			"北京茵赫餐饮管理有限公司", "茵赫", // Manner's operating company
			"豆子咖啡实验室", "豆仔",
			"白鲸咖啡", "白鲸",
			"the common cup", "common cup", "cup",
			"余温",
		},
		AccountDomains: []string{"mannercoffee", "starbucks", "luckin", "coffee"},
		AccountSignals: []string{"manner", "coffee"},
		English: []string{
			"coffee", "starbucks", "luckin", "manner", "grid coffee", "cafe", "café",
			"espresso", "latte", "cappuccino", "americano", "mocha", "frappuccino",
			"coffee shop", "coffeehouse", "barista",
		},
		Chinese: []string{
			"咖啡", "星巴克", "瑞幸", "luckin", "manner", "Manner", "Grid Coffee", "grid coffee",
			"咖啡馆", "咖啡店", "咖啡厅", "咖啡吧", "手冲咖啡", "精品咖啡", "意式咖啡", "美式咖啡",
			"拿铁", "卡布奇诺", "摩卡", "浓缩咖啡", "咖啡豆", "咖啡机",
		},
		RestaurantMarkers: []string{"餐吧", "餐厅", "饭店", "餐馆", "精酿", "bar", "restaurant", "bistro"},
		StrongDrinkTerms: []string{
			"咖啡", "coffee", "拿铁", "latte", "美式", "americano", "卡布", "cappuccino", "espresso",
		},
		FoodItems: []string{
			"曲奇", "cookie", "cookies", "饼干", "biscuit",
			"蛋糕", "cake", "甜品", "dessert",
			"冰淇淋", "ice cream", "gelato",
			"面包", "bread", "bakery",
			"巧克力", "chocolate", "candy", "糖果",
			"糖", "sugar", "sweet",
		},
		Beans: BeanVocabulary{
			LiteralTerm:        "咖啡豆",
			BeanChar:           "豆",
			KnownRoasters:      []string{"白鲸"},
			CafeNamesWithBean:  []string{"豆子咖啡实验室", "豆仔", "DOzzZE", "咖啡实验室"},
			ShopDescriptors:    []string{"咖啡豆买手店", "咖啡豆店", "咖啡豆馆"},
			CafeDescriptors:    []string{"咖啡店", "咖啡厅", "咖啡·"},
			PourOverVenues:     []string{"手冲咖啡店", "手冲咖啡"},
			PourOverTerms:      []string{"手冲", "pour over"},
			PourOverCompanions: []string{"手冲豆", "手冲咖啡豆"},
			BlendTerms:         []string{"拼配", "blend"},
			BlendDrinks:        []string{"拼配美式", "拼配拿铁", "拼配卡布", "拼配澳白", "拼配dirty"},
			BlendCompanions:    []string{"拼配豆", "拼配咖啡豆"},
			WeightUnits:        []string{"kg", "g"},
			Terms: []string{
				"咖啡豆", "bean", "beans", "whole bean", "whole beans",
				"ground coffee", "咖啡粉", "烘焙", "roast", "roasted",
				"soe", "单品",
				"瑰夏", "geisha", "耶加", "yirgacheffe", "埃塞", "ethiopia",
				"庄园", "estate", "水洗", "washed", "日晒", "natural",
				"浅烘", "light roast", "中烘", "medium roast", "深烘", "dark roast",
			},
		},
		Display: DisplayVocabulary{
			Chains: []string{
				"manner", "北京茵赫", "茵赫", "grid", "starbucks", "星巴克", "luckin", "瑞幸",
				"dozzze", "豆仔", "hans", "憨憨", "白鲸",
			},
			PlatformMarkers: []string{"淘宝", "美团"},
			DeliveryMarkers: []string{"淘宝闪购", "淘宝", "美团", "饿了么", "ele.me", "meituan", "外卖订单"},
			EquipmentMarkers: []string{
				"滤纸", "粉碗", "手柄", "咖啡壶", "咖啡杯", "冷萃壶", "冷泡", "过滤", "咖啡机",
			},
		},
	}
}

// LoadVocabulary reads a YAML vocabulary file over the defaults.
// Lists present in the file replace the default list; absent keys keep it.
func LoadVocabulary(path string) (Vocabulary, error) {
	vocab := DefaultVocabulary()
	if path == "" {
		return vocab, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	if err := yaml.Unmarshal(data, &vocab); err != nil {
		return Vocabulary{}, fmt.Errorf("failed to parse vocabulary file %s: %w", path, err)
	}

	if err := vocab.Validate(); err != nil {
		return Vocabulary{}, err
	}

	return vocab, nil
}

// Validate checks the fields the classifiers cannot run without.
func (v Vocabulary) Validate() error {
	if v.GenericTerm == "" {
		return fmt.Errorf("%w: generic_term is required", ErrInvalidVocabulary)
	}
	if v.Beans.LiteralTerm == "" || v.Beans.BeanChar == "" {
		return fmt.Errorf("%w: beans.literal_term and beans.bean_char are required", ErrInvalidVocabulary)
	}
	return nil
}
