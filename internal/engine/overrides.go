package engine

import "github.com/Veraticus/coffee-diary/internal/model"

// ApplyOverrides writes user decisions over classifier output in place and
// returns how many transactions were overridden.
//
// Beans imply coffee: forcing beans on also forces coffee on unless coffee was
// explicitly forced off, in which case beans are cleared.
func ApplyOverrides(txns []model.CoffeeTransaction, overrides map[string]model.Override) int {
	if len(overrides) == 0 {
		return 0
	}

	applied := 0
	for i := range txns {
		o, ok := overrides[txns[i].ID]
		if !ok {
			continue
		}

		confirmed := true
		txns[i].IsConfirmed = &confirmed

		if o.IsCoffee != nil {
			txns[i].IsCoffee = *o.IsCoffee
		}
		if o.IsBeans != nil {
			txns[i].IsBeans = *o.IsBeans
		}

		if txns[i].IsBeans && o.IsBeans != nil && o.IsCoffee == nil {
			txns[i].IsCoffee = true
		}
		if !txns[i].IsCoffee {
			txns[i].IsBeans = false
		}

		applied++
	}
	return applied
}
