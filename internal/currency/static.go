package currency

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/model"
)

// StaticProvider serves rates from a fixed table keyed by target currency.
// Rates are relative to model.BaseCurrency.
type StaticProvider struct {
	rates map[string]float64
}

// NewStaticProvider copies rates, upper-casing the keys.
func NewStaticProvider(rates map[string]float64) *StaticProvider {
	table := make(map[string]float64, len(rates))
	for code, rate := range rates {
		table[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return &StaticProvider{rates: table}
}

// Rate looks up target in the table.
func (p *StaticProvider) Rate(ctx context.Context, base, target string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if base != model.BaseCurrency {
		return 0, fmt.Errorf("%w: static rates are relative to %s, not %s",
			common.ErrConversionFailure, model.BaseCurrency, base)
	}
	rate, ok := p.rates[target]
	if !ok {
		return 0, fmt.Errorf("%w: no static rate for %s", common.ErrConversionFailure, target)
	}
	return rate, nil
}
