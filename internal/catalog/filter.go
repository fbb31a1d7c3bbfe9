package catalog

import (
	"github.com/shopspring/decimal"

	"foxgate/internal/foxpays"
)

// FilterByAmount returns the gateways able to take a payment of amount:
// active (or with is_active absent) and with min_limit <= amount <= max_limit,
// bounds inclusive. Gateways with unparseable limits are skipped.
func FilterByAmount(gateways []foxpays.PaymentGateway, amount decimal.Decimal) []foxpays.PaymentGateway {
	out := make([]foxpays.PaymentGateway, 0, len(gateways))
	for _, g := range gateways {
		if !g.Active() {
			continue
		}
		minLimit, err := decimal.NewFromString(g.MinLimit)
		if err != nil {
			continue
		}
		maxLimit, err := decimal.NewFromString(g.MaxLimit)
		if err != nil {
			continue
		}
		if amount.LessThan(minLimit) || amount.GreaterThan(maxLimit) {
			continue
		}
		out = append(out, g)
	}
	return out
}
