package settlement

import (
	"github.com/shopspring/decimal"
)

// VAT-inclusive totals divide by this to recover the supply price.
var vatInclusiveFactor = decimal.RequireFromString("1.1")

// addVAT returns the 10% value-added tax on a supply price and the final
// VAT-inclusive bill. Tax-free records bill the supply price as-is.
// Truncation (never rounding up) keeps the agency from over-billing.
func addVAT(preTax int64, taxFree bool) (vat, billed int64) {
	if taxFree {
		return 0, preTax
	}
	vat = preTax / 10
	return vat, preTax + vat
}

// backOutVAT recovers the supply price from a VAT-inclusive total, used
// when a manual override supplies the final bill directly and margin
// reporting still needs the pre-tax figure.
func backOutVAT(billed int64, taxFree bool) int64 {
	if taxFree {
		return billed
	}
	return decimal.NewFromInt(billed).Div(vatInclusiveFactor).Round(0).IntPart()
}

// GrossUpEarning returns a worker's reportable earning for a payout.
// Business-registered workers issue their own tax invoice to the agency,
// so their reported figure carries the 10% VAT on top.
func GrossUpEarning(payout int64, businessRegistered bool) int64 {
	if !businessRegistered {
		return payout
	}
	return payout + payout/10
}
