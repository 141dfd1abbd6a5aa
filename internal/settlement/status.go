package settlement

import (
	"agency/internal/model"

	"github.com/shopspring/decimal"
)

// scalePool applies the status multiplier to a money pool with decimal
// arithmetic, flooring the result. Both the billable and the worker-pay
// pool scale by the same factor: a waiting or cancelled job bills and pays
// a fraction of the full contract, never values derived independently for
// each side.
func scalePool(pool int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(pool).Mul(rate).Floor().IntPart()
}

// applyStatus adjusts the standard pools for the record's status. Normal
// passes both pools through untouched; Waiting and Cancelled scale both by
// the status rate.
func applyStatus(workerPool, billablePool int64, status string, rate decimal.Decimal) (int64, int64) {
	if status == model.StatusNormal {
		return workerPool, billablePool
	}
	return scalePool(workerPool, rate), scalePool(billablePool, rate)
}
