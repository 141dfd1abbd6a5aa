package settlement

import (
	"agency/internal/model"

	"github.com/shopspring/decimal"
)

// UnitPrice is the per-standard-head money pair resolved from a client's
// rate card: what one head costs the agency and what one head bills.
type UnitPrice struct {
	WorkerPay int64 `json:"worker_pay"`
	Billable  int64 `json:"billable"`
}

// ResolveUnitPrice converts a (client, rate) pair into per-head figures
// according to the client's pay mode.
//
// INDIVIDUAL: the rate's unit amount is the per-head worker cost and the
// client fee is per-head, so billable = cost + fee.
//
// TOTAL: the rate's unit amount is the whole-job contracted price and the
// fee is whole-job, so per-head figures are derived by dividing by the
// standard headcount. A zero headcount is a legal transient state and
// degrades to zero instead of dividing.
func ResolveUnitPrice(client model.Client, rate model.Rate) UnitPrice {
	if client.PayMode == model.PayModeTotal {
		if rate.StandardHeadcount <= 0 {
			return UnitPrice{}
		}
		// Per-head figures floor. Division must not truncate toward zero:
		// a fee exceeding the contracted amount makes the pool negative.
		heads := decimal.NewFromInt(int64(rate.StandardHeadcount))
		return UnitPrice{
			WorkerPay: decimal.NewFromInt(rate.UnitAmount - client.FeeAmount).Div(heads).Floor().IntPart(),
			Billable:  decimal.NewFromInt(rate.UnitAmount).Div(heads).Floor().IntPart(),
		}
	}
	return UnitPrice{
		WorkerPay: rate.UnitAmount,
		Billable:  rate.UnitAmount + client.FeeAmount,
	}
}

// standardPools expands the per-head figures to whole-job pools at standard
// headcount. In TOTAL mode the billable pool is the contracted total itself,
// preserved exactly rather than reconstructed from the rounded per-head
// figure, so the client invoice carries no rounding drift.
func standardPools(client model.Client, rate model.Rate, unit UnitPrice) (workerPool, billablePool int64) {
	heads := int64(rate.StandardHeadcount)
	workerPool = unit.WorkerPay * heads
	if client.PayMode == model.PayModeTotal {
		if rate.StandardHeadcount <= 0 {
			return 0, 0
		}
		billablePool = rate.UnitAmount
	} else {
		billablePool = unit.Billable * heads
	}
	return workerPool, billablePool
}
