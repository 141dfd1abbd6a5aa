// Package settlement is the pure computation core of the back office: it
// turns one dispatch record into the amount billed to the client, the
// amount paid to each worker, and the aggregated reporting views used for
// collections and payroll. It performs no I/O; callers hand it model
// snapshots and persist the results.
package settlement

import (
	"agency/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Override carries operator-supplied flat figures that replace the formula
// for one record. BilledAmount already includes VAT; PerWorkerAmount is a
// flat per-head payout.
type Override struct {
	BilledAmount    int64
	PerWorkerAmount int64
}

// Input is everything Settle needs for one dispatch record. The engine
// holds no state: edits simply re-run Settle on fresh input.
type Input struct {
	Client     model.Client
	Rate       model.Rate
	Status     string          // Normal, Waiting, Cancelled
	StatusRate decimal.Decimal // fraction billed/paid when Status != Normal
	Override   *Override       // applies only when Status != Normal
	WorkerIDs  []uuid.UUID
	Payments   map[uuid.UUID]int64 // explicit per-worker overrides; keys must be assigned workers
	TaxFree    bool
}

// Result is the settlement snapshot for one record. All amounts are
// non-negative KRW integers.
type Result struct {
	Unit             UnitPrice
	PreTaxBillable   int64
	VAT              int64
	BilledAmount     int64
	DefaultPerWorker int64
	PerWorker        map[uuid.UUID]int64
	TotalPayout      int64
	Margin           int64 // pre-tax billable minus payout; VAT is a pass-through, not margin
}

var one = decimal.NewFromInt(1)

// Settle runs the full pipeline for one record: pricing resolution, status
// adjustment (or manual override), VAT, and payout allocation.
func Settle(in Input) (Result, error) {
	if err := validate(in); err != nil {
		return Result{}, err
	}

	unit := ResolveUnitPrice(in.Client, in.Rate)
	workerPool, billablePool := standardPools(in.Client, in.Rate, unit)
	workerPool, billablePool = applyStatus(workerPool, billablePool, in.Status, in.StatusRate)

	res := Result{Unit: unit}

	// The original operator workflow only offers manual figures for
	// waiting/cancelled jobs, so an override on a Normal record is inert.
	if in.Override != nil && in.Status != model.StatusNormal {
		res.BilledAmount = in.Override.BilledAmount
		res.PreTaxBillable = backOutVAT(in.Override.BilledAmount, in.TaxFree)
		res.VAT = res.BilledAmount - res.PreTaxBillable

		alloc := allocateFlat(in.Override.PerWorkerAmount, in.WorkerIDs)
		res.DefaultPerWorker = alloc.DefaultPerWorker
		res.PerWorker = alloc.PerWorker
		res.TotalPayout = alloc.TotalPayout
	} else {
		res.PreTaxBillable = billablePool
		res.VAT, res.BilledAmount = addVAT(billablePool, in.TaxFree)

		alloc := allocate(workerPool, in.WorkerIDs, in.Payments)
		res.DefaultPerWorker = alloc.DefaultPerWorker
		res.PerWorker = alloc.PerWorker
		res.TotalPayout = alloc.TotalPayout
	}

	res.Margin = res.PreTaxBillable - res.TotalPayout
	return res, nil
}

func validate(in Input) error {
	switch in.Status {
	case model.StatusNormal, model.StatusWaiting, model.StatusCancelled:
	default:
		return invalidInput("status", "unknown status %q", in.Status)
	}

	if in.Status != model.StatusNormal {
		if in.StatusRate.IsNegative() || in.StatusRate.GreaterThan(one) {
			return invalidInput("status_rate", "must be within [0, 1], got %s", in.StatusRate)
		}
	}

	if in.Rate.ClientID != in.Client.ID {
		return invalidInput("rate_id", "rate %s does not belong to client %s", in.Rate.ID, in.Client.ID)
	}

	if in.Rate.StandardHeadcount < 0 {
		return invalidInput("standard_headcount", "must not be negative, got %d", in.Rate.StandardHeadcount)
	}
	if in.Rate.UnitAmount < 0 {
		return invalidInput("unit_amount", "must not be negative, got %d", in.Rate.UnitAmount)
	}

	assigned := make(map[uuid.UUID]bool, len(in.WorkerIDs))
	for _, id := range in.WorkerIDs {
		if assigned[id] {
			return invalidInput("worker_ids", "worker %s assigned twice", id)
		}
		assigned[id] = true
	}
	for id := range in.Payments {
		if !assigned[id] {
			return invalidInput("payments", "payment override for unassigned worker %s", id)
		}
	}

	return nil
}
