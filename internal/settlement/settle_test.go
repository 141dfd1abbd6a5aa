package settlement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency/internal/model"
)

func individualClient(fee int64) model.Client {
	return model.Client{
		ID:        uuid.New(),
		Name:      "Dawn Logistics",
		PayMode:   model.PayModeIndividual,
		FeeAmount: fee,
	}
}

func totalClient(fee int64) model.Client {
	return model.Client{
		ID:        uuid.New(),
		Name:      "Harbor Foods",
		PayMode:   model.PayModeTotal,
		FeeAmount: fee,
	}
}

func rateFor(c model.Client, unitAmount int64, heads int) model.Rate {
	return model.Rate{
		ID:                uuid.New(),
		ClientID:          c.ID,
		VolumeType:        "day shift",
		StandardHeadcount: heads,
		UnitAmount:        unitAmount,
	}
}

func crew(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func TestSettleIndividualNormal(t *testing.T) {
	client := individualClient(10000)
	rate := rateFor(client, 80000, 2)
	workers := crew(2)

	res, err := Settle(Input{
		Client:    client,
		Rate:      rate,
		Status:    model.StatusNormal,
		WorkerIDs: workers,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(80000), res.Unit.WorkerPay)
	assert.Equal(t, int64(90000), res.Unit.Billable)
	assert.Equal(t, int64(180000), res.PreTaxBillable)
	assert.Equal(t, int64(18000), res.VAT)
	assert.Equal(t, int64(198000), res.BilledAmount)
	assert.Equal(t, int64(80000), res.DefaultPerWorker)
	for _, id := range workers {
		assert.Equal(t, int64(80000), res.PerWorker[id])
	}
	assert.Equal(t, int64(160000), res.TotalPayout)
	assert.Equal(t, int64(20000), res.Margin)
}

func TestSettleWaitingHalfRate(t *testing.T) {
	client := individualClient(10000)
	rate := rateFor(client, 80000, 2)
	workers := crew(2)

	res, err := Settle(Input{
		Client:     client,
		Rate:       rate,
		Status:     model.StatusWaiting,
		StatusRate: decimal.RequireFromString("0.5"),
		WorkerIDs:  workers,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(90000), res.PreTaxBillable)
	assert.Equal(t, int64(9000), res.VAT)
	assert.Equal(t, int64(99000), res.BilledAmount)
	assert.Equal(t, int64(40000), res.DefaultPerWorker)
	assert.Equal(t, int64(80000), res.TotalPayout)
	assert.Equal(t, int64(10000), res.Margin)
}

func TestSettleCancelledEmptyCrew(t *testing.T) {
	client := individualClient(10000)
	rate := rateFor(client, 80000, 2)

	res, err := Settle(Input{
		Client:     client,
		Rate:       rate,
		Status:     model.StatusCancelled,
		StatusRate: decimal.Zero,
	})
	require.NoError(t, err)

	assert.Zero(t, res.PreTaxBillable)
	assert.Zero(t, res.VAT)
	assert.Zero(t, res.BilledAmount)
	assert.Zero(t, res.TotalPayout)
	assert.Zero(t, res.Margin)
	assert.Empty(t, res.PerWorker)
}

func TestSettleTotalModePreservesContractedTotal(t *testing.T) {
	client := totalClient(50000)
	rate := rateFor(client, 500000, 3)
	workers := crew(3)

	res, err := Settle(Input{
		Client:    client,
		Rate:      rate,
		Status:    model.StatusNormal,
		WorkerIDs: workers,
	})
	require.NoError(t, err)

	// Per-head figures floor, the invoice does not.
	assert.Equal(t, int64(150000), res.Unit.WorkerPay)
	assert.Equal(t, int64(166666), res.Unit.Billable)
	assert.Equal(t, int64(500000), res.PreTaxBillable)
	assert.Equal(t, int64(550000), res.BilledAmount)
	assert.Equal(t, int64(450000), res.TotalPayout)
	assert.Equal(t, int64(50000), res.Margin)
}

func TestResolveUnitPriceTotalModeFloorsNegativePool(t *testing.T) {
	// A whole-job fee above the contracted amount is a legal input; the
	// per-head share must round down, not toward zero.
	client := totalClient(150001)
	rate := rateFor(client, 100000, 2)

	unit := ResolveUnitPrice(client, rate)
	assert.Equal(t, int64(-25001), unit.WorkerPay)
	assert.Equal(t, int64(50000), unit.Billable)
}

func TestSettleTotalModeZeroHeadcount(t *testing.T) {
	client := totalClient(50000)
	rate := rateFor(client, 500000, 0)

	res, err := Settle(Input{
		Client: client,
		Rate:   rate,
		Status: model.StatusNormal,
	})
	require.NoError(t, err)
	assert.Zero(t, res.Unit.WorkerPay)
	assert.Zero(t, res.BilledAmount)
}

func TestSettleIndividualBillableIdentity(t *testing.T) {
	client := individualClient(7500)
	rate := rateFor(client, 63000, 4)

	res, err := Settle(Input{Client: client, Rate: rate, Status: model.StatusNormal, WorkerIDs: crew(4)})
	require.NoError(t, err)
	assert.Equal(t, res.Unit.WorkerPay+client.FeeAmount, res.Unit.Billable)
}

func TestSettlePayoutSumsAssignedAmounts(t *testing.T) {
	client := individualClient(10000)
	rate := rateFor(client, 80000, 3)
	workers := crew(3)

	res, err := Settle(Input{
		Client:    client,
		Rate:      rate,
		Status:    model.StatusNormal,
		WorkerIDs: workers,
		Payments:  map[uuid.UUID]int64{workers[1]: 95000},
	})
	require.NoError(t, err)

	var sum int64
	for _, amount := range res.PerWorker {
		sum += amount
	}
	assert.Equal(t, sum, res.TotalPayout)
	assert.Equal(t, int64(95000), res.PerWorker[workers[1]])
	assert.Equal(t, int64(80000), res.PerWorker[workers[0]])
	assert.Equal(t, int64(80000+95000+80000), res.TotalPayout)
}

func TestSettleManualOverride(t *testing.T) {
	client := individualClient(10000)
	rate := rateFor(client, 80000, 2)
	workers := crew(2)

	res, err := Settle(Input{
		Client:     client,
		Rate:       rate,
		Status:     model.StatusCancelled,
		StatusRate: decimal.Zero,
		Override:   &Override{BilledAmount: 110000, PerWorkerAmount: 30000},
		WorkerIDs:  workers,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(110000), res.BilledAmount)
	assert.Equal(t, int64(100000), res.PreTaxBillable)
	assert.Equal(t, int64(10000), res.VAT)
	assert.Equal(t, int64(60000), res.TotalPayout)
	assert.Equal(t, int64(40000), res.Margin)
}

func TestSettleManualOverrideRoundTrip(t *testing.T) {
	client := individualClient(10000)
	rate := rateFor(client, 80000, 2)

	// Backed-out supply price re-taxed must land within one unit of the
	// operator's figure.
	for _, billed := range []int64{110000, 123457, 99999, 1} {
		res, err := Settle(Input{
			Client:     client,
			Rate:       rate,
			Status:     model.StatusWaiting,
			StatusRate: decimal.RequireFromString("0.5"),
			Override:   &Override{BilledAmount: billed},
		})
		require.NoError(t, err)

		_, rebilled := addVAT(res.PreTaxBillable, false)
		assert.InDelta(t, billed, rebilled, 1)
	}
}

func TestSettleOverrideIgnoredForNormalStatus(t *testing.T) {
	client := individualClient(10000)
	rate := rateFor(client, 80000, 2)
	workers := crew(2)

	res, err := Settle(Input{
		Client:    client,
		Rate:      rate,
		Status:    model.StatusNormal,
		Override:  &Override{BilledAmount: 1, PerWorkerAmount: 1},
		WorkerIDs: workers,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(198000), res.BilledAmount)
	assert.Equal(t, int64(160000), res.TotalPayout)
}

func TestSettleTaxFree(t *testing.T) {
	client := individualClient(10000)
	rate := rateFor(client, 80000, 2)

	res, err := Settle(Input{
		Client:    client,
		Rate:      rate,
		Status:    model.StatusNormal,
		WorkerIDs: crew(2),
		TaxFree:   true,
	})
	require.NoError(t, err)
	assert.Zero(t, res.VAT)
	assert.Equal(t, res.PreTaxBillable, res.BilledAmount)
}

func TestSettleRejectsBadInput(t *testing.T) {
	client := individualClient(10000)
	rate := rateFor(client, 80000, 2)
	worker := uuid.New()

	cases := map[string]Input{
		"unknown status": {
			Client: client, Rate: rate, Status: "Pending",
		},
		"status rate above one": {
			Client: client, Rate: rate, Status: model.StatusWaiting,
			StatusRate: decimal.RequireFromString("1.5"),
		},
		"negative status rate": {
			Client: client, Rate: rate, Status: model.StatusCancelled,
			StatusRate: decimal.RequireFromString("-0.1"),
		},
		"foreign rate": {
			Client: client,
			Rate:   rateFor(individualClient(0), 80000, 2),
			Status: model.StatusNormal,
		},
		"duplicate worker": {
			Client: client, Rate: rate, Status: model.StatusNormal,
			WorkerIDs: []uuid.UUID{worker, worker},
		},
		"payment for unassigned worker": {
			Client: client, Rate: rate, Status: model.StatusNormal,
			WorkerIDs: crew(2),
			Payments:  map[uuid.UUID]int64{worker: 50000},
		},
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Settle(in)
			require.Error(t, err)
			var invalid *InvalidInputError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}
