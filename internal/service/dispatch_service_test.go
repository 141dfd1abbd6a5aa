package service

import (
	"testing"

	"agency/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDate(t *testing.T) {
	require.NoError(t, validateDate("2026-03-02"))

	for _, bad := range []string{"", "2026-3-2", "02/03/2026", "2026-03-32", "2026-03-02T00:00"} {
		assert.Error(t, validateDate(bad), "date %q", bad)
	}
}

func TestStatusChangeNeedsRate(t *testing.T) {
	waiting := model.StatusWaiting
	cancelled := model.StatusCancelled
	normal := model.StatusNormal
	half := 0.5

	// Leaving Normal without an explicit rate is the only rejected shape.
	assert.True(t, statusChangeNeedsRate(model.StatusNormal, &waiting, nil))
	assert.True(t, statusChangeNeedsRate(model.StatusNormal, &cancelled, nil))

	assert.False(t, statusChangeNeedsRate(model.StatusNormal, &waiting, &half))
	assert.False(t, statusChangeNeedsRate(model.StatusNormal, &normal, nil))
	assert.False(t, statusChangeNeedsRate(model.StatusNormal, nil, nil))
	// A record already off Normal keeps its stored rate unless replaced.
	assert.False(t, statusChangeNeedsRate(model.StatusWaiting, &cancelled, nil))
}

func TestSettleRecordWritesSnapshots(t *testing.T) {
	client := model.Client{
		ID:        uuid.New(),
		PayMode:   model.PayModeIndividual,
		FeeAmount: 10000,
	}
	rate := model.Rate{
		ID:                uuid.New(),
		ClientID:          client.ID,
		VolumeType:        "40ft",
		StandardHeadcount: 2,
		UnitAmount:        80000,
	}
	crew := []uuid.UUID{uuid.New(), uuid.New()}

	log := &model.WorkLog{Status: model.StatusNormal}
	require.NoError(t, settleRecord(log, client, rate, crew, nil))

	assert.Equal(t, rate.ID, log.RateID)
	assert.Equal(t, "40ft", log.VolumeType)
	assert.Equal(t, int64(80000), log.UnitPrice)
	assert.Equal(t, int64(160000), log.TotalPaymentToWorkers)
	assert.Equal(t, int64(180000), log.PreTaxBillable)
	assert.Equal(t, int64(198000), log.BillableAmount)
}

func TestSettleRecordManualOverrideOnCancelled(t *testing.T) {
	client := model.Client{ID: uuid.New(), PayMode: model.PayModeIndividual, FeeAmount: 10000}
	rate := model.Rate{ID: uuid.New(), ClientID: client.ID, StandardHeadcount: 2, UnitAmount: 80000}
	crew := []uuid.UUID{uuid.New(), uuid.New()}

	billed := int64(110000)
	perWorker := int64(30000)
	log := &model.WorkLog{
		Status:             model.StatusCancelled,
		StatusRate:         decimal.Zero,
		ManualBilledAmount: &billed,
		ManualWorkerPay:    &perWorker,
	}
	require.NoError(t, settleRecord(log, client, rate, crew, nil))

	assert.Equal(t, int64(110000), log.BillableAmount)
	assert.Equal(t, int64(100000), log.PreTaxBillable)
	assert.Equal(t, int64(60000), log.TotalPaymentToWorkers)
}

func TestSettleRecordRejectsForeignRate(t *testing.T) {
	client := model.Client{ID: uuid.New(), PayMode: model.PayModeIndividual}
	rate := model.Rate{ID: uuid.New(), ClientID: uuid.New(), StandardHeadcount: 1, UnitAmount: 50000}

	log := &model.WorkLog{Status: model.StatusNormal}
	assert.Error(t, settleRecord(log, client, rate, nil, nil))
}

func TestParseTeamFilter(t *testing.T) {
	got, err := parseTeamFilter("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseTeamFilter(model.TeamAll)
	require.NoError(t, err)
	assert.Nil(t, got)

	id := uuid.New()
	got, err = parseTeamFilter(id.String())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, *got)

	_, err = parseTeamFilter("not-a-uuid")
	assert.Error(t, err)
}
