package settlement

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency/internal/model"
)

func i64(v int64) *int64 { return &v }

type fixture struct {
	clients []model.Client
	workers []model.Worker
	logs    []model.WorkLog
}

// March 2026 across two clients and three workers. One record is collected,
// one worker has a business registration and an explicit payment override.
func marchFixture() fixture {
	clientA := model.Client{ID: uuid.New(), Name: "Dawn Logistics", TeamID: uuid.New()}
	clientB := model.Client{ID: uuid.New(), Name: "Harbor Foods", TeamID: clientA.TeamID}
	kim := model.Worker{ID: uuid.New(), Name: "Kim"}
	lee := model.Worker{ID: uuid.New(), Name: "Lee", BusinessRegistrationNumber: "123-45-67890"}
	park := model.Worker{ID: uuid.New(), Name: "Park"}

	logs := []model.WorkLog{
		{
			ID:             uuid.New(),
			Date:           "2026-03-02",
			ClientID:       clientA.ID,
			UnitPrice:      80000,
			BillableAmount: 198000,
			IsPaidByClient: true,
			Participations: []model.WorkLogParticipation{
				{WorkerID: kim.ID},
				{WorkerID: lee.ID},
			},
		},
		{
			ID:             uuid.New(),
			Date:           "2026-03-03",
			ClientID:       clientA.ID,
			UnitPrice:      80000,
			BillableAmount: 99000,
			Participations: []model.WorkLogParticipation{
				{WorkerID: kim.ID, Payment: i64(95000)},
			},
		},
		{
			ID:             uuid.New(),
			Date:           "2026-03-10",
			ClientID:       clientB.ID,
			UnitPrice:      70000,
			BillableAmount: 154000,
			Participations: []model.WorkLogParticipation{
				{WorkerID: park.ID},
				{WorkerID: lee.ID},
			},
		},
		{
			// Outside the month, must not count.
			ID:             uuid.New(),
			Date:           "2026-04-01",
			ClientID:       clientB.ID,
			UnitPrice:      70000,
			BillableAmount: 77000,
			Participations: []model.WorkLogParticipation{{WorkerID: park.ID}},
		},
	}

	return fixture{
		clients: []model.Client{clientA, clientB},
		workers: []model.Worker{kim, lee, park},
		logs:    logs,
	}
}

func TestAggregateMonthly(t *testing.T) {
	f := marchFixture()

	report, err := Aggregate(f.logs, f.clients, f.workers, CycleSpec{Cycle: CycleMonthly, Key: "2026-03"})
	require.NoError(t, err)

	assert.Equal(t, int64(198000+99000+154000), report.Totals.TotalBilled)

	// Lee is business-registered: 80000 and 70000 gross up by 10%.
	wantPayout := int64(80000 + 88000 + 95000 + 70000 + 77000)
	assert.Equal(t, wantPayout, report.Totals.TotalPayout)

	assert.Equal(t, int64(410000), report.Totals.ApproxSupply) // 451000 / 1.1
	assert.Equal(t, int64(410000)-wantPayout, report.Totals.Margin)

	require.Len(t, report.PerClient, 2)
	a, b := report.PerClient[0], report.PerClient[1]
	assert.Equal(t, "Dawn Logistics", a.Name)
	assert.Equal(t, 2, a.Jobs)
	assert.Equal(t, int64(297000), a.Billed)
	assert.Equal(t, int64(198000), a.Collected)
	assert.Equal(t, int64(99000), a.Receivable)
	assert.Equal(t, "Harbor Foods", b.Name)
	assert.Equal(t, 1, b.Jobs)
	assert.Equal(t, int64(154000), b.Receivable)

	require.Len(t, report.PerWorker, 3)
	byName := map[string]WorkerStat{}
	for _, ws := range report.PerWorker {
		byName[ws.Name] = ws
	}
	assert.Equal(t, int64(80000+95000), byName["Kim"].Earned)
	assert.Equal(t, int64(88000+77000), byName["Lee"].Earned)
	assert.Equal(t, int64(70000), byName["Park"].Earned)
	assert.Equal(t, 2, byName["Lee"].Jobs)
}

func TestAggregateOrderIndependent(t *testing.T) {
	f := marchFixture()
	spec := CycleSpec{Cycle: CycleMonthly, Key: "2026-03"}

	want, err := Aggregate(f.logs, f.clients, f.workers, spec)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]model.WorkLog, len(f.logs))
		copy(shuffled, f.logs)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got, err := Aggregate(shuffled, f.clients, f.workers, spec)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestAggregateUsesCurrentRegistrationFlag(t *testing.T) {
	f := marchFixture()
	spec := CycleSpec{Cycle: CycleMonthly, Key: "2026-03"}

	before, err := Aggregate(f.logs, f.clients, f.workers, spec)
	require.NoError(t, err)

	// Clearing Lee's registration drops the gross-up on both of Lee's jobs.
	f.workers[1].BusinessRegistrationNumber = ""
	after, err := Aggregate(f.logs, f.clients, f.workers, spec)
	require.NoError(t, err)

	assert.Equal(t, before.Totals.TotalPayout-8000-7000, after.Totals.TotalPayout)
}

func TestAggregateEmptyWindow(t *testing.T) {
	f := marchFixture()

	report, err := Aggregate(f.logs, f.clients, f.workers, CycleSpec{Cycle: CycleDaily, Key: "2026-05-01"})
	require.NoError(t, err)
	assert.Zero(t, report.Totals.TotalBilled)
	assert.Zero(t, report.Totals.Margin)
	assert.Empty(t, report.PerClient)
	assert.Empty(t, report.PerWorker)
}

func TestComputeOutstanding(t *testing.T) {
	f := marchFixture()
	// Pay the workers on the second record; the client side stays open.
	f.logs[1].IsPaidToWorkers = true

	out := ComputeOutstanding(f.logs, f.clients, f.workers)

	// Record 0 is collected; records 1 through 3 are not, including the
	// April record: outstanding ignores cycles.
	require.Len(t, out.Receivables, 2)
	assert.Equal(t, "Dawn Logistics", out.Receivables[0].Name)
	assert.Equal(t, int64(99000), out.Receivables[0].Receivable)
	assert.Equal(t, "Harbor Foods", out.Receivables[1].Name)
	assert.Equal(t, int64(154000+77000), out.Receivables[1].Receivable)

	byName := map[string]WorkerStat{}
	for _, ws := range out.Payables {
		byName[ws.Name] = ws
	}
	assert.Equal(t, int64(80000), byName["Kim"].Earned) // record 1 settled
	assert.Equal(t, int64(88000+77000), byName["Lee"].Earned)
	assert.Equal(t, int64(70000+70000), byName["Park"].Earned)
}

func TestComputeOutstandingAllSettled(t *testing.T) {
	f := marchFixture()
	for i := range f.logs {
		f.logs[i].IsPaidByClient = true
		f.logs[i].IsPaidToWorkers = true
	}

	out := ComputeOutstanding(f.logs, f.clients, f.workers)
	assert.Empty(t, out.Receivables)
	assert.Empty(t, out.Payables)
}
