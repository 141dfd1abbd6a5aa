package settlement

import (
	"agency/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Totals are the headline figures for a settlement report.
type Totals struct {
	TotalBilled  int64 `json:"total_billed"`  // VAT inclusive
	TotalPayout  int64 `json:"total_payout"`  // grossed-up reportable earnings
	ApproxSupply int64 `json:"approx_supply"` // total billed with VAT backed out
	Margin       int64 `json:"margin"`        // approx supply minus payout
}

// ClientStat is one client's row in a settlement or receivables view.
type ClientStat struct {
	ClientID   uuid.UUID `json:"client_id"`
	Name       string    `json:"name"`
	TeamID     uuid.UUID `json:"team_id"`
	Jobs       int       `json:"jobs"`
	Billed     int64     `json:"billed"`
	Collected  int64     `json:"collected"`
	Receivable int64     `json:"receivable"`
}

// WorkerStat is one worker's row in a settlement or payables view.
type WorkerStat struct {
	WorkerID uuid.UUID `json:"worker_id"`
	Name     string    `json:"name"`
	TeamID   uuid.UUID `json:"team_id"`
	Jobs     int       `json:"jobs"`
	Earned   int64     `json:"earned"` // reportable earning, grossed up when registered
}

// Report is a full settlement view over one cycle window.
type Report struct {
	Spec      CycleSpec    `json:"spec"`
	Totals    Totals       `json:"totals"`
	PerClient []ClientStat `json:"per_client"`
	PerWorker []WorkerStat `json:"per_worker"`
}

// Outstanding lists unpaid balances across the whole record set,
// regardless of cycle.
type Outstanding struct {
	Receivables []ClientStat `json:"receivables"`
	Payables    []WorkerStat `json:"payables"`
}

// reportableShare is one participant's earning on one record: the explicit
// per-worker payment when present, else the record's default per-worker
// snapshot, grossed up by 10% for business-registered workers. The
// registration flag is read from the worker's current row on purpose, so
// correcting a registration retroactively fixes reports.
func reportableShare(l model.WorkLog, p model.WorkLogParticipation, registered map[uuid.UUID]bool) int64 {
	return GrossUpEarning(l.PaymentFor(p), registered[p.WorkerID])
}

func registrationIndex(workers []model.Worker) map[uuid.UUID]bool {
	idx := make(map[uuid.UUID]bool, len(workers))
	for i := range workers {
		idx[workers[i].ID] = workers[i].IsBusinessRegistered()
	}
	return idx
}

// Aggregate folds the filtered records into totals, per-client and
// per-worker rows. Every record contributes independently and rounding
// happens per record, so the fold is order-independent. Callers must treat
// the input slices as a stable snapshot for the duration of the pass.
func Aggregate(logs []model.WorkLog, clients []model.Client, workers []model.Worker, spec CycleSpec) (Report, error) {
	filtered, err := FilterLogs(logs, spec)
	if err != nil {
		return Report{}, err
	}

	registered := registrationIndex(workers)
	report := Report{Spec: spec}

	byClient := make(map[uuid.UUID]*ClientStat, len(clients))
	byWorker := make(map[uuid.UUID]*WorkerStat, len(workers))

	for _, l := range filtered {
		report.Totals.TotalBilled += l.BillableAmount

		cs := byClient[l.ClientID]
		if cs == nil {
			cs = &ClientStat{ClientID: l.ClientID}
			byClient[l.ClientID] = cs
		}
		cs.Jobs++
		cs.Billed += l.BillableAmount
		if l.IsPaidByClient {
			cs.Collected += l.BillableAmount
		}

		for _, p := range l.Participations {
			share := reportableShare(l, p, registered)
			report.Totals.TotalPayout += share

			ws := byWorker[p.WorkerID]
			if ws == nil {
				ws = &WorkerStat{WorkerID: p.WorkerID}
				byWorker[p.WorkerID] = ws
			}
			ws.Jobs++
			ws.Earned += share
		}
	}

	report.Totals.ApproxSupply = decimal.NewFromInt(report.Totals.TotalBilled).
		Div(vatInclusiveFactor).Round(0).IntPart()
	report.Totals.Margin = report.Totals.ApproxSupply - report.Totals.TotalPayout

	// Emit rows in roster order, skipping entities with no activity.
	for i := range clients {
		if cs := byClient[clients[i].ID]; cs != nil {
			cs.Name = clients[i].Name
			cs.TeamID = clients[i].TeamID
			cs.Receivable = cs.Billed - cs.Collected
			report.PerClient = append(report.PerClient, *cs)
		}
	}
	for i := range workers {
		if ws := byWorker[workers[i].ID]; ws != nil {
			ws.Name = workers[i].Name
			ws.TeamID = workers[i].TeamID
			report.PerWorker = append(report.PerWorker, *ws)
		}
	}

	return report, nil
}

// ComputeOutstanding scans every record, ignoring cycles, and reports
// clients still owing money and workers still owed money. Only positive
// balances appear.
func ComputeOutstanding(logs []model.WorkLog, clients []model.Client, workers []model.Worker) Outstanding {
	registered := registrationIndex(workers)

	owedBy := make(map[uuid.UUID]*ClientStat, len(clients))
	owedTo := make(map[uuid.UUID]*WorkerStat, len(workers))

	for _, l := range logs {
		if !l.IsPaidByClient {
			cs := owedBy[l.ClientID]
			if cs == nil {
				cs = &ClientStat{ClientID: l.ClientID}
				owedBy[l.ClientID] = cs
			}
			cs.Jobs++
			cs.Billed += l.BillableAmount
			cs.Receivable += l.BillableAmount
		}
		if !l.IsPaidToWorkers {
			for _, p := range l.Participations {
				ws := owedTo[p.WorkerID]
				if ws == nil {
					ws = &WorkerStat{WorkerID: p.WorkerID}
					owedTo[p.WorkerID] = ws
				}
				ws.Jobs++
				ws.Earned += reportableShare(l, p, registered)
			}
		}
	}

	var out Outstanding
	for i := range clients {
		if cs := owedBy[clients[i].ID]; cs != nil && cs.Receivable > 0 {
			cs.Name = clients[i].Name
			cs.TeamID = clients[i].TeamID
			out.Receivables = append(out.Receivables, *cs)
		}
	}
	for i := range workers {
		if ws := owedTo[workers[i].ID]; ws != nil && ws.Earned > 0 {
			ws.Name = workers[i].Name
			ws.TeamID = workers[i].TeamID
			out.Payables = append(out.Payables, *ws)
		}
	}
	return out
}
