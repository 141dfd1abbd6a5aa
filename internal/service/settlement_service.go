package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"agency/internal/model"
	"agency/internal/repository"
	"agency/internal/settlement"
	"agency/internal/websocket"

	"github.com/google/uuid"
)

// --- Settlement DTOs ---

// Payments settle whole ledgers, not single records: marking a client paid
// collects every unpaid record of that client at once.
type MarkClientsPaidRequest struct {
	ClientIDs []string `json:"client_ids" binding:"required,min=1"`
}

type MarkWorkersPaidRequest struct {
	WorkerIDs []string `json:"worker_ids" binding:"required,min=1"`
}

type MarkPaidResponse struct {
	Updated int64 `json:"updated"` // records flipped; already-paid rows are skipped
}

// --- Interface ---

type SettlementService interface {
	GetReport(ctx context.Context, team string, cycle, key string) (settlement.Report, error)
	GetOutstanding(ctx context.Context, team string) (settlement.Outstanding, error)
	MarkClientsPaid(ctx context.Context, userID string, req MarkClientsPaidRequest) (MarkPaidResponse, error)
	MarkWorkersPaid(ctx context.Context, userID string, req MarkWorkersPaidRequest) (MarkPaidResponse, error)
}

// --- Implementation ---

type settlementService struct {
	workLogRepo repository.WorkLogRepository
	clientRepo  repository.ClientRepository
	workerRepo  repository.WorkerRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *websocket.Hub
}

func NewSettlementService(
	workLogRepo repository.WorkLogRepository,
	clientRepo repository.ClientRepository,
	workerRepo repository.WorkerRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
) SettlementService {
	return &settlementService{
		workLogRepo: workLogRepo,
		clientRepo:  clientRepo,
		workerRepo:  workerRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
	}
}

// snapshot loads the record set and both rosters for an aggregation pass.
func (s *settlementService) snapshot(ctx context.Context, teamID *uuid.UUID, filter repository.WorkLogFilter) ([]model.WorkLog, []model.Client, []model.Worker, error) {
	filter.TeamID = teamID
	logs, err := s.workLogRepo.ListForSettlement(ctx, filter)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to fetch work logs: %w", err)
	}
	clients, err := s.clientRepo.ListAll(ctx, teamID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to fetch clients: %w", err)
	}
	workers, err := s.workerRepo.ListAll(ctx, teamID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to fetch workers: %w", err)
	}
	return logs, clients, workers, nil
}

func (s *settlementService) GetReport(ctx context.Context, team string, cycle, key string) (settlement.Report, error) {
	teamID, err := parseTeamFilter(team)
	if err != nil {
		return settlement.Report{}, err
	}

	spec := settlement.CycleSpec{Cycle: settlement.Cycle(cycle), Key: key}

	// Narrow the database scan to the cycle window up front; the engine
	// applies the same window again on the snapshot.
	var filter repository.WorkLogFilter
	if start, end, ok := specBounds(spec); ok {
		filter.DateFrom = start
		filter.DateTo = end
	}

	logs, clients, workers, err := s.snapshot(ctx, teamID, filter)
	if err != nil {
		return settlement.Report{}, err
	}

	return settlement.Aggregate(logs, clients, workers, spec)
}

// specBounds returns the date window for pre-filtering, when the spec is
// well-formed. Malformed specs fall through so Aggregate reports the error.
func specBounds(spec settlement.CycleSpec) (string, string, bool) {
	switch spec.Cycle {
	case settlement.CycleDaily:
		return spec.Key, spec.Key, true
	case settlement.CycleWeekly:
		start, end, err := settlement.WeekRange(spec.Key)
		if err != nil {
			return "", "", false
		}
		return start, end, true
	case settlement.CycleMonthly:
		if len(spec.Key) != 7 {
			return "", "", false
		}
		return spec.Key + "-01", spec.Key + "-31", true
	default:
		return "", "", false
	}
}

func (s *settlementService) GetOutstanding(ctx context.Context, team string) (settlement.Outstanding, error) {
	teamID, err := parseTeamFilter(team)
	if err != nil {
		return settlement.Outstanding{}, err
	}

	logs, clients, workers, err := s.snapshot(ctx, teamID, repository.WorkLogFilter{})
	if err != nil {
		return settlement.Outstanding{}, err
	}

	return settlement.ComputeOutstanding(logs, clients, workers), nil
}

func parsePartyIDs(raw []string, field string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q", field, r)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *settlementService) markPaid(
	ctx context.Context,
	userID string,
	req interface{},
	rawIDs []string,
	field string,
	action string,
	mark func(ctx context.Context, ids []uuid.UUID) (int64, error),
) (MarkPaidResponse, error) {
	ids, err := parsePartyIDs(rawIDs, field)
	if err != nil {
		return MarkPaidResponse{}, err
	}
	if len(ids) == 0 {
		return MarkPaidResponse{}, errors.New(field + "s is empty")
	}

	var updated int64
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		updated, err = mark(txCtx, ids)
		if err != nil {
			return fmt.Errorf("failed to mark records paid: %w", err)
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:  auditActor(userID),
			Action:  action,
			Details: string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return MarkPaidResponse{}, err
	}

	if updated > 0 {
		s.hub.Notify(websocket.Event{Type: "settlement.paid", Payload: map[string]interface{}{
			"action":  action,
			"updated": updated,
		}})
	}

	return MarkPaidResponse{Updated: updated}, nil
}

// MarkClientsPaid collects every unpaid record of the given clients.
// The flip is one-way: records already marked stay marked.
func (s *settlementService) MarkClientsPaid(ctx context.Context, userID string, req MarkClientsPaidRequest) (MarkPaidResponse, error) {
	return s.markPaid(ctx, userID, req, req.ClientIDs, "client ID", model.ActionMarkClientsPaid, s.workLogRepo.MarkPaidByClients)
}

// MarkWorkersPaid pays out every unpaid record the given workers took part in.
func (s *settlementService) MarkWorkersPaid(ctx context.Context, userID string, req MarkWorkersPaidRequest) (MarkPaidResponse, error) {
	return s.markPaid(ctx, userID, req, req.WorkerIDs, "worker ID", model.ActionMarkWorkersPaid, s.workLogRepo.MarkPaidToWorkers)
}
