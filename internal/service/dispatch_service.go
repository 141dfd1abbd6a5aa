package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agency/internal/model"
	"agency/internal/repository"
	"agency/internal/settlement"
	"agency/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- Work log DTOs ---

type ParticipationPayload struct {
	WorkerID string `json:"worker_id" binding:"required"`
	Payment  *int64 `json:"payment"` // explicit override; null = record default
}

type CreateWorkLogRequest struct {
	Date           string                 `json:"date" binding:"required"` // YYYY-MM-DD
	StartTime      string                 `json:"start_time"`
	ClientID       string                 `json:"client_id" binding:"required"`
	RateID         string                 `json:"rate_id" binding:"required"`
	Status         string                 `json:"status"`
	StatusRate     *float64               `json:"status_rate"` // required when status != Normal
	ManualBilled   *int64                 `json:"manual_billed_amount"`
	ManualPay      *int64                 `json:"manual_worker_pay"`
	IsTaxFree      *bool                  `json:"is_tax_free"` // default: client's flag
	Notes          string                 `json:"notes"`
	Participations []ParticipationPayload `json:"participations"`
}

type UpdateWorkLogRequest struct {
	Date           *string                 `json:"date"`
	StartTime      *string                 `json:"start_time"`
	RateID         *string                 `json:"rate_id"`
	Status         *string                 `json:"status"`
	StatusRate     *float64                `json:"status_rate"`
	ManualBilled   *int64                  `json:"manual_billed_amount"`
	ManualPay      *int64                  `json:"manual_worker_pay"`
	ClearManual    bool                    `json:"clear_manual"` // drop existing manual figures
	IsTaxFree      *bool                   `json:"is_tax_free"`
	Notes          *string                 `json:"notes"`
	Participations *[]ParticipationPayload `json:"participations"` // nil = keep crew as-is
}

type ParticipationResponse struct {
	WorkerID   uuid.UUID `json:"worker_id"`
	WorkerName string    `json:"worker_name,omitempty"`
	Payment    int64     `json:"payment"` // resolved amount owed to this worker
	Overridden bool      `json:"overridden"`
}

type WorkLogResponse struct {
	ID                    uuid.UUID               `json:"id"`
	Date                  string                  `json:"date"`
	StartTime             string                  `json:"start_time"`
	ClientID              uuid.UUID               `json:"client_id"`
	ClientName            string                  `json:"client_name,omitempty"`
	RateID                uuid.UUID               `json:"rate_id"`
	VolumeType            string                  `json:"volume_type"`
	Status                string                  `json:"status"`
	StatusRate            decimal.Decimal         `json:"status_rate"`
	ManualBilledAmount    *int64                  `json:"manual_billed_amount"`
	ManualWorkerPay       *int64                  `json:"manual_worker_pay"`
	UnitPrice             int64                   `json:"unit_price"`
	TotalPaymentToWorkers int64                   `json:"total_payment_to_workers"`
	PreTaxBillable        int64                   `json:"pre_tax_billable"`
	BillableAmount        int64                   `json:"billable_amount"`
	Margin                int64                   `json:"margin"`
	IsTaxFree             bool                    `json:"is_tax_free"`
	IsPaidByClient        bool                    `json:"is_paid_by_client"`
	IsPaidToWorkers       bool                    `json:"is_paid_to_workers"`
	Notes                 string                  `json:"notes"`
	TeamID                uuid.UUID               `json:"team_id"`
	Participations        []ParticipationResponse `json:"participations"`
	CreatedAt             time.Time               `json:"created_at"`
	UpdatedAt             time.Time               `json:"updated_at"`
}

// --- Interface ---

type DispatchService interface {
	CreateWorkLog(ctx context.Context, userID string, req CreateWorkLogRequest) (WorkLogResponse, error)
	UpdateWorkLog(ctx context.Context, userID string, id string, req UpdateWorkLogRequest) (WorkLogResponse, error)
	DeleteWorkLog(ctx context.Context, userID string, id string) error
	GetWorkLog(ctx context.Context, id string) (WorkLogResponse, error)
	GetWorkLogs(ctx context.Context, filter WorkLogQuery, page, limit int) ([]WorkLogResponse, int64, error)
}

// WorkLogQuery mirrors the list endpoint's query parameters.
type WorkLogQuery struct {
	Team     string
	ClientID string
	WorkerID string
	Status   string
	DateFrom string
	DateTo   string
}

// --- Implementation ---

type dispatchService struct {
	workLogRepo repository.WorkLogRepository
	clientRepo  repository.ClientRepository
	workerRepo  repository.WorkerRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *websocket.Hub
}

func NewDispatchService(
	workLogRepo repository.WorkLogRepository,
	clientRepo repository.ClientRepository,
	workerRepo repository.WorkerRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
) DispatchService {
	return &dispatchService{
		workLogRepo: workLogRepo,
		clientRepo:  clientRepo,
		workerRepo:  workerRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
	}
}

const dateLayout = "2006-01-02"

func validateDate(date string) error {
	d, err := time.Parse(dateLayout, date)
	if err != nil || d.Format(dateLayout) != date {
		return fmt.Errorf("date must be YYYY-MM-DD, got %q", date)
	}
	return nil
}

// statusChangeNeedsRate reports whether an update moving a record off
// Normal must carry an explicit status_rate. A record that was Normal has
// no meaningful stored rate; settling it with the zero default would
// silently bill nothing.
func statusChangeNeedsRate(current string, next *string, rate *float64) bool {
	return next != nil &&
		*next != model.StatusNormal &&
		current == model.StatusNormal &&
		rate == nil
}

// crewInput converts participation payloads into engine input. Workers must
// exist and belong to the client's team.
func (s *dispatchService) crewInput(ctx context.Context, teamID uuid.UUID, payloads []ParticipationPayload) ([]uuid.UUID, map[uuid.UUID]int64, error) {
	ids := make([]uuid.UUID, 0, len(payloads))
	payments := make(map[uuid.UUID]int64)
	for i, p := range payloads {
		id, err := uuid.Parse(p.WorkerID)
		if err != nil {
			return nil, nil, fmt.Errorf("participations[%d]: invalid worker ID", i)
		}
		ids = append(ids, id)
		if p.Payment != nil {
			if *p.Payment < 0 {
				return nil, nil, fmt.Errorf("participations[%d]: payment cannot be negative", i)
			}
			payments[id] = *p.Payment
		}
	}

	workers, err := s.workerRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch workers: %w", err)
	}
	if len(workers) != len(ids) {
		return nil, nil, errors.New("one or more workers not found")
	}
	for _, w := range workers {
		if w.TeamID != teamID {
			return nil, nil, fmt.Errorf("worker %s belongs to another team", w.ID)
		}
	}

	return ids, payments, nil
}

// settleRecord runs the engine and writes the result snapshots onto the record.
func settleRecord(log *model.WorkLog, client model.Client, rate model.Rate, workerIDs []uuid.UUID, payments map[uuid.UUID]int64) error {
	var override *settlement.Override
	if log.ManualBilledAmount != nil || log.ManualWorkerPay != nil {
		o := settlement.Override{}
		if log.ManualBilledAmount != nil {
			o.BilledAmount = *log.ManualBilledAmount
		}
		if log.ManualWorkerPay != nil {
			o.PerWorkerAmount = *log.ManualWorkerPay
		}
		override = &o
	}

	res, err := settlement.Settle(settlement.Input{
		Client:     client,
		Rate:       rate,
		Status:     log.Status,
		StatusRate: log.StatusRate,
		Override:   override,
		WorkerIDs:  workerIDs,
		Payments:   payments,
		TaxFree:    log.IsTaxFree,
	})
	if err != nil {
		return err
	}

	log.RateID = rate.ID
	log.VolumeType = rate.VolumeType
	log.UnitPrice = res.DefaultPerWorker
	log.TotalPaymentToWorkers = res.TotalPayout
	log.PreTaxBillable = res.PreTaxBillable
	log.BillableAmount = res.BilledAmount
	return nil
}

func toParticipationModels(workLogID uuid.UUID, payloads []ParticipationPayload) []model.WorkLogParticipation {
	out := make([]model.WorkLogParticipation, 0, len(payloads))
	for _, p := range payloads {
		id, _ := uuid.Parse(p.WorkerID) // validated by crewInput
		out = append(out, model.WorkLogParticipation{
			WorkLogID: workLogID,
			WorkerID:  id,
			Payment:   p.Payment,
		})
	}
	return out
}

func (s *dispatchService) CreateWorkLog(ctx context.Context, userID string, req CreateWorkLogRequest) (WorkLogResponse, error) {
	if err := validateDate(req.Date); err != nil {
		return WorkLogResponse{}, err
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return WorkLogResponse{}, errors.New("invalid client ID")
	}
	rateID, err := uuid.Parse(req.RateID)
	if err != nil {
		return WorkLogResponse{}, errors.New("invalid rate ID")
	}

	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WorkLogResponse{}, errors.New("client not found")
		}
		return WorkLogResponse{}, fmt.Errorf("database error: %w", err)
	}
	rate, err := s.clientRepo.FindRateByID(ctx, rateID)
	if err != nil {
		return WorkLogResponse{}, errors.New("rate not found")
	}

	status := req.Status
	if status == "" {
		status = model.StatusNormal
	}
	statusRate := decimal.Zero
	if status != model.StatusNormal {
		if req.StatusRate == nil {
			return WorkLogResponse{}, errors.New("status_rate is required for Waiting and Cancelled records")
		}
		statusRate = decimal.NewFromFloat(*req.StatusRate)
	}

	taxFree := client.IsTaxFree
	if req.IsTaxFree != nil {
		taxFree = *req.IsTaxFree
	}

	workerIDs, payments, err := s.crewInput(ctx, client.TeamID, req.Participations)
	if err != nil {
		return WorkLogResponse{}, err
	}

	log := &model.WorkLog{
		Date:               req.Date,
		StartTime:          req.StartTime,
		ClientID:           client.ID,
		Status:             status,
		StatusRate:         statusRate,
		ManualBilledAmount: req.ManualBilled,
		ManualWorkerPay:    req.ManualPay,
		IsTaxFree:          taxFree,
		Notes:              req.Notes,
		TeamID:             client.TeamID,
	}

	if err := settleRecord(log, *client, *rate, workerIDs, payments); err != nil {
		return WorkLogResponse{}, err
	}
	log.Participations = toParticipationModels(uuid.Nil, req.Participations)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.workLogRepo.Create(txCtx, log); err != nil {
			return fmt.Errorf("failed to create work log: %w", err)
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     auditActor(userID),
			Action:     model.ActionCreateWorkLog,
			EntityID:   log.ID.String(),
			EntityName: client.Name + " " + log.Date,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return WorkLogResponse{}, err
	}

	s.hub.Notify(websocket.Event{Type: "work_log.created", EntityID: log.ID.String()})

	log.Client = client
	return toWorkLogResponse(*log), nil
}

func (s *dispatchService) UpdateWorkLog(ctx context.Context, userID string, id string, req UpdateWorkLogRequest) (WorkLogResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return WorkLogResponse{}, errors.New("invalid work log ID")
	}

	log, err := s.workLogRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WorkLogResponse{}, errors.New("work log not found")
		}
		return WorkLogResponse{}, fmt.Errorf("database error: %w", err)
	}

	client, err := s.clientRepo.FindByID(ctx, log.ClientID)
	if err != nil {
		return WorkLogResponse{}, errors.New("client not found")
	}

	if req.Date != nil {
		if err := validateDate(*req.Date); err != nil {
			return WorkLogResponse{}, err
		}
		log.Date = *req.Date
	}
	if req.StartTime != nil {
		log.StartTime = *req.StartTime
	}
	if statusChangeNeedsRate(log.Status, req.Status, req.StatusRate) {
		return WorkLogResponse{}, errors.New("status_rate is required when changing status to Waiting or Cancelled")
	}
	if req.Status != nil {
		log.Status = *req.Status
	}
	if req.StatusRate != nil {
		log.StatusRate = decimal.NewFromFloat(*req.StatusRate)
	}
	if req.ClearManual {
		log.ManualBilledAmount = nil
		log.ManualWorkerPay = nil
	}
	if req.ManualBilled != nil {
		log.ManualBilledAmount = req.ManualBilled
	}
	if req.ManualPay != nil {
		log.ManualWorkerPay = req.ManualPay
	}
	if req.IsTaxFree != nil {
		log.IsTaxFree = *req.IsTaxFree
	}
	if req.Notes != nil {
		log.Notes = *req.Notes
	}

	rateID := log.RateID
	if req.RateID != nil {
		rateID, err = uuid.Parse(*req.RateID)
		if err != nil {
			return WorkLogResponse{}, errors.New("invalid rate ID")
		}
	}
	rate, err := s.clientRepo.FindRateByID(ctx, rateID)
	if err != nil {
		return WorkLogResponse{}, errors.New("rate not found")
	}

	// Resolve the crew: either the replacement payload or the stored one.
	var crew []ParticipationPayload
	if req.Participations != nil {
		crew = *req.Participations
	} else {
		for _, p := range log.Participations {
			crew = append(crew, ParticipationPayload{WorkerID: p.WorkerID.String(), Payment: p.Payment})
		}
	}

	workerIDs, payments, err := s.crewInput(ctx, log.TeamID, crew)
	if err != nil {
		return WorkLogResponse{}, err
	}

	// Re-run the engine; edits never reuse stale snapshots.
	if err := settleRecord(log, *client, *rate, workerIDs, payments); err != nil {
		return WorkLogResponse{}, err
	}

	newParticipations := toParticipationModels(uid, crew)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.workLogRepo.Update(txCtx, log); err != nil {
			return fmt.Errorf("failed to update work log: %w", err)
		}
		if err := s.workLogRepo.DeleteParticipationsByWorkLogID(txCtx, uid); err != nil {
			return fmt.Errorf("failed to delete old participations: %w", err)
		}
		if err := s.workLogRepo.CreateParticipations(txCtx, newParticipations); err != nil {
			return fmt.Errorf("failed to create participations: %w", err)
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     auditActor(userID),
			Action:     model.ActionUpdateWorkLog,
			EntityID:   uid.String(),
			EntityName: client.Name + " " + log.Date,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return WorkLogResponse{}, err
	}

	s.hub.Notify(websocket.Event{Type: "work_log.updated", EntityID: uid.String()})

	log.Participations = newParticipations
	log.Client = client
	return toWorkLogResponse(*log), nil
}

func (s *dispatchService) DeleteWorkLog(ctx context.Context, userID string, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return errors.New("invalid work log ID")
	}

	log, err := s.workLogRepo.FindByID(ctx, uid)
	if err != nil {
		return errors.New("work log not found")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.workLogRepo.Delete(txCtx, uid); err != nil {
			return fmt.Errorf("failed to delete work log: %w", err)
		}

		audit := &model.AuditLog{
			UserID:   auditActor(userID),
			Action:   model.ActionDeleteWorkLog,
			EntityID: uid.String(),
		}
		if log.Client != nil {
			audit.EntityName = log.Client.Name + " " + log.Date
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.Notify(websocket.Event{Type: "work_log.deleted", EntityID: uid.String()})
	return nil
}

func (s *dispatchService) GetWorkLog(ctx context.Context, id string) (WorkLogResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return WorkLogResponse{}, errors.New("invalid work log ID")
	}
	log, err := s.workLogRepo.FindByID(ctx, uid)
	if err != nil {
		return WorkLogResponse{}, errors.New("work log not found")
	}
	return toWorkLogResponse(*log), nil
}

func (s *dispatchService) GetWorkLogs(ctx context.Context, query WorkLogQuery, page, limit int) ([]WorkLogResponse, int64, error) {
	teamID, err := parseTeamFilter(query.Team)
	if err != nil {
		return nil, 0, err
	}

	filter := repository.WorkLogFilter{
		TeamID:   teamID,
		Status:   query.Status,
		DateFrom: query.DateFrom,
		DateTo:   query.DateTo,
	}
	if query.ClientID != "" {
		cid, err := uuid.Parse(query.ClientID)
		if err != nil {
			return nil, 0, errors.New("invalid client filter")
		}
		filter.ClientID = &cid
	}
	if query.WorkerID != "" {
		wid, err := uuid.Parse(query.WorkerID)
		if err != nil {
			return nil, 0, errors.New("invalid worker filter")
		}
		filter.WorkerID = &wid
	}

	logs, total, err := s.workLogRepo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch work logs: %w", err)
	}

	res := make([]WorkLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, toWorkLogResponse(l))
	}
	return res, total, nil
}

func toWorkLogResponse(l model.WorkLog) WorkLogResponse {
	participations := make([]ParticipationResponse, 0, len(l.Participations))
	for _, p := range l.Participations {
		pr := ParticipationResponse{
			WorkerID:   p.WorkerID,
			Payment:    l.PaymentFor(p),
			Overridden: p.Payment != nil,
		}
		if p.Worker != nil {
			pr.WorkerName = p.Worker.Name
		}
		participations = append(participations, pr)
	}

	resp := WorkLogResponse{
		ID:                    l.ID,
		Date:                  l.Date,
		StartTime:             l.StartTime,
		ClientID:              l.ClientID,
		RateID:                l.RateID,
		VolumeType:            l.VolumeType,
		Status:                l.Status,
		StatusRate:            l.StatusRate,
		ManualBilledAmount:    l.ManualBilledAmount,
		ManualWorkerPay:       l.ManualWorkerPay,
		UnitPrice:             l.UnitPrice,
		TotalPaymentToWorkers: l.TotalPaymentToWorkers,
		PreTaxBillable:        l.PreTaxBillable,
		BillableAmount:        l.BillableAmount,
		Margin:                l.PreTaxBillable - l.TotalPaymentToWorkers,
		IsTaxFree:             l.IsTaxFree,
		IsPaidByClient:        l.IsPaidByClient,
		IsPaidToWorkers:       l.IsPaidToWorkers,
		Notes:                 l.Notes,
		TeamID:                l.TeamID,
		Participations:        participations,
		CreatedAt:             l.CreatedAt,
		UpdatedAt:             l.UpdatedAt,
	}
	if l.Client != nil {
		resp.ClientName = l.Client.Name
	}
	return resp
}
