package service

import (
	"context"
	"testing"

	"agency/internal/model"
	"agency/internal/repository"
	"agency/internal/websocket"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubTxManager struct{}

func (stubTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type recordingAuditRepo struct {
	entries []model.AuditLog
}

func (r *recordingAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *recordingAuditRepo) List(ctx context.Context, filter repository.AuditFilter, page, limit int) ([]model.AuditLog, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// memWorkLogRepo keeps records in memory and mirrors the one-way paid-flag
// transitions of the persistence layer.
type memWorkLogRepo struct {
	logs []*model.WorkLog
}

func (m *memWorkLogRepo) Create(ctx context.Context, log *model.WorkLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func (m *memWorkLogRepo) Update(ctx context.Context, log *model.WorkLog) error { return nil }

func (m *memWorkLogRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (m *memWorkLogRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.WorkLog, error) {
	for _, l := range m.logs {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memWorkLogRepo) List(ctx context.Context, filter repository.WorkLogFilter, page, limit int) ([]model.WorkLog, int64, error) {
	out := make([]model.WorkLog, 0, len(m.logs))
	for _, l := range m.logs {
		out = append(out, *l)
	}
	return out, int64(len(out)), nil
}

func (m *memWorkLogRepo) ListForSettlement(ctx context.Context, filter repository.WorkLogFilter) ([]model.WorkLog, error) {
	out := make([]model.WorkLog, 0, len(m.logs))
	for _, l := range m.logs {
		out = append(out, *l)
	}
	return out, nil
}

func (m *memWorkLogRepo) DeleteParticipationsByWorkLogID(ctx context.Context, workLogID uuid.UUID) error {
	return nil
}

func (m *memWorkLogRepo) CreateParticipations(ctx context.Context, participations []model.WorkLogParticipation) error {
	return nil
}

func (m *memWorkLogRepo) MarkPaidByClients(ctx context.Context, clientIDs []uuid.UUID) (int64, error) {
	var updated int64
	for _, l := range m.logs {
		if !l.IsPaidByClient && containsID(clientIDs, l.ClientID) {
			l.IsPaidByClient = true
			updated++
		}
	}
	return updated, nil
}

func (m *memWorkLogRepo) MarkPaidToWorkers(ctx context.Context, workerIDs []uuid.UUID) (int64, error) {
	var updated int64
	for _, l := range m.logs {
		if l.IsPaidToWorkers {
			continue
		}
		for _, p := range l.Participations {
			if containsID(workerIDs, p.WorkerID) {
				l.IsPaidToWorkers = true
				updated++
				break
			}
		}
	}
	return updated, nil
}

func newMarkPaidFixture() (*memWorkLogRepo, *recordingAuditRepo, *settlementService) {
	hub := websocket.NewHub()
	go hub.Run()

	workLogRepo := &memWorkLogRepo{}
	auditRepo := &recordingAuditRepo{}
	svc := &settlementService{
		workLogRepo: workLogRepo,
		auditRepo:   auditRepo,
		txManager:   stubTxManager{},
		hub:         hub,
	}
	return workLogRepo, auditRepo, svc
}

func TestMarkClientsPaidCollectsWholeLedger(t *testing.T) {
	workLogRepo, auditRepo, svc := newMarkPaidFixture()

	clientA := uuid.New()
	clientB := uuid.New()
	workLogRepo.logs = []*model.WorkLog{
		{ID: uuid.New(), ClientID: clientA},
		{ID: uuid.New(), ClientID: clientA},
		{ID: uuid.New(), ClientID: clientA, IsPaidByClient: true},
		{ID: uuid.New(), ClientID: clientB},
	}

	res, err := svc.MarkClientsPaid(context.Background(), uuid.NewString(), MarkClientsPaidRequest{
		ClientIDs: []string{clientA.String()},
	})
	require.NoError(t, err)

	// Every unpaid record of the client flips in one pass; the record that
	// was already collected is not recounted.
	assert.Equal(t, int64(2), res.Updated)
	for _, l := range workLogRepo.logs[:3] {
		assert.True(t, l.IsPaidByClient)
	}
	assert.False(t, workLogRepo.logs[3].IsPaidByClient, "other client's ledger must stay open")

	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, model.ActionMarkClientsPaid, auditRepo.entries[0].Action)
}

func TestMarkWorkersPaidFlipsParticipatedRecords(t *testing.T) {
	workLogRepo, _, svc := newMarkPaidFixture()

	kim := uuid.New()
	lee := uuid.New()
	workLogRepo.logs = []*model.WorkLog{
		{ID: uuid.New(), Participations: []model.WorkLogParticipation{{WorkerID: kim}}},
		{ID: uuid.New(), Participations: []model.WorkLogParticipation{{WorkerID: kim}, {WorkerID: lee}}},
		{ID: uuid.New(), Participations: []model.WorkLogParticipation{{WorkerID: lee}}},
		{ID: uuid.New(), Participations: []model.WorkLogParticipation{{WorkerID: kim}}, IsPaidToWorkers: true},
	}

	res, err := svc.MarkWorkersPaid(context.Background(), uuid.NewString(), MarkWorkersPaidRequest{
		WorkerIDs: []string{kim.String()},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), res.Updated)
	assert.True(t, workLogRepo.logs[0].IsPaidToWorkers)
	assert.True(t, workLogRepo.logs[1].IsPaidToWorkers)
	assert.False(t, workLogRepo.logs[2].IsPaidToWorkers, "records without the worker must stay open")
	assert.True(t, workLogRepo.logs[3].IsPaidToWorkers)
}

func TestMarkClientsPaidUnknownClient(t *testing.T) {
	workLogRepo, auditRepo, svc := newMarkPaidFixture()
	workLogRepo.logs = []*model.WorkLog{{ID: uuid.New(), ClientID: uuid.New()}}

	res, err := svc.MarkClientsPaid(context.Background(), uuid.NewString(), MarkClientsPaidRequest{
		ClientIDs: []string{uuid.NewString()},
	})
	require.NoError(t, err)

	assert.Zero(t, res.Updated)
	assert.False(t, workLogRepo.logs[0].IsPaidByClient)
	assert.Len(t, auditRepo.entries, 1)
}

func TestMarkClientsPaidRejectsMalformedID(t *testing.T) {
	_, auditRepo, svc := newMarkPaidFixture()

	_, err := svc.MarkClientsPaid(context.Background(), uuid.NewString(), MarkClientsPaidRequest{
		ClientIDs: []string{"not-a-uuid"},
	})
	assert.Error(t, err)
	assert.Empty(t, auditRepo.entries)
}
