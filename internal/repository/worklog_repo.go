package repository

import (
	"context"

	"agency/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkLogFilter narrows work log listings. Date bounds are inclusive
// YYYY-MM-DD strings; empty means unbounded on that side.
type WorkLogFilter struct {
	TeamID    *uuid.UUID
	ClientID  *uuid.UUID
	WorkerID  *uuid.UUID
	Status    string
	DateFrom  string
	DateTo    string
	UnpaidBy  string // "client" or "workers"
}

type WorkLogRepository interface {
	Create(ctx context.Context, log *model.WorkLog) error
	Update(ctx context.Context, log *model.WorkLog) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.WorkLog, error)
	List(ctx context.Context, filter WorkLogFilter, page, limit int) ([]model.WorkLog, int64, error)
	ListForSettlement(ctx context.Context, filter WorkLogFilter) ([]model.WorkLog, error)
	DeleteParticipationsByWorkLogID(ctx context.Context, workLogID uuid.UUID) error
	CreateParticipations(ctx context.Context, participations []model.WorkLogParticipation) error
	MarkPaidByClients(ctx context.Context, clientIDs []uuid.UUID) (int64, error)
	MarkPaidToWorkers(ctx context.Context, workerIDs []uuid.UUID) (int64, error)
}

type workLogRepository struct {
	db *gorm.DB
}

func NewWorkLogRepository(db *gorm.DB) WorkLogRepository {
	return &workLogRepository{db: db}
}

func (r *workLogRepository) Create(ctx context.Context, log *model.WorkLog) error {
	return GetDB(ctx, r.db).Create(log).Error
}

func (r *workLogRepository) Update(ctx context.Context, log *model.WorkLog) error {
	return GetDB(ctx, r.db).Omit("Participations").Save(log).Error
}

func (r *workLogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.WorkLog{}).Error
}

func (r *workLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.WorkLog, error) {
	var log model.WorkLog
	err := GetDB(ctx, r.db).
		Preload("Client").
		Preload("Participations").
		Preload("Participations.Worker").
		First(&log, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func applyWorkLogFilter(query *gorm.DB, filter WorkLogFilter) *gorm.DB {
	if filter.TeamID != nil {
		query = query.Where("team_id = ?", *filter.TeamID)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DateFrom != "" {
		query = query.Where("date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query = query.Where("date <= ?", filter.DateTo)
	}
	switch filter.UnpaidBy {
	case "client":
		query = query.Where("is_paid_by_client = ?", false)
	case "workers":
		query = query.Where("is_paid_to_workers = ?", false)
	}
	if filter.WorkerID != nil {
		query = query.Where(
			"id IN (?)",
			query.Session(&gorm.Session{NewDB: true}).
				Model(&model.WorkLogParticipation{}).
				Select("work_log_id").
				Where("worker_id = ?", *filter.WorkerID),
		)
	}
	return query
}

func (r *workLogRepository) List(ctx context.Context, filter WorkLogFilter, page, limit int) ([]model.WorkLog, int64, error) {
	var logs []model.WorkLog
	var total int64

	db := GetDB(ctx, r.db)
	if err := applyWorkLogFilter(db.Model(&model.WorkLog{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	query := applyWorkLogFilter(db.Model(&model.WorkLog{}), filter).
		Preload("Client").
		Preload("Participations").
		Preload("Participations.Worker")
	if err := query.Order("date DESC, created_at DESC").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// ListForSettlement returns every matching record with participations
// loaded, unpaginated, for the aggregation pass.
func (r *workLogRepository) ListForSettlement(ctx context.Context, filter WorkLogFilter) ([]model.WorkLog, error) {
	var logs []model.WorkLog
	query := applyWorkLogFilter(GetDB(ctx, r.db).Model(&model.WorkLog{}), filter).
		Preload("Participations")
	if err := query.Order("date ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *workLogRepository) DeleteParticipationsByWorkLogID(ctx context.Context, workLogID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("work_log_id = ?", workLogID).Delete(&model.WorkLogParticipation{}).Error
}

func (r *workLogRepository) CreateParticipations(ctx context.Context, participations []model.WorkLogParticipation) error {
	if len(participations) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&participations).Error
}

// MarkPaidByClients flips the client-paid flag on every unpaid record of
// the given clients. The transition is one-way; already-paid rows are left
// untouched, and partial collection of a single client is not expressible.
func (r *workLogRepository) MarkPaidByClients(ctx context.Context, clientIDs []uuid.UUID) (int64, error) {
	if len(clientIDs) == 0 {
		return 0, nil
	}
	res := GetDB(ctx, r.db).Model(&model.WorkLog{}).
		Where("client_id IN ? AND is_paid_by_client = ?", clientIDs, false).
		Update("is_paid_by_client", true)
	return res.RowsAffected, res.Error
}

// MarkPaidToWorkers flips the workers-paid flag on every unpaid record any
// of the given workers participated in.
func (r *workLogRepository) MarkPaidToWorkers(ctx context.Context, workerIDs []uuid.UUID) (int64, error) {
	if len(workerIDs) == 0 {
		return 0, nil
	}
	db := GetDB(ctx, r.db)
	res := db.Model(&model.WorkLog{}).
		Where(
			"id IN (?) AND is_paid_to_workers = ?",
			db.Session(&gorm.Session{NewDB: true}).
				Model(&model.WorkLogParticipation{}).
				Select("work_log_id").
				Where("worker_id IN ?", workerIDs),
			false,
		).
		Update("is_paid_to_workers", true)
	return res.RowsAffected, res.Error
}
