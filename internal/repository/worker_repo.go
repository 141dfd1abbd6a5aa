package repository

import (
	"context"

	"agency/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkerFilter narrows worker listings. TeamID nil means all teams.
type WorkerFilter struct {
	TeamID     *uuid.UUID
	Search     string
	Status     string
	SkillLevel string
}

type WorkerRepository interface {
	Create(ctx context.Context, worker *model.Worker) error
	Update(ctx context.Context, worker *model.Worker) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Worker, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Worker, error)
	List(ctx context.Context, filter WorkerFilter, page, limit int) ([]model.Worker, int64, error)
	ListAll(ctx context.Context, teamID *uuid.UUID) ([]model.Worker, error)
}

type workerRepository struct {
	db *gorm.DB
}

func NewWorkerRepository(db *gorm.DB) WorkerRepository {
	return &workerRepository{db: db}
}

func (r *workerRepository) Create(ctx context.Context, worker *model.Worker) error {
	return GetDB(ctx, r.db).Create(worker).Error
}

func (r *workerRepository) Update(ctx context.Context, worker *model.Worker) error {
	return GetDB(ctx, r.db).Save(worker).Error
}

func (r *workerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Worker{}).Error
}

func (r *workerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Worker, error) {
	var worker model.Worker
	if err := GetDB(ctx, r.db).First(&worker, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &worker, nil
}

func (r *workerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Worker, error) {
	var workers []model.Worker
	if len(ids) == 0 {
		return workers, nil
	}
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&workers).Error; err != nil {
		return nil, err
	}
	return workers, nil
}

func applyWorkerFilter(query *gorm.DB, filter WorkerFilter) *gorm.DB {
	if filter.TeamID != nil {
		query = query.Where("team_id = ?", *filter.TeamID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR phone ILIKE ?", like, like)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SkillLevel != "" {
		query = query.Where("skill_level = ?", filter.SkillLevel)
	}
	return query
}

func (r *workerRepository) List(ctx context.Context, filter WorkerFilter, page, limit int) ([]model.Worker, int64, error) {
	var workers []model.Worker
	var total int64

	db := GetDB(ctx, r.db)
	if err := applyWorkerFilter(db.Model(&model.Worker{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	query := applyWorkerFilter(db.Model(&model.Worker{}), filter)
	if err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&workers).Error; err != nil {
		return nil, 0, err
	}

	return workers, total, nil
}

// ListAll returns the whole roster for settlement aggregation, unpaginated.
func (r *workerRepository) ListAll(ctx context.Context, teamID *uuid.UUID) ([]model.Worker, error) {
	var workers []model.Worker
	query := GetDB(ctx, r.db).Model(&model.Worker{})
	if teamID != nil {
		query = query.Where("team_id = ?", *teamID)
	}
	if err := query.Order("name ASC").Find(&workers).Error; err != nil {
		return nil, err
	}
	return workers, nil
}
