package repository

import (
	"context"

	"agency/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientFilter narrows client listings. TeamID nil means all teams.
type ClientFilter struct {
	TeamID     *uuid.UUID
	Search     string
	ActiveOnly bool
}

type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	Update(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	List(ctx context.Context, filter ClientFilter, page, limit int) ([]model.Client, int64, error)
	ListAll(ctx context.Context, teamID *uuid.UUID) ([]model.Client, error)
	DeleteRatesByClientID(ctx context.Context, clientID uuid.UUID) error
	CreateRates(ctx context.Context, rates []model.Rate) error
	FindRateByID(ctx context.Context, id uuid.UUID) (*model.Rate, error)
	FindRatesByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Rate, error)
	SaveRate(ctx context.Context, rate *model.Rate) error
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	return GetDB(ctx, r.db).Create(client).Error
}

func (r *clientRepository) Update(ctx context.Context, client *model.Client) error {
	return GetDB(ctx, r.db).Omit("Rates").Save(client).Error
}

func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Client{}).Error
}

func (r *clientRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	if err := GetDB(ctx, r.db).Preload("Rates").First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func applyClientFilter(query *gorm.DB, filter ClientFilter) *gorm.DB {
	if filter.TeamID != nil {
		query = query.Where("team_id = ?", *filter.TeamID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR manager ILIKE ? OR contact_info ILIKE ?", like, like, like)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	return query
}

func (r *clientRepository) List(ctx context.Context, filter ClientFilter, page, limit int) ([]model.Client, int64, error) {
	var clients []model.Client
	var total int64

	db := GetDB(ctx, r.db)
	if err := applyClientFilter(db.Model(&model.Client{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	query := applyClientFilter(db.Model(&model.Client{}), filter).Preload("Rates")
	if err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&clients).Error; err != nil {
		return nil, 0, err
	}

	return clients, total, nil
}

// ListAll returns the whole roster for settlement aggregation, unpaginated.
func (r *clientRepository) ListAll(ctx context.Context, teamID *uuid.UUID) ([]model.Client, error) {
	var clients []model.Client
	query := GetDB(ctx, r.db).Model(&model.Client{})
	if teamID != nil {
		query = query.Where("team_id = ?", *teamID)
	}
	if err := query.Order("name ASC").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *clientRepository) DeleteRatesByClientID(ctx context.Context, clientID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("client_id = ?", clientID).Delete(&model.Rate{}).Error
}

func (r *clientRepository) CreateRates(ctx context.Context, rates []model.Rate) error {
	if len(rates) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&rates).Error
}

func (r *clientRepository) FindRateByID(ctx context.Context, id uuid.UUID) (*model.Rate, error) {
	var rate model.Rate
	if err := GetDB(ctx, r.db).First(&rate, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *clientRepository) FindRatesByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Rate, error) {
	var rates []model.Rate
	if len(ids) == 0 {
		return rates, nil
	}
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *clientRepository) SaveRate(ctx context.Context, rate *model.Rate) error {
	return GetDB(ctx, r.db).Save(rate).Error
}
