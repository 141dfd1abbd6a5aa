package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agency/internal/model"
	"agency/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- Worker DTOs ---

type CreateWorkerRequest struct {
	Name                       string `json:"name" binding:"required"`
	Phone                      string `json:"phone" binding:"required"`
	Address                    string `json:"address"`
	BankName                   string `json:"bank_name"`
	BankAccount                string `json:"bank_account"`
	SkillLevel                 string `json:"skill_level"`
	ContractType               string `json:"contract_type"`
	BusinessRegistrationNumber string `json:"business_registration_number"`
	Notes                      string `json:"notes"`
	TeamID                     string `json:"team_id" binding:"required"`
}

type UpdateWorkerRequest struct {
	Name                       *string `json:"name"`
	Phone                      *string `json:"phone"`
	Address                    *string `json:"address"`
	BankName                   *string `json:"bank_name"`
	BankAccount                *string `json:"bank_account"`
	SkillLevel                 *string `json:"skill_level"`
	ContractType               *string `json:"contract_type"`
	BusinessRegistrationNumber *string `json:"business_registration_number"`
	Status                     *string `json:"status"`
	Notes                      *string `json:"notes"`
}

type WorkerResponse struct {
	ID                         uuid.UUID `json:"id"`
	Name                       string    `json:"name"`
	Phone                      string    `json:"phone"`
	Address                    string    `json:"address"`
	BankName                   string    `json:"bank_name"`
	BankAccount                string    `json:"bank_account"`
	SkillLevel                 string    `json:"skill_level"`
	ContractType               string    `json:"contract_type"`
	BusinessRegistrationNumber string    `json:"business_registration_number"`
	IsBusinessRegistered       bool      `json:"is_business_registered"`
	Status                     string    `json:"status"`
	Notes                      string    `json:"notes"`
	TeamID                     uuid.UUID `json:"team_id"`
	CreatedAt                  time.Time `json:"created_at"`
	UpdatedAt                  time.Time `json:"updated_at"`
}

// --- Interface ---

type WorkerService interface {
	CreateWorker(ctx context.Context, userID string, req CreateWorkerRequest) (WorkerResponse, error)
	UpdateWorker(ctx context.Context, userID string, id string, req UpdateWorkerRequest) (WorkerResponse, error)
	DeleteWorker(ctx context.Context, userID string, id string) error
	GetWorker(ctx context.Context, id string) (WorkerResponse, error)
	GetWorkers(ctx context.Context, team, search, status, skillLevel string, page, limit int) ([]WorkerResponse, int64, error)
}

// --- Implementation ---

type workerService struct {
	workerRepo repository.WorkerRepository
	teamRepo   repository.TeamRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
}

func NewWorkerService(
	workerRepo repository.WorkerRepository,
	teamRepo repository.TeamRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) WorkerService {
	return &workerService{
		workerRepo: workerRepo,
		teamRepo:   teamRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
	}
}

var validSkillLevels = map[string]bool{
	model.SkillNovice:       true,
	model.SkillIntermediate: true,
	model.SkillExpert:       true,
	model.SkillSpecialist:   true,
}

var validWorkerStatuses = map[string]bool{
	model.WorkerActive:   true,
	model.WorkerInactive: true,
}

func (s *workerService) CreateWorker(ctx context.Context, userID string, req CreateWorkerRequest) (WorkerResponse, error) {
	teamID, err := uuid.Parse(req.TeamID)
	if err != nil {
		return WorkerResponse{}, errors.New("invalid team ID")
	}
	if _, err := s.teamRepo.FindByID(ctx, teamID); err != nil {
		return WorkerResponse{}, errors.New("team not found")
	}

	skill := req.SkillLevel
	if skill == "" {
		skill = model.SkillNovice
	}
	if !validSkillLevels[skill] {
		return WorkerResponse{}, errors.New("skill_level must be one of: Novice, Intermediate, Expert, Specialist")
	}

	worker := &model.Worker{
		Name:                       req.Name,
		Phone:                      req.Phone,
		Address:                    req.Address,
		BankName:                   req.BankName,
		BankAccount:                req.BankAccount,
		SkillLevel:                 skill,
		ContractType:               req.ContractType,
		BusinessRegistrationNumber: req.BusinessRegistrationNumber,
		Status:                     model.WorkerActive,
		Notes:                      req.Notes,
		TeamID:                     teamID,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.workerRepo.Create(txCtx, worker); err != nil {
			return fmt.Errorf("failed to create worker: %w", err)
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     auditActor(userID),
			Action:     model.ActionCreateWorker,
			EntityID:   worker.ID.String(),
			EntityName: worker.Name,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return WorkerResponse{}, err
	}

	return toWorkerResponse(*worker), nil
}

func (s *workerService) UpdateWorker(ctx context.Context, userID string, id string, req UpdateWorkerRequest) (WorkerResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return WorkerResponse{}, errors.New("invalid worker ID")
	}

	worker, err := s.workerRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WorkerResponse{}, errors.New("worker not found")
		}
		return WorkerResponse{}, fmt.Errorf("database error: %w", err)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return WorkerResponse{}, errors.New("name cannot be empty")
		}
		worker.Name = *req.Name
	}
	if req.SkillLevel != nil {
		if !validSkillLevels[*req.SkillLevel] {
			return WorkerResponse{}, errors.New("skill_level must be one of: Novice, Intermediate, Expert, Specialist")
		}
		worker.SkillLevel = *req.SkillLevel
	}
	if req.Status != nil {
		if !validWorkerStatuses[*req.Status] {
			return WorkerResponse{}, errors.New("status must be Active or Inactive")
		}
		worker.Status = *req.Status
	}
	if req.Phone != nil {
		worker.Phone = *req.Phone
	}
	if req.Address != nil {
		worker.Address = *req.Address
	}
	if req.BankName != nil {
		worker.BankName = *req.BankName
	}
	if req.BankAccount != nil {
		worker.BankAccount = *req.BankAccount
	}
	if req.ContractType != nil {
		worker.ContractType = *req.ContractType
	}
	if req.BusinessRegistrationNumber != nil {
		// Changing this flips the 10% gross-up on every report going forward,
		// including past cycles re-read later.
		worker.BusinessRegistrationNumber = *req.BusinessRegistrationNumber
	}
	if req.Notes != nil {
		worker.Notes = *req.Notes
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.workerRepo.Update(txCtx, worker); err != nil {
			return fmt.Errorf("failed to update worker: %w", err)
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     auditActor(userID),
			Action:     model.ActionUpdateWorker,
			EntityID:   worker.ID.String(),
			EntityName: worker.Name,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return WorkerResponse{}, err
	}

	return toWorkerResponse(*worker), nil
}

func (s *workerService) DeleteWorker(ctx context.Context, userID string, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return errors.New("invalid worker ID")
	}

	worker, err := s.workerRepo.FindByID(ctx, uid)
	if err != nil {
		return errors.New("worker not found")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.workerRepo.Delete(txCtx, uid); err != nil {
			return fmt.Errorf("failed to delete worker: %w", err)
		}

		audit := &model.AuditLog{
			UserID:     auditActor(userID),
			Action:     model.ActionDeleteWorker,
			EntityID:   uid.String(),
			EntityName: worker.Name,
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
}

func (s *workerService) GetWorker(ctx context.Context, id string) (WorkerResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return WorkerResponse{}, errors.New("invalid worker ID")
	}
	worker, err := s.workerRepo.FindByID(ctx, uid)
	if err != nil {
		return WorkerResponse{}, errors.New("worker not found")
	}
	return toWorkerResponse(*worker), nil
}

func (s *workerService) GetWorkers(ctx context.Context, team, search, status, skillLevel string, page, limit int) ([]WorkerResponse, int64, error) {
	teamID, err := parseTeamFilter(team)
	if err != nil {
		return nil, 0, err
	}

	workers, total, err := s.workerRepo.List(ctx, repository.WorkerFilter{
		TeamID:     teamID,
		Search:     search,
		Status:     status,
		SkillLevel: skillLevel,
	}, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch workers: %w", err)
	}

	res := make([]WorkerResponse, 0, len(workers))
	for _, w := range workers {
		res = append(res, toWorkerResponse(w))
	}
	return res, total, nil
}

func toWorkerResponse(w model.Worker) WorkerResponse {
	return WorkerResponse{
		ID:                         w.ID,
		Name:                       w.Name,
		Phone:                      w.Phone,
		Address:                    w.Address,
		BankName:                   w.BankName,
		BankAccount:                w.BankAccount,
		SkillLevel:                 w.SkillLevel,
		ContractType:               w.ContractType,
		BusinessRegistrationNumber: w.BusinessRegistrationNumber,
		IsBusinessRegistered:       w.IsBusinessRegistered(),
		Status:                     w.Status,
		Notes:                      w.Notes,
		TeamID:                     w.TeamID,
		CreatedAt:                  w.CreatedAt,
		UpdatedAt:                  w.UpdatedAt,
	}
}
