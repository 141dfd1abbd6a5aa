package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"agency/internal/model"
	"agency/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// parseTeamFilter converts the team query value into a repository filter:
// empty or the ALL sentinel means every team.
func parseTeamFilter(team string) (*uuid.UUID, error) {
	if team == "" || team == model.TeamAll {
		return nil, nil
	}
	uid, err := uuid.Parse(team)
	if err != nil {
		return nil, errors.New("invalid team filter: expected a team ID or ALL")
	}
	return &uid, nil
}

// --- Rate DTO ---

type RatePayload struct {
	VolumeType        string `json:"volume_type" binding:"required"`
	StandardHeadcount int    `json:"standard_headcount"`
	UnitAmount        int64  `json:"unit_amount"`
	Notes             string `json:"notes"`
}

type RateResponse struct {
	ID                uuid.UUID `json:"id"`
	ClientID          uuid.UUID `json:"client_id"`
	VolumeType        string    `json:"volume_type"`
	StandardHeadcount int       `json:"standard_headcount"`
	UnitAmount        int64     `json:"unit_amount"`
	Notes             string    `json:"notes"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// --- Client DTOs ---

type CreateClientRequest struct {
	Name                       string        `json:"name" binding:"required"`
	Address                    string        `json:"address"`
	Manager                    string        `json:"manager"`
	ContactInfo                string        `json:"contact_info"`
	FeeAmount                  int64         `json:"fee_amount"`
	PayMode                    string        `json:"pay_mode"`
	IsTaxFree                  bool          `json:"is_tax_free"`
	TaxInvoiceEmail            string        `json:"tax_invoice_email"`
	BusinessRegistrationNumber string        `json:"business_registration_number"`
	TeamID                     string        `json:"team_id" binding:"required"`
	Rates                      []RatePayload `json:"rates"`
}

type UpdateClientRequest struct {
	Name                       *string        `json:"name"`
	Address                    *string        `json:"address"`
	Manager                    *string        `json:"manager"`
	ContactInfo                *string        `json:"contact_info"`
	FeeAmount                  *int64         `json:"fee_amount"`
	PayMode                    *string        `json:"pay_mode"`
	IsTaxFree                  *bool          `json:"is_tax_free"`
	TaxInvoiceEmail            *string        `json:"tax_invoice_email"`
	BusinessRegistrationNumber *string        `json:"business_registration_number"`
	IsActive                   *bool          `json:"is_active"`
	Rates                      *[]RatePayload `json:"rates"` // pointer so nil = not sent, [] = clear all
}

// BulkRatePriceRequest adjusts unit amounts across many rates at once:
// either a flat delta or a percentage, applied per rate.
type BulkRatePriceRequest struct {
	RateIDs     []string `json:"rate_ids" binding:"required,min=1"`
	AmountDelta *int64   `json:"amount_delta"`
	Percent     *float64 `json:"percent"` // e.g. 5 raises unit amounts by 5%
}

type ClientResponse struct {
	ID                         uuid.UUID      `json:"id"`
	Name                       string         `json:"name"`
	Address                    string         `json:"address"`
	Manager                    string         `json:"manager"`
	ContactInfo                string         `json:"contact_info"`
	FeeAmount                  int64          `json:"fee_amount"`
	PayMode                    string         `json:"pay_mode"`
	IsTaxFree                  bool           `json:"is_tax_free"`
	TaxInvoiceEmail            string         `json:"tax_invoice_email"`
	BusinessRegistrationNumber string         `json:"business_registration_number"`
	IsActive                   bool           `json:"is_active"`
	TeamID                     uuid.UUID      `json:"team_id"`
	Rates                      []RateResponse `json:"rates"`
	CreatedAt                  time.Time      `json:"created_at"`
	UpdatedAt                  time.Time      `json:"updated_at"`
}

// --- Interface ---

type ClientService interface {
	CreateClient(ctx context.Context, userID string, req CreateClientRequest) (ClientResponse, error)
	UpdateClient(ctx context.Context, userID string, id string, req UpdateClientRequest) (ClientResponse, error)
	DeleteClient(ctx context.Context, userID string, id string) error
	GetClient(ctx context.Context, id string) (ClientResponse, error)
	GetClients(ctx context.Context, team, search string, activeOnly bool, page, limit int) ([]ClientResponse, int64, error)
	BulkAdjustRatePrices(ctx context.Context, userID string, req BulkRatePriceRequest) (int, error)
}

// --- Implementation ---

type clientService struct {
	clientRepo repository.ClientRepository
	teamRepo   repository.TeamRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
}

func NewClientService(
	clientRepo repository.ClientRepository,
	teamRepo repository.TeamRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ClientService {
	return &clientService{
		clientRepo: clientRepo,
		teamRepo:   teamRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
	}
}

// --- Validation helpers ---

var validPayModes = map[string]bool{
	model.PayModeIndividual: true,
	model.PayModeTotal:      true,
}

func validateRates(rates []RatePayload) error {
	for i, r := range rates {
		if r.VolumeType == "" {
			return fmt.Errorf("rates[%d]: volume_type is required", i)
		}
		if r.StandardHeadcount < 0 {
			return fmt.Errorf("rates[%d]: standard_headcount cannot be negative", i)
		}
		if r.UnitAmount < 0 {
			return fmt.Errorf("rates[%d]: unit_amount cannot be negative", i)
		}
	}
	return nil
}

func toRateModels(clientID uuid.UUID, payloads []RatePayload) []model.Rate {
	rates := make([]model.Rate, 0, len(payloads))
	for _, p := range payloads {
		rates = append(rates, model.Rate{
			ClientID:          clientID,
			VolumeType:        p.VolumeType,
			StandardHeadcount: p.StandardHeadcount,
			UnitAmount:        p.UnitAmount,
			Notes:             p.Notes,
		})
	}
	return rates
}

func auditActor(userID string) *uuid.UUID {
	if parsed, err := uuid.Parse(userID); err == nil {
		return &parsed
	}
	return nil
}

// --- CRUD ---

func (s *clientService) CreateClient(ctx context.Context, userID string, req CreateClientRequest) (ClientResponse, error) {
	teamID, err := uuid.Parse(req.TeamID)
	if err != nil {
		return ClientResponse{}, errors.New("invalid team ID")
	}
	if _, err := s.teamRepo.FindByID(ctx, teamID); err != nil {
		return ClientResponse{}, errors.New("team not found")
	}

	payMode := req.PayMode
	if payMode == "" {
		payMode = model.PayModeIndividual
	}
	if !validPayModes[payMode] {
		return ClientResponse{}, errors.New("pay_mode must be one of: INDIVIDUAL, TOTAL")
	}
	if req.FeeAmount < 0 {
		return ClientResponse{}, errors.New("fee_amount cannot be negative")
	}
	if req.TaxInvoiceEmail != "" {
		if _, err := mail.ParseAddress(req.TaxInvoiceEmail); err != nil {
			return ClientResponse{}, errors.New("invalid tax_invoice_email format")
		}
	}
	if err := validateRates(req.Rates); err != nil {
		return ClientResponse{}, err
	}

	client := &model.Client{
		Name:                       req.Name,
		Address:                    req.Address,
		Manager:                    req.Manager,
		ContactInfo:                req.ContactInfo,
		FeeAmount:                  req.FeeAmount,
		PayMode:                    payMode,
		IsTaxFree:                  req.IsTaxFree,
		TaxInvoiceEmail:            req.TaxInvoiceEmail,
		BusinessRegistrationNumber: req.BusinessRegistrationNumber,
		IsActive:                   true,
		TeamID:                     teamID,
		Rates:                      toRateModels(uuid.Nil, req.Rates), // GORM fills ClientID on cascade create
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.clientRepo.Create(txCtx, client); err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     auditActor(userID),
			Action:     model.ActionCreateClient,
			EntityID:   client.ID.String(),
			EntityName: client.Name,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return ClientResponse{}, err
	}

	return toClientResponse(*client), nil
}

func (s *clientService) UpdateClient(ctx context.Context, userID string, id string, req UpdateClientRequest) (ClientResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ClientResponse{}, errors.New("invalid client ID")
	}

	client, err := s.clientRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ClientResponse{}, errors.New("client not found")
		}
		return ClientResponse{}, fmt.Errorf("database error: %w", err)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return ClientResponse{}, errors.New("name cannot be empty")
		}
		client.Name = *req.Name
	}
	if req.PayMode != nil {
		if !validPayModes[*req.PayMode] {
			return ClientResponse{}, errors.New("pay_mode must be one of: INDIVIDUAL, TOTAL")
		}
		client.PayMode = *req.PayMode
	}
	if req.FeeAmount != nil {
		if *req.FeeAmount < 0 {
			return ClientResponse{}, errors.New("fee_amount cannot be negative")
		}
		client.FeeAmount = *req.FeeAmount
	}
	if req.TaxInvoiceEmail != nil && *req.TaxInvoiceEmail != "" {
		if _, err := mail.ParseAddress(*req.TaxInvoiceEmail); err != nil {
			return ClientResponse{}, errors.New("invalid tax_invoice_email format")
		}
		client.TaxInvoiceEmail = *req.TaxInvoiceEmail
	} else if req.TaxInvoiceEmail != nil {
		client.TaxInvoiceEmail = ""
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.Manager != nil {
		client.Manager = *req.Manager
	}
	if req.ContactInfo != nil {
		client.ContactInfo = *req.ContactInfo
	}
	if req.IsTaxFree != nil {
		client.IsTaxFree = *req.IsTaxFree
	}
	if req.BusinessRegistrationNumber != nil {
		client.BusinessRegistrationNumber = *req.BusinessRegistrationNumber
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	if req.Rates != nil {
		if err := validateRates(*req.Rates); err != nil {
			return ClientResponse{}, err
		}
	}

	// Run update + rate card replacement in a transaction
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.clientRepo.Update(txCtx, client); err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}

		action := model.ActionUpdateClient
		if req.Rates != nil {
			// Replace rate card (delete-all + re-create strategy). Existing
			// work logs keep their settlement snapshots either way.
			if err := s.clientRepo.DeleteRatesByClientID(txCtx, uid); err != nil {
				return fmt.Errorf("failed to delete old rates: %w", err)
			}
			newRates := toRateModels(uid, *req.Rates)
			if err := s.clientRepo.CreateRates(txCtx, newRates); err != nil {
				return fmt.Errorf("failed to create rates: %w", err)
			}
			client.Rates = newRates
			action = model.ActionUpdateRates
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     auditActor(userID),
			Action:     action,
			EntityID:   client.ID.String(),
			EntityName: client.Name,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return ClientResponse{}, err
	}

	return toClientResponse(*client), nil
}

func (s *clientService) DeleteClient(ctx context.Context, userID string, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return errors.New("invalid client ID")
	}

	client, err := s.clientRepo.FindByID(ctx, uid)
	if err != nil {
		return errors.New("client not found")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.clientRepo.Delete(txCtx, uid); err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}

		audit := &model.AuditLog{
			UserID:     auditActor(userID),
			Action:     model.ActionDeleteClient,
			EntityID:   uid.String(),
			EntityName: client.Name,
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
}

func (s *clientService) GetClient(ctx context.Context, id string) (ClientResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ClientResponse{}, errors.New("invalid client ID")
	}
	client, err := s.clientRepo.FindByID(ctx, uid)
	if err != nil {
		return ClientResponse{}, errors.New("client not found")
	}
	return toClientResponse(*client), nil
}

func (s *clientService) GetClients(ctx context.Context, team, search string, activeOnly bool, page, limit int) ([]ClientResponse, int64, error) {
	teamID, err := parseTeamFilter(team)
	if err != nil {
		return nil, 0, err
	}

	clients, total, err := s.clientRepo.List(ctx, repository.ClientFilter{
		TeamID:     teamID,
		Search:     search,
		ActiveOnly: activeOnly,
	}, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch clients: %w", err)
	}

	res := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		res = append(res, toClientResponse(c))
	}
	return res, total, nil
}

// BulkAdjustRatePrices applies a flat delta or a percentage to the unit
// amounts of the given rates. Adjustments only change future settlements;
// existing work logs keep their snapshots.
func (s *clientService) BulkAdjustRatePrices(ctx context.Context, userID string, req BulkRatePriceRequest) (int, error) {
	if (req.AmountDelta == nil) == (req.Percent == nil) {
		return 0, errors.New("exactly one of amount_delta or percent is required")
	}

	ids := make([]uuid.UUID, 0, len(req.RateIDs))
	for _, raw := range req.RateIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid rate ID %q", raw)
		}
		ids = append(ids, id)
	}

	rates, err := s.clientRepo.FindRatesByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch rates: %w", err)
	}
	if len(rates) != len(ids) {
		return 0, errors.New("one or more rates not found")
	}

	adjusted := 0
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for i := range rates {
			rate := &rates[i]
			next := rate.UnitAmount
			if req.AmountDelta != nil {
				next += *req.AmountDelta
			} else {
				next += int64(float64(next) * *req.Percent / 100)
			}
			if next < 0 {
				return fmt.Errorf("adjustment drives rate %s below zero", rate.ID)
			}
			if next == rate.UnitAmount {
				continue
			}
			rate.UnitAmount = next
			if err := s.clientRepo.SaveRate(txCtx, rate); err != nil {
				return fmt.Errorf("failed to update rate %s: %w", rate.ID, err)
			}
			adjusted++
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:  auditActor(userID),
			Action:  model.ActionUpdateRates,
			Details: string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return adjusted, nil
}

// --- Response mappers ---

func toRateResponse(r model.Rate) RateResponse {
	return RateResponse{
		ID:                r.ID,
		ClientID:          r.ClientID,
		VolumeType:        r.VolumeType,
		StandardHeadcount: r.StandardHeadcount,
		UnitAmount:        r.UnitAmount,
		Notes:             r.Notes,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func toClientResponse(c model.Client) ClientResponse {
	rates := make([]RateResponse, 0, len(c.Rates))
	for _, r := range c.Rates {
		rates = append(rates, toRateResponse(r))
	}

	return ClientResponse{
		ID:                         c.ID,
		Name:                       c.Name,
		Address:                    c.Address,
		Manager:                    c.Manager,
		ContactInfo:                c.ContactInfo,
		FeeAmount:                  c.FeeAmount,
		PayMode:                    c.PayMode,
		IsTaxFree:                  c.IsTaxFree,
		TaxInvoiceEmail:            c.TaxInvoiceEmail,
		BusinessRegistrationNumber: c.BusinessRegistrationNumber,
		IsActive:                   c.IsActive,
		TeamID:                     c.TeamID,
		Rates:                      rates,
		CreatedAt:                  c.CreatedAt,
		UpdatedAt:                  c.UpdatedAt,
	}
}
