package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agency/internal/model"
	"agency/internal/repository"

	"github.com/google/uuid"
)

// --- Team DTOs ---

type CreateTeamRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateTeamRequest struct {
	Name string `json:"name" binding:"required"`
}

type TeamResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// --- Interface ---

type TeamService interface {
	CreateTeam(ctx context.Context, req CreateTeamRequest) (TeamResponse, error)
	UpdateTeam(ctx context.Context, id string, req UpdateTeamRequest) (TeamResponse, error)
	DeleteTeam(ctx context.Context, id string) error
	GetTeams(ctx context.Context) ([]TeamResponse, error)
}

// --- Implementation ---

type teamService struct {
	teamRepo repository.TeamRepository
}

func NewTeamService(teamRepo repository.TeamRepository) TeamService {
	return &teamService{teamRepo: teamRepo}
}

func toTeamResponse(t model.Team) TeamResponse {
	return TeamResponse{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, req CreateTeamRequest) (TeamResponse, error) {
	if req.Name == model.TeamAll {
		return TeamResponse{}, fmt.Errorf("%q is reserved for the all-teams filter", model.TeamAll)
	}
	if _, err := s.teamRepo.FindByName(ctx, req.Name); err == nil {
		return TeamResponse{}, errors.New("team name already exists")
	}

	team := &model.Team{Name: req.Name}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return TeamResponse{}, fmt.Errorf("failed to create team: %w", err)
	}
	return toTeamResponse(*team), nil
}

func (s *teamService) UpdateTeam(ctx context.Context, id string, req UpdateTeamRequest) (TeamResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return TeamResponse{}, errors.New("invalid team ID")
	}
	if req.Name == model.TeamAll {
		return TeamResponse{}, fmt.Errorf("%q is reserved for the all-teams filter", model.TeamAll)
	}

	team, err := s.teamRepo.FindByID(ctx, uid)
	if err != nil {
		return TeamResponse{}, errors.New("team not found")
	}

	if req.Name != team.Name {
		if _, err := s.teamRepo.FindByName(ctx, req.Name); err == nil {
			return TeamResponse{}, errors.New("team name already exists")
		}
		team.Name = req.Name
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		return TeamResponse{}, fmt.Errorf("failed to update team: %w", err)
	}
	return toTeamResponse(*team), nil
}

func (s *teamService) DeleteTeam(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return errors.New("invalid team ID")
	}
	return s.teamRepo.Delete(ctx, uid)
}

func (s *teamService) GetTeams(ctx context.Context) ([]TeamResponse, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}

	res := make([]TeamResponse, 0, len(teams))
	for _, t := range teams {
		res = append(res, toTeamResponse(t))
	}
	return res, nil
}
