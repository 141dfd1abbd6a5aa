package handler

import (
	"net/http"

	"agency/internal/middleware"
	"agency/internal/service"
	"agency/pkg/response"

	"github.com/gin-gonic/gin"
)

type TeamHandler struct {
	teamService service.TeamService
}

func NewTeamHandler(teamService service.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

func (h *TeamHandler) RegisterRoutes(router *gin.RouterGroup) {
	teams := router.Group("/api/teams")
	{
		teams.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListTeams)
		teams.POST("", middleware.RequireRole("admin"), h.CreateTeam)
		teams.PUT("/:id", middleware.RequireRole("admin"), h.UpdateTeam)
		teams.DELETE("/:id", middleware.RequireRole("admin"), h.DeleteTeam)
	}
}

// ListTeams returns every team
// @Summary      List teams
// @Tags         teams
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.TeamResponse}
// @Router       /api/teams [get]
func (h *TeamHandler) ListTeams(c *gin.Context) {
	teams, err := h.teamService.GetTeams(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, teams))
}

// CreateTeam creates a new team
// @Summary      Create team
// @Tags         teams
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateTeamRequest  true  "Team payload"
// @Success      201  {object}  response.Response{data=service.TeamResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/teams [post]
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var req service.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	team, err := h.teamService.CreateTeam(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, team))
}

// UpdateTeam renames a team
// @Summary      Update team
// @Tags         teams
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                     true  "Team ID"
// @Param        payload  body  service.UpdateTeamRequest  true  "Update payload"
// @Success      200  {object}  response.Response{data=service.TeamResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/teams/{id} [put]
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	id := c.Param("id")

	var req service.UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	team, err := h.teamService.UpdateTeam(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, team))
}

// DeleteTeam deletes a team (soft delete)
// @Summary      Delete team
// @Tags         teams
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Team ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/teams/{id} [delete]
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	id := c.Param("id")

	if err := h.teamService.DeleteTeam(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Team deleted successfully"}))
}
