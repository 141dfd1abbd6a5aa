package handler

import (
	"net/http"

	"agency/internal/middleware"
	"agency/internal/service"
	"agency/pkg/pagination"
	"agency/pkg/response"

	"github.com/gin-gonic/gin"
)

type WorkerHandler struct {
	workerService service.WorkerService
}

func NewWorkerHandler(workerService service.WorkerService) *WorkerHandler {
	return &WorkerHandler{workerService: workerService}
}

func (h *WorkerHandler) RegisterRoutes(router *gin.RouterGroup) {
	workers := router.Group("/api/workers")
	{
		workers.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListWorkers)
		workers.GET("/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetWorker)
		workers.POST("", middleware.RequireRole("admin", "manager"), h.CreateWorker)
		workers.PUT("/:id", middleware.RequireRole("admin", "manager"), h.UpdateWorker)
		workers.DELETE("/:id", middleware.RequireRole("admin", "manager"), h.DeleteWorker)
	}
}

// ListWorkers returns paginated workers with optional filters
// @Summary      List workers
// @Tags         workers
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default: 1)"
// @Param        limit   query     int     false  "Items per page (default: 20)"
// @Param        team    query     string  false  "Team ID or ALL"
// @Param        search  query     string  false  "Search by name or phone"
// @Param        status  query     string  false  "Filter by status: Active, Inactive"
// @Param        skill   query     string  false  "Filter by skill level"
// @Success      200     {object}  response.Response{data=[]service.WorkerResponse}
// @Router       /api/workers [get]
func (h *WorkerHandler) ListWorkers(c *gin.Context) {
	p := pagination.Parse(c)

	workers, total, err := h.workerService.GetWorkers(
		c.Request.Context(),
		c.Query("team"),
		c.Query("search"),
		c.Query("status"),
		c.Query("skill"),
		p.Page, p.Limit,
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, workers, p.Page, p.Limit, total))
}

// GetWorker returns one worker
// @Summary      Get worker
// @Tags         workers
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Worker ID"
// @Success      200  {object}  response.Response{data=service.WorkerResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/workers/{id} [get]
func (h *WorkerHandler) GetWorker(c *gin.Context) {
	worker, err := h.workerService.GetWorker(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, worker))
}

// CreateWorker registers a new worker on the roster
// @Summary      Create worker
// @Tags         workers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateWorkerRequest  true  "Worker payload"
// @Success      201  {object}  response.Response{data=service.WorkerResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/workers [post]
func (h *WorkerHandler) CreateWorker(c *gin.Context) {
	var req service.CreateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	worker, err := h.workerService.CreateWorker(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, worker))
}

// UpdateWorker updates a worker's details
// @Summary      Update worker
// @Tags         workers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                       true  "Worker ID"
// @Param        payload  body  service.UpdateWorkerRequest  true  "Update payload"
// @Success      200  {object}  response.Response{data=service.WorkerResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/workers/{id} [put]
func (h *WorkerHandler) UpdateWorker(c *gin.Context) {
	id := c.Param("id")

	var req service.UpdateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	worker, err := h.workerService.UpdateWorker(c.Request.Context(), userID, id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, worker))
}

// DeleteWorker deletes a worker (soft delete)
// @Summary      Delete worker
// @Tags         workers
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Worker ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/workers/{id} [delete]
func (h *WorkerHandler) DeleteWorker(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.workerService.DeleteWorker(c.Request.Context(), userID, c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Worker deleted successfully"}))
}
