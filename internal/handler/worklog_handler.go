package handler

import (
	"net/http"

	"agency/internal/middleware"
	"agency/internal/service"
	"agency/pkg/pagination"
	"agency/pkg/response"

	"github.com/gin-gonic/gin"
)

type WorkLogHandler struct {
	dispatchService service.DispatchService
}

func NewWorkLogHandler(dispatchService service.DispatchService) *WorkLogHandler {
	return &WorkLogHandler{dispatchService: dispatchService}
}

func (h *WorkLogHandler) RegisterRoutes(router *gin.RouterGroup) {
	logs := router.Group("/api/worklogs")
	{
		logs.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListWorkLogs)
		logs.GET("/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetWorkLog)
		logs.POST("", middleware.RequireRole("admin", "manager"), h.CreateWorkLog)
		logs.PUT("/:id", middleware.RequireRole("admin", "manager"), h.UpdateWorkLog)
		logs.DELETE("/:id", middleware.RequireRole("admin", "manager"), h.DeleteWorkLog)
	}
}

// ListWorkLogs returns paginated dispatch records with optional filters
// @Summary      List work logs
// @Tags         worklogs
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default: 1)"
// @Param        limit   query     int     false  "Items per page (default: 20)"
// @Param        team    query     string  false  "Team ID or ALL"
// @Param        client  query     string  false  "Filter by client ID"
// @Param        worker  query     string  false  "Filter by assigned worker ID"
// @Param        status  query     string  false  "Filter by status: Normal, Waiting, Cancelled"
// @Param        from    query     string  false  "Start date YYYY-MM-DD (inclusive)"
// @Param        to      query     string  false  "End date YYYY-MM-DD (inclusive)"
// @Success      200     {object}  response.Response{data=[]service.WorkLogResponse}
// @Router       /api/worklogs [get]
func (h *WorkLogHandler) ListWorkLogs(c *gin.Context) {
	p := pagination.Parse(c)

	logs, total, err := h.dispatchService.GetWorkLogs(c.Request.Context(), service.WorkLogQuery{
		Team:     c.Query("team"),
		ClientID: c.Query("client"),
		WorkerID: c.Query("worker"),
		Status:   c.Query("status"),
		DateFrom: c.Query("from"),
		DateTo:   c.Query("to"),
	}, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, logs, p.Page, p.Limit, total))
}

// GetWorkLog returns one dispatch record with its crew
// @Summary      Get work log
// @Tags         worklogs
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Work log ID"
// @Success      200  {object}  response.Response{data=service.WorkLogResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/worklogs/{id} [get]
func (h *WorkLogHandler) GetWorkLog(c *gin.Context) {
	log, err := h.dispatchService.GetWorkLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, log))
}

// CreateWorkLog creates a dispatch record and computes its settlement
// @Summary      Create work log
// @Description  Creates a dispatch record; billing and payout amounts are computed server-side from the client's rate card
// @Tags         worklogs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateWorkLogRequest  true  "Work log payload"
// @Success      201  {object}  response.Response{data=service.WorkLogResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/worklogs [post]
func (h *WorkLogHandler) CreateWorkLog(c *gin.Context) {
	var req service.CreateWorkLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	log, err := h.dispatchService.CreateWorkLog(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, log))
}

// UpdateWorkLog updates a dispatch record and recomputes its settlement
// @Summary      Update work log
// @Description  Edits re-run the settlement computation; stored amounts are never patched by hand
// @Tags         worklogs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                        true  "Work log ID"
// @Param        payload  body  service.UpdateWorkLogRequest  true  "Update payload"
// @Success      200  {object}  response.Response{data=service.WorkLogResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/worklogs/{id} [put]
func (h *WorkLogHandler) UpdateWorkLog(c *gin.Context) {
	id := c.Param("id")

	var req service.UpdateWorkLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	log, err := h.dispatchService.UpdateWorkLog(c.Request.Context(), userID, id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, log))
}

// DeleteWorkLog deletes a dispatch record
// @Summary      Delete work log
// @Tags         worklogs
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Work log ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/worklogs/{id} [delete]
func (h *WorkLogHandler) DeleteWorkLog(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.dispatchService.DeleteWorkLog(c.Request.Context(), userID, c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Work log deleted successfully"}))
}
