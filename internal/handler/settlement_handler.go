package handler

import (
	"net/http"

	"agency/internal/middleware"
	"agency/internal/service"
	"agency/pkg/response"

	"github.com/gin-gonic/gin"
)

type SettlementHandler struct {
	settlementService service.SettlementService
}

func NewSettlementHandler(settlementService service.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

func (h *SettlementHandler) RegisterRoutes(router *gin.RouterGroup) {
	settlement := router.Group("/api/settlement")
	{
		settlement.GET("/report", middleware.RequireRole("admin", "manager", "staff"), h.GetReport)
		settlement.GET("/outstanding", middleware.RequireRole("admin", "manager", "staff"), h.GetOutstanding)
		settlement.POST("/mark-clients-paid", middleware.RequireRole("admin", "manager"), h.MarkClientsPaid)
		settlement.POST("/mark-workers-paid", middleware.RequireRole("admin", "manager"), h.MarkWorkersPaid)
	}
}

// GetReport returns the settlement report for one cycle window
// @Summary      Settlement report
// @Description  Aggregates dispatch records over a daily, weekly or monthly window into totals, per-client and per-worker rows
// @Tags         settlement
// @Security     BearerAuth
// @Produce      json
// @Param        team   query     string  false  "Team ID or ALL"
// @Param        cycle  query     string  true   "Daily, Weekly or Monthly"
// @Param        key    query     string  true   "YYYY-MM-DD, YYYY-Www or YYYY-MM matching the cycle"
// @Success      200    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Router       /api/settlement/report [get]
func (h *SettlementHandler) GetReport(c *gin.Context) {
	report, err := h.settlementService.GetReport(
		c.Request.Context(),
		c.Query("team"),
		c.Query("cycle"),
		c.Query("key"),
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// GetOutstanding returns unpaid client and worker balances across all records
// @Summary      Outstanding balances
// @Description  Receivables and payables over every record regardless of cycle
// @Tags         settlement
// @Security     BearerAuth
// @Produce      json
// @Param        team  query     string  false  "Team ID or ALL"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Router       /api/settlement/outstanding [get]
func (h *SettlementHandler) GetOutstanding(c *gin.Context) {
	out, err := h.settlementService.GetOutstanding(c.Request.Context(), c.Query("team"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, out))
}

// MarkClientsPaid collects every unpaid record of the given clients
// @Summary      Mark clients paid
// @Description  Whole-ledger collection: all unpaid records of each client flip at once; per-record partial payments are not supported
// @Tags         settlement
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.MarkClientsPaidRequest  true  "Client IDs"
// @Success      200  {object}  response.Response{data=service.MarkPaidResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/settlement/mark-clients-paid [post]
func (h *SettlementHandler) MarkClientsPaid(c *gin.Context) {
	var req service.MarkClientsPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	res, err := h.settlementService.MarkClientsPaid(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// MarkWorkersPaid pays out every unpaid record the given workers took part in
// @Summary      Mark workers paid
// @Tags         settlement
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.MarkWorkersPaidRequest  true  "Worker IDs"
// @Success      200  {object}  response.Response{data=service.MarkPaidResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/settlement/mark-workers-paid [post]
func (h *SettlementHandler) MarkWorkersPaid(c *gin.Context) {
	var req service.MarkWorkersPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	res, err := h.settlementService.MarkWorkersPaid(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
