package api

import (
	"net/http"

	reqdto "stock-hold-service/internal/handler/dto/request"
	resdto "stock-hold-service/internal/handler/dto/response"
	"stock-hold-service/internal/handler/httperr"
	"stock-hold-service/internal/usecase/commands"
	"stock-hold-service/internal/usecase/queries"
	"stock-hold-service/internal/usecase/reclaim"

	"github.com/gin-gonic/gin"
)

type HoldHandler struct {
	cmds    commands.HoldCommands
	q       queries.HoldQueries
	sweeper reclaim.SweepRunner
}

func NewHoldHandler(cmds commands.HoldCommands, q queries.HoldQueries, sweeper reclaim.SweepRunner) *HoldHandler {
	return &HoldHandler{cmds: cmds, q: q, sweeper: sweeper}
}

// @Summary Create hold
// @Description Reserve stock for a limited time
// @Tags holds
// @Accept json
// @Produce json
// @Param request body reqdto.CreateHoldRequest true "Create hold request"
// @Success 201 {object} resdto.HoldCreatedResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /holds [post]
func (h *HoldHandler) Create(c *gin.Context) {
	var req reqdto.CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	result, err := h.cmds.CreateHold(c.Request.Context(), req.ToInput())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Header("Location", "/api/holds/"+result.HoldID.String())
	c.JSON(http.StatusCreated, resdto.FromCreateHoldResult(result))
}

// @Summary List holds
// @Tags holds
// @Produce json
// @Param cursor query string false "Cursor from a previous page"
// @Param limit query int false "Page size (1-200)"
// @Success 200 {object} resdto.ListResponse[resdto.HoldResponse]
// @Failure 400 {object} httperr.Response
// @Router /holds [get]
func (h *HoldHandler) List(c *gin.Context) {
	cursor, limit, ok := bindList(c)
	if !ok {
		return
	}
	views, next, err := h.q.List(c.Request.Context(), cursor, limit)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromList[queries.HoldView, resdto.HoldResponse](views, next)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Get hold
// @Tags holds
// @Produce json
// @Param id path string true "Hold ID"
// @Success 200 {object} resdto.HoldResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /holds/{id} [get]
func (h *HoldHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromHoldView(view)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Sweep expired holds
// @Description Release every expired, unused hold now and report the outcome
// @Tags holds
// @Produce json
// @Success 200 {object} reclaim.SweepResult
// @Failure 409 {object} httperr.Response
// @Router /holds/sweep [post]
func (h *HoldHandler) Sweep(c *gin.Context) {
	result, err := h.sweeper.Run(c.Request.Context())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
