package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/communityhub/goldledger/internal/api/handler/v1/request"
	"github.com/communityhub/goldledger/internal/api/handler/v1/response"
	"github.com/communityhub/goldledger/internal/domain"
	"github.com/communityhub/goldledger/internal/service"
)

type LotService interface {
	AddUserToProgram(ctx context.Context, programID, userID uint) (domain.Lot, error)
	GetLot(ctx context.Context, lotID uint) (domain.Lot, error)
	ToggleLotStatus(ctx context.Context, lotID uint) (domain.Lot, error)
	GetCycleLots(ctx context.Context, cycleID uint, q domain.PageQuery) ([]domain.Lot, domain.Pagination, error)
}

type LotHandler struct {
	svc LotService
}

func NewLotHandler(svc LotService) *LotHandler {
	return &LotHandler{
		svc: svc,
	}
}

// HandleAddLot godoc
// @Summary      Add a member to a program
// @Description  Gives the member a lot in the program's active cycle.
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        request  body      request.AddLotRequest  true  "request body"
// @Success      201      {object}  response.Envelope{data=domain.Lot}
// @Failure      400      {object}  response.Err  "program inactive, no active cycle or lot already held"
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /lots [post]
// @Security     BearerAuth
func (h *LotHandler) HandleAddLot(ctx *gin.Context) {
	var req request.AddLotRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	lot, err := h.svc.AddUserToProgram(ctx.Request.Context(), req.ProgramID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProgramNotFound):
			response.RenderErr(ctx, response.ErrNotFound("program", "id", req.ProgramID))
		case errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrNotFound("user", "id", req.UserID))
		case isBadRequest(err):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("HandleAddLot -> h.svc.AddUserToProgram -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.Render(ctx, http.StatusCreated, "user added to program", lot)
}

// HandleGetLot godoc
// @Summary      Get a lot
// @Tags         lots
// @Produce      json
// @Param        lotId  path      int  true  "Lot ID"
// @Success      200    {object}  response.Envelope{data=domain.Lot}
// @Failure      400    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /lots/{lotId} [get]
// @Security     BearerAuth
func (h *LotHandler) HandleGetLot(ctx *gin.Context) {
	lotID, err := parseIDParam(ctx, "lotId")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	lot, err := h.svc.GetLot(ctx.Request.Context(), lotID)
	if err != nil {
		if errors.Is(err, service.ErrLotNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("lot", "id", lotID))
			return
		}

		err = fmt.Errorf("HandleGetLot -> h.svc.GetLot -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.Render(ctx, http.StatusOK, "lot retrieved", lot)
}

// HandleToggleLotStatus godoc
// @Summary      Toggle lot status
// @Tags         lots
// @Produce      json
// @Param        lotId  path      int  true  "Lot ID"
// @Success      200    {object}  response.Envelope{data=domain.Lot}
// @Failure      400    {object}  response.Err  "member already holds another active lot"
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /lots/{lotId}/status [patch]
// @Security     BearerAuth
func (h *LotHandler) HandleToggleLotStatus(ctx *gin.Context) {
	lotID, err := parseIDParam(ctx, "lotId")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	lot, err := h.svc.ToggleLotStatus(ctx.Request.Context(), lotID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLotNotFound):
			response.RenderErr(ctx, response.ErrNotFound("lot", "id", lotID))
		case isBadRequest(err):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("HandleToggleLotStatus -> h.svc.ToggleLotStatus -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	message := "lot deactivated"
	if lot.IsActive {
		message = "lot activated"
	}
	response.Render(ctx, http.StatusOK, message, lot)
}

// HandleGetCycleLots godoc
// @Summary      List the lots of a cycle
// @Description  Search matches the holder's name or member id, case-insensitively.
// @Tags         lots
// @Produce      json
// @Param        cycleId  path      int     true   "Cycle ID"
// @Param        page     query     int     false  "page, from 1"
// @Param        limit    query     int     false  "page size, at most 100"
// @Param        search   query     string  false  "name or member id"
// @Success      200      {object}  response.Envelope{data=response.Page{items=[]domain.Lot}}
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /cycles/{cycleId}/lots [get]
// @Security     BearerAuth
func (h *LotHandler) HandleGetCycleLots(ctx *gin.Context) {
	cycleID, err := parseIDParam(ctx, "cycleId")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	q, err := bindPageQuery(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	lots, pagination, err := h.svc.GetCycleLots(ctx.Request.Context(), cycleID, q)
	if err != nil {
		if errors.Is(err, service.ErrCycleNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("cycle", "id", cycleID))
			return
		}

		err = fmt.Errorf("HandleGetCycleLots -> h.svc.GetCycleLots -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.RenderPage(ctx, http.StatusOK, "lots retrieved", lots, pagination)
}
