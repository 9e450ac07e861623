package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/communityhub/goldledger/internal/api/handler/v1/response"
	"github.com/communityhub/goldledger/internal/service"
)

// HandleStartCycle godoc
// @Summary      Start the first cycle of a program
// @Tags         cycles
// @Produce      json
// @Param        programId  path      int  true  "Program ID"
// @Success      201        {object}  response.Envelope{data=domain.Cycle}
// @Failure      400        {object}  response.Err  "program inactive or a cycle is already active"
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /programs/{programId}/start-cycle [post]
// @Security     BearerAuth
func (h *ProgramHandler) HandleStartCycle(ctx *gin.Context) {
	programID, err := parseIDParam(ctx, "programId")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	cycle, err := h.svc.StartNewCycle(ctx.Request.Context(), programID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProgramNotFound):
			response.RenderErr(ctx, response.ErrNotFound("program", "id", programID))
		case isBadRequest(err):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("HandleStartCycle -> h.svc.StartNewCycle -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.Render(ctx, http.StatusCreated, "cycle started", cycle)
}

// HandleEndCycle godoc
// @Summary      End the current cycle
// @Description  Closes the active cycle and opens its successor in one step.
// @Tags         cycles
// @Produce      json
// @Param        programId  path      int  true  "Program ID"
// @Success      200        {object}  response.Envelope{data=domain.CycleTransition}
// @Failure      400        {object}  response.Err  "no active cycle"
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /programs/{programId}/end-cycle [post]
// @Security     BearerAuth
func (h *ProgramHandler) HandleEndCycle(ctx *gin.Context) {
	programID, err := parseIDParam(ctx, "programId")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	transition, err := h.svc.EndCurrentCycle(ctx.Request.Context(), programID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProgramNotFound):
			response.RenderErr(ctx, response.ErrNotFound("program", "id", programID))
		case isBadRequest(err):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("HandleEndCycle -> h.svc.EndCurrentCycle -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.Render(ctx, http.StatusOK, "cycle ended", transition)
}

// HandleGetProgramCycles godoc
// @Summary      List the cycles of a program
// @Description  Newest first, each with the number of winners drawn in it.
// @Tags         cycles
// @Produce      json
// @Param        programId  path      int  true   "Program ID"
// @Param        page       query     int  false  "page, from 1"
// @Param        limit      query     int  false  "page size, at most 100"
// @Success      200        {object}  response.Envelope{data=response.Page{items=[]domain.Cycle}}
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /programs/{programId}/cycles [get]
// @Security     BearerAuth
func (h *ProgramHandler) HandleGetProgramCycles(ctx *gin.Context) {
	programID, err := parseIDParam(ctx, "programId")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	q, err := bindPageQuery(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	cycles, pagination, err := h.svc.GetProgramCycles(ctx.Request.Context(), programID, q)
	if err != nil {
		if errors.Is(err, service.ErrProgramNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("program", "id", programID))
			return
		}

		err = fmt.Errorf("HandleGetProgramCycles -> h.svc.GetProgramCycles -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.RenderPage(ctx, http.StatusOK, "cycles retrieved", cycles, pagination)
}

// HandleGetCycle godoc
// @Summary      Get cycle details
// @Tags         cycles
// @Produce      json
// @Param        cycleId  path      int  true  "Cycle ID"
// @Success      200      {object}  response.Envelope{data=domain.CycleDetails}
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /cycles/{cycleId} [get]
// @Security     BearerAuth
func (h *ProgramHandler) HandleGetCycle(ctx *gin.Context) {
	cycleID, err := parseIDParam(ctx, "cycleId")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	details, err := h.svc.GetCycleDetails(ctx.Request.Context(), cycleID)
	if err != nil {
		if errors.Is(err, service.ErrCycleNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("cycle", "id", cycleID))
			return
		}

		err = fmt.Errorf("HandleGetCycle -> h.svc.GetCycleDetails -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.Render(ctx, http.StatusOK, "cycle retrieved", details)
}
