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

type ProgramService interface {
	CreateProgram(ctx context.Context, program domain.Program) (domain.Program, error)
	ListPrograms(ctx context.Context, q domain.PageQuery) ([]domain.Program, domain.Pagination, error)
	ToggleProgramStatus(ctx context.Context, id uint) (domain.Program, error)
	GetProgramDetails(ctx context.Context, id uint) (domain.ProgramDetails, error)
	StartNewCycle(ctx context.Context, programID uint) (domain.Cycle, error)
	EndCurrentCycle(ctx context.Context, programID uint) (domain.CycleTransition, error)
	GetProgramCycles(ctx context.Context, programID uint, q domain.PageQuery) ([]domain.Cycle, domain.Pagination, error)
	GetCycleDetails(ctx context.Context, cycleID uint) (domain.CycleDetails, error)
}

type ProgramHandler struct {
	svc ProgramService
}

func NewProgramHandler(svc ProgramService) *ProgramHandler {
	return &ProgramHandler{
		svc: svc,
	}
}

// HandleCreateProgram godoc
// @Summary      Create a program
// @Description  Creates an active program without a cycle.
// @Tags         programs
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateProgramRequest  true  "request body"
// @Success      201      {object}  response.Envelope{data=domain.Program}
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /programs [post]
// @Security     BearerAuth
func (h *ProgramHandler) HandleCreateProgram(ctx *gin.Context) {
	var req request.CreateProgramRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	program, err := h.svc.CreateProgram(ctx.Request.Context(), domain.Program{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		err = fmt.Errorf("HandleCreateProgram -> h.svc.CreateProgram -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.Render(ctx, http.StatusCreated, "program created", program)
}

// HandleListPrograms godoc
// @Summary      List programs
// @Description  Search matches name or description, case-sensitively.
// @Tags         programs
// @Produce      json
// @Param        page    query     int     false  "page, from 1"
// @Param        limit   query     int     false  "page size, at most 100"
// @Param        search  query     string  false  "substring of name or description"
// @Success      200     {object}  response.Envelope{data=response.Page{items=[]domain.Program}}
// @Failure      400     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /programs [get]
// @Security     BearerAuth
func (h *ProgramHandler) HandleListPrograms(ctx *gin.Context) {
	q, err := bindPageQuery(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	programs, pagination, err := h.svc.ListPrograms(ctx.Request.Context(), q)
	if err != nil {
		err = fmt.Errorf("HandleListPrograms -> h.svc.ListPrograms -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.RenderPage(ctx, http.StatusOK, "programs retrieved", programs, pagination)
}

// HandleGetProgram godoc
// @Summary      Get program details
// @Description  The program with its 5 most recent cycles and its cycle count.
// @Tags         programs
// @Produce      json
// @Param        programId  path      int  true  "Program ID"
// @Success      200        {object}  response.Envelope{data=domain.ProgramDetails}
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /programs/{programId} [get]
// @Security     BearerAuth
func (h *ProgramHandler) HandleGetProgram(ctx *gin.Context) {
	programID, err := parseIDParam(ctx, "programId")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	details, err := h.svc.GetProgramDetails(ctx.Request.Context(), programID)
	if err != nil {
		if errors.Is(err, service.ErrProgramNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("program", "id", programID))
			return
		}

		err = fmt.Errorf("HandleGetProgram -> h.svc.GetProgramDetails -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.Render(ctx, http.StatusOK, "program retrieved", details)
}

// HandleToggleProgramStatus godoc
// @Summary      Toggle program status
// @Tags         programs
// @Produce      json
// @Param        programId  path      int  true  "Program ID"
// @Success      200        {object}  response.Envelope{data=domain.Program}
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /programs/{programId}/status [patch]
// @Security     BearerAuth
func (h *ProgramHandler) HandleToggleProgramStatus(ctx *gin.Context) {
	programID, err := parseIDParam(ctx, "programId")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	program, err := h.svc.ToggleProgramStatus(ctx.Request.Context(), programID)
	if err != nil {
		if errors.Is(err, service.ErrProgramNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("program", "id", programID))
			return
		}

		err = fmt.Errorf("HandleToggleProgramStatus -> h.svc.ToggleProgramStatus -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	message := "program deactivated"
	if program.IsActive {
		message = "program activated"
	}
	response.Render(ctx, http.StatusOK, message, program)
}
