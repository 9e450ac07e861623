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
	"github.com/communityhub/goldledger/internal/pkg/report"
	"github.com/communityhub/goldledger/internal/service"
)

type LedgerService interface {
	CreateMonthlyData(ctx context.Context, cycleID uint, month, year int) (domain.MonthlyData, error)
	GetCycleMonthlyData(ctx context.Context, cycleID uint, q domain.PageQuery) ([]domain.MonthlyData, domain.Pagination, error)
	GetMonthlyDataDetails(ctx context.Context, id uint) (domain.MonthlyDataDetails, error)
	RecordMonthlyPayments(ctx context.Context, monthlyDataID uint, updates []domain.PaymentUpdate) ([]domain.Payment, error)
	GetMonthlyPayments(ctx context.Context, monthlyDataID uint) ([]domain.Payment, error)
	GetPaymentRoster(ctx context.Context, monthlyDataID uint) (domain.PaymentRoster, error)
	AddWinners(ctx context.Context, monthlyDataID uint, lotIDs []uint) ([]domain.Winner, error)
	GetMonthlyWinners(ctx context.Context, monthlyDataID uint) ([]domain.Winner, error)
	RemoveWinner(ctx context.Context, winnerID uint) error
}

type LedgerHandler struct {
	svc LedgerService
}

func NewLedgerHandler(svc LedgerService) *LedgerHandler {
	return &LedgerHandler{
		svc: svc,
	}
}

// HandleCreateMonthlyData godoc
// @Summary      Open a monthly bucket
// @Description  Creates the (month, year) bucket of a cycle with an unpaid payment for every active lot.
// @Tags         monthly-data
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateMonthlyDataRequest  true  "request body"
// @Success      201      {object}  response.Envelope{data=domain.MonthlyData}
// @Failure      400      {object}  response.Err  "cycle inactive or bucket exists"
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /monthly-data [post]
// @Security     BearerAuth
func (h *LedgerHandler) HandleCreateMonthlyData(ctx *gin.Context) {
	var req request.CreateMonthlyDataRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	md, err := h.svc.CreateMonthlyData(ctx.Request.Context(), req.CycleID, req.Month, req.Year)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCycleNotFound):
			response.RenderErr(ctx, response.ErrNotFound("cycle", "id", req.CycleID))
		case isBadRequest(err):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("HandleCreateMonthlyData -> h.svc.CreateMonthlyData -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.Render(ctx, http.StatusCreated, "monthly data created", md)
}

// HandleGetCycleMonthlyData godoc
// @Summary      List the monthly buckets of a cycle
// @Description  Newest period first, each with its winner count.
// @Tags         monthly-data
// @Produce      json
// @Param        cycleId  path      int  true   "Cycle ID"
// @Param        page     query     int  false  "page, from 1"
// @Param        limit    query     int  false  "page size, at most 100"
// @Success      200      {object}  response.Envelope{data=response.Page{items=[]domain.MonthlyData}}
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /cycles/{cycleId}/monthly-data [get]
// @Security     BearerAuth
func (h *LedgerHandler) HandleGetCycleMonthlyData(ctx *gin.Context) {
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

	buckets, pagination, err := h.svc.GetCycleMonthlyData(ctx.Request.Context(), cycleID, q)
	if err != nil {
		if errors.Is(err, service.ErrCycleNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("cycle", "id", cycleID))
			return
		}

		err = fmt.Errorf("HandleGetCycleMonthlyData -> h.svc.GetCycleMonthlyData -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.RenderPage(ctx, http.StatusOK, "monthly data retrieved", buckets, pagination)
}

// HandleGetMonthlyData godoc
// @Summary      Get a monthly bucket
// @Description  The bucket with its winner count and paid/unpaid payment counts.
// @Tags         monthly-data
// @Produce      json
// @Param        monthlyDataId  path      int  true  "Monthly data ID"
// @Success      200            {object}  response.Envelope{data=domain.MonthlyDataDetails}
// @Failure      400            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /monthly-data/{monthlyDataId} [get]
// @Security     BearerAuth
func (h *LedgerHandler) HandleGetMonthlyData(ctx *gin.Context) {
	monthlyDataID, err := parseIDParam(ctx, "monthlyDataId")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	details, err := h.svc.GetMonthlyDataDetails(ctx.Request.Context(), monthlyDataID)
	if err != nil {
		if errors.Is(err, service.ErrMonthlyDataNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("monthly data", "id", monthlyDataID))
			return
		}

		err = fmt.Errorf("HandleGetMonthlyData -> h.svc.GetMonthlyDataDetails -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.Render(ctx, http.StatusOK, "monthly data retrieved", details)
}

// HandleRecordPayments godoc
// @Summary      Record payments
// @Description  Sets the paid flag of every listed lot for the bucket, all or nothing.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        monthlyDataId  path      int                            true  "Monthly data ID"
// @Param        request        body      request.RecordPaymentsRequest  true  "request body"
// @Success      200            {object}  response.Envelope{data=[]domain.Payment}
// @Failure      400            {object}  response.Err  "cycle inactive or lot outside the cycle"
// @Failure      404            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /monthly-data/{monthlyDataId}/payments [put]
// @Security     BearerAuth
func (h *LedgerHandler) HandleRecordPayments(ctx *gin.Context) {
	monthlyDataID, err := parseIDParam(ctx, "monthlyDataId")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.RecordPaymentsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	payments, err := h.svc.RecordMonthlyPayments(ctx.Request.Context(), monthlyDataID, req.ToDomain())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMonthlyDataNotFound):
			response.RenderErr(ctx, response.ErrNotFound("monthly data", "id", monthlyDataID))
		case isBadRequest(err):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("HandleRecordPayments -> h.svc.RecordMonthlyPayments -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.Render(ctx, http.StatusOK, "payments recorded", payments)
}

// HandleGetPayments godoc
// @Summary      List the payments of a monthly bucket
// @Tags         payments
// @Produce      json
// @Param        monthlyDataId  path      int  true  "Monthly data ID"
// @Success      200            {object}  response.Envelope{data=[]domain.Payment}
// @Failure      400            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /monthly-data/{monthlyDataId}/payments [get]
// @Security     BearerAuth
func (h *LedgerHandler) HandleGetPayments(ctx *gin.Context) {
	monthlyDataID, err := parseIDParam(ctx, "monthlyDataId")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	payments, err := h.svc.GetMonthlyPayments(ctx.Request.Context(), monthlyDataID)
	if err != nil {
		if errors.Is(err, service.ErrMonthlyDataNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("monthly data", "id", monthlyDataID))
			return
		}

		err = fmt.Errorf("HandleGetPayments -> h.svc.GetMonthlyPayments -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.Render(ctx, http.StatusOK, "payments retrieved", payments)
}

// HandleExportPayments godoc
// @Summary      Export the payment roster
// @Description  The bucket's payments as an xlsx workbook, winners flagged.
// @Tags         payments
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        monthlyDataId  path      int  true  "Monthly data ID"
// @Success      200            {file}    file
// @Failure      400            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /monthly-data/{monthlyDataId}/payments/export [get]
// @Security     BearerAuth
func (h *LedgerHandler) HandleExportPayments(ctx *gin.Context) {
	monthlyDataID, err := parseIDParam(ctx, "monthlyDataId")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	roster, err := h.svc.GetPaymentRoster(ctx.Request.Context(), monthlyDataID)
	if err != nil {
		if errors.Is(err, service.ErrMonthlyDataNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("monthly data", "id", monthlyDataID))
			return
		}

		err = fmt.Errorf("HandleExportPayments -> h.svc.GetPaymentRoster -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	f, err := report.PaymentRoster(roster)
	if err != nil {
		err = fmt.Errorf("HandleExportPayments -> report.PaymentRoster -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		err = fmt.Errorf("HandleExportPayments -> f.WriteToBuffer -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Header("Content-Disposition", "attachment; filename="+report.FileName(roster.MonthlyData))
	ctx.Data(http.StatusOK, report.ContentType, buf.Bytes())
}

// HandleAddWinners godoc
// @Summary      Record winners
// @Description  Every lot must be active in the bucket's cycle, paid for the bucket and not already a winner. Nothing is recorded otherwise.
// @Tags         winners
// @Accept       json
// @Produce      json
// @Param        request  body      request.AddWinnersRequest  true  "request body"
// @Success      201      {object}  response.Envelope{data=[]domain.Winner}
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /winners [post]
// @Security     BearerAuth
func (h *LedgerHandler) HandleAddWinners(ctx *gin.Context) {
	var req request.AddWinnersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	winners, err := h.svc.AddWinners(ctx.Request.Context(), req.MonthlyDataID, req.LotIDs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMonthlyDataNotFound):
			response.RenderErr(ctx, response.ErrNotFound("monthly data", "id", req.MonthlyDataID))
		case isBadRequest(err):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("HandleAddWinners -> h.svc.AddWinners -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.Render(ctx, http.StatusCreated, "winners recorded", winners)
}

// HandleGetWinners godoc
// @Summary      List the winners of a monthly bucket
// @Tags         winners
// @Produce      json
// @Param        monthlyDataId  path      int  true  "Monthly data ID"
// @Success      200            {object}  response.Envelope{data=[]domain.Winner}
// @Failure      400            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /monthly-data/{monthlyDataId}/winners [get]
// @Security     BearerAuth
func (h *LedgerHandler) HandleGetWinners(ctx *gin.Context) {
	monthlyDataID, err := parseIDParam(ctx, "monthlyDataId")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	winners, err := h.svc.GetMonthlyWinners(ctx.Request.Context(), monthlyDataID)
	if err != nil {
		if errors.Is(err, service.ErrMonthlyDataNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("monthly data", "id", monthlyDataID))
			return
		}

		err = fmt.Errorf("HandleGetWinners -> h.svc.GetMonthlyWinners -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.Render(ctx, http.StatusOK, "winners retrieved", winners)
}

// HandleRemoveWinner godoc
// @Summary      Remove a winner
// @Tags         winners
// @Produce      json
// @Param        winnerId  path      int  true  "Winner ID"
// @Success      200       {object}  response.Envelope
// @Failure      400       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /winners/{winnerId} [delete]
// @Security     BearerAuth
func (h *LedgerHandler) HandleRemoveWinner(ctx *gin.Context) {
	winnerID, err := parseIDParam(ctx, "winnerId")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := h.svc.RemoveWinner(ctx.Request.Context(), winnerID); err != nil {
		if errors.Is(err, service.ErrWinnerNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("winner", "id", winnerID))
			return
		}

		err = fmt.Errorf("HandleRemoveWinner -> h.svc.RemoveWinner -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.Render(ctx, http.StatusOK, "winner removed", nil)
}
