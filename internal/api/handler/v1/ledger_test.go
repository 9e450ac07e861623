package v1

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communityhub/goldledger/internal/domain"
	"github.com/communityhub/goldledger/internal/pkg/report"
	"github.com/communityhub/goldledger/internal/service"
)

type fakeLedgerService struct {
	paid       map[uint]bool
	winners    map[uint]bool
	recorded   []domain.PaymentUpdate
	removeErr  error
	monthlyErr error
	paymentErr error
}

func (f *fakeLedgerService) CreateMonthlyData(_ context.Context, cycleID uint, month, year int) (domain.MonthlyData, error) {
	if f.monthlyErr != nil {
		return domain.MonthlyData{}, f.monthlyErr
	}
	return domain.MonthlyData{ID: 1, CycleID: cycleID, Month: month, Year: year}, nil
}

func (f *fakeLedgerService) GetCycleMonthlyData(_ context.Context, cycleID uint, q domain.PageQuery) ([]domain.MonthlyData, domain.Pagination, error) {
	return []domain.MonthlyData{}, domain.NewPagination(q, 0), nil
}

func (f *fakeLedgerService) GetMonthlyDataDetails(_ context.Context, id uint) (domain.MonthlyDataDetails, error) {
	if id != 1 {
		return domain.MonthlyDataDetails{}, service.ErrMonthlyDataNotFound
	}
	return domain.MonthlyDataDetails{MonthlyData: domain.MonthlyData{ID: 1}, PaidCount: 1, UnpaidCount: 2}, nil
}

func (f *fakeLedgerService) RecordMonthlyPayments(_ context.Context, id uint, updates []domain.PaymentUpdate) ([]domain.Payment, error) {
	if f.paymentErr != nil {
		return nil, f.paymentErr
	}
	f.recorded = updates
	out := make([]domain.Payment, len(updates))
	for i, u := range updates {
		out[i] = domain.Payment{MonthlyDataID: id, LotID: u.LotID, IsPaid: u.IsPaid}
	}
	return out, nil
}

func (f *fakeLedgerService) GetMonthlyPayments(_ context.Context, id uint) ([]domain.Payment, error) {
	return []domain.Payment{{LotID: 1, IsPaid: true}}, nil
}

func (f *fakeLedgerService) GetPaymentRoster(_ context.Context, id uint) (domain.PaymentRoster, error) {
	if id != 1 {
		return domain.PaymentRoster{}, service.ErrMonthlyDataNotFound
	}
	return domain.PaymentRoster{
		MonthlyData: domain.MonthlyData{ID: 1, CycleID: 2, Month: 4, Year: 2024},
		Payments:    []domain.Payment{{LotID: 1, IsPaid: true, Lot: &domain.Lot{User: &domain.User{Name: "Alice", MemberID: "GM-1"}}}},
		Winners:     []domain.Winner{{LotID: 1}},
	}, nil
}

// AddWinners rejects the whole batch when any lot is unpaid or already won.
func (f *fakeLedgerService) AddWinners(_ context.Context, id uint, lotIDs []uint) ([]domain.Winner, error) {
	for _, lotID := range lotIDs {
		if !f.paid[lotID] {
			return nil, fmt.Errorf("s.repo.CreateWinners -> r.dao.InsertWinners -> %w: [%d]", service.ErrUnpaidLots, lotID)
		}
		if f.winners[lotID] {
			return nil, fmt.Errorf("s.repo.CreateWinners -> %w: [%d]", service.ErrWinnerExists, lotID)
		}
	}

	out := make([]domain.Winner, len(lotIDs))
	for i, lotID := range lotIDs {
		f.winners[lotID] = true
		out[i] = domain.Winner{ID: uint(i + 1), MonthlyDataID: id, LotID: lotID}
	}
	return out, nil
}

func (f *fakeLedgerService) GetMonthlyWinners(_ context.Context, id uint) ([]domain.Winner, error) {
	return []domain.Winner{}, nil
}

func (f *fakeLedgerService) RemoveWinner(_ context.Context, id uint) error {
	return f.removeErr
}

func newLedgerRouter(svc LedgerService) *gin.Engine {
	h := NewLedgerHandler(svc)
	r := gin.New()
	r.POST("/monthly-data", h.HandleCreateMonthlyData)
	r.GET("/cycles/:cycleId/monthly-data", h.HandleGetCycleMonthlyData)
	r.GET("/monthly-data/:monthlyDataId", h.HandleGetMonthlyData)
	r.PUT("/monthly-data/:monthlyDataId/payments", h.HandleRecordPayments)
	r.GET("/monthly-data/:monthlyDataId/payments", h.HandleGetPayments)
	r.GET("/monthly-data/:monthlyDataId/payments/export", h.HandleExportPayments)
	r.GET("/monthly-data/:monthlyDataId/winners", h.HandleGetWinners)
	r.POST("/winners", h.HandleAddWinners)
	r.DELETE("/winners/:winnerId", h.HandleRemoveWinner)
	return r
}

func newFakeLedgerService() *fakeLedgerService {
	return &fakeLedgerService{paid: map[uint]bool{1: true}, winners: map[uint]bool{}}
}

func TestHandleCreateMonthlyData(t *testing.T) {
	r := newLedgerRouter(newFakeLedgerService())

	rec, _ := do(t, r, http.MethodPost, "/monthly-data", map[string]int{"cycleId": 1, "month": 1, "year": 2024})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, env := do(t, r, http.MethodPost, "/monthly-data", map[string]int{"cycleId": 1, "month": 13, "year": 2024})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, env.Errors, 1)

	r = newLedgerRouter(&fakeLedgerService{monthlyErr: fmt.Errorf("s.repo.CreateMonthlyData -> %w", service.ErrMonthlyDataExists)})
	rec, env = do(t, r, http.MethodPost, "/monthly-data", map[string]int{"cycleId": 1, "month": 1, "year": 2024})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.ErrMonthlyDataExists.Error(), env.Message)

	r = newLedgerRouter(&fakeLedgerService{monthlyErr: service.ErrCycleNotFound})
	rec, _ = do(t, r, http.MethodPost, "/monthly-data", map[string]int{"cycleId": 9, "month": 1, "year": 2024})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleRecordPayments(t *testing.T) {
	svc := newFakeLedgerService()
	r := newLedgerRouter(svc)

	body := map[string]any{"payments": []map[string]any{{"lotId": 1, "isPaid": true}, {"lotId": 2, "isPaid": false}}}
	rec, _ := do(t, r, http.MethodPut, "/monthly-data/1/payments", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []domain.PaymentUpdate{{LotID: 1, IsPaid: true}, {LotID: 2}}, svc.recorded)

	body = map[string]any{"payments": []map[string]any{{"lotId": 1}, {"lotId": 1}}}
	rec, env := do(t, r, http.MethodPut, "/monthly-data/1/payments", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"payments: lot id 1 is repeated"}, env.Errors)

	r = newLedgerRouter(&fakeLedgerService{paymentErr: fmt.Errorf("s.repo.UpsertPayments -> r.dao.UpsertPayments -> %w: [9]", service.ErrForeignLots)})
	body = map[string]any{"payments": []map[string]any{{"lotId": 9, "isPaid": true}}}
	rec, env = do(t, r, http.MethodPut, "/monthly-data/1/payments", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.ErrForeignLots.Error()+": [9]", env.Message)
}

func TestHandleAddWinners(t *testing.T) {
	r := newLedgerRouter(newFakeLedgerService())

	rec, env := do(t, r, http.MethodPost, "/winners", map[string]any{"monthlyDataId": 1, "lotIds": []uint{1, 2}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.ErrUnpaidLots.Error()+": [2]", env.Message)

	rec, _ = do(t, r, http.MethodPost, "/winners", map[string]any{"monthlyDataId": 1, "lotIds": []uint{1}})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env = do(t, r, http.MethodPost, "/winners", map[string]any{"monthlyDataId": 1, "lotIds": []uint{1}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.ErrWinnerExists.Error()+": [1]", env.Message)

	rec, _ = do(t, r, http.MethodPost, "/winners", map[string]any{"monthlyDataId": 1, "lotIds": []string{"x"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, r, http.MethodPost, "/winners", map[string]any{"monthlyDataId": 1, "lotIds": []uint{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRemoveWinner(t *testing.T) {
	svc := newFakeLedgerService()
	r := newLedgerRouter(svc)

	rec, _ := do(t, r, http.MethodDelete, "/winners/3", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	svc.removeErr = fmt.Errorf("s.repo.DeleteWinner -> %w", service.ErrWinnerNotFound)
	rec, env := do(t, r, http.MethodDelete, "/winners/3", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "winner with id 3 not found", env.Message)
}

func TestHandleGetMonthlyData(t *testing.T) {
	r := newLedgerRouter(newFakeLedgerService())

	rec, env := do(t, r, http.MethodGet, "/monthly-data/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"unpaidCount":2`)

	rec, _ = do(t, r, http.MethodGet, "/monthly-data/2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = do(t, r, http.MethodGet, "/cycles/1/monthly-data", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"items":[]`)
}

func TestHandleExportPayments(t *testing.T) {
	r := newLedgerRouter(newFakeLedgerService())

	rec, _ := do(t, r, http.MethodGet, "/monthly-data/1/payments/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, report.ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=payments_cycle2_2024-04.xlsx", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK", rec.Body.String()[:2], "xlsx files are zip archives")

	rec, _ = do(t, r, http.MethodGet, "/monthly-data/2/payments/export", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
