package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/communityhub/goldledger/internal/domain"
	"github.com/communityhub/goldledger/internal/repository/dao"
)

type LedgerDAO interface {
	CreateMonthlyData(ctx context.Context, cycleID uint, month, year int) (dao.MonthlyData, int, error)
	FindMonthlyDataByID(ctx context.Context, id uint) (dao.MonthlyData, error)
	ListMonthlyData(ctx context.Context, cycleID uint, params dao.ListParams) ([]dao.MonthlyData, int64, error)
	PaymentCounts(ctx context.Context, monthlyDataID uint) (int64, int64, error)
	UpsertPayments(ctx context.Context, monthlyDataID uint, states []dao.PaymentState, at time.Time) ([]dao.Payment, error)
	ListPayments(ctx context.Context, monthlyDataID uint) ([]dao.Payment, error)
	InsertWinners(ctx context.Context, monthlyDataID uint, lotIDs []uint) ([]dao.Winner, error)
	ListWinners(ctx context.Context, monthlyDataID uint) ([]dao.Winner, error)
	DeleteWinner(ctx context.Context, id uint) error
	WinnerTallies(ctx context.Context, cycleIDs []uint) ([]dao.WinnerTally, error)
}

type LedgerRepository struct {
	dao LedgerDAO
}

func NewLedgerRepository(dao LedgerDAO) *LedgerRepository {
	return &LedgerRepository{
		dao: dao,
	}
}

// CreateMonthlyData returns the new bucket and the number of payment
// placeholders created alongside it.
func (r *LedgerRepository) CreateMonthlyData(ctx context.Context, cycleID uint, month, year int) (domain.MonthlyData, int, error) {
	created, roster, err := r.dao.CreateMonthlyData(ctx, cycleID, month, year)
	if err != nil {
		return domain.MonthlyData{}, 0, fmt.Errorf("r.dao.CreateMonthlyData -> %w", err)
	}

	return monthlyDataDaoToDomain(created), roster, nil
}

func (r *LedgerRepository) GetMonthlyDataByID(ctx context.Context, id uint) (domain.MonthlyData, error) {
	found, err := r.dao.FindMonthlyDataByID(ctx, id)
	if err != nil {
		return domain.MonthlyData{}, fmt.Errorf("r.dao.FindMonthlyDataByID -> %w", err)
	}

	return monthlyDataDaoToDomain(found), nil
}

func (r *LedgerRepository) ListMonthlyData(ctx context.Context, cycleID uint, q domain.PageQuery) ([]domain.MonthlyData, int64, error) {
	found, total, err := r.dao.ListMonthlyData(ctx, cycleID, listParams(q))
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.ListMonthlyData -> %w", err)
	}

	buckets := make([]domain.MonthlyData, len(found))
	for i, md := range found {
		buckets[i] = monthlyDataDaoToDomain(md)
	}

	return buckets, total, nil
}

func (r *LedgerRepository) PaymentCounts(ctx context.Context, monthlyDataID uint) (int64, int64, error) {
	paid, unpaid, err := r.dao.PaymentCounts(ctx, monthlyDataID)
	if err != nil {
		return 0, 0, fmt.Errorf("r.dao.PaymentCounts -> %w", err)
	}

	return paid, unpaid, nil
}

func (r *LedgerRepository) UpsertPayments(ctx context.Context, monthlyDataID uint, updates []domain.PaymentUpdate, at time.Time) ([]domain.Payment, error) {
	states := make([]dao.PaymentState, len(updates))
	for i, u := range updates {
		states[i] = dao.PaymentState{LotID: u.LotID, IsPaid: u.IsPaid}
	}

	saved, err := r.dao.UpsertPayments(ctx, monthlyDataID, states, at)
	if err != nil {
		return nil, fmt.Errorf("r.dao.UpsertPayments -> %w", err)
	}

	return paymentsDaoToDomain(saved), nil
}

func (r *LedgerRepository) ListPayments(ctx context.Context, monthlyDataID uint) ([]domain.Payment, error) {
	found, err := r.dao.ListPayments(ctx, monthlyDataID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListPayments -> %w", err)
	}

	return paymentsDaoToDomain(found), nil
}

func (r *LedgerRepository) CreateWinners(ctx context.Context, monthlyDataID uint, lotIDs []uint) ([]domain.Winner, error) {
	created, err := r.dao.InsertWinners(ctx, monthlyDataID, lotIDs)
	if err != nil {
		return nil, fmt.Errorf("r.dao.InsertWinners -> %w", err)
	}

	return winnersDaoToDomain(created), nil
}

func (r *LedgerRepository) ListWinners(ctx context.Context, monthlyDataID uint) ([]domain.Winner, error) {
	found, err := r.dao.ListWinners(ctx, monthlyDataID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListWinners -> %w", err)
	}

	return winnersDaoToDomain(found), nil
}

func (r *LedgerRepository) DeleteWinner(ctx context.Context, id uint) error {
	if err := r.dao.DeleteWinner(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeleteWinner -> %w", err)
	}

	return nil
}

func (r *LedgerRepository) WinnerTallies(ctx context.Context, cycleIDs []uint) ([]domain.WinnerTally, error) {
	found, err := r.dao.WinnerTallies(ctx, cycleIDs)
	if err != nil {
		return nil, fmt.Errorf("r.dao.WinnerTallies -> %w", err)
	}

	tallies := make([]domain.WinnerTally, len(found))
	for i, t := range found {
		tallies[i] = domain.WinnerTally{
			CycleID:       t.CycleID,
			MonthlyDataID: t.MonthlyDataID,
			Winners:       t.Winners,
		}
	}

	return tallies, nil
}

func monthlyDataDaoToDomain(md dao.MonthlyData) domain.MonthlyData {
	return domain.MonthlyData{
		ID:        md.ID,
		CycleID:   md.CycleID,
		Month:     md.Month,
		Year:      md.Year,
		CreatedAt: md.CreatedAt,
		UpdatedAt: md.UpdatedAt,
	}
}

func paymentsDaoToDomain(payments []dao.Payment) []domain.Payment {
	domainPayments := make([]domain.Payment, len(payments))
	for i, p := range payments {
		domainPayments[i] = domain.Payment{
			ID:            p.ID,
			MonthlyDataID: p.MonthlyDataID,
			LotID:         p.LotID,
			IsPaid:        p.IsPaid,
			PaymentDate:   p.PaymentDate,
			CreatedAt:     p.CreatedAt,
			UpdatedAt:     p.UpdatedAt,
		}
		if p.Lot != nil {
			lot := lotDaoToDomain(*p.Lot)
			domainPayments[i].Lot = &lot
		}
	}
	return domainPayments
}

func winnersDaoToDomain(winners []dao.Winner) []domain.Winner {
	domainWinners := make([]domain.Winner, len(winners))
	for i, w := range winners {
		domainWinners[i] = domain.Winner{
			ID:            w.ID,
			MonthlyDataID: w.MonthlyDataID,
			LotID:         w.LotID,
			CreatedAt:     w.CreatedAt,
		}
		if w.Lot != nil {
			lot := lotDaoToDomain(*w.Lot)
			domainWinners[i].Lot = &lot
		}
	}
	return domainWinners
}
