package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/communityhub/goldledger/internal/domain"
	"github.com/communityhub/goldledger/internal/repository"
)

var (
	ErrCycleInactive       = repository.ErrCycleInactive
	ErrMonthlyDataNotFound = repository.ErrMonthlyDataNotFound
	ErrMonthlyDataExists   = repository.ErrMonthlyDataExists
	ErrIneligibleLots      = repository.ErrIneligibleLots
	ErrForeignLots         = repository.ErrForeignLots
	ErrUnpaidLots          = repository.ErrUnpaidLots
	ErrWinnerExists        = repository.ErrWinnerExists
	ErrWinnerNotFound      = repository.ErrWinnerNotFound

	ErrInvalidPeriod = errors.New("month must be between 1 and 12 and year between 1900 and 9999")
	ErrEmptyBatch    = errors.New("at least one lot is required")
	ErrDuplicateLot  = errors.New("lot ids must be unique")
)

type LedgerRepository interface {
	CreateMonthlyData(ctx context.Context, cycleID uint, month, year int) (domain.MonthlyData, int, error)
	GetMonthlyDataByID(ctx context.Context, id uint) (domain.MonthlyData, error)
	ListMonthlyData(ctx context.Context, cycleID uint, q domain.PageQuery) ([]domain.MonthlyData, int64, error)
	PaymentCounts(ctx context.Context, monthlyDataID uint) (int64, int64, error)
	UpsertPayments(ctx context.Context, monthlyDataID uint, updates []domain.PaymentUpdate, at time.Time) ([]domain.Payment, error)
	ListPayments(ctx context.Context, monthlyDataID uint) ([]domain.Payment, error)
	CreateWinners(ctx context.Context, monthlyDataID uint, lotIDs []uint) ([]domain.Winner, error)
	ListWinners(ctx context.Context, monthlyDataID uint) ([]domain.Winner, error)
	DeleteWinner(ctx context.Context, id uint) error
	WinnerTallies(ctx context.Context, cycleIDs []uint) ([]domain.WinnerTally, error)
}

type LedgerRecorder interface {
	ObserveMonthlyData(roster int)
	ObservePayments(paid, unpaid int)
	ObserveWinners(count int)
}

type LedgerService struct {
	repo     LedgerRepository
	cycles   CycleReader
	recorder LedgerRecorder
	now      func() time.Time
}

func NewLedgerService(repo LedgerRepository, cycles CycleReader, recorder LedgerRecorder) *LedgerService {
	return &LedgerService{
		repo:     repo,
		cycles:   cycles,
		recorder: recorder,
		now:      time.Now,
	}
}

// CreateMonthlyData opens the (month, year) bucket of a cycle and seeds an
// unpaid payment for every lot active in the cycle.
func (s *LedgerService) CreateMonthlyData(ctx context.Context, cycleID uint, month, year int) (domain.MonthlyData, error) {
	if month < 1 || month > 12 || year < 1900 || year > 9999 {
		return domain.MonthlyData{}, ErrInvalidPeriod
	}

	md, roster, err := s.repo.CreateMonthlyData(ctx, cycleID, month, year)
	if err != nil {
		return domain.MonthlyData{}, fmt.Errorf("s.repo.CreateMonthlyData -> %w", err)
	}
	s.recorder.ObserveMonthlyData(roster)

	return md, nil
}

func (s *LedgerService) GetCycleMonthlyData(ctx context.Context, cycleID uint, q domain.PageQuery) ([]domain.MonthlyData, domain.Pagination, error) {
	if _, err := s.cycles.GetCycleByID(ctx, cycleID); err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("s.cycles.GetCycleByID -> %w", err)
	}

	buckets, total, err := s.repo.ListMonthlyData(ctx, cycleID, q)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("s.repo.ListMonthlyData -> %w", err)
	}

	counts, err := s.winnerCounts(ctx, cycleID)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	for i := range buckets {
		buckets[i].WinnerCount = counts[buckets[i].ID]
	}

	return buckets, domain.NewPagination(q, total), nil
}

func (s *LedgerService) GetMonthlyDataDetails(ctx context.Context, id uint) (domain.MonthlyDataDetails, error) {
	md, err := s.repo.GetMonthlyDataByID(ctx, id)
	if err != nil {
		return domain.MonthlyDataDetails{}, fmt.Errorf("s.repo.GetMonthlyDataByID -> %w", err)
	}

	counts, err := s.winnerCounts(ctx, md.CycleID)
	if err != nil {
		return domain.MonthlyDataDetails{}, err
	}
	md.WinnerCount = counts[md.ID]

	paid, unpaid, err := s.repo.PaymentCounts(ctx, id)
	if err != nil {
		return domain.MonthlyDataDetails{}, fmt.Errorf("s.repo.PaymentCounts -> %w", err)
	}

	return domain.MonthlyDataDetails{
		MonthlyData: md,
		PaidCount:   paid,
		UnpaidCount: unpaid,
	}, nil
}

// RecordMonthlyPayments applies every paid flag of the batch or none of them.
func (s *LedgerService) RecordMonthlyPayments(ctx context.Context, monthlyDataID uint, updates []domain.PaymentUpdate) ([]domain.Payment, error) {
	lotIDs := make([]uint, len(updates))
	for i, u := range updates {
		lotIDs[i] = u.LotID
	}
	if err := checkLotBatch(lotIDs); err != nil {
		return nil, err
	}

	payments, err := s.repo.UpsertPayments(ctx, monthlyDataID, updates, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("s.repo.UpsertPayments -> %w", err)
	}

	var paid int
	for _, u := range updates {
		if u.IsPaid {
			paid++
		}
	}
	s.recorder.ObservePayments(paid, len(updates)-paid)

	return payments, nil
}

func (s *LedgerService) GetMonthlyPayments(ctx context.Context, monthlyDataID uint) ([]domain.Payment, error) {
	if _, err := s.repo.GetMonthlyDataByID(ctx, monthlyDataID); err != nil {
		return nil, fmt.Errorf("s.repo.GetMonthlyDataByID -> %w", err)
	}

	payments, err := s.repo.ListPayments(ctx, monthlyDataID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListPayments -> %w", err)
	}

	return payments, nil
}

func (s *LedgerService) GetPaymentRoster(ctx context.Context, monthlyDataID uint) (domain.PaymentRoster, error) {
	md, err := s.repo.GetMonthlyDataByID(ctx, monthlyDataID)
	if err != nil {
		return domain.PaymentRoster{}, fmt.Errorf("s.repo.GetMonthlyDataByID -> %w", err)
	}

	payments, err := s.repo.ListPayments(ctx, monthlyDataID)
	if err != nil {
		return domain.PaymentRoster{}, fmt.Errorf("s.repo.ListPayments -> %w", err)
	}

	winners, err := s.repo.ListWinners(ctx, monthlyDataID)
	if err != nil {
		return domain.PaymentRoster{}, fmt.Errorf("s.repo.ListWinners -> %w", err)
	}
	md.WinnerCount = int64(len(winners))

	return domain.PaymentRoster{
		MonthlyData: md,
		Payments:    payments,
		Winners:     winners,
	}, nil
}

// AddWinners marks every lot as a winner of the bucket or none of them.
func (s *LedgerService) AddWinners(ctx context.Context, monthlyDataID uint, lotIDs []uint) ([]domain.Winner, error) {
	if err := checkLotBatch(lotIDs); err != nil {
		return nil, err
	}

	winners, err := s.repo.CreateWinners(ctx, monthlyDataID, lotIDs)
	if err != nil {
		return nil, fmt.Errorf("s.repo.CreateWinners -> %w", err)
	}
	s.recorder.ObserveWinners(len(winners))

	return winners, nil
}

func (s *LedgerService) GetMonthlyWinners(ctx context.Context, monthlyDataID uint) ([]domain.Winner, error) {
	if _, err := s.repo.GetMonthlyDataByID(ctx, monthlyDataID); err != nil {
		return nil, fmt.Errorf("s.repo.GetMonthlyDataByID -> %w", err)
	}

	winners, err := s.repo.ListWinners(ctx, monthlyDataID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListWinners -> %w", err)
	}

	return winners, nil
}

func (s *LedgerService) RemoveWinner(ctx context.Context, winnerID uint) error {
	if err := s.repo.DeleteWinner(ctx, winnerID); err != nil {
		return fmt.Errorf("s.repo.DeleteWinner -> %w", err)
	}

	return nil
}

func (s *LedgerService) winnerCounts(ctx context.Context, cycleID uint) (map[uint]int64, error) {
	tallies, err := s.repo.WinnerTallies(ctx, []uint{cycleID})
	if err != nil {
		return nil, fmt.Errorf("s.repo.WinnerTallies -> %w", err)
	}

	counts := make(map[uint]int64, len(tallies))
	for _, t := range tallies {
		counts[t.MonthlyDataID] = t.Winners
	}

	return counts, nil
}

func checkLotBatch(lotIDs []uint) error {
	if len(lotIDs) == 0 {
		return ErrEmptyBatch
	}

	seen := make(map[uint]struct{}, len(lotIDs))
	for _, id := range lotIDs {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateLot, id)
		}
		seen[id] = struct{}{}
	}

	return nil
}
