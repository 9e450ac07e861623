package service

import (
	"context"
	"fmt"

	"github.com/communityhub/goldledger/internal/domain"
	"github.com/communityhub/goldledger/internal/repository"
)

var (
	ErrLotNotFound     = repository.ErrLotNotFound
	ErrActiveLotExists = repository.ErrActiveLotExists
)

type LotRepository interface {
	CreateForActiveCycle(ctx context.Context, programID, userID uint) (domain.Lot, error)
	GetByID(ctx context.Context, id uint) (domain.Lot, error)
	ToggleStatus(ctx context.Context, id uint) (domain.Lot, error)
	ListByCycle(ctx context.Context, cycleID uint, q domain.PageQuery) ([]domain.Lot, int64, error)
}

type ProgramReader interface {
	GetByID(ctx context.Context, id uint) (domain.Program, error)
}

type CycleReader interface {
	GetCycleByID(ctx context.Context, id uint) (domain.Cycle, error)
}

type UserReader interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

type LotService struct {
	repo     LotRepository
	programs ProgramReader
	cycles   CycleReader
	users    UserReader
}

func NewLotService(repo LotRepository, programs ProgramReader, cycles CycleReader, users UserReader) *LotService {
	return &LotService{
		repo:     repo,
		programs: programs,
		cycles:   cycles,
		users:    users,
	}
}

// AddUserToProgram gives the user a lot in the program's current cycle.
func (s *LotService) AddUserToProgram(ctx context.Context, programID, userID uint) (domain.Lot, error) {
	if _, err := s.programs.GetByID(ctx, programID); err != nil {
		return domain.Lot{}, fmt.Errorf("s.programs.GetByID -> %w", err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.Lot{}, fmt.Errorf("s.users.FindByID -> %w", err)
	}

	lot, err := s.repo.CreateForActiveCycle(ctx, programID, userID)
	if err != nil {
		return domain.Lot{}, fmt.Errorf("s.repo.CreateForActiveCycle -> %w", err)
	}
	lot.User = &user

	return lot, nil
}

func (s *LotService) GetLot(ctx context.Context, lotID uint) (domain.Lot, error) {
	lot, err := s.repo.GetByID(ctx, lotID)
	if err != nil {
		return domain.Lot{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	return lot, nil
}

func (s *LotService) ToggleLotStatus(ctx context.Context, lotID uint) (domain.Lot, error) {
	lot, err := s.repo.ToggleStatus(ctx, lotID)
	if err != nil {
		return domain.Lot{}, fmt.Errorf("s.repo.ToggleStatus -> %w", err)
	}

	return lot, nil
}

func (s *LotService) GetCycleLots(ctx context.Context, cycleID uint, q domain.PageQuery) ([]domain.Lot, domain.Pagination, error) {
	if _, err := s.cycles.GetCycleByID(ctx, cycleID); err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("s.cycles.GetCycleByID -> %w", err)
	}

	lots, total, err := s.repo.ListByCycle(ctx, cycleID, q)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("s.repo.ListByCycle -> %w", err)
	}

	return lots, domain.NewPagination(q, total), nil
}
