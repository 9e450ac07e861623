package service

import (
	"context"
	"fmt"
	"time"

	"github.com/communityhub/goldledger/internal/domain"
	"github.com/communityhub/goldledger/internal/repository"
)

var (
	ErrProgramNotFound   = repository.ErrProgramNotFound
	ErrProgramInactive   = repository.ErrProgramInactive
	ErrCycleNotFound     = repository.ErrCycleNotFound
	ErrActiveCycleExists = repository.ErrActiveCycleExists
	ErrNoActiveCycle     = repository.ErrNoActiveCycle
)

const recentCyclesLimit = 5

// Cycle transition labels reported to the metrics recorder.
const (
	TransitionStart = "start"
	TransitionEnd   = "end"
)

type ProgramRepository interface {
	Create(ctx context.Context, program domain.Program) (domain.Program, error)
	GetByID(ctx context.Context, id uint) (domain.Program, error)
	List(ctx context.Context, q domain.PageQuery) ([]domain.Program, int64, error)
	ToggleStatus(ctx context.Context, id uint) (domain.Program, error)
	StartCycle(ctx context.Context, programID uint, at time.Time) (domain.Cycle, error)
	EndCycle(ctx context.Context, programID uint, at time.Time) (domain.CycleTransition, error)
	RecentCycles(ctx context.Context, programID uint, limit int) ([]domain.Cycle, error)
	CountCycles(ctx context.Context, programID uint) (int64, error)
	ListCycles(ctx context.Context, programID uint, q domain.PageQuery) ([]domain.Cycle, int64, error)
	GetCycleDetails(ctx context.Context, id uint) (domain.CycleDetails, error)
}

type WinnerTallyRepository interface {
	WinnerTallies(ctx context.Context, cycleIDs []uint) ([]domain.WinnerTally, error)
}

// ProgramCache holds program details without winner totals, which are
// folded in on every read. Get reports a generation that Set must be given
// back; Invalidate moves it, so a load that overlapped a write is dropped.
type ProgramCache interface {
	Get(ctx context.Context, programID uint) (domain.ProgramDetails, int64, bool)
	Set(ctx context.Context, details domain.ProgramDetails, generation int64)
	Invalidate(ctx context.Context, programID uint)
}

type CycleRecorder interface {
	ObserveCycleTransition(action string)
}

type ProgramService struct {
	repo     ProgramRepository
	tallies  WinnerTallyRepository
	cache    ProgramCache
	recorder CycleRecorder
	now      func() time.Time
}

func NewProgramService(repo ProgramRepository, tallies WinnerTallyRepository, cache ProgramCache, recorder CycleRecorder) *ProgramService {
	return &ProgramService{
		repo:     repo,
		tallies:  tallies,
		cache:    cache,
		recorder: recorder,
		now:      time.Now,
	}
}

func (s *ProgramService) CreateProgram(ctx context.Context, program domain.Program) (domain.Program, error) {
	program.IsActive = true
	program.CurrentCycleID = nil

	created, err := s.repo.Create(ctx, program)
	if err != nil {
		return domain.Program{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *ProgramService) ListPrograms(ctx context.Context, q domain.PageQuery) ([]domain.Program, domain.Pagination, error) {
	programs, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("s.repo.List -> %w", err)
	}

	return programs, domain.NewPagination(q, total), nil
}

func (s *ProgramService) ToggleProgramStatus(ctx context.Context, id uint) (domain.Program, error) {
	program, err := s.repo.ToggleStatus(ctx, id)
	if err != nil {
		return domain.Program{}, fmt.Errorf("s.repo.ToggleStatus -> %w", err)
	}
	s.cache.Invalidate(ctx, id)

	return program, nil
}

func (s *ProgramService) GetProgramDetails(ctx context.Context, id uint) (domain.ProgramDetails, error) {
	details, generation, ok := s.cache.Get(ctx, id)
	if !ok {
		program, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return domain.ProgramDetails{}, fmt.Errorf("s.repo.GetByID -> %w", err)
		}

		recent, err := s.repo.RecentCycles(ctx, id, recentCyclesLimit)
		if err != nil {
			return domain.ProgramDetails{}, fmt.Errorf("s.repo.RecentCycles -> %w", err)
		}

		count, err := s.repo.CountCycles(ctx, id)
		if err != nil {
			return domain.ProgramDetails{}, fmt.Errorf("s.repo.CountCycles -> %w", err)
		}

		details = domain.ProgramDetails{
			Program:      program,
			RecentCycles: recent,
			CycleCount:   count,
		}
		s.cache.Set(ctx, details, generation)
	}

	// The cached copy is shared; fold totals into a fresh slice.
	cycles := make([]domain.Cycle, len(details.RecentCycles))
	copy(cycles, details.RecentCycles)
	if err := s.foldWinnerTotals(ctx, cycles); err != nil {
		return domain.ProgramDetails{}, err
	}
	details.RecentCycles = cycles

	return details, nil
}

func (s *ProgramService) StartNewCycle(ctx context.Context, programID uint) (domain.Cycle, error) {
	cycle, err := s.repo.StartCycle(ctx, programID, s.now().UTC())
	if err != nil {
		return domain.Cycle{}, fmt.Errorf("s.repo.StartCycle -> %w", err)
	}
	s.cache.Invalidate(ctx, programID)
	s.recorder.ObserveCycleTransition(TransitionStart)

	return cycle, nil
}

func (s *ProgramService) EndCurrentCycle(ctx context.Context, programID uint) (domain.CycleTransition, error) {
	transition, err := s.repo.EndCycle(ctx, programID, s.now().UTC())
	if err != nil {
		return domain.CycleTransition{}, fmt.Errorf("s.repo.EndCycle -> %w", err)
	}
	s.cache.Invalidate(ctx, programID)
	s.recorder.ObserveCycleTransition(TransitionEnd)

	cycles := []domain.Cycle{transition.Ended, transition.Started}
	if err := s.foldWinnerTotals(ctx, cycles); err != nil {
		return domain.CycleTransition{}, err
	}
	transition.Ended, transition.Started = cycles[0], cycles[1]

	return transition, nil
}

func (s *ProgramService) GetProgramCycles(ctx context.Context, programID uint, q domain.PageQuery) ([]domain.Cycle, domain.Pagination, error) {
	if _, err := s.repo.GetByID(ctx, programID); err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	cycles, total, err := s.repo.ListCycles(ctx, programID, q)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("s.repo.ListCycles -> %w", err)
	}

	if err := s.foldWinnerTotals(ctx, cycles); err != nil {
		return nil, domain.Pagination{}, err
	}

	return cycles, domain.NewPagination(q, total), nil
}

func (s *ProgramService) GetCycleDetails(ctx context.Context, cycleID uint) (domain.CycleDetails, error) {
	details, err := s.repo.GetCycleDetails(ctx, cycleID)
	if err != nil {
		return domain.CycleDetails{}, fmt.Errorf("s.repo.GetCycleDetails -> %w", err)
	}

	cycles := []domain.Cycle{details.Cycle}
	if err := s.foldWinnerTotals(ctx, cycles); err != nil {
		return domain.CycleDetails{}, err
	}
	details.Cycle = cycles[0]

	return details, nil
}

// foldWinnerTotals sets TotalWinners on each cycle to the sum of the winner
// counts of its monthly buckets.
func (s *ProgramService) foldWinnerTotals(ctx context.Context, cycles []domain.Cycle) error {
	if len(cycles) == 0 {
		return nil
	}

	ids := make([]uint, len(cycles))
	for i, c := range cycles {
		ids[i] = c.ID
	}

	tallies, err := s.tallies.WinnerTallies(ctx, ids)
	if err != nil {
		return fmt.Errorf("s.tallies.WinnerTallies -> %w", err)
	}

	totals := make(map[uint]int64, len(cycles))
	for _, t := range tallies {
		totals[t.CycleID] += t.Winners
	}
	for i := range cycles {
		cycles[i].TotalWinners = totals[cycles[i].ID]
	}

	return nil
}
