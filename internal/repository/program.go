package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/communityhub/goldledger/internal/domain"
	"github.com/communityhub/goldledger/internal/repository/dao"
)

type ProgramDAO interface {
	Insert(ctx context.Context, program dao.Program) (dao.Program, error)
	FindByID(ctx context.Context, id uint) (dao.Program, error)
	List(ctx context.Context, params dao.ListParams) ([]dao.Program, int64, error)
	ToggleStatus(ctx context.Context, id uint) (dao.Program, error)
	StartCycle(ctx context.Context, programID uint, at time.Time) (dao.Cycle, error)
	EndCycle(ctx context.Context, programID uint, at time.Time) (dao.Cycle, dao.Cycle, error)
	RecentCycles(ctx context.Context, programID uint, limit int) ([]dao.Cycle, error)
	CountCycles(ctx context.Context, programID uint) (int64, error)
	ListCycles(ctx context.Context, programID uint, params dao.ListParams) ([]dao.Cycle, int64, error)
	FindCycleByID(ctx context.Context, id uint) (dao.Cycle, error)
	CycleCounts(ctx context.Context, cycleID uint) (int64, int64, error)
}

type ProgramRepository struct {
	dao ProgramDAO
}

func NewProgramRepository(dao ProgramDAO) *ProgramRepository {
	return &ProgramRepository{
		dao: dao,
	}
}

func (r *ProgramRepository) Create(ctx context.Context, program domain.Program) (domain.Program, error) {
	created, err := r.dao.Insert(ctx, dao.Program{
		Name:        program.Name,
		Description: program.Description,
		IsActive:    program.IsActive,
	})
	if err != nil {
		return domain.Program{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return programDaoToDomain(created), nil
}

func (r *ProgramRepository) GetByID(ctx context.Context, id uint) (domain.Program, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Program{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return programDaoToDomain(found), nil
}

func (r *ProgramRepository) List(ctx context.Context, q domain.PageQuery) ([]domain.Program, int64, error) {
	found, total, err := r.dao.List(ctx, listParams(q))
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.List -> %w", err)
	}

	programs := make([]domain.Program, len(found))
	for i, p := range found {
		programs[i] = programDaoToDomain(p)
	}

	return programs, total, nil
}

func (r *ProgramRepository) ToggleStatus(ctx context.Context, id uint) (domain.Program, error) {
	toggled, err := r.dao.ToggleStatus(ctx, id)
	if err != nil {
		return domain.Program{}, fmt.Errorf("r.dao.ToggleStatus -> %w", err)
	}

	return programDaoToDomain(toggled), nil
}

func (r *ProgramRepository) StartCycle(ctx context.Context, programID uint, at time.Time) (domain.Cycle, error) {
	started, err := r.dao.StartCycle(ctx, programID, at)
	if err != nil {
		return domain.Cycle{}, fmt.Errorf("r.dao.StartCycle -> %w", err)
	}

	return cycleDaoToDomain(started), nil
}

func (r *ProgramRepository) EndCycle(ctx context.Context, programID uint, at time.Time) (domain.CycleTransition, error) {
	ended, started, err := r.dao.EndCycle(ctx, programID, at)
	if err != nil {
		return domain.CycleTransition{}, fmt.Errorf("r.dao.EndCycle -> %w", err)
	}

	return domain.CycleTransition{
		Ended:   cycleDaoToDomain(ended),
		Started: cycleDaoToDomain(started),
	}, nil
}

func (r *ProgramRepository) RecentCycles(ctx context.Context, programID uint, limit int) ([]domain.Cycle, error) {
	found, err := r.dao.RecentCycles(ctx, programID, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.RecentCycles -> %w", err)
	}

	return cyclesDaoToDomain(found), nil
}

func (r *ProgramRepository) CountCycles(ctx context.Context, programID uint) (int64, error) {
	count, err := r.dao.CountCycles(ctx, programID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountCycles -> %w", err)
	}

	return count, nil
}

func (r *ProgramRepository) ListCycles(ctx context.Context, programID uint, q domain.PageQuery) ([]domain.Cycle, int64, error) {
	found, total, err := r.dao.ListCycles(ctx, programID, listParams(q))
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.ListCycles -> %w", err)
	}

	return cyclesDaoToDomain(found), total, nil
}

func (r *ProgramRepository) GetCycleByID(ctx context.Context, id uint) (domain.Cycle, error) {
	found, err := r.dao.FindCycleByID(ctx, id)
	if err != nil {
		return domain.Cycle{}, fmt.Errorf("r.dao.FindCycleByID -> %w", err)
	}

	return cycleDaoToDomain(found), nil
}

func (r *ProgramRepository) GetCycleDetails(ctx context.Context, id uint) (domain.CycleDetails, error) {
	cycle, err := r.GetCycleByID(ctx, id)
	if err != nil {
		return domain.CycleDetails{}, err
	}

	lots, months, err := r.dao.CycleCounts(ctx, id)
	if err != nil {
		return domain.CycleDetails{}, fmt.Errorf("r.dao.CycleCounts -> %w", err)
	}

	return domain.CycleDetails{
		Cycle:            cycle,
		LotCount:         lots,
		MonthlyDataCount: months,
	}, nil
}

func programDaoToDomain(p dao.Program) domain.Program {
	return domain.Program{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		IsActive:       p.IsActive,
		CurrentCycleID: p.CurrentCycleID,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func cycleDaoToDomain(c dao.Cycle) domain.Cycle {
	return domain.Cycle{
		ID:        c.ID,
		ProgramID: c.ProgramID,
		IsActive:  c.IsActive,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func cyclesDaoToDomain(cycles []dao.Cycle) []domain.Cycle {
	domainCycles := make([]domain.Cycle, len(cycles))
	for i, c := range cycles {
		domainCycles[i] = cycleDaoToDomain(c)
	}
	return domainCycles
}
