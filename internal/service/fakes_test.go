package service

import (
	"context"
	"time"

	"github.com/communityhub/goldledger/internal/domain"
)

type fakeProgramRepo struct {
	programs map[uint]domain.Program
	cycles   []domain.Cycle
	nextID   uint

	getByIDCalls int
	startedAt    time.Time
	onGetByID    func()
}

func newFakeProgramRepo() *fakeProgramRepo {
	return &fakeProgramRepo{programs: map[uint]domain.Program{}}
}

func (r *fakeProgramRepo) id() uint {
	r.nextID++
	return r.nextID
}

func (r *fakeProgramRepo) Create(_ context.Context, p domain.Program) (domain.Program, error) {
	p.ID = r.id()
	r.programs[p.ID] = p
	return p, nil
}

func (r *fakeProgramRepo) GetByID(_ context.Context, id uint) (domain.Program, error) {
	r.getByIDCalls++
	p, ok := r.programs[id]
	if !ok {
		return domain.Program{}, ErrProgramNotFound
	}
	if r.onGetByID != nil {
		r.onGetByID()
	}
	return p, nil
}

func (r *fakeProgramRepo) List(_ context.Context, q domain.PageQuery) ([]domain.Program, int64, error) {
	var out []domain.Program
	for _, p := range r.programs {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProgramRepo) ToggleStatus(_ context.Context, id uint) (domain.Program, error) {
	p, ok := r.programs[id]
	if !ok {
		return domain.Program{}, ErrProgramNotFound
	}
	p.IsActive = !p.IsActive
	r.programs[id] = p
	return p, nil
}

func (r *fakeProgramRepo) active(programID uint) int {
	for i, c := range r.cycles {
		if c.ProgramID == programID && c.IsActive {
			return i
		}
	}
	return -1
}

func (r *fakeProgramRepo) StartCycle(_ context.Context, programID uint, at time.Time) (domain.Cycle, error) {
	p, ok := r.programs[programID]
	if !ok {
		return domain.Cycle{}, ErrProgramNotFound
	}
	if !p.IsActive {
		return domain.Cycle{}, ErrProgramInactive
	}
	if r.active(programID) >= 0 {
		return domain.Cycle{}, ErrActiveCycleExists
	}
	r.startedAt = at
	c := domain.Cycle{ID: r.id(), ProgramID: programID, IsActive: true, StartDate: at}
	r.cycles = append(r.cycles, c)
	p.CurrentCycleID = &c.ID
	r.programs[programID] = p
	return c, nil
}

func (r *fakeProgramRepo) EndCycle(_ context.Context, programID uint, at time.Time) (domain.CycleTransition, error) {
	if _, ok := r.programs[programID]; !ok {
		return domain.CycleTransition{}, ErrProgramNotFound
	}
	i := r.active(programID)
	if i < 0 {
		return domain.CycleTransition{}, ErrNoActiveCycle
	}
	end := at
	r.cycles[i].IsActive = false
	r.cycles[i].EndDate = &end
	next := domain.Cycle{ID: r.id(), ProgramID: programID, IsActive: true, StartDate: at}
	r.cycles = append(r.cycles, next)
	return domain.CycleTransition{Ended: r.cycles[i], Started: next}, nil
}

func (r *fakeProgramRepo) RecentCycles(_ context.Context, programID uint, limit int) ([]domain.Cycle, error) {
	var out []domain.Cycle
	for i := len(r.cycles) - 1; i >= 0 && len(out) < limit; i-- {
		if r.cycles[i].ProgramID == programID {
			out = append(out, r.cycles[i])
		}
	}
	return out, nil
}

func (r *fakeProgramRepo) CountCycles(_ context.Context, programID uint) (int64, error) {
	var n int64
	for _, c := range r.cycles {
		if c.ProgramID == programID {
			n++
		}
	}
	return n, nil
}

func (r *fakeProgramRepo) ListCycles(ctx context.Context, programID uint, q domain.PageQuery) ([]domain.Cycle, int64, error) {
	cycles, _ := r.RecentCycles(ctx, programID, len(r.cycles))
	return cycles, int64(len(cycles)), nil
}

func (r *fakeProgramRepo) GetCycleByID(_ context.Context, id uint) (domain.Cycle, error) {
	for _, c := range r.cycles {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Cycle{}, ErrCycleNotFound
}

func (r *fakeProgramRepo) GetCycleDetails(ctx context.Context, id uint) (domain.CycleDetails, error) {
	c, err := r.GetCycleByID(ctx, id)
	if err != nil {
		return domain.CycleDetails{}, err
	}
	return domain.CycleDetails{Cycle: c, LotCount: 2, MonthlyDataCount: 1}, nil
}

type fakeTallies struct {
	tallies []domain.WinnerTally
	asked   [][]uint
}

func (f *fakeTallies) WinnerTallies(_ context.Context, cycleIDs []uint) ([]domain.WinnerTally, error) {
	f.asked = append(f.asked, cycleIDs)
	want := make(map[uint]bool, len(cycleIDs))
	for _, id := range cycleIDs {
		want[id] = true
	}
	var out []domain.WinnerTally
	for _, t := range f.tallies {
		if want[t.CycleID] {
			out = append(out, t)
		}
	}
	return out, nil
}

type memoryCache struct {
	entries     map[uint]domain.ProgramDetails
	generations map[uint]int64
	invalidated []uint
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[uint]domain.ProgramDetails{}, generations: map[uint]int64{}}
}

func (c *memoryCache) Get(_ context.Context, id uint) (domain.ProgramDetails, int64, bool) {
	d, ok := c.entries[id]
	return d, c.generations[id], ok
}

func (c *memoryCache) Set(_ context.Context, d domain.ProgramDetails, generation int64) {
	if generation != c.generations[d.ID] {
		return
	}
	c.entries[d.ID] = d
}

func (c *memoryCache) Invalidate(_ context.Context, id uint) {
	delete(c.entries, id)
	c.generations[id]++
	c.invalidated = append(c.invalidated, id)
}

type recorder struct {
	transitions []string
	rosters     []int
	paid        int
	unpaid      int
	winners     int
}

func (r *recorder) ObserveCycleTransition(action string) { r.transitions = append(r.transitions, action) }
func (r *recorder) ObserveMonthlyData(roster int)        { r.rosters = append(r.rosters, roster) }
func (r *recorder) ObservePayments(paid, unpaid int)     { r.paid += paid; r.unpaid += unpaid }
func (r *recorder) ObserveWinners(count int)             { r.winners += count }
