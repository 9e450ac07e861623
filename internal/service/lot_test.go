package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communityhub/goldledger/internal/domain"
)

type fakeLotRepo struct {
	lots    []domain.Lot
	created int
}

func (r *fakeLotRepo) CreateForActiveCycle(_ context.Context, programID, userID uint) (domain.Lot, error) {
	for _, l := range r.lots {
		if l.UserID == userID && l.IsActive {
			return domain.Lot{}, ErrActiveLotExists
		}
	}
	r.created++
	lot := domain.Lot{ID: uint(len(r.lots) + 1), CycleID: 1, UserID: userID, IsActive: true}
	r.lots = append(r.lots, lot)
	return lot, nil
}

func (r *fakeLotRepo) GetByID(_ context.Context, id uint) (domain.Lot, error) {
	for _, l := range r.lots {
		if l.ID == id {
			return l, nil
		}
	}
	return domain.Lot{}, ErrLotNotFound
}

func (r *fakeLotRepo) ToggleStatus(_ context.Context, id uint) (domain.Lot, error) {
	for i := range r.lots {
		if r.lots[i].ID == id {
			r.lots[i].IsActive = !r.lots[i].IsActive
			return r.lots[i], nil
		}
	}
	return domain.Lot{}, ErrLotNotFound
}

func (r *fakeLotRepo) ListByCycle(_ context.Context, cycleID uint, _ domain.PageQuery) ([]domain.Lot, int64, error) {
	return r.lots, int64(len(r.lots)), nil
}

type fakeUsers map[uint]domain.User

func (f fakeUsers) FindByID(_ context.Context, id uint) (domain.User, error) {
	u, ok := f[id]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return u, nil
}

func newLotService(t *testing.T) (*LotService, *fakeLotRepo) {
	t.Helper()

	programs := newFakeProgramRepo()
	programs.programs[1] = domain.Program{ID: 1, Name: "Gold", IsActive: true}
	repo := &fakeLotRepo{}
	users := fakeUsers{7: {ID: 7, Name: "Alice", MemberID: "GM-007"}}

	return NewLotService(repo, programs, fakeCycles{1: {ID: 1, IsActive: true}}, users), repo
}

func TestLotService_AddUserToProgram(t *testing.T) {
	svc, repo := newLotService(t)
	ctx := context.Background()

	lot, err := svc.AddUserToProgram(ctx, 1, 7)
	require.NoError(t, err)
	require.NotNil(t, lot.User)
	assert.Equal(t, "GM-007", lot.User.MemberID)

	_, err = svc.AddUserToProgram(ctx, 1, 7)
	assert.ErrorIs(t, err, ErrActiveLotExists)

	_, err = svc.AddUserToProgram(ctx, 2, 7)
	assert.ErrorIs(t, err, ErrProgramNotFound)

	_, err = svc.AddUserToProgram(ctx, 1, 8)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, 1, repo.created)
}

func TestLotService_ToggleAndList(t *testing.T) {
	svc, _ := newLotService(t)
	ctx := context.Background()

	lot, err := svc.AddUserToProgram(ctx, 1, 7)
	require.NoError(t, err)

	toggled, err := svc.ToggleLotStatus(ctx, lot.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	found, err := svc.GetLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)

	_, err = svc.ToggleLotStatus(ctx, 99)
	assert.ErrorIs(t, err, ErrLotNotFound)

	lots, pagination, err := svc.GetCycleLots(ctx, 1, domain.PageQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, lots, 1)
	assert.Equal(t, 1, pagination.TotalPages)

	_, _, err = svc.GetCycleLots(ctx, 9, domain.PageQuery{Page: 1, Limit: 10})
	assert.ErrorIs(t, err, ErrCycleNotFound)
}
