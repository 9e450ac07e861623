package repository

import (
	"github.com/communityhub/goldledger/internal/domain"
	"github.com/communityhub/goldledger/internal/repository/dao"
)

var (
	ErrUserNotFound        = dao.ErrUserNotFound
	ErrUserMemberIDExists  = dao.ErrUserMemberIDExists
	ErrProgramNotFound     = dao.ErrProgramNotFound
	ErrProgramInactive     = dao.ErrProgramInactive
	ErrCycleNotFound       = dao.ErrCycleNotFound
	ErrCycleInactive       = dao.ErrCycleInactive
	ErrActiveCycleExists   = dao.ErrActiveCycleExists
	ErrNoActiveCycle       = dao.ErrNoActiveCycle
	ErrLotNotFound         = dao.ErrLotNotFound
	ErrActiveLotExists     = dao.ErrActiveLotExists
	ErrMonthlyDataNotFound = dao.ErrMonthlyDataNotFound
	ErrMonthlyDataExists   = dao.ErrMonthlyDataExists
	ErrIneligibleLots      = dao.ErrIneligibleLots
	ErrForeignLots         = dao.ErrForeignLots
	ErrUnpaidLots          = dao.ErrUnpaidLots
	ErrWinnerExists        = dao.ErrWinnerExists
	ErrWinnerNotFound      = dao.ErrWinnerNotFound
)

func listParams(q domain.PageQuery) dao.ListParams {
	return dao.ListParams{
		Page:   q.Page,
		Limit:  q.Limit,
		Search: q.Search,
	}
}
