package dao

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserMemberIDExists  = errors.New("a user with this member id already exists")
	ErrProgramNotFound     = errors.New("program not found")
	ErrProgramInactive     = errors.New("program is not active")
	ErrCycleNotFound       = errors.New("cycle not found")
	ErrCycleInactive       = errors.New("cycle is not active")
	ErrActiveCycleExists   = errors.New("program already has an active cycle")
	ErrNoActiveCycle       = errors.New("program has no active cycle")
	ErrLotNotFound         = errors.New("lot not found")
	ErrActiveLotExists     = errors.New("user already holds an active lot in this cycle")
	ErrMonthlyDataNotFound = errors.New("monthly data not found")
	ErrMonthlyDataExists   = errors.New("monthly data already exists for this month and year")
	ErrIneligibleLots      = errors.New("lots are not active members of the cycle")
	ErrForeignLots         = errors.New("lots do not belong to the cycle")
	ErrUnpaidLots          = errors.New("lots have not paid for this month")
	ErrWinnerExists        = errors.New("lots are already winners for this month")
	ErrWinnerNotFound      = errors.New("winner not found")
)

// Unique index names, shared by InitTables and translateUniqueViolation.
const (
	uniqActiveCycle       = "uniq_cycles_active_program"
	uniqActiveLot         = "uniq_lots_active_cycle_user"
	uniqMonthlyDataPeriod = "uniq_monthly_data_cycle_period"
	uniqWinnerLot         = "uniq_winners_monthly_data_lot"
	uniqUserMemberID      = "uniq_users_member_id"
)

var uniqueViolations = map[string]error{
	uniqActiveCycle:       ErrActiveCycleExists,
	uniqActiveLot:         ErrActiveLotExists,
	uniqMonthlyDataPeriod: ErrMonthlyDataExists,
	uniqWinnerLot:         ErrWinnerExists,
	uniqUserMemberID:      ErrUserMemberIDExists,
}

// translateUniqueViolation maps a postgres unique violation on one of our
// indexes to its sentinel error. Other errors are returned unchanged.
func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return err
	}

	if sentinel, ok := uniqueViolations[pgErr.ConstraintName]; ok {
		return sentinel
	}
	for name, sentinel := range uniqueViolations {
		if strings.Contains(pgErr.Message, `"`+name+`"`) {
			return sentinel
		}
	}

	return err
}
