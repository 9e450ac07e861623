package v1

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/communityhub/goldledger/internal/api/handler/v1/request"
	"github.com/communityhub/goldledger/internal/domain"
	"github.com/communityhub/goldledger/internal/service"
)

// badRequestErrs are the service errors a client can fix by changing the
// request or the order of its calls.
var badRequestErrs = []error{
	service.ErrUserMemberIDExists,
	service.ErrProgramInactive,
	service.ErrCycleInactive,
	service.ErrActiveCycleExists,
	service.ErrNoActiveCycle,
	service.ErrActiveLotExists,
	service.ErrMonthlyDataExists,
	service.ErrIneligibleLots,
	service.ErrForeignLots,
	service.ErrUnpaidLots,
	service.ErrWinnerExists,
	service.ErrInvalidPeriod,
	service.ErrEmptyBatch,
	service.ErrDuplicateLot,
}

func isBadRequest(err error) bool {
	for _, target := range badRequestErrs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func parseIDParam(ctx *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, ctx.Param(name))
	}

	return uint(id), nil
}

func bindPageQuery(ctx *gin.Context) (domain.PageQuery, error) {
	var q request.PageQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		return domain.PageQuery{}, err
	}
	if err := q.Validate(); err != nil {
		return domain.PageQuery{}, err
	}

	return q.ToDomain(), nil
}
