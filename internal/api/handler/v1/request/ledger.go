package request

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/communityhub/goldledger/internal/domain"
)

type CreateMonthlyDataRequest struct {
	CycleID uint `json:"cycleId"`
	Month   int  `json:"month"`
	Year    int  `json:"year"`
}

func (req *CreateMonthlyDataRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.CycleID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.Month, validation.Required, validation.Min(1), validation.Max(12)),
		validation.Field(&req.Year, validation.Required, validation.Min(1900), validation.Max(9999)),
	)
}

type PaymentState struct {
	LotID  uint `json:"lotId"`
	IsPaid bool `json:"isPaid"`
}

type RecordPaymentsRequest struct {
	Payments []PaymentState `json:"payments"`
}

func (req *RecordPaymentsRequest) Validate() error {
	lotIDs := make([]uint, len(req.Payments))
	for i, p := range req.Payments {
		lotIDs[i] = p.LotID
	}

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Payments, validation.Required, validation.By(func(interface{}) error {
			return uniqueLotIDs(lotIDs)
		})),
	)
}

func (req *RecordPaymentsRequest) ToDomain() []domain.PaymentUpdate {
	updates := make([]domain.PaymentUpdate, len(req.Payments))
	for i, p := range req.Payments {
		updates[i] = domain.PaymentUpdate{LotID: p.LotID, IsPaid: p.IsPaid}
	}
	return updates
}

type AddWinnersRequest struct {
	MonthlyDataID uint   `json:"monthlyDataId"`
	LotIDs        []uint `json:"lotIds"`
}

func (req *AddWinnersRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.MonthlyDataID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.LotIDs, validation.Required, validation.By(func(interface{}) error {
			return uniqueLotIDs(req.LotIDs)
		})),
	)
}

// uniqueLotIDs rejects zero and repeated ids.
func uniqueLotIDs(ids []uint) error {
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			return errors.New("lot ids must be positive")
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("lot id %d is repeated", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
