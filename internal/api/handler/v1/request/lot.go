package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type AddLotRequest struct {
	ProgramID uint `json:"programId"`
	UserID    uint `json:"userId"`
}

func (req *AddLotRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ProgramID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.UserID, validation.Required, validation.Min(uint(1))),
	)
}
