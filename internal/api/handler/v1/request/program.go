package request

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateProgramRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate trims the fields before checking them, so a blank name is missing.
func (req *CreateProgramRequest) Validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&req.Description, validation.Length(0, 1000)),
	)
}
