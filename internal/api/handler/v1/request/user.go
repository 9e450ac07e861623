package request

import (
	"errors"
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// 4 to 20 letters, digits or dashes with at least one digit.
var memberIDPattern = regexp2.MustCompile(`^(?=.*\d)[A-Za-z0-9-]{4,20}$`, regexp2.None)

var phonePattern = regexp.MustCompile(`^\+?[0-9 ]{6,20}$`)

var errInvalidMemberID = errors.New("must be 4-20 letters, digits or dashes and contain a digit")

type RegisterUserRequest struct {
	Name     string `json:"name"`
	MemberID string `json:"memberId"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

func (req *RegisterUserRequest) Validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.MemberID = strings.TrimSpace(req.MemberID)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.MemberID, validation.Required, validation.By(validMemberID)),
		validation.Field(&req.Email, is.Email),
		validation.Field(&req.Phone, validation.Match(phonePattern)),
	)
}

func validMemberID(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	ok, err := memberIDPattern.MatchString(s)
	if err != nil {
		return err
	}
	if !ok {
		return errInvalidMemberID
	}

	return nil
}
