package request

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communityhub/goldledger/internal/domain"
)

func fieldErr(t *testing.T, err error, field string) error {
	t.Helper()

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	return verrs[field]
}

func TestCreateProgramRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateProgramRequest
		wantErr string
	}{
		{name: "valid", req: CreateProgramRequest{Name: "Gold 2024", Description: "monthly pool"}},
		{name: "missing name", req: CreateProgramRequest{}, wantErr: "name"},
		{name: "blank name", req: CreateProgramRequest{Name: "   "}, wantErr: "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, fieldErr(t, err, tt.wantErr))
		})
	}
}

func TestCreateProgramRequest_ValidateTrims(t *testing.T) {
	req := CreateProgramRequest{Name: "  Gold  "}
	require.NoError(t, req.Validate())
	assert.Equal(t, "Gold", req.Name)
}

func TestCreateMonthlyDataRequest_Validate(t *testing.T) {
	assert.NoError(t, (&CreateMonthlyDataRequest{CycleID: 1, Month: 12, Year: 2024}).Validate())

	err := (&CreateMonthlyDataRequest{CycleID: 1, Month: 13, Year: 2024}).Validate()
	assert.Error(t, fieldErr(t, err, "month"))

	err = (&CreateMonthlyDataRequest{Month: 1, Year: 2024}).Validate()
	assert.Error(t, fieldErr(t, err, "cycleId"))
}

func TestRecordPaymentsRequest_Validate(t *testing.T) {
	ok := RecordPaymentsRequest{Payments: []PaymentState{{LotID: 1, IsPaid: true}, {LotID: 2}}}
	require.NoError(t, ok.Validate())
	assert.Equal(t, []domain.PaymentUpdate{{LotID: 1, IsPaid: true}, {LotID: 2}}, ok.ToDomain())

	err := (&RecordPaymentsRequest{}).Validate()
	assert.Error(t, fieldErr(t, err, "payments"))

	err = (&RecordPaymentsRequest{Payments: []PaymentState{{LotID: 1}, {LotID: 1, IsPaid: true}}}).Validate()
	assert.EqualError(t, fieldErr(t, err, "payments"), "lot id 1 is repeated")
}

func TestAddWinnersRequest_Validate(t *testing.T) {
	assert.NoError(t, (&AddWinnersRequest{MonthlyDataID: 1, LotIDs: []uint{1, 2}}).Validate())

	err := (&AddWinnersRequest{MonthlyDataID: 1}).Validate()
	assert.Error(t, fieldErr(t, err, "lotIds"))

	err = (&AddWinnersRequest{MonthlyDataID: 1, LotIDs: []uint{3, 3}}).Validate()
	assert.EqualError(t, fieldErr(t, err, "lotIds"), "lot id 3 is repeated")

	err = (&AddWinnersRequest{MonthlyDataID: 1, LotIDs: []uint{0}}).Validate()
	assert.EqualError(t, fieldErr(t, err, "lotIds"), "lot ids must be positive")
}

func TestRegisterUserRequest_Validate(t *testing.T) {
	tests := []struct {
		name     string
		memberID string
		valid    bool
	}{
		{name: "letters and digits", memberID: "GM-0042", valid: true},
		{name: "digits only", memberID: "1234", valid: true},
		{name: "no digit", memberID: "ABCDE", valid: false},
		{name: "too short", memberID: "A1", valid: false},
		{name: "bad character", memberID: "GM_0042", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := RegisterUserRequest{Name: "Alice", MemberID: tt.memberID}
			err := req.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, fieldErr(t, err, "memberId"))
		})
	}
}

func TestRegisterUserRequest_ValidateEmail(t *testing.T) {
	req := RegisterUserRequest{Name: "Alice", MemberID: "GM-1", Email: "not-an-email"}
	assert.Error(t, fieldErr(t, req.Validate(), "email"))

	req.Email = "alice@example.com"
	req.MemberID = "GM-01"
	assert.NoError(t, req.Validate())
}

func TestPageQuery_ToDomain(t *testing.T) {
	assert.Equal(t, domain.PageQuery{Page: 1, Limit: 10}, (&PageQuery{}).ToDomain())
	assert.Equal(t, domain.PageQuery{Page: 3, Limit: 100, Search: "gold"}, (&PageQuery{Page: 3, Limit: 500, Search: " gold "}).ToDomain())
	assert.Error(t, (&PageQuery{Page: -1}).Validate())
	assert.NoError(t, (&PageQuery{Page: MaxPage}).Validate())
	assert.Error(t, fieldErr(t, (&PageQuery{Page: MaxPage + 1}).Validate(), "Page"))
}
