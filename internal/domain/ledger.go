package domain

import "time"

type Lot struct {
	ID        uint      `json:"id"`
	CycleID   uint      `json:"cycleId"`
	UserID    uint      `json:"userId"`
	IsActive  bool      `json:"isActive"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type MonthlyData struct {
	ID          uint      `json:"id"`
	CycleID     uint      `json:"cycleId"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	WinnerCount int64     `json:"winnerCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type MonthlyDataDetails struct {
	MonthlyData
	PaidCount   int64 `json:"paidCount"`
	UnpaidCount int64 `json:"unpaidCount"`
}

type Payment struct {
	ID            uint       `json:"id"`
	MonthlyDataID uint       `json:"monthlyDataId"`
	LotID         uint       `json:"lotId"`
	IsPaid        bool       `json:"isPaid"`
	PaymentDate   *time.Time `json:"paymentDate"`
	Lot           *Lot       `json:"lot,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type PaymentUpdate struct {
	LotID  uint `json:"lotId"`
	IsPaid bool `json:"isPaid"`
}

type Winner struct {
	ID            uint      `json:"id"`
	MonthlyDataID uint      `json:"monthlyDataId"`
	LotID         uint      `json:"lotId"`
	Lot           *Lot      `json:"lot,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// WinnerTally is the number of winners of one monthly bucket.
type WinnerTally struct {
	CycleID       uint
	MonthlyDataID uint
	Winners       int64
}

// PaymentRoster is every payment of a monthly bucket together with the
// bucket's winners.
type PaymentRoster struct {
	MonthlyData MonthlyData
	Payments    []Payment
	Winners     []Winner
}
