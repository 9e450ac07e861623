package dao

import (
	"math"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Program struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"not null"`
	Description    string
	IsActive       bool `gorm:"not null"`
	CurrentCycleID *uint
	CreatedAt      time.Time `gorm:"not null;index"`
	UpdatedAt      time.Time `gorm:"not null"`
}

type Cycle struct {
	ID        uint      `gorm:"primaryKey"`
	ProgramID uint      `gorm:"not null;index"`
	Program   *Program  `gorm:"foreignKey:ProgramID"`
	IsActive  bool      `gorm:"not null"`
	StartDate time.Time `gorm:"not null"`
	EndDate   *time.Time
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Lot struct {
	ID        uint      `gorm:"primaryKey"`
	CycleID   uint      `gorm:"not null;index"`
	Cycle     *Cycle    `gorm:"foreignKey:CycleID"`
	UserID    uint      `gorm:"not null;index"`
	User      *User     `gorm:"foreignKey:UserID"`
	IsActive  bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type MonthlyData struct {
	ID        uint      `gorm:"primaryKey"`
	CycleID   uint      `gorm:"not null;index"`
	Cycle     *Cycle    `gorm:"foreignKey:CycleID"`
	Month     int       `gorm:"not null"`
	Year      int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (MonthlyData) TableName() string {
	return "monthly_data"
}

type Payment struct {
	ID            uint         `gorm:"primaryKey"`
	MonthlyDataID uint         `gorm:"not null;uniqueIndex:uniq_payments_monthly_data_lot"`
	MonthlyData   *MonthlyData `gorm:"foreignKey:MonthlyDataID"`
	LotID         uint         `gorm:"not null;uniqueIndex:uniq_payments_monthly_data_lot;index"`
	Lot           *Lot         `gorm:"foreignKey:LotID"`
	IsPaid        bool         `gorm:"not null"`
	PaymentDate   *time.Time
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

type Winner struct {
	ID            uint         `gorm:"primaryKey"`
	MonthlyDataID uint         `gorm:"not null;index"`
	MonthlyData   *MonthlyData `gorm:"foreignKey:MonthlyDataID"`
	LotID         uint         `gorm:"not null;index"`
	Lot           *Lot         `gorm:"foreignKey:LotID"`
	CreatedAt     time.Time    `gorm:"not null"`
}

// WinnerTally is the number of winners recorded against one monthly bucket.
type WinnerTally struct {
	CycleID       uint
	MonthlyDataID uint
	Winners       int64
}

// ListParams is the paging window and optional search term of a list query.
type ListParams struct {
	Page   int
	Limit  int
	Search string
}

// paginate is a gorm scope applying the offset and limit of params.
func paginate(params ListParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(pageOffset(params.Page, params.Limit)).Limit(params.Limit)
	}
}

// pageOffset saturates at math.MaxInt instead of wrapping, so an absurd page
// reads past the end rather than from a negative offset.
func pageOffset(page, limit int) int {
	if page <= 1 || limit <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// likePattern escapes the LIKE wildcards of a user supplied search term and
// wraps it for a substring match.
func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(search) + "%"
}
