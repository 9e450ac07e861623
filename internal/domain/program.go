package domain

import "time"

type Program struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	IsActive       bool      `json:"isActive"`
	CurrentCycleID *uint     `json:"currentCycleId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type ProgramDetails struct {
	Program
	RecentCycles []Cycle `json:"recentCycles"`
	CycleCount   int64   `json:"cycleCount"`
}

type Cycle struct {
	ID           uint       `json:"id"`
	ProgramID    uint       `json:"programId"`
	IsActive     bool       `json:"isActive"`
	StartDate    time.Time  `json:"startDate"`
	EndDate      *time.Time `json:"endDate"`
	TotalWinners int64      `json:"totalWinners"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type CycleDetails struct {
	Cycle
	LotCount         int64 `json:"lotCount"`
	MonthlyDataCount int64 `json:"monthlyDataCount"`
}

// CycleTransition is the outcome of ending a cycle: the closed cycle and the
// one that replaced it.
type CycleTransition struct {
	Ended   Cycle `json:"endedCycle"`
	Started Cycle `json:"newCycle"`
}
