package dao

import (
	"fmt"

	"gorm.io/gorm"
)

// Indexes AutoMigrate cannot express from struct tags.
var constraints = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + uniqActiveCycle + ` ON cycles (program_id) WHERE is_active`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + uniqActiveLot + ` ON lots (cycle_id, user_id) WHERE is_active`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + uniqMonthlyDataPeriod + ` ON monthly_data (cycle_id, month, year)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + uniqWinnerLot + ` ON winners (monthly_data_id, lot_id)`,
	`ALTER TABLE monthly_data DROP CONSTRAINT IF EXISTS chk_monthly_data_month`,
	`ALTER TABLE monthly_data ADD CONSTRAINT chk_monthly_data_month CHECK (month BETWEEN 1 AND 12)`,
}

func InitTables(db *gorm.DB) error {
	err := db.AutoMigrate(
		&User{},
		&Program{},
		&Cycle{},
		&Lot{},
		&MonthlyData{},
		&Payment{},
		&Winner{},
	)
	if err != nil {
		return fmt.Errorf("db.AutoMigrate -> %w", err)
	}

	for _, stmt := range constraints {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("db.Exec(%q) -> %w", stmt, err)
		}
	}

	return nil
}
