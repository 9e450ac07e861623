package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentState is the paid flag requested for one lot of a monthly bucket.
type PaymentState struct {
	LotID  uint
	IsPaid bool
}

type LedgerDAO struct {
	db *gorm.DB
}

func NewLedgerDAO(db *gorm.DB) *LedgerDAO {
	return &LedgerDAO{
		db: db,
	}
}

// CreateMonthlyData inserts the bucket and an unpaid payment for every lot
// that is active in the cycle at that moment, all in one transaction.
func (d *LedgerDAO) CreateMonthlyData(ctx context.Context, cycleID uint, month, year int) (MonthlyData, int, error) {
	var (
		md       MonthlyData
		roster   int
		cycle    Cycle
		existing int64
	)

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCycle(tx, cycleID, "SHARE", &cycle); err != nil {
			return err
		}
		if !cycle.IsActive {
			return ErrCycleInactive
		}

		err := tx.Model(&MonthlyData{}).
			Where("cycle_id = ? AND month = ? AND year = ?", cycleID, month, year).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return ErrMonthlyDataExists
		}

		md = MonthlyData{CycleID: cycleID, Month: month, Year: year}
		if err := tx.Create(&md).Error; err != nil {
			return translateUniqueViolation(err)
		}

		var lotIDs []uint
		err = tx.Model(&Lot{}).
			Where("cycle_id = ? AND is_active = ?", cycleID, true).
			Order("id").
			Pluck("id", &lotIDs).Error
		if err != nil {
			return err
		}
		if len(lotIDs) == 0 {
			return nil
		}

		payments := make([]Payment, len(lotIDs))
		for i, lotID := range lotIDs {
			payments[i] = Payment{MonthlyDataID: md.ID, LotID: lotID, IsPaid: false}
		}
		if err := tx.Create(&payments).Error; err != nil {
			return err
		}
		roster = len(payments)

		return nil
	})
	if err != nil {
		return MonthlyData{}, 0, err
	}

	return md, roster, nil
}

func (d *LedgerDAO) FindMonthlyDataByID(ctx context.Context, id uint) (MonthlyData, error) {
	var md MonthlyData

	result := d.db.WithContext(ctx).First(&md, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return MonthlyData{}, ErrMonthlyDataNotFound
		}

		return MonthlyData{}, result.Error
	}

	return md, nil
}

func (d *LedgerDAO) ListMonthlyData(ctx context.Context, cycleID uint, params ListParams) ([]MonthlyData, int64, error) {
	var total int64
	if err := d.db.WithContext(ctx).Model(&MonthlyData{}).Where("cycle_id = ?", cycleID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var buckets []MonthlyData
	result := d.db.WithContext(ctx).Scopes(paginate(params)).
		Where("cycle_id = ?", cycleID).
		Order("year DESC").Order("month DESC").
		Find(&buckets)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return buckets, total, nil
}

// PaymentCounts returns how many payments of the bucket are paid and unpaid.
func (d *LedgerDAO) PaymentCounts(ctx context.Context, monthlyDataID uint) (paid int64, unpaid int64, err error) {
	type row struct {
		IsPaid bool
		Total  int64
	}
	var rows []row

	err = d.db.WithContext(ctx).Model(&Payment{}).
		Select("is_paid, COUNT(*) AS total").
		Where("monthly_data_id = ?", monthlyDataID).
		Group("is_paid").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, err
	}

	for _, r := range rows {
		if r.IsPaid {
			paid = r.Total
		} else {
			unpaid = r.Total
		}
	}

	return paid, unpaid, nil
}

// UpsertPayments writes every state in a single INSERT .. ON CONFLICT keyed on
// (monthly_data_id, lot_id). Lots outside the bucket's cycle reject the batch.
func (d *LedgerDAO) UpsertPayments(ctx context.Context, monthlyDataID uint, states []PaymentState, at time.Time) ([]Payment, error) {
	lotIDs := make([]uint, len(states))
	for i, s := range states {
		lotIDs[i] = s.LotID
	}

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		md, err := lockOpenMonthlyData(tx, monthlyDataID)
		if err != nil {
			return err
		}

		var members []uint
		err = tx.Model(&Lot{}).Where("id IN ? AND cycle_id = ?", lotIDs, md.CycleID).Pluck("id", &members).Error
		if err != nil {
			return err
		}
		if missing := difference(lotIDs, members); len(missing) > 0 {
			return fmt.Errorf("%w: %v", ErrForeignLots, missing)
		}

		payments := make([]Payment, len(states))
		for i, s := range states {
			payments[i] = Payment{MonthlyDataID: monthlyDataID, LotID: s.LotID, IsPaid: s.IsPaid}
			if s.IsPaid {
				paidAt := at
				payments[i].PaymentDate = &paidAt
			}
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "monthly_data_id"}, {Name: "lot_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_paid", "payment_date", "updated_at"}),
		}).Create(&payments).Error
	})
	if err != nil {
		return nil, err
	}

	var payments []Payment
	result := d.db.WithContext(ctx).Preload("Lot.User").
		Where("monthly_data_id = ? AND lot_id IN ?", monthlyDataID, lotIDs).
		Order("lot_id").
		Find(&payments)
	if result.Error != nil {
		return nil, result.Error
	}

	return payments, nil
}

func (d *LedgerDAO) ListPayments(ctx context.Context, monthlyDataID uint) ([]Payment, error) {
	var payments []Payment

	result := d.db.WithContext(ctx).Preload("Lot.User").
		Where("monthly_data_id = ?", monthlyDataID).
		Order("lot_id").
		Find(&payments)
	if result.Error != nil {
		return nil, result.Error
	}

	return payments, nil
}

// InsertWinners records every lot as a winner of the bucket or none of them.
// Each lot must be active in the bucket's cycle, paid for the bucket and not
// already a winner of it.
func (d *LedgerDAO) InsertWinners(ctx context.Context, monthlyDataID uint, lotIDs []uint) ([]Winner, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		md, err := lockOpenMonthlyData(tx, monthlyDataID)
		if err != nil {
			return err
		}

		var eligible []uint
		err = tx.Model(&Lot{}).
			Where("id IN ? AND cycle_id = ? AND is_active = ?", lotIDs, md.CycleID, true).
			Pluck("id", &eligible).Error
		if err != nil {
			return err
		}
		if missing := difference(lotIDs, eligible); len(missing) > 0 {
			return fmt.Errorf("%w: %v", ErrIneligibleLots, missing)
		}

		var paid []uint
		err = tx.Model(&Payment{}).
			Where("monthly_data_id = ? AND lot_id IN ? AND is_paid = ?", monthlyDataID, lotIDs, true).
			Pluck("lot_id", &paid).Error
		if err != nil {
			return err
		}
		if unpaid := difference(lotIDs, paid); len(unpaid) > 0 {
			return fmt.Errorf("%w: %v", ErrUnpaidLots, unpaid)
		}

		var already []uint
		err = tx.Model(&Winner{}).
			Where("monthly_data_id = ? AND lot_id IN ?", monthlyDataID, lotIDs).
			Pluck("lot_id", &already).Error
		if err != nil {
			return err
		}
		if len(already) > 0 {
			return fmt.Errorf("%w: %v", ErrWinnerExists, already)
		}

		winners := make([]Winner, len(lotIDs))
		for i, lotID := range lotIDs {
			winners[i] = Winner{MonthlyDataID: monthlyDataID, LotID: lotID}
		}
		if err := tx.Create(&winners).Error; err != nil {
			return translateUniqueViolation(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	var winners []Winner
	result := d.db.WithContext(ctx).Preload("Lot.User").
		Where("monthly_data_id = ? AND lot_id IN ?", monthlyDataID, lotIDs).
		Order("id").
		Find(&winners)
	if result.Error != nil {
		return nil, result.Error
	}

	return winners, nil
}

func (d *LedgerDAO) ListWinners(ctx context.Context, monthlyDataID uint) ([]Winner, error) {
	var winners []Winner

	result := d.db.WithContext(ctx).Preload("Lot.User").
		Where("monthly_data_id = ?", monthlyDataID).
		Order("id").
		Find(&winners)
	if result.Error != nil {
		return nil, result.Error
	}

	return winners, nil
}

func (d *LedgerDAO) DeleteWinner(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Winner{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWinnerNotFound
	}

	return nil
}

// WinnerTallies counts winners per monthly bucket for the given cycles.
// Buckets without winners are omitted.
func (d *LedgerDAO) WinnerTallies(ctx context.Context, cycleIDs []uint) ([]WinnerTally, error) {
	if len(cycleIDs) == 0 {
		return nil, nil
	}

	var tallies []WinnerTally
	result := d.db.WithContext(ctx).Table("winners").
		Select("monthly_data.cycle_id AS cycle_id, winners.monthly_data_id AS monthly_data_id, COUNT(winners.id) AS winners").
		Joins("JOIN monthly_data ON monthly_data.id = winners.monthly_data_id").
		Where("monthly_data.cycle_id IN ?", cycleIDs).
		Group("monthly_data.cycle_id, winners.monthly_data_id").
		Scan(&tallies)
	if result.Error != nil {
		return nil, result.Error
	}

	return tallies, nil
}

// lockOpenMonthlyData loads the bucket and share-locks its cycle, failing when
// the cycle has been ended.
func lockOpenMonthlyData(tx *gorm.DB, id uint) (MonthlyData, error) {
	var md MonthlyData
	result := tx.First(&md, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return MonthlyData{}, ErrMonthlyDataNotFound
		}
		return MonthlyData{}, result.Error
	}

	var cycle Cycle
	if err := lockCycle(tx, md.CycleID, "SHARE", &cycle); err != nil {
		return MonthlyData{}, err
	}
	if !cycle.IsActive {
		return MonthlyData{}, ErrCycleInactive
	}

	return md, nil
}

// difference returns the ids of want that are not in have, in want's order.
func difference(want, have []uint) []uint {
	seen := make(map[uint]struct{}, len(have))
	for _, id := range have {
		seen[id] = struct{}{}
	}

	var missing []uint
	for _, id := range want {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}

	return missing
}
