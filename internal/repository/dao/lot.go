package dao

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LotDAO struct {
	db *gorm.DB
}

func NewLotDAO(db *gorm.DB) *LotDAO {
	return &LotDAO{
		db: db,
	}
}

// InsertForActiveCycle gives the user a lot in the program's active cycle.
// The program row is share-locked so the cycle cannot be ended underneath us.
func (d *LotDAO) InsertForActiveCycle(ctx context.Context, programID, userID uint) (Lot, error) {
	var lot Lot

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var program Program
		if err := lockProgram(tx, programID, "SHARE", &program); err != nil {
			return err
		}
		if !program.IsActive {
			return ErrProgramInactive
		}

		var cycle Cycle
		result := tx.Where("program_id = ? AND is_active = ?", programID, true).First(&cycle)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrNoActiveCycle
			}
			return result.Error
		}

		var held int64
		err := tx.Model(&Lot{}).
			Where("cycle_id = ? AND user_id = ? AND is_active = ?", cycle.ID, userID, true).
			Count(&held).Error
		if err != nil {
			return err
		}
		if held > 0 {
			return ErrActiveLotExists
		}

		lot = Lot{CycleID: cycle.ID, UserID: userID, IsActive: true}
		if err := tx.Create(&lot).Error; err != nil {
			return translateUniqueViolation(err)
		}

		return nil
	})
	if err != nil {
		return Lot{}, err
	}

	return lot, nil
}

func (d *LotDAO) FindByID(ctx context.Context, id uint) (Lot, error) {
	var lot Lot

	result := d.db.WithContext(ctx).Preload("User").First(&lot, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Lot{}, ErrLotNotFound
		}

		return Lot{}, result.Error
	}

	return lot, nil
}

func (d *LotDAO) ToggleStatus(ctx context.Context, id uint) (Lot, error) {
	var lot Lot

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&lot, id)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrLotNotFound
			}
			return result.Error
		}

		lot.IsActive = !lot.IsActive
		if err := tx.Model(&lot).Update("is_active", lot.IsActive).Error; err != nil {
			return translateUniqueViolation(err)
		}

		return nil
	})
	if err != nil {
		return Lot{}, err
	}

	return lot, nil
}

// ListByCycle matches search case-insensitively against the lot holder's
// name and member id.
func (d *LotDAO) ListByCycle(ctx context.Context, cycleID uint, params ListParams) ([]Lot, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Joins("JOIN users ON users.id = lots.user_id").Where("lots.cycle_id = ?", cycleID)
		if params.Search == "" {
			return db
		}
		pattern := likePattern(params.Search)
		return db.Where("users.name ILIKE ? OR users.member_id ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := d.db.WithContext(ctx).Model(&Lot{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var lots []Lot
	result := d.db.WithContext(ctx).Model(&Lot{}).Scopes(filter, paginate(params)).
		Preload("User").
		Order("lots.created_at DESC").Order("lots.id DESC").
		Find(&lots)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return lots, total, nil
}
