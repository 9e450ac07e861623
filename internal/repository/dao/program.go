package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgramDAO struct {
	db *gorm.DB
}

func NewProgramDAO(db *gorm.DB) *ProgramDAO {
	return &ProgramDAO{
		db: db,
	}
}

func (d *ProgramDAO) Insert(ctx context.Context, program Program) (Program, error) {
	result := d.db.WithContext(ctx).Create(&program)
	if result.Error != nil {
		return Program{}, result.Error
	}

	return program, nil
}

func (d *ProgramDAO) FindByID(ctx context.Context, id uint) (Program, error) {
	var program Program

	result := d.db.WithContext(ctx).First(&program, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Program{}, ErrProgramNotFound
		}

		return Program{}, result.Error
	}

	return program, nil
}

// List matches search case-sensitively against name and description.
func (d *ProgramDAO) List(ctx context.Context, params ListParams) ([]Program, int64, error) {
	search := func(db *gorm.DB) *gorm.DB {
		if params.Search == "" {
			return db
		}
		pattern := likePattern(params.Search)
		return db.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := d.db.WithContext(ctx).Model(&Program{}).Scopes(search).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var programs []Program
	result := d.db.WithContext(ctx).Scopes(search, paginate(params)).
		Order("created_at DESC").Order("id DESC").
		Find(&programs)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return programs, total, nil
}

func (d *ProgramDAO) ToggleStatus(ctx context.Context, id uint) (Program, error) {
	var program Program

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProgram(tx, id, "UPDATE", &program); err != nil {
			return err
		}

		program.IsActive = !program.IsActive

		return tx.Model(&program).Update("is_active", program.IsActive).Error
	})
	if err != nil {
		return Program{}, err
	}

	return program, nil
}

// StartCycle opens the first active cycle of a program and points the program
// at it. The program row stays locked for the whole transaction so concurrent
// starts and ends on the same program run one after the other.
func (d *ProgramDAO) StartCycle(ctx context.Context, programID uint, at time.Time) (Cycle, error) {
	var cycle Cycle

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var program Program
		if err := lockProgram(tx, programID, "UPDATE", &program); err != nil {
			return err
		}
		if !program.IsActive {
			return ErrProgramInactive
		}

		var active int64
		if err := tx.Model(&Cycle{}).Where("program_id = ? AND is_active = ?", programID, true).Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrActiveCycleExists
		}

		cycle = Cycle{ProgramID: programID, IsActive: true, StartDate: at}
		if err := tx.Create(&cycle).Error; err != nil {
			return translateUniqueViolation(err)
		}

		return tx.Model(&Program{ID: programID}).Update("current_cycle_id", cycle.ID).Error
	})
	if err != nil {
		return Cycle{}, err
	}

	return cycle, nil
}

// EndCycle closes the active cycle of a program and opens its successor in
// the same transaction.
func (d *ProgramDAO) EndCycle(ctx context.Context, programID uint, at time.Time) (ended Cycle, started Cycle, err error) {
	err = d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var program Program
		if err := lockProgram(tx, programID, "UPDATE", &program); err != nil {
			return err
		}

		result := tx.Where("program_id = ? AND is_active = ?", programID, true).First(&ended)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrNoActiveCycle
			}
			return result.Error
		}

		endDate := at
		err := tx.Model(&ended).Updates(map[string]interface{}{
			"is_active": false,
			"end_date":  endDate,
		}).Error
		if err != nil {
			return err
		}
		ended.IsActive = false
		ended.EndDate = &endDate

		started = Cycle{ProgramID: programID, IsActive: true, StartDate: at}
		if err := tx.Create(&started).Error; err != nil {
			return translateUniqueViolation(err)
		}

		return tx.Model(&Program{ID: programID}).Update("current_cycle_id", started.ID).Error
	})
	if err != nil {
		return Cycle{}, Cycle{}, err
	}

	return ended, started, nil
}

func (d *ProgramDAO) RecentCycles(ctx context.Context, programID uint, limit int) ([]Cycle, error) {
	var cycles []Cycle

	result := d.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Order("start_date DESC").Order("id DESC").
		Limit(limit).
		Find(&cycles)
	if result.Error != nil {
		return nil, result.Error
	}

	return cycles, nil
}

func (d *ProgramDAO) CountCycles(ctx context.Context, programID uint) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Cycle{}).Where("program_id = ?", programID).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (d *ProgramDAO) ListCycles(ctx context.Context, programID uint, params ListParams) ([]Cycle, int64, error) {
	var total int64
	if err := d.db.WithContext(ctx).Model(&Cycle{}).Where("program_id = ?", programID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var cycles []Cycle
	result := d.db.WithContext(ctx).Scopes(paginate(params)).
		Where("program_id = ?", programID).
		Order("start_date DESC").Order("id DESC").
		Find(&cycles)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return cycles, total, nil
}

func (d *ProgramDAO) FindCycleByID(ctx context.Context, id uint) (Cycle, error) {
	var cycle Cycle

	result := d.db.WithContext(ctx).First(&cycle, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Cycle{}, ErrCycleNotFound
		}

		return Cycle{}, result.Error
	}

	return cycle, nil
}

// CycleCounts returns the number of lots and monthly buckets of a cycle.
func (d *ProgramDAO) CycleCounts(ctx context.Context, cycleID uint) (lots int64, months int64, err error) {
	if err = d.db.WithContext(ctx).Model(&Lot{}).Where("cycle_id = ?", cycleID).Count(&lots).Error; err != nil {
		return 0, 0, err
	}
	if err = d.db.WithContext(ctx).Model(&MonthlyData{}).Where("cycle_id = ?", cycleID).Count(&months).Error; err != nil {
		return 0, 0, err
	}

	return lots, months, nil
}

func lockProgram(tx *gorm.DB, id uint, strength string, program *Program) error {
	result := tx.Clauses(clause.Locking{Strength: strength}).First(program, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrProgramNotFound
		}
		return result.Error
	}

	return nil
}

func lockCycle(tx *gorm.DB, id uint, strength string, cycle *Cycle) error {
	result := tx.Clauses(clause.Locking{Strength: strength}).First(cycle, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrCycleNotFound
		}
		return result.Error
	}

	return nil
}
