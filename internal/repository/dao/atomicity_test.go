package dao

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type mockedDB struct {
	db   *gorm.DB
	mock sqlmock.Sqlmock
}

func mockDB(t *testing.T) mockedDB {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return mockedDB{db: db, mock: mock}
}

func activeCycleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "program_id", "is_active", "start_date"}).
		AddRow(1, 1, true, time.Now())
}

func TestCreateMonthlyDataRollsBackFailedFanOut(t *testing.T) {
	m := mockDB(t)

	m.mock.ExpectBegin()
	m.mock.ExpectQuery(`SELECT \* FROM "cycles" .* FOR SHARE`).WillReturnRows(activeCycleRows())
	m.mock.ExpectQuery(`SELECT count\(\*\) FROM "monthly_data"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	m.mock.ExpectQuery(`INSERT INTO "monthly_data"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	m.mock.ExpectQuery(`SELECT "id" FROM "lots"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	m.mock.ExpectQuery(`INSERT INTO "payments"`).WillReturnError(errors.New("connection reset"))
	m.mock.ExpectRollback()

	_, _, err := NewLedgerDAO(m.db).CreateMonthlyData(context.Background(), 1, 1, 2024)
	require.Error(t, err)
	assert.NoError(t, m.mock.ExpectationsWereMet())
}

func TestCreateMonthlyDataRejectsEndedCycle(t *testing.T) {
	m := mockDB(t)

	m.mock.ExpectBegin()
	m.mock.ExpectQuery(`SELECT \* FROM "cycles" .* FOR SHARE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "program_id", "is_active"}).AddRow(1, 1, false))
	m.mock.ExpectRollback()

	_, _, err := NewLedgerDAO(m.db).CreateMonthlyData(context.Background(), 1, 1, 2024)
	assert.ErrorIs(t, err, ErrCycleInactive)
	assert.NoError(t, m.mock.ExpectationsWereMet())
}

func TestInsertWinnersWithUnpaidLotWritesNothing(t *testing.T) {
	m := mockDB(t)

	m.mock.ExpectBegin()
	m.mock.ExpectQuery(`SELECT \* FROM "monthly_data"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cycle_id", "month", "year"}).AddRow(5, 1, 1, 2024))
	m.mock.ExpectQuery(`SELECT \* FROM "cycles" .* FOR SHARE`).WillReturnRows(activeCycleRows())
	m.mock.ExpectQuery(`SELECT "id" FROM "lots"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	m.mock.ExpectQuery(`SELECT "lot_id" FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"lot_id"}).AddRow(1))
	m.mock.ExpectRollback()

	_, err := NewLedgerDAO(m.db).InsertWinners(context.Background(), 5, []uint{1, 2})
	require.ErrorIs(t, err, ErrUnpaidLots)
	assert.Contains(t, err.Error(), "[2]")
	assert.NoError(t, m.mock.ExpectationsWereMet())
}

func TestUpsertPaymentsRejectsForeignLots(t *testing.T) {
	m := mockDB(t)

	m.mock.ExpectBegin()
	m.mock.ExpectQuery(`SELECT \* FROM "monthly_data"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cycle_id", "month", "year"}).AddRow(5, 1, 1, 2024))
	m.mock.ExpectQuery(`SELECT \* FROM "cycles" .* FOR SHARE`).WillReturnRows(activeCycleRows())
	m.mock.ExpectQuery(`SELECT "id" FROM "lots"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	m.mock.ExpectRollback()

	states := []PaymentState{{LotID: 1, IsPaid: true}, {LotID: 9, IsPaid: true}}
	_, err := NewLedgerDAO(m.db).UpsertPayments(context.Background(), 5, states, time.Now())
	require.ErrorIs(t, err, ErrForeignLots)
	assert.NotErrorIs(t, err, ErrIneligibleLots)
	assert.Contains(t, err.Error(), "[9]")
	assert.NoError(t, m.mock.ExpectationsWereMet())
}

func TestEndCycleRollsBackWhenSuccessorFails(t *testing.T) {
	m := mockDB(t)

	m.mock.ExpectBegin()
	m.mock.ExpectQuery(`SELECT \* FROM "programs" .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_active"}).AddRow(1, "Gold", true))
	m.mock.ExpectQuery(`SELECT \* FROM "cycles"`).WillReturnRows(activeCycleRows())
	m.mock.ExpectExec(`UPDATE "cycles"`).WillReturnResult(sqlmock.NewResult(0, 1))
	m.mock.ExpectQuery(`INSERT INTO "cycles"`).WillReturnError(errors.New("connection reset"))
	m.mock.ExpectRollback()

	_, _, err := NewProgramDAO(m.db).EndCycle(context.Background(), 1, time.Now())
	require.Error(t, err)
	assert.NoError(t, m.mock.ExpectationsWereMet())
}
