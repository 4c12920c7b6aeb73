package services

import (
	"log"
	"testing"
	"time"

	"github.com/AfricaChange/AfricaChange/src/models"
	"github.com/AfricaChange/AfricaChange/src/types"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		TranslateError:         true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}
	return gormDB, mock
}

func conversionRow(id uint, reference string, status types.ConversionStatus, userID *uint) *sqlmock.Rows {
	var uid any
	if userID != nil {
		uid = int64(*userID)
	}
	rows := sqlmock.NewRows([]string{"id", "user_id", "reference", "status", "amount_initial", "amount_converted", "from_currency", "to_currency", "created_at", "updated_at"})
	rows.AddRow(int64(id), uid, reference, string(status), 1000.0, 600000.0, "EUR", "XOF", time.Now().UTC(), time.Now().UTC())
	return rows
}

func TestLockConversionNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT (.+) FROM "conversions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := LockConversion(db, "CVT-MISSING", nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestLockConversionAlreadyProcessed(t *testing.T) {
	db, mock := newMockDB(t)

	for _, status := range []types.ConversionStatus{types.CONVERSION_IN_PROGRESS, types.CONVERSION_PAID, types.CONVERSION_FAILED} {
		mock.ExpectQuery(`SELECT (.+) FROM "conversions"`).
			WillReturnRows(conversionRow(1, "CVT-AAAAAA", status, nil))

		_, err := LockConversion(db, "CVT-AAAAAA", nil)
		assert.ErrorIs(t, err, ErrAlreadyProcessed)
	}
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestLockConversionForbidden(t *testing.T) {
	db, mock := newMockDB(t)
	owner := uint(7)
	stranger := uint(8)

	mock.ExpectQuery(`SELECT (.+) FROM "conversions"`).
		WillReturnRows(conversionRow(1, "CVT-AAAAAA", types.CONVERSION_PENDING, &owner))
	_, err := LockConversion(db, "CVT-AAAAAA", nil)
	assert.ErrorIs(t, err, ErrForbidden)

	mock.ExpectQuery(`SELECT (.+) FROM "conversions"`).
		WillReturnRows(conversionRow(1, "CVT-AAAAAA", types.CONVERSION_PENDING, &owner))
	_, err = LockConversion(db, "CVT-AAAAAA", &stranger)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestLockConversionMovesToInProgress(t *testing.T) {
	db, mock := newMockDB(t)
	owner := uint(7)

	mock.ExpectQuery(`SELECT (.+) FROM "conversions"`).
		WillReturnRows(conversionRow(3, "CVT-AAAAAA", types.CONVERSION_PENDING, &owner))
	mock.ExpectExec(`UPDATE "conversions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	conversion, err := LockConversion(db, "CVT-AAAAAA", &owner)
	assert.Nil(t, err)
	assert.Equal(t, types.CONVERSION_IN_PROGRESS, conversion.Status)
	assert.Equal(t, uint(3), conversion.ID)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestRollbackOnlyFromInProgress(t *testing.T) {
	db, mock := newMockDB(t)

	// Nothing to undo in any other state; no SQL expected.
	for _, status := range []types.ConversionStatus{types.CONVERSION_PENDING, types.CONVERSION_PAID, types.CONVERSION_FAILED} {
		conversion := models.Conversion{ID: 1, Status: status}
		assert.Nil(t, Rollback(db, &conversion))
		assert.Equal(t, status, conversion.Status)
	}

	mock.ExpectExec(`UPDATE "conversions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	conversion := models.Conversion{ID: 1, Status: types.CONVERSION_IN_PROGRESS}
	assert.Nil(t, Rollback(db, &conversion))
	assert.Equal(t, types.CONVERSION_FAILED, conversion.Status)
	assert.Nil(t, mock.ExpectationsWereMet())
}
