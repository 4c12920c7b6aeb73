package services

import (
	"testing"

	"github.com/AfricaChange/AfricaChange/src/types"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestLedgerRecordPairBalances(t *testing.T) {
	db, mock := newMockDB(t)
	transaction := transactionModel("ref-1", types.TRANSACTION_VALID)

	mock.ExpectQuery(`INSERT INTO "ledger_entries"`).
		WithArgs("ref-1", "user_wallet", "debit", 1000.0, "XOF", "Orange Money", "Paiement utilisateur", int64(1), nil, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(`INSERT INTO "ledger_entries"`).
		WithArgs("ref-1", "system_orange_money", "credit", 1000.0, "XOF", "Orange Money", "Encaissement système", int64(1), nil, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))

	err := LedgerRecordPair(db, transaction, "XOF")
	assert.Nil(t, err)
	assert.Nil(t, mock.ExpectationsWereMet())
}
